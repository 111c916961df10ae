package service

import (
	"context"
	"errors"

	"github.com/datapulse/datapulse-go/internal/model"
	"github.com/datapulse/datapulse-go/internal/repository"
)

// LeadService captures and manages marketing leads.
type LeadService struct {
	leads *repository.LeadRepository
	users *repository.UserRepository
}

// NewLeadService creates a new LeadService.
func NewLeadService(leads *repository.LeadRepository, users *repository.UserRepository) *LeadService {
	return &LeadService{leads: leads, users: users}
}

// Create stores a lead submission.
func (s *LeadService) Create(ctx context.Context, req model.CreateLeadRequest) (model.LeadResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return model.LeadResponse{}, err
	}

	lead := &model.Lead{
		Name:         trimmed(req.Name),
		Email:        req.Email,
		SelectedPlan: trimmed(req.SelectedPlan),
	}
	if err := s.leads.Create(ctx, lead); err != nil {
		return model.LeadResponse{}, err
	}
	return lead.ToResponse(), nil
}

// List returns all leads, newest first.
func (s *LeadService) List(ctx context.Context) ([]model.LeadResponse, error) {
	leads, err := s.leads.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]model.LeadResponse, 0, len(leads))
	for i := range leads {
		resp = append(resp, leads[i].ToResponse())
	}
	return resp, nil
}

func (s *LeadService) Get(ctx context.Context, id string) (model.LeadResponse, error) {
	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		return model.LeadResponse{}, mapLeadErr(err)
	}
	return lead.ToResponse(), nil
}

func (s *LeadService) Delete(ctx context.Context, id string) error {
	return mapLeadErr(s.leads.Delete(ctx, id))
}

// Summary counts registered users and captured leads.
func (s *LeadService) Summary(ctx context.Context) (model.DashboardSummary, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return model.DashboardSummary{}, err
	}
	leads, err := s.leads.Count(ctx)
	if err != nil {
		return model.DashboardSummary{}, err
	}
	return model.DashboardSummary{Users: users, Leads: leads}, nil
}

func mapLeadErr(err error) error {
	if errors.Is(err, repository.ErrLeadNotFound) {
		return ErrLeadNotFound
	}
	return err
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	return optional(*s)
}
