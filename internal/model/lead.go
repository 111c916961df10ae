package model

import "time"

// Lead is a marketing-site sign-up.
type Lead struct {
	ID           string
	Name         *string
	Email        string
	SelectedPlan *string
	CreatedAt    time.Time
}

// CreateLeadRequest represents a lead capture submission.
type CreateLeadRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email        string  `json:"email" validate:"required,email,max=255"`
	SelectedPlan *string `json:"selected_plan" validate:"omitempty,min=1,max=100"`
}

type LeadResponse struct {
	ID           string    `json:"id"`
	Name         *string   `json:"name"`
	Email        string    `json:"email"`
	SelectedPlan *string   `json:"selected_plan"`
	CreatedAt    time.Time `json:"created_at"`
}

func (l *Lead) ToResponse() LeadResponse {
	return LeadResponse{
		ID:           l.ID,
		Name:         l.Name,
		Email:        l.Email,
		SelectedPlan: l.SelectedPlan,
		CreatedAt:    l.CreatedAt,
	}
}

// CreateLeadResponse acknowledges a captured lead.
type CreateLeadResponse struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Lead   LeadResponse `json:"lead"`
}

// DashboardSummary counts users and leads.
type DashboardSummary struct {
	Users int `json:"users"`
	Leads int `json:"leads"`
}
