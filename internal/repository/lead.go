package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/datapulse/datapulse-go/internal/model"
)

var ErrLeadNotFound = errors.New("lead not found")

const leadColumns = `id, name, email, selected_plan, created_at`

// LeadRepository stores lead capture submissions.
type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *model.Lead) error {
	lead.ID = uuid.NewString()
	lead.CreatedAt = timestamp(time.Now())

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO leads (`+leadColumns+`) VALUES (?, ?, ?, ?, ?)`,
		lead.ID, nullString(lead.Name), lead.Email, nullString(lead.SelectedPlan), lead.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) GetByID(ctx context.Context, id string) (*model.Lead, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	return scanLead(row)
}

// List returns all leads, newest first.
func (r *LeadRepository) List(ctx context.Context) ([]model.Lead, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := []model.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	return requireAffected(result, ErrLeadNotFound)
}

func (r *LeadRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return n, nil
}

func scanLead(row rowScanner) (*model.Lead, error) {
	var (
		l            model.Lead
		name         sql.NullString
		selectedPlan sql.NullString
	)
	if err := row.Scan(&l.ID, &name, &l.Email, &selectedPlan, &l.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("scan lead: %w", err)
	}
	l.Name = stringPtr(name)
	l.SelectedPlan = stringPtr(selectedPlan)
	l.CreatedAt = l.CreatedAt.UTC()
	return &l, nil
}
