// internal/repository/postgres/partner_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"mobility-service/internal/domain/partner"
	xerrors "mobility-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PartnerRepository struct {
	db *pgxpool.Pool
}

func NewPartnerRepository(db *pgxpool.Pool) *PartnerRepository {
	return &PartnerRepository{db: db}
}

const partnerColumns = `
	id, name, email, social_secretary_code,
	COALESCE(phone_country_code, ''), COALESCE(phone_number, ''),
	COALESCE(address, ''), COALESCE(website, ''), COALESCE(description, ''),
	password_hash, is_active, role, COALESCE(notes, ''), created_at, updated_at
`

func (r *PartnerRepository) Create(ctx context.Context, p *partner.SocialSecretary) error {
	query := `
		INSERT INTO social_secretaries (
			id, name, email, social_secretary_code, phone_country_code, phone_number,
			address, website, description, password_hash, is_active, role, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		p.ID, p.Name, p.Email, p.SocialSecretaryCode, p.PhoneCountryCode, p.PhoneNumber,
		p.Address, p.Website, p.Description, p.PasswordHash, p.IsActive, p.Role, p.Notes,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create social secretary: %w", err)
	}

	return nil
}

func (r *PartnerRepository) GetByEmail(ctx context.Context, email string) (*partner.SocialSecretary, error) {
	query := `SELECT ` + partnerColumns + ` FROM social_secretaries WHERE LOWER(email) = LOWER($1)`
	return r.scan(r.db.QueryRow(ctx, query, email))
}

func (r *PartnerRepository) GetByID(ctx context.Context, id string) (*partner.SocialSecretary, error) {
	query := `SELECT ` + partnerColumns + ` FROM social_secretaries WHERE id = $1`
	return r.scan(r.db.QueryRow(ctx, query, id))
}

func (r *PartnerRepository) GetByCode(ctx context.Context, code string) (*partner.SocialSecretary, error) {
	query := `SELECT ` + partnerColumns + ` FROM social_secretaries WHERE social_secretary_code = $1`
	return r.scan(r.db.QueryRow(ctx, query, code))
}

func (r *PartnerRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM social_secretaries WHERE LOWER(email) = LOWER($1))
	`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check partner email: %w", err)
	}
	return exists, nil
}

// Statistics aggregates all sessions belonging to the partner's companies.
func (r *PartnerRepository) Statistics(ctx context.Context, code string) (*partner.Statistics, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM signups WHERE social_secretary = $1),
			COUNT(us.id),
			COUNT(us.id) FILTER (WHERE us.status = 'draft'),
			COUNT(us.id) FILTER (WHERE us.status = 'in_progress'),
			COUNT(us.id) FILTER (WHERE us.status IN ('submitted', 'under_review')),
			COUNT(us.id) FILTER (WHERE us.status = 'approved'),
			COUNT(us.id) FILTER (WHERE us.status = 'rejected'),
			COUNT(us.id) FILTER (WHERE us.status = 'completed')
		FROM user_sessions us
		JOIN signups sg ON sg.id = us.signup_id
		WHERE sg.social_secretary = $1
	`

	var stats partner.Statistics
	err := r.db.QueryRow(ctx, query, code).Scan(
		&stats.TotalCompanies, &stats.TotalSessions,
		&stats.PendingSessions, &stats.InProgressSessions, &stats.SubmittedSessions,
		&stats.ApprovedSessions, &stats.RejectedSessions, &stats.CompletedSessions,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load partner statistics: %w", err)
	}

	return &stats, nil
}

// SessionsBySignup returns the dashboard rows for one company.
func (r *PartnerRepository) SessionsBySignup(ctx context.Context, signupID string) ([]partner.SessionSummary, error) {
	query := `
		SELECT id, status, current_step, last_activity_at, created_at
		FROM user_sessions
		WHERE signup_id = $1
		ORDER BY last_activity_at DESC
	`

	rows, err := r.db.Query(ctx, query, signupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list partner sessions: %w", err)
	}
	defer rows.Close()

	sessions := []partner.SessionSummary{}
	for rows.Next() {
		var s partner.SessionSummary
		if err := rows.Scan(&s.ID, &s.Status, &s.CurrentStep, &s.LastActivityAt, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan partner session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

func (r *PartnerRepository) scan(row pgx.Row) (*partner.SocialSecretary, error) {
	var p partner.SocialSecretary
	err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.SocialSecretaryCode,
		&p.PhoneCountryCode, &p.PhoneNumber,
		&p.Address, &p.Website, &p.Description,
		&p.PasswordHash, &p.IsActive, &p.Role, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan social secretary: %w", err)
	}
	return &p, nil
}
