// internal/repository/postgres/signup_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"mobility-service/internal/domain/signup"
	xerrors "mobility-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SignupRepository struct {
	db *pgxpool.Pool
}

func NewSignupRepository(db *pgxpool.Pool) *SignupRepository {
	return &SignupRepository{db: db}
}

const signupColumns = `
	id, full_name, email, COALESCE(company_name, ''), COALESCE(company_number, ''),
	COALESCE(social_secretary, ''), status, created_at, updated_at
`

func (r *SignupRepository) Create(ctx context.Context, s *signup.Signup) error {
	query := `
		INSERT INTO signups (id, full_name, email, company_name, company_number, social_secretary, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		s.ID, s.FullName, s.Email, s.CompanyName, s.CompanyNumber, s.SocialSecretary, s.Status,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create signup: %w", err)
	}

	return nil
}

func (r *SignupRepository) GetByID(ctx context.Context, id string) (*signup.Signup, error) {
	query := `SELECT ` + signupColumns + ` FROM signups WHERE id = $1`
	return r.scan(r.db.QueryRow(ctx, query, id))
}

func (r *SignupRepository) GetByEmail(ctx context.Context, email string) (*signup.Signup, error) {
	query := `SELECT ` + signupColumns + ` FROM signups WHERE LOWER(email) = LOWER($1)`
	return r.scan(r.db.QueryRow(ctx, query, email))
}

func (r *SignupRepository) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE signups SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update signup status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// ListBySocialSecretary returns the companies attached to one partner code.
func (r *SignupRepository) ListBySocialSecretary(ctx context.Context, code string) ([]signup.Signup, error) {
	query := `
		SELECT ` + signupColumns + `
		FROM signups
		WHERE social_secretary = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list signups: %w", err)
	}
	defer rows.Close()

	signups := []signup.Signup{}
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		signups = append(signups, *s)
	}

	return signups, rows.Err()
}

func (r *SignupRepository) scan(row pgx.Row) (*signup.Signup, error) {
	var s signup.Signup
	err := row.Scan(
		&s.ID, &s.FullName, &s.Email, &s.CompanyName, &s.CompanyNumber,
		&s.SocialSecretary, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan signup: %w", err)
	}
	return &s, nil
}
