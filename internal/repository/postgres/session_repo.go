// internal/repository/postgres/session_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mobility-service/internal/domain/session"
	xerrors "mobility-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `
	id, signup_id, status, current_step, selected_calculation_method,
	selected_fuel_types, selected_brands, uploaded_files, notes,
	document_status, document_urls, reviewed_by,
	last_activity_at, submitted_at, reviewed_at, created_at, updated_at
`

// ========== Session Methods ==========

func (r *SessionRepository) CreateSession(ctx context.Context, s *session.UserSession) error {
	query := `
		INSERT INTO user_sessions (
			id, signup_id, status, current_step, selected_calculation_method,
			selected_fuel_types, selected_brands, uploaded_files, notes,
			document_status, document_urls, last_activity_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		RETURNING last_activity_at, created_at, updated_at
	`

	uploaded, err := json.Marshal(s.UploadedFiles)
	if err != nil {
		return fmt.Errorf("failed to marshal uploaded files: %w", err)
	}
	urls, err := json.Marshal(s.DocumentURLs)
	if err != nil {
		return fmt.Errorf("failed to marshal document urls: %w", err)
	}

	err = r.db.QueryRow(ctx, query,
		s.ID, s.SignupID, s.Status, s.CurrentStep, s.SelectedCalculationMethod,
		pq.StringArray(s.SelectedFuelTypes), pq.StringArray(s.SelectedBrands),
		uploaded, s.Notes, s.DocumentStatus, urls,
	).Scan(&s.LastActivityAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetSession retrieves a session together with its categories and owner info.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (*session.UserSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM user_sessions WHERE id = $1`

	s, err := r.scanSession(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if s.CarCategories, err = r.ListCategories(ctx, s.ID); err != nil {
		return nil, err
	}
	if s.Signup, err = r.signupSummary(ctx, s.SignupID); err != nil && !errors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}

	return s, nil
}

// GetSessionsBySignup returns the signup's sessions, newest activity first.
func (r *SessionRepository) GetSessionsBySignup(ctx context.Context, signupID string) ([]session.UserSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM user_sessions
		WHERE signup_id = $1
		ORDER BY last_activity_at DESC
	`

	rows, err := r.db.Query(ctx, query, signupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []session.UserSession{}
	for rows.Next() {
		s, err := r.scanSession(rows)
		if err != nil {
			return nil, err
		}
		if s.CarCategories, err = r.ListCategories(ctx, s.ID); err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}

	return sessions, rows.Err()
}

// GetSessionsByEmail resolves the signup by email first, so a returning user
// can pick up where they left off without knowing any ids.
func (r *SessionRepository) GetSessionsByEmail(ctx context.Context, email string) ([]session.UserSession, error) {
	query := `SELECT id FROM signups WHERE LOWER(email) = LOWER($1)`

	var signupID string
	err := r.db.QueryRow(ctx, query, email).Scan(&signupID)
	if errors.Is(err, pgx.ErrNoRows) {
		return []session.UserSession{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve signup by email: %w", err)
	}

	return r.GetSessionsBySignup(ctx, signupID)
}

type sessionUpdate struct {
	Status                    *session.Status
	CurrentStep               *int
	SelectedCalculationMethod *int
	SelectedFuelTypes         []string
	SelectedBrands            []string
	Notes                     *string
	DocumentStatus            *session.DocumentStatus
	DocumentURLs              map[string]session.DocumentURL
	ReviewedBy                *string
	SubmittedAt               *time.Time
	ReviewedAt                *time.Time
}

// UpdateSession applies a partial update and bumps last_activity_at.
func (r *SessionRepository) UpdateSession(ctx context.Context, id string, req *session.UpdateSessionRequest) error {
	return r.applyUpdate(ctx, id, &sessionUpdate{
		Status:                    req.Status,
		CurrentStep:               req.CurrentStep,
		SelectedCalculationMethod: req.SelectedCalculationMethod,
		SelectedFuelTypes:         req.SelectedFuelTypes,
		SelectedBrands:            req.SelectedBrands,
		Notes:                     req.Notes,
		DocumentStatus:            req.DocumentStatus,
		DocumentURLs:              req.DocumentURLs,
		ReviewedBy:                req.ReviewedBy,
	})
}

func (r *SessionRepository) UpdateStep(ctx context.Context, id string, step int, status session.Status) error {
	return r.applyUpdate(ctx, id, &sessionUpdate{CurrentStep: &step, Status: &status})
}

func (r *SessionRepository) MarkSubmitted(ctx context.Context, id string) error {
	now := time.Now()
	submitted := session.StatusSubmitted
	docSubmitted := session.DocumentSubmitted
	step := session.LastStep
	return r.applyUpdate(ctx, id, &sessionUpdate{
		Status:         &submitted,
		DocumentStatus: &docSubmitted,
		CurrentStep:    &step,
		SubmittedAt:    &now,
	})
}

func (r *SessionRepository) MarkReviewed(ctx context.Context, id string, status session.Status, docStatus session.DocumentStatus, reviewedBy string, step int) error {
	now := time.Now()
	return r.applyUpdate(ctx, id, &sessionUpdate{
		Status:         &status,
		DocumentStatus: &docStatus,
		ReviewedBy:     &reviewedBy,
		CurrentStep:    &step,
		ReviewedAt:     &now,
	})
}

func (r *SessionRepository) applyUpdate(ctx context.Context, id string, u *sessionUpdate) error {
	query := `UPDATE user_sessions SET last_activity_at = NOW(), updated_at = NOW()`
	args := []interface{}{id}
	idx := 2

	set := func(column string, value interface{}) {
		query += fmt.Sprintf(", %s = $%d", column, idx)
		args = append(args, value)
		idx++
	}

	if u.Status != nil {
		set("status", *u.Status)
	}
	if u.CurrentStep != nil {
		set("current_step", *u.CurrentStep)
	}
	if u.SelectedCalculationMethod != nil {
		set("selected_calculation_method", *u.SelectedCalculationMethod)
	}
	if u.SelectedFuelTypes != nil {
		set("selected_fuel_types", pq.StringArray(u.SelectedFuelTypes))
	}
	if u.SelectedBrands != nil {
		set("selected_brands", pq.StringArray(u.SelectedBrands))
	}
	if u.Notes != nil {
		set("notes", *u.Notes)
	}
	if u.DocumentStatus != nil {
		set("document_status", *u.DocumentStatus)
	}
	if u.DocumentURLs != nil {
		urls, err := json.Marshal(u.DocumentURLs)
		if err != nil {
			return fmt.Errorf("failed to marshal document urls: %w", err)
		}
		set("document_urls", urls)
	}
	if u.ReviewedBy != nil {
		set("reviewed_by", *u.ReviewedBy)
	}
	if u.SubmittedAt != nil {
		set("submitted_at", *u.SubmittedAt)
	}
	if u.ReviewedAt != nil {
		set("reviewed_at", *u.ReviewedAt)
	}

	query += ` WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

func (r *SessionRepository) DeleteSession(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// Statistics aggregates all sessions belonging to one signup.
func (r *SessionRepository) Statistics(ctx context.Context, signupID string) (*session.Statistics, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'draft'),
			COUNT(*) FILTER (WHERE status = 'in_progress'),
			COUNT(*) FILTER (WHERE status = 'submitted'),
			COUNT(*) FILTER (WHERE status = 'under_review'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'rejected'),
			COUNT(*) FILTER (WHERE status = 'completed')
		FROM user_sessions
		WHERE signup_id = $1
	`

	var stats session.Statistics
	err := r.db.QueryRow(ctx, query, signupID).Scan(
		&stats.Total, &stats.Draft, &stats.InProgress, &stats.Submitted,
		&stats.UnderReview, &stats.Approved, &stats.Rejected, &stats.Completed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load session statistics: %w", err)
	}

	return &stats, nil
}

// ========== Category Methods ==========

const categoryColumns = `
	id, session_id, name, annual_kilometers, leasing_duration,
	employee_contribution, cleaning_cost, parking_cost, fuel_card,
	selected_fuel_types, selected_brands, reference_car, monthly_tco,
	tco_breakdown, status, created_at, updated_at
`

func (r *SessionRepository) ListCategories(ctx context.Context, sessionID string) ([]session.CarCategory, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM car_categories
		WHERE session_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []session.CarCategory{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}

	return categories, rows.Err()
}

func (r *SessionRepository) GetCategory(ctx context.Context, sessionID, categoryID string) (*session.CarCategory, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM car_categories
		WHERE session_id = $1 AND id = $2
	`
	return scanCategory(r.db.QueryRow(ctx, query, sessionID, categoryID))
}

func (r *SessionRepository) AddCategory(ctx context.Context, sessionID string, c *session.CarCategory) error {
	query := `
		INSERT INTO car_categories (
			id, session_id, name, annual_kilometers, leasing_duration,
			employee_contribution, cleaning_cost, parking_cost, fuel_card,
			selected_fuel_types, selected_brands, reference_car, monthly_tco,
			tco_breakdown, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`

	cols, err := marshalCategoryJSON(c)
	if err != nil {
		return err
	}

	err = r.db.QueryRow(ctx, query,
		c.ID, sessionID, c.Name, c.AnnualKilometers, c.LeasingDuration,
		cols.employeeContribution, cols.cleaningCost, cols.parkingCost, cols.fuelCard,
		pq.StringArray(c.SelectedFuelTypes), pq.StringArray(c.SelectedBrands),
		cols.referenceCar, c.MonthlyTco, cols.tcoBreakdown, c.Status,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to add category: %w", err)
	}

	return r.touch(ctx, sessionID)
}

func (r *SessionRepository) UpdateCategory(ctx context.Context, sessionID string, c *session.CarCategory) error {
	query := `
		UPDATE car_categories SET
			name = $3, annual_kilometers = $4, leasing_duration = $5,
			employee_contribution = $6, cleaning_cost = $7, parking_cost = $8,
			fuel_card = $9, selected_fuel_types = $10, selected_brands = $11,
			reference_car = $12, monthly_tco = $13, tco_breakdown = $14,
			status = $15, updated_at = NOW()
		WHERE session_id = $1 AND id = $2
		RETURNING created_at, updated_at
	`

	cols, err := marshalCategoryJSON(c)
	if err != nil {
		return err
	}

	err = r.db.QueryRow(ctx, query,
		sessionID, c.ID, c.Name, c.AnnualKilometers, c.LeasingDuration,
		cols.employeeContribution, cols.cleaningCost, cols.parkingCost, cols.fuelCard,
		pq.StringArray(c.SelectedFuelTypes), pq.StringArray(c.SelectedBrands),
		cols.referenceCar, c.MonthlyTco, cols.tcoBreakdown, c.Status,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	return r.touch(ctx, sessionID)
}

func (r *SessionRepository) UpdateCategoryStatus(ctx context.Context, sessionID, categoryID string, status session.CategoryStatus) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE car_categories SET status = $3, updated_at = NOW()
		WHERE session_id = $1 AND id = $2
	`, sessionID, categoryID, status)
	if err != nil {
		return fmt.Errorf("failed to update category status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *SessionRepository) DeleteCategory(ctx context.Context, sessionID, categoryID string) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM car_categories WHERE session_id = $1 AND id = $2
	`, sessionID, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return r.touch(ctx, sessionID)
}

// ========== Document Methods ==========

// SaveDocumentContent upserts the rendered document for one language.
func (r *SessionRepository) SaveDocumentContent(ctx context.Context, sessionID, language, content string) error {
	query := `
		INSERT INTO session_documents (session_id, language, content, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (session_id, language)
		DO UPDATE SET content = EXCLUDED.content, updated_at = NOW()
	`

	if _, err := r.db.Exec(ctx, query, sessionID, language, content); err != nil {
		return fmt.Errorf("failed to save document content: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetDocumentContent(ctx context.Context, sessionID, language string) (string, error) {
	var content string
	err := r.db.QueryRow(ctx, `
		SELECT content FROM session_documents
		WHERE session_id = $1 AND language = $2
	`, sessionID, language).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", xerrors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load document content: %w", err)
	}
	return content, nil
}

func (r *SessionRepository) ListDocumentLanguages(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT language FROM session_documents
		WHERE session_id = $1
		ORDER BY language ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list document languages: %w", err)
	}
	defer rows.Close()

	languages := []string{}
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			return nil, fmt.Errorf("failed to scan document language: %w", err)
		}
		languages = append(languages, lang)
	}

	return languages, rows.Err()
}

func (r *SessionRepository) DeleteDocuments(ctx context.Context, sessionID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM session_documents WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}

// ========== Helpers ==========

func (r *SessionRepository) touch(ctx context.Context, sessionID string) error {
	if _, err := r.db.Exec(ctx, `
		UPDATE user_sessions SET last_activity_at = NOW(), updated_at = NOW() WHERE id = $1
	`, sessionID); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (r *SessionRepository) signupSummary(ctx context.Context, signupID string) (*session.SignupSummary, error) {
	query := `
		SELECT id, full_name, email, COALESCE(company_name, ''), COALESCE(social_secretary, '')
		FROM signups
		WHERE id = $1
	`

	var sum session.SignupSummary
	err := r.db.QueryRow(ctx, query, signupID).Scan(
		&sum.ID, &sum.FullName, &sum.Email, &sum.CompanyName, &sum.SocialSecretary,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load signup summary: %w", err)
	}

	return &sum, nil
}

func (r *SessionRepository) scanSession(row pgx.Row) (*session.UserSession, error) {
	var (
		s        session.UserSession
		fuel     pq.StringArray
		brands   pq.StringArray
		uploaded []byte
		urls     []byte
	)

	err := row.Scan(
		&s.ID, &s.SignupID, &s.Status, &s.CurrentStep, &s.SelectedCalculationMethod,
		&fuel, &brands, &uploaded, &s.Notes,
		&s.DocumentStatus, &urls, &s.ReviewedBy,
		&s.LastActivityAt, &s.SubmittedAt, &s.ReviewedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	s.SelectedFuelTypes = []string(fuel)
	s.SelectedBrands = []string(brands)
	if len(uploaded) > 0 {
		if err := json.Unmarshal(uploaded, &s.UploadedFiles); err != nil {
			return nil, fmt.Errorf("failed to unmarshal uploaded files: %w", err)
		}
	}
	if len(urls) > 0 {
		if err := json.Unmarshal(urls, &s.DocumentURLs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document urls: %w", err)
		}
	}

	return &s, nil
}

type categoryJSON struct {
	employeeContribution []byte
	cleaningCost         []byte
	parkingCost          []byte
	fuelCard             []byte
	referenceCar         []byte
	tcoBreakdown         []byte
}

func marshalCategoryJSON(c *session.CarCategory) (*categoryJSON, error) {
	var (
		cols categoryJSON
		err  error
	)
	if cols.employeeContribution, err = json.Marshal(c.EmployeeContribution); err != nil {
		return nil, fmt.Errorf("failed to marshal category costs: %w", err)
	}
	if cols.cleaningCost, err = json.Marshal(c.CleaningCost); err != nil {
		return nil, fmt.Errorf("failed to marshal category costs: %w", err)
	}
	if cols.parkingCost, err = json.Marshal(c.ParkingCost); err != nil {
		return nil, fmt.Errorf("failed to marshal category costs: %w", err)
	}
	if cols.fuelCard, err = json.Marshal(c.FuelCard); err != nil {
		return nil, fmt.Errorf("failed to marshal category costs: %w", err)
	}
	if c.ReferenceCar != nil {
		if cols.referenceCar, err = json.Marshal(c.ReferenceCar); err != nil {
			return nil, fmt.Errorf("failed to marshal reference car: %w", err)
		}
	}
	if c.TcoBreakdown != nil {
		if cols.tcoBreakdown, err = json.Marshal(c.TcoBreakdown); err != nil {
			return nil, fmt.Errorf("failed to marshal tco breakdown: %w", err)
		}
	}
	return &cols, nil
}

func scanCategory(row pgx.Row) (*session.CarCategory, error) {
	var (
		c            session.CarCategory
		sessionID    string
		fuel         pq.StringArray
		brands       pq.StringArray
		employee     []byte
		cleaning     []byte
		parking      []byte
		fuelCard     []byte
		referenceCar []byte
		breakdown    []byte
	)

	err := row.Scan(
		&c.ID, &sessionID, &c.Name, &c.AnnualKilometers, &c.LeasingDuration,
		&employee, &cleaning, &parking, &fuelCard,
		&fuel, &brands, &referenceCar, &c.MonthlyTco,
		&breakdown, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}

	c.SelectedFuelTypes = []string(fuel)
	c.SelectedBrands = []string(brands)

	for _, pair := range []struct {
		raw []byte
		dst *session.Contribution
	}{
		{employee, &c.EmployeeContribution},
		{cleaning, &c.CleaningCost},
		{parking, &c.ParkingCost},
		{fuelCard, &c.FuelCard},
	} {
		if len(pair.raw) > 0 {
			if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
				return nil, fmt.Errorf("failed to unmarshal category costs: %w", err)
			}
		}
	}
	if len(referenceCar) > 0 {
		if err := json.Unmarshal(referenceCar, &c.ReferenceCar); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reference car: %w", err)
		}
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &c.TcoBreakdown); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tco breakdown: %w", err)
		}
	}

	return &c, nil
}
