// internal/service/session/service.go
package session

import (
	"context"
	"errors"
	"fmt"

	"mobility-service/internal/domain/session"
	xerrors "mobility-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Repository is the persistence surface the service needs. Implemented by
// postgres.SessionRepository; narrowed here so tests can fake it.
type Repository interface {
	CreateSession(ctx context.Context, s *session.UserSession) error
	GetSession(ctx context.Context, id string) (*session.UserSession, error)
	GetSessionsBySignup(ctx context.Context, signupID string) ([]session.UserSession, error)
	GetSessionsByEmail(ctx context.Context, email string) ([]session.UserSession, error)
	UpdateSession(ctx context.Context, id string, req *session.UpdateSessionRequest) error
	UpdateStep(ctx context.Context, id string, step int, status session.Status) error
	MarkSubmitted(ctx context.Context, id string) error
	MarkReviewed(ctx context.Context, id string, status session.Status, docStatus session.DocumentStatus, reviewedBy string, step int) error
	DeleteSession(ctx context.Context, id string) error
	Statistics(ctx context.Context, signupID string) (*session.Statistics, error)

	GetCategory(ctx context.Context, sessionID, categoryID string) (*session.CarCategory, error)
	AddCategory(ctx context.Context, sessionID string, c *session.CarCategory) error
	UpdateCategory(ctx context.Context, sessionID string, c *session.CarCategory) error
	UpdateCategoryStatus(ctx context.Context, sessionID, categoryID string, status session.CategoryStatus) error
	DeleteCategory(ctx context.Context, sessionID, categoryID string) error
}

// Notifier pushes review-queue events to connected partner dashboards.
type Notifier interface {
	NotifyPartner(partnerCode, event string, payload interface{})
}

type Service struct {
	repo     Repository
	notifier Notifier
	logger   *zap.Logger
}

func NewService(repo Repository, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

func (s *Service) Create(ctx context.Context, req *session.CreateSessionRequest) (*session.UserSession, error) {
	us := &session.UserSession{
		ID:                        ulid.Make().String(),
		SignupID:                  req.SignupID,
		Status:                    session.StatusDraft,
		CurrentStep:               session.FirstStep,
		SelectedCalculationMethod: req.SelectedCalculationMethod,
		SelectedFuelTypes:         req.SelectedFuelTypes,
		SelectedBrands:            req.SelectedBrands,
		Notes:                     req.Notes,
		DocumentStatus:            session.DocumentDraft,
	}
	if req.CurrentStep > 0 {
		us.CurrentStep = req.CurrentStep
	}

	if err := s.repo.CreateSession(ctx, us); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	for i := range req.CarCategories {
		if _, err := s.AddCategory(ctx, us.ID, &req.CarCategories[i]); err != nil {
			return nil, err
		}
	}

	s.logger.Info("session created", zap.String("session_id", us.ID), zap.String("signup_id", us.SignupID))
	return s.repo.GetSession(ctx, us.ID)
}

// Get loads the session and reconciles stale category statuses: a category
// marked success that lost its TCO or reference car is demoted to pending.
// The demotion always lands in the response; persisting it is best-effort.
func (s *Service) Get(ctx context.Context, id string) (*session.UserSession, error) {
	us, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	for i := range us.CarCategories {
		c := &us.CarCategories[i]
		if c.Status == session.CategorySuccess && !c.Valid() {
			c.Status = session.CategoryPending
			if err := s.repo.UpdateCategoryStatus(ctx, id, c.ID, session.CategoryPending); err != nil {
				s.logger.Warn("failed to persist category demotion",
					zap.String("session_id", id), zap.String("category_id", c.ID), zap.Error(err))
			}
		}
	}

	return us, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) ([]session.UserSession, error) {
	return s.repo.GetSessionsByEmail(ctx, email)
}

func (s *Service) GetBySignup(ctx context.Context, signupID string) ([]session.UserSession, error) {
	return s.repo.GetSessionsBySignup(ctx, signupID)
}

func (s *Service) Update(ctx context.Context, id string, req *session.UpdateSessionRequest) (*session.UserSession, error) {
	if err := s.repo.UpdateSession(ctx, id, req); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// UpdateStep moves the wizard pointer. A draft session becomes in_progress
// the first time it advances.
func (s *Service) UpdateStep(ctx context.Context, id string, step int) (*session.UserSession, error) {
	if step < session.FirstStep || step > session.LastStep {
		return nil, fmt.Errorf("%w: step %d out of range", xerrors.ErrInvalidInput, step)
	}

	us, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	status := us.Status
	if status == session.StatusDraft {
		status = session.StatusInProgress
	}

	if err := s.repo.UpdateStep(ctx, id, step, status); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Submit finalizes the wizard. The document gate must hold; otherwise the
// session is left untouched and the caller gets ErrDocumentGate.
func (s *Service) Submit(ctx context.Context, id string) (*session.UserSession, error) {
	us, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !us.CanGenerateDocument() {
		return nil, fmt.Errorf("%w: session %s has incomplete categories", xerrors.ErrDocumentGate, id)
	}

	if err := s.repo.MarkSubmitted(ctx, id); err != nil {
		return nil, err
	}

	us, err = s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if us.Signup != nil && us.Signup.SocialSecretary != "" {
		s.notifier.NotifyPartner(us.Signup.SocialSecretary, "session_submitted", us)
	}
	s.logger.Info("session submitted", zap.String("session_id", id))

	return us, nil
}

// Review records a partner decision. Approval pins the wizard to the final
// step; rejection reopens the document step so the user can rework it.
func (s *Service) Review(ctx context.Context, id string, req *session.ReviewRequest) (*session.UserSession, error) {
	us, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if us.Status != session.StatusSubmitted && us.Status != session.StatusUnderReview {
		return nil, fmt.Errorf("%w: session %s is not awaiting review", xerrors.ErrConflict, id)
	}

	var (
		docStatus session.DocumentStatus
		newStatus session.Status
		step      int
		event     string
	)
	switch req.Status {
	case session.StatusApproved:
		newStatus, docStatus, step, event = session.StatusApproved, session.DocumentApproved, session.LastStep, "document_approved"
	case session.StatusRejected:
		newStatus, docStatus, step, event = session.StatusInProgress, session.DocumentDraft, session.LastStep-1, "document_rejected"
	default:
		return nil, fmt.Errorf("%w: unsupported review status %q", xerrors.ErrInvalidInput, req.Status)
	}

	if err := s.repo.MarkReviewed(ctx, id, newStatus, docStatus, req.ReviewedBy, step); err != nil {
		return nil, err
	}
	if req.Notes != "" {
		notes := req.Notes
		if err := s.repo.UpdateSession(ctx, id, &session.UpdateSessionRequest{Notes: &notes}); err != nil {
			return nil, err
		}
	}

	us, err = s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if us.Signup != nil && us.Signup.SocialSecretary != "" {
		s.notifier.NotifyPartner(us.Signup.SocialSecretary, event, us)
	}
	s.logger.Info("session reviewed",
		zap.String("session_id", id), zap.String("decision", string(req.Status)), zap.String("reviewed_by", req.ReviewedBy))

	return us, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

func (s *Service) Statistics(ctx context.Context, signupID string) (*session.Statistics, error) {
	return s.repo.Statistics(ctx, signupID)
}

// ========== Categories ==========

// AddCategory appends a category and returns the full session. The saved
// status is success only when the request carries both a committed TCO and
// a reference car.
func (s *Service) AddCategory(ctx context.Context, sessionID string, req *session.CategoryRequest) (*session.UserSession, error) {
	c := categoryFromRequest(req)
	c.ID = ulid.Make().String()

	if err := s.repo.AddCategory(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return s.Get(ctx, sessionID)
}

func (s *Service) UpdateCategory(ctx context.Context, sessionID, categoryID string, req *session.CategoryRequest) (*session.UserSession, error) {
	existing, err := s.repo.GetCategory(ctx, sessionID, categoryID)
	if err != nil {
		return nil, err
	}

	c := categoryFromRequest(req)
	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt

	if err := s.repo.UpdateCategory(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return s.Get(ctx, sessionID)
}

func (s *Service) DeleteCategory(ctx context.Context, sessionID, categoryID string) (*session.UserSession, error) {
	if err := s.repo.DeleteCategory(ctx, sessionID, categoryID); err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete category: %w", err)
	}
	return s.Get(ctx, sessionID)
}

func categoryFromRequest(req *session.CategoryRequest) *session.CarCategory {
	c := &session.CarCategory{
		Name:                 req.Name,
		AnnualKilometers:     req.AnnualKilometers,
		LeasingDuration:      req.LeasingDuration,
		EmployeeContribution: req.EmployeeContribution,
		CleaningCost:         req.CleaningCost,
		ParkingCost:          req.ParkingCost,
		FuelCard:             req.FuelCard,
		SelectedFuelTypes:    req.SelectedFuelTypes,
		SelectedBrands:       req.SelectedBrands,
		ReferenceCar:         req.ReferenceCar,
		MonthlyTco:           req.MonthlyTco,
		TcoBreakdown:         req.TcoBreakdown,
		Status:               req.Status,
	}

	switch {
	case c.Status == session.CategoryError:
		// keep the explicit error marker
	case c.Valid():
		c.Status = session.CategorySuccess
	default:
		c.Status = session.CategoryPending
	}

	return c
}
