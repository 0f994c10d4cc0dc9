// internal/wizard/controller.go
package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mobility-service/internal/domain/session"
	xerrors "mobility-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// Controller drives the five-step wizard against the backend. It owns the
// loaded session and the persisted client state.
type Controller struct {
	client *Client
	store  StateStore
	state  *State
	logger *zap.Logger

	session *session.UserSession
}

func NewController(client *Client, store StateStore, logger *zap.Logger) (*Controller, error) {
	state, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load wizard state: %w", err)
	}
	return &Controller{client: client, store: store, state: state, logger: logger}, nil
}

func (w *Controller) State() *State { return w.state }

func (w *Controller) Session() *session.UserSession { return w.session }

func (w *Controller) saveState() {
	if err := w.store.Save(w.state); err != nil {
		w.logger.Warn("failed to persist wizard state", zap.Error(err))
	}
}

// Bootstrap resumes the user's latest session, or reports ErrNotFound when
// the email has none yet. An approved document pins the wizard to the final
// step regardless of where the user left off.
func (w *Controller) Bootstrap(ctx context.Context, email string) (*session.UserSession, error) {
	w.state.UserEmail = email

	if w.state.CurrentSessionID != "" {
		us, err := w.client.GetSession(ctx, w.state.CurrentSessionID)
		if err == nil {
			return w.adopt(ctx, us), nil
		}
		if !errors.Is(err, xerrors.ErrNotFound) {
			return nil, w.noteAuthFailure(err)
		}
		w.state.CurrentSessionID = ""
	}

	sessions, err := w.client.GetSessionsByEmail(ctx, email)
	if err != nil {
		return nil, w.noteAuthFailure(err)
	}
	if len(sessions) == 0 {
		w.saveState()
		return nil, fmt.Errorf("%w: no sessions for %s", xerrors.ErrNotFound, email)
	}

	// Sessions come back newest activity first.
	return w.adopt(ctx, &sessions[0]), nil
}

// StartSession creates a fresh session for a signup and makes it current.
func (w *Controller) StartSession(ctx context.Context, signupID string) (*session.UserSession, error) {
	us, err := w.client.CreateSession(ctx, &session.CreateSessionRequest{SignupID: signupID})
	if err != nil {
		return nil, w.noteAuthFailure(err)
	}
	return w.adopt(ctx, us), nil
}

func (w *Controller) adopt(ctx context.Context, us *session.UserSession) *session.UserSession {
	if us.DocumentStatus == session.DocumentApproved && us.CurrentStep != session.LastStep {
		if updated, err := w.client.UpdateStep(ctx, us.ID, session.LastStep); err == nil {
			us = updated
		} else {
			w.logger.Warn("failed to pin approved session to final step", zap.Error(err))
			us.CurrentStep = session.LastStep
		}
	}

	w.session = us
	w.state.CurrentSessionID = us.ID
	w.saveState()
	return us
}

func (w *Controller) CurrentStep() int {
	if w.session == nil {
		return session.FirstStep
	}
	return w.session.CurrentStep
}

// IsStepCompleted mirrors the progress bar: any step behind the pointer is
// done, and the final step counts once the document is submitted or
// approved.
func (w *Controller) IsStepCompleted(step int) bool {
	if w.session == nil {
		return false
	}
	if step < w.session.CurrentStep {
		return true
	}
	if step == session.LastStep {
		return w.session.DocumentStatus == session.DocumentApproved ||
			w.session.DocumentStatus == session.DocumentSubmitted
	}
	return false
}

func (w *Controller) CanGenerateDocument() bool {
	return w.session != nil && w.session.CanGenerateDocument()
}

// NextStep advances the wizard. Entering the final step generates the policy
// document and submits the session; if the document gate fails the pointer
// stays on the document step and the error is returned.
func (w *Controller) NextStep(ctx context.Context) error {
	if w.session == nil {
		return fmt.Errorf("%w: no active session", xerrors.ErrInvalidInput)
	}
	if w.session.CurrentStep >= session.LastStep {
		return nil
	}

	target := w.session.CurrentStep + 1
	if target == session.LastStep {
		return w.finalize(ctx)
	}
	return w.moveTo(ctx, target)
}

func (w *Controller) PreviousStep(ctx context.Context) error {
	if w.session == nil || w.session.CurrentStep <= session.FirstStep {
		return nil
	}
	return w.moveTo(ctx, w.session.CurrentStep-1)
}

// GoToStep jumps directly, backwards only. Forward progress must go through
// NextStep so the per-step work cannot be skipped.
func (w *Controller) GoToStep(ctx context.Context, step int) error {
	if w.session == nil {
		return fmt.Errorf("%w: no active session", xerrors.ErrInvalidInput)
	}
	if step < session.FirstStep || step > w.session.CurrentStep {
		return fmt.Errorf("%w: cannot jump forward to step %d", xerrors.ErrInvalidInput, step)
	}
	if step == w.session.CurrentStep {
		return nil
	}
	return w.moveTo(ctx, step)
}

// moveTo applies the step locally first and persists best-effort: a dropped
// connection must not bounce the user back.
func (w *Controller) moveTo(ctx context.Context, step int) error {
	w.session.CurrentStep = step

	us, err := w.client.UpdateStep(ctx, w.session.ID, step)
	if err != nil {
		w.logger.Warn("step persistence failed, continuing locally",
			zap.String("session_id", w.session.ID), zap.Int("step", step), zap.Error(err))
		return nil
	}
	w.session = us
	return nil
}

// finalize runs the step 4 to 5 transition: generate, then submit.
func (w *Controller) finalize(ctx context.Context) error {
	if !w.session.CanGenerateDocument() {
		return fmt.Errorf("%w: complete every category first", xerrors.ErrDocumentGate)
	}

	snapshot := w.snapshot()
	if _, err := w.client.SaveDocument(ctx, w.session.ID, snapshot); err != nil {
		// The pointer stays on the document step.
		return w.noteAuthFailure(err)
	}

	us, err := w.client.SubmitSession(ctx, w.session.ID)
	if err != nil {
		return w.noteAuthFailure(err)
	}

	w.session = us
	return nil
}

func (w *Controller) snapshot() *session.SaveDocumentRequest {
	var companyName string
	if w.session.Signup != nil {
		companyName = w.session.Signup.CompanyName
	}
	return &session.SaveDocumentRequest{
		PartnerID:                 w.state.PartnerID,
		UserEmail:                 w.state.UserEmail,
		CompanyName:               companyName,
		CarCategories:             w.session.CarCategories,
		SelectedCalculationMethod: w.session.SelectedCalculationMethod,
		SelectedFuelTypes:         w.session.SelectedFuelTypes,
		SelectedBrands:            w.session.SelectedBrands,
		UploadedFiles:             w.session.UploadedFiles,
		GeneratedAt:               time.Now(),
	}
}

// Refresh reloads the current session from the backend.
func (w *Controller) Refresh(ctx context.Context) error {
	if w.session == nil {
		return fmt.Errorf("%w: no active session", xerrors.ErrInvalidInput)
	}
	us, err := w.client.GetSession(ctx, w.session.ID)
	if err != nil {
		return w.noteAuthFailure(err)
	}
	w.adopt(ctx, us)
	return nil
}

// noteAuthFailure clears the stored identity only for genuine auth
// rejections; every other failure passes through untouched.
func (w *Controller) noteAuthFailure(err error) error {
	if errors.Is(err, ErrReauthRequired) {
		w.state.ClearAuth()
		w.saveState()
	}
	return err
}
