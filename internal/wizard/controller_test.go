package wizard

import (
	"context"
	"testing"

	"mobility-service/internal/domain/session"
	xerrors "mobility-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestController(t *testing.T, b *fakeBackend) *Controller {
	ctrl, err := NewController(b.client(), NewMemoryStore(), zap.NewNop())
	require.NoError(t, err)
	return ctrl
}

func TestBootstrapResumesLatestSession(t *testing.T) {
	b := newFakeBackend(t)
	b.session = session.UserSession{
		ID:          "sess-1",
		Status:      session.StatusInProgress,
		CurrentStep: 3,
	}

	ctrl := newTestController(t, b)
	us, err := ctrl.Bootstrap(context.Background(), "jan@example.com")
	require.NoError(t, err)

	assert.Equal(t, "sess-1", us.ID)
	assert.Equal(t, 3, ctrl.CurrentStep())
	assert.Equal(t, "sess-1", ctrl.State().CurrentSessionID)
	assert.Equal(t, "jan@example.com", ctrl.State().UserEmail)
}

func TestBootstrapNoSessions(t *testing.T) {
	b := newFakeBackend(t)

	ctrl := newTestController(t, b)
	_, err := ctrl.Bootstrap(context.Background(), "new@example.com")
	require.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestBootstrapApprovedDocumentPinsFinalStep(t *testing.T) {
	b := newFakeBackend(t)
	b.session = session.UserSession{
		ID:             "sess-1",
		Status:         session.StatusApproved,
		CurrentStep:    2,
		DocumentStatus: session.DocumentApproved,
	}

	ctrl := newTestController(t, b)
	us, err := ctrl.Bootstrap(context.Background(), "jan@example.com")
	require.NoError(t, err)

	assert.Equal(t, session.LastStep, us.CurrentStep)
	assert.Contains(t, b.stepCalls, session.LastStep)
}

func TestNextStepAdvancesAndPersists(t *testing.T) {
	b := newFakeBackend(t)
	b.session = session.UserSession{ID: "sess-1", Status: session.StatusDraft, CurrentStep: 1}

	ctrl := newTestController(t, b)
	_, err := ctrl.Bootstrap(context.Background(), "jan@example.com")
	require.NoError(t, err)

	require.NoError(t, ctrl.NextStep(context.Background()))
	assert.Equal(t, 2, ctrl.CurrentStep())
	assert.Equal(t, []int{2}, b.stepCalls)
}

func TestNextStepIntoFinalStepGeneratesAndSubmits(t *testing.T) {
	b := newFakeBackend(t)
	b.session = session.UserSession{
		ID:            "sess-1",
		Status:        session.StatusInProgress,
		CurrentStep:   4,
		CarCategories: []session.CarCategory{validCategory("a"), validCategory("b")},
	}

	ctrl := newTestController(t, b)
	_, err := ctrl.Bootstrap(context.Background(), "jan@example.com")
	require.NoError(t, err)

	require.NoError(t, ctrl.NextStep(context.Background()))

	assert.Equal(t, session.LastStep, ctrl.CurrentStep())
	assert.Equal(t, 1, b.saveDocCalls)
	assert.Equal(t, 1, b.submitCalls)
	assert.Equal(t, session.StatusSubmitted, ctrl.Session().Status)
	assert.Equal(t, session.DocumentSubmitted, ctrl.Session().DocumentStatus)
}

func TestNextStepGateFailureStaysOnDocumentStep(t *testing.T) {
	pending := validCategory("a")
	pending.MonthlyTco = nil
	pending.Status = session.CategoryPending

	b := newFakeBackend(t)
	b.session = session.UserSession{
		ID:            "sess-1",
		Status:        session.StatusInProgress,
		CurrentStep:   4,
		CarCategories: []session.CarCategory{pending},
	}

	ctrl := newTestController(t, b)
	_, err := ctrl.Bootstrap(context.Background(), "jan@example.com")
	require.NoError(t, err)

	err = ctrl.NextStep(context.Background())
	require.ErrorIs(t, err, xerrors.ErrDocumentGate)

	assert.Equal(t, 4, ctrl.CurrentStep())
	assert.Zero(t, b.submitCalls, "a failed gate must not submit")
}

func TestNextStepGateFailsOnEmptyCategories(t *testing.T) {
	b := newFakeBackend(t)
	b.session = session.UserSession{ID: "sess-1", Status: session.StatusInProgress, CurrentStep: 4}

	ctrl := newTestController(t, b)
	_, err := ctrl.Bootstrap(context.Background(), "jan@example.com")
	require.NoError(t, err)

	require.ErrorIs(t, ctrl.NextStep(context.Background()), xerrors.ErrDocumentGate)
	assert.Equal(t, 4, ctrl.CurrentStep())
}

func TestGoToStep(t *testing.T) {
	b := newFakeBackend(t)
	b.session = session.UserSession{ID: "sess-1", Status: session.StatusInProgress, CurrentStep: 3}

	ctrl := newTestController(t, b)
	_, err := ctrl.Bootstrap(context.Background(), "jan@example.com")
	require.NoError(t, err)

	t.Run("backward jump allowed", func(t *testing.T) {
		require.NoError(t, ctrl.GoToStep(context.Background(), 1))
		assert.Equal(t, 1, ctrl.CurrentStep())
	})

	t.Run("forward jump rejected", func(t *testing.T) {
		err := ctrl.GoToStep(context.Background(), 4)
		require.ErrorIs(t, err, xerrors.ErrInvalidInput)
		assert.Equal(t, 1, ctrl.CurrentStep())
	})
}

func TestIsStepCompleted(t *testing.T) {
	b := newFakeBackend(t)
	b.session = session.UserSession{
		ID:             "sess-1",
		Status:         session.StatusSubmitted,
		CurrentStep:    5,
		DocumentStatus: session.DocumentSubmitted,
	}

	ctrl := newTestController(t, b)
	_, err := ctrl.Bootstrap(context.Background(), "jan@example.com")
	require.NoError(t, err)

	for step := 1; step <= 4; step++ {
		assert.True(t, ctrl.IsStepCompleted(step), "step %d behind the pointer", step)
	}
	assert.True(t, ctrl.IsStepCompleted(5), "submitted document completes the final step")
}

func TestRemoveCategoryErrorKinds(t *testing.T) {
	t.Run("missing category keeps identity", func(t *testing.T) {
		b := newFakeBackend(t)
		b.session = session.UserSession{ID: "sess-1", CurrentStep: 2}

		ctrl := newTestController(t, b)
		_, err := ctrl.Bootstrap(context.Background(), "jan@example.com")
		require.NoError(t, err)
		ctrl.State().PartnerID = "partner-1"
		ctrl.State().IsPartner = true

		err = ctrl.RemoveCategory(context.Background(), "nope")
		require.ErrorIs(t, err, xerrors.ErrNotFound)
		assert.Equal(t, "partner-1", ctrl.State().PartnerID, "a 404 must not log the user out")
	})

	t.Run("auth rejection clears identity", func(t *testing.T) {
		b := newFakeBackend(t)
		b.session = session.UserSession{ID: "sess-1", CurrentStep: 2}
		b.categoryDeleteStatus = 401

		ctrl := newTestController(t, b)
		_, err := ctrl.Bootstrap(context.Background(), "jan@example.com")
		require.NoError(t, err)
		ctrl.State().PartnerID = "partner-1"
		ctrl.State().IsPartner = true

		err = ctrl.RemoveCategory(context.Background(), "cat-1")
		require.ErrorIs(t, err, ErrReauthRequired)
		assert.Empty(t, ctrl.State().PartnerID)
		assert.False(t, ctrl.State().IsPartner)
	})
}
