package wizard

import (
	"context"
	"math/rand"
	"testing"

	"mobility-service/internal/domain/session"
	"mobility-service/internal/domain/vehicle"
	xerrors "mobility-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveCategoryStatusFollowsCompleteness(t *testing.T) {
	b := newFakeBackend(t)
	b.session = session.UserSession{ID: "sess-1", CurrentStep: 2}

	ctrl := newTestController(t, b)
	_, err := ctrl.Bootstrap(context.Background(), "jan@example.com")
	require.NoError(t, err)

	t.Run("complete category is success", func(t *testing.T) {
		err := ctrl.SaveCategory(context.Background(), &session.CategoryRequest{
			Name:             "Sales",
			AnnualKilometers: 15000,
			LeasingDuration:  48,
			MonthlyTco:       tco(450),
			ReferenceCar:     &session.ReferenceCarRef{ID: 9, Brand: "Audi", Model: "A3", FuelType: "petrol"},
		})
		require.NoError(t, err)

		cats := ctrl.Session().CarCategories
		require.Len(t, cats, 1)
		assert.Equal(t, session.CategorySuccess, cats[0].Status)
	})

	t.Run("category without tco stays pending", func(t *testing.T) {
		err := ctrl.SaveCategory(context.Background(), &session.CategoryRequest{
			Name:             "Interns",
			AnnualKilometers: 10000,
			LeasingDuration:  36,
		})
		require.NoError(t, err)

		cats := ctrl.Session().CarCategories
		require.Len(t, cats, 2)
		assert.Equal(t, session.CategoryPending, cats[1].Status)
	})
}

func TestBeginEditRebuildsTcoView(t *testing.T) {
	cat := validCategory("a")
	cat.TcoBreakdown = map[string]float64{"leaseCost": 320, "fuelCost": 130}

	b := newFakeBackend(t)
	b.session = session.UserSession{
		ID:            "sess-1",
		CurrentStep:   2,
		CarCategories: []session.CarCategory{cat},
	}

	ctrl := newTestController(t, b)
	_, err := ctrl.Bootstrap(context.Background(), "jan@example.com")
	require.NoError(t, err)

	t.Run("draft mirrors the stored category", func(t *testing.T) {
		draft, err := ctrl.BeginEdit("a")
		require.NoError(t, err)

		assert.Equal(t, "a", draft.CategoryID)
		assert.Equal(t, cat.Name, draft.Request.Name)
		assert.Equal(t, 15000, draft.Request.AnnualKilometers)

		require.NotNil(t, draft.TcoView)
		assert.Equal(t, 450.0, draft.TcoView.TotalMonthlyTCO)
		assert.Equal(t, 5400.0, draft.TcoView.TotalAnnualTCO)
		assert.Equal(t, 320.0, draft.TcoView.Parameters.EstimatedMonthlyLeaseCost)
		assert.Equal(t, 130.0, draft.TcoView.Parameters.EstimatedMonthlyFuelCost)
		assert.Equal(t, "Volvo", draft.TcoView.Vehicle.Brand)
	})

	t.Run("no committed tco means no view", func(t *testing.T) {
		pending := validCategory("b")
		pending.MonthlyTco = nil
		ctrl.Session().CarCategories = append(ctrl.Session().CarCategories, pending)

		draft, err := ctrl.BeginEdit("b")
		require.NoError(t, err)
		assert.Nil(t, draft.TcoView)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := ctrl.BeginEdit("nope")
		assert.ErrorIs(t, err, xerrors.ErrNotFound)
	})
}

func TestValidateCategoryStatusesDemotesStaleSuccess(t *testing.T) {
	stale := validCategory("a")
	stale.MonthlyTco = nil // success marker survived, calculation did not

	b := newFakeBackend(t)
	b.session = session.UserSession{
		ID:            "sess-1",
		CurrentStep:   3,
		CarCategories: []session.CarCategory{stale, validCategory("b")},
	}

	ctrl := newTestController(t, b)
	_, err := ctrl.Bootstrap(context.Background(), "jan@example.com")
	require.NoError(t, err)

	demoted := ctrl.ValidateCategoryStatuses()
	assert.Equal(t, []string{"a"}, demoted)
	assert.Equal(t, session.CategoryPending, ctrl.Session().CarCategories[0].Status)
	assert.Equal(t, session.CategorySuccess, ctrl.Session().CarCategories[1].Status)
}

func TestInspireMeNeedsThreeCars(t *testing.T) {
	b := newFakeBackend(t)
	b.session = session.UserSession{ID: "sess-1", CurrentStep: 2}
	b.cars = []vehicle.ReferenceCar{
		{ID: 1, Brand: "Dacia", Model: "Sandero", Price: 14000},
		{ID: 2, Brand: "Skoda", Model: "Fabia", Price: 18000},
	}

	ctrl := newTestController(t, b)
	_, err := ctrl.Bootstrap(context.Background(), "jan@example.com")
	require.NoError(t, err)

	err = ctrl.InspireMe(context.Background(), rand.New(rand.NewSource(1)))
	require.ErrorIs(t, err, xerrors.ErrInvalidInput)
	assert.Empty(t, ctrl.Session().CarCategories, "a refused inspire-me creates nothing")
}

func TestInspireMeCreatesThreeTiers(t *testing.T) {
	b := newFakeBackend(t)
	b.session = session.UserSession{ID: "sess-1", CurrentStep: 2}
	for i := 1; i <= 10; i++ {
		b.cars = append(b.cars, vehicle.ReferenceCar{
			ID:    int64(i),
			Brand: "Brand", Model: "M", FuelType: "petrol",
			Price:      float64(10000 + i*5000),
			MonthlyTco: float64(300 + i*50),
		})
	}

	ctrl := newTestController(t, b)
	_, err := ctrl.Bootstrap(context.Background(), "jan@example.com")
	require.NoError(t, err)

	require.NoError(t, ctrl.InspireMe(context.Background(), rand.New(rand.NewSource(1))))

	cats := ctrl.Session().CarCategories
	require.Len(t, cats, 3)
	assert.Equal(t, "Budget", cats[0].Name)
	assert.Equal(t, "Mid-Range", cats[1].Name)
	assert.Equal(t, "Premium", cats[2].Name)

	// Price-sorted picks at 0%, 50% and 80%.
	assert.Equal(t, int64(1), cats[0].ReferenceCar.ID)
	assert.Equal(t, int64(6), cats[1].ReferenceCar.ID)
	assert.Equal(t, int64(9), cats[2].ReferenceCar.ID)

	for _, c := range cats {
		assert.Equal(t, session.CategoryPending, c.Status, "suggestions start without a committed TCO")
	}
}

func TestPickTiersSelectsDistinctCars(t *testing.T) {
	var cars []vehicle.ReferenceCar
	for i := 1; i <= 3; i++ {
		cars = append(cars, vehicle.ReferenceCar{ID: int64(i), Price: float64(i * 100)})
	}

	// n=3: the 0/50%/80% rule lands on 0, 1, 2.
	picks := pickTiers(cars)
	assert.Equal(t, [3]int64{1, 2, 3}, [3]int64{picks[0].ID, picks[1].ID, picks[2].ID})

	for n := 4; n <= 20; n++ {
		cars = append(cars, vehicle.ReferenceCar{ID: int64(n), Price: float64(n * 100)})
		picks = pickTiers(cars)
		ids := map[int64]bool{picks[0].ID: true, picks[1].ID: true, picks[2].ID: true}
		require.Len(t, ids, 3, "n=%d must yield three distinct cars", n)
		assert.Less(t, picks[0].Price, picks[1].Price)
		assert.Less(t, picks[1].Price, picks[2].Price)
	}
}
