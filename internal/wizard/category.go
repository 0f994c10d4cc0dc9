// internal/wizard/category.go
package wizard

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"mobility-service/internal/domain/session"
	"mobility-service/internal/domain/vehicle"
	xerrors "mobility-service/internal/pkg/errors"

	"go.uber.org/zap"
)

var (
	inspireKilometers = []int{10000, 15000, 20000, 25000, 30000, 35000}
	inspireDurations  = []int{24, 36, 48, 60}
	inspireNames      = []string{"Budget", "Mid-Range", "Premium"}
)

// SaveCategory adds a category to the current session. The backend decides
// the stored status: success only with a committed TCO and reference car.
func (w *Controller) SaveCategory(ctx context.Context, req *session.CategoryRequest) error {
	if w.session == nil {
		return fmt.Errorf("%w: no active session", xerrors.ErrInvalidInput)
	}

	us, err := w.client.AddCategory(ctx, w.session.ID, req)
	if err != nil {
		return w.noteAuthFailure(err)
	}
	w.session = us
	return nil
}

// CategoryDraft is the working copy the category editor operates on. The
// TcoView is rebuilt from the stored breakdown so the editor can show the
// last calculation without re-running it.
type CategoryDraft struct {
	CategoryID string
	Request    session.CategoryRequest
	TcoView    *vehicle.TcoResult
}

// BeginEdit loads a category from the current session into a draft.
func (w *Controller) BeginEdit(categoryID string) (*CategoryDraft, error) {
	if w.session == nil {
		return nil, fmt.Errorf("%w: no active session", xerrors.ErrInvalidInput)
	}

	for i := range w.session.CarCategories {
		c := &w.session.CarCategories[i]
		if c.ID != categoryID {
			continue
		}
		return &CategoryDraft{
			CategoryID: c.ID,
			Request: session.CategoryRequest{
				Name:                 c.Name,
				AnnualKilometers:     c.AnnualKilometers,
				LeasingDuration:      c.LeasingDuration,
				EmployeeContribution: c.EmployeeContribution,
				CleaningCost:         c.CleaningCost,
				ParkingCost:          c.ParkingCost,
				FuelCard:             c.FuelCard,
				SelectedFuelTypes:    c.SelectedFuelTypes,
				SelectedBrands:       c.SelectedBrands,
				ReferenceCar:         c.ReferenceCar,
				MonthlyTco:           c.MonthlyTco,
				TcoBreakdown:         c.TcoBreakdown,
				Status:               c.Status,
			},
			TcoView: syntheticTcoView(c),
		}, nil
	}
	return nil, fmt.Errorf("%w: category %s", xerrors.ErrNotFound, categoryID)
}

// syntheticTcoView rebuilds a calculation result from the cached breakdown.
// Without a committed TCO there is nothing to show.
func syntheticTcoView(c *session.CarCategory) *vehicle.TcoResult {
	if c.MonthlyTco == nil {
		return nil
	}

	view := &vehicle.TcoResult{
		Parameters: vehicle.TcoParameters{
			YearlyKm:                  c.AnnualKilometers,
			Duration:                  c.LeasingDuration,
			EstimatedMonthlyLeaseCost: c.TcoBreakdown["leaseCost"],
			EstimatedMonthlyFuelCost:  c.TcoBreakdown["fuelCost"],
		},
		TcoBreakdown:    c.TcoBreakdown,
		TotalMonthlyTCO: *c.MonthlyTco,
		TotalAnnualTCO:  *c.MonthlyTco * 12,
	}
	if c.ReferenceCar != nil {
		view.Vehicle = vehicle.ReferenceCar{
			ID:         c.ReferenceCar.ID,
			Brand:      c.ReferenceCar.Brand,
			Model:      c.ReferenceCar.Model,
			FuelType:   c.ReferenceCar.FuelType,
			YearlyKm:   c.AnnualKilometers,
			Duration:   c.LeasingDuration,
			MonthlyTco: *c.MonthlyTco,
		}
	}
	return view
}

// EditCategory commits a draft back to the session.
func (w *Controller) EditCategory(ctx context.Context, categoryID string, req *session.CategoryRequest) error {
	if w.session == nil {
		return fmt.Errorf("%w: no active session", xerrors.ErrInvalidInput)
	}

	us, err := w.client.UpdateCategory(ctx, w.session.ID, categoryID, req)
	if err != nil {
		return w.noteAuthFailure(err)
	}
	w.session = us
	return nil
}

// RemoveCategory deletes a category. Only an authentication rejection clears
// the stored identity; a missing category or server hiccup comes back as its
// own error kind and the user keeps their login.
func (w *Controller) RemoveCategory(ctx context.Context, categoryID string) error {
	if w.session == nil {
		return fmt.Errorf("%w: no active session", xerrors.ErrInvalidInput)
	}

	us, err := w.client.DeleteCategory(ctx, w.session.ID, categoryID)
	if err != nil {
		return w.noteAuthFailure(err)
	}
	w.session = us
	return nil
}

// ValidateCategoryStatuses demotes locally any success category that lost
// its TCO or reference car. The backend runs the same reconciliation on
// load; this keeps an already-loaded session honest.
func (w *Controller) ValidateCategoryStatuses() []string {
	if w.session == nil {
		return nil
	}

	var demoted []string
	for i := range w.session.CarCategories {
		c := &w.session.CarCategories[i]
		if c.Status == session.CategorySuccess && !c.Valid() {
			c.Status = session.CategoryPending
			demoted = append(demoted, c.ID)
		}
	}
	return demoted
}

// InspireMe proposes three starter categories from a random km/duration
// combination. It needs at least three matching cars; with fewer it returns
// an error and creates nothing. Creation is sequential and best-effort: one
// failed category does not roll back the others.
func (w *Controller) InspireMe(ctx context.Context, rng *rand.Rand) error {
	if w.session == nil {
		return fmt.Errorf("%w: no active session", xerrors.ErrInvalidInput)
	}

	yearlyKm := inspireKilometers[rng.Intn(len(inspireKilometers))]
	duration := inspireDurations[rng.Intn(len(inspireDurations))]

	filters := &vehicle.Filters{YearlyKm: yearlyKm, Duration: duration}
	resp, err := w.client.ListCars(ctx, filters, 1, 1000)
	if err != nil {
		return w.noteAuthFailure(err)
	}
	if len(resp.Cars) < 3 {
		return fmt.Errorf("%w: need at least 3 cars for %d km / %d months, got %d",
			xerrors.ErrInvalidInput, yearlyKm, duration, len(resp.Cars))
	}

	cars := make([]vehicle.ReferenceCar, len(resp.Cars))
	copy(cars, resp.Cars)
	sort.Slice(cars, func(i, j int) bool { return cars[i].Price < cars[j].Price })

	picks := pickTiers(cars)

	var failed int
	for i, car := range picks {
		req := &session.CategoryRequest{
			Name:             inspireNames[i],
			AnnualKilometers: yearlyKm,
			LeasingDuration:  duration,
			ReferenceCar: &session.ReferenceCarRef{
				ID:       car.ID,
				Brand:    car.Brand,
				Model:    car.Model,
				FuelType: car.FuelType,
			},
		}
		if err := w.SaveCategory(ctx, req); err != nil {
			if errors.Is(err, ErrReauthRequired) {
				return err
			}
			failed++
			w.logger.Warn("inspire-me category failed",
				zap.String("name", req.Name), zap.Error(err))
		}
	}

	if failed == len(picks) {
		return fmt.Errorf("%w: could not create any suggested category", xerrors.ErrInternal)
	}
	return nil
}

// pickTiers selects the budget, mid-range and premium cars from a
// price-sorted list: positions 0, 50% and 80%. When those collapse onto
// fewer than three distinct cars, it falls back to even thirds.
func pickTiers(cars []vehicle.ReferenceCar) [3]vehicle.ReferenceCar {
	n := len(cars)
	i0, i1, i2 := 0, n/2, n*8/10
	if i2 >= n {
		i2 = n - 1
	}

	if i0 == i1 || i1 == i2 {
		step := n / 3
		i0, i1 = 0, step
		i2 = 2 * step
		if i2 > n-1 {
			i2 = n - 1
		}
	}

	return [3]vehicle.ReferenceCar{cars[i0], cars[i1], cars[i2]}
}
