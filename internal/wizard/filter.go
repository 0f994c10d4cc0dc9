// internal/wizard/filter.go
package wizard

import (
	"context"
	"sort"
	"sync"

	"mobility-service/internal/domain/vehicle"
)

// FilterPanel holds the vehicle-picker filter state. Every filter mutation
// bumps a generation counter; a response is applied only when no newer
// refresh has started since it was issued, so a slow early response can
// never clobber the results of a later one. The list, distribution and
// facets slots are delivered independently, last write wins per slot.
type FilterPanel struct {
	client *Client
	mu     sync.Mutex

	filters  vehicle.Filters
	page     int
	limit    int
	selected []vehicle.ReferenceCar

	generation   uint64
	results      *vehicle.ListResponse
	distribution []vehicle.DistributionBucket
	facets       *vehicle.Facets
	sortAsc      bool
	sorted       bool
}

func NewFilterPanel(client *Client) *FilterPanel {
	return &FilterPanel{client: client, page: 1, limit: 10}
}

func (f *FilterPanel) Filters() vehicle.Filters {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filters
}

func (f *FilterPanel) Page() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page
}

func (f *FilterPanel) Results() *vehicle.ListResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results
}

func (f *FilterPanel) Distribution() []vehicle.DistributionBucket {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.distribution
}

func (f *FilterPanel) Facets() *vehicle.Facets {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.facets
}

// reset is the shared effect of every filter change: back to page one, the
// explicit car selection is cleared, and in-flight responses become stale.
func (f *FilterPanel) reset() {
	f.page = 1
	f.selected = nil
	f.generation++
}

func (f *FilterPanel) SetYearlyKm(km int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.filters.YearlyKm == km {
		return
	}
	f.filters.YearlyKm = km
	f.reset()
}

func (f *FilterPanel) SetDuration(months int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.filters.Duration == months {
		return
	}
	f.filters.Duration = months
	f.reset()
}

func (f *FilterPanel) SetBrands(brands []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters.Brands = brands
	f.reset()
}

func (f *FilterPanel) SetFuelTypes(fuelTypes []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters.FuelTypes = fuelTypes
	f.reset()
}

// SetTcoRange commits the slider handles. Called once per drag gesture, on
// release.
func (f *FilterPanel) SetTcoRange(min, max float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.filters.MinTco == min && f.filters.MaxTco == max {
		return
	}
	f.filters.MinTco = min
	f.filters.MaxTco = max
	f.reset()
}

func (f *FilterPanel) SetPage(page int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if page < 1 {
		page = 1
	}
	f.page = page
	f.generation++
}

// SelectCar toggles a car in the explicit selection. While the selection is
// non-empty the displayed list is exactly the selected subset and the
// standard filter pipeline is suspended; any filter change clears it.
func (f *FilterPanel) SelectCar(car vehicle.ReferenceCar) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.selected {
		if f.selected[i].ID == car.ID {
			f.selected = append(f.selected[:i], f.selected[i+1:]...)
			return
		}
	}
	f.selected = append(f.selected, car)
}

func (f *FilterPanel) ClearSelection() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = nil
}

func (f *FilterPanel) SelectedCarIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, len(f.selected))
	for i := range f.selected {
		ids[i] = f.selected[i].ID
	}
	return ids
}

// Displayed is the reference-car list the UI shows: the explicit selection
// when one is active, otherwise the loaded page.
func (f *FilterPanel) Displayed() []vehicle.ReferenceCar {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.selected) > 0 {
		out := make([]vehicle.ReferenceCar, len(f.selected))
		copy(out, f.selected)
		return out
	}
	if f.results == nil {
		return nil
	}
	return f.results.Cars
}

// Begin stamps a query with the current generation.
func (f *FilterPanel) Begin() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generation
}

// Deliver applies a list response if it is still current. It reports whether
// the response was applied; stale responses are dropped.
func (f *FilterPanel) Deliver(generation uint64, resp *vehicle.ListResponse) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if generation != f.generation {
		return false
	}
	f.results = resp
	f.sorted = false
	return true
}

// DeliverDistribution applies a histogram response if it is still current.
func (f *FilterPanel) DeliverDistribution(generation uint64, buckets []vehicle.DistributionBucket) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if generation != f.generation {
		return false
	}
	f.distribution = buckets
	return true
}

// DeliverFacets applies a facets response if it is still current.
func (f *FilterPanel) DeliverFacets(generation uint64, facets *vehicle.Facets) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if generation != f.generation {
		return false
	}
	f.facets = facets
	return true
}

func (f *FilterPanel) selectionActive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.selected) > 0
}

// Query fetches the current page under the current filters. While an
// explicit car selection is active the pipeline is suspended and the
// selection itself is returned without touching the backend.
func (f *FilterPanel) Query(ctx context.Context) (*vehicle.ListResponse, error) {
	if f.selectionActive() {
		cars := f.Displayed()
		return &vehicle.ListResponse{Cars: cars, Total: int64(len(cars)), Page: 1, TotalPages: 1}, nil
	}

	gen := f.Begin()
	filters := f.Filters()
	resp, err := f.client.ListCars(ctx, &filters, f.Page(), f.limit)
	if err != nil {
		return nil, err
	}
	f.Deliver(gen, resp)
	return f.Results(), nil
}

// Refresh reloads the paged list, the TCO histogram and the facets in
// parallel. Each response lands in its own slot through the generation
// check, so a refresh overtaken by a filter change applies nothing.
func (f *FilterPanel) Refresh(ctx context.Context) error {
	if f.selectionActive() {
		return nil
	}

	gen := f.Begin()
	filters := f.Filters()
	page := f.Page()

	var wg sync.WaitGroup
	errs := make([]error, 3)

	wg.Add(3)
	go func() {
		defer wg.Done()
		resp, err := f.client.ListCars(ctx, &filters, page, f.limit)
		if err != nil {
			errs[0] = err
			return
		}
		f.Deliver(gen, resp)
	}()
	go func() {
		defer wg.Done()
		buckets, err := f.client.Distribution(ctx, &filters)
		if err != nil {
			errs[1] = err
			return
		}
		f.DeliverDistribution(gen, buckets)
	}()
	go func() {
		defer wg.Done()
		facets, err := f.client.Facets(ctx, &filters)
		if err != nil {
			errs[2] = err
			return
		}
		f.DeliverFacets(gen, facets)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// ToggleSort orders the loaded page by monthly TCO, flipping direction each
// call. Only the rows already on screen are sorted; it never refetches.
func (f *FilterPanel) ToggleSort() {
	f.mu.Lock()
	defer f.mu.Unlock()

	cars := f.selected
	if len(cars) == 0 {
		if f.results == nil || len(f.results.Cars) == 0 {
			return
		}
		cars = f.results.Cars
	}

	if f.sorted {
		f.sortAsc = !f.sortAsc
	} else {
		f.sortAsc = true
		f.sorted = true
	}

	asc := f.sortAsc
	sort.SliceStable(cars, func(i, j int) bool {
		if asc {
			return cars[i].MonthlyTco < cars[j].MonthlyTco
		}
		return cars[i].MonthlyTco > cars[j].MonthlyTco
	})
}
