package wizard

import (
	"testing"

	"mobility-service/internal/domain/vehicle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterChangeResetsPageAndSelection(t *testing.T) {
	b := newFakeBackend(t)
	f := NewFilterPanel(b.client())

	cases := []struct {
		name  string
		apply func()
	}{
		{"yearly km", func() { f.SetYearlyKm(20000) }},
		{"duration", func() { f.SetDuration(36) }},
		{"brands", func() { f.SetBrands([]string{"BMW"}) }},
		{"fuel types", func() { f.SetFuelTypes([]string{"electric"}) }},
		{"tco range", func() { f.SetTcoRange(300, 900) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f.SetPage(4)
			f.SelectCar(vehicle.ReferenceCar{ID: 42})
			require.Equal(t, []int64{42}, f.SelectedCarIDs())

			tc.apply()
			assert.Equal(t, 1, f.Page())
			assert.Empty(t, f.SelectedCarIDs())
		})
	}
}

func TestUnchangedFilterValueIsANoop(t *testing.T) {
	b := newFakeBackend(t)
	f := NewFilterPanel(b.client())

	f.SetYearlyKm(15000)
	f.SetPage(3)
	f.SelectCar(vehicle.ReferenceCar{ID: 7})

	f.SetYearlyKm(15000)
	assert.Equal(t, 3, f.Page(), "setting the same value must not reset the page")
	assert.Equal(t, []int64{7}, f.SelectedCarIDs())
}

func TestStaleResponsesAreDiscarded(t *testing.T) {
	b := newFakeBackend(t)
	f := NewFilterPanel(b.client())

	oldResp := &vehicle.ListResponse{Cars: []vehicle.ReferenceCar{{ID: 1}}, Total: 1}
	newResp := &vehicle.ListResponse{Cars: []vehicle.ReferenceCar{{ID: 2}}, Total: 1}

	// First query starts, then the user changes a filter before it lands.
	gen1 := f.Begin()
	f.SetDuration(48)
	gen2 := f.Begin()

	// The newer response lands first; the slow old one must be dropped.
	require.True(t, f.Deliver(gen2, newResp))
	require.False(t, f.Deliver(gen1, oldResp))

	require.NotNil(t, f.Results())
	assert.Equal(t, int64(2), f.Results().Cars[0].ID)
}

func TestStaleDiscardIsPerSlot(t *testing.T) {
	b := newFakeBackend(t)
	f := NewFilterPanel(b.client())

	gen1 := f.Begin()
	f.SetDuration(48)
	gen2 := f.Begin()

	// Stale responses are refused slot by slot.
	assert.False(t, f.DeliverDistribution(gen1, []vehicle.DistributionBucket{{Count: 9}}))
	assert.False(t, f.DeliverFacets(gen1, &vehicle.Facets{Brands: []string{"Old"}}))
	assert.Nil(t, f.Distribution())
	assert.Nil(t, f.Facets())

	// A current response still lands in each slot after a stale one was
	// refused there.
	require.True(t, f.Deliver(gen2, &vehicle.ListResponse{Cars: []vehicle.ReferenceCar{{ID: 2}}}))
	require.True(t, f.DeliverDistribution(gen2, []vehicle.DistributionBucket{{Count: 1}}))
	require.True(t, f.DeliverFacets(gen2, &vehicle.Facets{Brands: []string{"BMW"}}))
	assert.Equal(t, 1, f.Distribution()[0].Count)
	assert.Equal(t, []string{"BMW"}, f.Facets().Brands)
}

func TestRefreshPopulatesAllSlots(t *testing.T) {
	b := newFakeBackend(t)
	b.cars = []vehicle.ReferenceCar{
		{ID: 1, Brand: "Volvo", FuelType: "hybrid", MonthlyTco: 500},
		{ID: 2, Brand: "BMW", FuelType: "electric", MonthlyTco: 700},
	}

	f := NewFilterPanel(b.client())
	require.NoError(t, f.Refresh(t.Context()))

	require.NotNil(t, f.Results())
	assert.Len(t, f.Results().Cars, 2)
	require.Len(t, f.Distribution(), 1)
	assert.Equal(t, 2, f.Distribution()[0].Count)
	require.NotNil(t, f.Facets())
	assert.ElementsMatch(t, []string{"Volvo", "BMW"}, f.Facets().Brands)

	assert.Equal(t, 1, b.listCalls)
	assert.Equal(t, 1, b.distributionCalls)
	assert.Equal(t, 1, b.facetsCalls)
}

func TestCarSelectionOverridesPipeline(t *testing.T) {
	b := newFakeBackend(t)
	b.cars = []vehicle.ReferenceCar{
		{ID: 1, MonthlyTco: 500},
		{ID: 2, MonthlyTco: 300},
		{ID: 3, MonthlyTco: 700},
	}

	f := NewFilterPanel(b.client())
	_, err := f.Query(t.Context())
	require.NoError(t, err)
	require.Equal(t, 1, b.listCalls)

	f.SelectCar(vehicle.ReferenceCar{ID: 3, MonthlyTco: 700})
	f.SelectCar(vehicle.ReferenceCar{ID: 1, MonthlyTco: 500})

	// The displayed list is exactly the selected subset.
	assert.Equal(t, []int64{3, 1}, carIDs(f.Displayed()))

	// The pipeline is suspended: queries and refreshes serve the selection
	// without touching the backend.
	resp, err := f.Query(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, carIDs(resp.Cars))
	require.NoError(t, f.Refresh(t.Context()))
	assert.Equal(t, 1, b.listCalls)
	assert.Zero(t, b.distributionCalls)

	// Toggling a selected car removes it.
	f.SelectCar(vehicle.ReferenceCar{ID: 3})
	assert.Equal(t, []int64{1}, carIDs(f.Displayed()))

	// A filter change clears the selection and re-enables the pipeline.
	f.SetDuration(36)
	assert.Empty(t, f.SelectedCarIDs())
	_, err = f.Query(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, b.listCalls)
}

func TestToggleSortOrdersLoadedPageOnly(t *testing.T) {
	b := newFakeBackend(t)
	b.cars = []vehicle.ReferenceCar{
		{ID: 1, MonthlyTco: 500},
		{ID: 2, MonthlyTco: 300},
		{ID: 3, MonthlyTco: 700},
	}

	f := NewFilterPanel(b.client())
	_, err := f.Query(t.Context())
	require.NoError(t, err)
	require.Equal(t, 1, b.listCalls)

	f.ToggleSort()
	assert.Equal(t, []int64{2, 1, 3}, carIDs(f.Results().Cars), "first toggle sorts ascending")

	f.ToggleSort()
	assert.Equal(t, []int64{3, 1, 2}, carIDs(f.Results().Cars), "second toggle flips to descending")

	assert.Equal(t, 1, b.listCalls, "sorting never refetches")
}

func carIDs(cars []vehicle.ReferenceCar) []int64 {
	ids := make([]int64, len(cars))
	for i, c := range cars {
		ids[i] = c.ID
	}
	return ids
}
