package vehicle

import (
	"context"
	"fmt"
	"testing"

	"mobility-service/internal/domain/vehicle"
	xerrors "mobility-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepo struct {
	cars []vehicle.ReferenceCar

	lastPage  int
	lastLimit int
}

func (r *fakeRepo) GetByID(ctx context.Context, id int64) (*vehicle.ReferenceCar, error) {
	for i := range r.cars {
		if r.cars[i].ID == id {
			cp := r.cars[i]
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: car %d", xerrors.ErrNotFound, id)
}

func (r *fakeRepo) List(ctx context.Context, f *vehicle.Filters, page, limit int) ([]vehicle.ReferenceCar, int64, error) {
	r.lastPage, r.lastLimit = page, limit
	start := (page - 1) * limit
	if start >= len(r.cars) {
		return nil, int64(len(r.cars)), nil
	}
	end := start + limit
	if end > len(r.cars) {
		end = len(r.cars)
	}
	return r.cars[start:end], int64(len(r.cars)), nil
}

func (r *fakeRepo) ListAll(ctx context.Context, f *vehicle.Filters) ([]vehicle.ReferenceCar, error) {
	return r.cars, nil
}

func (r *fakeRepo) TcoRange(ctx context.Context, f *vehicle.Filters) (float64, float64, error) {
	return 0, 0, nil
}

func (r *fakeRepo) Distribution(ctx context.Context, f *vehicle.Filters, buckets int) ([]vehicle.DistributionBucket, error) {
	return nil, nil
}

func (r *fakeRepo) Facets(ctx context.Context, f *vehicle.Filters) (*vehicle.Facets, error) {
	return &vehicle.Facets{}, nil
}

func (r *fakeRepo) Stats(ctx context.Context) (*vehicle.CatalogStats, error) {
	return &vehicle.CatalogStats{}, nil
}

func newTestService(cars ...vehicle.ReferenceCar) (*Service, *fakeRepo) {
	repo := &fakeRepo{cars: cars}
	return NewService(repo, zap.NewNop()), repo
}

func TestListPagination(t *testing.T) {
	cars := make([]vehicle.ReferenceCar, 25)
	for i := range cars {
		cars[i] = vehicle.ReferenceCar{ID: int64(i + 1)}
	}
	svc, repo := newTestService(cars...)

	t.Run("page count rounds up", func(t *testing.T) {
		resp, err := svc.List(context.Background(), &vehicle.Filters{}, &vehicle.ListRequest{Page: 3, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(25), resp.Total)
		assert.Equal(t, 3, resp.TotalPages)
		assert.Len(t, resp.Cars, 5)
	})

	t.Run("defaults applied", func(t *testing.T) {
		resp, err := svc.List(context.Background(), &vehicle.Filters{}, &vehicle.ListRequest{})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 1, repo.lastPage)
		assert.Equal(t, 10, repo.lastLimit)
	})

	t.Run("empty catalog has zero pages", func(t *testing.T) {
		svc, _ := newTestService()
		resp, err := svc.List(context.Background(), &vehicle.Filters{}, &vehicle.ListRequest{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Zero(t, resp.TotalPages)
	})
}

func TestCalculateTco(t *testing.T) {
	petrol := vehicle.ReferenceCar{
		ID: 1, Brand: "Volkswagen", Model: "Golf",
		FuelType: "petrol", Price: 36000, FuelConsumption: 6.0,
	}
	electric := vehicle.ReferenceCar{
		ID: 2, Brand: "BMW", Model: "i4",
		FuelType: "electric", Price: 36000, FuelConsumption: 18.0,
	}
	lpg := vehicle.ReferenceCar{
		ID: 3, Brand: "Dacia", Model: "Duster",
		FuelType: "lpg", Price: 36000, FuelConsumption: 6.0,
	}
	svc, _ := newTestService(petrol, electric, lpg)

	t.Run("lease and fuel breakdown", func(t *testing.T) {
		// 36000 at 45% residual over 48 months: 412.50/month lease.
		// 6 l/100km at 1250 km/month and 1.75/l: 131.25/month fuel.
		res, err := svc.CalculateTco(context.Background(), &vehicle.CalculateTcoRequest{
			VehicleID: 1, YearlyKm: 15000, Duration: 48,
		})
		require.NoError(t, err)

		assert.Equal(t, 412.5, res.Parameters.EstimatedMonthlyLeaseCost)
		assert.Equal(t, 131.25, res.Parameters.EstimatedMonthlyFuelCost)
		assert.Equal(t, 412.5, res.TcoBreakdown["leaseCost"])
		assert.Equal(t, 131.25, res.TcoBreakdown["fuelCost"])
		assert.Equal(t, 543.75, res.TotalMonthlyTCO)
		assert.Equal(t, 6525.0, res.TotalAnnualTCO)
	})

	t.Run("electric uses kWh pricing", func(t *testing.T) {
		// 18 kWh/100km at 1000 km/month and 0.32/kWh: 57.60/month.
		res, err := svc.CalculateTco(context.Background(), &vehicle.CalculateTcoRequest{
			VehicleID: 2, YearlyKm: 12000, Duration: 48,
		})
		require.NoError(t, err)
		assert.Equal(t, 57.6, res.Parameters.EstimatedMonthlyFuelCost)
	})

	t.Run("unknown fuel type falls back to petrol pricing", func(t *testing.T) {
		res, err := svc.CalculateTco(context.Background(), &vehicle.CalculateTcoRequest{
			VehicleID: 3, YearlyKm: 15000, Duration: 48,
		})
		require.NoError(t, err)
		assert.Equal(t, 131.25, res.Parameters.EstimatedMonthlyFuelCost)
	})

	t.Run("extra costs and adjustments shift the total", func(t *testing.T) {
		res, err := svc.CalculateTco(context.Background(), &vehicle.CalculateTcoRequest{
			VehicleID: 1, YearlyKm: 15000, Duration: 48,
			AdditionalCosts: []vehicle.CostItem{
				{Label: "cleaningCost", Amount: 25},
				{Label: "fuelCard", Amount: 150},
			},
			MonthlyAdjustments: []vehicle.CostItem{
				{Label: "employeeContribution", Amount: -100},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, 618.75, res.TotalMonthlyTCO)
		assert.Equal(t, 25.0, res.TcoBreakdown["cleaningCost"])
		assert.Equal(t, -100.0, res.TcoBreakdown["employeeContribution"])
	})

	t.Run("rejects non-positive parameters", func(t *testing.T) {
		_, err := svc.CalculateTco(context.Background(), &vehicle.CalculateTcoRequest{
			VehicleID: 1, YearlyKm: 0, Duration: 48,
		})
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

		_, err = svc.CalculateTco(context.Background(), &vehicle.CalculateTcoRequest{
			VehicleID: 1, YearlyKm: 15000, Duration: -1,
		})
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		_, err := svc.CalculateTco(context.Background(), &vehicle.CalculateTcoRequest{
			VehicleID: 99, YearlyKm: 15000, Duration: 48,
		})
		assert.ErrorIs(t, err, xerrors.ErrNotFound)
	})
}
