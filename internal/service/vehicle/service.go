// internal/service/vehicle/service.go
package vehicle

import (
	"context"
	"fmt"
	"math"

	"mobility-service/internal/domain/vehicle"
	xerrors "mobility-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// Monthly fuel or energy price assumptions per fuel type, used when pricing
// a vehicle for a custom km/duration combination.
var fuelPricePerUnit = map[string]float64{
	"petrol":   1.75, // per liter
	"diesel":   1.85, // per liter
	"hybrid":   1.60, // per liter, blended
	"electric": 0.32, // per kWh
}

const residualValueShare = 0.45

type Repository interface {
	GetByID(ctx context.Context, id int64) (*vehicle.ReferenceCar, error)
	List(ctx context.Context, f *vehicle.Filters, page, limit int) ([]vehicle.ReferenceCar, int64, error)
	ListAll(ctx context.Context, f *vehicle.Filters) ([]vehicle.ReferenceCar, error)
	TcoRange(ctx context.Context, f *vehicle.Filters) (float64, float64, error)
	Distribution(ctx context.Context, f *vehicle.Filters, buckets int) ([]vehicle.DistributionBucket, error)
	Facets(ctx context.Context, f *vehicle.Filters) (*vehicle.Facets, error)
	Stats(ctx context.Context) (*vehicle.CatalogStats, error)
}

type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*vehicle.ReferenceCar, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f *vehicle.Filters, req *vehicle.ListRequest) (*vehicle.ListResponse, error) {
	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	cars, total, err := s.repo.List(ctx, f, page, limit)
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}

	return &vehicle.ListResponse{
		Cars:       cars,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

func (s *Service) ListAll(ctx context.Context, f *vehicle.Filters) ([]vehicle.ReferenceCar, error) {
	return s.repo.ListAll(ctx, f)
}

// TcoRange is the slider's global range under the current filters, before
// any min/max constraint the user has dragged to.
func (s *Service) TcoRange(ctx context.Context, f *vehicle.Filters) (float64, float64, error) {
	return s.repo.TcoRange(ctx, f)
}

func (s *Service) Distribution(ctx context.Context, f *vehicle.Filters, buckets int) ([]vehicle.DistributionBucket, error) {
	return s.repo.Distribution(ctx, f, buckets)
}

func (s *Service) Facets(ctx context.Context, f *vehicle.Filters) (*vehicle.Facets, error) {
	return s.repo.Facets(ctx, f)
}

func (s *Service) Stats(ctx context.Context) (*vehicle.CatalogStats, error) {
	return s.repo.Stats(ctx)
}

// CalculateTco prices one vehicle for a category configuration. Additional
// costs add to the monthly figure; adjustments may be negative, typically
// an employee contribution.
func (s *Service) CalculateTco(ctx context.Context, req *vehicle.CalculateTcoRequest) (*vehicle.TcoResult, error) {
	if req.YearlyKm <= 0 || req.Duration <= 0 {
		return nil, fmt.Errorf("%w: yearlyKm and duration must be positive", xerrors.ErrInvalidInput)
	}

	car, err := s.repo.GetByID(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}

	lease := estimatedMonthlyLeaseCost(car.Price, req.Duration)
	fuel := estimatedMonthlyFuelCost(car.FuelType, car.FuelConsumption, req.YearlyKm)

	breakdown := map[string]float64{
		"leaseCost": round2(lease),
		"fuelCost":  round2(fuel),
	}
	total := lease + fuel

	for _, item := range req.AdditionalCosts {
		breakdown[item.Label] = round2(item.Amount)
		total += item.Amount
	}
	for _, item := range req.MonthlyAdjustments {
		breakdown[item.Label] = round2(item.Amount)
		total += item.Amount
	}

	result := &vehicle.TcoResult{
		Vehicle: *car,
		Parameters: vehicle.TcoParameters{
			YearlyKm:                  req.YearlyKm,
			Duration:                  req.Duration,
			EstimatedMonthlyLeaseCost: round2(lease),
			EstimatedMonthlyFuelCost:  round2(fuel),
		},
		TcoBreakdown:       breakdown,
		TotalMonthlyTCO:    round2(total),
		TotalAnnualTCO:     round2(total * 12),
		AdditionalCosts:    req.AdditionalCosts,
		MonthlyAdjustments: req.MonthlyAdjustments,
	}

	s.logger.Debug("tco calculated",
		zap.Int64("vehicle_id", req.VehicleID),
		zap.Float64("monthly_tco", result.TotalMonthlyTCO))

	return result, nil
}

// estimatedMonthlyLeaseCost spreads the depreciated share of the catalog
// price over the leasing duration.
func estimatedMonthlyLeaseCost(price float64, durationMonths int) float64 {
	return price * (1 - residualValueShare) / float64(durationMonths)
}

// estimatedMonthlyFuelCost converts the consumption figure (l/100km, or
// kWh/100km for electric) into a monthly cost for the requested mileage.
func estimatedMonthlyFuelCost(fuelType string, consumptionPer100Km float64, yearlyKm int) float64 {
	price, ok := fuelPricePerUnit[fuelType]
	if !ok {
		price = fuelPricePerUnit["petrol"]
	}
	monthlyKm := float64(yearlyKm) / 12
	return consumptionPer100Km / 100 * monthlyKm * price
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
