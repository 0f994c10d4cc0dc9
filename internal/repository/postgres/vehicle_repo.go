// internal/repository/postgres/vehicle_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"mobility-service/internal/domain/vehicle"
	xerrors "mobility-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type VehicleRepository struct {
	db *pgxpool.Pool
}

func NewVehicleRepository(db *pgxpool.Pool) *VehicleRepository {
	return &VehicleRepository{db: db}
}

const vehicleColumns = `
	id, brand, model, COALESCE(description, ''), fuel_type, price,
	co2_emissions, fuel_consumption, yearly_km, duration, monthly_tco
`

// buildFilterClause translates Filters into a WHERE fragment. includeTco
// controls whether the min/max TCO bounds apply; the distribution endpoint
// deliberately ignores them so the histogram always shows the full range.
func buildFilterClause(f *vehicle.Filters, includeTco bool) (string, []interface{}) {
	clause := ` WHERE 1=1`
	args := []interface{}{}
	idx := 1

	add := func(cond string, value interface{}) {
		clause += fmt.Sprintf(" AND "+cond, idx)
		args = append(args, value)
		idx++
	}

	if f.YearlyKm > 0 {
		add("yearly_km = $%d", f.YearlyKm)
	}
	if f.Duration > 0 {
		add("duration = $%d", f.Duration)
	}
	if len(f.Brands) > 0 {
		add("brand = ANY($%d)", pq.StringArray(f.Brands))
	}
	if len(f.FuelTypes) > 0 {
		add("fuel_type = ANY($%d)", pq.StringArray(f.FuelTypes))
	}
	if includeTco {
		if f.MinTco > 0 {
			add("monthly_tco >= $%d", f.MinTco)
		}
		if f.MaxTco > 0 {
			add("monthly_tco <= $%d", f.MaxTco)
		}
	}

	return clause, args
}

func (r *VehicleRepository) GetByID(ctx context.Context, id int64) (*vehicle.ReferenceCar, error) {
	query := `SELECT ` + vehicleColumns + ` FROM reference_cars WHERE id = $1`

	var car vehicle.ReferenceCar
	err := r.db.QueryRow(ctx, query, id).Scan(
		&car.ID, &car.Brand, &car.Model, &car.Description, &car.FuelType, &car.Price,
		&car.CO2Emissions, &car.FuelConsumption, &car.YearlyKm, &car.Duration, &car.MonthlyTco,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vehicle: %w", err)
	}

	return &car, nil
}

// List returns one page of matching cars plus the total match count.
func (r *VehicleRepository) List(ctx context.Context, f *vehicle.Filters, page, limit int) ([]vehicle.ReferenceCar, int64, error) {
	clause, args := buildFilterClause(f, true)

	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reference_cars`+clause, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM reference_cars%s ORDER BY monthly_tco ASC, id ASC LIMIT $%d OFFSET $%d`,
		vehicleColumns, clause, len(args)+1, len(args)+2,
	)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	cars := []vehicle.ReferenceCar{}
	for rows.Next() {
		var car vehicle.ReferenceCar
		if err := rows.Scan(
			&car.ID, &car.Brand, &car.Model, &car.Description, &car.FuelType, &car.Price,
			&car.CO2Emissions, &car.FuelConsumption, &car.YearlyKm, &car.Duration, &car.MonthlyTco,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		cars = append(cars, car)
	}

	return cars, total, rows.Err()
}

// ListAll returns every matching car ordered by catalog price. Used by the
// inspire-me picker, which needs the whole result set to choose tiers.
func (r *VehicleRepository) ListAll(ctx context.Context, f *vehicle.Filters) ([]vehicle.ReferenceCar, error) {
	clause, args := buildFilterClause(f, true)

	query := `SELECT ` + vehicleColumns + ` FROM reference_cars` + clause + ` ORDER BY price ASC, id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	cars := []vehicle.ReferenceCar{}
	for rows.Next() {
		var car vehicle.ReferenceCar
		if err := rows.Scan(
			&car.ID, &car.Brand, &car.Model, &car.Description, &car.FuelType, &car.Price,
			&car.CO2Emissions, &car.FuelConsumption, &car.YearlyKm, &car.Duration, &car.MonthlyTco,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		cars = append(cars, car)
	}

	return cars, rows.Err()
}

// TcoRange returns the global min/max monthly TCO under the non-TCO filters.
func (r *VehicleRepository) TcoRange(ctx context.Context, f *vehicle.Filters) (float64, float64, error) {
	clause, args := buildFilterClause(f, false)

	var min, max *float64
	err := r.db.QueryRow(ctx,
		`SELECT MIN(monthly_tco), MAX(monthly_tco) FROM reference_cars`+clause, args...,
	).Scan(&min, &max)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load tco range: %w", err)
	}
	if min == nil || max == nil {
		return 0, 0, nil
	}

	return *min, *max, nil
}

// Distribution buckets matching cars into equal-width TCO bands. The min/max
// TCO filters are not applied here.
func (r *VehicleRepository) Distribution(ctx context.Context, f *vehicle.Filters, buckets int) ([]vehicle.DistributionBucket, error) {
	if buckets <= 0 {
		buckets = 20
	}

	lo, hi, err := r.TcoRange(ctx, f)
	if err != nil {
		return nil, err
	}
	if hi <= lo {
		return []vehicle.DistributionBucket{}, nil
	}

	clause, args := buildFilterClause(f, false)
	query := fmt.Sprintf(`
		SELECT LEAST(width_bucket(monthly_tco, $%d, $%d, $%d), $%d) AS bucket, COUNT(*)
		FROM reference_cars%s
		GROUP BY bucket
		ORDER BY bucket
	`, len(args)+1, len(args)+2, len(args)+3, len(args)+3, clause)
	args = append(args, lo, hi, buckets)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load tco distribution: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var bucket, count int
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, fmt.Errorf("failed to scan tco bucket: %w", err)
		}
		counts[bucket] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	width := (hi - lo) / float64(buckets)
	out := make([]vehicle.DistributionBucket, 0, buckets)
	for i := 1; i <= buckets; i++ {
		out = append(out, vehicle.DistributionBucket{
			RangeMin: lo + float64(i-1)*width,
			RangeMax: lo + float64(i)*width,
			Count:    counts[i],
		})
	}

	return out, nil
}

// Facets lists the brands and fuel types still available under the current
// km/duration selection, ignoring the brand/fuel filters themselves.
func (r *VehicleRepository) Facets(ctx context.Context, f *vehicle.Filters) (*vehicle.Facets, error) {
	base := &vehicle.Filters{YearlyKm: f.YearlyKm, Duration: f.Duration}
	clause, args := buildFilterClause(base, false)

	facets := &vehicle.Facets{Brands: []string{}, FuelTypes: []string{}}

	rows, err := r.db.Query(ctx, `SELECT DISTINCT brand FROM reference_cars`+clause+` ORDER BY brand`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load brand facets: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var brand string
		if err := rows.Scan(&brand); err != nil {
			return nil, fmt.Errorf("failed to scan brand facet: %w", err)
		}
		facets.Brands = append(facets.Brands, brand)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	fuelRows, err := r.db.Query(ctx, `SELECT DISTINCT fuel_type FROM reference_cars`+clause+` ORDER BY fuel_type`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load fuel facets: %w", err)
	}
	defer fuelRows.Close()
	for fuelRows.Next() {
		var fuel string
		if err := fuelRows.Scan(&fuel); err != nil {
			return nil, fmt.Errorf("failed to scan fuel facet: %w", err)
		}
		facets.FuelTypes = append(facets.FuelTypes, fuel)
	}

	return facets, fuelRows.Err()
}

func (r *VehicleRepository) Stats(ctx context.Context) (*vehicle.CatalogStats, error) {
	query := `
		SELECT COUNT(*), COUNT(DISTINCT brand),
		       COALESCE(MIN(monthly_tco), 0), COALESCE(MAX(monthly_tco), 0)
		FROM reference_cars
	`

	var stats vehicle.CatalogStats
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.TotalVehicles, &stats.Brands, &stats.MinTco, &stats.MaxTco,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog stats: %w", err)
	}

	return &stats, nil
}
