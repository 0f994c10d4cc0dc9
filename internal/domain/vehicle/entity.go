package vehicle

// ReferenceCar is a read-only catalog row priced for one km/duration bucket.
type ReferenceCar struct {
	ID              int64   `json:"id" db:"id"`
	Brand           string  `json:"brand" db:"brand"`
	Model           string  `json:"model" db:"model"`
	Description     string  `json:"description,omitempty" db:"description"`
	FuelType        string  `json:"fuel_type" db:"fuel_type"`
	Price           float64 `json:"price" db:"price"`
	CO2Emissions    float64 `json:"co2Emissions" db:"co2_emissions"`
	FuelConsumption float64 `json:"fuelConsumption" db:"fuel_consumption"`
	YearlyKm        int     `json:"yearly_km" db:"yearly_km"`
	Duration        int     `json:"duration" db:"duration"`
	MonthlyTco      float64 `json:"monthlyTco" db:"monthly_tco"`
}

// DistributionBucket is one bar of the TCO histogram.
type DistributionBucket struct {
	RangeMin float64 `json:"rangeMin"`
	RangeMax float64 `json:"rangeMax"`
	Count    int     `json:"count"`
}

// Facets lists the filter values that still have matching cars under the
// current km/duration/brand/fuel selection.
type Facets struct {
	Brands    []string `json:"brands"`
	FuelTypes []string `json:"fuelTypes"`
}

type CatalogStats struct {
	TotalVehicles int64   `json:"totalVehicles"`
	Brands        int64   `json:"brands"`
	MinTco        float64 `json:"minTco"`
	MaxTco        float64 `json:"maxTco"`
}
