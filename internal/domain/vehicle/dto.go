package vehicle

// Filters narrows catalog queries. Zero values mean "no constraint".
type Filters struct {
	YearlyKm  int      `form:"yearlyKm"`
	Duration  int      `form:"duration"`
	Brands    []string `form:"-"`
	FuelTypes []string `form:"-"`
	MinTco    float64  `form:"minTco"`
	MaxTco    float64  `form:"maxTco"`
}

type ListRequest struct {
	Page  int `form:"page,default=1" binding:"omitempty,min=1"`
	Limit int `form:"limit,default=10" binding:"omitempty,min=1,max=1000"`
}

type ListResponse struct {
	Cars       []ReferenceCar `json:"cars"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
}

// CostItem adds to the monthly TCO (cleaning, parking, fuel card).
type CostItem struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// CalculateTcoRequest prices one vehicle for a category configuration.
// Monthly adjustments may be negative (employee contribution).
type CalculateTcoRequest struct {
	VehicleID          int64      `json:"vehicleId" binding:"required"`
	YearlyKm           int        `json:"yearlyKm" binding:"required,gt=0"`
	Duration           int        `json:"duration" binding:"required,gt=0"`
	AdditionalCosts    []CostItem `json:"additionalCosts"`
	MonthlyAdjustments []CostItem `json:"monthlyAdjustments"`
}

type TcoParameters struct {
	YearlyKm                  int     `json:"yearlyKm"`
	Duration                  int     `json:"duration"`
	EstimatedMonthlyLeaseCost float64 `json:"estimatedMonthlyLeaseCost"`
	EstimatedMonthlyFuelCost  float64 `json:"estimatedMonthlyFuelCost"`
}

type TcoResult struct {
	Vehicle            ReferenceCar       `json:"vehicle"`
	Parameters         TcoParameters      `json:"parameters"`
	TcoBreakdown       map[string]float64 `json:"tcoBreakdown"`
	TotalMonthlyTCO    float64            `json:"totalMonthlyTCO"`
	TotalAnnualTCO     float64            `json:"totalAnnualTCO"`
	AdditionalCosts    []CostItem         `json:"additionalCosts"`
	MonthlyAdjustments []CostItem         `json:"monthlyAdjustments"`
}
