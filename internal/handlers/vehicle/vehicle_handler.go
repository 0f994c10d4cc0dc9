// internal/handlers/vehicle/vehicle_handler.go
package vehicle

import (
	"net/http"
	"strconv"
	"strings"

	"mobility-service/internal/domain/vehicle"
	"mobility-service/internal/pkg/response"
	vehicleService "mobility-service/internal/service/vehicle"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VehicleHandler struct {
	vehicles *vehicleService.Service
	logger   *zap.Logger
}

func NewVehicleHandler(vehicles *vehicleService.Service, logger *zap.Logger) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles, logger: logger}
}

// filtersFromQuery reads the shared filter parameters. Brands and fuel types
// arrive comma separated.
func filtersFromQuery(c *gin.Context) *vehicle.Filters {
	f := &vehicle.Filters{}
	f.YearlyKm, _ = strconv.Atoi(c.Query("yearlyKm"))
	f.Duration, _ = strconv.Atoi(c.Query("duration"))
	f.MinTco, _ = strconv.ParseFloat(c.Query("minTco"), 64)
	f.MaxTco, _ = strconv.ParseFloat(c.Query("maxTco"), 64)
	f.Brands = splitCSV(c.Query("brands"))
	f.FuelTypes = splitCSV(c.Query("fuelTypes"))
	return f
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// List returns one page of the filtered catalog
func (h *VehicleHandler) List(c *gin.Context) {
	var req vehicle.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid pagination", err)
		return
	}

	resp, err := h.vehicles.List(c.Request.Context(), filtersFromQuery(c), &req)
	if err != nil {
		h.logger.Error("vehicle list failed", zap.Error(err))
		response.FromError(c, "failed to list vehicles", err)
		return
	}

	response.Success(c, http.StatusOK, "vehicles loaded", resp)
}

// Get returns one catalog vehicle
func (h *VehicleHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid vehicle id", err)
		return
	}

	car, err := h.vehicles.GetByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "failed to load vehicle", err)
		return
	}

	response.Success(c, http.StatusOK, "vehicle loaded", car)
}

// TcoRange returns the global slider bounds for the current filters
func (h *VehicleHandler) TcoRange(c *gin.Context) {
	min, max, err := h.vehicles.TcoRange(c.Request.Context(), filtersFromQuery(c))
	if err != nil {
		response.FromError(c, "failed to load tco range", err)
		return
	}

	response.Success(c, http.StatusOK, "tco range loaded", gin.H{"minTco": min, "maxTco": max})
}

// Distribution returns the TCO histogram. The min/max TCO filters are
// ignored here so the histogram always spans the full range.
func (h *VehicleHandler) Distribution(c *gin.Context) {
	buckets, _ := strconv.Atoi(c.DefaultQuery("buckets", "20"))

	dist, err := h.vehicles.Distribution(c.Request.Context(), filtersFromQuery(c), buckets)
	if err != nil {
		response.FromError(c, "failed to load distribution", err)
		return
	}

	response.Success(c, http.StatusOK, "distribution loaded", dist)
}

// Facets lists the brands and fuel types available under the km/duration
// selection
func (h *VehicleHandler) Facets(c *gin.Context) {
	facets, err := h.vehicles.Facets(c.Request.Context(), filtersFromQuery(c))
	if err != nil {
		response.FromError(c, "failed to load facets", err)
		return
	}

	response.Success(c, http.StatusOK, "facets loaded", facets)
}

// Stats returns catalog-wide counters
func (h *VehicleHandler) Stats(c *gin.Context) {
	stats, err := h.vehicles.Stats(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to load stats", err)
		return
	}

	response.Success(c, http.StatusOK, "stats loaded", stats)
}

// CalculateTco prices one vehicle for a category configuration
func (h *VehicleHandler) CalculateTco(c *gin.Context) {
	var req vehicle.CalculateTcoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.vehicles.CalculateTco(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("tco calculation failed", zap.Int64("vehicle_id", req.VehicleID), zap.Error(err))
		response.FromError(c, "failed to calculate tco", err)
		return
	}

	response.Success(c, http.StatusOK, "tco calculated", result)
}
