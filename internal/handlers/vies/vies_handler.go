// internal/handlers/vies/vies_handler.go
package vies

import (
	"net/http"

	"mobility-service/internal/clients"
	"mobility-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VIESHandler struct {
	client *clients.VIESClient
	logger *zap.Logger
}

func NewVIESHandler(client *clients.VIESClient, logger *zap.Logger) *VIESHandler {
	return &VIESHandler{client: client, logger: logger}
}

// Check validates a VAT number against the EU VIES service
func (h *VIESHandler) Check(c *gin.Context) {
	result, err := h.client.CheckVAT(c.Request.Context(), c.Param("countryCode"), c.Param("vatNumber"))
	if err != nil {
		h.logger.Warn("vies check failed",
			zap.String("country", c.Param("countryCode")), zap.Error(err))
		response.FromError(c, "vat check failed", err)
		return
	}

	response.Success(c, http.StatusOK, "vat checked", result)
}
