// internal/handlers/signup/signup_handler.go
package signup

import (
	"net/http"

	"mobility-service/internal/domain/signup"
	"mobility-service/internal/pkg/response"
	signupService "mobility-service/internal/service/signup"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SignupHandler struct {
	signups *signupService.Service
	logger  *zap.Logger
}

func NewSignupHandler(signups *signupService.Service, logger *zap.Logger) *SignupHandler {
	return &SignupHandler{signups: signups, logger: logger}
}

// Create registers a company; repeating a known email returns the existing
// record
func (h *SignupHandler) Create(c *gin.Context) {
	var req signup.CreateSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	sg, err := h.signups.Create(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("signup failed", zap.String("email", req.Email), zap.Error(err))
		response.FromError(c, "failed to create signup", err)
		return
	}

	response.Success(c, http.StatusCreated, "signup created", sg)
}

func (h *SignupHandler) Get(c *gin.Context) {
	sg, err := h.signups.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, "failed to load signup", err)
		return
	}
	response.Success(c, http.StatusOK, "signup loaded", sg)
}

func (h *SignupHandler) GetByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.Error(c, http.StatusBadRequest, "email query parameter is required", nil)
		return
	}

	sg, err := h.signups.GetByEmail(c.Request.Context(), email)
	if err != nil {
		response.FromError(c, "failed to load signup", err)
		return
	}

	response.Success(c, http.StatusOK, "signup loaded", sg)
}
