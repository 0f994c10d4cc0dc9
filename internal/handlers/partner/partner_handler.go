// internal/handlers/partner/partner_handler.go
package partner

import (
	"net/http"
	"strings"

	"mobility-service/internal/domain/partner"
	"mobility-service/internal/domain/session"
	"mobility-service/internal/middleware"
	"mobility-service/internal/pkg/response"
	documentService "mobility-service/internal/service/document"
	partnerService "mobility-service/internal/service/partner"
	sessionService "mobility-service/internal/service/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PartnerHandler struct {
	partners  *partnerService.Service
	sessions  *sessionService.Service
	documents *documentService.Service
	logger    *zap.Logger
}

func NewPartnerHandler(
	partners *partnerService.Service,
	sessions *sessionService.Service,
	documents *documentService.Service,
	logger *zap.Logger,
) *PartnerHandler {
	return &PartnerHandler{partners: partners, sessions: sessions, documents: documents, logger: logger}
}

// Create registers a social secretary account
func (h *PartnerHandler) Create(c *gin.Context) {
	var req partner.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	p, err := h.partners.Create(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("partner create failed", zap.String("email", req.Email), zap.Error(err))
		response.FromError(c, "failed to create partner", err)
		return
	}

	response.Success(c, http.StatusCreated, "partner created", p)
}

// Login authenticates a partner and issues a bearer token
func (h *PartnerHandler) Login(c *gin.Context) {
	var req partner.AuthenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	resp, err := h.partners.Authenticate(c.Request.Context(), c.ClientIP(), &req)
	if err != nil {
		h.logger.Warn("partner login failed", zap.String("email", req.Email), zap.Error(err))
		response.FromError(c, "login failed", err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", resp)
}

// Logout revokes the presented token
func (h *PartnerHandler) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		response.Unauthorized(c, "missing bearer token")
		return
	}

	if err := h.partners.Logout(c.Request.Context(), token); err != nil {
		response.FromError(c, "logout failed", err)
		return
	}

	response.Success(c, http.StatusOK, "logged out", nil)
}

// Profile returns the authenticated partner
func (h *PartnerHandler) Profile(c *gin.Context) {
	id, ok := middleware.GetPartnerID(c)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	p, err := h.partners.GetProfile(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "failed to load profile", err)
		return
	}

	response.Success(c, http.StatusOK, "profile loaded", p)
}

// Companies lists the partner's companies with their sessions
func (h *PartnerHandler) Companies(c *gin.Context) {
	code := c.GetString("partner_code")
	if code == "" {
		response.Unauthorized(c, "not authenticated")
		return
	}

	resp, err := h.partners.Companies(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("companies lookup failed", zap.String("partner_code", code), zap.Error(err))
		response.FromError(c, "failed to load companies", err)
		return
	}

	response.Success(c, http.StatusOK, "companies loaded", resp)
}

// Statistics aggregates sessions across the partner's companies
func (h *PartnerHandler) Statistics(c *gin.Context) {
	code := c.GetString("partner_code")
	if code == "" {
		response.Unauthorized(c, "not authenticated")
		return
	}

	stats, err := h.partners.Statistics(c.Request.Context(), code)
	if err != nil {
		response.FromError(c, "failed to load statistics", err)
		return
	}

	response.Success(c, http.StatusOK, "statistics loaded", stats)
}

// ReviewSession records an approve/reject decision. Approval re-renders the
// document in every language so the approved artifacts match the reviewed
// data.
func (h *PartnerHandler) ReviewSession(c *gin.Context) {
	var req session.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	if email, ok := middleware.GetPartnerEmail(c); ok && req.ReviewedBy == "" {
		req.ReviewedBy = email
	}

	sessionID := c.Param("id")
	us, err := h.sessions.Review(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.logger.Error("review failed", zap.String("session_id", sessionID), zap.Error(err))
		response.FromError(c, "failed to review session", err)
		return
	}

	if req.Status == session.StatusApproved {
		if err := h.documents.Regenerate(c.Request.Context(), sessionID); err != nil {
			h.logger.Error("document regeneration failed", zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	response.Success(c, http.StatusOK, "session reviewed", us)
}
