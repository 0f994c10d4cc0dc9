// internal/handlers/session/session_handler.go
package session

import (
	"net/http"

	"mobility-service/internal/domain/session"
	"mobility-service/internal/pkg/response"
	documentService "mobility-service/internal/service/document"
	sessionService "mobility-service/internal/service/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SessionHandler struct {
	sessions  *sessionService.Service
	documents *documentService.Service
	logger    *zap.Logger
}

func NewSessionHandler(sessions *sessionService.Service, documents *documentService.Service, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, documents: documents, logger: logger}
}

// ========== Sessions ==========

// Create starts a new wizard session for a signup
func (h *SessionHandler) Create(c *gin.Context) {
	var req session.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	us, err := h.sessions.Create(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("session create failed", zap.String("signup_id", req.SignupID), zap.Error(err))
		response.FromError(c, "failed to create session", err)
		return
	}

	response.Success(c, http.StatusCreated, "session created", us)
}

// Get loads one session with its categories
func (h *SessionHandler) Get(c *gin.Context) {
	us, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, "failed to load session", err)
		return
	}
	response.Success(c, http.StatusOK, "session loaded", us)
}

// GetByEmail lists a user's sessions, newest activity first
func (h *SessionHandler) GetByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.Error(c, http.StatusBadRequest, "email query parameter is required", nil)
		return
	}

	sessions, err := h.sessions.GetByEmail(c.Request.Context(), email)
	if err != nil {
		h.logger.Error("session lookup failed", zap.String("email", email), zap.Error(err))
		response.FromError(c, "failed to load sessions", err)
		return
	}

	response.Success(c, http.StatusOK, "sessions loaded", sessions)
}

// Update applies a partial session update
func (h *SessionHandler) Update(c *gin.Context) {
	var req session.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	us, err := h.sessions.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.FromError(c, "failed to update session", err)
		return
	}

	response.Success(c, http.StatusOK, "session updated", us)
}

// UpdateStep moves the wizard pointer
func (h *SessionHandler) UpdateStep(c *gin.Context) {
	var req session.UpdateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	us, err := h.sessions.UpdateStep(c.Request.Context(), c.Param("id"), req.Step)
	if err != nil {
		response.FromError(c, "failed to update step", err)
		return
	}

	response.Success(c, http.StatusOK, "step updated", us)
}

// Submit finalizes the session for partner review
func (h *SessionHandler) Submit(c *gin.Context) {
	us, err := h.sessions.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Warn("session submit refused", zap.String("session_id", c.Param("id")), zap.Error(err))
		response.FromError(c, "failed to submit session", err)
		return
	}

	response.Success(c, http.StatusOK, "session submitted", us)
}

// Delete removes a session and everything attached to it
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, "failed to delete session", err)
		return
	}
	response.Success(c, http.StatusOK, "session deleted", nil)
}

// Statistics aggregates a signup's sessions by status
func (h *SessionHandler) Statistics(c *gin.Context) {
	signupID := c.Query("signupId")
	if signupID == "" {
		response.Error(c, http.StatusBadRequest, "signupId query parameter is required", nil)
		return
	}

	stats, err := h.sessions.Statistics(c.Request.Context(), signupID)
	if err != nil {
		response.FromError(c, "failed to load statistics", err)
		return
	}

	response.Success(c, http.StatusOK, "statistics loaded", stats)
}

// ========== Car Categories ==========

// AddCategory appends a category; the full session comes back
func (h *SessionHandler) AddCategory(c *gin.Context) {
	var req session.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	us, err := h.sessions.AddCategory(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.FromError(c, "failed to add category", err)
		return
	}

	response.Success(c, http.StatusCreated, "category added", us)
}

func (h *SessionHandler) UpdateCategory(c *gin.Context) {
	var req session.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	us, err := h.sessions.UpdateCategory(c.Request.Context(), c.Param("id"), c.Param("categoryId"), &req)
	if err != nil {
		response.FromError(c, "failed to update category", err)
		return
	}

	response.Success(c, http.StatusOK, "category updated", us)
}

func (h *SessionHandler) DeleteCategory(c *gin.Context) {
	us, err := h.sessions.DeleteCategory(c.Request.Context(), c.Param("id"), c.Param("categoryId"))
	if err != nil {
		response.FromError(c, "failed to delete category", err)
		return
	}

	response.Success(c, http.StatusOK, "category deleted", us)
}

// ========== Documents ==========

// SaveDocument renders and stores the policy document in every language
func (h *SessionHandler) SaveDocument(c *gin.Context) {
	var req session.SaveDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	resp, err := h.documents.Generate(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.logger.Error("document generation failed", zap.String("session_id", c.Param("id")), zap.Error(err))
		response.FromError(c, "failed to generate document", err)
		return
	}

	response.Success(c, http.StatusOK, "document generated", resp)
}

// GetDocumentContent serves one language's rendition. With download=true the
// content is sent as an attachment instead of the JSON envelope.
func (h *SessionHandler) GetDocumentContent(c *gin.Context) {
	lang := c.DefaultQuery("language", "en")

	doc, err := h.documents.GetContent(c.Request.Context(), c.Param("id"), lang)
	if err != nil {
		response.FromError(c, "failed to load document", err)
		return
	}

	if c.Query("download") == "true" {
		c.Header("Content-Disposition", `attachment; filename="mobility-policy-`+lang+`.html"`)
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc.Content))
		return
	}

	response.Success(c, http.StatusOK, "document loaded", doc)
}

// UpdateDocumentContent saves edited content for one language only
func (h *SessionHandler) UpdateDocumentContent(c *gin.Context) {
	var req session.UpdateDocumentContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	if err := h.documents.UpdateContent(c.Request.Context(), c.Param("id"), &req); err != nil {
		response.FromError(c, "failed to save document", err)
		return
	}

	response.Success(c, http.StatusOK, "document saved", session.DocumentContentResponse{
		Language: req.Language,
		Content:  req.DocumentContent,
	})
}

// DocumentLanguages lists the languages with a stored rendition
func (h *SessionHandler) DocumentLanguages(c *gin.Context) {
	languages, err := h.documents.Languages(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, "failed to list document languages", err)
		return
	}
	response.Success(c, http.StatusOK, "languages loaded", languages)
}
