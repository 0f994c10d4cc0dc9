// internal/handlers/upload/upload_handler.go
package upload

import (
	"net/http"

	"mobility-service/internal/pkg/response"
	uploadService "mobility-service/internal/service/upload"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UploadHandler struct {
	uploads *uploadService.Service
	logger  *zap.Logger
}

func NewUploadHandler(uploads *uploadService.Service, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{uploads: uploads, logger: logger}
}

// Upload accepts one multipart file under the "file" field and attaches it
// to the session given in the "sessionId" field
func (h *UploadHandler) Upload(c *gin.Context) {
	sessionID := c.PostForm("sessionId")
	if sessionID == "" {
		response.Error(c, http.StatusBadRequest, "sessionId form field is required", nil)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "file form field is required", err)
		return
	}

	f, err := h.uploads.Store(c.Request.Context(), sessionID, header)
	if err != nil {
		h.logger.Error("upload failed", zap.String("session_id", sessionID), zap.Error(err))
		response.FromError(c, "failed to store file", err)
		return
	}

	response.Success(c, http.StatusCreated, "file uploaded", f)
}

// ListBySession lists the files attached to one session
func (h *UploadHandler) ListBySession(c *gin.Context) {
	files, err := h.uploads.ListBySession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		response.FromError(c, "failed to list files", err)
		return
	}
	response.Success(c, http.StatusOK, "files loaded", files)
}

// Delete removes a stored file
func (h *UploadHandler) Delete(c *gin.Context) {
	if err := h.uploads.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, "failed to delete file", err)
		return
	}
	response.Success(c, http.StatusOK, "file deleted", nil)
}

// Analyze extracts car-category suggestions from a stored file
func (h *UploadHandler) Analyze(c *gin.Context) {
	suggestions, err := h.uploads.Analyze(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("analyze failed", zap.String("file_id", c.Param("id")), zap.Error(err))
		response.FromError(c, "failed to analyze file", err)
		return
	}
	response.Success(c, http.StatusOK, "file analyzed", suggestions)
}
