package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venuebook/venuebook/internal/dto"
	"github.com/venuebook/venuebook/internal/service"
	"github.com/venuebook/venuebook/pkg/response"
)

// UploadHandler serves the /uploads endpoints
type UploadHandler struct {
	uploads service.UploadService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploads service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// SignCloudinary handles POST /uploads/sign-cloudinary
func (h *UploadHandler) SignCloudinary(c *gin.Context) {
	var req dto.SignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "Invalid request body.")
		return
	}

	resp, err := h.uploads.SignUpload(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}
