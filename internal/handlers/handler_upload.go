package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portssvc "github.com/SscSPs/library_lending_app/internal/core/ports/services"
	"github.com/SscSPs/library_lending_app/internal/dto"
	"github.com/SscSPs/library_lending_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// maxMultipartMemory caps the part of an upload gin keeps in memory.
const maxMultipartMemory = 8 << 20

type uploadHandler struct {
	uploadService portssvc.UploadSvc
}

// registerUploadRoutes registers the file upload route.
func registerUploadRoutes(rg *gin.RouterGroup, uploadService portssvc.UploadSvc) {
	h := &uploadHandler{uploadService: uploadService}
	rg.POST("/uploads", h.upload)
}

// upload godoc
// @Summary Upload a file
// @Description Stores a cover image, a book PDF or a student card. The returned reference is what books and verification requests point at.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File"
// @Param kind formData string true "Kind" Enums(cover, document, verification)
// @Success 201 {object} dto.UploadResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /uploads [post]
func (h *uploadHandler) upload(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		respondBindError(c, logger, err, "multipart form")
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		respondBindError(c, logger, err, "uploaded file")
		return
	}
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	file, err := header.Open()
	if err != nil {
		respondBindError(c, logger, err, "uploaded file")
		return
	}
	defer file.Close()

	kind := domain.UploadKind(c.PostForm("kind"))
	up, err := h.uploadService.Upload(c.Request.Context(), actorID, kind, header.Filename,
		header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		respondError(c, logger, err, "Failed to store upload")
		return
	}
	logger.Info("File uploaded", slog.String("reference", up.Reference), slog.String("kind", string(kind)))
	c.JSON(http.StatusCreated, dto.UploadResponse{Reference: up.Reference, URL: up.URL})
}
