package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/library_lending_app/internal/core/ports/services"
	"github.com/SscSPs/library_lending_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// registerReportingRoutes registers the dashboard routes.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := &reportingHandler{reportingService: reportingService}

	reports := rg.Group("/reports")
	reports.GET("/summary", h.librarySummary) // Admin only
}

// librarySummary godoc
// @Summary Library dashboard
// @Description Catalogue, loan, fine and verification counters.
// @Tags reports
// @Produce json
// @Success 200 {object} domain.LibrarySummary
// @Failure 403 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /reports/summary [get]
func (h *reportingHandler) librarySummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	summary, err := h.reportingService.LibrarySummary(c.Request.Context(), actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to build library summary")
		return
	}
	markDegraded(c, summary.Degraded)
	c.JSON(http.StatusOK, summary)
}
