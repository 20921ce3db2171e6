package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/library_lending_app/internal/core/ports/services"
	"github.com/SscSPs/library_lending_app/internal/dto"
	"github.com/SscSPs/library_lending_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type fineHandler struct {
	fineService portssvc.FineSvcFacade
}

func newFineHandler(fs portssvc.FineSvcFacade) *fineHandler {
	return &fineHandler{fineService: fs}
}

// registerFineRoutes registers all fine routes.
func registerFineRoutes(rg *gin.RouterGroup, fineService portssvc.FineSvcFacade) {
	h := newFineHandler(fineService)

	fines := rg.Group("/fines")
	{
		fines.GET("", h.listFines)
		fines.POST("", h.addFine)             // Admin only
		fines.DELETE("/:fineID", h.clearFine) // Admin only
		fines.POST("/payments", h.payFines)   // Admin only
	}
}

// listFines godoc
// @Summary List fines
// @Description Lists fines oldest first. Non-administrators only see their own.
// @Tags fines
// @Produce json
// @Param userID query string false "User ID"
// @Param bookID query string false "Book ID"
// @Param reason query string false "Reason" Enums(borrow, overdue)
// @Param status query string false "Status" Enums(pending, paid)
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListFinesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /fines [get]
func (h *fineHandler) listFines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListFinesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err, "list fines query")
		return
	}
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	list, err := h.fineService.ListFines(c.Request.Context(), actorID, params.ToFilter())
	if err != nil {
		respondError(c, logger, err, "Failed to list fines")
		return
	}
	markDegraded(c, list.Degraded)
	c.JSON(http.StatusOK, dto.ToListFinesResponse(list))
}

// addFine godoc
// @Summary Levy a fine
// @Tags fines
// @Accept json
// @Produce json
// @Param fine body dto.AddFineRequest true "Fine details"
// @Success 201 {object} dto.FineResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /fines [post]
func (h *fineHandler) addFine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AddFineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err, "add fine request")
		return
	}
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	outcome, err := h.fineService.AddFine(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to add fine")
		return
	}
	logger.Info("Fine levied", slog.String("fine_id", outcome.Fine.FineID), slog.String("target_user_id", req.UserID))
	markDegraded(c, outcome.Degraded)
	c.JSON(http.StatusCreated, dto.ToFineResult(outcome))
}

// clearFine godoc
// @Summary Clear a fine
// @Description Removes a fine outright.
// @Tags fines
// @Produce json
// @Param fineID path string true "Fine ID"
// @Success 200 {object} dto.FineResult
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /fines/{fineID} [delete]
func (h *fineHandler) clearFine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	fineID := c.Param("fineID")
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	outcome, err := h.fineService.ClearFine(c.Request.Context(), actorID, fineID)
	if err != nil {
		respondError(c, logger, err, "Failed to clear fine")
		return
	}
	logger.Info("Fine cleared", slog.String("fine_id", fineID))
	markDegraded(c, outcome.Degraded)
	c.JSON(http.StatusOK, dto.ToFineResult(outcome))
}

// payFines godoc
// @Summary Pay fines
// @Description Applies a payment to the user's pending fines, oldest first. A remainder reduces the next fine without clearing it.
// @Tags fines
// @Accept json
// @Produce json
// @Param payment body dto.PayFinesRequest true "Payment"
// @Success 200 {object} dto.PaymentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /fines/payments [post]
func (h *fineHandler) payFines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PayFinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err, "pay fines request")
		return
	}
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	outcome, err := h.fineService.PayPartial(c.Request.Context(), actorID, req.UserID, req.Amount)
	if err != nil {
		respondError(c, logger, err, "Failed to apply payment")
		return
	}
	logger.Info("Payment applied",
		slog.String("payment_id", outcome.Payment.PaymentID),
		slog.String("target_user_id", req.UserID),
		slog.String("amount", req.Amount.StringFixed(2)))
	markDegraded(c, outcome.Degraded)
	c.JSON(http.StatusOK, dto.ToPaymentResponse(outcome))
}
