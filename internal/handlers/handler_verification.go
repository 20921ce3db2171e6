package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/library_lending_app/internal/core/ports/services"
	"github.com/SscSPs/library_lending_app/internal/dto"
	"github.com/SscSPs/library_lending_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// verificationHandler handles student verification requests and their review.
type verificationHandler struct {
	verificationService portssvc.VerificationSvcFacade
}

func newVerificationHandler(vs portssvc.VerificationSvcFacade) *verificationHandler {
	return &verificationHandler{verificationService: vs}
}

// registerVerificationRoutes registers all verification routes.
func registerVerificationRoutes(rg *gin.RouterGroup, verificationService portssvc.VerificationSvcFacade) {
	h := newVerificationHandler(verificationService)

	verifications := rg.Group("/verifications")
	{
		verifications.PUT("/me", h.submit)
		verifications.GET("/me", h.getMine)
		verifications.GET("", h.listVerifications)                // Admin only
		verifications.POST("/:verificationID/decision", h.decide) // Admin only
		verifications.GET("/users/:userID", h.getForUser)         // Own or admin
		verifications.DELETE("/users/:userID", h.reset)           // Admin only
	}
}

// submit godoc
// @Summary Submit a verification request
// @Description Stores the caller's student card for review. Resubmitting replaces a pending or rejected request.
// @Tags verifications
// @Accept json
// @Produce json
// @Param request body dto.SubmitVerificationRequest true "Uploaded image reference"
// @Success 200 {object} dto.VerificationResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Profile missing"
// @Failure 409 {object} dto.ErrorResponse "Already verified"
// @Security BearerAuth
// @Router /verifications/me [put]
func (h *verificationHandler) submit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SubmitVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err, "submit verification request")
		return
	}
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	outcome, err := h.verificationService.SubmitVerification(c.Request.Context(), actorID, req.Image)
	if err != nil {
		respondError(c, logger, err, "Failed to submit verification")
		return
	}
	logger.Info("Verification submitted", slog.String("verification_id", outcome.Request.VerificationID))
	markDegraded(c, outcome.Degraded)
	c.JSON(http.StatusOK, dto.ToVerificationResult(outcome))
}

// getMine godoc
// @Summary Get my verification request
// @Tags verifications
// @Produce json
// @Success 200 {object} dto.VerificationResult
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /verifications/me [get]
func (h *verificationHandler) getMine(c *gin.Context) {
	h.respondForUser(c, "")
}

// getForUser godoc
// @Summary Get a user's verification request
// @Tags verifications
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} dto.VerificationResult
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /verifications/users/{userID} [get]
func (h *verificationHandler) getForUser(c *gin.Context) {
	h.respondForUser(c, c.Param("userID"))
}

func (h *verificationHandler) respondForUser(c *gin.Context, userID string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	outcome, err := h.verificationService.GetVerificationForUser(c.Request.Context(), actorID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to get verification")
		return
	}
	markDegraded(c, outcome.Degraded)
	c.JSON(http.StatusOK, dto.ToVerificationResult(outcome))
}

// listVerifications godoc
// @Summary List verification requests
// @Description Lists requests for review, oldest first. Defaults to pending.
// @Tags verifications
// @Produce json
// @Param status query string false "Status" Enums(pending, verified, rejected, all) default(pending)
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListVerificationsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /verifications [get]
func (h *verificationHandler) listVerifications(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListVerificationsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err, "list verifications query")
		return
	}
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	list, err := h.verificationService.ListVerifications(c.Request.Context(), actorID, params.StatusFilter(), params.Page())
	if err != nil {
		respondError(c, logger, err, "Failed to list verifications")
		return
	}
	markDegraded(c, list.Degraded)
	c.JSON(http.StatusOK, dto.ToListVerificationsResponse(list))
}

// decide godoc
// @Summary Decide a verification request
// @Description Approves or rejects a pending request and updates the user's verification status.
// @Tags verifications
// @Accept json
// @Produce json
// @Param verificationID path string true "Verification ID"
// @Param decision body dto.DecideVerificationRequest true "Decision"
// @Success 200 {object} dto.VerificationResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Already decided"
// @Security BearerAuth
// @Router /verifications/{verificationID}/decision [post]
func (h *verificationHandler) decide(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	verificationID := c.Param("verificationID")
	var req dto.DecideVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err, "decide verification request")
		return
	}
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	outcome, err := h.verificationService.DecideVerification(c.Request.Context(), actorID, verificationID, req.Decision)
	if err != nil {
		respondError(c, logger, err, "Failed to decide verification")
		return
	}
	logger.Info("Verification decided",
		slog.String("verification_id", verificationID),
		slog.String("status", string(outcome.Request.Status)))
	markDegraded(c, outcome.Degraded)
	c.JSON(http.StatusOK, dto.ToVerificationResult(outcome))
}

// reset godoc
// @Summary Reset a user's verification
// @Description Discards the user's request so they can submit again.
// @Tags verifications
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} dto.VerificationResult
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /verifications/users/{userID} [delete]
func (h *verificationHandler) reset(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("userID")
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	outcome, err := h.verificationService.ResetVerification(c.Request.Context(), actorID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to reset verification")
		return
	}
	logger.Info("Verification reset", slog.String("target_user_id", userID))
	markDegraded(c, outcome.Degraded)
	c.JSON(http.StatusOK, dto.ToVerificationResult(outcome))
}
