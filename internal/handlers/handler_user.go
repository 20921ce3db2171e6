package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/library_lending_app/internal/core/ports/services"
	"github.com/SscSPs/library_lending_app/internal/dto"
	"github.com/SscSPs/library_lending_app/internal/middleware"

	"github.com/gin-gonic/gin"
)

// userHandler handles HTTP requests related to users.
type userHandler struct {
	userService      portssvc.UserSvcFacade
	reportingService portssvc.ReportingService
}

// newUserHandler creates a new userHandler.
func newUserHandler(us portssvc.UserSvcFacade, rs portssvc.ReportingService) *userHandler {
	return &userHandler{
		userService:      us,
		reportingService: rs,
	}
}

// registerUserRoutes registers all user-related routes.
func registerUserRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade, reportingService portssvc.ReportingService) {
	h := newUserHandler(userService, reportingService)

	users := rg.Group("/users")
	{
		users.GET("/me", h.getMe)
		users.PUT("/me", h.upsertMe)
		users.GET("", h.listUsers)                   // Admin only
		users.GET("/:userID", h.getUser)             // Own or admin
		users.PUT("/:userID/role", h.setRole)        // Admin only
		users.GET("/:userID/summary", h.userSummary) // Own or admin
	}
}

// getMe godoc
// @Summary Get my profile
// @Tags users
// @Produce json
// @Success 200 {object} dto.UserResult
// @Failure 404 {object} dto.ErrorResponse "Profile not created yet"
// @Security BearerAuth
// @Router /users/me [get]
func (h *userHandler) getMe(c *gin.Context) {
	h.respondUser(c, "")
}

// getUser godoc
// @Summary Get a user by ID
// @Description Retrieves a user. Non-administrators may only read themselves.
// @Tags users
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} dto.UserResult
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/{userID} [get]
func (h *userHandler) getUser(c *gin.Context) {
	h.respondUser(c, c.Param("userID"))
}

func (h *userHandler) respondUser(c *gin.Context, userID string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	outcome, err := h.userService.GetUser(c.Request.Context(), actorID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to get user")
		return
	}
	markDegraded(c, outcome.Degraded)
	c.JSON(http.StatusOK, dto.ToUserResult(outcome))
}

// upsertMe godoc
// @Summary Create or update my profile
// @Description Creates the caller's profile on first use. Role and verification status are never changed here.
// @Tags users
// @Accept json
// @Produce json
// @Param user body dto.UpsertProfileRequest true "Profile"
// @Success 200 {object} dto.UserResult
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/me [put]
func (h *userHandler) upsertMe(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err, "upsert profile request")
		return
	}
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	outcome, err := h.userService.UpsertProfile(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to save profile")
		return
	}
	markDegraded(c, outcome.Degraded)
	c.JSON(http.StatusOK, dto.ToUserResult(outcome))
}

// listUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListUsersResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users [get]
func (h *userHandler) listUsers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListUsersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err, "list users query")
		return
	}
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	list, err := h.userService.ListUsers(c.Request.Context(), actorID, params.Page())
	if err != nil {
		respondError(c, logger, err, "Failed to list users")
		return
	}
	markDegraded(c, list.Degraded)
	c.JSON(http.StatusOK, dto.ToListUsersResponse(list))
}

// setRole godoc
// @Summary Change a user's role
// @Description Administrators cannot change their own role.
// @Tags users
// @Accept json
// @Produce json
// @Param userID path string true "User ID"
// @Param role body dto.SetRoleRequest true "Role"
// @Success 200 {object} dto.UserResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/{userID}/role [put]
func (h *userHandler) setRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("userID")
	var req dto.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err, "set role request")
		return
	}
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	outcome, err := h.userService.SetRole(c.Request.Context(), actorID, userID, req.Role)
	if err != nil {
		respondError(c, logger, err, "Failed to set role")
		return
	}
	logger.Info("Role changed", slog.String("target_user_id", userID), slog.String("role", string(req.Role)))
	markDegraded(c, outcome.Degraded)
	c.JSON(http.StatusOK, dto.ToUserResult(outcome))
}

// userSummary godoc
// @Summary Get a user's standing
// @Description Active and overdue loans, pending fines and verification status.
// @Tags users
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} domain.UserSummary
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/{userID}/summary [get]
func (h *userHandler) userSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	summary, err := h.reportingService.UserSummary(c.Request.Context(), actorID, c.Param("userID"))
	if err != nil {
		respondError(c, logger, err, "Failed to build user summary")
		return
	}
	markDegraded(c, summary.Degraded)
	c.JSON(http.StatusOK, summary)
}
