package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/library_lending_app/internal/core/ports/services"
	"github.com/SscSPs/library_lending_app/internal/dto"
	"github.com/SscSPs/library_lending_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// loanHandler handles the borrow, return and renew endpoints.
type loanHandler struct {
	lendingService portssvc.LendingSvcFacade
}

func newLoanHandler(ls portssvc.LendingSvcFacade) *loanHandler {
	return &loanHandler{lendingService: ls}
}

// registerLoanRoutes registers all loan routes.
func registerLoanRoutes(rg *gin.RouterGroup, lendingService portssvc.LendingSvcFacade) {
	h := newLoanHandler(lendingService)

	loans := rg.Group("/loans")
	{
		loans.POST("", h.borrow)
		loans.GET("", h.listLoans)
		loans.GET("/:borrowID", h.getLoan)
		loans.POST("/:borrowID/return", h.returnBook)
		loans.POST("/:borrowID/renew", h.renew)
	}
}

// borrow godoc
// @Summary Borrow a book
// @Description Lends a book and levies the borrow fine. userID defaults to the caller; administrators may borrow on behalf of another user.
// @Tags loans
// @Accept json
// @Produce json
// @Param loan body dto.BorrowRequest true "Book to borrow"
// @Success 201 {object} dto.BorrowResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Book already borrowed by this user"
// @Failure 422 {object} dto.ErrorResponse "Book unavailable or user not verified"
// @Security BearerAuth
// @Router /loans [post]
func (h *loanHandler) borrow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err, "borrow request")
		return
	}
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = actorID
	}

	outcome, err := h.lendingService.Borrow(c.Request.Context(), actorID, userID, req.BookID)
	if err != nil {
		respondError(c, logger, err, "Failed to borrow book")
		return
	}
	logger.Info("Book borrowed",
		slog.String("borrow_id", outcome.Loan.BorrowID),
		slog.String("book_id", req.BookID),
		slog.Bool("degraded", outcome.Degraded))
	markDegraded(c, outcome.Degraded)
	c.JSON(http.StatusCreated, dto.ToBorrowResponse(outcome))
}

// listLoans godoc
// @Summary List loans
// @Description Lists loans. Non-administrators only see their own. status=overdue lists borrowed loans past their due date.
// @Tags loans
// @Produce json
// @Param userID query string false "User ID"
// @Param bookID query string false "Book ID"
// @Param status query string false "Status" Enums(borrowed, returned, overdue)
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListLoansResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /loans [get]
func (h *loanHandler) listLoans(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListLoansParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err, "list loans query")
		return
	}
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	list, err := h.lendingService.ListLoans(c.Request.Context(), actorID, params.ToFilter())
	if err != nil {
		respondError(c, logger, err, "Failed to list loans")
		return
	}
	markDegraded(c, list.Degraded)
	c.JSON(http.StatusOK, dto.ToListLoansResponse(list))
}

// getLoan godoc
// @Summary Get a loan
// @Tags loans
// @Produce json
// @Param borrowID path string true "Borrow ID"
// @Success 200 {object} dto.LoanResult
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /loans/{borrowID} [get]
func (h *loanHandler) getLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	outcome, err := h.lendingService.GetLoan(c.Request.Context(), actorID, c.Param("borrowID"))
	if err != nil {
		respondError(c, logger, err, "Failed to get loan")
		return
	}
	markDegraded(c, outcome.Degraded)
	c.JSON(http.StatusOK, dto.ToLoanResult(outcome))
}

// returnBook godoc
// @Summary Return a book
// @Description Closes the loan, removes its borrow fine and levies an overdue fine when the return is late.
// @Tags loans
// @Produce json
// @Param borrowID path string true "Borrow ID"
// @Success 200 {object} dto.ReturnResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Loan already returned"
// @Security BearerAuth
// @Router /loans/{borrowID}/return [post]
func (h *loanHandler) returnBook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	borrowID := c.Param("borrowID")
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	outcome, err := h.lendingService.ReturnBook(c.Request.Context(), actorID, borrowID)
	if err != nil {
		respondError(c, logger, err, "Failed to return book")
		return
	}
	logger.Info("Book returned",
		slog.String("borrow_id", borrowID),
		slog.Bool("overdue_fine", outcome.OverdueFine != nil),
		slog.Bool("degraded", outcome.Degraded))
	markDegraded(c, outcome.Degraded)
	c.JSON(http.StatusOK, dto.ToReturnResponse(outcome))
}

// renew godoc
// @Summary Renew a loan
// @Description Pushes the due date one loan period from now.
// @Tags loans
// @Produce json
// @Param borrowID path string true "Borrow ID"
// @Success 200 {object} dto.LoanResult
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Loan already returned"
// @Security BearerAuth
// @Router /loans/{borrowID}/renew [post]
func (h *loanHandler) renew(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	outcome, err := h.lendingService.Renew(c.Request.Context(), actorID, c.Param("borrowID"))
	if err != nil {
		respondError(c, logger, err, "Failed to renew loan")
		return
	}
	markDegraded(c, outcome.Degraded)
	c.JSON(http.StatusOK, dto.ToLoanResult(outcome))
}
