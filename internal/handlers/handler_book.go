package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/library_lending_app/internal/core/ports/services"
	"github.com/SscSPs/library_lending_app/internal/dto"
	"github.com/SscSPs/library_lending_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// bookHandler handles HTTP requests related to the catalogue.
type bookHandler struct {
	bookService portssvc.BookSvcFacade
}

func newBookHandler(bs portssvc.BookSvcFacade) *bookHandler {
	return &bookHandler{bookService: bs}
}

// registerBookRoutes registers the catalogue routes.
func registerBookRoutes(rg *gin.RouterGroup, bookService portssvc.BookSvcFacade) {
	h := newBookHandler(bookService)

	books := rg.Group("/books")
	{
		books.GET("", h.listBooks)
		books.GET("/:bookID", h.getBook)
		books.POST("", h.createBook)           // Admin only
		books.PUT("/:bookID", h.updateBook)    // Admin only
		books.DELETE("/:bookID", h.deleteBook) // Admin only
	}
}

// listBooks godoc
// @Summary List books
// @Description Lists the catalogue with optional filters. q matches title or author.
// @Tags books
// @Produce json
// @Param category query string false "Category"
// @Param author query string false "Author"
// @Param status query string false "Status" Enums(available, stockOut, comingSoon)
// @Param q query string false "Free text"
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListBooksResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /books [get]
func (h *bookHandler) listBooks(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListBooksParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err, "list books query")
		return
	}

	list, err := h.bookService.ListBooks(c.Request.Context(), params.ToFilter())
	if err != nil {
		respondError(c, logger, err, "Failed to list books")
		return
	}
	markDegraded(c, list.Degraded)
	c.JSON(http.StatusOK, dto.ToListBooksResponse(list))
}

// getBook godoc
// @Summary Get a book
// @Tags books
// @Produce json
// @Param bookID path string true "Book ID"
// @Success 200 {object} dto.BookResult
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /books/{bookID} [get]
func (h *bookHandler) getBook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	bookID := c.Param("bookID")

	outcome, err := h.bookService.GetBook(c.Request.Context(), bookID)
	if err != nil {
		respondError(c, logger, err, "Failed to get book")
		return
	}
	markDegraded(c, outcome.Degraded)
	c.JSON(http.StatusOK, dto.ToBookResult(outcome))
}

// createBook godoc
// @Summary Add a book
// @Description Adds a book to the catalogue. Status defaults to available.
// @Tags books
// @Accept json
// @Produce json
// @Param book body dto.CreateBookRequest true "Book details"
// @Success 201 {object} dto.BookResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /books [post]
func (h *bookHandler) createBook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err, "create book request")
		return
	}
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	outcome, err := h.bookService.CreateBook(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to create book")
		return
	}
	logger.Info("Book created", slog.String("book_id", outcome.Book.BookID))
	markDegraded(c, outcome.Degraded)
	c.JSON(http.StatusCreated, dto.ToBookResult(outcome))
}

// updateBook godoc
// @Summary Update a book
// @Description Updates the given fields of a book. Omitted fields are kept.
// @Tags books
// @Accept json
// @Produce json
// @Param bookID path string true "Book ID"
// @Param book body dto.UpdateBookRequest true "Fields to update"
// @Success 200 {object} dto.BookResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /books/{bookID} [put]
func (h *bookHandler) updateBook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	bookID := c.Param("bookID")
	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err, "update book request")
		return
	}
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	outcome, err := h.bookService.UpdateBook(c.Request.Context(), actorID, bookID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to update book")
		return
	}
	markDegraded(c, outcome.Degraded)
	c.JSON(http.StatusOK, dto.ToBookResult(outcome))
}

// deleteBook godoc
// @Summary Delete a book
// @Tags books
// @Produce json
// @Param bookID path string true "Book ID"
// @Success 200 {object} dto.BookResult
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /books/{bookID} [delete]
func (h *bookHandler) deleteBook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	bookID := c.Param("bookID")
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	outcome, err := h.bookService.DeleteBook(c.Request.Context(), actorID, bookID)
	if err != nil {
		respondError(c, logger, err, "Failed to delete book")
		return
	}
	logger.Info("Book deleted", slog.String("book_id", bookID))
	markDegraded(c, outcome.Degraded)
	c.JSON(http.StatusOK, dto.ToBookResult(outcome))
}
