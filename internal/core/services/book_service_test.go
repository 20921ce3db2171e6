package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portssvc "github.com/SscSPs/library_lending_app/internal/core/ports/services"
	"github.com/SscSPs/library_lending_app/internal/core/services"
	"github.com/SscSPs/library_lending_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type BookServiceTestSuite struct {
	suite.Suite
	books   *MockBookRepository
	users   *MockUserRepository
	service portssvc.BookSvcFacade
}

func (suite *BookServiceTestSuite) SetupTest() {
	suite.books = new(MockBookRepository)
	suite.users = new(MockUserRepository)
	suite.users.On("FindUserByID", mock.Anything, "admin").Return(testAdmin("admin"), nil).Maybe()
	suite.users.On("FindUserByID", mock.Anything, "u1").Return(testUser("u1"), nil).Maybe()
	suite.service = services.NewBookService(suite.books, suite.users, services.WithClock(clockAt(&fixedNow)))
}

func (suite *BookServiceTestSuite) TestCreateBook_DefaultsToAvailable() {
	req := dto.CreateBookRequest{Title: " Dune ", Author: "Herbert", Category: "Fiction", Price: decimal.RequireFromString("18.50")}
	suite.books.On("SaveBook", mock.Anything, mock.MatchedBy(func(b domain.Book) bool {
		return b.Title == "Dune" && b.Status == domain.BookAvailable && b.CreatedBy == "admin"
	})).Return(nil).Once()

	outcome, err := suite.service.CreateBook(context.Background(), "admin", req)

	suite.Require().NoError(err)
	suite.NotEmpty(outcome.Book.BookID)
	suite.True(outcome.Book.Lendable())
	suite.books.AssertExpectations(suite.T())
}

func (suite *BookServiceTestSuite) TestCreateBook_Rejections() {
	tests := []struct {
		name  string
		actor string
		req   dto.CreateBookRequest
		want  error
	}{
		{"non admin", "u1", dto.CreateBookRequest{Title: "t", Author: "a", Category: "c"}, apperrors.ErrForbidden},
		{"missing title", "admin", dto.CreateBookRequest{Author: "a", Category: "c"}, apperrors.ErrValidation},
		{"negative price", "admin", dto.CreateBookRequest{Title: "t", Author: "a", Category: "c", Price: decimal.NewFromInt(-1)}, apperrors.ErrValidation},
		{"bad status", "admin", dto.CreateBookRequest{Title: "t", Author: "a", Category: "c", Status: "lost"}, apperrors.ErrValidation},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.service.CreateBook(context.Background(), tt.actor, tt.req)
			suite.ErrorIs(err, tt.want)
		})
	}
	suite.books.AssertNotCalled(suite.T(), "SaveBook", mock.Anything, mock.Anything)
}

func (suite *BookServiceTestSuite) TestUpdateBook_PartialFields() {
	existing := testBook("b1", "20.00")
	status := domain.BookComingSoon
	suite.books.On("FindBookByID", mock.Anything, "b1").Return(existing, nil)
	suite.books.On("UpdateBook", mock.Anything, mock.MatchedBy(func(b domain.Book) bool {
		return b.Status == domain.BookComingSoon && b.Title == existing.Title && b.LastUpdatedBy == "admin"
	})).Return(nil).Once()

	outcome, err := suite.service.UpdateBook(context.Background(), "admin", "b1", dto.UpdateBookRequest{Status: &status})

	suite.Require().NoError(err)
	suite.False(outcome.Book.Lendable())
}

func (suite *BookServiceTestSuite) TestDeleteBook_NotFound() {
	suite.books.On("FindBookByID", mock.Anything, "b9").Return(nil, apperrors.NotFound("book", "b9"))

	_, err := suite.service.DeleteBook(context.Background(), "admin", "b9")

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.books.AssertNotCalled(suite.T(), "DeleteBook", mock.Anything, mock.Anything)
}

func (suite *BookServiceTestSuite) TestListBooks_NormalizesPage() {
	suite.books.On("ListBooks", mock.Anything, mock.MatchedBy(func(f domain.BookFilter) bool {
		return f.Limit == 20 && f.Category == "Fiction"
	})).Return([]domain.Book{*testBook("b1", "1")}, nil).Once()

	list, err := suite.service.ListBooks(context.Background(), domain.BookFilter{Category: "Fiction"})

	suite.Require().NoError(err)
	suite.Len(list.Books, 1)
}

func TestBookServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BookServiceTestSuite))
}
