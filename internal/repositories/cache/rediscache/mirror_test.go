package rediscache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newTestMirror(t *testing.T) *Mirror {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewMirror(client, "test")
}

func borrowPair(id, userID, bookID string) (domain.BorrowRecord, domain.Fine) {
	loan := domain.BorrowRecord{
		BorrowID:   id,
		BookID:     bookID,
		UserID:     userID,
		BorrowDate: testNow,
		DueDate:    testNow.Add(domain.DefaultLoanPeriod),
		Status:     domain.LoanBorrowed,
	}
	fine := domain.Fine{
		FineID:   "fine-" + id,
		UserID:   userID,
		BookID:   bookID,
		BorrowID: id,
		Amount:   decimal.NewFromInt(20),
		Reason:   domain.FineBorrow,
		Status:   domain.FinePending,
	}
	return loan, fine
}

func TestCreateLoan_ConcurrentBorrowsOnlyOneWins(t *testing.T) {
	m := newTestMirror(t)
	ctx := context.Background()

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			loan, fine := borrowPair(fmt.Sprintf("loan-%d", i), "u1", "b1")
			err := m.CreateLoan(ctx, loan, fine)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperrors.ErrAlreadyBorrowed):
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)

	active, err := m.ListActiveLoans(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, active, 1)

	pending, err := m.ListPendingFines(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestCloseLoan_ReleasesSlot(t *testing.T) {
	m := newTestMirror(t)
	ctx := context.Background()
	loan, fine := borrowPair("l1", "u1", "b1")
	require.NoError(t, m.CreateLoan(ctx, loan, fine))

	returned := loan
	returnedAt := testNow.Add(time.Hour)
	returned.Status = domain.LoanReturned
	returned.ReturnDate = &returnedAt
	closure := domain.LoanClosure{Loan: returned, RemovedFineIDs: []string{fine.FineID}}

	require.NoError(t, m.CloseLoan(ctx, closure))
	assert.ErrorIs(t, m.CloseLoan(ctx, closure), apperrors.ErrAlreadyReturned)
	assert.ErrorIs(t, m.RenewLoan(ctx, returned), apperrors.ErrAlreadyReturned)

	_, err := m.FindFineByID(ctx, fine.FineID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	again, againFine := borrowPair("l2", "u1", "b1")
	assert.NoError(t, m.CreateLoan(ctx, again, againFine))
}

func TestListLoans_RejectsOverdueStatus(t *testing.T) {
	m := newTestMirror(t)
	_, err := m.ListLoans(context.Background(), domain.LoanFilter{Status: domain.LoanOverdue})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestApplyPayment(t *testing.T) {
	ctx := context.Background()
	seed := func(t *testing.T) *Mirror {
		m := newTestMirror(t)
		for i, amount := range []string{"5.00", "10.00"} {
			require.NoError(t, m.SaveFine(ctx, domain.Fine{
				FineID:    fmt.Sprintf("f%d", i+1),
				UserID:    "u1",
				BookID:    "b1",
				Amount:    decimal.RequireFromString(amount),
				Reason:    domain.FineBorrow,
				Status:    domain.FinePending,
				CreatedAt: testNow.Add(time.Duration(i) * time.Minute),
			}))
		}
		return m
	}

	t.Run("clears and reduces", func(t *testing.T) {
		m := seed(t)
		pending, err := m.ListPendingFines(ctx, "u1")
		require.NoError(t, err)
		payment := domain.AllocatePayment(pending, decimal.RequireFromString("7.50"))
		payment.PaymentID, payment.UserID = "p1", "u1"

		require.NoError(t, m.ApplyPayment(ctx, payment))

		left, err := m.ListPendingFines(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, "f2", left[0].FineID)
		assert.Equal(t, "7.50", left[0].Outstanding().StringFixed(2))

		stored, err := m.Load(ctx, KindPayment, "p1")
		require.NoError(t, err)
		assert.Equal(t, []string{"f1"}, stored.(domain.FinePayment).ClearedFineIDs)
	})

	t.Run("stale allocation writes nothing", func(t *testing.T) {
		m := seed(t)
		pending, err := m.ListPendingFines(ctx, "u1")
		require.NoError(t, err)
		payment := domain.AllocatePayment(pending, decimal.RequireFromString("7.50"))
		payment.PaymentID, payment.UserID = "p1", "u1"
		require.NoError(t, m.DeleteFine(ctx, "f1"))

		err = m.ApplyPayment(ctx, payment)

		assert.ErrorIs(t, err, apperrors.ErrStale)
		f2, err := m.FindFineByID(ctx, "f2")
		require.NoError(t, err)
		assert.True(t, f2.PaidAmount.IsZero())
		_, err = m.Load(ctx, KindPayment, "p1")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestApplyPayment_SecondAllocationFromSameSnapshotIsStale(t *testing.T) {
	ctx := context.Background()
	m := newTestMirror(t)
	require.NoError(t, m.SaveFine(ctx, domain.Fine{
		FineID:    "f1",
		UserID:    "u1",
		BookID:    "b1",
		Amount:    decimal.NewFromInt(20),
		Reason:    domain.FineBorrow,
		Status:    domain.FinePending,
		CreatedAt: testNow,
	}))
	pending, err := m.ListPendingFines(ctx, "u1")
	require.NoError(t, err)

	first := domain.AllocatePayment(pending, decimal.NewFromInt(5))
	first.PaymentID, first.UserID = "p1", "u1"
	second := domain.AllocatePayment(pending, decimal.NewFromInt(7))
	second.PaymentID, second.UserID = "p2", "u1"

	require.NoError(t, m.ApplyPayment(ctx, first))
	err = m.ApplyPayment(ctx, second)

	assert.ErrorIs(t, err, apperrors.ErrStale)
	f1, err := m.FindFineByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "5.00", f1.PaidAmount.StringFixed(2))
	_, err = m.Load(ctx, KindPayment, "p2")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestApplyPayment_ClearingAPartlyPaidFineIsStale(t *testing.T) {
	ctx := context.Background()
	m := newTestMirror(t)
	require.NoError(t, m.SaveFine(ctx, domain.Fine{
		FineID:    "f1",
		UserID:    "u1",
		BookID:    "b1",
		Amount:    decimal.NewFromInt(10),
		Reason:    domain.FineBorrow,
		Status:    domain.FinePending,
		CreatedAt: testNow,
	}))
	pending, err := m.ListPendingFines(ctx, "u1")
	require.NoError(t, err)

	partial := domain.AllocatePayment(pending, decimal.NewFromInt(4))
	partial.PaymentID, partial.UserID = "p1", "u1"
	full := domain.AllocatePayment(pending, decimal.NewFromInt(10))
	full.PaymentID, full.UserID = "p2", "u1"
	require.Equal(t, []string{"f1"}, full.ClearedFineIDs)

	require.NoError(t, m.ApplyPayment(ctx, partial))
	err = m.ApplyPayment(ctx, full)

	assert.ErrorIs(t, err, apperrors.ErrStale)
	f1, err := m.FindFineByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "6.00", f1.Outstanding().StringFixed(2))
}

func TestVerificationLifecycle(t *testing.T) {
	m := newTestMirror(t)
	ctx := context.Background()
	require.NoError(t, m.SaveUser(ctx, domain.User{UserID: "u1", Role: domain.RoleUser, VerificationStatus: domain.VerificationNone}))

	req := domain.VerificationRequest{VerificationID: "v1", UserID: "u1", Image: "img", SubmittedAt: testNow}
	require.NoError(t, m.UpsertVerification(ctx, req))

	user, err := m.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationPending, user.VerificationStatus)

	decided := req
	decided.Status = domain.VerificationVerified
	decided.DecidedBy = "admin"
	require.NoError(t, m.DecideVerification(ctx, decided))
	assert.ErrorIs(t, m.DecideVerification(ctx, decided), apperrors.ErrAlreadyDecided)

	user, err = m.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationVerified, user.VerificationStatus)

	assert.ErrorIs(t, m.UpsertVerification(ctx, req), apperrors.ErrAlreadyVerified)

	require.NoError(t, m.DeleteVerification(ctx, "u1"))
	_, err = m.FindVerificationByUser(ctx, "u1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	user, err = m.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationNone, user.VerificationStatus)
}

func TestUpdateUser_KeepsVerificationStatus(t *testing.T) {
	m := newTestMirror(t)
	ctx := context.Background()
	require.NoError(t, m.SaveUser(ctx, domain.User{UserID: "u1", Name: "Ada", VerificationStatus: domain.VerificationVerified}))
	assert.ErrorIs(t, m.SaveUser(ctx, domain.User{UserID: "u1"}), apperrors.ErrDuplicate)

	require.NoError(t, m.UpdateUser(ctx, domain.User{UserID: "u1", Name: "Ada L", VerificationStatus: domain.VerificationNone}))

	user, err := m.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada L", user.Name)
	assert.Equal(t, domain.VerificationVerified, user.VerificationStatus)
	assert.ErrorIs(t, m.UpdateUser(ctx, domain.User{UserID: "u9"}), apperrors.ErrNotFound)
}

func TestListBooks_FiltersAndPages(t *testing.T) {
	m := newTestMirror(t)
	ctx := context.Background()
	books := []domain.Book{
		{BookID: "b1", Title: "Dune", Author: "Frank Herbert", Category: "Fiction", Status: domain.BookAvailable},
		{BookID: "b2", Title: "Emma", Author: "Jane Austen", Category: "Fiction", Status: domain.BookStockOut},
		{BookID: "b3", Title: "Cosmos", Author: "Carl Sagan", Category: "Science", Status: domain.BookAvailable},
	}
	require.NoError(t, m.Store(ctx, books[0], books[1], books[2]))

	fiction, err := m.ListBooks(ctx, domain.BookFilter{Category: "Fiction"})
	require.NoError(t, err)
	assert.Len(t, fiction, 2)

	byQuery, err := m.ListBooks(ctx, domain.BookFilter{Query: "sagan"})
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, "b3", byQuery[0].BookID)

	paged, err := m.ListBooks(ctx, domain.BookFilter{Page: domain.Page{Limit: 1, Offset: 1}})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "Dune", paged[0].Title)

	total, available, err := m.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, available)
}

func TestDirtyTracking(t *testing.T) {
	m := newTestMirror(t)
	ctx := context.Background()

	require.NoError(t, m.MarkDirty(ctx, KindFine, "f1"))
	require.NoError(t, m.MarkDirty(ctx, KindLoan, "l1"))
	require.NoError(t, m.MarkDirty(ctx, KindUser, "u1"))

	keys, err := m.DirtyKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 3)
	assert.Equal(t, []Kind{KindUser, KindLoan, KindFine}, []Kind{keys[0].Kind, keys[1].Kind, keys[2].Kind})

	// A change after the read keeps the marker.
	require.NoError(t, m.MarkDirty(ctx, KindUser, "u1"))
	cleared, err := m.ClearDirty(ctx, keys[0])
	require.NoError(t, err)
	assert.False(t, cleared)

	cleared, err = m.ClearDirty(ctx, keys[1])
	require.NoError(t, err)
	assert.True(t, cleared)

	keys, err = m.DirtyKeys(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}

func TestRefresh_LeavesDirtyEntitiesAlone(t *testing.T) {
	m := newTestMirror(t)
	ctx := context.Background()
	local := domain.Book{BookID: "b1", Title: "Local edit"}
	require.NoError(t, m.Store(ctx, local))
	require.NoError(t, m.MarkDirty(ctx, KindBook, "b1"))

	require.NoError(t, m.Refresh(ctx, domain.Book{BookID: "b1", Title: "Primary copy"}))
	got, err := m.FindBookByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "Local edit", got.Title)

	require.NoError(t, m.Store(ctx, domain.Book{BookID: "b1", Title: "Written through"}))
	got, err = m.FindBookByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "Written through", got.Title)
}

func TestStore_ReturnedLoanReleasesActiveSlot(t *testing.T) {
	m := newTestMirror(t)
	ctx := context.Background()
	loan, _ := borrowPair("l1", "u1", "b1")
	require.NoError(t, m.Store(ctx, loan))

	other, otherFine := borrowPair("l2", "u1", "b1")
	assert.ErrorIs(t, m.CreateLoan(ctx, other, otherFine), apperrors.ErrAlreadyBorrowed)

	loan.Status = domain.LoanReturned
	require.NoError(t, m.Store(ctx, loan))
	assert.NoError(t, m.CreateLoan(ctx, other, otherFine))
}

func TestConflicts(t *testing.T) {
	m := newTestMirror(t)
	ctx := context.Background()
	key := DirtyKey{Kind: KindLoan, ID: "l1", Version: 1}
	require.NoError(t, m.RecordConflict(ctx, key, "duplicate active loan"))

	conflicts, err := m.Conflicts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"loan:l1": "duplicate active loan"}, conflicts)
}
