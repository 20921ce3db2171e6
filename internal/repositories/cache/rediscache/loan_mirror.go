package rediscache

import (
	"context"
	"sort"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	"github.com/redis/go-redis/v9"
)

var _ portsrepo.LoanRepositoryFacade = (*Mirror)(nil)

func (m *Mirror) FindLoanByID(ctx context.Context, borrowID string) (*domain.BorrowRecord, error) {
	loan, err := getEntity[domain.BorrowRecord](ctx, m.client, m.entityKey(KindLoan), "loan", borrowID)
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (m *Mirror) loans(ctx context.Context, keep func(domain.BorrowRecord) bool) ([]domain.BorrowRecord, error) {
	all, err := allEntities[domain.BorrowRecord](ctx, m.client, m.entityKey(KindLoan), "loans")
	if err != nil {
		return nil, err
	}
	out := make([]domain.BorrowRecord, 0, len(all))
	for _, l := range all {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *Mirror) ListLoans(ctx context.Context, filter domain.LoanFilter) ([]domain.BorrowRecord, error) {
	if filter.Status == domain.LoanOverdue {
		return nil, apperrors.Validation("status", "overdue is derived, list active loans instead")
	}
	out, err := m.loans(ctx, func(l domain.BorrowRecord) bool {
		return (filter.UserID == "" || l.UserID == filter.UserID) &&
			(filter.BookID == "" || l.BookID == filter.BookID) &&
			(filter.Status == "" || l.Status == filter.Status)
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BorrowDate.Equal(out[j].BorrowDate) {
			return out[i].BorrowDate.After(out[j].BorrowDate)
		}
		return out[i].BorrowID < out[j].BorrowID
	})
	return paginate(out, filter.Page), nil
}

func (m *Mirror) ListActiveLoans(ctx context.Context, userID string) ([]domain.BorrowRecord, error) {
	out, err := m.loans(ctx, func(l domain.BorrowRecord) bool {
		return l.Status == domain.LoanBorrowed && (userID == "" || l.UserID == userID)
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].BorrowID < out[j].BorrowID
	})
	return out, nil
}

// CreateLoan claims the (user, book) slot with HSETNX before writing the
// loan and its fine, so two concurrent borrows cannot both succeed.
func (m *Mirror) CreateLoan(ctx context.Context, loan domain.BorrowRecord, fine domain.Fine) error {
	loanRaw, err := encode(loan)
	if err != nil {
		return err
	}
	fineRaw, err := encode(fine)
	if err != nil {
		return err
	}
	field := activeField(loan.UserID, loan.BookID)
	claimed, err := m.client.HSetNX(ctx, m.activeKey(), field, loan.BorrowID).Result()
	if err != nil {
		return mirrorErr("claim active loan", err)
	}
	if !claimed {
		return apperrors.Conflict(apperrors.ErrAlreadyBorrowed, "book", loan.BookID)
	}
	_, err = m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, m.entityKey(KindLoan), loan.BorrowID, loanRaw)
		pipe.HSet(ctx, m.entityKey(KindFine), fine.FineID, fineRaw)
		return nil
	})
	if err != nil {
		m.client.HDel(ctx, m.activeKey(), field)
		return mirrorErr("create loan", err)
	}
	return nil
}

func (m *Mirror) CloseLoan(ctx context.Context, closure domain.LoanClosure) error {
	loan := closure.Loan
	loanKey, fineKey := m.entityKey(KindLoan), m.entityKey(KindFine)
	loanRaw, err := encode(loan)
	if err != nil {
		return err
	}
	var overdueRaw string
	if closure.OverdueFine != nil {
		if overdueRaw, err = encode(*closure.OverdueFine); err != nil {
			return err
		}
	}
	return m.watch(ctx, func(tx *redis.Tx) error {
		cur, err := getEntity[domain.BorrowRecord](ctx, tx, loanKey, "loan", loan.BorrowID)
		if err != nil {
			return err
		}
		if cur.Status != domain.LoanBorrowed {
			return apperrors.Conflict(apperrors.ErrAlreadyReturned, "loan", loan.BorrowID)
		}
		field := activeField(cur.UserID, cur.BookID)
		holder, err := tx.HGet(ctx, m.activeKey(), field).Result()
		if err != nil && err != redis.Nil {
			return mirrorErr("close loan", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, loanKey, loan.BorrowID, loanRaw)
			if len(closure.RemovedFineIDs) > 0 {
				pipe.HDel(ctx, fineKey, closure.RemovedFineIDs...)
			}
			if closure.OverdueFine != nil {
				pipe.HSet(ctx, fineKey, closure.OverdueFine.FineID, overdueRaw)
			}
			if holder == loan.BorrowID {
				pipe.HDel(ctx, m.activeKey(), field)
			}
			return nil
		})
		return err
	}, loanKey, m.activeKey())
}

func (m *Mirror) RenewLoan(ctx context.Context, loan domain.BorrowRecord) error {
	loanKey := m.entityKey(KindLoan)
	raw, err := encode(loan)
	if err != nil {
		return err
	}
	return m.watch(ctx, func(tx *redis.Tx) error {
		cur, err := getEntity[domain.BorrowRecord](ctx, tx, loanKey, "loan", loan.BorrowID)
		if err != nil {
			return err
		}
		if cur.Status != domain.LoanBorrowed {
			return apperrors.Conflict(apperrors.ErrAlreadyReturned, "loan", loan.BorrowID)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, loanKey, loan.BorrowID, raw)
			return nil
		})
		return err
	}, loanKey)
}
