package loan

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

type Service struct {
	repo Repository

	// rejectPaidLoans gates the only disputed rule in the system: whether a
	// payment against a PAID loan is refused. The permissive default matches
	// the historical behavior, where such payments are accepted and push the
	// balance below zero.
	rejectPaidLoans bool
}

func NewService(repo Repository, rejectPaidLoans bool) *Service {
	return &Service{repo: repo, rejectPaidLoans: rejectPaidLoans}
}

// CreateLoan stores a new loan. Status and outstanding balance are always
// derived here; any caller-supplied values for them are ignored. Principal
// sign, rate range, term and dates are accepted as-is.
func (s *Service) CreateLoan(ctx context.Context, in CreateInput) (*Entity, error) {
	return s.repo.Create(ctx, CreateRecord{
		CreateInput:          in,
		OutstandingPrincipal: in.PrincipalAmount,
		Status:               StatusActive,
	})
}

func (s *Service) ListLoans(ctx context.Context) ([]Entity, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetLoan(ctx context.Context, id int64) (*Entity, error) {
	return s.repo.GetByID(ctx, id)
}

// RecordPayment reduces the loan's outstanding principal by amount and stores
// the payment. The balance is not clamped at zero, and a loan that reaches a
// balance of zero or below becomes PAID and never reverts.
func (s *Service) RecordPayment(ctx context.Context, loanID int64, amount decimal.Decimal, paymentDate Date) error {
	ln, err := s.repo.GetByID(ctx, loanID)
	if err != nil {
		return err
	}

	if s.rejectPaidLoans && ln.Status == StatusPaid {
		return fmt.Errorf("loan %d: %w", loanID, ErrAlreadyPaid)
	}

	newOutstanding := ln.OutstandingPrincipal.Sub(amount)
	status := ln.Status
	if newOutstanding.LessThanOrEqual(decimal.Zero) {
		status = StatusPaid
	}

	return s.repo.ApplyPayment(ctx, loanID, newOutstanding, status, PaymentInput{
		AmountPaid:  amount,
		PaymentDate: paymentDate,
	})
}
