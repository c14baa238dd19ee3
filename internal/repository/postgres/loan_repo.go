package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/loanledger/backend/internal/domain/loan"
)

type LoanRepository struct {
	pool *pgxpool.Pool
}

func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

func (r *LoanRepository) Create(ctx context.Context, rec loan.CreateRecord) (*loan.Entity, error) {
	q := `
INSERT INTO loans (
  principal_amount, outstanding_principal, interest_rate, term_months,
  start_date, end_date, status, borrower_name
) VALUES ($1,$2,$3,$4,$5,NULL,$6,$7)
RETURNING id, principal_amount, outstanding_principal, interest_rate, term_months,
          start_date, end_date, status, borrower_name
`
	out, err := scanLoan(r.pool.QueryRow(ctx, q,
		rec.PrincipalAmount, rec.OutstandingPrincipal, rec.InterestRate, rec.TermMonths,
		rec.StartDate.Time, rec.Status, rec.BorrowerName,
	))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LoanRepository) List(ctx context.Context) ([]loan.Entity, error) {
	q := `
SELECT id, principal_amount, outstanding_principal, interest_rate, term_months,
       start_date, end_date, status, borrower_name
FROM loans
ORDER BY id
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]loan.Entity, 0)
	for rows.Next() {
		item, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LoanRepository) GetByID(ctx context.Context, id int64) (*loan.Entity, error) {
	q := `
SELECT id, principal_amount, outstanding_principal, interest_rate, term_months,
       start_date, end_date, status, borrower_name
FROM loans WHERE id = $1
`
	out, err := scanLoan(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &loan.NotFoundError{ID: id}
		}
		return nil, err
	}

	payments, err := r.listPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	out.Payments = payments
	return out, nil
}

func (r *LoanRepository) ApplyPayment(ctx context.Context, loanID int64, newOutstanding decimal.Decimal, status string, p loan.PaymentInput) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO payments (loan_id, amount_paid, payment_date) VALUES ($1,$2,$3)`,
		loanID, p.AmountPaid, p.PaymentDate.Time,
	); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE loans SET outstanding_principal = $2, status = $3 WHERE id = $1`,
		loanID, newOutstanding, status,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &loan.NotFoundError{ID: loanID}
	}

	return tx.Commit(ctx)
}

func (r *LoanRepository) listPayments(ctx context.Context, loanID int64) ([]loan.Payment, error) {
	q := `
SELECT id, loan_id, amount_paid, payment_date
FROM payments WHERE loan_id = $1
ORDER BY id
`
	rows, err := r.pool.Query(ctx, q, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]loan.Payment, 0)
	for rows.Next() {
		var item loan.Payment
		var paymentDate time.Time
		if err := rows.Scan(&item.ID, &item.LoanID, &item.AmountPaid, &paymentDate); err != nil {
			return nil, err
		}
		item.PaymentDate = loan.DateOf(paymentDate)
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanLoan(row pgx.Row) (*loan.Entity, error) {
	out := &loan.Entity{Payments: []loan.Payment{}}
	var startDate time.Time
	var endDate *time.Time
	if err := row.Scan(
		&out.ID, &out.PrincipalAmount, &out.OutstandingPrincipal, &out.InterestRate, &out.TermMonths,
		&startDate, &endDate, &out.Status, &out.BorrowerName,
	); err != nil {
		return nil, err
	}
	out.StartDate = loan.DateOf(startDate)
	if endDate != nil {
		d := loan.DateOf(*endDate)
		out.EndDate = &d
	}
	return out, nil
}
