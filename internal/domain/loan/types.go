package loan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive = "ACTIVE"
	StatusPaid   = "PAID"
)

const dateLayout = "2006-01-02"

// Date is a calendar date with no time component, serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func DateOf(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type Entity struct {
	ID                   int64           `json:"id"`
	PrincipalAmount      decimal.Decimal `json:"principalAmount"`
	OutstandingPrincipal decimal.Decimal `json:"outstandingPrincipal"`
	InterestRate         decimal.Decimal `json:"interestRate"`
	TermMonths           int32           `json:"termMonths"`
	StartDate            Date            `json:"startDate"`
	EndDate              *Date           `json:"endDate"`
	Status               string          `json:"status"`
	BorrowerName         string          `json:"borrowerName"`
	Payments             []Payment       `json:"payments"`
}

// Payment links back to its loan by identifier only. The loan id stays out of
// the serialized form; payments only ever appear nested under their loan.
type Payment struct {
	ID          int64           `json:"id"`
	LoanID      int64           `json:"-"`
	AmountPaid  decimal.Decimal `json:"amountPaid"`
	PaymentDate Date            `json:"paymentDate"`
}

type CreateInput struct {
	PrincipalAmount decimal.Decimal
	InterestRate    decimal.Decimal
	TermMonths      int32
	StartDate       Date
	BorrowerName    string
}

// CreateRecord is what actually gets persisted: the caller-supplied fields
// plus the status and outstanding balance the service derives.
type CreateRecord struct {
	CreateInput
	OutstandingPrincipal decimal.Decimal
	Status               string
}

type PaymentInput struct {
	AmountPaid  decimal.Decimal
	PaymentDate Date
}

type Repository interface {
	Create(ctx context.Context, rec CreateRecord) (*Entity, error)
	List(ctx context.Context) ([]Entity, error)
	GetByID(ctx context.Context, id int64) (*Entity, error)
	// ApplyPayment persists the payment row and the loan update as one
	// atomic unit.
	ApplyPayment(ctx context.Context, loanID int64, newOutstanding decimal.Decimal, status string, p PaymentInput) error
}
