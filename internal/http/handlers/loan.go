package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	loandomain "github.com/loanledger/backend/internal/domain/loan"
)

type LoanService interface {
	CreateLoan(ctx context.Context, in loandomain.CreateInput) (*loandomain.Entity, error)
	ListLoans(ctx context.Context) ([]loandomain.Entity, error)
	GetLoan(ctx context.Context, id int64) (*loandomain.Entity, error)
	RecordPayment(ctx context.Context, loanID int64, amount decimal.Decimal, paymentDate loandomain.Date) error
}

type LoanHandler struct {
	loanService LoanService
}

func NewLoanHandler(loanService LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

func (h *LoanHandler) CreateLoan(c *gin.Context) {
	// status and outstandingPrincipal are deliberately not bound: the
	// service derives both, whatever the caller sends.
	var req struct {
		PrincipalAmount decimal.Decimal `json:"principalAmount"`
		InterestRate    decimal.Decimal `json:"interestRate"`
		TermMonths      int32           `json:"termMonths"`
		StartDate       loandomain.Date `json:"startDate"`
		BorrowerName    string          `json:"borrowerName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.loanService.CreateLoan(c.Request.Context(), loandomain.CreateInput{
		PrincipalAmount: req.PrincipalAmount,
		InterestRate:    req.InterestRate,
		TermMonths:      req.TermMonths,
		StartDate:       req.StartDate,
		BorrowerName:    req.BorrowerName,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *LoanHandler) ListLoans(c *gin.Context) {
	items, err := h.loanService.ListLoans(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *LoanHandler) GetLoan(c *gin.Context) {
	id, ok := parseLoanID(c)
	if !ok {
		return
	}
	item, err := h.loanService.GetLoan(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, loandomain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *LoanHandler) RecordPayment(c *gin.Context) {
	id, ok := parseLoanID(c)
	if !ok {
		return
	}

	// Pointers distinguish a missing or null field from a zero value. A
	// non-numeric amount fails the bind itself and surfaces as a generic 400.
	var req struct {
		Amount      *decimal.Decimal `json:"amount"`
		PaymentDate *string          `json:"paymentDate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Amount == nil || req.PaymentDate == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'amount' or 'paymentDate' in payment request."})
		return
	}

	paymentDate, err := loandomain.ParseDate(*req.PaymentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format for 'paymentDate'. Please use YYYY-MM-DD."})
		return
	}

	if err := h.loanService.RecordPayment(c.Request.Context(), id, *req.Amount, paymentDate); err != nil {
		switch {
		case errors.Is(err, loandomain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, loandomain.ErrAlreadyPaid):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred: " + err.Error()})
		}
		return
	}
	c.Status(http.StatusOK)
}

func parseLoanID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("loanId")), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid loan id"})
		return 0, false
	}
	return id, true
}
