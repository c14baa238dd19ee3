package integration

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/loanledger/backend/internal/config"
	loandomain "github.com/loanledger/backend/internal/domain/loan"
	"github.com/loanledger/backend/internal/http/handlers"
	postgresrepo "github.com/loanledger/backend/internal/repository/postgres"
	"github.com/loanledger/backend/internal/server"
	"github.com/loanledger/backend/test/integration/testutil"
)

func TestLoanLifecycleHTTP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	pool := testutil.NewTestPool(t)
	defer pool.Close()
	testutil.ApplyMigrations(t, pool)
	testutil.ResetTables(t, pool)

	svc := loandomain.NewService(postgresrepo.NewLoanRepository(pool), false)
	r := server.NewRouter(config.Config{Env: "test"}, slog.Default(), server.Dependencies{
		Pinger:      pool,
		LoanHandler: handlers.NewLoanHandler(svc),
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("create loan", func(t *testing.T) {
		w := do(http.MethodPost, "/api/loans",
			`{"principalAmount":1000.00,"interestRate":0.05,"termMonths":12,"startDate":"2024-01-01","borrowerName":"Alice"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		var got loandomain.Entity
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.ID != 1 || got.Status != loandomain.StatusActive || !got.OutstandingPrincipal.Equal(dec("1000.00")) {
			t.Fatalf("unexpected created loan: %s", w.Body.String())
		}
	})

	t.Run("partial payment", func(t *testing.T) {
		w := do(http.MethodPost, "/api/loans/1/payments", `{"amount":400.00,"paymentDate":"2024-02-01"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		g := do(http.MethodGet, "/api/loans/1", "")
		var got loandomain.Entity
		if err := json.Unmarshal(g.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !got.OutstandingPrincipal.Equal(dec("600.00")) || got.Status != loandomain.StatusActive || len(got.Payments) != 1 {
			t.Fatalf("unexpected loan after partial payment: %s", g.Body.String())
		}
	})

	t.Run("settling payment", func(t *testing.T) {
		w := do(http.MethodPost, "/api/loans/1/payments", `{"amount":600.00,"paymentDate":"2024-03-01"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		g := do(http.MethodGet, "/api/loans/1", "")
		var got loandomain.Entity
		if err := json.Unmarshal(g.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !got.OutstandingPrincipal.Equal(dec("0.00")) || got.Status != loandomain.StatusPaid || len(got.Payments) != 2 {
			t.Fatalf("unexpected loan after settlement: %s", g.Body.String())
		}
	})

	t.Run("list loans", func(t *testing.T) {
		w := do(http.MethodGet, "/api/loans", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var items []loandomain.Entity
		if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("expected one loan, got %d", len(items))
		}
	})

	t.Run("non-numeric amount leaves no trace", func(t *testing.T) {
		w := do(http.MethodPost, "/api/loans/1/payments", `{"amount":"abc","paymentDate":"2024-04-01"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}

		g := do(http.MethodGet, "/api/loans/1", "")
		var got loandomain.Entity
		if err := json.Unmarshal(g.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(got.Payments) != 2 {
			t.Fatalf("rejected payment must not be stored: %s", g.Body.String())
		}
	})

	t.Run("payment against unknown loan", func(t *testing.T) {
		w := do(http.MethodPost, "/api/loans/999/payments", `{"amount":10.00,"paymentDate":"2024-04-01"}`)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}
