package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/loanledger/backend/internal/domain/loan"
)

// LoanCache is a read-through decorator over a loan repository. Single-loan
// reads are served from Redis; writes go straight to the inner repository and
// drop the cached entry. Lists are never cached so they stay a true snapshot.
type LoanCache struct {
	inner  loan.Repository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewLoanCache(inner loan.Repository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *LoanCache {
	return &LoanCache{inner: inner, client: client, ttl: ttl, logger: logger}
}

func loanKey(id int64) string {
	return fmt.Sprintf("loan:%d", id)
}

func (c *LoanCache) Create(ctx context.Context, rec loan.CreateRecord) (*loan.Entity, error) {
	return c.inner.Create(ctx, rec)
}

func (c *LoanCache) List(ctx context.Context) ([]loan.Entity, error) {
	return c.inner.List(ctx)
}

func (c *LoanCache) GetByID(ctx context.Context, id int64) (*loan.Entity, error) {
	key := loanKey(id)
	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		out := &loan.Entity{}
		if err := json.Unmarshal(raw, out); err == nil {
			return out, nil
		}
		// unreadable entry, fall through to the repository
		_ = c.client.Del(ctx, key).Err()
	}

	out, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(out); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("loan cache set failed", "key", key, "err", err)
		}
	}
	return out, nil
}

func (c *LoanCache) ApplyPayment(ctx context.Context, loanID int64, newOutstanding decimal.Decimal, status string, p loan.PaymentInput) error {
	if err := c.inner.ApplyPayment(ctx, loanID, newOutstanding, status, p); err != nil {
		return err
	}
	if err := c.client.Del(ctx, loanKey(loanID)).Err(); err != nil {
		c.logger.Warn("loan cache invalidation failed", "loan_id", loanID, "err", err)
	}
	return nil
}
