// Package cache keeps read-only loan snapshots in Redis. The database stays
// the source of truth: payments always load the loan from storage, and every
// write invalidates the cached copy.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/lending-ledger/internal/domain"
)

// LoanCache stores loan snapshots keyed by loan id.
type LoanCache interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Loan, bool, error)
	Set(ctx context.Context, loan *domain.Loan) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type redisLoanCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisLoanCache returns a LoanCache backed by client with entries
// expiring after ttl.
func NewRedisLoanCache(client redis.Cmdable, ttl time.Duration) LoanCache {
	return &redisLoanCache{client: client, ttl: ttl}
}

func loanKey(id uuid.UUID) string {
	return fmt.Sprintf("loan:%s", id)
}

func (c *redisLoanCache) Get(ctx context.Context, id uuid.UUID) (*domain.Loan, bool, error) {
	raw, err := c.client.Get(ctx, loanKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var loan domain.Loan
	if err := json.Unmarshal(raw, &loan); err != nil {
		return nil, false, err
	}
	return &loan, true, nil
}

func (c *redisLoanCache) Set(ctx context.Context, loan *domain.Loan) error {
	raw, err := json.Marshal(loan)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, loanKey(loan.ID), raw, c.ttl).Err()
}

func (c *redisLoanCache) Delete(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, loanKey(id)).Err()
}
