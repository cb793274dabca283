// Package redis implements the shared contract candidate cache on Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fd1az/arbitrage-scanner/business/identity/app"
	"github.com/fd1az/arbitrage-scanner/business/identity/domain"
	"github.com/fd1az/arbitrage-scanner/internal/apperror"
)

var _ app.CandidateStore = (*Store)(nil)

// Store keeps candidate lists as JSON strings.
//
// Key schema:
//
//	contract:{SYMBOL} - JSON array of candidates
type Store struct {
	rdb *redis.Client
}

// NewStore creates a Store backed by rdb.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func contractKey(symbol string) string { return "contract:" + strings.ToUpper(symbol) }

func (s *Store) Name() string { return "redis" }

// Get returns the cached candidates for symbol. A cached empty list is a
// remembered miss and is reported as found.
func (s *Store) Get(ctx context.Context, symbol string) ([]domain.Candidate, bool, error) {
	data, err := s.rdb.Get(ctx, contractKey(symbol)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, apperror.New(apperror.CodeCacheError,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("redis: get contract %s", symbol)))
	}

	var cands []domain.Candidate
	if err := json.Unmarshal(data, &cands); err != nil {
		return nil, false, apperror.New(apperror.CodeCacheError,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("redis: unmarshal contract %s", symbol)))
	}
	return cands, true, nil
}

// Put stores cands for symbol with ttl.
func (s *Store) Put(ctx context.Context, symbol string, cands []domain.Candidate, ttl time.Duration) error {
	if cands == nil {
		cands = []domain.Candidate{}
	}
	data, err := json.Marshal(cands)
	if err != nil {
		return fmt.Errorf("redis: marshal contract %s: %w", symbol, err)
	}
	if err := s.rdb.Set(ctx, contractKey(symbol), data, ttl).Err(); err != nil {
		return apperror.New(apperror.CodeCacheError,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("redis: set contract %s", symbol)))
	}
	return nil
}
