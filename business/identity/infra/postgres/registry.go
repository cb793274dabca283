// Package postgres implements the durable contract registry and lookup audit
// trail on PostgreSQL via pgx.
package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fd1az/arbitrage-scanner/business/identity/app"
	"github.com/fd1az/arbitrage-scanner/business/identity/domain"
	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/asset"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	_ app.CandidateStore = (*Registry)(nil)
	_ app.LookupRecorder = (*Registry)(nil)
)

// Registry stores resolved deployments, failed lookups and API call logs.
type Registry struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewRegistry creates a Registry on pool.
func NewRegistry(pool *pgxpool.Pool) *Registry {
	return &Registry{pool: pool, now: time.Now}
}

func (r *Registry) Name() string { return "postgres" }

// Migrate applies the embedded SQL files in lexicographic order, tracking
// applied files in schema_migrations.
func (r *Registry) Migrate(ctx context.Context) error {
	const createTracker = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`
	if _, err := r.pool.Exec(ctx, createTracker); err != nil {
		return migrationError("create schema_migrations table", err)
	}

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return migrationError("read migrations dir", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		var exists bool
		err := r.pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename = $1)",
			entry.Name(),
		).Scan(&exists)
		if err != nil {
			return migrationError("check "+entry.Name(), err)
		}
		if exists {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return migrationError("read "+entry.Name(), err)
		}

		err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(data)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, "INSERT INTO schema_migrations (filename) VALUES ($1)", entry.Name())
			return err
		})
		if err != nil {
			return migrationError("apply "+entry.Name(), err)
		}
	}
	return nil
}

// Get returns the registered deployments of symbol when its last lookup has
// not expired. A remembered miss returns found with no candidates.
func (r *Registry) Get(ctx context.Context, symbol string) ([]domain.Candidate, bool, error) {
	symbol = strings.ToUpper(symbol)

	var found bool
	err := r.pool.QueryRow(ctx,
		`SELECT found FROM contract_lookups WHERE symbol = $1 AND expires_at > $2`,
		symbol, r.now(),
	).Scan(&found)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, dbError("get lookup "+symbol, err)
	}
	if !found {
		return nil, true, nil
	}

	const query = `
		SELECT symbol, chain, contract, COALESCE(name, ''), COALESCE(decimals, 0),
		       liquidity_usd, pairs, source, verified
		FROM contract_registry
		WHERE symbol = $1
		ORDER BY liquidity_usd DESC, chain`
	rows, err := r.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, false, dbError("list contracts "+symbol, err)
	}
	defer rows.Close()

	var cands []domain.Candidate
	for rows.Next() {
		var (
			c     domain.Candidate
			chain string
		)
		if err := rows.Scan(&c.Symbol, &chain, &c.Contract, &c.Name, &c.Decimals,
			&c.LiquidityUSD, &c.Pairs, &c.Source, &c.Verified); err != nil {
			return nil, false, dbError("scan contract", err)
		}
		c.Chain = asset.Chain(chain)
		cands = append(cands, c)
	}
	if err := rows.Err(); err != nil {
		return nil, false, dbError("list contracts rows", err)
	}
	return cands, true, nil
}

// Put replaces the registered deployments of symbol and remembers the lookup for ttl.
func (r *Registry) Put(ctx context.Context, symbol string, cands []domain.Candidate, ttl time.Duration) error {
	symbol = strings.ToUpper(symbol)
	now := r.now()

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const upsert = `
			INSERT INTO contract_registry
				(symbol, chain, contract, name, decimals, liquidity_usd, pairs, source, verified, updated_at)
			VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, 0), $6, $7, $8, $9, $10)
			ON CONFLICT (symbol, chain, contract) DO UPDATE SET
				name = EXCLUDED.name,
				decimals = EXCLUDED.decimals,
				liquidity_usd = EXCLUDED.liquidity_usd,
				pairs = EXCLUDED.pairs,
				source = EXCLUDED.source,
				verified = EXCLUDED.verified,
				updated_at = EXCLUDED.updated_at`
		for _, c := range cands {
			if _, err := tx.Exec(ctx, upsert, symbol, string(c.Chain), c.Contract, c.Name, c.Decimals,
				c.LiquidityUSD, c.Pairs, c.Source, c.Verified, now); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM contract_registry WHERE symbol = $1 AND updated_at < $2`,
			symbol, now,
		); err != nil {
			return err
		}

		const remember = `
			INSERT INTO contract_lookups (symbol, found, expires_at, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (symbol) DO UPDATE SET
				found = EXCLUDED.found,
				expires_at = EXCLUDED.expires_at,
				updated_at = EXCLUDED.updated_at`
		_, err := tx.Exec(ctx, remember, symbol, len(cands) > 0, now.Add(ttl), now)
		return err
	})
	if err != nil {
		return dbError("put contracts "+symbol, err)
	}
	return nil
}

// RecordFailure upserts the failed lookup, incrementing its retry count.
func (r *Registry) RecordFailure(ctx context.Context, symbol, reason string) error {
	const query = `
		INSERT INTO failed_contract_lookups (symbol, error_message, retry_count, failed_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (symbol) DO UPDATE SET
			error_message = EXCLUDED.error_message,
			retry_count = failed_contract_lookups.retry_count + 1,
			failed_at = EXCLUDED.failed_at`
	if _, err := r.pool.Exec(ctx, query, strings.ToUpper(symbol), reason, r.now()); err != nil {
		return dbError("record failure "+symbol, err)
	}
	return nil
}

// RecordCall appends an API call log row.
func (r *Registry) RecordCall(ctx context.Context, call domain.APICall) error {
	const query = `
		INSERT INTO api_call_logs (api_name, endpoint, success, response_time_ms, error_message, called_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)`
	calledAt := call.CalledAt
	if calledAt.IsZero() {
		calledAt = r.now()
	}
	if _, err := r.pool.Exec(ctx, query, call.API, call.Endpoint, call.Success,
		call.Latency.Milliseconds(), call.Error, calledAt); err != nil {
		return dbError("record api call "+call.API, err)
	}
	return nil
}

// APIStats aggregates one API's calls.
type APIStats struct {
	API          string
	Total        int64
	Success      int64
	Failed       int64
	AvgLatencyMs float64
}

// APIStats summarizes API calls made since the given time, per API.
func (r *Registry) APIStats(ctx context.Context, since time.Time) ([]APIStats, error) {
	const query = `
		SELECT api_name,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE success),
		       COUNT(*) FILTER (WHERE NOT success),
		       COALESCE(AVG(response_time_ms), 0)::float8
		FROM api_call_logs
		WHERE called_at >= $1
		GROUP BY api_name
		ORDER BY api_name`
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, dbError("api stats", err)
	}
	defer rows.Close()

	var out []APIStats
	for rows.Next() {
		var s APIStats
		if err := rows.Scan(&s.API, &s.Total, &s.Success, &s.Failed, &s.AvgLatencyMs); err != nil {
			return nil, dbError("scan api stats", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("api stats rows", err)
	}
	return out, nil
}

func dbError(op string, err error) error {
	return apperror.New(apperror.CodeDatabaseError,
		apperror.WithCause(err),
		apperror.WithContext(fmt.Sprintf("postgres: %s", op)))
}

func migrationError(op string, err error) error {
	return apperror.New(apperror.CodeMigrationFailed,
		apperror.WithCause(err),
		apperror.WithContext(fmt.Sprintf("postgres: %s", op)))
}
