// Package evm checks contract candidates against EVM JSON-RPC nodes.
package evm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-scanner/business/identity/app"
	"github.com/fd1az/arbitrage-scanner/business/identity/domain"
	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/asset"
	"github.com/fd1az/arbitrage-scanner/internal/cache"
	"github.com/fd1az/arbitrage-scanner/internal/circuitbreaker"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
)

const (
	tracerName = "github.com/fd1az/arbitrage-scanner/business/identity/infra/evm"

	defaultTimeout  = 5 * time.Second
	defaultCacheTTL = 24 * time.Hour
)

var _ app.CandidateVerifier = (*Verifier)(nil)

// VerifierConfig holds configuration for the verifier.
type VerifierConfig struct {
	RPCURLs  map[asset.Chain]string // chain -> JSON-RPC endpoint
	Timeout  time.Duration          // per call
	CacheTTL time.Duration          // how long a code check is remembered
}

// Verifier confirms that an EVM candidate address holds contract code.
type Verifier struct {
	config VerifierConfig
	logger logger.LoggerInterface
	tracer trace.Tracer

	mu       sync.Mutex
	clients  map[asset.Chain]*ethclient.Client
	breakers map[asset.Chain]*circuitbreaker.CircuitBreaker[[]byte]

	results *cache.Cache[string, bool]
}

// NewVerifier creates a verifier. Clients are dialed on first use.
func NewVerifier(cfg VerifierConfig, log logger.LoggerInterface) *Verifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	return &Verifier{
		config:   cfg,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
		clients:  make(map[asset.Chain]*ethclient.Client),
		breakers: make(map[asset.Chain]*circuitbreaker.CircuitBreaker[[]byte]),
		results:  cache.New[string, bool](time.Hour),
	}
}

// Verify reports whether c's address has code on its chain. Candidates on
// chains without an endpoint, and non-EVM candidates, pass unchecked.
func (v *Verifier) Verify(ctx context.Context, c domain.Candidate) (bool, error) {
	if !c.Chain.IsEVM() || c.Contract == asset.NativeContract {
		return true, nil
	}
	url, ok := v.config.RPCURLs[c.Chain]
	if !ok || url == "" {
		return true, nil
	}
	if !common.IsHexAddress(c.Contract) {
		return false, apperror.New(apperror.CodeInvalidAddress,
			apperror.WithContext(fmt.Sprintf("%s on %s", c.Contract, c.Chain)))
	}

	key := string(c.Chain) + ":" + c.Contract
	if ok, found := v.results.Get(ctx, key); found {
		return ok, nil
	}

	ctx, span := v.tracer.Start(ctx, "evm.verify_contract",
		trace.WithAttributes(
			attribute.String("chain", string(c.Chain)),
			attribute.String("contract", c.Contract),
		),
	)
	defer span.End()

	client, breaker, err := v.client(ctx, c.Chain, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dial failed")
		return false, err
	}

	callCtx, cancel := context.WithTimeout(ctx, v.config.Timeout)
	defer cancel()

	code, err := breaker.Execute(func() ([]byte, error) {
		return client.CodeAt(callCtx, common.HexToAddress(c.Contract), nil)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "code lookup failed")
		return false, apperror.New(apperror.CodeEVMRPCError,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("eth_getCode %s on %s", c.Contract, c.Chain)))
	}

	hasCode := len(code) > 0
	v.results.Set(ctx, key, hasCode, v.config.CacheTTL)
	span.SetAttributes(attribute.Bool("has_code", hasCode))
	return hasCode, nil
}

func (v *Verifier) client(ctx context.Context, chain asset.Chain, url string) (*ethclient.Client, *circuitbreaker.CircuitBreaker[[]byte], error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if c, ok := v.clients[chain]; ok {
		return c, v.breakers[chain], nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, v.config.Timeout)
	defer cancel()

	c, err := ethclient.DialContext(dialCtx, url)
	if err != nil {
		return nil, nil, apperror.New(apperror.CodeEVMRPCError,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("dial %s rpc", chain)))
	}
	b := circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("evm-" + string(chain)))

	v.clients[chain] = c
	v.breakers[chain] = b
	v.logger.Info(ctx, "evm rpc connected", "chain", chain)
	return c, b, nil
}

// Close closes every dialed client.
func (v *Verifier) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for chain, c := range v.clients {
		c.Close()
		delete(v.clients, chain)
	}
	v.results.Close()
	return nil
}
