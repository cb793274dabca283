package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/asset"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: test\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Name != "test" {
		t.Errorf("expected app name from file, got %s", cfg.App.Name)
	}
	if cfg.Arbitrage.MinProfitPct != 0.5 || cfg.Arbitrage.MaxProfitPct != 110 {
		t.Errorf("unexpected profit thresholds %v/%v", cfg.Arbitrage.MinProfitPct, cfg.Arbitrage.MaxProfitPct)
	}
	if cfg.Transfer.NetworkInfoTTL.Hours() != 1 {
		t.Errorf("expected 1h network info ttl, got %s", cfg.Transfer.NetworkInfoTTL)
	}
	if len(cfg.EnabledSources()) != 5 {
		t.Errorf("expected 5 enabled default sources, got %d", len(cfg.EnabledSources()))
	}
	if !cfg.Arbitrage.AllowSymbolOnlyMatch {
		t.Error("symbol-only matching should default to enabled")
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	body := `
arbitrage:
  min_profit_pct: 1
  max_profit_pct: 20
  fees:
    binance: 0.075
  transfer_costs:
    - from: ethereum
      to: bsc
      cost: 2.5
identity:
  static:
    pepe: ethereum
sources:
  - name: gate
    kind: gateio
    base_url: http://localhost
    enabled: true
`
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := cfg.Arbitrage.FeesDecimal()["binance"].String(); got != "0.075" {
		t.Errorf("expected binance fee 0.075, got %s", got)
	}
	if len(cfg.Arbitrage.TransferCosts) != 1 || cfg.Arbitrage.TransferCosts[0].Cost != 2.5 {
		t.Errorf("unexpected transfer costs %+v", cfg.Arbitrage.TransferCosts)
	}
	if cfg.Identity.StaticChains()["PEPE"] != asset.ChainEthereum {
		t.Errorf("expected PEPE static override on ethereum")
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "gate" {
		t.Errorf("expected sources replaced by file, got %+v", cfg.Sources)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Sources: []SourceConfig{{Name: "a", Kind: "okx", BaseURL: "http://x", Enabled: true}},
			Arbitrage: ArbitrageConfig{
				MinProfitPct:       0.5,
				MaxProfitPct:       110,
				MinVolume:          100,
				DefaultFeePct:      0.2,
				AnomalySourceRatio: 0.5,
				Workers:            4,
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"min_above_max", func(c *Config) { c.Arbitrage.MinProfitPct = 200 }, false},
		{"negative_volume", func(c *Config) { c.Arbitrage.MinVolume = -1 }, false},
		{"ratio_zero", func(c *Config) { c.Arbitrage.AnomalySourceRatio = 0 }, false},
		{"unknown_kind", func(c *Config) { c.Sources[0].Kind = "ftx" }, false},
		{"no_sources", func(c *Config) { c.Sources[0].Enabled = false }, false},
		{"bad_strategy", func(c *Config) { c.Identity.Strategies = []string{"guess"} }, false},
		{"bad_static_chain", func(c *Config) { c.Identity.Static = map[string]string{"X": "moon"} }, false},
		{"redis_without_addr", func(c *Config) { c.Redis.Enabled = true }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if apperror.GetCode(err) != apperror.CodeConfigurationError {
					t.Errorf("expected configuration error code, got %s", apperror.GetCode(err))
				}
			}
		})
	}
}
