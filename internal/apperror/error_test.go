package apperror

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestAppError_IsByCode(t *testing.T) {
	err := New(CodeSourceUnavailable, WithContext("okx"))
	wrapped := fmt.Errorf("refresh: %w", err)

	if !errors.Is(wrapped, New(CodeSourceUnavailable)) {
		t.Error("expected errors.Is to match on code through wrapping")
	}
	if errors.Is(wrapped, New(CodeInvalidQuote)) {
		t.Error("did not expect a match on a different code")
	}
}

func TestAppError_UnwrapCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := New(CodeSourceUnavailable, WithCause(cause))

	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable via errors.Is")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(CodeCircuitOpen)); got != CodeCircuitOpen {
		t.Errorf("expected %s, got %s", CodeCircuitOpen, got)
	}
	if got := GetCode(errors.New("plain")); got != CodeUnknownError {
		t.Errorf("expected %s for plain error, got %s", CodeUnknownError, got)
	}
}

func TestIsTransport(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"source_unavailable", New(CodeSourceUnavailable), true},
		{"lookup_failed", New(CodeLookupFailed), true},
		{"circuit_open", New(CodeCircuitOpen), true},
		{"deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), true},
		{"invalid_quote", New(CodeInvalidQuote), false},
		{"config", New(CodeConfigurationError), false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransport(tt.err); got != tt.want {
				t.Errorf("IsTransport() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDataAnomaly(t *testing.T) {
	if !IsDataAnomaly(New(CodeSyntheticBatch)) {
		t.Error("synthetic batch should be a data anomaly")
	}
	if !IsDataAnomaly(New(CodeInvalidQuote)) {
		t.Error("invalid quote should be a data anomaly")
	}
	if IsDataAnomaly(New(CodeSourceUnavailable)) {
		t.Error("transport error is not a data anomaly")
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{"default message", New(CodeSourceStale), "SOURCE_STALE: Market data is stale"},
		{"with context", New(CodeSourceAPIError, WithContext("okx")), "SOURCE_API_ERROR: Market data source returned an error [okx]"},
		{"with cause", New(CodeLookupFailed, WithCause(errors.New("EOF"))), "CONTRACT_LOOKUP_FAILED: Contract lookup failed: EOF"},
		{"unregistered code", New(Code("SOMETHING_NEW")), "SOMETHING_NEW: SOMETHING_NEW"},
		{"custom message", New(CodeInvalidQuote, WithMessage("ask below bid")), "INVALID_QUOTE: ask below bid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_LogValue(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	err := New(CodeNetworkInfoFailed, WithContext("kucoin"), WithCause(errors.New("timeout")))
	log.Error("refresh failed", "error", err)

	var line struct {
		Error map[string]string `json:"error"`
	}
	if jerr := json.Unmarshal(buf.Bytes(), &line); jerr != nil {
		t.Fatalf("log line is not JSON: %v", jerr)
	}

	want := map[string]string{
		"code":    "NETWORK_INFO_FAILED",
		"context": "kucoin",
		"cause":   "timeout",
	}
	for k, v := range want {
		if line.Error[k] != v {
			t.Errorf("error.%s = %q, want %q", k, line.Error[k], v)
		}
	}
	if !strings.Contains(line.Error["origin"], "error_test.go:") {
		t.Errorf("expected origin in this file, got %q", line.Error["origin"])
	}
}
