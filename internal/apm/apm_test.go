package apm

import (
	"context"
	"testing"

	"github.com/fd1az/arbitrage-scanner/internal/logger"
)

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		raw     string
		want    map[string]string
		wantErr bool
	}{
		{"", map[string]string{}, false},
		{"x-api-key=abc", map[string]string{"x-api-key": "abc"}, false},
		{"a=1, b=2=3", map[string]string{"a": "1", "b": "2=3"}, false},
		{"novalue", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseHeaders(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("header %s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestNewTraceProvider_EmptyForUnknown(t *testing.T) {
	tp := NewTraceProvider("test", WithProvider("jaeger-legacy", Settings{}, logger.NewNop()))
	if _, ok := tp.(emptyTraceProvider); !ok {
		t.Errorf("expected empty provider, got %T", tp)
	}
	if err := tp.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestTracer_StartSpan(t *testing.T) {
	tr := NewTracer("apm_test")
	ctx, span := tr.Start(context.Background(), "op")
	defer span.End()

	span.NoticeError(nil)
	span.AddEvent("checked")

	if !tr.FromContext(ctx).SpanContext().Equal(span.SpanContext()) {
		t.Error("expected span to be retrievable from context")
	}
}
