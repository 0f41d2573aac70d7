package otel_test

import (
	"context"
	"testing"

	"github.com/louisbranch/qdatasets/internal/platform/otel"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		enabled  string
	}{
		{name: "noop when endpoint empty"},
		{name: "noop when endpoint blank", endpoint: "   "},
		{name: "noop when explicitly disabled", endpoint: "http://localhost:4318", enabled: "FALSE"},
		// Non-routable address so no export actually happens.
		{name: "provider when endpoint set", endpoint: "http://192.0.2.1:4318"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("QDATASETS_OTEL_ENDPOINT", tt.endpoint)
			t.Setenv("QDATASETS_OTEL_ENABLED", tt.enabled)

			shutdown, err := otel.Setup(context.Background(), "test-command")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown error: %v", err)
			}
		})
	}
}

func TestSetup_NoopShutdownIgnoresCancelledContext(t *testing.T) {
	t.Setenv("QDATASETS_OTEL_ENDPOINT", "")
	t.Setenv("QDATASETS_OTEL_ENABLED", "")

	shutdown, err := otel.Setup(context.Background(), "noop-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown should not error: %v", err)
	}
}
