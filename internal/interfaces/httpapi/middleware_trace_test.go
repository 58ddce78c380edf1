package httpapi

import "testing"

func TestShouldTraceRequest(t *testing.T) {
	skipped := []string{"/healthz", "/health", "/livez", "/readyz", " /healthz ", "/openapi.yaml", "/docs", "/docs/index.html"}
	for _, path := range skipped {
		if shouldTraceRequest(path) {
			t.Fatalf("expected no tracing for path %q", path)
		}
	}

	traced := []string{"/v1/leagues/L1/rebuilds", "/v1/leagues/L1/assets/player:4034/timeline", "/v1/players/sync", "/"}
	for _, path := range traced {
		if !shouldTraceRequest(path) {
			t.Fatalf("expected tracing for path %q", path)
		}
	}
}
