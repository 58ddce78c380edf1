package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/dynasty-lineage/internal/config"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/logging"
)

func TestStart_AllDisabled(t *testing.T) {
	cfg := config.Config{
		ServiceName:    "dynasty-lineage-api",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	rt, err := Start(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if rt.tracing != nil || rt.profiler != nil || rt.pprofServer != nil {
		t.Fatalf("expected nothing started, got %+v", rt)
	}
	if err := rt.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestStart_TracingWithoutDSNStaysOff(t *testing.T) {
	rt, err := Start(context.Background(), config.Config{UptraceEnabled: true, UptraceDSN: "  "}, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if rt.tracing != nil {
		t.Fatalf("expected tracing off without dsn")
	}
}

func TestStart_PprofListener(t *testing.T) {
	rt, err := Start(context.Background(), config.Config{PprofEnabled: true, PprofAddr: "127.0.0.1:0"}, logging.NewNop())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if rt.pprofServer == nil {
		t.Fatalf("expected pprof server")
	}
	if err := rt.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if rt.pprofServer != nil {
		t.Fatalf("expected pprof server cleared after shutdown")
	}
}

func TestPprofHandlerServesIndex(t *testing.T) {
	rec := httptest.NewRecorder()
	pprofHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestShutdown_NilRuntime(t *testing.T) {
	var rt *Runtime
	if err := rt.Shutdown(context.Background()); err != nil {
		t.Fatalf("nil runtime shutdown: %v", err)
	}
}
