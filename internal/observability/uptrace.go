package observability

import (
	"context"
	"strings"

	"github.com/riskibarqy/dynasty-lineage/internal/config"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
)

// initTracing installs the global OpenTelemetry providers. The HTTP
// middleware, the use cases and otelsql all pick them up through otel.
func initTracing(cfg config.Config, logger *logging.Logger) func(context.Context) error {
	switch {
	case !cfg.UptraceEnabled:
		logger.Info("tracing disabled", "reason", "UPTRACE_ENABLED=false")
		return nil
	case strings.TrimSpace(cfg.UptraceDSN) == "":
		logger.Info("tracing disabled", "reason", "UPTRACE_DSN empty")
		return nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
	)
	logger.Info("tracing enabled", "service_name", cfg.ServiceName, "environment", cfg.AppEnv)

	return uptrace.Shutdown
}
