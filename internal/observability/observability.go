// Package observability starts the tracing and profiling side channels of
// the API process and tears them down in one call.
package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/riskibarqy/dynasty-lineage/internal/config"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/logging"
)

// Runtime owns every side channel started by Start. The zero value is a
// valid no-op runtime.
type Runtime struct {
	logger      *logging.Logger
	tracing     func(context.Context) error
	profiler    func() error
	pprofServer *http.Server
}

// Start brings up tracing, continuous profiling and the pprof listener as
// configured. On error everything already started is shut down.
func Start(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}
	rt := &Runtime{logger: logger}

	rt.tracing = initTracing(cfg, logger)

	profiler, err := startProfiler(cfg, logger)
	if err != nil {
		_ = rt.Shutdown(ctx)
		return nil, err
	}
	rt.profiler = profiler

	rt.pprofServer = startPprof(cfg, logger)
	return rt, nil
}

// Shutdown stops the pprof listener first and flushes traces last so the
// shutdown itself is still traced.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}

	var errs []error
	if r.pprofServer != nil {
		if err := r.pprofServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		} else if r.logger != nil {
			r.logger.Info("pprof server stopped")
		}
		r.pprofServer = nil
	}
	if r.profiler != nil {
		if err := r.profiler(); err != nil {
			errs = append(errs, err)
		}
		r.profiler = nil
	}
	if r.tracing != nil {
		if err := r.tracing(ctx); err != nil {
			errs = append(errs, err)
		}
		r.tracing = nil
	}
	return errors.Join(errs...)
}
