package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/riskibarqy/dynasty-lineage/internal/app"
	"github.com/riskibarqy/dynasty-lineage/internal/cli"
	"github.com/riskibarqy/dynasty-lineage/internal/config"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(loadServices)
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}

func loadServices(ctx context.Context, opts *cli.RootOptions) (cli.Services, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return cli.Services{}, nil, err
	}

	level := logging.LevelWarn
	if opts.Verbose {
		level = logging.LevelDebug
	}
	logger := logging.NewConsole(level)
	logging.SetDefault(logger)

	services, err := app.NewServices(ctx, cfg, logger)
	if err != nil {
		return cli.Services{}, nil, err
	}

	return cli.Services{
			Rebuild: services.Rebuild,
			Lineage: services.Lineage,
			Players: services.Players,
		}, func() error {
			_ = logger.Sync()
			return services.Close()
		}, nil
}
