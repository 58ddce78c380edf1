package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/riskibarqy/dynasty-lineage/db"
	"github.com/riskibarqy/dynasty-lineage/internal/app"
	"github.com/riskibarqy/dynasty-lineage/internal/config"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/logging"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type migrator struct {
	dir    string
	logger *logging.Logger
}

func newRootCommand() *cobra.Command {
	m := &migrator{}
	cmd := &cobra.Command{
		Use:           "migration",
		Short:         "Apply or inspect the lineage schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			m.logger = logging.NewConsole(cfg.LogLevel)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&m.dir, "dir", "", "migrations directory (default: MIGRATIONS_DIR, ./db/migrations, or the embedded schema)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: m.with(func(mg *migrate.Migrate, _ []string) error {
				return m.report(mg.Up(), "migrations applied")
			}),
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: m.with(func(mg *migrate.Migrate, args []string) error {
				steps, err := parseSteps(args)
				if err != nil {
					return err
				}
				return m.report(mg.Steps(-steps), "migrations rolled back", "steps", steps)
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: m.with(func(mg *migrate.Migrate, _ []string) error {
				version, dirty, err := mg.Version()
				if errors.Is(err, migrate.ErrNilVersion) {
					fmt.Println("version: none")
					fmt.Println("dirty: false")
					return nil
				}
				if err != nil {
					return fmt.Errorf("read version: %w", err)
				}
				fmt.Printf("version: %d\n", version)
				fmt.Printf("dirty: %t\n", dirty)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the schema version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: m.with(func(mg *migrate.Migrate, args []string) error {
				version, err := parseVersion(args[0])
				if err != nil {
					return err
				}
				if err := mg.Force(version); err != nil {
					return fmt.Errorf("force version %d: %w", version, err)
				}
				m.logger.Info("schema version forced", "version", version)
				return nil
			}),
		},
		&cobra.Command{
			Use:     "goto <version>",
			Aliases: []string{"migrate"},
			Short:   "Migrate up or down to a target version",
			Args:    cobra.ExactArgs(1),
			RunE: m.with(func(mg *migrate.Migrate, args []string) error {
				target, err := parseTarget(args[0])
				if err != nil {
					return err
				}
				return m.report(mg.Migrate(target), "migrated", "version", target)
			}),
		},
	)

	return cmd
}

// with opens the migrator for one subcommand and closes it afterwards.
func (m *migrator) with(fn func(*migrate.Migrate, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		dbURL := app.DatabaseURL(cfg)
		if dbURL == "" {
			return errors.New("DB_URL is required")
		}

		mg, source, err := db.NewMigrator(dbURL, m.resolveDir())
		if err != nil {
			return err
		}
		defer func() {
			srcErr, dbErr := mg.Close()
			if srcErr != nil {
				m.logger.Warn("close migration source", "error", srcErr)
			}
			if dbErr != nil {
				m.logger.Warn("close migration db", "error", dbErr)
			}
		}()

		m.logger.Debug("migration source", "source", source)
		return fn(mg, args)
	}
}

func (m *migrator) report(err error, msg string, args ...any) error {
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("no migration changes")
		return nil
	}
	if err != nil {
		return err
	}
	m.logger.Info(msg, args...)
	return nil
}

// resolveDir prefers an on-disk directory; an empty result makes the
// migrator fall back to the schema embedded in the binary.
func (m *migrator) resolveDir() string {
	candidates := []string{
		m.dir,
		os.Getenv("MIGRATIONS_DIR"),
		"./db/migrations",
		"/app/db/migrations",
	}

	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs
		}
	}

	return ""
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}

	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}
	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	return value, nil
}

func parseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}
