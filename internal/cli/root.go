package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/lineage"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/rebuild"
	"github.com/riskibarqy/dynasty-lineage/internal/usecase"
	"github.com/spf13/cobra"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{FormatText, FormatJSON}

type Rebuilder interface {
	RebuildFamily(ctx context.Context, leagueID string) (usecase.RebuildResult, error)
	ListRuns(ctx context.Context, leagueID string, limit int) ([]rebuild.Run, error)
}

type LineageReader interface {
	GetTimeline(ctx context.Context, assetRef, leagueID string) ([]asset.Event, error)
	GetTradeTree(ctx context.Context, assetRef, leagueID string) (lineage.TreeNode, error)
	GetNetwork(ctx context.Context, assetRef, leagueID string, depth int) (lineage.Network, error)
}

type PlayerSyncer interface {
	SyncPlayers(ctx context.Context) (usecase.SyncPlayersResult, error)
}

// Services are the use cases a command may call.
type Services struct {
	Rebuild Rebuilder
	Lineage LineageReader
	Players PlayerSyncer
}

// Loader builds Services on first use. The returned func releases them.
type Loader func(ctx context.Context, opts *RootOptions) (Services, func() error, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string
	Timeout time.Duration

	load Loader
	out  io.Writer
	err  io.Writer
}

func NewRootCommand(load Loader) *cobra.Command {
	opts := &RootOptions{load: load, out: os.Stdout, err: os.Stderr}

	cmd := &cobra.Command{
		Use:   "lineage",
		Short: "Dynasty asset lineage",
		Long:  "Rebuild and query the ownership history of players and draft picks across a dynasty league family.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			opts.out = cmd.OutOrStdout()
			opts.err = cmd.ErrOrStderr()
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (json|text)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 10*time.Minute, "overall command timeout")

	cmd.AddCommand(NewRebuildCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))
	cmd.AddCommand(NewTimelineCommand(opts))
	cmd.AddCommand(NewTreeCommand(opts))
	cmd.AddCommand(NewNetworkCommand(opts))
	cmd.AddCommand(NewSyncPlayersCommand(opts))

	return cmd
}

func (o *RootOptions) formatter() *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: o.out, ErrWriter: o.err, Verbose: o.Verbose}
}

// run loads services, calls fn under the command timeout and reports its
// error through the formatter.
func (o *RootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, svc Services, out *OutputFormatter) error) error {
	out := o.formatter()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	if o.load == nil {
		return o.fail(out, NewExitError(ExitCommandError, "no service loader configured"))
	}
	svc, closeFn, err := o.load(ctx, o)
	if err != nil {
		return o.fail(out, WrapExitError(ExitCommandError, "initialize services", err))
	}
	if closeFn != nil {
		defer func() {
			if cerr := closeFn(); cerr != nil {
				out.VerboseLog("close services: %v", cerr)
			}
		}()
	}

	if err := fn(ctx, svc, out); err != nil {
		return o.fail(out, err)
	}
	return nil
}

func (o *RootOptions) fail(out *OutputFormatter, err error) error {
	_ = out.Error(err)
	return err
}
