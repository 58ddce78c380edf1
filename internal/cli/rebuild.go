package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/riskibarqy/dynasty-lineage/internal/interfaces/presenter"
	"github.com/riskibarqy/dynasty-lineage/internal/usecase"
	"github.com/spf13/cobra"
)

func NewRebuildCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild <league-id>",
		Short: "Rebuild the event log of a league family",
		Long: `Fetch every season of the family containing the league, decompose its
transactions, resolve draft picks and replace the stored events.

Examples:
  lineage rebuild 1180000000000000000
  lineage rebuild 1180000000000000000 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			leagueID := strings.TrimSpace(args[0])
			return rootOpts.run(cmd, func(ctx context.Context, svc Services, out *OutputFormatter) error {
				out.VerboseLog("rebuilding family of league %s", leagueID)
				result, err := svc.Rebuild.RebuildFamily(ctx, leagueID)
				if err != nil {
					if stage, ok := usecase.FailedStage(err); ok {
						return wrapServiceError(fmt.Sprintf("rebuild failed at %s", stage), err)
					}
					return wrapServiceError("rebuild failed", err)
				}
				view := presenter.FromRebuildResult(result)
				return out.Success(view, func(w io.Writer) error {
					return writeRebuildText(w, view)
				})
			})
		},
	}
}

func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs <league-id>",
		Short: "List recent rebuild runs of a league family",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			leagueID := strings.TrimSpace(args[0])
			return rootOpts.run(cmd, func(ctx context.Context, svc Services, out *OutputFormatter) error {
				runs, err := svc.Rebuild.ListRuns(ctx, leagueID, limit)
				if err != nil {
					return wrapServiceError("list runs failed", err)
				}
				view := presenter.FromRebuildRuns(runs)
				return out.Success(view, func(w io.Writer) error {
					return writeRunsText(w, view)
				})
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs (1-100)")
	return cmd
}

func NewSyncPlayersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-players",
		Short: "Refresh the player catalog from upstream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, svc Services, out *OutputFormatter) error {
				result, err := svc.Players.SyncPlayers(ctx)
				if err != nil {
					return wrapServiceError("sync players failed", err)
				}
				view := presenter.FromSyncPlayers(result)
				return out.Success(view, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "fetched %d, written %d, skipped %d\n", view.Fetched, view.Written, view.Skipped)
					return err
				})
			})
		},
	}
}
