package cli

import (
	"context"
	"io"
	"strings"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/interfaces/presenter"
	"github.com/spf13/cobra"
)

const assetRefHelp = `An asset is "player:<id>", "pick:<season>:<round>:<original roster>"
or a bare player id.`

func NewTimelineCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline <league-id> <asset>",
		Short: "Print the ordered ownership events of one asset",
		Long:  "Print every stored event of the asset across the league family.\n\n" + assetRefHelp,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			leagueID, ref := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
			return rootOpts.run(cmd, func(ctx context.Context, svc Services, out *OutputFormatter) error {
				events, err := svc.Lineage.GetTimeline(ctx, ref, leagueID)
				if err != nil {
					return wrapServiceError("timeline failed", err)
				}
				// already validated by the service
				parsed, _ := asset.ParseRef(ref)
				view := presenter.NewTimeline(parsed, events)
				return out.Success(view, func(w io.Writer) error {
					return writeTimelineText(w, view)
				})
			})
		},
	}
}

func NewTreeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <league-id> <asset>",
		Short: "Print the trade tree of one asset",
		Long:  "Expand the asset through every trade it took part in.\n\n" + assetRefHelp,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			leagueID, ref := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
			return rootOpts.run(cmd, func(ctx context.Context, svc Services, out *OutputFormatter) error {
				tree, err := svc.Lineage.GetTradeTree(ctx, ref, leagueID)
				if err != nil {
					return wrapServiceError("trade tree failed", err)
				}
				view := presenter.FromTreeNode(tree)
				return out.Success(view, func(w io.Writer) error {
					return writeTreeText(w, view)
				})
			})
		},
	}
}

func NewNetworkCommand(rootOpts *RootOptions) *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "network <league-id> <asset>",
		Short: "Print the transaction network around one asset",
		Long:  "Walk transactions breadth first from the asset up to --depth hops.\n\n" + assetRefHelp,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			leagueID, ref := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
			return rootOpts.run(cmd, func(ctx context.Context, svc Services, out *OutputFormatter) error {
				network, err := svc.Lineage.GetNetwork(ctx, ref, leagueID, depth)
				if err != nil {
					return wrapServiceError("network failed", err)
				}
				view := presenter.FromNetwork(network)
				return out.Success(view, func(w io.Writer) error {
					return writeNetworkText(w, view)
				})
			})
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 2, "hops from the focal asset (1-5)")
	return cmd
}
