package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/riskibarqy/dynasty-lineage/internal/interfaces/presenter"
)

func writeRebuildText(w io.Writer, view presenter.RebuildResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "run\t%s\n", view.RunID)
	fmt.Fprintf(tw, "family\t%s\n", view.FamilyKey)
	fmt.Fprintf(tw, "leagues\t%d\n", view.LeaguesProcessed)
	fmt.Fprintf(tw, "events\t%d\n", view.EventsWritten)
	fmt.Fprintf(tw, "duration\t%s\n", time.Duration(view.DurationMS)*time.Millisecond)
	fmt.Fprintf(tw, "warnings\t%d\n", len(view.Warnings))
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, warning := range view.Warnings {
		line := fmt.Sprintf("  [%s] league %s", warning.Code, warning.LeagueID)
		if warning.TransactionID != "" {
			line += " tx " + warning.TransactionID
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", line, warning.Message); err != nil {
			return err
		}
	}
	return nil
}

func writeRunsText(w io.Writer, runs []presenter.RebuildRun) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "no rebuild runs")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tSTATUS\tSTAGE\tLEAGUES\tEVENTS\tWARNINGS\tRUN")
	for _, run := range runs {
		stage := run.Stage
		if stage == "" {
			stage = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			run.StartedAt.UTC().Format(time.RFC3339), run.Status, stage,
			run.LeaguesProcessed, run.EventsWritten, len(run.Warnings), run.RunID)
	}
	return tw.Flush()
}

func writeTimelineText(w io.Writer, view presenter.Timeline) error {
	if _, err := fmt.Fprintf(w, "%s (%d events)\n", view.Asset.Key, len(view.Events)); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, ev := range view.Events {
		fmt.Fprintf(tw, "  %s\t%s\n", eventWhen(ev), eventSummary(ev))
	}
	return tw.Flush()
}

func writeTreeText(w io.Writer, root presenter.TreeNode) error {
	var b strings.Builder
	writeTreeNode(&b, root, "")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeTreeNode(b *strings.Builder, node presenter.TreeNode, indent string) {
	fmt.Fprintf(b, "%s%s (%d events)", indent, node.Asset.Key, len(node.Timeline))
	if node.Truncated {
		b.WriteString(" [truncated]")
	}
	b.WriteString("\n")
	for _, ex := range node.Exchanges {
		fmt.Fprintf(b, "%s  %s %s\n", indent, eventWhen(ex.Event), eventSummary(ex.Event))
		for _, child := range ex.Derived {
			writeTreeNode(b, child, indent+"    ")
		}
	}
}

func writeNetworkText(w io.Writer, view presenter.Network) error {
	stats := view.Stats
	if _, err := fmt.Fprintf(w, "%s depth %d: %d nodes (%d players, %d picks), %d transactions, reached depth %d\n",
		view.Focal.Key, view.Depth, stats.NodeCount, stats.PlayerCount, stats.PickCount,
		stats.TransactionCount, stats.MaxDepthReached); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DEPTH\tIMPORTANCE\tASSET\tLABEL")
	for _, node := range view.Nodes {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", node.Depth, node.Importance, node.Asset.Key, node.Label)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, tx := range view.Transactions {
		keys := make([]string, 0, len(tx.Assets))
		for _, ref := range tx.Assets {
			keys = append(keys, ref.Key)
		}
		if _, err := fmt.Fprintf(w, "  tx %s %s wk %s [%s]: %s\n",
			tx.ID, tx.Season, weekString(tx.Week), strings.Join(tx.Types, ","), strings.Join(keys, " ")); err != nil {
			return err
		}
	}
	return nil
}

func eventWhen(ev presenter.AssetEvent) string {
	return fmt.Sprintf("%s wk %s", ev.Season, weekString(ev.Week))
}

func eventSummary(ev presenter.AssetEvent) string {
	var b strings.Builder
	b.WriteString(ev.EventType)
	if ev.FromRosterID != nil || ev.ToRosterID != nil {
		fmt.Fprintf(&b, " roster %s -> %s", rosterString(ev.FromRosterID), rosterString(ev.ToRosterID))
	}
	if ev.TransactionID != "" {
		fmt.Fprintf(&b, " (tx %s)", ev.TransactionID)
	}
	return b.String()
}

func weekString(week *int) string {
	if week == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *week)
}

func rosterString(id *int) string {
	if id == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *id)
}
