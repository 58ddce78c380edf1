package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/lineage"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/rebuild"
	"github.com/riskibarqy/dynasty-lineage/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRebuilder struct {
	result   usecase.RebuildResult
	runs     []rebuild.Run
	err      error
	leagueID string
	limit    int
}

func (s *stubRebuilder) RebuildFamily(_ context.Context, leagueID string) (usecase.RebuildResult, error) {
	s.leagueID = leagueID
	return s.result, s.err
}

func (s *stubRebuilder) ListRuns(_ context.Context, leagueID string, limit int) ([]rebuild.Run, error) {
	s.leagueID = leagueID
	s.limit = limit
	return s.runs, s.err
}

type stubLineage struct {
	events  []asset.Event
	tree    lineage.TreeNode
	network lineage.Network
	err     error
	depth   int
}

func (s *stubLineage) GetTimeline(context.Context, string, string) ([]asset.Event, error) {
	return s.events, s.err
}

func (s *stubLineage) GetTradeTree(context.Context, string, string) (lineage.TreeNode, error) {
	return s.tree, s.err
}

func (s *stubLineage) GetNetwork(_ context.Context, _, _ string, depth int) (lineage.Network, error) {
	s.depth = depth
	return s.network, s.err
}

type stubPlayers struct {
	result usecase.SyncPlayersResult
	err    error
}

func (s *stubPlayers) SyncPlayers(context.Context) (usecase.SyncPlayersResult, error) {
	return s.result, s.err
}

func intPtr(v int) *int { return &v }

func execute(t *testing.T, svc Services, args ...string) (string, string, error) {
	t.Helper()
	closed := false
	cmd := NewRootCommand(func(context.Context, *RootOptions) (Services, func() error, error) {
		return svc, func() error { closed = true; return nil }, nil
	})
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	if err == nil || GetExitCode(err) != ExitCommandError || !strings.Contains(err.Error(), "invalid format") {
		assert.True(t, closed, "services should be released")
	}
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(nil)
	require.NotNil(t, cmd)
	assert.Equal(t, "lineage", cmd.Use)

	for _, name := range []string{"rebuild", "runs", "timeline", "tree", "network", "sync-players"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, FormatText, formatFlag.DefValue)

	network, _, err := cmd.Find([]string{"network"})
	require.NoError(t, err)
	depthFlag := network.Flags().Lookup("depth")
	require.NotNil(t, depthFlag)
	assert.Equal(t, "2", depthFlag.DefValue)
}

func TestInvalidFormatRejected(t *testing.T) {
	_, _, err := execute(t, Services{}, "--format", "yaml", "sync-players")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRebuildCommand_JSON(t *testing.T) {
	rebuilder := &stubRebuilder{result: usecase.RebuildResult{
		RunID:            "run-1",
		FamilyKey:        "100",
		LeaguesProcessed: 2,
		EventsWritten:    41,
		Warnings:         []lineage.Warning{{Code: "unresolved_pick", LeagueID: "200", Message: "no candidate"}},
		Duration:         1500 * time.Millisecond,
	}}

	stdout, _, err := execute(t, Services{Rebuild: rebuilder}, "--format", "json", "rebuild", " 200 ")
	require.NoError(t, err)
	assert.Equal(t, "200", rebuilder.leagueID)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			RunID         string `json:"run_id"`
			EventsWritten int    `json:"events_written"`
			DurationMS    int64  `json:"duration_ms"`
			Warnings      []struct {
				Code string `json:"code"`
			} `json:"warnings"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-1", resp.Data.RunID)
	assert.Equal(t, 41, resp.Data.EventsWritten)
	assert.EqualValues(t, 1500, resp.Data.DurationMS)
	require.Len(t, resp.Data.Warnings, 1)
	assert.Equal(t, "unresolved_pick", resp.Data.Warnings[0].Code)
}

func TestRebuildCommand_TextListsWarnings(t *testing.T) {
	rebuilder := &stubRebuilder{result: usecase.RebuildResult{
		RunID:     "run-2",
		FamilyKey: "100",
		Warnings:  []lineage.Warning{{Code: "unknown_roster", LeagueID: "100", TransactionID: "tx-9", Message: "roster 13 has no owner"}},
	}}

	stdout, _, err := execute(t, Services{Rebuild: rebuilder}, "rebuild", "100")
	require.NoError(t, err)
	assert.Contains(t, stdout, "run-2")
	assert.Contains(t, stdout, "[unknown_roster] league 100 tx tx-9: roster 13 has no owner")
}

func TestRebuildCommand_ErrorExitCodes(t *testing.T) {
	t.Run("stage failure", func(t *testing.T) {
		rebuilder := &stubRebuilder{err: &usecase.StageError{Stage: usecase.StageFetch, Err: usecase.ErrDependencyUnavailable}}
		_, stderr, err := execute(t, Services{Rebuild: rebuilder}, "rebuild", "100")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, stderr, "rebuild failed at fetch")
	})

	t.Run("unknown league", func(t *testing.T) {
		rebuilder := &stubRebuilder{err: usecase.ErrNotFound}
		stdout, _, err := execute(t, Services{Rebuild: rebuilder}, "--format", "json", "rebuild", "404")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))

		var resp Response
		require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
		assert.Equal(t, "error", resp.Status)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ExitCommandError, resp.Error.Code)
	})
}

func TestRunsCommand_PassesLimit(t *testing.T) {
	finished := time.Date(2024, 9, 1, 12, 0, 3, 0, time.UTC)
	rebuilder := &stubRebuilder{runs: []rebuild.Run{{
		ID:         "run-1",
		Status:     rebuild.StatusSucceeded,
		StartedAt:  time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC),
		FinishedAt: &finished,
	}}}

	stdout, _, err := execute(t, Services{Rebuild: rebuilder}, "runs", "100", "--limit", "5")
	require.NoError(t, err)
	assert.Equal(t, 5, rebuilder.limit)
	assert.Contains(t, stdout, "succeeded")
	assert.Contains(t, stdout, "run-1")
}

func TestTimelineCommand_Text(t *testing.T) {
	events := []asset.Event{
		{LeagueID: "100", Season: "2023", Week: intPtr(0), Type: asset.EventDraftSelected, Kind: asset.KindPlayer, PlayerID: "4046", ToRosterID: intPtr(3)},
		{LeagueID: "100", Season: "2023", Week: intPtr(5), Type: asset.EventTrade, Kind: asset.KindPlayer, PlayerID: "4046", FromRosterID: intPtr(3), ToRosterID: intPtr(7), TransactionID: "tx-1"},
	}

	stdout, _, err := execute(t, Services{Lineage: &stubLineage{events: events}}, "timeline", "100", "player:4046")
	require.NoError(t, err)
	assert.Contains(t, stdout, "player:4046 (2 events)")
	assert.Contains(t, stdout, "trade roster 3 -> 7 (tx tx-1)")
	assert.Contains(t, stdout, "draft_selected roster none -> 3")
}

func TestTreeCommand_TextIndentsDerivedAssets(t *testing.T) {
	trade := asset.Event{Season: "2023", Week: intPtr(5), Type: asset.EventTrade, Kind: asset.KindPlayer, PlayerID: "4046", FromRosterID: intPtr(3), ToRosterID: intPtr(7), TransactionID: "tx-1"}
	tree := lineage.TreeNode{
		Asset:    asset.Ref{Kind: asset.KindPlayer, PlayerID: "4046"},
		Timeline: []asset.Event{trade},
		Exchanges: []lineage.Exchange{{
			TransactionID: "tx-1",
			Event:         trade,
			Derived: []lineage.TreeNode{{
				Asset:     asset.Ref{Kind: asset.KindPick, Pick: asset.PickIdentity{Season: "2024", Round: 1, OriginalRosterID: 7}},
				Depth:     1,
				Truncated: true,
			}},
		}},
	}

	stdout, _, err := execute(t, Services{Lineage: &stubLineage{tree: tree}}, "tree", "100", "4046")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "player:4046"))
	assert.Contains(t, lines[1], "tx tx-1")
	assert.True(t, strings.HasPrefix(lines[2], "    pick:2024:1:7"), lines[2])
	assert.Contains(t, lines[2], "[truncated]")
}

func TestNetworkCommand_DepthFlag(t *testing.T) {
	reader := &stubLineage{network: lineage.Network{
		Focal: asset.Ref{Kind: asset.KindPlayer, PlayerID: "4046"},
		Depth: 3,
		Nodes: []lineage.NetworkNode{{Asset: asset.Ref{Kind: asset.KindPlayer, PlayerID: "4046"}, Label: "Patrick Mahomes", Importance: 2}},
		Stats: lineage.NetworkStats{NodeCount: 1, PlayerCount: 1},
	}}

	stdout, _, err := execute(t, Services{Lineage: reader}, "network", "100", "player:4046", "--depth", "3")
	require.NoError(t, err)
	assert.Equal(t, 3, reader.depth)
	assert.Contains(t, stdout, "Patrick Mahomes")
	assert.Contains(t, stdout, "1 nodes (1 players, 0 picks)")
}

func TestNetworkCommand_InvalidDepthIsCommandError(t *testing.T) {
	reader := &stubLineage{err: lineage.ErrInvalidDepth}
	_, _, err := execute(t, Services{Lineage: reader}, "network", "100", "player:4046", "--depth", "9")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLineageCommands_UnknownAssetIsCommandError(t *testing.T) {
	reader := &stubLineage{err: fmt.Errorf("%w: player:nope", usecase.ErrAssetNotFound)}
	for _, args := range [][]string{
		{"timeline", "100", "player:nope"},
		{"tree", "100", "player:nope"},
		{"network", "100", "player:nope"},
	} {
		_, _, err := execute(t, Services{Lineage: reader}, args...)
		require.Error(t, err, args[0])
		assert.Equal(t, ExitCommandError, GetExitCode(err), args[0])
		assert.ErrorIs(t, err, usecase.ErrAssetNotFound, args[0])
	}
}

func TestSyncPlayersCommand(t *testing.T) {
	players := &stubPlayers{result: usecase.SyncPlayersResult{Fetched: 10, Written: 9, Skipped: 1}}
	stdout, _, err := execute(t, Services{Players: players}, "sync-players")
	require.NoError(t, err)
	assert.Equal(t, "fetched 10, written 9, skipped 1\n", stdout)

	players.err = errors.New("upstream down")
	_, _, err = execute(t, Services{Players: players}, "sync-players")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestLoaderFailureIsCommandError(t *testing.T) {
	cmd := NewRootCommand(func(context.Context, *RootOptions) (Services, func() error, error) {
		return Services{}, nil, errors.New("bad config")
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"sync-players"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "bad", errors.New("x"))))
}
