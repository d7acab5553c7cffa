package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/matchsync/internal/app"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

type invocation struct {
	Command  string
	Memory   bool
	SeasonID int64
	MatchID  int64
	MatchIDs []int64
	Limit    int
	Repair   bool
	Mode     usecase.SyncMode
}

var seasonCommands = map[string]bool{
	"full": true, "reference": true, "players": true, "matches": true, "standings": true,
	"team-stats": true, "player-stats": true, "events": true, "formations": true, "metadata": true,
	"season-enable": true, "season-disable": true,
}

var matchCommands = map[string]bool{
	"match-events": true, "match-stats": true, "pregame": true, "positions": true,
}

func parseInvocation(args []string) (invocation, error) {
	fs := flag.NewFlagSet("syncer", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		inv      invocation
		matchIDs string
		mode     string
	)
	fs.BoolVar(&inv.Memory, "memory", false, "use in-memory repositories")
	fs.Int64Var(&inv.SeasonID, "season", 0, "season id, defaults to SYNC_DEFAULT_SEASON_ID")
	fs.Int64Var(&inv.MatchID, "match", 0, "local match id")
	fs.StringVar(&matchIDs, "match-ids", "", "comma separated local match ids for backfill")
	fs.IntVar(&inv.Limit, "limit", 0, "maximum matches for backfill, 0 means all")
	fs.BoolVar(&inv.Repair, "repair", false, "allow overwriting finished matches")
	fs.StringVar(&mode, "mode", string(usecase.ModeLiveRead), "positions mode: live_read or finished_repair")

	if err := fs.Parse(args); err != nil {
		return invocation{}, err
	}
	if fs.NArg() != 1 {
		return invocation{}, errors.New("exactly one command is required")
	}
	inv.Command = strings.ToLower(strings.TrimSpace(fs.Arg(0)))

	parsedMode, ok := usecase.ParseSyncMode(mode)
	if !ok {
		return invocation{}, fmt.Errorf("invalid mode %q", mode)
	}
	inv.Mode = parsedMode

	ids, err := parseIDs(matchIDs)
	if err != nil {
		return invocation{}, err
	}
	inv.MatchIDs = ids

	switch {
	case seasonCommands[inv.Command], inv.Command == "backfill", inv.Command == "live":
	case matchCommands[inv.Command]:
		if inv.MatchID <= 0 {
			return invocation{}, fmt.Errorf("%s requires --match", inv.Command)
		}
	default:
		return invocation{}, fmt.Errorf("unknown command %q", inv.Command)
	}
	return inv, nil
}

func parseIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid match id %q", part)
		}
		out = append(out, v)
	}
	return out, nil
}

// dispatch runs one command and returns its result object.
func dispatch(ctx context.Context, a *app.App, inv invocation) (any, error) {
	if seasonCommands[inv.Command] && inv.SeasonID <= 0 {
		return nil, fmt.Errorf("%s requires --season or SYNC_DEFAULT_SEASON_ID", inv.Command)
	}

	switch inv.Command {
	case "full":
		return a.Orchestrator.FullSync(ctx, inv.SeasonID)
	case "matches":
		if inv.Repair {
			return a.Matches.SyncMatches(ctx, inv.SeasonID, true)
		}
		return a.Orchestrator.RunPhase(ctx, inv.SeasonID, usecase.PhaseMatches)
	case "reference", "players", "standings", "team-stats", "player-stats":
		phase, ok := usecase.ParsePhase(strings.ReplaceAll(inv.Command, "-", "_"))
		if !ok {
			return nil, fmt.Errorf("unknown phase %q", inv.Command)
		}
		return a.Orchestrator.RunPhase(ctx, inv.SeasonID, phase)
	case "season-enable", "season-disable":
		enabled := inv.Command == "season-enable"
		if err := a.Orchestrator.SetSyncEnabled(ctx, inv.SeasonID, enabled); err != nil {
			return nil, err
		}
		return map[string]any{"season_id": inv.SeasonID, "sync_enabled": enabled}, nil
	case "events":
		return a.Events.SyncSeasonEvents(ctx, inv.SeasonID)
	case "match-events":
		return a.Events.SyncMatchEvents(ctx, inv.MatchID)
	case "match-stats":
		return a.Matches.SyncMatchStats(ctx, inv.MatchID)
	case "pregame":
		return a.Lineups.SyncPreGameLineup(ctx, inv.MatchID)
	case "positions":
		return a.Lineups.SyncLivePositionsAndKits(ctx, inv.MatchID, inv.Mode)
	case "backfill":
		input := usecase.BackfillInput{MatchIDs: inv.MatchIDs, Limit: inv.Limit}
		if len(inv.MatchIDs) == 0 && inv.SeasonID > 0 {
			seasonID := inv.SeasonID
			input.SeasonID = &seasonID
		}
		return a.Lineups.BackfillFinishedPositions(ctx, input)
	case "formations":
		return a.Lineups.SyncLiveFormations(ctx, inv.SeasonID)
	case "metadata":
		return a.Lineups.SyncLiveMetadata(ctx, inv.SeasonID)
	case "live":
		return nil, a.Live.Run(ctx)
	default:
		return nil, fmt.Errorf("unknown command %q", inv.Command)
	}
}

func writeResult(w io.Writer, result any) error {
	if result == nil {
		return nil
	}
	raw, err := sonic.ConfigStd.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: syncer [flags] <command>")
	fmt.Fprintln(os.Stderr, "season commands: full reference players matches standings team-stats player-stats events formations metadata season-enable season-disable")
	fmt.Fprintln(os.Stderr, "match commands:  match-events match-stats pregame positions (require --match)")
	fmt.Fprintln(os.Stderr, "other commands:  backfill live")
	fmt.Fprintln(os.Stderr, "flags: --memory --season N --match N --match-ids 1,2 --limit N --repair --mode live_read|finished_repair")
}
