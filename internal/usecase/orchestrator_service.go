package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/season"
	"github.com/riskibarqy/matchsync/internal/platform/id"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
)

type Phase string

const (
	PhaseReference   Phase = "reference"
	PhasePlayers     Phase = "players"
	PhaseMatches     Phase = "matches"
	PhaseStandings   Phase = "standings"
	PhaseTeamStats   Phase = "team_stats"
	PhasePlayerStats Phase = "player_stats"
)

// FullSyncOrder follows foreign key dependencies: players and matches need
// teams, statistics need players and matches.
var FullSyncOrder = []Phase{
	PhaseReference,
	PhasePlayers,
	PhaseMatches,
	PhaseStandings,
	PhaseTeamStats,
	PhasePlayerStats,
}

func ParsePhase(value string) (Phase, bool) {
	for _, p := range FullSyncOrder {
		if string(p) == value {
			return p, true
		}
	}
	return "", false
}

type PhaseReport struct {
	Phase      Phase        `json:"phase"`
	Rows       int          `json:"rows"`
	Skipped    bool         `json:"skipped"`
	Failed     []FailedItem `json:"failed,omitempty"`
	Error      string       `json:"error,omitempty"`
	DurationMs int64        `json:"duration_ms"`
}

type FullSyncReport struct {
	RunID     string        `json:"run_id"`
	SeasonID  int64         `json:"season_id"`
	Phases    []PhaseReport `json:"phases"`
	Completed bool          `json:"completed"`
}

// Orchestrator sequences the season ingestors. Each phase commits on its own;
// a failing phase stops the run without undoing earlier ones.
type Orchestrator struct {
	reference *ReferenceSyncService
	players   *PlayerSyncService
	matches   *MatchSyncService
	stats     *StatsSyncService
	seasons   season.Repository
	gate      seasonGate
	ids       id.Generator
	logger    *logging.Logger
	now       func() time.Time
}

func NewOrchestrator(
	reference *ReferenceSyncService,
	players *PlayerSyncService,
	matches *MatchSyncService,
	stats *StatsSyncService,
	seasons season.Repository,
	ids id.Generator,
	logger *logging.Logger,
) *Orchestrator {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &Orchestrator{
		reference: reference,
		players:   players,
		matches:   matches,
		stats:     stats,
		seasons:   seasons,
		gate:      seasonGate{seasons: seasons},
		ids:       ids,
		logger:    logger,
		now:       time.Now,
	}
}

func (o *Orchestrator) IsSyncEnabled(ctx context.Context, seasonID int64) (bool, error) {
	if seasonID <= 0 {
		return false, fmt.Errorf("%w: season id must be greater than zero", ErrInvalidInput)
	}
	return o.gate.enabled(ctx, seasonID)
}

// SetSyncEnabled flips the sync flag of a stored season.
func (o *Orchestrator) SetSyncEnabled(ctx context.Context, seasonID int64, enabled bool) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.Orchestrator.SetSyncEnabled", seasonAttr(seasonID))
	defer span.End()

	if seasonID <= 0 {
		return fmt.Errorf("%w: season id must be greater than zero", ErrInvalidInput)
	}
	_, ok, err := o.seasons.GetByID(ctx, seasonID)
	if err != nil {
		return fmt.Errorf("get season: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: season_id=%d", ErrNotFound, seasonID)
	}
	if err := o.seasons.SetSyncEnabled(ctx, seasonID, enabled); err != nil {
		return fmt.Errorf("set season sync flag: %w", err)
	}
	o.logger.InfoContext(ctx, "season sync flag updated", "season_id", seasonID, "enabled", enabled)
	return nil
}

// RunPhase runs one phase for a season. A disabled season yields a skipped
// report with zero rows and no error.
func (o *Orchestrator) RunPhase(ctx context.Context, seasonID int64, phase Phase) (report PhaseReport, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Orchestrator.RunPhase", seasonAttr(seasonID))
	defer span.End()
	ctx = logging.ContextWith(ctx, "season_id", seasonID)

	report.Phase = phase
	start := o.now()
	defer func() {
		report.DurationMs = o.now().Sub(start).Milliseconds()
	}()

	enabled, err := o.IsSyncEnabled(ctx, seasonID)
	if err != nil {
		report.Error = err.Error()
		return report, err
	}
	if !enabled {
		report.Skipped = true
		return report, nil
	}

	err = o.runPhase(ctx, seasonID, phase, &report)
	switch {
	case errors.Is(err, ErrSyncDisabled):
		report.Skipped = true
		report.Rows = 0
		return report, nil
	case err != nil:
		report.Error = err.Error()
		return report, err
	}
	return report, nil
}

func (o *Orchestrator) runPhase(ctx context.Context, seasonID int64, phase Phase, report *PhaseReport) error {
	switch phase {
	case PhaseReference:
		ref, err := o.reference.SyncAll(ctx)
		if err != nil {
			return err
		}
		participants, err := o.reference.SyncParticipants(ctx, seasonID)
		if err != nil {
			return err
		}
		report.Rows = ref.Tournaments + ref.Seasons + ref.Teams + participants
	case PhasePlayers:
		res, err := o.players.SyncPlayers(ctx, seasonID)
		report.Rows, report.Failed = res.Players+res.Memberships, res.Failed
		return err
	case PhaseMatches:
		res, err := o.matches.SyncMatches(ctx, seasonID, false)
		report.Rows, report.Failed = res.Matches, res.Failed
		return err
	case PhaseStandings:
		res, err := o.stats.SyncScoreTable(ctx, seasonID)
		report.Rows, report.Failed = res.Synced, res.Failed
		return err
	case PhaseTeamStats:
		res, err := o.stats.SyncTeamSeasonStats(ctx, seasonID)
		report.Rows, report.Failed = res.Synced, res.Failed
		return err
	case PhasePlayerStats:
		res, err := o.players.SyncPlayerSeasonStats(ctx, seasonID)
		report.Rows, report.Failed = res.Synced, res.Failed
		return err
	default:
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidInput, phase)
	}
	return nil
}

// FullSync runs every phase in FullSyncOrder and stops at the first failure.
// The reports collected so far are returned with the error.
func (o *Orchestrator) FullSync(ctx context.Context, seasonID int64) (FullSyncReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Orchestrator.FullSync", seasonAttr(seasonID))
	defer span.End()
	ctx = logging.ContextWith(ctx, "season_id", seasonID)

	runID, err := o.ids.NewID()
	if err != nil {
		return FullSyncReport{}, err
	}
	result := FullSyncReport{RunID: runID, SeasonID: seasonID, Phases: make([]PhaseReport, 0, len(FullSyncOrder))}
	logger := o.logger.With("run_id", runID)

	enabled, err := o.IsSyncEnabled(ctx, seasonID)
	if err != nil {
		return result, err
	}
	if !enabled {
		logger.InfoContext(ctx, "season sync disabled, full sync skipped")
		for _, phase := range FullSyncOrder {
			result.Phases = append(result.Phases, PhaseReport{Phase: phase, Skipped: true})
		}
		return result, nil
	}

	for _, phase := range FullSyncOrder {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		report, err := o.RunPhase(ctx, seasonID, phase)
		result.Phases = append(result.Phases, report)
		if err != nil {
			logger.ErrorContext(ctx, "sync phase failed", "phase", phase, "error", err)
			return result, fmt.Errorf("phase %s: %w", phase, err)
		}
		logger.InfoContext(ctx, "sync phase done",
			"phase", phase,
			"rows", report.Rows,
			"failed", len(report.Failed),
			"skipped", report.Skipped,
			"duration_ms", report.DurationMs,
		)
	}
	result.Completed = true
	return result, nil
}
