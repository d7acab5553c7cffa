package usecase

import "strings"

// FailedItem reports one unit of a batch that could not be synced. The batch
// continues past it.
type FailedItem struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// SyncMode selects how strict a lineup sync is.
type SyncMode string

const (
	// ModeLiveRead is best effort: a missing side is tolerated, starters are
	// never demoted and no players are created.
	ModeLiveRead SyncMode = "live_read"
	// ModeFinishedRepair requires both sides, may create players and demotes
	// starters absent from the upstream starters section.
	ModeFinishedRepair SyncMode = "finished_repair"
)

func ParseSyncMode(value string) (SyncMode, bool) {
	switch SyncMode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeLiveRead:
		return ModeLiveRead, true
	case ModeFinishedRepair:
		return ModeFinishedRepair, true
	default:
		return "", false
	}
}

func (m SyncMode) CreatesPlayers() bool {
	return m == ModeFinishedRepair
}
