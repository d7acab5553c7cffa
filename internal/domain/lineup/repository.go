package lineup

import "context"

// Repository exposes match lineup persistence operations.
type Repository interface {
	ListByMatch(ctx context.Context, matchID int64) ([]Entry, error)
	// SaveMatchLineup upserts every entry on (match, player) and applies the
	// batch metadata to the match row in one transaction. An empty Amplua or
	// FieldPosition keeps the stored value.
	SaveMatchLineup(ctx context.Context, batch MatchLineupBatch) error
}
