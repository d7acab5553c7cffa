package matchevent

import "context"

type Repository interface {
	ListByMatch(ctx context.Context, matchID int64) ([]Event, error)
	// InsertBatch stores events of one match in a single transaction. Rows
	// colliding with an existing signature are skipped and not counted.
	InsertBatch(ctx context.Context, matchID int64, events []Event) (int, error)
}
