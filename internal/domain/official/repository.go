package official

import "context"

// Repository exposes referee and coach persistence operations.
type Repository interface {
	ListReferees(ctx context.Context) ([]Referee, error)
	CreateReferee(ctx context.Context, item Referee) (int64, error)
	// UpsertMatchReferees skips assignments that already exist.
	UpsertMatchReferees(ctx context.Context, items []MatchReferee) (int, error)
	EnsureCoach(ctx context.Context, firstName, lastName string) (int64, error)
	UpsertTeamCoaches(ctx context.Context, items []TeamCoach) (int, error)
}
