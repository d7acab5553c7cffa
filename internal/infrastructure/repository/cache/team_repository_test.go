package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/team"
	"github.com/riskibarqy/matchsync/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/matchsync/internal/platform/cache"
)

type countingTeams struct {
	team.Repository
	lookups int
}

func (c *countingTeams) ListBySotaIDs(ctx context.Context, sotaIDs []int64) ([]team.Team, error) {
	c.lookups++
	return c.Repository.ListBySotaIDs(ctx, sotaIDs)
}

func TestTeamRepository_CachesLookupsUntilUpsert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kairat, astana := int64(101), int64(102)
	next := &countingTeams{Repository: memory.NewTeamRepository()}
	repo := NewTeamRepository(next, basecache.NewStore[[]team.Team](time.Minute))

	if _, err := repo.UpsertFromFeed(ctx, []team.Team{{SotaID: &kairat, Name: "Кайрат"}}); err != nil {
		t.Fatalf("seed team: %v", err)
	}

	for i := 0; i < 3; i++ {
		got, err := repo.ListBySotaIDs(ctx, []int64{astana, kairat})
		if err != nil {
			t.Fatalf("list teams: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("unexpected team count: got=%d want=%d", len(got), 1)
		}
	}
	if _, err := repo.ListBySotaIDs(ctx, []int64{kairat, astana}); err != nil {
		t.Fatalf("list teams reordered: %v", err)
	}
	if next.lookups != 1 {
		t.Fatalf("unexpected backend lookups: got=%d want=%d", next.lookups, 1)
	}

	if _, err := repo.UpsertFromFeed(ctx, []team.Team{{SotaID: &astana, Name: "Астана"}}); err != nil {
		t.Fatalf("upsert team: %v", err)
	}
	got, err := repo.ListBySotaIDs(ctx, []int64{kairat, astana})
	if err != nil {
		t.Fatalf("list teams after upsert: %v", err)
	}
	if len(got) != 2 || next.lookups != 2 {
		t.Fatalf("expected fresh lookup after upsert: teams=%d lookups=%d", len(got), next.lookups)
	}
}

func TestTeamRepository_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kairat := int64(101)
	backend := memory.NewTeamRepository()
	if _, err := backend.UpsertFromFeed(ctx, []team.Team{{SotaID: &kairat, Name: "Кайрат"}}); err != nil {
		t.Fatalf("seed team: %v", err)
	}
	repo := NewTeamRepository(backend, basecache.NewStore[[]team.Team](0))

	first, _ := repo.ListBySotaIDs(ctx, []int64{kairat})
	first[0].Name = "changed"
	second, _ := repo.ListBySotaIDs(ctx, []int64{kairat})
	if second[0].Name != "Кайрат" {
		t.Fatalf("cached slice leaked caller mutation: %q", second[0].Name)
	}
}
