package cache

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/matchsync/internal/domain/team"
	basecache "github.com/riskibarqy/matchsync/internal/platform/cache"
)

const teamKeyPrefix = "team:"

// TeamRepository caches team lookups. Any upsert drops the whole team cache.
type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store[[]team.Team]
}

func NewTeamRepository(next team.Repository, cache *basecache.Store[[]team.Team]) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) GetByIDs(ctx context.Context, ids []int64) ([]team.Team, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.load(ctx, teamKeyPrefix+"id:"+joinIDs(ids), func(ctx context.Context) ([]team.Team, error) {
		return r.next.GetByIDs(ctx, ids)
	})
}

func (r *TeamRepository) ListBySotaIDs(ctx context.Context, sotaIDs []int64) ([]team.Team, error) {
	if len(sotaIDs) == 0 {
		return nil, nil
	}
	return r.load(ctx, teamKeyPrefix+"sota:"+joinIDs(sotaIDs), func(ctx context.Context) ([]team.Team, error) {
		return r.next.ListBySotaIDs(ctx, sotaIDs)
	})
}

func (r *TeamRepository) UpsertFromFeed(ctx context.Context, items []team.Team) ([]team.Team, error) {
	out, err := r.next.UpsertFromFeed(ctx, items)
	if len(items) > 0 {
		r.cache.DeletePrefix(ctx, teamKeyPrefix)
	}
	return out, err
}

func (r *TeamRepository) load(ctx context.Context, key string, loader func(context.Context) ([]team.Team, error)) ([]team.Team, error) {
	items, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) ([]team.Team, error) {
		items, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]team.Team(nil), items...), nil
}

// joinIDs builds an order-independent key part.
func joinIDs(ids []int64) string {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var b strings.Builder
	for i, id := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return b.String()
}
