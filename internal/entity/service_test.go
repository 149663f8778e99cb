package entity

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCache struct {
	mu          sync.Mutex
	gen         int64
	lists       map[cacheEntry][]*Entity
	hits        int
	invalidated int
}

type cacheEntry struct {
	gen    int64
	filter Filter
}

func newCountingCache() *countingCache {
	return &countingCache{lists: map[cacheEntry][]*Entity{}}
}

func (c *countingCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func (c *countingCache) GetList(_ context.Context, gen int64, f Filter) ([]*Entity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, ok := c.lists[cacheEntry{gen, cacheKey(f)}]
	if ok {
		c.hits++
	}
	return items, ok
}

func (c *countingCache) SetList(_ context.Context, gen int64, f Filter, items []*Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[cacheEntry{gen, cacheKey(f)}] = items
}

func (c *countingCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.invalidated++
	return nil
}

// cacheKey drops the pointer identity of Archived so equal filters collide.
func cacheKey(f Filter) Filter {
	if f.Archived == nil {
		return Filter{Kind: f.Kind}
	}
	if *f.Archived {
		return Filter{Kind: f.Kind, Archived: &archivedTrue}
	}
	return Filter{Kind: f.Kind, Archived: &archivedFalse}
}

var (
	archivedTrue  = true
	archivedFalse = false
)

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository(), nil)

	t.Run("Game", func(t *testing.T) {
		e, err := svc.Create(ctx, CreateRequest{
			Name:    "  Mario Kart  ",
			Details: Game{ConsoleType: "Nintendo Switch"},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, "Mario Kart", e.Name)
		assert.Equal(t, KindGame, e.Kind())
		assert.False(t, e.Archived)
		assert.False(t, e.CreatedAt.IsZero())
	})

	t.Run("EmptyName", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateRequest{Name: "  ", Details: Console{}})
		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("MissingDetails", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateRequest{Name: "Thing"})
		assert.ErrorIs(t, err, ErrInvalidKind)
	})

	t.Run("GameWithoutConsole", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateRequest{Name: "Zelda", Details: Game{}})
		assert.ErrorIs(t, err, ErrMissingConsole)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository(), nil)

	e, err := svc.Create(ctx, CreateRequest{Name: "Switch", Details: Console{Color: "red"}})
	require.NoError(t, err)

	name := "Switch OLED"
	updated, err := svc.Update(ctx, e.ID, UpdateRequest{Name: &name, Details: Console{Color: "white"}})
	require.NoError(t, err)
	assert.Equal(t, "Switch OLED", updated.Name)
	assert.Equal(t, Console{Color: "white"}, updated.Details)

	got, err := svc.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Switch OLED", got.Name)

	_, err = svc.Update(ctx, e.ID, UpdateRequest{Details: Game{ConsoleType: "Switch"}})
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = svc.Update(ctx, "missing", UpdateRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArchiveAndList(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository(), nil)

	seeded, err := svc.SeedDemo(ctx)
	require.NoError(t, err)
	require.Len(t, seeded, 4)

	_, err = svc.SetArchived(ctx, seeded[0].ID, true)
	require.NoError(t, err)

	active, err := svc.List(ctx, Filter{Archived: &archivedFalse})
	require.NoError(t, err)
	assert.Len(t, active, 3)

	archived, err := svc.List(ctx, Filter{Archived: &archivedTrue})
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, seeded[0].ID, archived[0].ID)

	games, err := svc.List(ctx, Filter{Kind: KindGame})
	require.NoError(t, err)
	assert.Len(t, games, 2)

	restored, err := svc.SetArchived(ctx, seeded[0].ID, false)
	require.NoError(t, err)
	assert.False(t, restored.Archived)

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := range seeded {
		assert.Equal(t, seeded[i].ID, all[i].ID, "listing keeps insertion order")
	}
}

func TestListUsesCacheUntilWrite(t *testing.T) {
	ctx := context.Background()
	cache := newCountingCache()
	svc := NewService(NewMemoryRepository(), cache)

	_, err := svc.Create(ctx, CreateRequest{Name: "Switch", Details: Console{}})
	require.NoError(t, err)

	first, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 0, cache.hits)

	_, err = svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)

	_, err = svc.Create(ctx, CreateRequest{Name: "Joycons", Details: ConsoleAccessory{ConsoleType: "Switch"}})
	require.NoError(t, err)

	after, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, after, 2)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, 2, cache.invalidated)
}

// racingRepository runs onList once, right after the wrapped List returned,
// standing in for a write that lands between the query and the cache fill.
type racingRepository struct {
	Repository
	onList func()
}

func (r *racingRepository) List(ctx context.Context, filter Filter) ([]*Entity, error) {
	items, err := r.Repository.List(ctx, filter)
	if f := r.onList; f != nil {
		r.onList = nil
		f()
	}
	return items, err
}

func TestListDoesNotCacheAcrossConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	repo := &racingRepository{Repository: NewMemoryRepository()}
	svc := NewService(repo, newCountingCache())

	_, err := svc.Create(ctx, CreateRequest{Name: "Switch", Details: Console{}})
	require.NoError(t, err)

	repo.onList = func() {
		_, err := svc.Create(ctx, CreateRequest{Name: "Joycons", Details: ConsoleAccessory{ConsoleType: "Switch"}})
		require.NoError(t, err)
	}
	first, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, second, 2, "listing read before the write must not be served after it")
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository(), nil)

	e, err := svc.Create(ctx, CreateRequest{Name: "Switch", Details: Console{}})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, e.ID))

	_, err = svc.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, e.ID), ErrNotFound)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("console_accessory")
	require.NoError(t, err)
	assert.Equal(t, KindConsoleAccessory, k)

	_, err = ParseKind("board_game")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestFlattenRoundTrip(t *testing.T) {
	for _, d := range []Details{
		Game{ConsoleType: "Switch"},
		Console{Color: "red"},
		ConsoleAccessory{Color: "blue", ConsoleType: "Switch"},
	} {
		consoleType, color := flatten(d)
		got, err := unflatten(d.Kind(), consoleType, color)
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
}
