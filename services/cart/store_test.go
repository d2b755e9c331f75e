package cart

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"creditcoach/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id string, price int64) models.Product {
	return models.Product{ID: id, Title: "Product " + id, Price: decimal.NewFromInt(price)}
}

func newTestStore(t *testing.T) (*Store, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	return NewStore(context.Background(), Bind(repo, "cart:test"), nil), repo
}

func TestStore_AddItem_MergesSameID(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.AddItem(ctx, product("p1", 10), 2))
	require.NoError(t, s.AddItem(ctx, product("p1", 10), 3))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.True(t, s.Total().Equal(decimal.NewFromInt(50)), "total was %s", s.Total())
	assert.Equal(t, 5, s.ItemCount())
}

func TestStore_AddItem_KeepsFirstSnapshot(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.AddItem(ctx, product("p1", 10), 1))
	changed := product("p1", 99)
	changed.Title = "Renamed"
	require.NoError(t, s.AddItem(ctx, changed, 1))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Product p1", items[0].Title)
	assert.Equal(t, "10", items[0].Price.String())
}

func TestStore_AddItem_QuantityBelowOneCountsAsOne(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	for _, q := range []int{0, -4} {
		require.NoError(t, s.AddItem(ctx, product("p1", 1), q))
	}
	assert.Equal(t, 2, s.ItemCount())
}

func TestStore_AddItem_RejectsMissingID(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.AddItem(context.Background(), models.Product{Title: "nameless"}, 1)
	assert.ErrorIs(t, err, ErrMissingProductID)
	assert.Empty(t, s.Items())
}

func TestStore_Total(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	assert.True(t, s.Total().IsZero())

	require.NoError(t, s.AddItem(ctx, models.Product{ID: "a", Price: decimal.RequireFromString("19.99")}, 3))
	require.NoError(t, s.AddItem(ctx, models.Product{ID: "b", Price: decimal.RequireFromString("0.50")}, 2))
	// Missing price counts as zero.
	require.NoError(t, s.AddItem(ctx, models.Product{ID: "c"}, 7))

	assert.Equal(t, "60.97", s.Total().StringFixed(2))
	assert.Equal(t, 12, s.ItemCount())
}

func TestStore_UpdateQuantity(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		id        string
		quantity  int
		wantItems int
		wantCount int
	}{
		{name: "set exact value", id: "p1", quantity: 40, wantItems: 2, wantCount: 41},
		{name: "zero removes", id: "p1", quantity: 0, wantItems: 1, wantCount: 1},
		{name: "negative removes", id: "p1", quantity: -1, wantItems: 1, wantCount: 1},
		{name: "unknown id is a no-op", id: "nope", quantity: 9, wantItems: 2, wantCount: 3},
		{name: "unknown id with zero is a no-op", id: "nope", quantity: 0, wantItems: 2, wantCount: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t)
			require.NoError(t, s.AddItem(ctx, product("p1", 5), 2))
			require.NoError(t, s.AddItem(ctx, product("p2", 5), 1))

			s.UpdateQuantity(ctx, tt.id, tt.quantity)

			assert.Len(t, s.Items(), tt.wantItems)
			assert.Equal(t, tt.wantCount, s.ItemCount())
		})
	}
}

func TestStore_UpdateQuantityZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestStore(t)
	b, _ := newTestStore(t)
	for _, s := range []*Store{a, b} {
		require.NoError(t, s.AddItem(ctx, product("p1", 5), 2))
		require.NoError(t, s.AddItem(ctx, product("p2", 7), 1))
	}

	a.UpdateQuantity(ctx, "p1", 0)
	b.RemoveItem(ctx, "p1")

	assert.Equal(t, a.Items(), b.Items())
	assert.Equal(t, "p2", a.Items()[0].ID)
}

func TestStore_RemoveUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	require.NoError(t, s.AddItem(ctx, product("p1", 5), 2))
	before := s.Items()

	s.RemoveItem(ctx, "ghost")

	assert.Equal(t, before, s.Items())
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s, repo := newTestStore(t)
	require.NoError(t, s.AddItem(ctx, product("p1", 5), 2))

	s.Clear(ctx)

	assert.Empty(t, s.Items())
	assert.True(t, s.Total().IsZero())
	stored, err := repo.LoadCart(ctx, "cart:test")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestStore_RehydrateRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	first := NewStore(ctx, Bind(repo, "cart:s1"), nil)
	require.NoError(t, first.AddItem(ctx, models.Product{ID: "p1", Title: "Guide", Image: "g.png", Price: decimal.RequireFromString("12.50")}, 2))
	require.NoError(t, first.AddItem(ctx, product("p2", 99), 1))

	second := NewStore(ctx, Bind(repo, "cart:s1"), nil)

	want, got := first.Items(), second.Items()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Title, got[i].Title)
		assert.Equal(t, want[i].Image, got[i].Image)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.True(t, want[i].Price.Equal(got[i].Price))
	}
	assert.True(t, first.Total().Equal(second.Total()))
}

func TestStore_SaveFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	s, repo := newTestStore(t)
	repo.FailSaves = errors.New("quota exceeded")

	require.NoError(t, s.AddItem(ctx, product("p1", 3), 2))
	s.UpdateQuantity(ctx, "p1", 4)

	assert.Equal(t, 4, s.ItemCount())
	assert.Equal(t, "12", s.Total().String())
}

type failingPersistence struct{}

func (failingPersistence) Load(context.Context) ([]models.CartItem, error) {
	return nil, errors.New("corrupt")
}

func (failingPersistence) Save(context.Context, []models.CartItem) error { return nil }

func TestNewStore_LoadFailureStartsEmpty(t *testing.T) {
	s := NewStore(context.Background(), failingPersistence{}, nil)
	assert.Empty(t, s.Items())
	require.NoError(t, s.AddItem(context.Background(), product("p1", 1), 1))
	assert.Equal(t, 1, s.ItemCount())
}

func TestNewStore_SanitizesMirror(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.SaveCart(ctx, "k", []models.CartItem{
		{ID: "p1", Quantity: 1, Price: decimal.NewFromInt(2)},
		{ID: "", Quantity: 3},
		{ID: "p2", Quantity: 0},
		{ID: "p1", Quantity: 2, Price: decimal.NewFromInt(2)},
	}))

	s := NewStore(ctx, Bind(repo, "k"), nil)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ID)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestStore_AddItem_RejectsQuantityOverflow(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.AddItem(ctx, product("p1", 1), math.MaxInt))
	err := s.AddItem(ctx, product("p1", 1), 2)

	assert.ErrorIs(t, err, ErrQuantityOverflow)
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, math.MaxInt, items[0].Quantity)
	assert.True(t, s.Total().IsPositive())

	// The badge count saturates instead of wrapping.
	require.NoError(t, s.AddItem(ctx, product("p2", 1), math.MaxInt))
	assert.Equal(t, math.MaxInt, s.ItemCount())
}

func seededRepo(t *testing.T, key string) *MemoryRepository {
	t.Helper()
	repo := NewMemoryRepository()
	require.NoError(t, repo.SaveCart(context.Background(), key, []models.CartItem{
		{ID: "a", Quantity: 3, Price: decimal.NewFromInt(1)},
		{ID: "b", Quantity: 1, Price: decimal.NewFromInt(1)},
	}))
	return repo
}

func ids(items []models.CartItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestStore_FailedLoadKeepsMirror(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t, "k")
	repo.FailLoads = 2

	s := NewStore(ctx, Bind(repo, "k"), nil)
	assert.False(t, s.Hydrated())
	assert.Empty(t, s.Items())

	// The mirror is still unreadable, so the write is held back.
	require.NoError(t, s.AddItem(ctx, product("c", 1), 1))
	stored, err := repo.LoadCart(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(stored))

	// Once it reads, the mirror and the new line are merged and written.
	require.NoError(t, s.Rehydrate(ctx))
	assert.True(t, s.Hydrated())
	assert.Equal(t, []string{"a", "b", "c"}, ids(s.Items()))
	assert.Equal(t, 5, s.ItemCount())

	reloaded := NewStore(ctx, Bind(repo, "k"), nil)
	assert.Equal(t, []string{"a", "b", "c"}, ids(reloaded.Items()))
}

func TestStore_FailedLoadRetriedOnNextWrite(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t, "k")
	repo.FailLoads = 1

	s := NewStore(ctx, Bind(repo, "k"), nil)
	require.NoError(t, s.AddItem(ctx, product("c", 1), 1))

	assert.True(t, s.Hydrated())
	stored, err := repo.LoadCart(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(stored))
}

func TestStore_ClearWhileUnhydratedWins(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t, "k")
	repo.FailLoads = 2

	s := NewStore(ctx, Bind(repo, "k"), nil)
	s.Clear(ctx)
	require.NoError(t, s.Rehydrate(ctx))

	assert.Empty(t, s.Items())
	stored, err := repo.LoadCart(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestStore_CorruptMirrorStartsEmptyAndHydrated(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	repo.carts["k"] = []byte("{not json")

	s := NewStore(ctx, Bind(repo, "k"), nil)

	assert.True(t, s.Hydrated())
	assert.Empty(t, s.Items())
}

// gatedRepo blocks every SaveCart until release is closed.
type gatedRepo struct {
	*MemoryRepository
	started chan struct{}
	release chan struct{}
}

func (g *gatedRepo) SaveCart(ctx context.Context, key string, items []models.CartItem) error {
	g.started <- struct{}{}
	<-g.release
	return g.MemoryRepository.SaveCart(ctx, key, items)
}

func TestStore_MirrorWriteDoesNotBlockStore(t *testing.T) {
	ctx := context.Background()
	repo := &gatedRepo{
		MemoryRepository: NewMemoryRepository(),
		started:          make(chan struct{}, 4),
		release:          make(chan struct{}),
	}
	s := NewStore(ctx, Bind(repo, "k"), nil)

	firstDone := make(chan error, 1)
	go func() { firstDone <- s.AddItem(ctx, product("p1", 5), 1) }()
	select {
	case <-repo.started:
	case <-time.After(time.Second):
		t.Fatal("mirror write never started")
	}

	counted := make(chan int, 1)
	go func() { counted <- s.ItemCount() }()
	select {
	case n := <-counted:
		assert.Equal(t, 1, n)
	case <-time.After(time.Second):
		t.Fatal("ItemCount waited for the mirror write")
	}

	// A mutation during the write only stages its snapshot.
	secondDone := make(chan error, 1)
	go func() { secondDone <- s.AddItem(ctx, product("p2", 5), 2) }()
	select {
	case err := <-secondDone:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("AddItem waited for the mirror write")
	}
	assert.Equal(t, 3, s.ItemCount())

	close(repo.release)
	require.NoError(t, <-firstDone)

	// The writer drained the latest snapshot last.
	stored, err := repo.LoadCart(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids(stored))
}
