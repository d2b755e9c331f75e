package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"creditcoach/models"
)

// ErrCorruptCart marks a mirrored cart that exists but cannot be decoded.
// Repositories wrap it so the store can tell bad data from an outage.
var ErrCorruptCart = errors.New("corrupt cart")

// Persistence mirrors one cart to durable storage. Load is called once when
// the store is created; Save after every mutation.
type Persistence interface {
	Load(ctx context.Context) ([]models.CartItem, error)
	Save(ctx context.Context, items []models.CartItem) error
}

// Repository stores carts for many sessions under a key.
type Repository interface {
	LoadCart(ctx context.Context, key string) ([]models.CartItem, error)
	SaveCart(ctx context.Context, key string, items []models.CartItem) error
}

type keyedPersistence struct {
	repo Repository
	key  string
}

// Bind returns the Persistence for a single cart key of repo.
func Bind(repo Repository, key string) Persistence {
	return &keyedPersistence{repo: repo, key: key}
}

func (p *keyedPersistence) Load(ctx context.Context) ([]models.CartItem, error) {
	return p.repo.LoadCart(ctx, p.key)
}

func (p *keyedPersistence) Save(ctx context.Context, items []models.CartItem) error {
	return p.repo.SaveCart(ctx, p.key, items)
}

// MemoryRepository keeps serialized carts in a map. It is used when no
// durable mirror is configured and in tests; it stores JSON so a round trip
// goes through the same encoding as the real backends.
type MemoryRepository struct {
	mu    sync.Mutex
	carts map[string][]byte

	// FailSaves makes every SaveCart fail, to simulate quota errors.
	FailSaves error
	// FailLoads makes the next FailLoads calls to LoadCart fail.
	FailLoads int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{carts: make(map[string][]byte)}
}

func (m *MemoryRepository) LoadCart(_ context.Context, key string) ([]models.CartItem, error) {
	m.mu.Lock()
	if m.FailLoads > 0 {
		m.FailLoads--
		m.mu.Unlock()
		return nil, errors.New("storage unavailable")
	}
	raw, ok := m.carts[key]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var items []models.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCart, err)
	}
	return items, nil
}

func (m *MemoryRepository) SaveCart(_ context.Context, key string, items []models.CartItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.carts[key] = raw
	return nil
}
