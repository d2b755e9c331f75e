package cart

import (
	"context"
	"errors"
	"math"
	"sync"

	"creditcoach/models"
	"creditcoach/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrQuantityOverflow rejects an add whose merged quantity does not fit in
// an int.
var ErrQuantityOverflow = errors.New("cart quantity too large")

// Store owns the cart of one browsing session. The in-memory item list is
// authoritative; the Persistence mirror is read when the store is built and
// written after every mutation, outside mu.
//
// A store whose first load failed is unhydrated: it works in memory but does
// not write the mirror, which may still hold the session's earlier cart,
// until a later Rehydrate succeeds and merges the two.
type Store struct {
	mu       sync.Mutex
	items    []models.CartItem
	hydrated bool
	cleared  bool // Clear was called while unhydrated

	// Latest snapshot waiting for the mirror. Only one caller writes at a
	// time; snapshots staged meanwhile replace each other.
	pending []models.CartItem
	dirty   bool
	writing bool

	loadMu  sync.Mutex
	persist Persistence
	logger  *zap.Logger
}

// NewStore builds a store and rehydrates it from p. A corrupt mirror leaves
// the cart empty; an unreachable one leaves it empty and unhydrated.
func NewStore(ctx context.Context, p Persistence, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{persist: p, logger: logger, hydrated: p == nil}
	if err := s.Rehydrate(ctx); err != nil {
		logger.Warn("cart: rehydrate failed, starting empty", zap.Error(err))
	}
	return s
}

// Hydrated reports whether the mirror has been read.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Rehydrate reads the mirror if it has not been read yet. Lines added in the
// meantime are merged after the mirrored ones, and a Clear made in the
// meantime discards them. It is a no-op once hydrated.
func (s *Store) Rehydrate(ctx context.Context) error {
	write, err := s.rehydrate(ctx)
	if write {
		s.flush(ctx)
	}
	return err
}

// rehydrate does the load and merge under loadMu and reports whether the
// caller must flush the merged cart.
func (s *Store) rehydrate(ctx context.Context) (bool, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if s.Hydrated() {
		return false, nil
	}

	loaded, err := s.persist.Load(ctx)
	if errors.Is(err, ErrCorruptCart) {
		s.logger.Warn("cart: mirror unreadable, starting empty", zap.Error(err))
		loaded, err = nil, nil
	}
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleared {
		loaded = nil
	}
	s.items = sanitize(append(loaded, s.items...))
	s.hydrated, s.cleared = true, false
	if !s.dirty {
		return false, nil
	}
	return s.stageLocked(), nil
}

// sanitize drops entries that break the store invariants and merges
// duplicates, so whatever the mirror held, each id appears once with a
// positive quantity.
func sanitize(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, it := range items {
		if it.ID == "" || it.Quantity < 1 {
			continue
		}
		if it.Price.IsNegative() {
			it.Price = decimal.Zero
		}
		if i, ok := index[it.ID]; ok {
			out[i].Quantity = saturatingAdd(out[i].Quantity, it.Quantity)
			continue
		}
		index[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}

// saturatingAdd adds two non-negative ints, stopping at math.MaxInt.
func saturatingAdd(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// stageLocked records the current items for the mirror and reports whether
// the caller must run flush. Callers hold mu.
func (s *Store) stageLocked() bool {
	if s.persist == nil {
		return false
	}
	s.pending = make([]models.CartItem, len(s.items))
	copy(s.pending, s.items)
	s.dirty = true
	if s.writing {
		return false
	}
	s.writing = true
	return true
}

// flush writes staged snapshots until none is left. Failures are logged and
// counted only; the in-memory cart stays the source of truth for the session.
func (s *Store) flush(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	if err := s.Rehydrate(ctx); err != nil {
		s.mu.Lock()
		// A concurrent Rehydrate may have succeeded meanwhile.
		deferred := !s.hydrated
		if deferred {
			s.writing = false
		}
		s.mu.Unlock()
		if deferred {
			utils.CartPersistFailures.Inc()
			s.logger.Warn("cart: mirror unavailable, write deferred", zap.Error(err))
			return
		}
	}

	for {
		s.mu.Lock()
		if !s.dirty {
			s.writing = false
			s.mu.Unlock()
			return
		}
		snapshot := s.pending
		s.pending, s.dirty = nil, false
		s.mu.Unlock()

		if err := s.persist.Save(ctx, snapshot); err != nil {
			utils.CartPersistFailures.Inc()
			s.logger.Warn("cart: mirror write failed", zap.Error(err), zap.Int("items", len(snapshot)))
		}
	}
}

// mutate runs fn under mu and mirrors the result if fn changed anything.
func (s *Store) mutate(ctx context.Context, op string, fn func() (bool, error)) error {
	s.mu.Lock()
	changed, err := fn()
	write := false
	if changed {
		utils.CartMutations.WithLabelValues(op).Inc()
		write = s.stageLocked()
	}
	s.mu.Unlock()

	if write {
		s.flush(ctx)
	}
	return err
}

// AddItem adds quantity units of product. Quantities below 1 count as 1. If
// the product is already in the cart its quantity grows; the stored snapshot
// is not refreshed.
func (s *Store) AddItem(ctx context.Context, product models.Product, quantity int) error {
	if product.ID == "" {
		return ErrMissingProductID
	}
	if product.Price.IsNegative() {
		return ErrNegativePrice
	}
	if quantity < 1 {
		quantity = 1
	}

	return s.mutate(ctx, "add", func() (bool, error) {
		if i := s.indexOf(product.ID); i >= 0 {
			if s.items[i].Quantity > math.MaxInt-quantity {
				return false, ErrQuantityOverflow
			}
			s.items[i].Quantity += quantity
			return true, nil
		}
		s.items = append(s.items, models.CartItem{
			ID:       product.ID,
			Title:    product.Title,
			Image:    product.Image,
			Price:    product.Price,
			Quantity: quantity,
		})
		return true, nil
	})
}

// RemoveItem deletes the entry with the given id. Unknown ids are ignored.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	_ = s.mutate(ctx, "remove", func() (bool, error) {
		return s.removeLocked(id), nil
	})
}

func (s *Store) removeLocked(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

// UpdateQuantity sets the quantity of an entry. Zero or less removes it.
// Unknown ids are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, id)
		return
	}
	_ = s.mutate(ctx, "update", func() (bool, error) {
		i := s.indexOf(id)
		if i < 0 {
			return false, nil
		}
		s.items[i].Quantity = quantity
		return true, nil
	})
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	_ = s.mutate(ctx, "clear", func() (bool, error) {
		s.items = nil
		if !s.hydrated {
			s.cleared = true
		}
		return true, nil
	})
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Total is the sum of price * quantity over all lines.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalLocked()
}

func (s *Store) totalLocked() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// ItemCount is the sum of quantities, as shown on the cart badge.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked()
}

func (s *Store) countLocked() int {
	n := 0
	for _, it := range s.items {
		n = saturatingAdd(n, it.Quantity)
	}
	return n
}

// View returns a consistent snapshot of lines and derived values.
func (s *Store) View() models.CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]models.CartItem, len(s.items))
	copy(items, s.items)
	return models.CartView{
		Items:     items,
		Total:     s.totalLocked(),
		ItemCount: s.countLocked(),
	}
}
