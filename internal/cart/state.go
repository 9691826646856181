// Package cart holds the shopper's cart and mirrors every change into the
// persistent store before the mutation returns.
package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/minimarket-client/internal/storage"
	pkgerrors "github.com/angelmondragon/minimarket-client/pkg/errors"
	"github.com/angelmondragon/minimarket-client/pkg/logger"
	"github.com/shopspring/decimal"
)

// Operation names reported to the mutation recorder.
const (
	OpAdd       = "add"
	OpSet       = "set_quantity"
	OpIncrement = "increment"
	OpDecrement = "decrement"
	OpRemove    = "remove"
	OpClear     = "clear"
)

// MutationRecorder counts persisted mutations.
type MutationRecorder interface {
	IncMutation(op string)
}

type noopRecorder struct{}

func (noopRecorder) IncMutation(string) {}

// Deps wires a State.
type Deps struct {
	Store    storage.Store
	Logger   *logger.Logger
	Recorder MutationRecorder
	Now      func() time.Time
}

// State is the in-memory cart. The persisted snapshot equals the in-memory
// items after every successful mutation; a failed write leaves both untouched.
type State struct {
	mu       sync.Mutex
	items    []LineItem
	version  uint64
	savedAt  time.Time
	persists bool

	store    storage.Store
	logg     *logger.Logger
	recorder MutationRecorder
	now      func() time.Time
}

// New returns an empty cart bound to the store. Call Restore, or use Load, to
// pick up a snapshot written by an earlier run.
func New(deps Deps) (*State, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	if deps.Recorder == nil {
		deps.Recorder = noopRecorder{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &State{
		items:    []LineItem{},
		store:    deps.Store,
		logg:     deps.Logger,
		recorder: deps.Recorder,
		now:      deps.Now,
	}, nil
}

// Load builds a cart and restores it from the store.
func Load(ctx context.Context, deps Deps) (*State, error) {
	state, err := New(deps)
	if err != nil {
		return nil, err
	}
	if err := state.Restore(ctx); err != nil {
		return nil, err
	}
	return state, nil
}

// Restore replaces the in-memory cart with the persisted snapshot. A missing
// snapshot yields an empty cart; a corrupt one is logged and ignored.
func (s *State) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.reloadLocked(ctx, true)
	return err
}

// Refresh adopts the persisted snapshot when another process has written or
// cleared it since this cart last saw it. It reports whether the cart changed.
func (s *State) Refresh(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(ctx, false)
}

func (s *State) reloadLocked(ctx context.Context, force bool) (bool, error) {
	raw, found, err := s.store.Load(ctx, storage.KeyCartItems)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	if !found {
		if !force && !s.persists {
			return false, nil
		}
		changed := len(s.items) > 0
		s.items, s.version, s.savedAt, s.persists = []LineItem{}, 0, time.Time{}, false
		return changed, nil
	}

	doc, err := decodeStored(raw)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "discarding unreadable cart snapshot")
		changed := len(s.items) > 0
		s.items, s.version, s.savedAt, s.persists = []LineItem{}, 0, time.Time{}, false
		return changed, nil
	}

	if !force && s.persists && doc.Version == s.version && doc.SavedAt.Equal(s.savedAt) {
		return false, nil
	}

	items, dropped := normalize(doc.Items)
	if dropped > 0 {
		s.logg.Warn(s.logg.WithField(ctx, "dropped", dropped), "dropped invalid cart rows on restore")
	}
	s.items, s.version, s.savedAt, s.persists = items, doc.Version, doc.SavedAt, true
	return true, nil
}

// mutate applies fn to a copy of the items and persists the result before
// publishing it. fn reports false for a no-op, which skips the write.
func (s *State) mutate(ctx context.Context, op string, fn func(items []LineItem) ([]LineItem, bool)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := fn(cloneItems(s.items))
	if !changed {
		return nil
	}

	doc := stored{
		Version: s.version + 1,
		SavedAt: s.now().UTC(),
		Items:   next,
	}
	raw, err := encodeStored(doc)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart")
	}
	if err := s.store.Save(ctx, storage.KeyCartItems, raw); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "op", op), "cart write failed, mutation rolled back", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}

	s.items, s.version, s.savedAt, s.persists = next, doc.Version, doc.SavedAt, true
	s.recorder.IncMutation(op)
	return nil
}

// AddItem merges qty into an existing line or appends a new one. A qty below
// one adds a single unit; the merged quantity is capped at MaxQuantity.
func (s *State) AddItem(ctx context.Context, p Product, qty int) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if qty < MinQuantity {
		qty = MinQuantity
	}
	return s.mutate(ctx, OpAdd, func(items []LineItem) ([]LineItem, bool) {
		if idx := indexOf(items, p.ID); idx >= 0 {
			merged := ClampQuantity(items[idx].Quantity + qty)
			if merged == items[idx].Quantity {
				return items, false
			}
			items[idx].Quantity = merged
			return items, true
		}
		return append(items, LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
			Quantity:  ClampQuantity(qty),
		}), true
	})
}

// SetQuantity clamps qty into range. Unknown products are ignored.
func (s *State) SetQuantity(ctx context.Context, productID string, qty int) error {
	return s.setWith(ctx, OpSet, productID, func(int) int { return ClampQuantity(qty) })
}

// IncrementQuantity adds one unit, capped at MaxQuantity.
func (s *State) IncrementQuantity(ctx context.Context, productID string) error {
	return s.setWith(ctx, OpIncrement, productID, func(cur int) int { return ClampQuantity(cur + 1) })
}

// DecrementQuantity removes one unit, never below MinQuantity.
func (s *State) DecrementQuantity(ctx context.Context, productID string) error {
	return s.setWith(ctx, OpDecrement, productID, func(cur int) int { return ClampQuantity(cur - 1) })
}

func (s *State) setWith(ctx context.Context, op, productID string, next func(int) int) error {
	return s.mutate(ctx, op, func(items []LineItem) ([]LineItem, bool) {
		idx := indexOf(items, productID)
		if idx < 0 {
			return items, false
		}
		qty := next(items[idx].Quantity)
		if qty == items[idx].Quantity {
			return items, false
		}
		items[idx].Quantity = qty
		return items, true
	})
}

// RemoveItem drops the line for productID, if present.
func (s *State) RemoveItem(ctx context.Context, productID string) error {
	return s.mutate(ctx, OpRemove, func(items []LineItem) ([]LineItem, bool) {
		idx := indexOf(items, productID)
		if idx < 0 {
			return items, false
		}
		return append(items[:idx], items[idx+1:]...), true
	})
}

// Clear empties the cart and deletes the persisted snapshot.
func (s *State) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 && !s.persists {
		return nil
	}
	if err := s.store.Remove(ctx, storage.KeyCartItems); err != nil {
		s.logg.Error(ctx, "cart clear failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
	}
	s.items, s.version, s.savedAt, s.persists = []LineItem{}, 0, time.Time{}, false
	s.recorder.IncMutation(OpClear)
	return nil
}

// Total is the sum of unit price times quantity over all lines.
func (s *State) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sumTotal(s.items)
}

// ItemCount is the sum of quantities over all lines.
func (s *State) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sumCount(s.items)
}

// Items returns a copy of the lines in insertion order.
func (s *State) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// Snapshot returns an immutable copy for submission.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Version: s.version, Items: cloneItems(s.items)}
}
