package cart

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/angelmondragon/minimarket-client/internal/storage"
	pkgerrors "github.com/angelmondragon/minimarket-client/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	p1 = Product{ID: "p1", Name: "Arroz", UnitPrice: decimal.RequireFromString("10.00")}
	p2 = Product{ID: "p2", Name: "Feijão", UnitPrice: decimal.RequireFromString("5.00")}
)

type flakyStore struct {
	*storage.MemoryStore
	failSave   bool
	failRemove bool
	saves      int
}

func (f *flakyStore) Save(ctx context.Context, key string, value []byte) error {
	if f.failSave {
		return errors.New("disk full")
	}
	f.saves++
	return f.MemoryStore.Save(ctx, key, value)
}

func (f *flakyStore) Remove(ctx context.Context, key string) error {
	if f.failRemove {
		return errors.New("disk gone")
	}
	return f.MemoryStore.Remove(ctx, key)
}

type countingRecorder map[string]int

func (c countingRecorder) IncMutation(op string) { c[op]++ }

func newTestState(t *testing.T, store storage.Store) *State {
	t.Helper()
	state, err := Load(context.Background(), Deps{Store: store})
	if err != nil {
		t.Fatalf("load cart: %v", err)
	}
	return state
}

func reload(t *testing.T, store storage.Store) *State {
	t.Helper()
	return newTestState(t, store)
}

func TestTotalsScenario(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	state := newTestState(t, storage.NewMemoryStore())

	if err := state.AddItem(ctx, p1, 2); err != nil {
		t.Fatalf("add p1: %v", err)
	}
	if err := state.AddItem(ctx, p2, 1); err != nil {
		t.Fatalf("add p2: %v", err)
	}

	if got := state.Total().StringFixed(2); got != "25.00" {
		t.Fatalf("expected total 25.00, got %s", got)
	}
	if got := state.ItemCount(); got != 3 {
		t.Fatalf("expected count 3, got %d", got)
	}
}

func TestAddTwiceThenDecrementTwiceFloorsAtOne(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	state := newTestState(t, storage.NewMemoryStore())

	for i := 0; i < 2; i++ {
		if err := state.AddItem(ctx, p1, 1); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	items := state.Items()
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("expected a single line with qty 2, got %+v", items)
	}

	for i := 0; i < 2; i++ {
		if err := state.DecrementQuantity(ctx, p1.ID); err != nil {
			t.Fatalf("decrement: %v", err)
		}
	}
	if got := state.Items()[0].Quantity; got != 1 {
		t.Fatalf("expected qty 1, got %d", got)
	}
}

func TestQuantityClampedAndCapped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	state := newTestState(t, storage.NewMemoryStore())

	if err := state.AddItem(ctx, p1, 150); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := state.Items()[0].Quantity; got != MaxQuantity {
		t.Fatalf("expected cap at %d, got %d", MaxQuantity, got)
	}
	if err := state.IncrementQuantity(ctx, p1.ID); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if got := state.Items()[0].Quantity; got != MaxQuantity {
		t.Fatalf("increment must not pass cap, got %d", got)
	}
	if err := state.SetQuantity(ctx, p1.ID, -4); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := state.Items()[0].Quantity; got != MinQuantity {
		t.Fatalf("expected floor at %d, got %d", MinQuantity, got)
	}
}

func TestUnknownProductIsNoop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &flakyStore{MemoryStore: storage.NewMemoryStore()}
	state := newTestState(t, store)

	for _, op := range []func() error{
		func() error { return state.SetQuantity(ctx, "ghost", 3) },
		func() error { return state.IncrementQuantity(ctx, "ghost") },
		func() error { return state.DecrementQuantity(ctx, "ghost") },
		func() error { return state.RemoveItem(ctx, "ghost") },
	} {
		if err := op(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if store.saves != 0 {
		t.Fatalf("no-op mutations must not write, got %d saves", store.saves)
	}
}

func TestAddRejectsInvalidProduct(t *testing.T) {
	t.Parallel()
	state := newTestState(t, storage.NewMemoryStore())

	err := state.AddItem(context.Background(), Product{ID: "bad", UnitPrice: decimal.NewFromInt(-1)}, 1)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	err = state.AddItem(context.Background(), Product{UnitPrice: decimal.NewFromInt(1)}, 1)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFailedWriteRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &flakyStore{MemoryStore: storage.NewMemoryStore()}
	state := newTestState(t, store)

	if err := state.AddItem(ctx, p1, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	store.failSave = true

	err := state.AddItem(ctx, p2, 1)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if got := state.ItemCount(); got != 1 {
		t.Fatalf("in-memory cart must be unchanged, count=%d", got)
	}

	store.failRemove = true
	if err := state.Clear(ctx); pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error on clear, got %v", err)
	}
	if got := state.ItemCount(); got != 1 {
		t.Fatalf("clear failure must keep items, count=%d", got)
	}

	store.failSave = false
	if got := reload(t, store).ItemCount(); got != 1 {
		t.Fatalf("persisted cart diverged, count=%d", got)
	}
}

func TestClearRemovesSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := storage.NewMemoryStore()
	state := newTestState(t, store)

	if err := state.AddItem(ctx, p1, 3); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := state.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, found, _ := store.Load(ctx, storage.KeyCartItems); found {
		t.Fatal("expected snapshot to be removed")
	}
	if !state.Total().IsZero() || state.ItemCount() != 0 {
		t.Fatal("expected empty cart")
	}
}

func TestCorruptSnapshotLoadsEmpty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := storage.NewMemoryStore()
	if err := store.Save(ctx, storage.KeyCartItems, []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	state := newTestState(t, store)
	if state.ItemCount() != 0 {
		t.Fatalf("expected empty cart, got %+v", state.Items())
	}
	if err := state.AddItem(ctx, p1, 1); err != nil {
		t.Fatalf("add after corrupt load: %v", err)
	}
	if got := reload(t, store).ItemCount(); got != 1 {
		t.Fatalf("expected overwrite of corrupt snapshot, count=%d", got)
	}
}

func TestLegacyArraySnapshotIsRestored(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := storage.NewMemoryStore()
	legacy := `[
		{"_id":"p1","PRODUCT_NAME":"Arroz","PRODUCT_PRICE":10,"PRODUCT_QUANTITY":2},
		{"_id":"p1","PRODUCT_NAME":"Arroz","PRODUCT_PRICE":10,"PRODUCT_QUANTITY":1},
		{"_id":"p2","PRODUCT_NAME":"Feijão","PRODUCT_PRICE":5.5,"PRODUCT_QUANTITY":0},
		{"_id":"","PRODUCT_NAME":"ghost","PRODUCT_PRICE":1,"PRODUCT_QUANTITY":1}
	]`
	if err := store.Save(ctx, storage.KeyCartItems, []byte(legacy)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	items := newTestState(t, store).Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 lines, got %+v", items)
	}
	if items[0].Quantity != 3 || items[1].Quantity != 1 {
		t.Fatalf("unexpected quantities %+v", items)
	}
}

func TestRefreshAdoptsForeignWrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := storage.NewMemoryStore()
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	tabA, err := Load(ctx, Deps{Store: store, Now: tick})
	if err != nil {
		t.Fatalf("load a: %v", err)
	}
	tabB, err := Load(ctx, Deps{Store: store, Now: tick})
	if err != nil {
		t.Fatalf("load b: %v", err)
	}

	if err := tabA.AddItem(ctx, p1, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	changed, err := tabB.Refresh(ctx)
	if err != nil || !changed {
		t.Fatalf("expected refresh to adopt, changed=%v err=%v", changed, err)
	}
	if tabB.ItemCount() != 2 {
		t.Fatalf("expected 2 items in tab b, got %d", tabB.ItemCount())
	}

	changed, err = tabB.Refresh(ctx)
	if err != nil || changed {
		t.Fatalf("second refresh should be a no-op, changed=%v err=%v", changed, err)
	}

	if err := tabA.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	changed, err = tabB.Refresh(ctx)
	if err != nil || !changed || tabB.ItemCount() != 0 {
		t.Fatalf("expected tab b to observe clear, changed=%v count=%d err=%v", changed, tabB.ItemCount(), err)
	}
}

func TestRecorderCountsPersistedMutations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rec := countingRecorder{}
	state, err := New(Deps{Store: storage.NewMemoryStore(), Recorder: rec})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	_ = state.AddItem(ctx, p1, 1)
	_ = state.IncrementQuantity(ctx, p1.ID)
	_ = state.IncrementQuantity(ctx, "ghost")
	_ = state.Clear(ctx)
	_ = state.Clear(ctx)

	if rec[OpAdd] != 1 || rec[OpIncrement] != 1 || rec[OpClear] != 1 {
		t.Fatalf("unexpected recorder counts %v", rec)
	}
}

func TestNewRequiresStore(t *testing.T) {
	t.Parallel()
	if _, err := New(Deps{}); err == nil {
		t.Fatal("expected error without store")
	}
}

func TestRandomOperationsKeepCartConsistent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := storage.NewMemoryStore()
	state := newTestState(t, store)
	rng := rand.New(rand.NewSource(42))
	catalog := []Product{
		p1,
		p2,
		{ID: "p3", Name: "Café", UnitPrice: decimal.RequireFromString("17.35")},
		{ID: "p4", Name: "Sal", UnitPrice: decimal.Zero},
	}

	for step := 0; step < 500; step++ {
		p := catalog[rng.Intn(len(catalog))]
		var err error
		switch rng.Intn(6) {
		case 0:
			err = state.AddItem(ctx, p, rng.Intn(5))
		case 1:
			err = state.SetQuantity(ctx, p.ID, rng.Intn(140)-20)
		case 2:
			err = state.IncrementQuantity(ctx, p.ID)
		case 3:
			err = state.DecrementQuantity(ctx, p.ID)
		case 4:
			err = state.RemoveItem(ctx, p.ID)
		case 5:
			if rng.Intn(10) == 0 {
				err = state.Clear(ctx)
			}
		}
		if err != nil {
			t.Fatalf("step %d: %v", step, err)
		}

		items := state.Items()
		seen := map[string]bool{}
		want := decimal.Zero
		for _, item := range items {
			if seen[item.ProductID] {
				t.Fatalf("step %d: duplicate line %s", step, item.ProductID)
			}
			seen[item.ProductID] = true
			if item.Quantity < MinQuantity || item.Quantity > MaxQuantity {
				t.Fatalf("step %d: quantity out of range %d", step, item.Quantity)
			}
			want = want.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		if !state.Total().Equal(want) {
			t.Fatalf("step %d: total %s, recomputed %s", step, state.Total(), want)
		}

		restored := reload(t, store)
		if !restored.Total().Equal(want) || restored.ItemCount() != state.ItemCount() {
			t.Fatalf("step %d: reload diverged", step)
		}
	}
}
