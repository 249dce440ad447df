package stockledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/id"
)

// fakeRepo keeps stock in memory and records every movement in order.
type fakeRepo struct {
	stock     map[id.ID]*ProductStock
	movements []*Movement
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{stock: make(map[id.ID]*ProductStock)}
}

func (f *fakeRepo) addProduct(name string, qty int) id.ID {
	pid := id.New()
	f.stock[pid] = &ProductStock{ID: pid, Name: name, Stock: qty}
	return pid
}

func (f *fakeRepo) GetStock(ctx context.Context, productID id.ID) (*ProductStock, error) {
	ps, ok := f.stock[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return ps, nil
}

func (f *fakeRepo) TryDecrement(ctx context.Context, productID id.ID, qty int) (bool, error) {
	ps, ok := f.stock[productID]
	if !ok {
		return false, apperror.NewNotFound("product", productID.String())
	}
	if ps.Stock < qty {
		return false, nil
	}
	ps.Stock -= qty
	return true, nil
}

func (f *fakeRepo) Increment(ctx context.Context, productID id.ID, qty int) error {
	ps, ok := f.stock[productID]
	if !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	ps.Stock += qty
	return nil
}

func (f *fakeRepo) RecordMovement(ctx context.Context, m *Movement) error {
	f.movements = append(f.movements, m)
	return nil
}

func TestLedger_Decrement(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := newFakeRepo()
		pid := repo.addProduct("Vermifuge", 10)
		ledger := NewLedger(repo)

		err := ledger.Decrement(ctx, pid, 3, Ref{Type: RefAttendance})

		require.NoError(t, err)
		assert.Equal(t, 7, repo.stock[pid].Stock)
		require.Len(t, repo.movements, 1)
		assert.Equal(t, DirectionOut, repo.movements[0].Direction)
		assert.Equal(t, 3, repo.movements[0].Quantity)
	})

	t.Run("insufficient stock names product and available", func(t *testing.T) {
		repo := newFakeRepo()
		pid := repo.addProduct("Antibiotic", 3)
		ledger := NewLedger(repo)

		err := ledger.Decrement(ctx, pid, 5, Ref{Type: RefAttendance})

		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
		assert.Contains(t, appErr.Message, "Antibiotic")
		assert.Contains(t, appErr.Message, "available: 3")
		assert.Equal(t, 3, repo.stock[pid].Stock, "stock unchanged on failure")
		assert.Empty(t, repo.movements)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		repo := newFakeRepo()
		pid := repo.addProduct("Gauze", 10)
		ledger := NewLedger(repo)

		err := ledger.Decrement(ctx, pid, 0, Ref{Type: RefManual})
		require.Error(t, err)
		assert.Equal(t, 10, repo.stock[pid].Stock)
	})
}

func TestLedger_Increment(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	pid := repo.addProduct("Saline", 1)
	ledger := NewLedger(repo)

	err := ledger.Increment(ctx, pid, 4, Ref{Type: RefManual})

	require.NoError(t, err)
	assert.Equal(t, 5, repo.stock[pid].Stock)
	require.Len(t, repo.movements, 1)
	assert.Equal(t, DirectionIn, repo.movements[0].Direction)
}

func TestLedger_ApplyUsageChange(t *testing.T) {
	ctx := context.Background()

	t.Run("restore before validate avoids spurious shortage", func(t *testing.T) {
		repo := newFakeRepo()
		// A: 0 left on shelf, but the attendance already holds 5.
		// B: 3 left.
		a := repo.addProduct("Product A", 0)
		b := repo.addProduct("Product B", 3)
		ledger := NewLedger(repo)

		oldUsage := []Usage{{ProductID: a, Quantity: 5}}
		// Shrink A to 2, add B at 3. Without the restore phase the
		// A decrement would fail against stale stock 0.
		newUsage := []Usage{{ProductID: a, Quantity: 2}, {ProductID: b, Quantity: 3}}

		err := ledger.ApplyUsageChange(ctx, oldUsage, newUsage, Ref{Type: RefAttendance})

		require.NoError(t, err)
		assert.Equal(t, 3, repo.stock[a].Stock) // 0 + 5 - 2
		assert.Equal(t, 0, repo.stock[b].Stock)
	})

	t.Run("shortage in new list fails with product name", func(t *testing.T) {
		repo := newFakeRepo()
		a := repo.addProduct("Product A", 1)
		ledger := NewLedger(repo)

		err := ledger.ApplyUsageChange(ctx, nil, []Usage{{ProductID: a, Quantity: 5}}, Ref{Type: RefAttendance})

		require.Error(t, err)
		appErr, _ := apperror.AsAppError(err)
		assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
		assert.Contains(t, appErr.Message, "Product A")
	})

	t.Run("duplicate product rejected before any movement", func(t *testing.T) {
		repo := newFakeRepo()
		a := repo.addProduct("Product A", 10)
		ledger := NewLedger(repo)

		dup := []Usage{{ProductID: a, Quantity: 1}, {ProductID: a, Quantity: 2}}
		err := ledger.ApplyUsageChange(ctx, nil, dup, Ref{Type: RefAttendance})

		require.Error(t, err)
		assert.Equal(t, 10, repo.stock[a].Stock)
		assert.Empty(t, repo.movements)
	})

	t.Run("zero-quantity lines are skipped", func(t *testing.T) {
		repo := newFakeRepo()
		a := repo.addProduct("Product A", 2)
		ledger := NewLedger(repo)

		err := ledger.ApplyUsageChange(ctx, nil, []Usage{{ProductID: a, Quantity: 0}}, Ref{Type: RefAttendance})

		require.NoError(t, err)
		assert.Equal(t, 2, repo.stock[a].Stock)
		assert.Empty(t, repo.movements)
	})
}
