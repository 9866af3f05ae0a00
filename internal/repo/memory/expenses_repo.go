package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/expensetracker/internal/domain/expense"
)

// ExpensesRepo keeps expenses in insertion order behind a single mutex.
type ExpensesRepo struct {
	mu    sync.RWMutex
	order []string
	items map[string]expense.Expense
	now   func() time.Time
}

func NewExpensesRepo() *ExpensesRepo {
	return &ExpensesRepo{
		items: make(map[string]expense.Expense),
		now:   time.Now,
	}
}

func (r *ExpensesRepo) Create(_ context.Context, e expense.Expense) (expense.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[e.ID]; !exists {
		r.order = append(r.order, e.ID)
	}
	r.items[e.ID] = e

	return e, nil
}

func (r *ExpensesRepo) List(_ context.Context, userID string, filter expense.ListFilter) ([]expense.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]expense.Expense, 0)

	for _, id := range r.order {
		e := r.items[id]

		if e.UserID != userID || e.IsDeleted {
			continue
		}

		if filter.Category != nil && e.Category != *filter.Category {
			continue
		}

		out = append(out, e)
	}

	return out, nil
}

func (r *ExpensesRepo) UpdateOwned(_ context.Context, userID, id string, patch expense.Patch) (expense.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.ownedLocked(userID, id)
	if !ok {
		return expense.Expense{}, expense.ErrNotFound
	}

	e = patch.Apply(e, r.now())
	r.items[id] = e

	return e, nil
}

func (r *ExpensesRepo) SoftDelete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.ownedLocked(userID, id)
	if !ok {
		return expense.ErrNotFound
	}

	e.IsDeleted = true
	e.UpdatedAt = r.now().UTC()
	r.items[id] = e

	return nil
}

// caller holds r.mu
func (r *ExpensesRepo) ownedLocked(userID, id string) (expense.Expense, bool) {
	e, ok := r.items[id]
	if !ok || e.UserID != userID || e.IsDeleted {
		return expense.Expense{}, false
	}
	return e, true
}
