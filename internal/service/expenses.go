package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/expensetracker/internal/domain/expense"
)

type ExpenseStore interface {
	List(ctx context.Context, userID string, filter expense.ListFilter) ([]expense.Expense, error)
	Create(ctx context.Context, e expense.Expense) (expense.Expense, error)
	UpdateOwned(ctx context.Context, userID, id string, patch expense.Patch) (expense.Expense, error)
	SoftDelete(ctx context.Context, userID, id string) error
}

type Expenses struct {
	store  ExpenseStore
	schema *expense.Schema
	log    *slog.Logger
	now    func() time.Time
}

func NewExpenses(store ExpenseStore, schema *expense.Schema, log *slog.Logger) *Expenses {
	if schema == nil {
		schema = expense.NewSchema()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Expenses{
		store:  store,
		schema: schema,
		log:    log,
		now:    time.Now,
	}
}

func (s *Expenses) List(ctx context.Context, userID string, filter expense.ListFilter) ([]expense.Expense, error) {
	out, err := s.store.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

// Create stores a new expense owned by userID; any owner in fields is ignored.
func (s *Expenses) Create(ctx context.Context, userID string, fields expense.Fields) (expense.Expense, error) {
	e := expense.New(userID, fields, s.now())

	if err := s.schema.Validate(e); err != nil {
		return expense.Expense{}, err
	}

	created, err := s.store.Create(ctx, e)
	if err != nil {
		return expense.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	s.log.DebugContext(ctx, "expense created", "expense_id", created.ID)

	return created, nil
}

func (s *Expenses) Update(ctx context.Context, userID, id string, patch expense.Patch) (expense.Expense, error) {
	if err := s.schema.ValidatePatch(patch); err != nil {
		return expense.Expense{}, err
	}

	updated, err := s.store.UpdateOwned(ctx, userID, id, patch)
	if err != nil {
		return expense.Expense{}, err
	}

	return updated, nil
}

func (s *Expenses) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.SoftDelete(ctx, userID, id); err != nil {
		return err
	}

	s.log.DebugContext(ctx, "expense deleted", "expense_id", id)

	return nil
}
