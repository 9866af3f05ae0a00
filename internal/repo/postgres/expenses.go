package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/expensetracker/internal/domain/expense"
	"github.com/geocoder89/expensetracker/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const expenseColumns = `id, user_id, amount, description, category, date, payment_method, is_deleted, created_at, updated_at`

type ExpensesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// NewExpensesRepo builds the expenses store. prom may be nil.
func NewExpensesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ExpensesRepo {
	return &ExpensesRepo{pool: pool, prom: prom}
}

func (r *ExpensesRepo) Create(ctx context.Context, e expense.Expense) (expense.Expense, error) {
	err := r.prom.ObserveDB(ctx, "expenses.create", func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO expenses (`+expenseColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			e.ID, e.UserID, e.Amount, e.Description, string(e.Category), e.Date,
			string(e.PaymentMethod), e.IsDeleted, e.CreatedAt, e.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return expense.Expense{}, err
	}

	return e, nil
}

// List returns the live expenses owned by userID in insertion order.
func (r *ExpensesRepo) List(ctx context.Context, userID string, filter expense.ListFilter) ([]expense.Expense, error) {
	out := make([]expense.Expense, 0)

	if !isUUID(userID) {
		return out, nil
	}

	query := `SELECT ` + expenseColumns + `
		FROM expenses
		WHERE user_id = $1 AND is_deleted = FALSE`
	args := []interface{}{userID}

	if filter.Category != nil {
		query += ` AND category = $2`
		args = append(args, string(*filter.Category))
	}

	query += ` ORDER BY created_at ASC, id ASC`

	err := r.prom.ObserveDB(ctx, "expenses.list", func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			e, err := scanExpense(rows)
			if err != nil {
				return err
			}
			out = append(out, e)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// UpdateOwned applies patch to the live expense matching both id and userID.
func (r *ExpensesRepo) UpdateOwned(ctx context.Context, userID, id string, patch expense.Patch) (expense.Expense, error) {
	if !isUUID(id) || !isUUID(userID) {
		return expense.Expense{}, expense.ErrNotFound
	}

	var category, paymentMethod *string
	if patch.Category != nil {
		s := string(*patch.Category)
		category = &s
	}
	if patch.PaymentMethod != nil {
		s := string(*patch.PaymentMethod)
		paymentMethod = &s
	}

	var e expense.Expense

	err := r.prom.ObserveDB(ctx, "expenses.update", func(ctx context.Context) error {
		var err error
		e, err = scanExpense(r.pool.QueryRow(
			ctx,
			`UPDATE expenses
			SET amount = COALESCE($3, amount),
				description = COALESCE($4, description),
				category = COALESCE($5, category),
				date = COALESCE($6, date),
				payment_method = COALESCE($7, payment_method),
				updated_at = NOW()
			WHERE id = $1 AND user_id = $2 AND is_deleted = FALSE
			RETURNING `+expenseColumns,
			id,
			userID,
			patch.Amount,
			patch.Description,
			category,
			patch.Date,
			paymentMethod,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return expense.Expense{}, expense.ErrNotFound
		}
		return expense.Expense{}, err
	}

	return e, nil
}

// SoftDelete flags the live expense matching both id and userID as deleted.
func (r *ExpensesRepo) SoftDelete(ctx context.Context, userID, id string) error {
	if !isUUID(id) || !isUUID(userID) {
		return expense.ErrNotFound
	}

	var affected int64

	err := r.prom.ObserveDB(ctx, "expenses.soft_delete", func(ctx context.Context) error {
		tag, err := r.pool.Exec(ctx, `
			UPDATE expenses
			SET is_deleted = TRUE, updated_at = NOW()
			WHERE id = $1 AND user_id = $2 AND is_deleted = FALSE
		`, id, userID)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return expense.ErrNotFound
	}

	return nil
}

func scanExpense(row pgx.Row) (expense.Expense, error) {
	var (
		e             expense.Expense
		category      string
		paymentMethod string
	)

	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.Amount,
		&e.Description,
		&category,
		&e.Date,
		&paymentMethod,
		&e.IsDeleted,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return expense.Expense{}, err
	}

	e.Category = expense.Category(category)
	e.PaymentMethod = expense.PaymentMethod(paymentMethod)

	return e, nil
}
