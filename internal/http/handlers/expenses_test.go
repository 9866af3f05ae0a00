package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/expensetracker/internal/domain/expense"
	"github.com/geocoder89/expensetracker/internal/http/handlers"
)

// Fake implementation of handlers.ExpenseService

type fakeExpenses struct {
	listFn   func(ctx context.Context, userID string, filter expense.ListFilter) ([]expense.Expense, error)
	createFn func(ctx context.Context, userID string, fields expense.Fields) (expense.Expense, error)
	updateFn func(ctx context.Context, userID, id string, patch expense.Patch) (expense.Expense, error)
	deleteFn func(ctx context.Context, userID, id string) error
}

func (f *fakeExpenses) List(ctx context.Context, userID string, filter expense.ListFilter) ([]expense.Expense, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID, filter)
	}
	return []expense.Expense{}, nil
}

func (f *fakeExpenses) Create(ctx context.Context, userID string, fields expense.Fields) (expense.Expense, error) {
	if f.createFn != nil {
		return f.createFn(ctx, userID, fields)
	}
	return expense.Expense{}, nil
}

func (f *fakeExpenses) Update(ctx context.Context, userID, id string, patch expense.Patch) (expense.Expense, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, userID, id, patch)
	}
	return expense.Expense{}, nil
}

func (f *fakeExpenses) Delete(ctx context.Context, userID, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, userID, id)
	}
	return nil
}

// Create expense tests

func TestCreateExpenseHandler(t *testing.T) {
	now := time.Now().UTC()
	const owner = "user-1"

	tests := []struct {
		name           string
		body           string
		svcSetup       func(*fakeExpenses)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"amount": 12.5, "category": "Food", "description": "lunch", "userId": "someone-else"}`,
			svcSetup: func(f *fakeExpenses) {
				f.createFn = func(ctx context.Context, userID string, fields expense.Fields) (expense.Expense, error) {
					if userID != owner {
						return expense.Expense{}, errors.New("owner not taken from context")
					}
					return expense.New(userID, fields, now), nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "missing_amount",
			body:           `{"category": "Food"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "schema_rejects",
			body: `{"amount": 10, "category": "Groceries"}`,
			svcSetup: func(f *fakeExpenses) {
				f.createFn = func(ctx context.Context, userID string, fields expense.Fields) (expense.Expense, error) {
					return expense.Expense{}, &expense.ValidationError{Fields: []expense.FieldViolation{{Field: "category", Message: "must be one of Food, Transportation, Entertainment, Bills, Other"}}}
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "store_error",
			body: `{"amount": 10, "category": "Food"}`,
			svcSetup: func(f *fakeExpenses) {
				f.createFn = func(ctx context.Context, userID string, fields expense.Fields) (expense.Expense, error) {
					return expense.Expense{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeExpenses{}
			if tt.svcSetup != nil {
				tt.svcSetup(svc)
			}

			h := handlers.NewExpensesHandler(svc, nil)
			r := setupRouter(http.MethodPost, "/expenses", asUser(owner), h.CreateExpense)

			w, env := doJSON(t, r, http.MethodPost, "/expenses", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if env.Success != (w.Code < 300) {
				t.Fatalf("success flag %v does not match status %d", env.Success, w.Code)
			}

			if w.Code == http.StatusCreated {
				var e expense.Expense
				if err := json.Unmarshal(env.Data, &e); err != nil {
					t.Fatalf("decode data: %v", err)
				}
				if e.UserID != owner {
					t.Fatalf("got userId %q, want %q", e.UserID, owner)
				}
			}
		})
	}
}

func TestCreateExpenseHandler_ServerErrorHidesCause(t *testing.T) {
	svc := &fakeExpenses{
		createFn: func(ctx context.Context, userID string, fields expense.Fields) (expense.Expense, error) {
			return expense.Expense{}, errors.New("pq: connection refused on 10.0.0.7")
		},
	}

	h := handlers.NewExpensesHandler(svc, nil)
	r := setupRouter(http.MethodPost, "/expenses", asUser("u"), h.CreateExpense)

	_, env := doJSON(t, r, http.MethodPost, "/expenses", `{"amount": 1, "category": "Food"}`)

	if env.Error != "Could not create expense" {
		t.Fatalf("unexpected error message: %q", env.Error)
	}
}

// List expense tests

func TestListExpensesHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		url            string
		wantCategory   *expense.Category
		listErr        error
		wantStatusCode int
		wantCount      int
	}{
		{
			name:           "no_filter",
			url:            "/expenses",
			wantStatusCode: http.StatusOK,
			wantCount:      2,
		},
		{
			name:           "category_filter",
			url:            "/expenses?category=Food",
			wantCategory:   ptrCategory(expense.CategoryFood),
			wantStatusCode: http.StatusOK,
			wantCount:      2,
		},
		{
			name:           "store_error",
			url:            "/expenses",
			listErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeExpenses{
				listFn: func(ctx context.Context, userID string, filter expense.ListFilter) ([]expense.Expense, error) {
					if tt.listErr != nil {
						return nil, tt.listErr
					}
					if (tt.wantCategory == nil) != (filter.Category == nil) {
						t.Fatalf("unexpected filter: %+v", filter)
					}
					if tt.wantCategory != nil && *filter.Category != *tt.wantCategory {
						t.Fatalf("got category %q, want %q", *filter.Category, *tt.wantCategory)
					}
					return []expense.Expense{
						expense.New(userID, expense.Fields{Amount: 1, Category: expense.CategoryFood}, now),
						expense.New(userID, expense.Fields{Amount: 2, Category: expense.CategoryFood}, now),
					}, nil
				},
			}

			h := handlers.NewExpensesHandler(svc, nil)
			r := setupRouter(http.MethodGet, "/expenses", asUser("u"), h.ListExpenses)

			w, env := doJSON(t, r, http.MethodGet, tt.url, "")

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if w.Code != http.StatusOK {
				return
			}

			if env.Count == nil || *env.Count != tt.wantCount {
				t.Fatalf("got count %v, want %d", env.Count, tt.wantCount)
			}

			if w.Header().Get("ETag") == "" {
				t.Fatalf("expected an ETag header")
			}
		})
	}
}

func TestListExpensesHandler_NotModified(t *testing.T) {
	svc := &fakeExpenses{}
	h := handlers.NewExpensesHandler(svc, nil)
	r := setupRouter(http.MethodGet, "/expenses", asUser("u"), h.ListExpenses)

	w, _ := doJSON(t, r, http.MethodGet, "/expenses", "")
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected an ETag header")
	}

	req := httptest.NewRequest(http.MethodGet, "/expenses", nil)
	req.Header.Set("If-None-Match", etag)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)

	if w2.Code != http.StatusNotModified {
		t.Fatalf("got status %d, want %d", w2.Code, http.StatusNotModified)
	}
}

// Update / delete expense tests

func TestUpdateExpenseHandler(t *testing.T) {
	now := time.Now().UTC()
	id := newUUID()

	tests := []struct {
		name           string
		body           string
		updateErr      error
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "success",
			body:           `{"amount": 42}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "not_owned",
			body:           `{"amount": 42}`,
			updateErr:      expense.ErrNotFound,
			wantStatusCode: http.StatusNotFound,
			wantError:      "Expense not found or unauthorized",
		},
		{
			name:           "bad_json",
			body:           `{"amount": }`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "store_error",
			body:           `{"amount": 42}`,
			updateErr:      errors.New("boom"),
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeExpenses{
				updateFn: func(ctx context.Context, userID, gotID string, patch expense.Patch) (expense.Expense, error) {
					if tt.updateErr != nil {
						return expense.Expense{}, tt.updateErr
					}
					if gotID != id {
						t.Fatalf("got id %q, want %q", gotID, id)
					}
					e := expense.New(userID, expense.Fields{Amount: 1, Category: expense.CategoryFood}, now)
					e = patch.Apply(e, now)
					return e, nil
				},
			}

			h := handlers.NewExpensesHandler(svc, nil)
			r := setupRouter(http.MethodPatch, "/expenses/:id", asUser("u"), h.UpdateExpense)

			w, env := doJSON(t, r, http.MethodPatch, "/expenses/"+id, tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantError != "" && env.Error != tt.wantError {
				t.Fatalf("got error %q, want %q", env.Error, tt.wantError)
			}

			if w.Code == http.StatusOK {
				var e expense.Expense
				if err := json.Unmarshal(env.Data, &e); err != nil {
					t.Fatalf("decode data: %v", err)
				}
				if e.Amount != 42 {
					t.Fatalf("got amount %v, want 42", e.Amount)
				}
			}
		})
	}
}

func TestDeleteExpenseHandler(t *testing.T) {
	tests := []struct {
		name           string
		deleteErr      error
		wantStatusCode int
	}{
		{name: "success", wantStatusCode: http.StatusOK},
		{name: "already_deleted", deleteErr: expense.ErrNotFound, wantStatusCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeExpenses{
				deleteFn: func(ctx context.Context, userID, id string) error {
					return tt.deleteErr
				},
			}

			h := handlers.NewExpensesHandler(svc, nil)
			r := setupRouter(http.MethodDelete, "/expenses/:id", asUser("u"), h.DeleteExpense)

			w, env := doJSON(t, r, http.MethodDelete, "/expenses/"+newUUID(), "")

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if w.Code == http.StatusOK && string(env.Data) != "{}" {
				t.Fatalf("got data %s, want {}", env.Data)
			}
		})
	}
}

func TestExpensesHandler_RequiresIdentity(t *testing.T) {
	h := handlers.NewExpensesHandler(&fakeExpenses{}, nil)
	r := setupRouter(http.MethodGet, "/expenses", h.ListExpenses)

	w, _ := doJSON(t, r, http.MethodGet, "/expenses", "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func ptrCategory(c expense.Category) *expense.Category {
	return &c
}
