package expense

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound covers both a missing expense and one owned by someone else.
var ErrNotFound = errors.New("expense not found or unauthorized")

type Category string

const (
	CategoryFood           Category = "Food"
	CategoryTransportation Category = "Transportation"
	CategoryEntertainment  Category = "Entertainment"
	CategoryBills          Category = "Bills"
	CategoryOther          Category = "Other"
)

var Categories = []Category{
	CategoryFood,
	CategoryTransportation,
	CategoryEntertainment,
	CategoryBills,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "Cash"
	PaymentCreditCard PaymentMethod = "Credit Card"
	PaymentDebitCard  PaymentMethod = "Debit Card"
)

var PaymentMethods = []PaymentMethod{
	PaymentCash,
	PaymentCreditCard,
	PaymentDebitCard,
}

func (p PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if p == known {
			return true
		}
	}
	return false
}

type Expense struct {
	ID            string        `json:"id" validate:"required"`
	UserID        string        `json:"userId" validate:"required"`
	Amount        float64       `json:"amount" validate:"gte=0"`
	Description   string        `json:"description,omitempty" validate:"max=1000"`
	Category      Category      `json:"category" validate:"required,category"`
	Date          time.Time     `json:"date" validate:"required"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty" validate:"omitempty,payment_method"`
	IsDeleted     bool          `json:"isDeleted"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Fields are the caller-supplied values of a new expense.
type Fields struct {
	Amount        float64
	Description   string
	Category      Category
	Date          *time.Time
	PaymentMethod PaymentMethod
}

// New builds an expense owned by userID. The date defaults to now.
func New(userID string, f Fields, now time.Time) Expense {
	now = now.UTC()

	date := now
	if f.Date != nil && !f.Date.IsZero() {
		date = f.Date.UTC()
	}

	return Expense{
		ID:            uuid.NewString(),
		UserID:        userID,
		Amount:        f.Amount,
		Description:   f.Description,
		Category:      f.Category,
		Date:          date,
		PaymentMethod: f.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Amount        *float64       `json:"amount,omitempty" validate:"omitnil,gte=0"`
	Description   *string        `json:"description,omitempty" validate:"omitempty,max=1000"`
	Category      *Category      `json:"category,omitempty" validate:"omitnil,category"`
	Date          *time.Time     `json:"date,omitempty"`
	PaymentMethod *PaymentMethod `json:"paymentMethod,omitempty" validate:"omitempty,payment_method"`
}

func (p Patch) Empty() bool {
	return p.Amount == nil && p.Description == nil && p.Category == nil && p.Date == nil && p.PaymentMethod == nil
}

// Apply returns e with the patch fields written over it.
func (p Patch) Apply(e Expense, now time.Time) Expense {
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Date != nil {
		e.Date = p.Date.UTC()
	}
	if p.PaymentMethod != nil {
		e.PaymentMethod = *p.PaymentMethod
	}
	e.UpdatedAt = now.UTC()
	return e
}

type ListFilter struct {
	Category *Category
}

type CreateExpenseRequest struct {
	Amount        *float64   `json:"amount" binding:"required"`
	Description   string     `json:"description"`
	Category      string     `json:"category" binding:"required"`
	Date          *time.Time `json:"date"`
	PaymentMethod string     `json:"paymentMethod"`
}

func (r CreateExpenseRequest) Fields() Fields {
	var amount float64
	if r.Amount != nil {
		amount = *r.Amount
	}

	return Fields{
		Amount:        amount,
		Description:   r.Description,
		Category:      Category(r.Category),
		Date:          r.Date,
		PaymentMethod: PaymentMethod(r.PaymentMethod),
	}
}

type UpdateExpenseRequest struct {
	Amount        *float64   `json:"amount"`
	Description   *string    `json:"description"`
	Category      *string    `json:"category"`
	Date          *time.Time `json:"date"`
	PaymentMethod *string    `json:"paymentMethod"`
}

func (r UpdateExpenseRequest) Patch() Patch {
	p := Patch{
		Amount:      r.Amount,
		Description: r.Description,
		Date:        r.Date,
	}

	if r.Category != nil {
		c := Category(*r.Category)
		p.Category = &c
	}

	if r.PaymentMethod != nil {
		m := PaymentMethod(*r.PaymentMethod)
		p.PaymentMethod = &m
	}

	return p
}
