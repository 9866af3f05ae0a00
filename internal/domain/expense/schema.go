package expense

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type FieldViolation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed the expense schema.
type ValidationError struct {
	Fields []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Schema validates expenses before they are written, whatever the store.
type Schema struct {
	v *validator.Validate
}

func NewSchema() *Schema {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return sf.Name
		}
		return name
	})

	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return PaymentMethod(fl.Field().String()).Valid()
	})

	return &Schema{v: v}
}

func (s *Schema) Validate(e Expense) error {
	return s.check(e)
}

func (s *Schema) ValidatePatch(p Patch) error {
	return s.check(p)
}

func (s *Schema) check(v any) error {
	err := s.v.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make([]FieldViolation, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldViolation{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: violationMessage(fe.Tag(), fe.Param()),
		})
	}
	return out
}

func violationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + param
	case "max":
		return "must be at most " + param + " characters"
	case "category":
		return "must be one of " + joinValues(Categories)
	case "payment_method":
		return "must be one of " + joinValues(PaymentMethods)
	default:
		return fmt.Sprintf("failed %s validation", rule)
	}
}

func joinValues[T ~string](values []T) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return strings.Join(out, ", ")
}
