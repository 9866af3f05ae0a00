package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of details.fields in a 400 envelope.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

const timestampField = "date"

var validatorOnce sync.Once

// configureValidator makes gin's validator report json tag names, so
// FieldError.Field matches what the client sent, and adds the notblank rule
// for strings that must carry more than whitespace.
func configureValidator() {
	validatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		// only fails on an empty tag or nil func
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})

		v.RegisterTagNameFunc(func(sf reflect.StructField) string {
			name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return sf.Name
			}
			return name
		})
	})
}

// BindJSON decodes and validates the request body into out. On failure it
// writes the error envelope and returns false.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	configureValidator()

	err := ctx.ShouldBindJSON(out)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		RespondError(ctx, http.StatusRequestEntityTooLarge, "Request body too large", nil)
	case errors.Is(err, io.EOF):
		RespondBadRequest(ctx, "Request body is required", nil)
	default:
		details := bindErrorDetails(err)
		RespondBadRequest(ctx, bindErrorMessage(details), details)
	}

	return false
}

// bindErrorMessage flattens field errors into the single error string of the envelope.
func bindErrorMessage(details gin.H) string {
	fields, _ := details["fields"].([]FieldError)
	if len(fields) == 0 {
		if _, ok := details["json"]; ok {
			return "Invalid JSON body"
		}
		return "Invalid request body"
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Field+" "+f.Message)
	}

	return strings.Join(parts, "; ")
}

func bindErrorDetails(err error) gin.H {
	var (
		validationErrs validator.ValidationErrors
		syntaxErr      *json.SyntaxError
		typeErr        *json.UnmarshalTypeError
		timeErr        *time.ParseError
	)

	switch {
	case errors.As(err, &validationErrs):
		fields := make([]FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, FieldError{
				Field:   fieldPath(fe),
				Rule:    fe.Tag(),
				Param:   fe.Param(),
				Message: validationMessage(fe.Tag(), fe.Param()),
			})
		}
		return gin.H{"fields": fields}

	case errors.As(err, &syntaxErr):
		return gin.H{"json": "invalid_json_syntax"}

	case errors.As(err, &typeErr):
		// json already reports the path by json name, e.g. "amount"
		field := strings.TrimSpace(typeErr.Field)
		return gin.H{
			"json":  "invalid_json_type",
			"field": field,
			"fields": []FieldError{{
				Field:   field,
				Rule:    "type",
				Message: fmt.Sprintf("must be of type %s", typeErr.Type.String()),
			}},
		}

	case errors.As(err, &timeErr):
		// the parse error does not name its field; date is the only
		// timestamp clients send
		return gin.H{
			"json":  "invalid_json_type",
			"field": timestampField,
			"fields": []FieldError{{
				Field:   timestampField,
				Rule:    "type",
				Message: "must be an RFC 3339 timestamp, e.g. 2024-11-24T00:00:00Z",
			}},
		}
	}

	return gin.H{"reason": err.Error()}
}

// fieldPath drops the root struct name from the validator namespace:
// "RegisterRequest.email" becomes "email".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok && rest != "" {
		return rest
	}
	return fe.Field()
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "email":
		return "must be a valid email address"
	case "min", "gte":
		return "must be at least " + param
	case "max", "lte":
		return "must be at most " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
