package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/blog-comments-api/internal/models"
	"github.com/go-playground/validator/v10"
)

// BoundsMessage is the user-facing message for any rejected comment payload
var BoundsMessage = fmt.Sprintf(
	"Invalid input: post_slug (1-%d chars), author_name (1-%d chars) and content (1-%d chars) are required",
	models.MaxSlugLength, models.MaxAuthorLength, models.MaxContentLength,
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validator validates comment payloads. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := validator.New()

	// Report JSON field names instead of Go struct field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// ValidateComment checks the raw (untrimmed) field bounds of a create request
func (v *Validator) ValidateComment(req *models.CreateCommentRequest) []ValidationError {
	if req == nil {
		return []ValidationError{{Field: "body", Message: "request body is required"}}
	}

	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []ValidationError{{Field: "body", Message: err.Error()}}
	}

	var errors []ValidationError
	for _, fe := range fieldErrs {
		errors = append(errors, ValidationError{
			Field:   fe.Field(),
			Message: describe(fe),
		})
	}
	return errors
}

// Normalize trims author_name and content in place. Values that collapse to
// empty after trimming are rejected so a stored comment is never blank, and
// NUL characters are rejected because PostgreSQL text cannot store them.
func Normalize(req *models.CreateCommentRequest) []ValidationError {
	req.AuthorName = strings.TrimSpace(req.AuthorName)
	req.Content = strings.TrimSpace(req.Content)

	var errors []ValidationError
	for _, f := range []struct{ name, value string }{
		{"post_slug", req.PostSlug},
		{"author_name", req.AuthorName},
		{"content", req.Content},
	} {
		if strings.ContainsRune(f.value, 0) {
			errors = append(errors, ValidationError{Field: f.name, Message: f.name + " must not contain NUL characters"})
		}
	}
	if strings.TrimSpace(req.PostSlug) == "" {
		errors = append(errors, ValidationError{Field: "post_slug", Message: "post_slug must not be blank"})
	}
	if req.AuthorName == "" {
		errors = append(errors, ValidationError{Field: "author_name", Message: "author_name must not be blank"})
	}
	if req.Content == "" {
		errors = append(errors, ValidationError{Field: "content", Message: "content must not be blank"})
	}
	return errors
}

// ValidateSlug checks a slug supplied as a path parameter
func ValidateSlug(slug string) *ValidationError {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return &ValidationError{Field: "slug", Message: "slug is required"}
	}
	if strings.ContainsRune(slug, 0) {
		return &ValidationError{Field: "slug", Message: "slug must not contain NUL characters"}
	}
	if len([]rune(slug)) > models.MaxSlugLength {
		return &ValidationError{
			Field:   "slug",
			Message: fmt.Sprintf("slug must be at most %d characters", models.MaxSlugLength),
		}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// MaxIdempotencyKeyLength bounds the optional Idempotency-Key header
const MaxIdempotencyKeyLength = 200

// ValidateIdempotencyKey checks the optional client request id. An empty key
// is valid and means the request is not idempotent.
func ValidateIdempotencyKey(key string) *ValidationError {
	if len([]rune(key)) > MaxIdempotencyKeyLength {
		return &ValidationError{
			Field:   "idempotency_key",
			Message: fmt.Sprintf("Idempotency-Key must be at most %d characters", MaxIdempotencyKeyLength),
		}
	}
	return nil
}
