//go:build unit

package validation

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type sample struct {
	Origin string `json:"origin" validate:"required,iata"`
	Inner  struct {
		Email string `json:"email" validate:"required,email"`
	} `json:"inner"`
}

func TestValidateSingleError(t *testing.T) {
	validateRequest := func(req sample, want *FieldError) func(t *testing.T) {
		return func(t *testing.T) {
			err := ValidateSingleError(req)
			if want == nil {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}

			var got FieldError
			if !errors.As(err, &got) {
				t.Fatalf("expected FieldError, got %v", err)
			}
			if diff := cmp.Diff(*want, got); diff != "" {
				t.Fatalf("ValidateSingleError mismatch (-want +got):\n%s", diff)
			}
		}
	}

	valid := sample{Origin: "SYD"}
	valid.Inner.Email = "ada@example.com"

	lower := valid
	lower.Origin = "syd"

	badEmail := valid
	badEmail.Inner.Email = "nope"

	t.Run("valid", validateRequest(valid, nil))
	t.Run("missing_origin", validateRequest(sample{}, &FieldError{Field: "origin", Message: "origin is a required field"}))
	t.Run("lower_case_iata", validateRequest(lower, &FieldError{Field: "origin", Message: "origin must be a 3-letter airport code"}))
	t.Run("nested_field_path", validateRequest(badEmail, &FieldError{Field: "inner.email", Message: "email must be a valid email address"}))
}
