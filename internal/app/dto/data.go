package dto

import (
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/validation"
)

type ErrorResponse struct {
	Error    string `json:"error"`
	Kind     string `json:"kind,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	// Field is the JSON path of the first invalid field of a rejected request.
	Field string `json:"field,omitempty"`
}

// InitValidator registers the shared validator used by request decoding and the workflow steps.
func InitValidator() error {
	return validation.Init()
}
