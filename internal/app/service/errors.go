package service

import (
	"net/http"

	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/exception"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/workflow"
)

var ErrSessionNotFound = exception.ApplicationError{
	StatusCode: http.StatusConflict,
	Kind:       exception.KindStale,
	Message:    "booking session has expired, please search again",
	Redirect:   workflow.RedirectSearch,
}

var ErrBookingInProgress = exception.ApplicationError{
	StatusCode: http.StatusConflict,
	Kind:       exception.KindBusiness,
	Message:    "booking is already being submitted",
}

var ErrBookingNotFound = exception.ApplicationError{
	StatusCode: http.StatusNotFound,
	Kind:       exception.KindNotFound,
	Message:    "booking not found",
}

var ErrShuttingDown = exception.ApplicationError{
	StatusCode: http.StatusServiceUnavailable,
	Kind:       exception.KindTransport,
	Message:    "service is shutting down, please try again",
}
