package bookingapi

import (
	"net/http"

	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/exception"
)

var ErrUnauthorized = exception.ApplicationError{
	StatusCode: http.StatusUnauthorized,
	Kind:       exception.KindUnauthorized,
	Message:    "session expired, please log in again",
}

var ErrTransport = exception.ApplicationError{
	StatusCode: http.StatusBadGateway,
	Kind:       exception.KindTransport,
	Message:    "booking service is unreachable, please try again",
}

var ErrNonJSONResponse = exception.ApplicationError{
	StatusCode: http.StatusBadGateway,
	Kind:       exception.KindTransport,
	Message:    "booking service returned an unexpected response",
}

var ErrRateLimitExceeded = exception.ApplicationError{
	StatusCode: http.StatusTooManyRequests,
	Kind:       exception.KindTransport,
	Message:    "booking service rate limit exceeded",
}

var ErrMissingSearchID = exception.ApplicationError{
	StatusCode: http.StatusBadGateway,
	Kind:       exception.KindBusiness,
	Message:    "flight search could not be started",
}

// ErrRequestFailed is the generic fallback for a business error without a usable message.
var ErrRequestFailed = exception.ApplicationError{
	StatusCode: http.StatusBadGateway,
	Kind:       exception.KindBusiness,
	Message:    "booking service request failed",
}
