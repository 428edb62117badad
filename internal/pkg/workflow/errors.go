package workflow

import (
	"net/http"

	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/exception"
)

// entry points the client is sent back to when a step lacks prior-step data
const (
	RedirectSearch     = "/koalaroute"
	RedirectPassengers = "/flights/passengers"
)

var ErrInvalidSearch = exception.ApplicationError{
	StatusCode: http.StatusBadRequest,
	Kind:       exception.KindValidation,
	Message:    "invalid search request",
}

var ErrSameOriginDestination = exception.ApplicationError{
	StatusCode: http.StatusBadRequest,
	Kind:       exception.KindValidation,
	Message:    "origin and destination must be different",
}

var ErrReturnBeforeDeparture = exception.ApplicationError{
	StatusCode: http.StatusBadRequest,
	Kind:       exception.KindValidation,
	Message:    "returnDate must not be before departureDate",
}

var ErrSearchFailed = exception.ApplicationError{
	StatusCode: http.StatusBadGateway,
	Kind:       exception.KindBusiness,
	Message:    "flight search failed",
}

var ErrSearchTimedOut = exception.ApplicationError{
	StatusCode: http.StatusGatewayTimeout,
	Kind:       exception.KindTransport,
	Message:    "search is taking longer than expected, please try again",
}

var ErrSearchCancelled = exception.ApplicationError{
	StatusCode: http.StatusConflict,
	Kind:       exception.KindStale,
	Message:    "search was cancelled",
	Redirect:   RedirectSearch,
}

var ErrNoConfirmedOffer = exception.ApplicationError{
	StatusCode: http.StatusConflict,
	Kind:       exception.KindStale,
	Message:    "no confirmed flight offer, please search again",
	Redirect:   RedirectSearch,
}

var ErrOfferNotFound = exception.ApplicationError{
	StatusCode: http.StatusConflict,
	Kind:       exception.KindStale,
	Message:    "selected flight is no longer in the search results",
	Redirect:   RedirectSearch,
}

var ErrNoTraveler = exception.ApplicationError{
	StatusCode: http.StatusConflict,
	Kind:       exception.KindStale,
	Message:    "passenger details are missing",
	Redirect:   RedirectPassengers,
}

var ErrInvalidTraveler = exception.ApplicationError{
	StatusCode: http.StatusBadRequest,
	Kind:       exception.KindValidation,
	Message:    "invalid passenger details",
}

var ErrSeatSelectionUnavailable = exception.ApplicationError{
	StatusCode: http.StatusConflict,
	Kind:       exception.KindDegraded,
	Message:    "seat selection is not available for this flight",
}

var ErrSeatNotFound = exception.ApplicationError{
	StatusCode: http.StatusBadRequest,
	Kind:       exception.KindValidation,
	Message:    "seat does not exist on this flight",
}

var ErrSeatUnavailable = exception.ApplicationError{
	StatusCode: http.StatusUnprocessableEntity,
	Kind:       exception.KindBusiness,
	Message:    "seat is not available",
}

var ErrAlreadyBooked = exception.ApplicationError{
	StatusCode: http.StatusConflict,
	Kind:       exception.KindBusiness,
	Message:    "this flight has already been booked",
}
