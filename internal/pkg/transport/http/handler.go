package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-kit/kit/endpoint"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/exception"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/validation"
)

var ErrInvalidRequest = exception.ApplicationError{
	StatusCode: http.StatusBadRequest,
	Kind:       exception.KindValidation,
	Message:    "invalid request",
}

// MakeHandlerFunc adapts a go-kit endpoint to an http.HandlerFunc. Errors are encoded
// by ErrorResponse unless an option overrides the error encoder.
func MakeHandlerFunc(
	ep endpoint.Endpoint,
	dec kithttp.DecodeRequestFunc,
	enc kithttp.EncodeResponseFunc,
	opts ...kithttp.ServerOption,
) http.HandlerFunc {
	options := append([]kithttp.ServerOption{kithttp.ServerErrorEncoder(ErrorResponse)}, opts...)

	return kithttp.NewServer(ep, dec, enc, options...).ServeHTTP
}

// DecodeRequest decodes the JSON body, if any, into a new T. When *T implements
// render.Binder its Bind method then reads path and query parameters. The result is
// validated and returned as *T.
func DecodeRequest[T any](_ context.Context, r *http.Request) (interface{}, error) {
	req := new(T)

	if r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0 {
		if err := render.DecodeJSON(r.Body, req); err != nil && !errors.Is(err, io.EOF) {
			return nil, ErrInvalidRequest.WithMessage("malformed JSON body").WithCause(err)
		}
	}

	if binder, ok := any(req).(render.Binder); ok {
		if err := binder.Bind(r); err != nil {
			return nil, ErrInvalidRequest.WithMessage(err.Error()).WithCause(err)
		}
	}

	if err := validation.ValidateSingleError(req); err != nil {
		return nil, ErrInvalidRequest.WithMessage(err.Error()).WithCause(err)
	}

	return req, nil
}
