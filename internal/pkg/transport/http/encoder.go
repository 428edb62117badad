package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/app/dto"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/auth"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/exception"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/validation"
)

// ResponseWithBody is the common method to encode all response types to the client.
func ResponseWithBody(_ context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if err := json.NewEncoder(w).Encode(response); err != nil {
		return fmt.Errorf("encode response body: %w", err)
	}

	return nil
}

// ResponseWithStatus encodes the response body with a status other than 200.
func ResponseWithStatus(status int) kithttp.EncodeResponseFunc {
	return func(_ context.Context, w http.ResponseWriter, response interface{}) error {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)

		if err := json.NewEncoder(w).Encode(response); err != nil {
			return fmt.Errorf("encode response body: %w", err)
		}

		return nil
	}
}

func NoContentResponse(_ context.Context, w http.ResponseWriter, _ interface{}) error {
	w.WriteHeader(http.StatusNoContent)

	return nil
}

// ErrorResponse encodes errors with the default login redirect.
func ErrorResponse(ctx context.Context, err error, respWriter http.ResponseWriter) {
	ErrorEncoder(auth.DefaultLoginPath)(ctx, err, respWriter)
}

// ErrorEncoder encodes the error response to the client. it will check if it's a sentinel
// error or unknown error. Unauthorized errors without a redirect point at loginPath.
func ErrorEncoder(loginPath string) kithttp.ErrorEncoder {
	return func(ctx context.Context, err error, respWriter http.ResponseWriter) {
		var (
			appErr exception.ApplicationError
			body   dto.ErrorResponse
			status int
		)

		switch {
		case errors.As(err, &appErr):
			status = appErr.StatusCode
			if status == 0 {
				status = http.StatusInternalServerError
			}

			body = dto.ErrorResponse{
				Error:    appErr.Message,
				Kind:     string(appErr.Kind),
				Redirect: appErr.Redirect,
			}
			if appErr.Kind == exception.KindUnauthorized && body.Redirect == "" {
				body.Redirect = loginPath
			}

			var fieldErr validation.FieldError
			if errors.As(err, &fieldErr) {
				body.Field = fieldErr.Field
			}

			if status >= http.StatusInternalServerError {
				slog.ErrorContext(ctx, appErr.Message, slog.Any("error", err))
			}
		case errors.Is(err, context.Canceled):
			// client went away
			status = 499
			body = dto.ErrorResponse{Error: "request cancelled"}
		case errors.Is(err, context.DeadlineExceeded):
			status = http.StatusGatewayTimeout
			body = dto.ErrorResponse{Error: "request timed out", Kind: string(exception.KindTransport)}
		default:
			status = http.StatusInternalServerError
			body = dto.ErrorResponse{Error: "internal server error"}

			slog.ErrorContext(ctx, err.Error(), slog.Any("error", err))
		}

		respWriter.Header().Set("Content-Type", "application/json; charset=utf-8")
		respWriter.WriteHeader(status)

		//nolint:errcheck,errchkjson
		json.NewEncoder(respWriter).Encode(body)
	}
}
