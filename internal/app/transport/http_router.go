package transport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/app/config"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/app/dto"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/app/endpoints"
	httptransport "github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/transport/http"
)

// MakeHTTPRouter builds the HTTP router with all the service endpoints.
func MakeHTTPRouter(
	cfg *config.Config,
	endpts endpoints.Endpoints,
) *chi.Mux {
	// Initialize Router
	router := chi.NewRouter()

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	funnel := endpts.FunnelEndpoint
	errorEncoder := kithttp.ServerErrorEncoder(httptransport.ErrorEncoder(cfg.Auth.LoginPath))

	router.Route("/api/v1", func(router chi.Router) {
		router.Use(
			httptransport.RequestID(),
			httptransport.CORSMiddleware(cfg.HTTP.CORSAllowedOrigins),
			httptransport.Recoverer(slog.Default()),
			render.SetContentType(render.ContentTypeJSON),
		)

		router.Get("/airports", httptransport.MakeHandlerFunc(
			funnel.Airports,
			httptransport.DecodeRequest[dto.AirportsRequest],
			httptransport.ResponseWithBody,
			errorEncoder,
		))

		router.Group(func(router chi.Router) {
			router.Use(httptransport.JWTAuth(cfg.Auth.JWTSecret, cfg.Auth.LoginPath))

			router.Route("/funnels", func(router chi.Router) {
				router.Post("/search", httptransport.MakeHandlerFunc(
					funnel.StartSearch,
					httptransport.DecodeRequest[dto.StartSearchRequest],
					httptransport.ResponseWithStatus(http.StatusAccepted),
					errorEncoder,
				))

				router.Route("/{sessionID}", func(router chi.Router) {
					router.Get("/", httptransport.MakeHandlerFunc(
						funnel.Funnel,
						httptransport.DecodeRequest[dto.SessionPath],
						httptransport.ResponseWithBody,
						errorEncoder,
					))
					router.Get("/search", httptransport.MakeHandlerFunc(
						funnel.SearchStatus,
						httptransport.DecodeRequest[dto.SearchStatusRequest],
						httptransport.ResponseWithBody,
						errorEncoder,
					))
					router.Post("/offer", httptransport.MakeHandlerFunc(
						funnel.ConfirmOffer,
						httptransport.DecodeRequest[dto.ConfirmOfferRequest],
						httptransport.ResponseWithBody,
						errorEncoder,
					))
					router.Post("/traveler", httptransport.MakeHandlerFunc(
						funnel.CaptureTraveler,
						httptransport.DecodeRequest[dto.TravelerRequest],
						httptransport.ResponseWithBody,
						errorEncoder,
					))
					router.Get("/seatmap", httptransport.MakeHandlerFunc(
						funnel.SeatMap,
						httptransport.DecodeRequest[dto.SessionPath],
						httptransport.ResponseWithBody,
						errorEncoder,
					))
					router.Put("/seat", httptransport.MakeHandlerFunc(
						funnel.SelectSeat,
						httptransport.DecodeRequest[dto.SelectSeatRequest],
						httptransport.ResponseWithBody,
						errorEncoder,
					))
					router.Post("/booking", httptransport.MakeHandlerFunc(
						funnel.Book,
						httptransport.DecodeRequest[dto.BookingRequest],
						httptransport.ResponseWithStatus(http.StatusCreated),
						errorEncoder,
					))
				})
			})

			router.Get("/bookings/{orderID}", httptransport.MakeHandlerFunc(
				funnel.Confirmation,
				httptransport.DecodeRequest[dto.ConfirmationRequest],
				httptransport.ResponseWithBody,
				errorEncoder,
			))
		})
	})

	return router
}
