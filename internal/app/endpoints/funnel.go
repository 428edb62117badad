package endpoints

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kit/kit/endpoint"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/app/dto"
)

var ErrInvalidType = errors.New("invalid type")

type FunnelService interface {
	StartSearch(ctx context.Context, req dto.StartSearchRequest) (dto.StartSearchResponse, error)
	SearchStatus(ctx context.Context, req dto.SearchStatusRequest) (dto.SearchStatusResponse, error)
	Funnel(ctx context.Context, req dto.SessionPath) (dto.FunnelResponse, error)
	ConfirmOffer(ctx context.Context, req dto.ConfirmOfferRequest) (dto.FunnelResponse, error)
	CaptureTraveler(ctx context.Context, req dto.TravelerRequest) (dto.FunnelResponse, error)
	SeatMap(ctx context.Context, req dto.SessionPath) (dto.SeatMapResponse, error)
	SelectSeat(ctx context.Context, req dto.SelectSeatRequest) (dto.SeatMapResponse, error)
	Book(ctx context.Context, req dto.BookingRequest) (dto.BookingResponse, error)
	Confirmation(ctx context.Context, req dto.ConfirmationRequest) (dto.ConfirmationResponse, error)
	Airports(ctx context.Context, req dto.AirportsRequest) (dto.AirportsResponse, error)
}

type FunnelEndpoint struct {
	StartSearch     endpoint.Endpoint
	SearchStatus    endpoint.Endpoint
	Funnel          endpoint.Endpoint
	ConfirmOffer    endpoint.Endpoint
	CaptureTraveler endpoint.Endpoint
	SeatMap         endpoint.Endpoint
	SelectSeat      endpoint.Endpoint
	Book            endpoint.Endpoint
	Confirmation    endpoint.Endpoint
	Airports        endpoint.Endpoint
}

func MakeFunnelEndpoint(service FunnelService) FunnelEndpoint {
	return FunnelEndpoint{
		StartSearch:     makeEndpoint(service.StartSearch),
		SearchStatus:    makeEndpoint(service.SearchStatus),
		Funnel:          makeEndpoint(service.Funnel),
		ConfirmOffer:    makeEndpoint(service.ConfirmOffer),
		CaptureTraveler: makeEndpoint(service.CaptureTraveler),
		SeatMap:         makeEndpoint(service.SeatMap),
		SelectSeat:      makeEndpoint(service.SelectSeat),
		Book:            makeEndpoint(service.Book),
		Confirmation:    makeEndpoint(service.Confirmation),
		Airports:        makeEndpoint(service.Airports),
	}
}

// makeEndpoint adapts a service method to an endpoint. Requests arrive as the pointer
// the HTTP decoder produced.
func makeEndpoint[Req, Resp any](call func(context.Context, Req) (Resp, error)) endpoint.Endpoint {
	return func(ctx context.Context, req interface{}) (interface{}, error) {
		request, ok := req.(*Req)
		if !ok || request == nil {
			return nil, ErrInvalidType
		}

		resp, err := call(ctx, *request)
		if err != nil {
			return nil, fmt.Errorf("funnel service: %w", err)
		}

		return resp, nil
	}
}
