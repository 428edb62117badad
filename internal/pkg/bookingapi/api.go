package bookingapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

type initiateSearchResponse struct {
	SearchID    string `json:"search_id"`
	SearchIDAlt string `json:"searchId"`
	Status      string `json:"status"`
}

// InitiateSearch starts an asynchronous flight search and returns its handle.
func (c *Client) InitiateSearch(ctx context.Context, req SearchRequest) (SearchHandle, error) {
	var resp initiateSearchResponse
	err := c.do(ctx, request{
		op:       "initiate_search",
		method:   http.MethodPost,
		path:     "/api/flight-search",
		body:     req,
		fallback: "flight search failed",
	}, &resp)
	if err != nil {
		return SearchHandle{}, err
	}

	searchID := resp.SearchID
	if searchID == "" {
		searchID = resp.SearchIDAlt
	}

	if searchID == "" {
		return SearchHandle{}, ErrMissingSearchID
	}

	status := strings.ToLower(resp.Status)
	if status == "" {
		status = StatusPending
	}

	return SearchHandle{SearchID: searchID, Status: status}, nil
}

type pollSearchResponse struct {
	Status       string            `json:"status"`
	Data         []json.RawMessage `json:"data"`
	Dictionaries Dictionaries      `json:"dictionaries"`
	Error        string            `json:"error"`
}

// PollSearch fetches the current state of a search. Offers that cannot be normalized
// are dropped and counted in Skipped.
func (c *Client) PollSearch(ctx context.Context, searchID string) (SearchStatus, error) {
	var resp pollSearchResponse
	err := c.do(ctx, request{
		op:       "poll_search",
		method:   http.MethodGet,
		path:     "/api/flight-search/" + url.PathEscape(searchID),
		fallback: "failed to fetch search results",
	}, &resp)
	if err != nil {
		return SearchStatus{}, err
	}

	status := SearchStatus{
		Status:       strings.ToLower(resp.Status),
		Offers:       make([]Offer, 0, len(resp.Data)),
		Dictionaries: resp.Dictionaries,
		Message:      resp.Error,
	}

	for _, raw := range resp.Data {
		var offer Offer
		if err := json.Unmarshal(raw, &offer); err != nil {
			slog.WarnContext(ctx, "skipping malformed offer", slog.String("error", err.Error()))
			status.Skipped++
			continue
		}
		status.Offers = append(status.Offers, offer)
	}

	return status, nil
}

type pricingRequest struct {
	FlightOffers []Offer `json:"flightOffers"`
}

type pricingResponse struct {
	Data struct {
		FlightOffers []Offer `json:"flightOffers"`
	} `json:"data"`
}

// PriceOffer confirms the current price and availability of an offer. The returned offer
// replaces the one passed in.
func (c *Client) PriceOffer(ctx context.Context, offer Offer) (Offer, error) {
	var resp pricingResponse
	err := c.do(ctx, request{
		op:       "price_offer",
		method:   http.MethodPost,
		path:     "/api/flight-offers/pricing",
		body:     pricingRequest{FlightOffers: []Offer{offer}},
		fallback: "failed to confirm flight price",
	}, &resp)
	if err != nil {
		return Offer{}, err
	}

	if len(resp.Data.FlightOffers) == 0 {
		return Offer{}, ErrRequestFailed.WithMessage("offer is no longer available")
	}

	return resp.Data.FlightOffers[0], nil
}

type seatMapRequest struct {
	PricedOffer Offer `json:"pricedOffer"`
}

type seatMapResponse struct {
	Data []wireSeatMap `json:"data"`
}

// SeatMaps fetches one seat map per segment of a priced offer.
func (c *Client) SeatMaps(ctx context.Context, offer Offer) (SeatMap, error) {
	var resp seatMapResponse
	err := c.do(ctx, request{
		op:       "seat_maps",
		method:   http.MethodPost,
		path:     "/api/seatmaps",
		body:     seatMapRequest{PricedOffer: offer},
		fallback: "seat selection is not available for this flight",
	}, &resp)
	if err != nil {
		return nil, err
	}

	return normalizeSeatMaps(resp.Data), nil
}

type orderResponse struct {
	Data json.RawMessage `json:"data"`
}

// CreateOrder books the offer for the traveler.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	var resp orderResponse
	err := c.do(ctx, request{
		op:       "create_order",
		method:   http.MethodPost,
		path:     "/api/book",
		body:     req,
		fallback: "booking failed",
	}, &resp)
	if err != nil {
		return Order{}, err
	}

	if len(resp.Data) == 0 {
		return Order{}, ErrRequestFailed.WithMessage("booking failed")
	}

	order, err := decodeOrder(ctx, resp.Data)
	if err != nil {
		return Order{}, ErrNonJSONResponse.WithCause(err)
	}

	if order.ID == "" {
		return Order{}, ErrRequestFailed.WithMessage("booking failed").
			WithCause(fmt.Errorf("order response without id"))
	}

	return order, nil
}

type airportResponse struct {
	Data []wireAirport `json:"data"`
}

// SearchAirports looks up airports by city or airport keyword.
func (c *Client) SearchAirports(ctx context.Context, keyword string) ([]Airport, error) {
	var resp airportResponse
	err := c.doWithRetry(ctx, request{
		op:       "airport_search",
		method:   http.MethodGet,
		path:     "/api/airport-search?keyword=" + url.QueryEscape(keyword),
		fallback: "airport search failed",
	}, &resp)
	if err != nil {
		return nil, err
	}

	airports := make([]Airport, 0, len(resp.Data))
	for _, a := range resp.Data {
		if a.IATACode == "" {
			continue
		}
		airports = append(airports, Airport{
			IATACode:    a.IATACode,
			Name:        a.Name,
			CityName:    a.Address.CityName,
			CountryCode: a.Address.CountryCode,
		})
	}

	return airports, nil
}
