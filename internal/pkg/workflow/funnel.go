package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/bookingapi"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/validation"
)

type Step string

const (
	StepSearch       Step = "search"
	StepDetails      Step = "details"
	StepPassengers   Step = "passengers"
	StepSeatMap      Step = "seatmap"
	StepConfirmation Step = "confirmation"
)

const seatMapUnavailableMessage = "Seat selection is not available for this flight."

// Funnel is the state handed from one booking step to the next. Steps never modify
// the value they receive; they return an updated copy.
type Funnel struct {
	SessionID string `json:"session_id"`
	// Owner is the subject of the user the session belongs to.
	Owner string `json:"owner,omitempty"`
	Step  Step   `json:"step"`
	// SelectedOffer is the search-time offer the user picked.
	SelectedOffer *bookingapi.Offer `json:"selected_offer,omitempty"`
	// PricedOffer replaces SelectedOffer for every step after confirmation.
	PricedOffer        *bookingapi.Offer        `json:"priced_offer,omitempty"`
	Traveler           *bookingapi.TravelerInfo `json:"traveler,omitempty"`
	SeatMap            bookingapi.SeatMap       `json:"seat_map,omitempty"`
	SeatMapLoaded      bool                     `json:"seat_map_loaded"`
	SeatMapUnavailable bool                     `json:"seat_map_unavailable"`
	SeatMapMessage     string                   `json:"seat_map_message,omitempty"`
	SelectedSeat       string                   `json:"selected_seat,omitempty"`
	OrderID            string                   `json:"order_id,omitempty"`
}

// NewFunnel starts an empty funnel at the search step.
func NewFunnel(sessionID string) Funnel {
	return Funnel{SessionID: sessionID, Step: StepSearch}
}

type PricingAPI interface {
	PriceOffer(ctx context.Context, offer bookingapi.Offer) (bookingapi.Offer, error)
}

type SeatMapAPI interface {
	SeatMaps(ctx context.Context, offer bookingapi.Offer) (bookingapi.SeatMap, error)
}

type OrderAPI interface {
	CreateOrder(ctx context.Context, req bookingapi.OrderRequest) (bookingapi.Order, error)
}

// FindOffer returns the offer with id from a search result.
func FindOffer(offers []bookingapi.Offer, id string) (bookingapi.Offer, error) {
	for _, o := range offers {
		if o.ID == id {
			return o, nil
		}
	}

	return bookingapi.Offer{}, ErrOfferNotFound
}

// ConfirmOffer re-prices offer. On success the priced offer becomes the working offer and
// the funnel moves to passenger capture. On failure the funnel is returned unchanged.
func ConfirmOffer(ctx context.Context, api PricingAPI, f Funnel, offer bookingapi.Offer) (Funnel, error) {
	if f.OrderID != "" {
		return f, ErrAlreadyBooked
	}

	priced, err := api.PriceOffer(ctx, offer)
	if err != nil {
		slog.WarnContext(ctx, "offer re-pricing failed",
			slog.String("offer_id", offer.ID), slog.String("error", err.Error()))
		return f, err
	}

	if priced.Price.Amount != offer.Price.Amount || priced.Price.Currency != offer.Price.Currency {
		slog.InfoContext(ctx, "offer price changed on confirmation",
			slog.String("offer_id", offer.ID),
			slog.String("search_price", offer.Price.Total),
			slog.String("priced_price", priced.Price.Total),
			slog.String("currency", priced.Price.Currency))
	}

	next := f
	next.SelectedOffer = &offer
	next.PricedOffer = &priced
	next.Step = StepPassengers
	next.SeatMap = nil
	next.SeatMapLoaded = false
	next.SeatMapUnavailable = false
	next.SeatMapMessage = ""
	next.SelectedSeat = ""

	return next, nil
}

// CaptureTraveler validates the passenger form. It makes no network call.
func CaptureTraveler(f Funnel, traveler bookingapi.TravelerInfo) (Funnel, error) {
	if f.PricedOffer == nil {
		return f, ErrNoConfirmedOffer
	}

	if f.OrderID != "" {
		return f, ErrAlreadyBooked
	}

	traveler = normalizeTraveler(traveler)
	if err := validation.ValidateSingleError(traveler); err != nil {
		return f, ErrInvalidTraveler.WithMessage(err.Error()).WithCause(err)
	}

	next := f
	next.Traveler = &traveler
	next.Step = StepSeatMap

	return next, nil
}

func normalizeTraveler(t bookingapi.TravelerInfo) bookingapi.TravelerInfo {
	if t.ID == "" {
		t.ID = "1"
	}
	t.Name.FirstName = strings.TrimSpace(t.Name.FirstName)
	t.Name.LastName = strings.TrimSpace(t.Name.LastName)
	t.Gender = strings.ToUpper(strings.TrimSpace(t.Gender))
	t.Contact.Email = strings.TrimSpace(t.Contact.Email)
	t.Contact.Phone = strings.TrimSpace(t.Contact.Phone)
	t.Contact.CountryCode = strings.ToUpper(strings.TrimSpace(t.Contact.CountryCode))
	t.Passport.Number = strings.ToUpper(strings.TrimSpace(t.Passport.Number))
	t.Passport.IssuingCountry = strings.ToUpper(strings.TrimSpace(t.Passport.IssuingCountry))

	return t
}

// LoadSeatMap fetches the seat map for the priced offer. Fetch failures do not fail the
// step: the funnel is marked seat-map-unavailable and stays bookable.
func LoadSeatMap(ctx context.Context, api SeatMapAPI, f Funnel) (Funnel, error) {
	if f.PricedOffer == nil {
		return f, ErrNoConfirmedOffer
	}

	if f.Traveler == nil {
		return f, ErrNoTraveler
	}

	if f.SeatMapLoaded {
		return f, nil
	}

	next := f
	next.SeatMapLoaded = true

	seatMap, err := api.SeatMaps(ctx, *f.PricedOffer)
	switch {
	case err == nil && len(seatMap) > 0:
		next.SeatMap = seatMap
		next.SeatMapUnavailable = false
		next.SeatMapMessage = ""
	case errors.Is(err, bookingapi.ErrUnauthorized), errors.Is(err, context.Canceled):
		return f, err
	default:
		if err != nil {
			slog.WarnContext(ctx, "seat map unavailable, continuing without seat selection",
				slog.String("error", err.Error()))
		}
		next.SeatMap = nil
		next.SeatMapUnavailable = true
		next.SeatMapMessage = seatMapUnavailableMessage
		next.SelectedSeat = ""
	}

	return next, nil
}

// SelectSeat picks one seat, replacing any previous choice. An empty seat number clears
// the selection.
func SelectSeat(f Funnel, seatNumber string) (Funnel, error) {
	if f.PricedOffer == nil {
		return f, ErrNoConfirmedOffer
	}

	next := f
	seatNumber = strings.ToUpper(strings.TrimSpace(seatNumber))
	if seatNumber == "" {
		next.SelectedSeat = ""
		return next, nil
	}

	if !f.SeatMapLoaded || f.SeatMapUnavailable {
		return f, ErrSeatSelectionUnavailable
	}

	seat, ok := f.SeatMap.Seat(seatNumber)
	if !ok {
		return f, ErrSeatNotFound
	}

	if !seat.Available {
		return f, ErrSeatUnavailable
	}

	next.SelectedSeat = seat.Number

	return next, nil
}

// SubmitBooking creates the order from the priced offer, the traveler and the optional
// seat. On failure the funnel is returned unchanged so the user can retry.
func SubmitBooking(ctx context.Context, api OrderAPI, f Funnel) (Funnel, bookingapi.Order, error) {
	if f.PricedOffer == nil {
		return f, bookingapi.Order{}, ErrNoConfirmedOffer
	}

	if f.Traveler == nil {
		return f, bookingapi.Order{}, ErrNoTraveler
	}

	if f.OrderID != "" {
		return f, bookingapi.Order{}, ErrAlreadyBooked
	}

	order, err := api.CreateOrder(ctx, bookingapi.OrderRequest{
		FlightOffer:  *f.PricedOffer,
		TravelerInfo: *f.Traveler,
		SelectedSeat: f.SelectedSeat,
	})
	if err != nil {
		slog.WarnContext(ctx, "booking failed", slog.String("error", err.Error()))
		return f, bookingapi.Order{}, err
	}

	next := f
	next.OrderID = order.ID
	next.Step = StepConfirmation

	return next, order, nil
}
