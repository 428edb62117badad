package dto

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/bookingapi"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/exception"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/flight"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/utils"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/workflow"
)

var AllowedSortField = map[string]bool{
	flight.SortByBest:          true,
	flight.SortByPrice:         true,
	flight.SortByDuration:      true,
	flight.SortByStops:         true,
	flight.SortByDepartureTime: true,
	flight.SortByArrivalTime:   true,
}

func badRequest(msg string) exception.ApplicationError {
	return exception.ApplicationError{
		StatusCode: http.StatusBadRequest,
		Kind:       exception.KindValidation,
		Message:    msg,
	}
}

// SessionPath binds the {sessionID} route parameter.
type SessionPath struct {
	SessionID string `json:"-" validate:"required,uuid"`
}

func (s *SessionPath) Bind(r *http.Request) error {
	s.SessionID = chi.URLParam(r, "sessionID")
	return nil
}

type StartSearchRequest struct {
	SessionID     string `json:"session_id,omitempty" validate:"omitempty,uuid"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
	ReturnDate    string `json:"return_date,omitempty"`
	Adults        int    `json:"adults"`
	TravelClass   string `json:"travel_class,omitempty"`
	Currency      string `json:"currency,omitempty"`
}

// SearchRequest normalizes the form input. Validation happens in the search run so a
// rejected search is recorded like any other failed search.
func (s StartSearchRequest) SearchRequest() bookingapi.SearchRequest {
	adults := s.Adults
	if adults == 0 {
		adults = 1
	}

	class := strings.ToUpper(strings.TrimSpace(s.TravelClass))
	if class == "" {
		class = "ECONOMY"
	}

	return bookingapi.SearchRequest{
		Origin:        strings.ToUpper(strings.TrimSpace(s.Origin)),
		Destination:   strings.ToUpper(strings.TrimSpace(s.Destination)),
		DepartureDate: strings.TrimSpace(s.DepartureDate),
		ReturnDate:    strings.TrimSpace(s.ReturnDate),
		Adults:        adults,
		TravelClass:   class,
		Currency:      strings.ToUpper(strings.TrimSpace(s.Currency)),
	}
}

type StartSearchResponse struct {
	SessionID    string         `json:"session_id"`
	State        workflow.State `json:"state"`
	Message      string         `json:"message,omitempty"`
	PollInterval int64          `json:"poll_interval_ms"`
	StatusURL    string         `json:"status_url"`
}

type SearchStatusRequest struct {
	SessionPath
	Sort               string   `json:"-" validate:"omitempty"`
	Order              string   `json:"-" validate:"omitempty,oneof=asc desc"`
	Carrier            *string  `json:"-" validate:"omitempty,len=2,alphanum"`
	MinPrice           *float64 `json:"-" validate:"omitempty,gt=0"`
	MaxPrice           *float64 `json:"-" validate:"omitempty,gt=0"`
	MinStops           *int     `json:"-" validate:"omitempty,gte=0"`
	MaxStops           *int     `json:"-" validate:"omitempty,gte=0"`
	MinDurationMinutes *int     `json:"-" validate:"omitempty,gte=0"`
	MaxDurationMinutes *int     `json:"-" validate:"omitempty,gte=0"`
	DepartureTimeStart *string  `json:"-" validate:"omitempty,datetime=15:04"`
	DepartureTimeEnd   *string  `json:"-" validate:"omitempty,datetime=15:04"`
	ArrivalTimeStart   *string  `json:"-" validate:"omitempty,datetime=15:04"`
	ArrivalTimeEnd     *string  `json:"-" validate:"omitempty,datetime=15:04"`
	RefundableOnly     bool     `json:"-"`
}

func (s *SearchStatusRequest) Bind(r *http.Request) error {
	if err := s.SessionPath.Bind(r); err != nil {
		return err
	}

	q := r.URL.Query()
	s.Sort = strings.ToLower(q.Get("sort"))
	s.Order = strings.ToLower(q.Get("order"))
	s.Carrier = optionalString(q.Get("carrier"), strings.ToUpper)
	s.DepartureTimeStart = optionalString(q.Get("departure_time_start"), nil)
	s.DepartureTimeEnd = optionalString(q.Get("departure_time_end"), nil)
	s.ArrivalTimeStart = optionalString(q.Get("arrival_time_start"), nil)
	s.ArrivalTimeEnd = optionalString(q.Get("arrival_time_end"), nil)

	var err error
	if s.MinPrice, err = optionalFloat(q.Get("min_price"), "min_price"); err != nil {
		return err
	}
	if s.MaxPrice, err = optionalFloat(q.Get("max_price"), "max_price"); err != nil {
		return err
	}
	if s.MinStops, err = optionalInt(q.Get("min_stops"), "min_stops"); err != nil {
		return err
	}
	if s.MaxStops, err = optionalInt(q.Get("max_stops"), "max_stops"); err != nil {
		return err
	}
	if s.MinDurationMinutes, err = optionalInt(q.Get("min_duration_minutes"), "min_duration_minutes"); err != nil {
		return err
	}
	if s.MaxDurationMinutes, err = optionalInt(q.Get("max_duration_minutes"), "max_duration_minutes"); err != nil {
		return err
	}

	if v := q.Get("refundable"); v != "" {
		if s.RefundableOnly, err = strconv.ParseBool(v); err != nil {
			return badRequest("refundable must be a boolean")
		}
	}

	return s.Validate()
}

// Validate checks the rules struct tags cannot express.
func (s *SearchStatusRequest) Validate() error {
	if s.Sort != "" && !AllowedSortField[s.Sort] {
		return badRequest(fmt.Sprintf("Invalid sort field %s", s.Sort))
	}

	if s.MinPrice != nil && s.MaxPrice != nil && *s.MaxPrice <= *s.MinPrice {
		return badRequest("max_price must be greater than min_price")
	}

	if s.MinStops != nil && s.MaxStops != nil && *s.MaxStops < *s.MinStops {
		return badRequest("max_stops must not be less than min_stops")
	}

	if s.MinDurationMinutes != nil && s.MaxDurationMinutes != nil &&
		*s.MaxDurationMinutes <= *s.MinDurationMinutes {
		return badRequest("max_duration_minutes must be greater than min_duration_minutes")
	}

	if (s.DepartureTimeStart == nil) != (s.DepartureTimeEnd == nil) {
		return badRequest("departure_time_start and departure_time_end must be set together")
	}

	if (s.ArrivalTimeStart == nil) != (s.ArrivalTimeEnd == nil) {
		return badRequest("arrival_time_start and arrival_time_end must be set together")
	}

	return nil
}

// FilterOption returns nil when no filter is set.
func (s *SearchStatusRequest) FilterOption() *flight.FilterOption {
	opt := flight.FilterOption{
		Carrier:            s.Carrier,
		MinPrice:           s.MinPrice,
		MaxPrice:           s.MaxPrice,
		MinStops:           s.MinStops,
		MaxStops:           s.MaxStops,
		MinDurationMinutes: s.MinDurationMinutes,
		MaxDurationMinutes: s.MaxDurationMinutes,
		DepartureTimeStart: s.DepartureTimeStart,
		DepartureTimeEnd:   s.DepartureTimeEnd,
		ArrivalTimeStart:   s.ArrivalTimeStart,
		ArrivalTimeEnd:     s.ArrivalTimeEnd,
		RefundableOnly:     s.RefundableOnly,
	}

	if opt == (flight.FilterOption{}) {
		return nil
	}

	return &opt
}

func (s *SearchStatusRequest) SortOption() *flight.SortOption {
	if s.Sort == "" && s.Order == "" {
		return nil
	}

	return &flight.SortOption{Field: s.Sort, Order: s.Order}
}

type SearchStatusResponse struct {
	SessionID   string            `json:"session_id"`
	State       workflow.State    `json:"state"`
	Done        bool              `json:"done"`
	SearchID    string            `json:"search_id,omitempty"`
	Attempt     int               `json:"attempt"`
	MaxAttempts int               `json:"max_attempts"`
	Message     string            `json:"message,omitempty"`
	Kind        string            `json:"kind,omitempty"`
	Redirect    string            `json:"redirect,omitempty"`
	TotalOffers int               `json:"total_offers"`
	Offers      []OfferView       `json:"offers"`
	Carriers    map[string]string `json:"carriers,omitempty"`
}

type PriceView struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Total     string  `json:"total"`
	Formatted string  `json:"formatted"`
}

func NewPriceView(p bookingapi.Price) PriceView {
	return PriceView{
		Amount:    p.Amount,
		Currency:  p.Currency,
		Total:     p.Total,
		Formatted: utils.FormatMoney(p.Amount, p.Currency),
	}
}

type SegmentView struct {
	Carrier      string `json:"carrier"`
	CarrierName  string `json:"carrier_name,omitempty"`
	FlightNumber string `json:"flight_number"`
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	DepartureAt  string `json:"departure_at"`
	ArrivalAt    string `json:"arrival_at"`
	Duration     string `json:"duration,omitempty"`
}

type ItineraryView struct {
	Duration        string        `json:"duration"`
	DurationMinutes int           `json:"duration_minutes"`
	Stops           int           `json:"stops"`
	Segments        []SegmentView `json:"segments"`
}

type OfferView struct {
	ID             string          `json:"id"`
	Carrier        string          `json:"carrier"`
	CarrierName    string          `json:"carrier_name,omitempty"`
	Origin         string          `json:"origin"`
	Destination    string          `json:"destination"`
	DepartureAt    string          `json:"departure_at"`
	ArrivalAt      string          `json:"arrival_at"`
	Duration       string          `json:"duration"`
	Stops          int             `json:"stops"`
	Price          PriceView       `json:"price"`
	Refundable     bool            `json:"refundable"`
	SeatsRemaining int             `json:"seats_remaining"`
	Score          *float64        `json:"score,omitempty"`
	Fare           *FareView       `json:"fare,omitempty"`
	Itineraries    []ItineraryView `json:"itineraries"`
}

type FareView struct {
	Cabin string `json:"cabin,omitempty"`
	// CheckedBags is omitted when the fare does not state an allowance.
	CheckedBags      *int          `json:"checked_bags,omitempty"`
	CheckedBagWeight string        `json:"checked_bag_weight,omitempty"`
	Amenities        []AmenityView `json:"amenities"`
}

type AmenityView struct {
	Description string `json:"description"`
	Chargeable  bool   `json:"chargeable"`
}

// NewFareView describes the fare for display. A checked allowance stated only by
// weight counts as one bag.
func NewFareView(f bookingapi.Fare) FareView {
	view := FareView{
		Cabin:     f.Cabin,
		Amenities: make([]AmenityView, 0, len(f.Amenities)),
	}

	if bags := f.CheckedBags; bags != nil {
		quantity := bags.Quantity
		if quantity == 0 {
			quantity = 1
		}
		view.CheckedBags = &quantity

		if bags.Weight > 0 {
			view.CheckedBagWeight = fmt.Sprintf("%d%s", bags.Weight, bags.WeightUnit)
		}
	}

	for _, a := range f.Amenities {
		view.Amenities = append(view.Amenities, AmenityView{
			Description: strings.ReplaceAll(a.Description, "_", " "),
			Chargeable:  a.Chargeable,
		})
	}

	return view
}

// NewOfferView flattens an offer for display. Carrier names come from the search
// dictionaries when available.
func NewOfferView(o bookingapi.Offer, carriers map[string]string) OfferView {
	view := OfferView{
		ID:             o.ID,
		Duration:       utils.ConvertMinutesToDuration(int64(o.DurationMinutes())),
		Stops:          o.Stops(),
		Price:          NewPriceView(o.Price),
		Refundable:     o.Refundable,
		SeatsRemaining: o.SeatsRemaining,
		Itineraries:    make([]ItineraryView, 0, len(o.Itineraries)),
	}

	if o.Fare != nil {
		fare := NewFareView(*o.Fare)
		view.Fare = &fare
	}

	if first, ok := o.FirstSegment(); ok {
		view.Carrier = first.CarrierCode
		view.CarrierName = carriers[first.CarrierCode]
		view.Origin = first.Departure.IATACode
		view.DepartureAt = first.Departure.AtText
	}

	if last, ok := o.LastSegment(); ok {
		view.Destination = last.Arrival.IATACode
		view.ArrivalAt = last.Arrival.AtText
	}

	for _, it := range o.Itineraries {
		iv := ItineraryView{
			Duration:        utils.ConvertMinutesToDuration(int64(it.DurationMinutes)),
			DurationMinutes: it.DurationMinutes,
			Stops:           len(it.Segments) - 1,
			Segments:        make([]SegmentView, 0, len(it.Segments)),
		}
		if iv.Stops < 0 {
			iv.Stops = 0
		}

		for _, s := range it.Segments {
			iv.Segments = append(iv.Segments, SegmentView{
				Carrier:      s.CarrierCode,
				CarrierName:  carriers[s.CarrierCode],
				FlightNumber: s.CarrierCode + s.Number,
				Origin:       s.Departure.IATACode,
				Destination:  s.Arrival.IATACode,
				DepartureAt:  s.Departure.AtText,
				ArrivalAt:    s.Arrival.AtText,
				Duration:     utils.FormatISODuration(s.Duration),
			})
		}

		view.Itineraries = append(view.Itineraries, iv)
	}

	return view
}

func NewRankedOfferView(o flight.RankedOffer, carriers map[string]string) OfferView {
	view := NewOfferView(o.Offer, carriers)
	score := o.Score
	view.Score = &score

	return view
}

type ConfirmOfferRequest struct {
	SessionPath
	OfferID string `json:"offer_id" validate:"required"`
}

type TravelerRequest struct {
	SessionPath
	Traveler bookingapi.TravelerInfo `json:"traveler" validate:"-"`
}

type SelectSeatRequest struct {
	SessionPath
	// SeatNumber may be empty to clear the selection.
	SeatNumber string `json:"seat_number" validate:"omitempty,max=4,alphanum"`
}

type BookingRequest struct {
	SessionPath
}

type FunnelResponse struct {
	SessionID     string                   `json:"session_id"`
	Step          workflow.Step            `json:"step"`
	SelectedOffer *OfferView               `json:"selected_offer,omitempty"`
	PricedOffer   *OfferView               `json:"priced_offer,omitempty"`
	PriceChanged  bool                     `json:"price_changed"`
	Traveler      *bookingapi.TravelerInfo `json:"traveler,omitempty"`
	SelectedSeat  string                   `json:"selected_seat,omitempty"`
	OrderID       string                   `json:"order_id,omitempty"`
}

func NewFunnelResponse(f workflow.Funnel) FunnelResponse {
	resp := FunnelResponse{
		SessionID:    f.SessionID,
		Step:         f.Step,
		Traveler:     f.Traveler,
		SelectedSeat: f.SelectedSeat,
		OrderID:      f.OrderID,
	}

	if f.SelectedOffer != nil {
		v := NewOfferView(*f.SelectedOffer, nil)
		resp.SelectedOffer = &v
	}

	if f.PricedOffer != nil {
		v := NewOfferView(*f.PricedOffer, nil)
		resp.PricedOffer = &v
	}

	if f.SelectedOffer != nil && f.PricedOffer != nil {
		resp.PriceChanged = f.SelectedOffer.Price.Amount != f.PricedOffer.Price.Amount ||
			f.SelectedOffer.Price.Currency != f.PricedOffer.Price.Currency
	}

	return resp
}

type SeatMapResponse struct {
	SessionID    string             `json:"session_id"`
	Available    bool               `json:"available"`
	Message      string             `json:"message,omitempty"`
	SelectedSeat string             `json:"selected_seat,omitempty"`
	SeatMap      bookingapi.SeatMap `json:"seat_map"`
}

func NewSeatMapResponse(f workflow.Funnel) SeatMapResponse {
	seatMap := f.SeatMap
	if seatMap == nil {
		seatMap = bookingapi.SeatMap{}
	}

	return SeatMapResponse{
		SessionID:    f.SessionID,
		Available:    f.SeatMapLoaded && !f.SeatMapUnavailable,
		Message:      f.SeatMapMessage,
		SelectedSeat: f.SelectedSeat,
		SeatMap:      seatMap,
	}
}

type BookingResponse struct {
	SessionID       string `json:"session_id"`
	OrderID         string `json:"order_id"`
	ConfirmationURL string `json:"confirmation_url"`
}

type ConfirmationRequest struct {
	OrderID string `json:"-" validate:"required,max=128"`
}

func (c *ConfirmationRequest) Bind(r *http.Request) error {
	c.OrderID = chi.URLParam(r, "orderID")
	return nil
}

type ConfirmationResponse struct {
	OrderID   string                     `json:"order_id"`
	Travelers []bookingapi.OrderTraveler `json:"travelers"`
	Offers    []OfferView                `json:"flight_offers"`
	Total     *PriceView                 `json:"total,omitempty"`
	Order     json.RawMessage            `json:"order,omitempty"`
}

func NewConfirmationResponse(order bookingapi.Order) ConfirmationResponse {
	resp := ConfirmationResponse{
		OrderID:   order.ID,
		Travelers: order.Travelers,
		Offers:    make([]OfferView, 0, len(order.Offers)),
		Order:     order.Raw,
	}

	if resp.Travelers == nil {
		resp.Travelers = []bookingapi.OrderTraveler{}
	}

	for _, o := range order.Offers {
		resp.Offers = append(resp.Offers, NewOfferView(o, nil))
	}

	if len(order.Offers) > 0 {
		total := NewPriceView(order.Offers[0].Price)
		resp.Total = &total
	}

	return resp
}

type AirportsRequest struct {
	Keyword string `json:"-" validate:"omitempty,max=50"`
}

func (a *AirportsRequest) Bind(r *http.Request) error {
	a.Keyword = strings.TrimSpace(r.URL.Query().Get("keyword"))
	return nil
}

type AirportsResponse struct {
	Airports []bookingapi.Airport `json:"airports"`
}

func optionalString(v string, transform func(string) string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}

	if transform != nil {
		v = transform(v)
	}

	return &v
}

func optionalFloat(v, name string) (*float64, error) {
	if v == "" {
		return nil, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, badRequest(name + " must be a number")
	}

	return &f, nil
}

func optionalInt(v, name string) (*int, error) {
	if v == "" {
		return nil, nil
	}

	i, err := strconv.Atoi(v)
	if err != nil {
		return nil, badRequest(name + " must be an integer")
	}

	return &i, nil
}
