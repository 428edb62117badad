package bookingapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/utils"
)

// segmentTimeLayout is the local, zone-less timestamp format used by the booking API.
const segmentTimeLayout = "2006-01-02T15:04:05"

// Search status values reported by the booking API.
const (
	StatusPending  = "pending"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

type SearchRequest struct {
	Origin        string `json:"origin" validate:"required,iata"`
	Destination   string `json:"destination" validate:"required,iata"`
	DepartureDate string `json:"departureDate" validate:"required,datetime=2006-01-02"`
	ReturnDate    string `json:"returnDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Adults        int    `json:"adults" validate:"min=1,max=9"`
	TravelClass   string `json:"travelClass" validate:"omitempty,oneof=ECONOMY PREMIUM_ECONOMY BUSINESS FIRST"`
	Currency      string `json:"currencyCode,omitempty" validate:"omitempty,len=3,alpha"`
}

type SearchHandle struct {
	SearchID string `json:"search_id"`
	Status   string `json:"status"`
}

type SearchStatus struct {
	Status       string       `json:"status"`
	Offers       []Offer      `json:"offers"`
	Dictionaries Dictionaries `json:"dictionaries"`
	// Message is the server-provided reason when Status is failed.
	Message string `json:"message,omitempty"`
	// Skipped counts offers dropped because they could not be normalized.
	Skipped int `json:"-"`
}

type Dictionaries struct {
	Carriers  map[string]string   `json:"carriers,omitempty"`
	Locations map[string]Location `json:"locations,omitempty"`
}

type Location struct {
	CityCode    string `json:"cityCode"`
	CountryCode string `json:"countryCode"`
}

// Offer is the normalized view of a flight offer. Raw keeps the payload exactly as the
// booking API sent it so it can be priced and booked without losing unknown fields.
type Offer struct {
	ID             string
	Itineraries    []Itinerary
	Price          Price
	Refundable     bool
	SeatsRemaining int
	// Fare is nil when the offer carries no fare details.
	Fare *Fare
	Raw  json.RawMessage
}

// Fare is what the first traveler's fare includes on the first segment.
type Fare struct {
	Cabin string
	// CheckedBags is nil when the fare does not state a checked allowance.
	CheckedBags *Baggage
	Amenities   []Amenity
}

type Baggage struct {
	Quantity   int
	Weight     int
	WeightUnit string
}

type Amenity struct {
	Description string
	Chargeable  bool
}

type Itinerary struct {
	Duration        string
	DurationMinutes int
	Segments        []Segment
}

type Segment struct {
	Departure       Endpoint
	Arrival         Endpoint
	CarrierCode     string
	Number          string
	Duration        string
	DurationMinutes int
	NumberOfStops   int
}

type Endpoint struct {
	IATACode string
	Terminal string
	At       time.Time
	// AtText is the timestamp as received, kept for display.
	AtText string
}

type Price struct {
	Total    string
	Amount   float64
	Currency string
}

type wireOffer struct {
	ID                    string          `json:"id"`
	NumberOfBookableSeats int             `json:"numberOfBookableSeats"`
	Itineraries           []wireItinerary `json:"itineraries"`
	Price                 struct {
		Currency   string `json:"currency"`
		Total      string `json:"total"`
		GrandTotal string `json:"grandTotal"`
	} `json:"price"`
	PricingOptions struct {
		RefundableFare bool `json:"refundableFare"`
	} `json:"pricingOptions"`
	TravelerPricings json.RawMessage `json:"travelerPricings,omitempty"`
}

type wireTravelerPricing struct {
	FareDetailsBySegment []wireFareDetails `json:"fareDetailsBySegment"`
}

type wireFareDetails struct {
	Cabin               string       `json:"cabin,omitempty"`
	IncludedCheckedBags *wireBaggage  `json:"includedCheckedBags,omitempty"`
	Amenities           []wireAmenity `json:"amenities,omitempty"`
}

type wireAmenity struct {
	Description  string `json:"description"`
	IsChargeable bool   `json:"isChargeable"`
}

type wireBaggage struct {
	Quantity   int    `json:"quantity,omitempty"`
	Weight     int    `json:"weight,omitempty"`
	WeightUnit string `json:"weightUnit,omitempty"`
}

// decodeFare reads the fare of the first traveler and segment. Fare details are
// optional, so a malformed block yields nil instead of failing the offer.
func decodeFare(data json.RawMessage) *Fare {
	if len(data) == 0 {
		return nil
	}

	var pricings []wireTravelerPricing
	if err := json.Unmarshal(data, &pricings); err != nil {
		return nil
	}

	if len(pricings) == 0 || len(pricings[0].FareDetailsBySegment) == 0 {
		return nil
	}

	details := pricings[0].FareDetailsBySegment[0]
	fare := &Fare{Cabin: details.Cabin}

	if bags := details.IncludedCheckedBags; bags != nil {
		fare.CheckedBags = &Baggage{Quantity: bags.Quantity, Weight: bags.Weight, WeightUnit: bags.WeightUnit}
	}

	for _, a := range details.Amenities {
		fare.Amenities = append(fare.Amenities, Amenity{Description: a.Description, Chargeable: a.IsChargeable})
	}

	return fare
}

func encodeFare(f *Fare) json.RawMessage {
	if f == nil {
		return nil
	}

	details := wireFareDetails{Cabin: f.Cabin}
	if f.CheckedBags != nil {
		details.IncludedCheckedBags = &wireBaggage{
			Quantity:   f.CheckedBags.Quantity,
			Weight:     f.CheckedBags.Weight,
			WeightUnit: f.CheckedBags.WeightUnit,
		}
	}
	for _, a := range f.Amenities {
		details.Amenities = append(details.Amenities, wireAmenity{Description: a.Description, IsChargeable: a.Chargeable})
	}

	//nolint:errchkjson
	data, _ := json.Marshal([]wireTravelerPricing{{FareDetailsBySegment: []wireFareDetails{details}}})

	return data
}

type wireItinerary struct {
	Duration string        `json:"duration"`
	Segments []wireSegment `json:"segments"`
}

type wireSegment struct {
	Departure     wireEndpoint `json:"departure"`
	Arrival       wireEndpoint `json:"arrival"`
	CarrierCode   string       `json:"carrierCode"`
	Number        string       `json:"number"`
	Duration      string       `json:"duration"`
	NumberOfStops int          `json:"numberOfStops"`
}

type wireEndpoint struct {
	IATACode string `json:"iataCode"`
	Terminal string `json:"terminal,omitempty"`
	At       string `json:"at"`
}

func (o *Offer) UnmarshalJSON(data []byte) error {
	var w wireOffer
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode offer: %w", err)
	}

	if w.ID == "" {
		return fmt.Errorf("offer without id")
	}

	total := w.Price.GrandTotal
	if total == "" {
		total = w.Price.Total
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(total), 64)
	if err != nil {
		return fmt.Errorf("offer %s: invalid price total %q", w.ID, total)
	}

	itineraries := make([]Itinerary, 0, len(w.Itineraries))
	for _, wi := range w.Itineraries {
		itinerary := Itinerary{
			Duration: wi.Duration,
			Segments: make([]Segment, 0, len(wi.Segments)),
		}
		if minutes, err := utils.ParseISODuration(wi.Duration); err == nil {
			itinerary.DurationMinutes = int(minutes)
		}

		for _, ws := range wi.Segments {
			segment := Segment{
				Departure:     toEndpoint(ws.Departure),
				Arrival:       toEndpoint(ws.Arrival),
				CarrierCode:   ws.CarrierCode,
				Number:        ws.Number,
				Duration:      ws.Duration,
				NumberOfStops: ws.NumberOfStops,
			}
			if minutes, err := utils.ParseISODuration(ws.Duration); err == nil {
				segment.DurationMinutes = int(minutes)
			}
			itinerary.Segments = append(itinerary.Segments, segment)
		}

		// some responses only carry per-segment durations
		if itinerary.DurationMinutes == 0 {
			for _, s := range itinerary.Segments {
				itinerary.DurationMinutes += s.DurationMinutes
			}
		}

		itineraries = append(itineraries, itinerary)
	}

	*o = Offer{
		ID:          w.ID,
		Itineraries: itineraries,
		Price: Price{
			Total:    total,
			Amount:   amount,
			Currency: w.Price.Currency,
		},
		Refundable:     w.PricingOptions.RefundableFare,
		SeatsRemaining: w.NumberOfBookableSeats,
		Fare:           decodeFare(w.TravelerPricings),
		Raw:            append(json.RawMessage(nil), data...),
	}

	return nil
}

// MarshalJSON emits the original payload. Offers built in code without a raw payload
// are encoded from their normalized fields.
func (o Offer) MarshalJSON() ([]byte, error) {
	if len(o.Raw) > 0 {
		return o.Raw, nil
	}

	var w wireOffer
	w.ID = o.ID
	w.NumberOfBookableSeats = o.SeatsRemaining
	w.Price.Currency = o.Price.Currency
	w.Price.Total = o.Price.Total
	w.Price.GrandTotal = o.Price.Total
	w.PricingOptions.RefundableFare = o.Refundable
	w.TravelerPricings = encodeFare(o.Fare)

	for _, it := range o.Itineraries {
		wi := wireItinerary{Duration: it.Duration}
		for _, s := range it.Segments {
			wi.Segments = append(wi.Segments, wireSegment{
				Departure:     fromEndpoint(s.Departure),
				Arrival:       fromEndpoint(s.Arrival),
				CarrierCode:   s.CarrierCode,
				Number:        s.Number,
				Duration:      s.Duration,
				NumberOfStops: s.NumberOfStops,
			})
		}
		w.Itineraries = append(w.Itineraries, wi)
	}

	return json.Marshal(w)
}

// Stops counts the connections of the outbound itinerary.
func (o Offer) Stops() int {
	if len(o.Itineraries) == 0 {
		return 0
	}

	stops := len(o.Itineraries[0].Segments) - 1
	for _, s := range o.Itineraries[0].Segments {
		stops += s.NumberOfStops
	}
	if stops < 0 {
		return 0
	}

	return stops
}

// DurationMinutes is the outbound itinerary duration.
func (o Offer) DurationMinutes() int {
	if len(o.Itineraries) == 0 {
		return 0
	}

	return o.Itineraries[0].DurationMinutes
}

// FirstSegment returns the first outbound segment, if any.
func (o Offer) FirstSegment() (Segment, bool) {
	if len(o.Itineraries) == 0 || len(o.Itineraries[0].Segments) == 0 {
		return Segment{}, false
	}

	return o.Itineraries[0].Segments[0], true
}

// LastSegment returns the last outbound segment, if any.
func (o Offer) LastSegment() (Segment, bool) {
	if len(o.Itineraries) == 0 || len(o.Itineraries[0].Segments) == 0 {
		return Segment{}, false
	}

	segments := o.Itineraries[0].Segments
	return segments[len(segments)-1], true
}

func toEndpoint(w wireEndpoint) Endpoint {
	e := Endpoint{IATACode: w.IATACode, Terminal: w.Terminal, AtText: w.At}

	if t, err := time.Parse(segmentTimeLayout, w.At); err == nil {
		e.At = t
	} else if t, err := time.Parse(time.RFC3339, w.At); err == nil {
		e.At = t
	}

	return e
}

func fromEndpoint(e Endpoint) wireEndpoint {
	at := e.AtText
	if at == "" && !e.At.IsZero() {
		at = e.At.Format(segmentTimeLayout)
	}

	return wireEndpoint{IATACode: e.IATACode, Terminal: e.Terminal, At: at}
}

type TravelerName struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

type Contact struct {
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required,numeric,min=4,max=15"`
	CountryCode string `json:"countryCode" validate:"required,len=2,alpha"`
}

type Passport struct {
	Number         string `json:"number" validate:"required,alphanum,max=20"`
	Expiry         string `json:"expiry" validate:"required,datetime=2006-01-02"`
	IssuingCountry string `json:"issuingCountry" validate:"required,len=2,alpha"`
}

type TravelerInfo struct {
	ID          string       `json:"id" validate:"required"`
	Name        TravelerName `json:"name"`
	DateOfBirth string       `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Gender      string       `json:"gender" validate:"required,oneof=MALE FEMALE"`
	Contact     Contact      `json:"contact"`
	Passport    Passport     `json:"passport"`
}

type SegmentSeatMap struct {
	SegmentID string     `json:"segmentId"`
	Departure string     `json:"departure"`
	Arrival   string     `json:"arrival"`
	Decks     []SeatDeck `json:"decks"`
}

type SeatDeck struct {
	DeckType string    `json:"deckType"`
	Rows     []SeatRow `json:"rows"`
}

type SeatRow struct {
	Number string `json:"number"`
	Seats  []Seat `json:"seats"`
}

type Seat struct {
	Number     string   `json:"number"`
	Cabin      string   `json:"cabin"`
	Available  bool     `json:"available"`
	PriceDelta *Price   `json:"priceDelta,omitempty"`
	Features   []string `json:"features,omitempty"`
}

// Seat looks up a seat by number across every segment, deck and row.
func (m SeatMap) Seat(number string) (Seat, bool) {
	for _, segment := range m {
		for _, deck := range segment.Decks {
			for _, row := range deck.Rows {
				for _, seat := range row.Seats {
					if strings.EqualFold(seat.Number, number) {
						return seat, true
					}
				}
			}
		}
	}

	return Seat{}, false
}

// SeatMap holds one map per flight segment.
type SeatMap []SegmentSeatMap

type wireSeatMap struct {
	SegmentID string       `json:"segmentId"`
	Departure wireEndpoint `json:"departure"`
	Arrival   wireEndpoint `json:"arrival"`
	Decks     []struct {
		DeckType string `json:"deckType"`
		Rows     []struct {
			Number json.Number `json:"number"`
			Seats  []wireSeat  `json:"seats"`
		} `json:"rows"`
		Seats []wireSeat `json:"seats"`
	} `json:"decks"`
}

type wireSeat struct {
	Number           string   `json:"number"`
	Cabin            string   `json:"cabin"`
	Characteristics  []string `json:"characteristicsCodes"`
	TravelerPricings []struct {
		SeatAvailabilityStatus string `json:"seatAvailabilityStatus"`
		Price                  *struct {
			Currency string `json:"currency"`
			Total    string `json:"total"`
		} `json:"price"`
	} `json:"travelerPricing"`
}

// normalizeSeatMaps converts the per-segment payloads. Decks that list seats without
// rows are grouped by the numeric prefix of the seat number.
func normalizeSeatMaps(raw []wireSeatMap) SeatMap {
	maps := make(SeatMap, 0, len(raw))
	for _, w := range raw {
		m := SegmentSeatMap{
			SegmentID: w.SegmentID,
			Departure: w.Departure.IATACode,
			Arrival:   w.Arrival.IATACode,
		}

		for _, wd := range w.Decks {
			deck := SeatDeck{DeckType: wd.DeckType}
			for _, wr := range wd.Rows {
				row := SeatRow{Number: wr.Number.String()}
				for _, ws := range wr.Seats {
					row.Seats = append(row.Seats, toSeat(ws))
				}
				deck.Rows = append(deck.Rows, row)
			}

			index := map[string]int{}
			for _, ws := range wd.Seats {
				rowNumber := strings.TrimRight(ws.Number, "ABCDEFGHJKLMNPQRSTUVWXYZ")
				i, ok := index[rowNumber]
				if !ok {
					i = len(deck.Rows)
					index[rowNumber] = i
					deck.Rows = append(deck.Rows, SeatRow{Number: rowNumber})
				}
				deck.Rows[i].Seats = append(deck.Rows[i].Seats, toSeat(ws))
			}

			m.Decks = append(m.Decks, deck)
		}

		maps = append(maps, m)
	}

	return maps
}

func toSeat(w wireSeat) Seat {
	seat := Seat{
		Number:   w.Number,
		Cabin:    w.Cabin,
		Features: w.Characteristics,
	}

	if len(w.TravelerPricings) > 0 {
		tp := w.TravelerPricings[0]
		seat.Available = strings.EqualFold(tp.SeatAvailabilityStatus, "AVAILABLE")
		if tp.Price != nil {
			amount, _ := strconv.ParseFloat(tp.Price.Total, 64)
			seat.PriceDelta = &Price{Total: tp.Price.Total, Amount: amount, Currency: tp.Price.Currency}
		}
	}

	return seat
}

type OrderRequest struct {
	FlightOffer  Offer        `json:"flightOffer"`
	TravelerInfo TravelerInfo `json:"travelerInfo"`
	SelectedSeat string       `json:"selectedSeat,omitempty"`
}

type OrderTraveler struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Order is the booking returned by the booking API. Raw is rendered on the
// confirmation view as-is.
type Order struct {
	ID        string          `json:"id"`
	Travelers []OrderTraveler `json:"travelers"`
	Offers    []Offer         `json:"flightOffers"`
	Raw       json.RawMessage `json:"raw,omitempty"`
}

type wireOrderTraveler struct {
	ID   string `json:"id"`
	Name struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"name"`
	Contact struct {
		EmailAddress string `json:"emailAddress"`
		Email        string `json:"email"`
	} `json:"contact"`
}

// decodeOrder requires only the order id. Travelers and offers that do not decode are
// skipped, since the order already exists on the booking API side.
func decodeOrder(ctx context.Context, data json.RawMessage) (Order, error) {
	var w struct {
		ID           string          `json:"id"`
		Travelers    json.RawMessage `json:"travelers"`
		FlightOffers json.RawMessage `json:"flightOffers"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return Order{}, fmt.Errorf("decode order: %w", err)
	}

	order := Order{
		ID:  w.ID,
		Raw: append(json.RawMessage(nil), data...),
	}

	for _, raw := range rawItems(ctx, "travelers", w.Travelers) {
		var t wireOrderTraveler
		if err := json.Unmarshal(raw, &t); err != nil {
			slog.WarnContext(ctx, "skipping malformed order traveler",
				slog.String("order_id", w.ID), slog.String("error", err.Error()))
			continue
		}

		email := t.Contact.EmailAddress
		if email == "" {
			email = t.Contact.Email
		}
		order.Travelers = append(order.Travelers, OrderTraveler{
			ID:        t.ID,
			FirstName: t.Name.FirstName,
			LastName:  t.Name.LastName,
			Email:     email,
		})
	}

	for _, raw := range rawItems(ctx, "flightOffers", w.FlightOffers) {
		var offer Offer
		if err := json.Unmarshal(raw, &offer); err != nil {
			slog.WarnContext(ctx, "skipping malformed order offer",
				slog.String("order_id", w.ID), slog.String("error", err.Error()))
			continue
		}
		order.Offers = append(order.Offers, offer)
	}

	return order, nil
}

// rawItems splits a JSON array into its elements. Anything else yields nothing.
func rawItems(ctx context.Context, field string, data json.RawMessage) []json.RawMessage {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		slog.WarnContext(ctx, "ignoring malformed order field",
			slog.String("field", field), slog.String("error", err.Error()))
		return nil
	}

	return items
}

type Airport struct {
	IATACode    string `json:"iataCode"`
	Name        string `json:"name"`
	CityName    string `json:"cityName"`
	CountryCode string `json:"countryCode"`
}

type wireAirport struct {
	IATACode string `json:"iataCode"`
	Name     string `json:"name"`
	Address  struct {
		CityName    string `json:"cityName"`
		CountryCode string `json:"countryCode"`
	} `json:"address"`
}
