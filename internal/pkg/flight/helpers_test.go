//go:build unit

package flight

import (
	"time"

	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/bookingapi"
)

type offerSpec struct {
	id         string
	carrier    string
	amount     float64
	minutes    int
	segments   int
	departure  string
	refundable bool
}

func buildOffer(s offerSpec) bookingapi.Offer {
	departure, _ := time.Parse("2006-01-02T15:04:05", s.departure)
	segmentCount := s.segments
	if segmentCount == 0 {
		segmentCount = 1
	}

	itinerary := bookingapi.Itinerary{DurationMinutes: s.minutes}
	at := departure
	for i := 0; i < segmentCount; i++ {
		leg := time.Duration(s.minutes/segmentCount) * time.Minute
		itinerary.Segments = append(itinerary.Segments, bookingapi.Segment{
			Departure:   bookingapi.Endpoint{IATACode: "SYD", At: at},
			Arrival:     bookingapi.Endpoint{IATACode: "MEL", At: at.Add(leg)},
			CarrierCode: s.carrier,
		})
		at = at.Add(leg)
	}

	return bookingapi.Offer{
		ID:          s.id,
		Itineraries: []bookingapi.Itinerary{itinerary},
		Price:       bookingapi.Price{Amount: s.amount, Currency: "AUD"},
		Refundable:  s.refundable,
	}
}

func sampleOffers() []bookingapi.Offer {
	return []bookingapi.Offer{
		buildOffer(offerSpec{id: "1", carrier: "QF", amount: 450, minutes: 95, departure: "2025-03-01T08:00:00", refundable: true}),
		buildOffer(offerSpec{id: "2", carrier: "VA", amount: 380, minutes: 240, segments: 2, departure: "2025-03-01T13:30:00"}),
		buildOffer(offerSpec{id: "3", carrier: "JQ", amount: 300, minutes: 360, segments: 3, departure: "2025-03-01T21:15:00"}),
	}
}

func offerIDs(offers []bookingapi.Offer) []string {
	ids := make([]string, len(offers))
	for i, o := range offers {
		ids[i] = o.ID
	}
	return ids
}

func rankedIDs(offers []RankedOffer) []string {
	ids := make([]string, len(offers))
	for i, o := range offers {
		ids[i] = o.ID
	}
	return ids
}

func ptr[T any](v T) *T {
	return &v
}
