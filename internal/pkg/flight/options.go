package flight

import "github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/bookingapi"

type FilterOption struct {
	Carrier            *string
	MaxPrice           *float64
	MinPrice           *float64
	MaxStops           *int
	MinStops           *int
	MaxDurationMinutes *int
	MinDurationMinutes *int
	DepartureTimeStart *string
	DepartureTimeEnd   *string
	ArrivalTimeStart   *string
	ArrivalTimeEnd     *string
	RefundableOnly     bool
}

type SortOption struct {
	Field string
	Order string
}

// RankedOffer pairs an offer with its weighted score. Lower is better.
type RankedOffer struct {
	bookingapi.Offer
	Score float64
}
