package flight

import (
	"sort"
)

const (
	SortByPrice         = "price"
	SortByDuration      = "duration"
	SortByStops         = "stops"
	SortByDepartureTime = "departure_time"
	SortByArrivalTime   = "arrival_time"
	SortByBest          = "best"
)

// SortOffers sorts in place. Unknown fields fall back to best score. Ties keep the
// booking API order.
func SortOffers(offers []RankedOffer, sortOption *SortOption) []RankedOffer {
	var (
		option = ""
		order  = "asc"
	)
	if sortOption != nil {
		option = sortOption.Field
		if sortOption.Order != "" {
			order = sortOption.Order
		}
	}

	var key func(o RankedOffer) float64
	switch option {
	case SortByPrice:
		key = func(o RankedOffer) float64 { return o.Price.Amount }
	case SortByDuration:
		key = func(o RankedOffer) float64 { return float64(o.DurationMinutes()) }
	case SortByStops:
		key = func(o RankedOffer) float64 { return float64(o.Stops()) }
	case SortByDepartureTime:
		key = func(o RankedOffer) float64 {
			s, _ := o.FirstSegment()
			return float64(s.Departure.At.Unix())
		}
	case SortByArrivalTime:
		key = func(o RankedOffer) float64 {
			s, _ := o.LastSegment()
			return float64(s.Arrival.At.Unix())
		}
	default:
		key = func(o RankedOffer) float64 { return o.Score }
	}

	sort.SliceStable(offers, func(i, j int) bool {
		if order == "desc" {
			return key(offers[i]) > key(offers[j])
		}
		return key(offers[i]) < key(offers[j])
	})

	return offers
}
