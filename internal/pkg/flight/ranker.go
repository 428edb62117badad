package flight

import (
	"math"

	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/bookingapi"
)

// weighted scoring using normalization
// ref: https://www.1000minds.com/decision-making/what-is-mcdm-mcda

// weights for each criteria
const (
	WeightPrice             = 0.6
	WeightDurationInMinutes = 0.2
	WeightStops             = 0.15
	WeightRefundable        = 0.05
)

// RankOffers scores the offers with weighted, normalized criteria.
// 0 indicates the best offer and 1 the worst.
func RankOffers(offers []bookingapi.Offer) []RankedOffer {
	ranked := make([]RankedOffer, len(offers))
	if len(offers) == 0 {
		return ranked
	}

	priceMin, priceMax := findRange(offers, func(o bookingapi.Offer) float64 { return o.Price.Amount })
	durationMin, durationMax := findRange(offers, func(o bookingapi.Offer) float64 { return float64(o.DurationMinutes()) })
	stopsMin, stopsMax := findRange(offers, func(o bookingapi.Offer) float64 { return float64(o.Stops()) })

	for i, offer := range offers {
		priceScore := normalizeValue(offer.Price.Amount, priceMin, priceMax)
		durationScore := normalizeValue(float64(offer.DurationMinutes()), durationMin, durationMax)
		stopsScore := normalizeValue(float64(offer.Stops()), stopsMin, stopsMax)

		refundableScore := 1.0
		if offer.Refundable {
			refundableScore = 0
		}

		ranked[i] = RankedOffer{
			Offer: offer,
			Score: WeightPrice*priceScore +
				WeightDurationInMinutes*durationScore +
				WeightStops*stopsScore +
				WeightRefundable*refundableScore,
		}
	}

	return ranked
}

func findRange(offers []bookingapi.Offer, value func(bookingapi.Offer) float64) (float64, float64) {
	minValue := math.MaxFloat64
	maxValue := -math.MaxFloat64
	for _, offer := range offers {
		v := value(offer)
		if v < minValue {
			minValue = v
		}
		if v > maxValue {
			maxValue = v
		}
	}

	return minValue, maxValue
}

func normalizeValue(value float64, min float64, max float64) float64 {
	if max == min {
		return 0
	}

	return (value - min) / (max - min)
}
