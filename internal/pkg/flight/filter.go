package flight

import (
	"context"
	"log/slog"
	"time"

	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/bookingapi"
)

// FilterOffers returns the offers matching every set option. The input slice is not modified.
func FilterOffers(ctx context.Context, offers []bookingapi.Offer, filterOpts *FilterOption) []bookingapi.Offer {
	if filterOpts == nil {
		return offers
	}

	results := make([]bookingapi.Offer, 0, len(offers))

	for _, offer := range offers {
		first, hasFirst := offer.FirstSegment()
		last, hasLast := offer.LastSegment()

		if filterOpts.Carrier != nil && (!hasFirst || *filterOpts.Carrier != first.CarrierCode) {
			continue
		}

		if filterOpts.MaxPrice != nil && offer.Price.Amount > *filterOpts.MaxPrice {
			continue
		}

		if filterOpts.MinPrice != nil && offer.Price.Amount < *filterOpts.MinPrice {
			continue
		}

		if filterOpts.MaxStops != nil && offer.Stops() > *filterOpts.MaxStops {
			continue
		}

		if filterOpts.MinStops != nil && offer.Stops() < *filterOpts.MinStops {
			continue
		}

		if filterOpts.MaxDurationMinutes != nil && offer.DurationMinutes() > *filterOpts.MaxDurationMinutes {
			continue
		}

		if filterOpts.MinDurationMinutes != nil && offer.DurationMinutes() < *filterOpts.MinDurationMinutes {
			continue
		}

		if filterOpts.RefundableOnly && !offer.Refundable {
			continue
		}

		if filterOpts.DepartureTimeStart != nil && filterOpts.DepartureTimeEnd != nil {
			if !hasFirst || !isWithinTimeRange(ctx, first.Departure.At,
				*filterOpts.DepartureTimeStart, *filterOpts.DepartureTimeEnd) {
				continue
			}
		}

		if filterOpts.ArrivalTimeStart != nil && filterOpts.ArrivalTimeEnd != nil {
			if !hasLast || !isWithinTimeRange(ctx, last.Arrival.At,
				*filterOpts.ArrivalTimeStart, *filterOpts.ArrivalTimeEnd) {
				continue
			}
		}

		results = append(results, offer)
	}

	return results
}

// startTime and endTime are clock times (15:04) compared against the local time of the
// airport, which is how the booking API reports segment times.
func isWithinTimeRange(ctx context.Context, target time.Time, startTime string, endTime string) bool {
	if target.IsZero() {
		return false
	}

	start, err := time.Parse("15:04", startTime)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse start time", slog.String("time", startTime), slog.Any("error", err))
		return false
	}

	end, err := time.Parse("15:04", endTime)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse end time", slog.String("time", endTime), slog.Any("error", err))
		return false
	}

	minute := target.Hour()*60 + target.Minute()

	return minute >= start.Hour()*60+start.Minute() &&
		minute <= end.Hour()*60+end.Minute()
}
