//go:build unit

package flight

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/bookingapi"
	"github.com/stretchr/testify/assert"
)

func TestRankOffers_Closure(t *testing.T) {
	rankRequest := func(offers []bookingapi.Offer, wantBestID string) func(t *testing.T) {
		return func(t *testing.T) {
			got := RankOffers(offers)

			bestScore := 999.0
			var gotBestID string
			for _, o := range got {
				if o.Score < bestScore {
					bestScore = o.Score
					gotBestID = o.ID
				}
			}

			if gotBestID != wantBestID {
				t.Fatalf("RankOffers failed: expected best offer ID %s, got %s", wantBestID, gotBestID)
			}
		}
	}

	cheapButSlow := []bookingapi.Offer{
		buildOffer(offerSpec{id: "fast", amount: 1000, minutes: 100}),
		buildOffer(offerSpec{id: "cheap", amount: 200, minutes: 500, segments: 3}),
	}

	t.Run("price_dominates", rankRequest(cheapButSlow, "cheap"))
	t.Run("direct_and_refundable_wins_on_equal_price", rankRequest([]bookingapi.Offer{
		buildOffer(offerSpec{id: "a", amount: 400, minutes: 200, segments: 2}),
		buildOffer(offerSpec{id: "b", amount: 400, minutes: 95, refundable: true}),
	}, "b"))
}

func TestRankOffers_Empty(t *testing.T) {
	assert.Empty(t, RankOffers(nil))
}

func TestRankOffers_KeepsOrder(t *testing.T) {
	got := RankOffers(sampleOffers())
	assert.Equal(t, []string{"1", "2", "3"}, rankedIDs(got))
}

func TestNormalizeValue_Closure(t *testing.T) {
	normalizeRequest := func(val, min, max, want float64) func(t *testing.T) {
		return func(t *testing.T) {
			got := normalizeValue(val, min, max)
			diff := cmp.Diff(want, got)
			if diff != "" {
				t.Fatalf("normalizeValue mismatch (-want +got):\n%s", diff)
			}
		}
	}

	t.Run("mid_value", normalizeRequest(15, 10, 20, 0.5))
	t.Run("min_value", normalizeRequest(10, 10, 20, 0.0))
	t.Run("max_value", normalizeRequest(20, 10, 20, 1.0))
	t.Run("division_by_zero_safety", normalizeRequest(10, 10, 10, 0.0))
}
