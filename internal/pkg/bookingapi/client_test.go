//go:build unit

package bookingapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-redis/redis_rate/v10"
	"github.com/google/go-cmp/cmp"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/exception"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const offerSYDMEL = `{
	"id": "1",
	"numberOfBookableSeats": 4,
	"itineraries": [{
		"duration": "PT1H35M",
		"segments": [{
			"departure": {"iataCode": "SYD", "at": "2025-03-01T08:00:00"},
			"arrival": {"iataCode": "MEL", "at": "2025-03-01T09:35:00"},
			"carrierCode": "QF",
			"number": "401",
			"duration": "PT1H35M",
			"numberOfStops": 0
		}]
	}],
	"price": {"currency": "AUD", "total": "450.00", "grandTotal": "450.00"},
	"pricingOptions": {"refundableFare": true},
	"validatingAirlineCodes": ["QF"]
}`

type staticAuth struct {
	token        string
	unauthorized atomic.Int32
}

func (a *staticAuth) Token(context.Context) (string, bool) {
	return a.token, a.token != ""
}

func (a *staticAuth) OnUnauthorized(context.Context) {
	a.unauthorized.Add(1)
}

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	ret := m.Called(ctx, key, limit)
	res, _ := ret.Get(0).(*redis_rate.Result)
	return res, ret.Error(1)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, auth Authenticator) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{BaseURL: srv.URL + "/"}, auth)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestClient_InitiateSearch(t *testing.T) {
	initiate := func(handler http.HandlerFunc, want SearchHandle, wantErr error, wantMsg string) func(t *testing.T) {
		return func(t *testing.T) {
			auth := &staticAuth{token: "tok-123"}
			c := newTestClient(t, handler, auth)

			got, err := c.InitiateSearch(context.Background(), SearchRequest{
				Origin: "SYD", Destination: "MEL", DepartureDate: "2025-03-01", Adults: 1, TravelClass: "ECONOMY",
			})

			if wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, wantErr)
				return
			}
			if wantMsg != "" {
				require.Error(t, err)
				var appErr exception.ApplicationError
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, wantMsg, appErr.Message)
				assert.Equal(t, exception.KindBusiness, appErr.Kind)
				return
			}

			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("InitiateSearch mismatch (-want +got):\n%s", diff)
			}
		}
	}

	t.Run("success", initiate(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/flight-search", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var body SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "SYD", body.Origin)

		writeJSON(w, http.StatusOK, `{"search_id":"abc123"}`)
	}, SearchHandle{SearchID: "abc123", Status: StatusPending}, nil, ""))

	t.Run("camel_case_search_id", initiate(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusAccepted, `{"searchId":"xyz","status":"PENDING"}`)
	}, SearchHandle{SearchID: "xyz", Status: StatusPending}, nil, ""))

	t.Run("missing_search_id", initiate(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	}, SearchHandle{}, ErrMissingSearchID, ""))

	t.Run("server_error_message", initiate(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error":"Invalid origin airport"}`)
	}, SearchHandle{}, nil, "Invalid origin airport"))

	t.Run("generic_fallback", initiate(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, SearchHandle{}, nil, "flight search failed"))
}

func TestClient_PollSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/flight-search/abc123", r.URL.Path)
		writeJSON(w, http.StatusOK, `{
			"status": "COMPLETE",
			"data": [`+offerSYDMEL+`, {"id": "2", "price": {"total": "not-a-number"}}],
			"dictionaries": {"carriers": {"QF": "QANTAS"}}
		}`)
	}, nil)

	got, err := c.PollSearch(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, StatusComplete, got.Status)
	assert.Equal(t, 1, got.Skipped)
	require.Len(t, got.Offers, 1)

	offer := got.Offers[0]
	assert.Equal(t, "1", offer.ID)
	assert.Equal(t, 450.0, offer.Price.Amount)
	assert.Equal(t, "AUD", offer.Price.Currency)
	assert.True(t, offer.Refundable)
	assert.Equal(t, 4, offer.SeatsRemaining)
	assert.Equal(t, 95, offer.DurationMinutes())
	assert.Equal(t, 0, offer.Stops())
	assert.Equal(t, "QANTAS", got.Dictionaries.Carriers["QF"])

	// unknown fields survive the round trip
	raw, err := json.Marshal(offer)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "validatingAirlineCodes")
}

func TestClient_PriceOffer(t *testing.T) {
	var offer Offer
	require.NoError(t, json.Unmarshal([]byte(offerSYDMEL), &offer))

	t.Run("returns_priced_offer", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				FlightOffers []json.RawMessage `json:"flightOffers"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Len(t, body.FlightOffers, 1)
			assert.Contains(t, string(body.FlightOffers[0]), `"validatingAirlineCodes"`)

			writeJSON(w, http.StatusOK, `{"data":{"flightOffers":[{"id":"1","price":{"currency":"AUD","total":"460.00"}}]}}`)
		}, nil)

		priced, err := c.PriceOffer(context.Background(), offer)
		require.NoError(t, err)
		assert.Equal(t, 460.0, priced.Price.Amount)
	})

	t.Run("offer_expired", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest,
				`{"error":{"errors":[{"code":4926,"title":"INVALID DATA","detail":"This flight offer has expired"}]}}`)
		}, nil)

		_, err := c.PriceOffer(context.Background(), offer)
		require.Error(t, err)

		var appErr exception.ApplicationError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "This flight offer has expired", appErr.Message)
		assert.Equal(t, http.StatusUnprocessableEntity, appErr.StatusCode)
	})
}

func TestClient_SeatMaps(t *testing.T) {
	var offer Offer
	require.NoError(t, json.Unmarshal([]byte(offerSYDMEL), &offer))

	t.Run("groups_flat_seats_into_rows", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"data":[{
				"segmentId": "1",
				"departure": {"iataCode": "SYD"},
				"arrival": {"iataCode": "MEL"},
				"decks": [{"deckType": "MAIN", "seats": [
					{"number": "12A", "cabin": "ECONOMY", "travelerPricing": [{"seatAvailabilityStatus": "AVAILABLE", "price": {"currency": "AUD", "total": "25.00"}}]},
					{"number": "12B", "cabin": "ECONOMY", "travelerPricing": [{"seatAvailabilityStatus": "OCCUPIED"}]},
					{"number": "13A", "cabin": "ECONOMY", "travelerPricing": [{"seatAvailabilityStatus": "AVAILABLE"}]}
				]}]
			}]}`)
		}, nil)

		got, err := c.SeatMaps(context.Background(), offer)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Len(t, got[0].Decks[0].Rows, 2)
		assert.Equal(t, "12", got[0].Decks[0].Rows[0].Number)

		seat, ok := got.Seat("12a")
		require.True(t, ok)
		assert.True(t, seat.Available)
		assert.Equal(t, 25.0, seat.PriceDelta.Amount)

		seat, ok = got.Seat("12B")
		require.True(t, ok)
		assert.False(t, seat.Available)
	})

	t.Run("non_json_body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = io.WriteString(w, "<html>Not Found</html>")
		}, nil)

		_, err := c.SeatMaps(context.Background(), offer)
		assert.ErrorIs(t, err, ErrNonJSONResponse)
	})
}

func TestClient_CreateOrder(t *testing.T) {
	var offer Offer
	require.NoError(t, json.Unmarshal([]byte(offerSYDMEL), &offer))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			SelectedSeat string `json:"selectedSeat"`
			TravelerInfo struct {
				ID string `json:"id"`
			} `json:"travelerInfo"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "12A", body.SelectedSeat)
		assert.Equal(t, "1", body.TravelerInfo.ID)

		writeJSON(w, http.StatusCreated, `{"data":{
			"id": "ORD1",
			"travelers": [{"id": "1", "name": {"firstName": "ADA", "lastName": "LOVELACE"}, "contact": {"emailAddress": "ada@example.com"}}],
			"flightOffers": [`+offerSYDMEL+`]
		}}`)
	}, nil)

	order, err := c.CreateOrder(context.Background(), OrderRequest{
		FlightOffer:  offer,
		TravelerInfo: TravelerInfo{ID: "1"},
		SelectedSeat: "12A",
	})
	require.NoError(t, err)

	assert.Equal(t, "ORD1", order.ID)
	require.Len(t, order.Travelers, 1)
	assert.Equal(t, "ada@example.com", order.Travelers[0].Email)
	require.Len(t, order.Offers, 1)
	assert.NotEmpty(t, order.Raw)
}

func TestClient_CreateOrder_LenientEcho(t *testing.T) {
	createOrder := func(data string, wantID string, wantOffers, wantTravelers int, wantErr error) func(t *testing.T) {
		return func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusCreated, `{"data":`+data+`}`)
			}, nil)

			order, err := c.CreateOrder(context.Background(), OrderRequest{TravelerInfo: TravelerInfo{ID: "1"}})
			if wantErr != nil {
				assert.ErrorIs(t, err, wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, wantID, order.ID)
			assert.Len(t, order.Offers, wantOffers)
			assert.Len(t, order.Travelers, wantTravelers)
			assert.JSONEq(t, data, string(order.Raw))
		}
	}

	t.Run("offer without price", createOrder(
		`{"id":"ORD1","flightOffers":[{"id":"1","itineraries":[]}]}`,
		"ORD1", 0, 0, nil,
	))

	t.Run("malformed offers are skipped", createOrder(
		`{"id":"ORD1","flightOffers":[{"id":"1","itineraries":[]},`+offerSYDMEL+`]}`,
		"ORD1", 1, 0, nil,
	))

	t.Run("malformed travelers field", createOrder(
		`{"id":"ORD1","travelers":"ADA LOVELACE","flightOffers":"n/a"}`,
		"ORD1", 0, 0, nil,
	))

	t.Run("one malformed traveler", createOrder(
		`{"id":"ORD1","travelers":[{"id":1},{"id":"2","name":{"firstName":"ADA"}}]}`,
		"ORD1", 0, 1, nil,
	))

	t.Run("order that is not an object", createOrder(`"ORD1"`, "", 0, 0, ErrNonJSONResponse))

	t.Run("order without id", createOrder(`{"flightOffers":[]}`, "", 0, 0, ErrRequestFailed))
}

func TestClient_Unauthorized(t *testing.T) {
	auth := &staticAuth{token: "expired"}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"error":"token expired"}`)
	}, auth)

	_, err := c.PollSearch(context.Background(), "abc123")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), auth.unauthorized.Load())
}

func TestClient_RateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, `{"search_id":"abc123"}`)
	}))
	t.Cleanup(srv.Close)

	limiter := &mockLimiter{}
	limiter.On("Allow", mock.Anything, "limit:bookingapi:initiate_search", redis_rate.PerSecond(5)).
		Return(&redis_rate.Result{Allowed: 0}, nil)

	c := NewClient(Config{BaseURL: srv.URL, RateLimitRPS: 5, Limiter: limiter}, nil)

	_, err := c.InitiateSearch(context.Background(), SearchRequest{Origin: "SYD", Destination: "MEL"})
	assert.ErrorIs(t, err, ErrRateLimitExceeded)
	assert.Equal(t, int32(0), calls.Load())
	limiter.AssertExpectations(t)
}

func TestClient_SearchAirports_Retry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			// drop the connection to produce a transport error
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			_ = conn.Close()
			return
		}

		assert.Equal(t, "syd", r.URL.Query().Get("keyword"))
		writeJSON(w, http.StatusOK, `{"data":[{"iataCode":"SYD","name":"KINGSFORD SMITH","address":{"cityName":"SYDNEY","countryCode":"AU"}}]}`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL, MaxRetries: 1}, nil)

	got, err := c.SearchAirports(context.Background(), "syd")
	require.NoError(t, err)

	want := []Airport{{IATACode: "SYD", Name: "KINGSFORD SMITH", CityName: "SYDNEY", CountryCode: "AU"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("SearchAirports mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestErrorMessage(t *testing.T) {
	extract := func(body, want string) func(t *testing.T) {
		return func(t *testing.T) {
			if diff := cmp.Diff(want, ErrorMessage([]byte(body))); diff != "" {
				t.Fatalf("ErrorMessage mismatch (-want +got):\n%s", diff)
			}
		}
	}

	t.Run("nested_errors_detail", extract(`{"error":{"errors":[{"detail":"No fare applicable"}]}}`, "No fare applicable"))
	t.Run("top_level_errors", extract(`{"errors":[{"title":"SYSTEM ERROR"}]}`, "SYSTEM ERROR"))
	t.Run("error_string", extract(`{"error":"Invalid search"}`, "Invalid search"))
	t.Run("message", extract(`{"message":"Try later"}`, "Try later"))
	t.Run("details", extract(`{"details":"Bad passengers"}`, "Bad passengers"))
	t.Run("nothing_useful", extract(`{"foo":"bar"}`, ""))
	t.Run("not_json", extract(`<html>`, ""))
}

func TestOffer_Fare(t *testing.T) {
	decode := func(travelerPricings string, want *Fare) func(t *testing.T) {
		return func(t *testing.T) {
			data := strings.Replace(offerSYDMEL, `"validatingAirlineCodes"`, travelerPricings+`"validatingAirlineCodes"`, 1)

			var offer Offer
			require.NoError(t, json.Unmarshal([]byte(data), &offer))
			if diff := cmp.Diff(want, offer.Fare); diff != "" {
				t.Fatalf("Fare mismatch (-want +got):\n%s", diff)
			}
		}
	}

	t.Run("bags and amenities", decode(`"travelerPricings": [{"fareDetailsBySegment": [{
		"cabin": "ECONOMY",
		"includedCheckedBags": {"quantity": 1},
		"amenities": [
			{"description": "PRE_RESERVED_SEAT", "isChargeable": true},
			{"description": "SNACK", "isChargeable": false}
		]
	}]}],`, &Fare{
		Cabin:       "ECONOMY",
		CheckedBags: &Baggage{Quantity: 1},
		Amenities: []Amenity{
			{Description: "PRE_RESERVED_SEAT", Chargeable: true},
			{Description: "SNACK"},
		},
	}))

	t.Run("weight allowance", decode(`"travelerPricings": [{"fareDetailsBySegment": [{
		"includedCheckedBags": {"weight": 23, "weightUnit": "KG"}
	}]}],`, &Fare{CheckedBags: &Baggage{Weight: 23, WeightUnit: "KG"}}))

	t.Run("no fare details", decode("", nil))

	t.Run("malformed fare keeps the offer", decode(`"travelerPricings": "n/a",`, nil))

	t.Run("fare survives an offer built in code", func(t *testing.T) {
		offer := Offer{
			ID:    "9",
			Price: Price{Total: "100.00", Amount: 100, Currency: "AUD"},
			Fare:  &Fare{Cabin: "BUSINESS", CheckedBags: &Baggage{Quantity: 2}},
		}

		data, err := json.Marshal(offer)
		require.NoError(t, err)

		var got Offer
		require.NoError(t, json.Unmarshal(data, &got))
		if diff := cmp.Diff(offer.Fare, got.Fare); diff != "" {
			t.Fatalf("Fare mismatch (-want +got):\n%s", diff)
		}
	})
}
