//go:build unit

package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/bookingapi"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/exception"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	validation.Init()
}

type pollReply struct {
	status bookingapi.SearchStatus
	err    error
}

// scriptedSearchAPI replays poll replies per search id and records every call in order.
// The last reply for an id is repeated once the script runs out.
type scriptedSearchAPI struct {
	mu          sync.Mutex
	handles     map[string]string
	initiateErr error
	replies     map[string][]pollReply
	calls       []string
	polled      chan string
}

func newScriptedSearchAPI() *scriptedSearchAPI {
	return &scriptedSearchAPI{
		handles: map[string]string{},
		replies: map[string][]pollReply{},
		polled:  make(chan string, 1024),
	}
}

func (s *scriptedSearchAPI) InitiateSearch(_ context.Context, req bookingapi.SearchRequest) (bookingapi.SearchHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	route := req.Origin + "-" + req.Destination
	s.calls = append(s.calls, "initiate:"+route)
	if s.initiateErr != nil {
		return bookingapi.SearchHandle{}, s.initiateErr
	}

	id, ok := s.handles[route]
	if !ok {
		return bookingapi.SearchHandle{}, bookingapi.ErrMissingSearchID
	}

	return bookingapi.SearchHandle{SearchID: id, Status: bookingapi.StatusPending}, nil
}

func (s *scriptedSearchAPI) PollSearch(_ context.Context, searchID string) (bookingapi.SearchStatus, error) {
	s.mu.Lock()
	s.calls = append(s.calls, "poll:"+searchID)

	script := s.replies[searchID]
	var reply pollReply
	switch len(script) {
	case 0:
		reply = pollReply{status: bookingapi.SearchStatus{Status: bookingapi.StatusPending}}
	case 1:
		reply = script[0]
	default:
		reply = script[0]
		s.replies[searchID] = script[1:]
	}
	s.mu.Unlock()

	s.polled <- searchID

	return reply.status, reply.err
}

func (s *scriptedSearchAPI) callLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.calls...)
}

func pending() pollReply {
	return pollReply{status: bookingapi.SearchStatus{Status: bookingapi.StatusPending}}
}

func complete(offers ...bookingapi.Offer) pollReply {
	return pollReply{status: bookingapi.SearchStatus{Status: bookingapi.StatusComplete, Offers: offers}}
}

func sydMel() bookingapi.SearchRequest {
	return bookingapi.SearchRequest{
		Origin:        "SYD",
		Destination:   "MEL",
		DepartureDate: "2025-03-01",
		Adults:        1,
		TravelClass:   "ECONOMY",
	}
}

func testOffer(id string, amount float64) bookingapi.Offer {
	return bookingapi.Offer{
		ID: id,
		Price: bookingapi.Price{
			Total:    fmt.Sprintf("%.2f", amount),
			Amount:   amount,
			Currency: "AUD",
		},
	}
}

func fastPoll(maxAttempts int) PollConfig {
	return PollConfig{Interval: time.Millisecond, MaxAttempts: maxAttempts}
}

func TestValidateSearchRequest(t *testing.T) {
	validate := func(mutate func(r *bookingapi.SearchRequest), wantErr error) func(t *testing.T) {
		return func(t *testing.T) {
			req := sydMel()
			mutate(&req)

			err := ValidateSearchRequest(req)
			if wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, wantErr)
		}
	}

	t.Run("valid one way", validate(func(*bookingapi.SearchRequest) {}, nil))
	t.Run("valid return", validate(func(r *bookingapi.SearchRequest) { r.ReturnDate = "2025-03-05" }, nil))
	t.Run("same day return", validate(func(r *bookingapi.SearchRequest) { r.ReturnDate = "2025-03-01" }, nil))
	t.Run("same origin and destination", validate(func(r *bookingapi.SearchRequest) { r.Destination = "SYD" }, ErrSameOriginDestination))
	t.Run("return before departure", validate(func(r *bookingapi.SearchRequest) { r.ReturnDate = "2025-02-27" }, ErrReturnBeforeDeparture))
	t.Run("missing origin", validate(func(r *bookingapi.SearchRequest) { r.Origin = "" }, ErrInvalidSearch))
	t.Run("bad airport code", validate(func(r *bookingapi.SearchRequest) { r.Origin = "SY1" }, ErrInvalidSearch))
	t.Run("no adults", validate(func(r *bookingapi.SearchRequest) { r.Adults = 0 }, ErrInvalidSearch))
	t.Run("bad date", validate(func(r *bookingapi.SearchRequest) { r.DepartureDate = "01/03/2025" }, ErrInvalidSearch))
	t.Run("bad class", validate(func(r *bookingapi.SearchRequest) { r.TravelClass = "COACH" }, ErrInvalidSearch))
}

func TestSearcher_Search(t *testing.T) {
	t.Run("invalid request makes no network call", func(t *testing.T) {
		api := newScriptedSearchAPI()
		s := NewSearcher(api, fastPoll(12))

		req := sydMel()
		req.Destination = "SYD"

		res, err := s.Search(context.Background(), req, nil)
		require.ErrorIs(t, err, ErrSameOriginDestination)
		assert.Equal(t, StateFailed, res.State)
		assert.Empty(t, api.callLog())
	})

	t.Run("pending polls then complete", func(t *testing.T) {
		const pendingPolls = 3

		api := newScriptedSearchAPI()
		api.handles["SYD-MEL"] = "abc123"
		api.replies["abc123"] = []pollReply{pending(), pending(), pending(), complete(testOffer("1", 450))}
		s := NewSearcher(api, fastPoll(12))

		res, err := s.Search(context.Background(), sydMel(), nil)
		require.NoError(t, err)

		assert.Equal(t, StateComplete, res.State)
		assert.Equal(t, "abc123", res.SearchID)
		assert.Equal(t, pendingPolls, res.Attempts)
		assert.Equal(t, pendingPolls+1, res.Polls)
		assert.Len(t, api.callLog(), pendingPolls+2)
		require.Len(t, res.Offers, 1)
		assert.Equal(t, "1", res.Offers[0].ID)
	})

	t.Run("complete without offers is empty", func(t *testing.T) {
		api := newScriptedSearchAPI()
		api.handles["SYD-MEL"] = "abc123"
		api.replies["abc123"] = []pollReply{complete()}
		s := NewSearcher(api, fastPoll(12))

		res, err := s.Search(context.Background(), sydMel(), nil)
		require.NoError(t, err)
		assert.Equal(t, StateEmpty, res.State)
		assert.Empty(t, res.Offers)
	})

	t.Run("times out after max attempts and stops polling", func(t *testing.T) {
		api := newScriptedSearchAPI()
		api.handles["SYD-MEL"] = "abc123"
		s := NewSearcher(api, fastPoll(4))

		res, err := s.Search(context.Background(), sydMel(), nil)
		require.ErrorIs(t, err, ErrSearchTimedOut)
		assert.Equal(t, StateTimedOut, res.State)
		assert.Equal(t, 4, res.Attempts)
		assert.Equal(t, 4, res.Polls)

		time.Sleep(20 * time.Millisecond)
		assert.Len(t, api.callLog(), 5)
	})

	t.Run("failed status carries server message", func(t *testing.T) {
		api := newScriptedSearchAPI()
		api.handles["SYD-MEL"] = "abc123"
		api.replies["abc123"] = []pollReply{
			pending(),
			{status: bookingapi.SearchStatus{Status: bookingapi.StatusFailed, Message: "supplier unavailable"}},
		}
		s := NewSearcher(api, fastPoll(12))

		res, err := s.Search(context.Background(), sydMel(), nil)
		require.ErrorIs(t, err, ErrSearchFailed)
		assert.Equal(t, StateFailed, res.State)
		assert.Equal(t, "supplier unavailable", err.Error())
		assert.Equal(t, 2, res.Polls)
	})

	t.Run("poll error fails without retrying", func(t *testing.T) {
		api := newScriptedSearchAPI()
		api.handles["SYD-MEL"] = "abc123"
		api.replies["abc123"] = []pollReply{{err: bookingapi.ErrTransport}}
		s := NewSearcher(api, fastPoll(12))

		res, err := s.Search(context.Background(), sydMel(), nil)
		require.ErrorIs(t, err, bookingapi.ErrTransport)
		assert.Equal(t, StateFailed, res.State)
		assert.Equal(t, 1, res.Polls)
		assert.Len(t, api.callLog(), 2)
	})

	t.Run("unauthorized poll reports kind on the final progress", func(t *testing.T) {
		api := newScriptedSearchAPI()
		api.handles["SYD-MEL"] = "abc123"
		unauthorized := bookingapi.ErrUnauthorized
		unauthorized.Redirect = "/login"
		api.replies["abc123"] = []pollReply{{err: unauthorized}}
		s := NewSearcher(api, fastPoll(12))

		var last Progress
		_, err := s.Search(context.Background(), sydMel(), func(_ context.Context, p Progress) {
			last = p
		})
		require.ErrorIs(t, err, bookingapi.ErrUnauthorized)

		assert.Equal(t, StateFailed, last.State)
		assert.Equal(t, exception.KindUnauthorized, last.Kind)
		assert.Equal(t, "/login", last.Redirect)
		assert.Equal(t, bookingapi.ErrUnauthorized.Message, last.Message)
	})

	t.Run("progress has no kind until the run fails", func(t *testing.T) {
		api := newScriptedSearchAPI()
		api.handles["SYD-MEL"] = "abc123"
		api.replies["abc123"] = []pollReply{pending(), complete(testOffer("1", 450))}
		s := NewSearcher(api, fastPoll(12))

		var kinds []exception.Kind
		_, err := s.Search(context.Background(), sydMel(), func(_ context.Context, p Progress) {
			kinds = append(kinds, p.Kind)
		})
		require.NoError(t, err)

		for _, k := range kinds {
			assert.Empty(t, k)
		}
	})

	t.Run("timeout reports a transport kind", func(t *testing.T) {
		api := newScriptedSearchAPI()
		api.handles["SYD-MEL"] = "abc123"
		s := NewSearcher(api, fastPoll(2))

		var last Progress
		_, err := s.Search(context.Background(), sydMel(), func(_ context.Context, p Progress) {
			last = p
		})
		require.ErrorIs(t, err, ErrSearchTimedOut)
		assert.Equal(t, StateTimedOut, last.State)
		assert.Equal(t, exception.KindTransport, last.Kind)
	})

	t.Run("initiate error keeps upstream message", func(t *testing.T) {
		api := newScriptedSearchAPI()
		api.initiateErr = bookingapi.ErrRequestFailed.WithMessage("Invalid origin")
		s := NewSearcher(api, fastPoll(12))

		res, err := s.Search(context.Background(), sydMel(), nil)
		require.Error(t, err)
		assert.Equal(t, "Invalid origin", err.Error())
		assert.Equal(t, StateFailed, res.State)
		assert.Empty(t, res.SearchID)
	})

	t.Run("missing search id fails", func(t *testing.T) {
		api := newScriptedSearchAPI()
		s := NewSearcher(api, fastPoll(12))

		_, err := s.Search(context.Background(), sydMel(), nil)
		require.ErrorIs(t, err, bookingapi.ErrMissingSearchID)
	})

	t.Run("parent context cancellation", func(t *testing.T) {
		api := newScriptedSearchAPI()
		api.handles["SYD-MEL"] = "abc123"
		s := NewSearcher(api, PollConfig{Interval: 5 * time.Millisecond, MaxAttempts: 1000})

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			<-api.polled
			cancel()
		}()

		res, err := s.Search(ctx, sydMel(), nil)
		require.ErrorIs(t, err, ErrSearchCancelled)
		assert.Equal(t, StateCancelled, res.State)

		kind, ok := exception.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, exception.KindStale, kind)
	})

	t.Run("observer sees every transition", func(t *testing.T) {
		api := newScriptedSearchAPI()
		api.handles["SYD-MEL"] = "abc123"
		api.replies["abc123"] = []pollReply{pending(), complete(testOffer("1", 450))}
		s := NewSearcher(api, fastPoll(12))

		var states []State
		var messages []string
		_, err := s.Search(context.Background(), sydMel(), func(_ context.Context, p Progress) {
			states = append(states, p.State)
			if p.State == StatePolling {
				messages = append(messages, p.Message)
			}
		})
		require.NoError(t, err)

		want := []State{StateValidating, StateInitiating, StatePolling, StatePolling, StateComplete}
		if diff := cmp.Diff(want, states); diff != "" {
			t.Errorf("states mismatch (-want +got):\n%s", diff)
		}

		wantMessages := []string{
			"Searching for flights... (Attempt 1/12)",
			"Searching for flights... (Attempt 2/12)",
		}
		if diff := cmp.Diff(wantMessages, messages); diff != "" {
			t.Errorf("messages mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestSearcher_NewSearchCancelsPrevious(t *testing.T) {
	api := newScriptedSearchAPI()
	api.handles["SYD-MEL"] = "old"
	api.handles["SYD-BNE"] = "new"
	api.replies["new"] = []pollReply{complete(testOffer("9", 300))}
	s := NewSearcher(api, PollConfig{Interval: 2 * time.Millisecond, MaxAttempts: 1000})

	type outcome struct {
		res Result
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		res, err := s.Search(context.Background(), sydMel(), nil)
		first <- outcome{res, err}
	}()

	require.Equal(t, "old", <-api.polled)

	second := sydMel()
	second.Destination = "BNE"
	res, err := s.Search(context.Background(), second, nil)
	require.NoError(t, err)
	assert.Equal(t, StateComplete, res.State)
	assert.Equal(t, "new", res.SearchID)

	old := <-first
	assert.ErrorIs(t, old.err, ErrSearchCancelled)
	assert.Equal(t, StateCancelled, old.res.State)

	time.Sleep(20 * time.Millisecond)

	calls := api.callLog()
	started := -1
	for i, c := range calls {
		if c == "initiate:SYD-BNE" {
			started = i
		}
	}
	require.NotEqual(t, -1, started)
	for _, c := range calls[started:] {
		assert.NotEqual(t, "poll:old", c)
	}
}

func TestSearcher_Start(t *testing.T) {
	t.Run("invalid request fails before starting", func(t *testing.T) {
		api := newScriptedSearchAPI()
		s := NewSearcher(api, fastPoll(3))

		req := sydMel()
		req.Destination = "SYD"

		out, err := s.Start(context.Background(), req, nil)

		assert.ErrorIs(t, err, ErrSameOriginDestination)
		assert.Nil(t, out)
		assert.Empty(t, api.callLog())
	})

	t.Run("outcome and offers are delivered", func(t *testing.T) {
		api := newScriptedSearchAPI()
		api.handles["SYD-MEL"] = "abc123"
		api.replies["abc123"] = []pollReply{pending(), complete(testOffer("1", 450))}
		s := NewSearcher(api, fastPoll(3))

		var (
			mu   sync.Mutex
			last Progress
		)
		out, err := s.Start(context.Background(), sydMel(), func(_ context.Context, p Progress) {
			mu.Lock()
			last = p
			mu.Unlock()
		})
		require.NoError(t, err)

		select {
		case o := <-out:
			require.NoError(t, o.Err)
			assert.Equal(t, StateComplete, o.Result.State)
		case <-time.After(time.Second):
			t.Fatal("search did not finish")
		}

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, StateComplete, last.State)
		require.Len(t, last.Offers, 1)
		assert.Equal(t, "1", last.Offers[0].ID)
	})

	t.Run("second start cancels the first", func(t *testing.T) {
		api := newScriptedSearchAPI()
		api.handles["SYD-MEL"] = "old"
		api.handles["SYD-BNE"] = "new"
		api.replies["new"] = []pollReply{complete(testOffer("9", 300))}
		s := NewSearcher(api, PollConfig{Interval: 2 * time.Millisecond, MaxAttempts: 1000})

		first, err := s.Start(context.Background(), sydMel(), nil)
		require.NoError(t, err)
		require.Equal(t, "old", <-api.polled)

		second := sydMel()
		second.Destination = "BNE"
		next, err := s.Start(context.Background(), second, nil)
		require.NoError(t, err)

		old := <-first
		assert.ErrorIs(t, old.Err, ErrSearchCancelled)

		o := <-next
		require.NoError(t, o.Err)
		assert.Equal(t, "new", o.Result.SearchID)
		assert.Equal(t, []string{"initiate:SYD-BNE", "poll:new"},
			api.callLog()[len(api.callLog())-2:])
	})
}

func TestSearcher_Cancel(t *testing.T) {
	api := newScriptedSearchAPI()
	api.handles["SYD-MEL"] = "abc123"
	s := NewSearcher(api, PollConfig{Interval: 2 * time.Millisecond, MaxAttempts: 1000})

	done := make(chan error, 1)
	go func() {
		_, err := s.Search(context.Background(), sydMel(), nil)
		done <- err
	}()

	<-api.polled
	s.Cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, ErrSearchCancelled))
	case <-time.After(time.Second):
		t.Fatal("search did not stop after Cancel")
	}

	polls := len(api.callLog())
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, api.callLog(), polls)

	// cancelling an idle searcher is a no-op
	s.Cancel()
}

func TestNewSearcher_Defaults(t *testing.T) {
	s := NewSearcher(newScriptedSearchAPI(), PollConfig{})

	want := PollConfig{Interval: DefaultPollInterval, MaxAttempts: DefaultMaxPollAttempts}
	if diff := cmp.Diff(want, s.Config()); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}
