package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/bookingapi"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/exception"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/logger"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/validation"
)

const (
	DefaultPollInterval    = 5 * time.Second
	DefaultMaxPollAttempts = 12

	dateLayout = "2006-01-02"
)

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateInitiating State = "initiating"
	StatePolling    State = "polling"
	StateComplete   State = "complete"
	StateEmpty      State = "empty"
	StateTimedOut   State = "timed_out"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	switch s {
	case StateComplete, StateEmpty, StateTimedOut, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}

type SearchAPI interface {
	InitiateSearch(ctx context.Context, req bookingapi.SearchRequest) (bookingapi.SearchHandle, error)
	PollSearch(ctx context.Context, searchID string) (bookingapi.SearchStatus, error)
}

type PollConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

// Progress is reported on every transition and after every pending poll. Offers and
// Dictionaries are set only once the search completes. Kind and Redirect describe why
// a run ended in Failed or TimedOut.
type Progress struct {
	State        State
	SearchID     string
	Attempt      int
	MaxAttempts  int
	Message      string
	Kind         exception.Kind
	Redirect     string
	Offers       []bookingapi.Offer
	Dictionaries bookingapi.Dictionaries
}

// Observer receives progress updates. It is called synchronously from the search run.
type Observer func(ctx context.Context, p Progress)

type Result struct {
	State        State
	SearchID     string
	Attempts     int
	Polls        int
	Offers       []bookingapi.Offer
	Dictionaries bookingapi.Dictionaries
}

type run struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Searcher drives one search at a time to completion or timeout. Starting a new
// search stops the previous one before the new search is initiated.
type Searcher struct {
	api SearchAPI
	cfg PollConfig

	mu      sync.Mutex
	current *run
}

func NewSearcher(api SearchAPI, cfg PollConfig) *Searcher {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxPollAttempts
	}

	return &Searcher{api: api, cfg: cfg}
}

// Config returns the effective polling configuration.
func (s *Searcher) Config() PollConfig {
	return s.cfg
}

// Outcome is the final result of a search started with Start.
type Outcome struct {
	Result Result
	Err    error
}

// Search validates req, initiates the search and polls until a terminal state.
// The returned error is nil for Complete and Empty.
func (s *Searcher) Search(ctx context.Context, req bookingapi.SearchRequest, observe Observer) (Result, error) {
	runCtx, r := s.begin(ctx)
	defer s.end(r)

	m := s.newMachine(observe)
	if err := m.validate(runCtx, req); err != nil {
		return m.result, err
	}

	return m.execute(runCtx, req)
}

// Start stops the previous search, validates req and then runs the search in the
// background. A validation error is returned directly and nothing is started.
// The outcome channel receives exactly one value.
func (s *Searcher) Start(ctx context.Context, req bookingapi.SearchRequest, observe Observer) (<-chan Outcome, error) {
	runCtx, r := s.begin(ctx)

	m := s.newMachine(observe)
	if err := m.validate(runCtx, req); err != nil {
		s.end(r)
		return nil, err
	}

	out := make(chan Outcome, 1)
	go func() {
		defer s.end(r)

		res, err := m.execute(runCtx, req)
		out <- Outcome{Result: res, Err: err}
	}()

	return out, nil
}

func (s *Searcher) newMachine(observe Observer) *machine {
	if observe == nil {
		observe = func(context.Context, Progress) {}
	}

	return &machine{
		api:     s.api,
		cfg:     s.cfg,
		observe: observe,
		result:  Result{State: StateIdle},
	}
}

// Cancel stops the active search, if any, and waits for it to exit.
func (s *Searcher) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopCurrent()
}

func (s *Searcher) begin(ctx context.Context) (context.Context, *run) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopCurrent()

	runCtx, cancel := context.WithCancel(ctx)
	r := &run{cancel: cancel, done: make(chan struct{})}
	s.current = r

	return runCtx, r
}

// stopCurrent must be called with mu held.
func (s *Searcher) stopCurrent() {
	if s.current == nil {
		return
	}

	s.current.cancel()
	<-s.current.done
	s.current = nil
}

func (s *Searcher) end(r *run) {
	r.cancel()
	close(r.done)

	s.mu.Lock()
	if s.current == r {
		s.current = nil
	}
	s.mu.Unlock()
}

type machine struct {
	api     SearchAPI
	cfg     PollConfig
	observe Observer
	result  Result

	// set once the run has failed
	kind     exception.Kind
	redirect string
}

func (m *machine) transition(ctx context.Context, state State, msg string) {
	m.result.State = state
	m.observe(ctx, Progress{
		State:        state,
		SearchID:     m.result.SearchID,
		Attempt:      m.result.Attempts,
		MaxAttempts:  m.cfg.MaxAttempts,
		Message:      msg,
		Kind:         m.kind,
		Redirect:     m.redirect,
		Offers:       m.result.Offers,
		Dictionaries: m.result.Dictionaries,
	})
}

func (m *machine) fail(ctx context.Context, err error) (Result, error) {
	if ctx.Err() != nil {
		m.transition(ctx, StateCancelled, ErrSearchCancelled.Message)
		return m.result, ErrSearchCancelled.WithCause(ctx.Err())
	}

	var appErr exception.ApplicationError
	if !errors.As(err, &appErr) {
		appErr = ErrSearchFailed.WithCause(err)
	}

	slog.WarnContext(ctx, "flight search failed",
		slog.String("state", string(m.result.State)), slog.String("error", err.Error()))

	m.kind, m.redirect = appErr.Kind, appErr.Redirect
	m.transition(ctx, StateFailed, appErr.Message)
	return m.result, err
}

func (m *machine) validate(ctx context.Context, req bookingapi.SearchRequest) error {
	m.transition(ctx, StateValidating, "")
	if err := ValidateSearchRequest(req); err != nil {
		m.kind = exception.KindValidation
		m.transition(ctx, StateFailed, err.Error())
		return err
	}

	return nil
}

func (m *machine) execute(ctx context.Context, req bookingapi.SearchRequest) (Result, error) {
	m.transition(ctx, StateInitiating, "Searching for flights...")
	handle, err := m.api.InitiateSearch(ctx, req)
	if err != nil {
		return m.fail(ctx, err)
	}

	m.result.SearchID = handle.SearchID
	ctx = logger.WithSearchID(ctx, handle.SearchID)

	m.transition(ctx, StatePolling, m.pollingMessage())

	for {
		if err := m.wait(ctx); err != nil {
			return m.fail(ctx, err)
		}

		status, err := m.api.PollSearch(ctx, handle.SearchID)
		m.result.Polls++
		if err != nil {
			return m.fail(ctx, err)
		}

		switch status.Status {
		case bookingapi.StatusComplete:
			m.result.Offers = status.Offers
			m.result.Dictionaries = status.Dictionaries
			if len(status.Offers) == 0 {
				m.transition(ctx, StateEmpty, "No flights found for these dates.")
				return m.result, nil
			}
			m.transition(ctx, StateComplete, fmt.Sprintf("%d flights found", len(status.Offers)))
			return m.result, nil

		case bookingapi.StatusFailed:
			msg := status.Message
			if msg == "" {
				msg = ErrSearchFailed.Message
			}
			return m.fail(ctx, ErrSearchFailed.WithMessage(msg))

		case bookingapi.StatusPending:
		default:
			slog.WarnContext(ctx, "unknown search status, treating as pending", slog.String("status", status.Status))
		}

		m.result.Attempts++
		if m.result.Attempts >= m.cfg.MaxAttempts {
			m.kind = ErrSearchTimedOut.Kind
			m.transition(ctx, StateTimedOut, ErrSearchTimedOut.Message)
			return m.result, ErrSearchTimedOut
		}

		m.transition(ctx, StatePolling, m.pollingMessage())
	}
}

// wait blocks for one poll interval on a timer that is stopped when ctx ends.
func (m *machine) wait(ctx context.Context) error {
	timer := time.NewTimer(m.cfg.Interval)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *machine) pollingMessage() string {
	return fmt.Sprintf("Searching for flights... (Attempt %d/%d)", m.result.Attempts+1, m.cfg.MaxAttempts)
}

// ValidateSearchRequest checks the request before any network call is made.
func ValidateSearchRequest(req bookingapi.SearchRequest) error {
	if err := validation.ValidateSingleError(req); err != nil {
		return ErrInvalidSearch.WithMessage(err.Error()).WithCause(err)
	}

	if req.Origin == req.Destination {
		return ErrSameOriginDestination
	}

	if req.ReturnDate != "" {
		departure, _ := time.Parse(dateLayout, req.DepartureDate)
		ret, _ := time.Parse(dateLayout, req.ReturnDate)
		if ret.Before(departure) {
			return ErrReturnBeforeDeparture
		}
	}

	return nil
}
