package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/app/dto"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/auth"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/bookingapi"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/exception"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/flight"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/logger"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/queue"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/workflow"
)

const (
	minAirportKeywordLength = 2
	searchStartedMessage    = "Searching for flights..."
)

type SessionStore interface {
	LockKey(sessionID string) string
	AcquireLock(ctx context.Context, key string, timeout time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
	SaveFunnel(ctx context.Context, f workflow.Funnel) error
	GetFunnel(ctx context.Context, sessionID string) (workflow.Funnel, error)
	SaveSearch(ctx context.Context, sessionID string, snapshot flight.SearchSnapshot) error
	GetSearch(ctx context.Context, sessionID string) (flight.SearchSnapshot, error)
	SaveOrder(ctx context.Context, booked flight.BookedOrder) error
	GetOrder(ctx context.Context, orderID string) (flight.BookedOrder, error)
}

// BookingAPI is every booking API call the funnel makes.
type BookingAPI interface {
	workflow.SearchAPI
	workflow.PricingAPI
	workflow.SeatMapAPI
	workflow.OrderAPI
	SearchAirports(ctx context.Context, keyword string) ([]bookingapi.Airport, error)
}

type sessionSearch struct {
	searcher *workflow.Searcher
	gen      int
}

type FunnelService struct {
	API                BookingAPI
	Store              SessionStore
	Publisher          queue.Publisher
	Poll               workflow.PollConfig
	BookingLockTimeout time.Duration

	mu       sync.Mutex
	searches map[string]*sessionSearch
	running  sync.WaitGroup
	closed   bool
}

func NewFunnelService(api BookingAPI, store SessionStore, publisher queue.Publisher,
	poll workflow.PollConfig, bookingLockTimeout time.Duration) *FunnelService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}

	return &FunnelService{
		API:                api,
		Store:              store,
		Publisher:          publisher,
		Poll:               poll,
		BookingLockTimeout: bookingLockTimeout,
		searches:           make(map[string]*sessionSearch),
	}
}

// StartSearch validates the search form and starts polling in the background. A search
// started for a session that already has one running stops the running search first.
// Progress is written to the session store and read back with SearchStatus. A session
// id belonging to another user is rejected before anything is cancelled.
func (s *FunnelService) StartSearch(
	ctx context.Context,
	req dto.StartSearchRequest,
) (dto.StartSearchResponse, error) {
	owner := caller(ctx)

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	ctx = logger.WithSessionID(ctx, sessionID)

	if req.SessionID != "" {
		if err := s.claimSession(ctx, sessionID, owner); err != nil {
			return dto.StartSearchResponse{}, err
		}
	}

	entry, gen, err := s.acquireSearcher(sessionID)
	if err != nil {
		return dto.StartSearchResponse{}, err
	}

	searchReq := req.SearchRequest()

	// the run outlives the request but keeps its credentials and request id
	runCtx := context.WithoutCancel(ctx)
	outcome, err := entry.searcher.Start(runCtx, searchReq, s.snapshotWriter(sessionID, owner, searchReq))
	if err != nil {
		s.releaseSearcher(sessionID, entry, gen)
		return dto.StartSearchResponse{}, err
	}

	// a new search starts the funnel over
	f := workflow.NewFunnel(sessionID)
	f.Owner = owner
	if err := s.Store.SaveFunnel(ctx, f); err != nil {
		slog.ErrorContext(ctx, "failed to reset funnel", slog.String("error", err.Error()))
	}

	go func() {
		defer s.releaseSearcher(sessionID, entry, gen)

		o := <-outcome
		attrs := []any{
			slog.String("state", string(o.Result.State)),
			slog.Int("polls", o.Result.Polls),
			slog.Int("offers", len(o.Result.Offers)),
		}
		if o.Err != nil {
			slog.WarnContext(runCtx, "search finished without results",
				append(attrs, slog.String("error", o.Err.Error()))...)
			return
		}

		slog.InfoContext(runCtx, "search finished", attrs...)
	}()

	return dto.StartSearchResponse{
		SessionID:    sessionID,
		State:        workflow.StateInitiating,
		Message:      searchStartedMessage,
		PollInterval: entry.searcher.Config().Interval.Milliseconds(),
		StatusURL:    fmt.Sprintf("/api/v1/funnels/%s/search", sessionID),
	}, nil
}

// SearchStatus returns the latest progress of the session's search. Once the search is
// complete the offers are filtered, ranked and sorted as requested. A search the booking
// API rejected for expired credentials answers with the unauthorized error.
func (s *FunnelService) SearchStatus(
	ctx context.Context,
	req dto.SearchStatusRequest,
) (dto.SearchStatusResponse, error) {
	snapshot, err := s.Store.GetSearch(ctx, req.SessionID)
	if err != nil {
		return dto.SearchStatusResponse{}, sessionError(err)
	}

	if snapshot.Owner != caller(ctx) {
		return dto.SearchStatusResponse{}, ErrSessionNotFound
	}

	if snapshot.ErrorKind == exception.KindUnauthorized {
		unauthorized := bookingapi.ErrUnauthorized
		unauthorized.Redirect = snapshot.Redirect
		return dto.SearchStatusResponse{}, unauthorized
	}

	resp := dto.SearchStatusResponse{
		SessionID:   req.SessionID,
		State:       snapshot.State,
		Done:        snapshot.State.Terminal(),
		SearchID:    snapshot.SearchID,
		Attempt:     snapshot.Attempt,
		MaxAttempts: snapshot.MaxAttempts,
		Message:     snapshot.Message,
		Kind:        string(snapshot.ErrorKind),
		Redirect:    snapshot.Redirect,
		Offers:      []dto.OfferView{},
		Carriers:    snapshot.Dictionaries.Carriers,
	}

	if snapshot.State != workflow.StateComplete {
		return resp, nil
	}

	filtered := flight.FilterOffers(ctx, snapshot.Offers, req.FilterOption())
	ranked := flight.RankOffers(filtered)
	flight.SortOffers(ranked, req.SortOption())

	for _, o := range ranked {
		resp.Offers = append(resp.Offers, dto.NewRankedOfferView(o, snapshot.Dictionaries.Carriers))
	}
	resp.TotalOffers = len(resp.Offers)

	return resp, nil
}

// Funnel returns the session's funnel so a client can restore the current step.
func (s *FunnelService) Funnel(ctx context.Context, req dto.SessionPath) (dto.FunnelResponse, error) {
	f, err := s.loadFunnel(ctx, req.SessionID)
	if err != nil {
		return dto.FunnelResponse{}, err
	}

	return dto.NewFunnelResponse(f), nil
}

// ConfirmOffer re-prices the chosen search result and makes it the working offer.
func (s *FunnelService) ConfirmOffer(
	ctx context.Context,
	req dto.ConfirmOfferRequest,
) (dto.FunnelResponse, error) {
	ctx = logger.WithSessionID(ctx, req.SessionID)

	f, err := s.loadFunnel(ctx, req.SessionID)
	if err != nil {
		return dto.FunnelResponse{}, err
	}

	snapshot, err := s.Store.GetSearch(ctx, req.SessionID)
	if err != nil && !errors.Is(err, flight.ErrCacheMiss) {
		return dto.FunnelResponse{}, fmt.Errorf("failed to get search results: %w", err)
	}
	if snapshot.Owner != f.Owner {
		snapshot = flight.SearchSnapshot{}
	}

	offer, err := workflow.FindOffer(snapshot.Offers, req.OfferID)
	if err != nil {
		return dto.FunnelResponse{}, err
	}

	next, err := workflow.ConfirmOffer(ctx, s.API, f, offer)
	if err != nil {
		return dto.FunnelResponse{}, err
	}

	if err := s.Store.SaveFunnel(ctx, next); err != nil {
		return dto.FunnelResponse{}, fmt.Errorf("failed to save funnel: %w", err)
	}

	return dto.NewFunnelResponse(next), nil
}

func (s *FunnelService) CaptureTraveler(
	ctx context.Context,
	req dto.TravelerRequest,
) (dto.FunnelResponse, error) {
	f, err := s.loadFunnel(ctx, req.SessionID)
	if err != nil {
		return dto.FunnelResponse{}, err
	}

	next, err := workflow.CaptureTraveler(f, req.Traveler)
	if err != nil {
		return dto.FunnelResponse{}, err
	}

	if err := s.Store.SaveFunnel(ctx, next); err != nil {
		return dto.FunnelResponse{}, fmt.Errorf("failed to save funnel: %w", err)
	}

	return dto.NewFunnelResponse(next), nil
}

// SeatMap loads the seat map once per confirmed offer. An unavailable seat map is not
// an error; the response says seat selection is unavailable.
func (s *FunnelService) SeatMap(ctx context.Context, req dto.SessionPath) (dto.SeatMapResponse, error) {
	ctx = logger.WithSessionID(ctx, req.SessionID)

	f, err := s.loadFunnel(ctx, req.SessionID)
	if err != nil {
		return dto.SeatMapResponse{}, err
	}

	next, err := workflow.LoadSeatMap(ctx, s.API, f)
	if err != nil {
		return dto.SeatMapResponse{}, err
	}

	if !f.SeatMapLoaded {
		if err := s.Store.SaveFunnel(ctx, next); err != nil {
			return dto.SeatMapResponse{}, fmt.Errorf("failed to save funnel: %w", err)
		}
	}

	return dto.NewSeatMapResponse(next), nil
}

func (s *FunnelService) SelectSeat(
	ctx context.Context,
	req dto.SelectSeatRequest,
) (dto.SeatMapResponse, error) {
	f, err := s.loadFunnel(ctx, req.SessionID)
	if err != nil {
		return dto.SeatMapResponse{}, err
	}

	next, err := workflow.SelectSeat(f, req.SeatNumber)
	if err != nil {
		return dto.SeatMapResponse{}, err
	}

	if err := s.Store.SaveFunnel(ctx, next); err != nil {
		return dto.SeatMapResponse{}, fmt.Errorf("failed to save funnel: %w", err)
	}

	return dto.NewSeatMapResponse(next), nil
}

// Book creates the order. Only one submission per session runs at a time, so a double
// click cannot book twice.
func (s *FunnelService) Book(ctx context.Context, req dto.BookingRequest) (dto.BookingResponse, error) {
	ctx = logger.WithSessionID(ctx, req.SessionID)

	lockKey := s.Store.LockKey(req.SessionID)
	acquired, err := s.Store.AcquireLock(ctx, lockKey, s.BookingLockTimeout)
	if err != nil {
		return dto.BookingResponse{}, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		return dto.BookingResponse{}, ErrBookingInProgress
	}
	defer func() {
		if err := s.Store.ReleaseLock(context.WithoutCancel(ctx), lockKey); err != nil {
			slog.WarnContext(ctx, "failed to release booking lock", slog.String("error", err.Error()))
		}
	}()

	f, err := s.loadFunnel(ctx, req.SessionID)
	if err != nil {
		return dto.BookingResponse{}, err
	}

	next, order, err := workflow.SubmitBooking(ctx, s.API, f)
	if err != nil {
		return dto.BookingResponse{}, err
	}

	// the order exists remotely from here on, so storage failures are logged only
	saveCtx := context.WithoutCancel(ctx)
	if err := s.Store.SaveFunnel(saveCtx, next); err != nil {
		slog.ErrorContext(ctx, "failed to save booked funnel",
			slog.String("order_id", order.ID), slog.String("error", err.Error()))
	}

	if err := s.Store.SaveOrder(saveCtx, flight.BookedOrder{Owner: next.Owner, Order: order}); err != nil {
		slog.ErrorContext(ctx, "failed to save order",
			slog.String("order_id", order.ID), slog.String("error", err.Error()))
	}

	if err := s.Publisher.PublishBookingConfirmed(saveCtx, bookingEvent(ctx, next, order)); err != nil {
		slog.WarnContext(ctx, "failed to publish booking event",
			slog.String("order_id", order.ID), slog.String("error", err.Error()))
	}

	slog.InfoContext(ctx, "booking confirmed", slog.String("order_id", order.ID))

	return dto.BookingResponse{
		SessionID:       req.SessionID,
		OrderID:         order.ID,
		ConfirmationURL: fmt.Sprintf("/api/v1/bookings/%s", order.ID),
	}, nil
}

// Confirmation returns an order the caller booked through this gateway. Orders of other
// users are reported as not found.
func (s *FunnelService) Confirmation(
	ctx context.Context,
	req dto.ConfirmationRequest,
) (dto.ConfirmationResponse, error) {
	booked, err := s.Store.GetOrder(ctx, req.OrderID)
	if errors.Is(err, flight.ErrCacheMiss) {
		return dto.ConfirmationResponse{}, ErrBookingNotFound
	}
	if err != nil {
		return dto.ConfirmationResponse{}, fmt.Errorf("failed to get order: %w", err)
	}

	if booked.Owner != caller(ctx) {
		return dto.ConfirmationResponse{}, ErrBookingNotFound
	}

	return dto.NewConfirmationResponse(booked.Order), nil
}

// Airports looks up airports for the search form. Keywords shorter than two
// characters return nothing without calling the booking API.
func (s *FunnelService) Airports(ctx context.Context, req dto.AirportsRequest) (dto.AirportsResponse, error) {
	if len([]rune(req.Keyword)) < minAirportKeywordLength {
		return dto.AirportsResponse{Airports: []bookingapi.Airport{}}, nil
	}

	airports, err := s.API.SearchAirports(ctx, req.Keyword)
	if err != nil {
		return dto.AirportsResponse{}, err
	}

	if airports == nil {
		airports = []bookingapi.Airport{}
	}

	return dto.AirportsResponse{Airports: airports}, nil
}

// Shutdown stops every running search and waits for them to exit. No search can be
// started afterwards.
func (s *FunnelService) Shutdown() {
	s.mu.Lock()
	s.closed = true
	searchers := make([]*workflow.Searcher, 0, len(s.searches))
	for _, entry := range s.searches {
		searchers = append(searchers, entry.searcher)
	}
	s.mu.Unlock()

	for _, searcher := range searchers {
		searcher.Cancel()
	}

	s.running.Wait()
}

func (s *FunnelService) acquireSearcher(sessionID string) (*sessionSearch, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, 0, ErrShuttingDown
	}

	entry, ok := s.searches[sessionID]
	if !ok {
		entry = &sessionSearch{searcher: workflow.NewSearcher(s.API, s.Poll)}
		s.searches[sessionID] = entry
	}
	entry.gen++
	s.running.Add(1)

	return entry, entry.gen, nil
}

// releaseSearcher forgets the session's searcher unless a newer search took it over.
func (s *FunnelService) releaseSearcher(sessionID string, entry *sessionSearch, gen int) {
	s.mu.Lock()
	if entry.gen == gen && s.searches[sessionID] == entry {
		delete(s.searches, sessionID)
	}
	s.mu.Unlock()

	s.running.Done()
}

func (s *FunnelService) snapshotWriter(sessionID, owner string, req bookingapi.SearchRequest) workflow.Observer {
	return func(ctx context.Context, p workflow.Progress) {
		if p.SearchID != "" {
			ctx = logger.WithSearchID(ctx, p.SearchID)
		}

		snapshot := flight.SearchSnapshot{
			Owner:        owner,
			State:        p.State,
			SearchID:     p.SearchID,
			Attempt:      p.Attempt,
			MaxAttempts:  p.MaxAttempts,
			Message:      p.Message,
			ErrorKind:    p.Kind,
			Redirect:     p.Redirect,
			Request:      req,
			Offers:       p.Offers,
			Dictionaries: p.Dictionaries,
			UpdatedAt:    time.Now().UTC(),
		}

		// a cancelled run still records its final state
		if err := s.Store.SaveSearch(context.WithoutCancel(ctx), sessionID, snapshot); err != nil {
			slog.ErrorContext(ctx, "failed to save search progress",
				slog.String("state", string(p.State)), slog.String("error", err.Error()))
		}
	}
}

// loadFunnel returns the session's funnel when it belongs to the caller.
func (s *FunnelService) loadFunnel(ctx context.Context, sessionID string) (workflow.Funnel, error) {
	f, err := s.Store.GetFunnel(ctx, sessionID)
	if err != nil {
		return workflow.Funnel{}, sessionError(err)
	}

	if f.Owner != caller(ctx) {
		slog.WarnContext(logger.WithSessionID(ctx, sessionID), "session requested by another user")
		return workflow.Funnel{}, ErrSessionNotFound
	}

	return f, nil
}

// claimSession allows a client-chosen session id that is unknown or already owned by owner.
func (s *FunnelService) claimSession(ctx context.Context, sessionID, owner string) error {
	f, err := s.Store.GetFunnel(ctx, sessionID)
	if errors.Is(err, flight.ErrCacheMiss) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	if f.Owner != owner {
		slog.WarnContext(ctx, "search started on a session of another user")
		return ErrSessionNotFound
	}

	return nil
}

// caller is the subject of the authenticated user, empty without credentials.
func caller(ctx context.Context) string {
	if claims, ok := auth.ClaimsFromContext(ctx); ok {
		return claims.Subject
	}

	return ""
}

func sessionError(err error) error {
	if errors.Is(err, flight.ErrCacheMiss) {
		return ErrSessionNotFound
	}

	return fmt.Errorf("failed to load session: %w", err)
}

func bookingEvent(ctx context.Context, f workflow.Funnel, order bookingapi.Order) queue.BookingConfirmedEvent {
	event := queue.BookingConfirmedEvent{
		OrderID:     order.ID,
		SessionID:   f.SessionID,
		RequestID:   logger.RequestID(ctx),
		Seat:        f.SelectedSeat,
		ConfirmedAt: time.Now().UTC(),
	}

	for _, t := range order.Travelers {
		event.Travelers = append(event.Travelers, t.FirstName+" "+t.LastName)
	}

	if f.Traveler != nil {
		event.Email = f.Traveler.Contact.Email
	}

	if f.PricedOffer != nil {
		event.Total = f.PricedOffer.Price.Total
		event.Currency = f.PricedOffer.Price.Currency
		if first, ok := f.PricedOffer.FirstSegment(); ok {
			event.Origin = first.Departure.IATACode
			event.Departure = first.Departure.AtText
		}
		if last, ok := f.PricedOffer.LastSegment(); ok {
			event.Destination = last.Arrival.IATACode
		}
	}

	return event
}
