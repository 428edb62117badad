package flight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/bookingapi"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/exception"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/workflow"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent or has expired.
var ErrCacheMiss = errors.New("cache miss")

type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// SearchSnapshot is the latest observed state of a session's search run.
type SearchSnapshot struct {
	// Owner is the subject of the user who started the search.
	Owner        string                   `json:"owner,omitempty"`
	State        workflow.State           `json:"state"`
	SearchID     string                   `json:"search_id,omitempty"`
	Attempt      int                      `json:"attempt"`
	MaxAttempts  int                      `json:"max_attempts"`
	Message      string                   `json:"message,omitempty"`
	ErrorKind    exception.Kind           `json:"error_kind,omitempty"`
	Redirect     string                   `json:"redirect,omitempty"`
	Request      bookingapi.SearchRequest `json:"request"`
	Offers       []bookingapi.Offer       `json:"offers,omitempty"`
	Dictionaries bookingapi.Dictionaries  `json:"dictionaries"`
	UpdatedAt    time.Time                `json:"updated_at"`
}

// BookedOrder is an order together with the subject of the user who booked it.
type BookedOrder struct {
	Owner string           `json:"owner"`
	Order bookingapi.Order `json:"order"`
}

// SessionStore keeps funnel values, search snapshots and confirmed orders in Redis.
// Funnel and search entries expire with the session; orders outlive it.
type SessionStore struct {
	redis      RedisClient
	sessionTTL time.Duration
	orderTTL   time.Duration
}

func NewSessionStore(redis RedisClient, sessionTTL, orderTTL time.Duration) *SessionStore {
	return &SessionStore{
		redis:      redis,
		sessionTTL: sessionTTL,
		orderTTL:   orderTTL,
	}
}

func (c *SessionStore) FunnelKey(sessionID string) string {
	return fmt.Sprintf("funnel:session:%s", sessionID)
}

func (c *SessionStore) SearchKey(sessionID string) string {
	return fmt.Sprintf("funnel:search:%s", sessionID)
}

func (c *SessionStore) OrderKey(orderID string) string {
	return fmt.Sprintf("booking:order:%s", orderID)
}

func (c *SessionStore) LockKey(sessionID string) string {
	return fmt.Sprintf("booking:lock:%s", sessionID)
}

func (c *SessionStore) AcquireLock(ctx context.Context, key string, timeout time.Duration) (bool, error) {
	return c.redis.SetNX(ctx, key, "1", timeout).Result()
}

func (c *SessionStore) ReleaseLock(ctx context.Context, key string) error {
	return c.redis.Del(ctx, key).Err()
}

func (c *SessionStore) SaveFunnel(ctx context.Context, f workflow.Funnel) error {
	return c.set(ctx, c.FunnelKey(f.SessionID), f, c.sessionTTL)
}

func (c *SessionStore) GetFunnel(ctx context.Context, sessionID string) (workflow.Funnel, error) {
	var f workflow.Funnel
	if err := c.get(ctx, c.FunnelKey(sessionID), &f); err != nil {
		return workflow.Funnel{}, err
	}

	return f, nil
}

func (c *SessionStore) SaveSearch(ctx context.Context, sessionID string, snapshot SearchSnapshot) error {
	return c.set(ctx, c.SearchKey(sessionID), snapshot, c.sessionTTL)
}

func (c *SessionStore) GetSearch(ctx context.Context, sessionID string) (SearchSnapshot, error) {
	var snapshot SearchSnapshot
	if err := c.get(ctx, c.SearchKey(sessionID), &snapshot); err != nil {
		return SearchSnapshot{}, err
	}

	return snapshot, nil
}

func (c *SessionStore) SaveOrder(ctx context.Context, booked BookedOrder) error {
	return c.set(ctx, c.OrderKey(booked.Order.ID), booked, c.orderTTL)
}

func (c *SessionStore) GetOrder(ctx context.Context, orderID string) (BookedOrder, error) {
	var booked BookedOrder
	if err := c.get(ctx, c.OrderKey(orderID), &booked); err != nil {
		return BookedOrder{}, err
	}

	return booked, nil
}

func (c *SessionStore) set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := c.redis.Set(ctx, key, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	return nil
}

func (c *SessionStore) get(ctx context.Context, key string, dst any) error {
	data, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	return nil
}
