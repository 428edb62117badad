package queue

import "time"

// DefaultBookingQueue is the durable queue BookingConfirmed events are routed to.
const DefaultBookingQueue = "booking.confirmed"

type BookingConfirmedEvent struct {
	OrderID     string    `json:"order_id"`
	SessionID   string    `json:"session_id"`
	RequestID   string    `json:"request_id,omitempty"`
	Travelers   []string  `json:"travelers"`
	Email       string    `json:"email,omitempty"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Departure   string    `json:"departure,omitempty"`
	Seat        string    `json:"seat,omitempty"`
	Total       string    `json:"total"`
	Currency    string    `json:"currency"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}
