package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// RequestEventData captures one backend call.
type RequestEventData struct {
	Method       string
	Path         string
	Status       int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// RequestEvent is a stored RequestEventData.
type RequestEvent struct {
	Sequence  int64
	Timestamp time.Time
	RequestEventData
}

// RequestStats counts logged requests.
type RequestStats struct {
	Total  int
	Failed int
}

// EventRepo provides append and read access to the request log.
type EventRepo interface {
	// AppendRequest records a backend call.
	AppendRequest(ctx context.Context, data RequestEventData) error

	// RecentRequests returns matching events, newest first.
	RecentRequests(ctx context.Context, opts QueryOpts) ([]RequestEvent, error)

	// Stats counts all logged requests and the failed ones.
	Stats(ctx context.Context) (RequestStats, error)

	// Prune deletes all but the N most recent events.
	Prune(ctx context.Context, keep int) error
}
