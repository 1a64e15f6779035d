package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/carmarket/carmarket/internal/store"
)

// Recorder is a decorator that records every backend call in the request
// log.
type Recorder struct {
	inner     Doer
	eventRepo store.EventRepo
	logger    *slog.Logger
}

// WithRecording wraps d with request logging.
func WithRecording(d Doer, repo store.EventRepo) *Recorder {
	return &Recorder{inner: d, eventRepo: repo, logger: slog.Default()}
}

func (r *Recorder) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	start := time.Now()
	resp, err := r.inner.Do(ctx, method, path, body)

	data := store.RequestEventData{
		Method:    method,
		Path:      path,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		data.Status = resp.Status
	}
	if err != nil {
		data.Status = StatusOf(err)
		data.ErrorMessage = err.Error()
	}

	// Log the event but don't fail the request if logging fails. A cancelled
	// request is still recorded.
	if logErr := r.eventRepo.AppendRequest(context.WithoutCancel(ctx), data); logErr != nil {
		r.logger.Warn("failed to record request", "path", path, "error", logErr)
	}

	return resp, err
}

// Request implements form.Requester.
func (r *Recorder) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	return request(ctx, r, method, path, body)
}
