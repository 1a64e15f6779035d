package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// eventRepo implements EventRepo with raw SQL and the global sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
	now func() time.Time
}

func (r *eventRepo) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *eventRepo) AppendRequest(ctx context.Context, data RequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO request_events
			(sequence, timestamp, method, path, status, latency_ms, success, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, r.clock().UnixMilli(), data.Method, data.Path, data.Status,
		data.LatencyMs, data.Success, data.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("save request event: %w", err)
	}
	return nil
}

func (r *eventRepo) RecentRequests(ctx context.Context, opts QueryOpts) ([]RequestEvent, error) {
	var (
		where []string
		args  []any
	)
	if opts.After > 0 {
		where = append(where, "sequence > ?")
		args = append(args, opts.After)
	}
	if opts.Before > 0 {
		where = append(where, "sequence < ?")
		args = append(args, opts.Before)
	}
	if !opts.From.IsZero() {
		where = append(where, "timestamp >= ?")
		args = append(args, opts.From.UnixMilli())
	}
	if !opts.To.IsZero() {
		where = append(where, "timestamp <= ?")
		args = append(args, opts.To.UnixMilli())
	}

	q := `SELECT sequence, timestamp, method, path, status, latency_ms, success, error_message
		FROM request_events`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY sequence DESC"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query request events: %w", err)
	}
	defer rows.Close()

	var events []RequestEvent
	for rows.Next() {
		var (
			ev RequestEvent
			ts int64
		)
		if err := rows.Scan(&ev.Sequence, &ts, &ev.Method, &ev.Path, &ev.Status,
			&ev.LatencyMs, &ev.Success, &ev.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan request event: %w", err)
		}
		ev.Timestamp = time.UnixMilli(ts).UTC()
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *eventRepo) Stats(ctx context.Context) (RequestStats, error) {
	var st RequestStats
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0)
		 FROM request_events`).Scan(&st.Total, &st.Failed)
	if err != nil {
		return st, fmt.Errorf("count request events: %w", err)
	}
	return st, nil
}

func (r *eventRepo) Prune(ctx context.Context, keep int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM request_events WHERE sequence NOT IN (
			SELECT sequence FROM request_events ORDER BY sequence DESC LIMIT ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("prune request events: %w", err)
	}
	return nil
}
