// Package remote loads read-only data for list screens. Each load carries a
// sequence number so a slow response never overwrites a newer one.
package remote

import (
	"context"
	"net/http"

	tea "charm.land/bubbletea/v2"

	"github.com/carmarket/carmarket/internal/api"
	"github.com/carmarket/carmarket/internal/form"
)

// LoadedMsg delivers one fetched and decoded response.
type LoadedMsg[T any] struct {
	Seq  int
	Data T
	Err  error
}

// Loader tracks the latest load of one resource.
type Loader[T any] struct {
	seq     int
	loading bool
	loaded  bool
	data    T
	err     error
	message string
}

// Load starts a GET of path and returns the command delivering the result.
func (l *Loader[T]) Load(ctx context.Context, r form.Requester, path string) tea.Cmd {
	l.seq++
	l.loading = true
	seq := l.seq
	return func() tea.Msg {
		raw, err := form.Call(ctx, r, http.MethodGet, path, nil)
		if err != nil {
			return LoadedMsg[T]{Seq: seq, Err: err}
		}
		data, err := api.Decode[T](raw)
		return LoadedMsg[T]{Seq: seq, Data: data, Err: err}
	}
}

// Accept applies msg if it answers the latest load and reports whether it
// did. fallback is the user-facing text for errors without a server message.
func (l *Loader[T]) Accept(msg LoadedMsg[T], fallback string) bool {
	if msg.Seq != l.seq {
		return false
	}
	l.loading = false
	l.err = msg.Err
	if msg.Err != nil {
		l.message = form.MessageOf(msg.Err, fallback)
		return true
	}
	l.message = ""
	l.loaded = true
	l.data = msg.Data
	return true
}

// Loading reports whether a load is in flight.
func (l *Loader[T]) Loading() bool { return l.loading }

// Loaded reports whether data has arrived at least once.
func (l *Loader[T]) Loaded() bool { return l.loaded }

// Data returns the last successfully loaded value.
func (l *Loader[T]) Data() T { return l.data }

// Err returns the error of the latest load, if any.
func (l *Loader[T]) Err() error { return l.err }

// Message is the user-facing text for Err.
func (l *Loader[T]) Message() string { return l.message }
