package form

import (
	"context"
	"encoding/json"
	"fmt"
)

// State is the phase of a session's submission lifecycle.
//
//	Idle ──Begin──▶ Submitting ──Resolve──▶ Succeeded ──Reset──▶ Idle
//	  │                  ▲     └──Resolve──▶ Failed ──Begin──┘
//	  └─RequestConfirmation─▶ PendingConfirmation ──Confirm──┘
//	                               └──Cancel──▶ Idle
type State int

const (
	Idle State = iota
	PendingConfirmation
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PendingConfirmation:
		return "pending_confirmation"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Submission is a snapshot of the lifecycle. Result is set only when
// Succeeded; Err only when Failed.
type Submission struct {
	State  State
	Result json.RawMessage
	Err    *SubmissionError
}

// Attempt identifies one in-flight submission. A result is applied only when
// its attempt is the session's current one, so responses that arrive after
// a retry or after teardown are dropped.
type Attempt struct {
	SessionID string
	Seq       int
}

// Requester is the HTTP collaborator: it performs one request and returns
// the decoded success body or an error optionally carrying a server message
// (see Messager).
type Requester interface {
	Request(ctx context.Context, method, path string, body any) (json.RawMessage, error)
}

// Call invokes r exactly once. A panic inside the collaborator degrades to an
// ordinary error so the hosting screen keeps a defined state.
func Call(ctx context.Context, r Requester, method, path string, body any) (result json.RawMessage, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = fmt.Errorf("form: requester panicked: %v", rec)
		}
	}()
	return r.Request(ctx, method, path, body)
}
