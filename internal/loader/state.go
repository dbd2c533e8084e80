package loader

import (
	"encoding/json"
	"fmt"
)

// Status is the tag of a State.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// State is the tri-state result of one load: Loading, Ready with data, or
// Failed with a human-readable reason. The zero value is Loading.
type State[T any] struct {
	status Status
	data   T
	reason string
}

// Loading returns the initial state of a route activation.
func Loading[T any]() State[T] { return State[T]{} }

// Ready wraps a successful result.
func Ready[T any](v T) State[T] { return State[T]{status: StatusReady, data: v} }

// Failed wraps a failure reason shown to the user verbatim.
func Failed[T any](reason string) State[T] { return State[T]{status: StatusFailed, reason: reason} }

func (s State[T]) Status() Status  { return s.status }
func (s State[T]) IsLoading() bool { return s.status == StatusLoading }
func (s State[T]) IsReady() bool   { return s.status == StatusReady }
func (s State[T]) IsFailed() bool  { return s.status == StatusFailed }

// Data returns the payload and whether the state is Ready.
func (s State[T]) Data() (T, bool) { return s.data, s.status == StatusReady }

// Reason returns the failure reason, "" unless Failed.
func (s State[T]) Reason() string { return s.reason }

type stateJSON[T any] struct {
	Status string `json:"status"`
	Data   *T     `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// MarshalJSON encodes {"status": ..., "data": ...} or {"status": ..., "error": ...}.
func (s State[T]) MarshalJSON() ([]byte, error) {
	out := stateJSON[T]{Status: s.status.String()}
	switch s.status {
	case StatusReady:
		out.Data = &s.data
	case StatusFailed:
		out.Error = s.reason
	}
	return json.Marshal(out)
}

func (s *State[T]) UnmarshalJSON(b []byte) error {
	var in stateJSON[T]
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	switch in.Status {
	case "loading":
		*s = Loading[T]()
	case "ready":
		var v T
		if in.Data != nil {
			v = *in.Data
		}
		*s = Ready(v)
	case "failed":
		*s = Failed[T](in.Error)
	default:
		return fmt.Errorf("unknown load status %q", in.Status)
	}
	return nil
}
