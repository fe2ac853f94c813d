package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork covers transport failures, timeouts and non-2xx statuses.
	ErrNetwork = errors.New("engine unreachable")
	// ErrMalformedResponse covers undecodable bodies and missing fields.
	ErrMalformedResponse = errors.New("malformed engine response")
	// ErrInvalidMove is returned before any request is sent for off-board coordinates.
	ErrInvalidMove = errors.New("move outside the board")
)

// Error records which engine operation failed and how.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("engine %s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("engine %s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func networkErr(op string, err error) error {
	return &Error{Op: op, Kind: ErrNetwork, Err: err}
}

func malformedErr(op string, err error) error {
	return &Error{Op: op, Kind: ErrMalformedResponse, Err: err}
}

// errorKind labels an error for metrics.
func errorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	default:
		return "network"
	}
}
