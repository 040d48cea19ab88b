package models

import (
	"encoding/json"

	"github.com/bobby-s-dev/trip-planner/internal/apperr"
)

type outcomeState uint8

const (
	stateNotRequested outcomeState = iota
	stateOK
	stateFailed
)

// Outcome holds the result of one optional lookup. The zero value means the
// lookup was not requested, which is distinct from a lookup that failed.
type Outcome[T any] struct {
	state outcomeState
	value T
	err   error
}

// Succeeded returns an Outcome holding v.
func Succeeded[T any](v T) Outcome[T] {
	return Outcome[T]{state: stateOK, value: v}
}

// Failed returns an Outcome holding err.
func Failed[T any](err error) Outcome[T] {
	return Outcome[T]{state: stateFailed, err: err}
}

// Requested reports whether the lookup was attempted.
func (o Outcome[T]) Requested() bool { return o.state != stateNotRequested }

// Value returns the value and true when the lookup succeeded.
func (o Outcome[T]) Value() (T, bool) { return o.value, o.state == stateOK }

// Err returns the failure, or nil.
func (o Outcome[T]) Err() error { return o.err }

type outcomeError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category,omitempty"`
}

type outcomeJSON struct {
	Status string        `json:"status"`
	Data   any           `json:"data,omitempty"`
	Error  *outcomeError `json:"error,omitempty"`
}

// MarshalJSON renders {"status":"ok","data":...}, {"status":"error","error":...}
// or {"status":"not_requested"}.
func (o Outcome[T]) MarshalJSON() ([]byte, error) {
	switch o.state {
	case stateOK:
		return json.Marshal(outcomeJSON{Status: "ok", Data: o.value})
	case stateFailed:
		return json.Marshal(outcomeJSON{Status: "error", Error: &outcomeError{
			Code:     string(apperr.KindOf(o.err)),
			Message:  apperr.PublicMessage(o.err),
			Category: apperr.CategoryOf(o.err),
		}})
	default:
		return json.Marshal(outcomeJSON{Status: "not_requested"})
	}
}
