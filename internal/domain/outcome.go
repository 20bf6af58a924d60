package domain

import "errors"

type Status string

const (
	StatusOK             Status = "ok"
	StatusState          Status = "state"
	StatusParseError     Status = "parse_error"
	StatusFetchError     Status = "fetch_error"
	StatusNotFound       Status = "not_found"
	StatusInvalidAction  Status = "invalid_action"
	StatusDomainMismatch Status = "domain_mismatch"
	StatusCallError      Status = "call_error"
)

// Outcome is the result of dispatching one command. Message is always set.
type Outcome struct {
	Status  Status         `json:"status"`
	Message string         `json:"message"`
	Command string         `json:"command"`
	Target  *Entity        `json:"target,omitempty"`
	Intent  *Intent        `json:"-"`
	Call    *ServiceCall   `json:"call,omitempty"`
	State   *StateSnapshot `json:"state,omitempty"`
	Err     error          `json:"-"`
}

func (o Outcome) OK() bool {
	return o.Status == StatusOK || o.Status == StatusState
}

// Failure converts an error from any stage into an outcome.
func Failure(command string, err error) Outcome {
	return Outcome{
		Status:  StatusOf(err),
		Message: err.Error(),
		Command: command,
		Err:     err,
	}
}

// StatusOf maps the error taxonomy onto outcome statuses.
func StatusOf(err error) Status {
	var (
		parseErr *ParseError
		notFound *NotFoundError
		invalid  *InvalidActionError
		mismatch *DomainMismatchError
		callErr  *CallError
		fetchErr *FetchError
	)
	switch {
	case err == nil:
		return StatusOK
	case errors.As(err, &parseErr):
		return StatusParseError
	case errors.As(err, &notFound):
		return StatusNotFound
	case errors.As(err, &invalid):
		return StatusInvalidAction
	case errors.As(err, &mismatch):
		return StatusDomainMismatch
	case errors.As(err, &fetchErr):
		return StatusFetchError
	case errors.As(err, &callErr):
		return StatusCallError
	default:
		return StatusCallError
	}
}
