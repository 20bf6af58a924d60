package domain

import (
	"fmt"
	"strings"
)

// ParseError reports a command that does not follow "<keyword> <target...> <action>".
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed command %q: %s", e.Input, e.Reason)
}

// NotFoundError reports that no entity cleared the similarity threshold.
// Suggestion is empty when there was nothing to compare against.
type NotFoundError struct {
	Phrase     string
	Suggestion string
	Score      float64
	Available  []string
}

func (e *NotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("I couldn't find a close match for '%s'. Did you mean '%s'?", e.Phrase, e.Suggestion)
	}
	if len(e.Available) > 0 {
		return fmt.Sprintf("I couldn't find '%s'. Available: %s", e.Phrase, strings.Join(e.Available, ", "))
	}
	return fmt.Sprintf("I couldn't find '%s'", e.Phrase)
}

// InvalidActionError reports an unrecognised action token or an out-of-range value.
type InvalidActionError struct {
	Token  string
	Reason string
}

func (e *InvalidActionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid action '%s'", e.Token)
	}
	return fmt.Sprintf("invalid action '%s': %s", e.Token, e.Reason)
}

// DomainMismatchError reports an intent that the entity's domain cannot accept.
type DomainMismatchError struct {
	EntityID string
	Domain   string
	Intent   IntentKind
}

func (e *DomainMismatchError) Error() string {
	return fmt.Sprintf("%s cannot be applied to %s (domain %q)", e.Intent, e.EntityID, e.Domain)
}

// CallError wraps a failed service invocation.
type CallError struct {
	Call ServiceCall
	Err  error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("calling %s: %v", e.Call, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// FetchError wraps a failure to obtain the entity snapshot.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("no entities available: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
