package quizbowl

import "fmt"

// InvalidEventError reports an event that breaks a ledger rule, such as a
// second correct buzz or a bonus with no triggering tossup.
type InvalidEventError struct {
	Kind   EventKind
	Reason string
}

func (e *InvalidEventError) Error() string {
	if e.Kind == "" {
		return "invalid event: " + e.Reason
	}
	return fmt.Sprintf("invalid %s event: %s", e.Kind, e.Reason)
}

// OutOfRangeError reports a cycle or question index outside the packet.
type OutOfRangeError struct {
	What  string
	Index int
	Len   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0, %d)", e.What, e.Index, e.Len)
}

// ValidationError carries user-facing text for malformed pending input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(kind EventKind, format string, args ...any) error {
	return &InvalidEventError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}
