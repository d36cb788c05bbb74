package pipeline

import (
	"errors"
	"fmt"

	pkgai "github.com/johnquangdev/talk-tracer/pkg/ai"
)

// ErrorKind classifies why a stage failed
type ErrorKind string

const (
	KindMissingField ErrorKind = "missing_field"
	KindUpstream     ErrorKind = "upstream_service"
	KindPersistence  ErrorKind = "persistence"
)

// StageError is the failure a stage reports to the orchestrator
type StageError struct {
	Kind      ErrorKind
	Stage     string
	Field     string // set for KindMissingField
	Service   string // set for KindUpstream
	MeetingID string
	Message   string
	Cause     error
}

func (e *StageError) Error() string {
	switch e.Kind {
	case KindMissingField:
		return fmt.Sprintf("%s: required field %q is missing or empty", e.Stage, e.Field)
	case KindUpstream:
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s failed: %v", e.Stage, e.Service, e.Cause)
		}
		return fmt.Sprintf("%s: %s failed: %s", e.Stage, e.Service, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// MissingField reports an absent or empty prerequisite field
func MissingField(stage, field string) *StageError {
	return &StageError{Kind: KindMissingField, Stage: stage, Field: field}
}

// Upstream reports a failed call to an external service
func Upstream(stage, service string, cause error) *StageError {
	return &StageError{Kind: KindUpstream, Stage: stage, Service: service, Cause: cause}
}

// Persistence reports a document store failure or an update that did not
// modify exactly one document
func Persistence(stage, message string, cause error) *StageError {
	return &StageError{Kind: KindPersistence, Stage: stage, Message: message, Cause: cause}
}

// KindOf returns the kind of a StageError in err's chain, or "" if none
func KindOf(err error) ErrorKind {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

func IsMissingField(err error) bool { return KindOf(err) == KindMissingField }

func IsUpstream(err error) bool { return KindOf(err) == KindUpstream }

func IsPersistence(err error) bool { return KindOf(err) == KindPersistence }

// Retryable reports whether the orchestrator may run the stage again.
// Only upstream failures qualify; provider errors that say the request
// itself was rejected (4xx other than 429) do not.
func Retryable(err error) bool {
	if !IsUpstream(err) {
		return false
	}
	var ue *pkgai.UpstreamError
	if errors.As(err, &ue) {
		return ue.Retryable()
	}
	return true
}
