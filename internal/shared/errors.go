package shared

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
)

// ErrInvariantViolated indicates that an entity rule was broken.
var ErrInvariantViolated = errors.New("invariant violated")

// Kind represents the category of a domain failure carried by a Result.
type Kind int

const (
	// KindGeneric represents a failure with a caller supplied message
	KindGeneric Kind = iota
	// KindNotFound represents a missing entity
	KindNotFound
	// KindSave represents a persistence write that did not take effect
	KindSave
	// KindService represents a collaborator that could not answer
	KindService
	// KindValidation represents a single field validation failure
	KindValidation
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindSave:
		return "Save"
	case KindService:
		return "Service"
	case KindValidation:
		return "Validation"
	default:
		return "Generic"
	}
}

// Fixed messages of the closed kinds.
const (
	NotFoundMessage   = "Not found error"
	SaveMessage       = "Save error"
	ServiceMessage    = "Service error"
	ValidationMessage = "Validation error"
)

// MetadataEntry is one key/value pair attached to an Error.
type MetadataEntry struct {
	Key   string
	Value string
}

// Error is a domain failure. It is a value: two errors are the same when
// their kind, message and metadata match.
type Error struct {
	Kind     Kind
	Message  string
	Metadata []MetadataEntry
}

// Error implements the error interface.
func (e Error) Error() string {
	return e.Message
}

// Is reports whether target is an Error with the same kind and message.
// Metadata is ignored so errors.Is(err, NotFoundError()) works for any not found failure.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// Equal reports whether both errors carry the same kind, message and metadata.
func (e Error) Equal(other Error) bool {
	return e.Kind == other.Kind && e.Message == other.Message && slices.Equal(e.Metadata, other.Metadata)
}

// NotFoundError reports a missing entity.
func NotFoundError() Error {
	return Error{Kind: KindNotFound, Message: NotFoundMessage}
}

// SaveError reports a write that changed nothing.
func SaveError() Error {
	return Error{Kind: KindSave, Message: SaveMessage}
}

// ServiceError reports an unavailable or negative collaborator answer.
func ServiceError() Error {
	return Error{Kind: KindService, Message: ServiceMessage}
}

// ValidationError reports a failed rule on a single field. The field name is
// stored as given; callers pass it already normalized.
func ValidationError(field, message string) Error {
	return Error{
		Kind:     KindValidation,
		Message:  ValidationMessage + ": " + message,
		Metadata: []MetadataEntry{{Key: field, Value: message}},
	}
}

// GenericError reports a failure that fits no other kind.
func GenericError(message string) Error {
	return Error{Kind: KindGeneric, Message: message}
}

// KindOf returns the Kind of the first Error found in the chain of err.
// Plain Go errors are KindGeneric.
func KindOf(err error) Kind {
	var de Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindGeneric
}

// Wrap wraps an error with additional context.
// It returns a new error that formats as "context: err".
// If err is nil, Wrap returns nil.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	if context == "" {
		return err
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	context := fmt.Sprintf(format, args...)
	if context == "" {
		return err
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Invariant checks a condition and returns an error if it's false.
func Invariant(condition bool, message string) error {
	if condition {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvariantViolated, message)
}

// IsCanceled reports whether the error indicates a canceled context.
func IsCanceled(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled)
}

// IsTimeout reports whether the error indicates a timeout.
// It checks for context.DeadlineExceeded and net.Error timeouts.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
