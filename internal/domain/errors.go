package domain

import (
	"errors"
	"fmt"
)

// Failure taxonomy. Every error a turn can produce maps onto one of these;
// none of them is allowed to escape to the transport layer as-is.
var (
	// ErrSessionNotFound means no session document exists yet for a user.
	// Callers treat it as "start from a fresh session", never as a fault.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionConflict is returned by Save when the stored version no
	// longer matches the one the turn read. The losing turn apologizes
	// instead of overwriting.
	ErrSessionConflict = errors.New("session version conflict")

	ErrPetNotFound = errors.New("pet not found")

	ErrReminderNotFound = errors.New("reminder not found")

	// ErrNoResolvablePet means an action needed a pet and neither the
	// params, the session, nor the owner's records could supply one.
	ErrNoResolvablePet = errors.New("no resolvable pet")

	// ErrInterpreterUnavailable covers service errors, timeouts and
	// output that survives none of the extraction fallbacks.
	ErrInterpreterUnavailable = errors.New("interpreter unavailable")

	// ErrStorageUnavailable wraps read/write failures on domain records.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// MissingFieldError says a required field is absent or failed its type
// check. The planner turns it into the next follow-up question.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// MissingField extracts the field name when err is a MissingFieldError.
func MissingField(err error) (string, bool) {
	var mf *MissingFieldError
	if errors.As(err, &mf) {
		return mf.Field, true
	}
	return "", false
}
