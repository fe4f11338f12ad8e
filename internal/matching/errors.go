// internal/matching/errors.go

package matching

import (
	"errors"
	"fmt"
)

// Error categories. Handlers map these to status codes; specific errors wrap
// one of them.
var (
	ErrNotFound           = errors.New("not found")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnavailable        = errors.New("service unavailable")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
)

var (
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrMatchNotFound       = fmt.Errorf("match %w", ErrNotFound)
	ErrProfileIncomplete   = fmt.Errorf("%w: complete your profile first", ErrPreconditionFailed)
	ErrReceiverUnavailable = fmt.Errorf("%w: user is not accepting matches", ErrPreconditionFailed)
	ErrSelfMatch           = fmt.Errorf("%w: cannot match with yourself", ErrInvalidArgument)
	ErrInvalidDistance     = fmt.Errorf("%w: distance out of range", ErrInvalidArgument)
	ErrInvalidLimit        = fmt.Errorf("%w: limit out of range", ErrInvalidArgument)
	ErrInvalidMinScore     = fmt.Errorf("%w: min_score must be between 0 and 100", ErrInvalidArgument)
	ErrMatchExists         = fmt.Errorf("%w: a match with this user already exists", ErrConflict)
	ErrMatchNotPending     = fmt.Errorf("%w: match is no longer pending", ErrConflict)
	ErrMatchExpired        = fmt.Errorf("%w: match request has expired", ErrConflict)
	ErrNotReceiver         = fmt.Errorf("%w: only the receiver can respond", ErrForbidden)
	ErrNotParticipant      = fmt.Errorf("%w: not part of this match", ErrForbidden)
)

// unavailable tags a store failure as retryable while keeping its cause
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}
