package initdata

import "errors"

// Verification failures are deterministic for a given payload and must
// never be retried. The HTTP layer maps each kind to a distinct outcome,
// so they are sentinels rather than one opaque error.
var (
	// ErrHashMissing means the payload carries no hash parameter at all.
	ErrHashMissing = errors.New("init data: hash missing")

	// ErrHashMismatch means the recomputed signature differs from the
	// one the client presented.
	ErrHashMismatch = errors.New("init data: hash mismatch")

	// ErrAuthDateMissing means auth_date is absent or not an integer.
	ErrAuthDateMissing = errors.New("init data: auth_date missing or malformed")

	// ErrExpired means auth_date is older than the configured window.
	ErrExpired = errors.New("init data: expired")

	// ErrFromFuture means auth_date is ahead of server time beyond the
	// clock-skew tolerance. Treated as unauthorized, logged separately.
	ErrFromFuture = errors.New("init data: auth_date in the future")

	// ErrNoUser means the payload verified fine but carries no user
	// claim (inline-query launches legitimately lack one). This is a
	// bad-request condition, not an authentication failure.
	ErrNoUser = errors.New("init data: no user in payload")

	// ErrMalformed means the raw payload is not a parseable query
	// string. A bad-request condition like ErrNoUser.
	ErrMalformed = errors.New("init data: malformed query string")
)

// IsVerificationError reports whether err is an authentication failure
// (as opposed to a bad request or an infrastructure failure). The HTTP
// layer maps these to a 401.
func IsVerificationError(err error) bool {
	for _, sentinel := range []error{ErrHashMissing, ErrHashMismatch, ErrAuthDateMissing, ErrExpired, ErrFromFuture} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
