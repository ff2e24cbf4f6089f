package errs

import "errors"

// Common sentinel errors for cross-layer signaling. Services wrap these with
// context via %w; the HTTP layer maps them onto the wire error taxonomy.
var (
	// ErrUnauthenticated means no verifiable caller identity was supplied.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalid covers shape/range/enum and business-rule violations.
	ErrInvalid = errors.New("invalid_argument")
	// ErrNotFound means a referenced account/transaction/recurring definition is absent.
	ErrNotFound = errors.New("not_found")
	// ErrForbidden indicates an ownership mismatch on an existing record.
	ErrForbidden = errors.New("permission_denied")
	// ErrConflict indicates a duplicate active account name.
	ErrConflict = errors.New("already_exists")
	// ErrInactiveAccount indicates an operation against a deactivated account.
	ErrInactiveAccount = errors.New("failed_precondition")
	// ErrInternal indicates an unexpected failure of the underlying atomic commit.
	ErrInternal = errors.New("internal")
)
