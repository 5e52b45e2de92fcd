package repositories

import "errors"

// Repository errors surface to the services layer unmodified and are
// matched with errors.Is. Only the coordination façade may translate
// one into a user-facing success (the double-click case).
var (
	// ErrValidation marks input the caller can correct and resend.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks a uniqueness violation that is not already
	// absorbed as an idempotent no-op.
	ErrConflict = errors.New("conflict with existing record")

	// ErrNotAuthorized marks an insufficient role. It is always
	// surfaced, never downgraded.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("record not found")

	// ErrInvariantViolation marks an operation that would break a
	// structural guarantee, such as removing a group's last owner.
	ErrInvariantViolation = errors.New("operation violates a group invariant")

	// ErrProposalClosed marks a write against a proposal that is no
	// longer accepting changes.
	ErrProposalClosed = errors.New("proposal is closed")

	// Token errors are deliberately distinct so each can carry its own
	// user-facing message.
	ErrTokenNotFound = errors.New("response token not found")
	ErrTokenExpired  = errors.New("response token expired")
	ErrTokenConsumed = errors.New("response token already used")
)
