package ledger

import "errors"

// Domain failures surfaced to the command dispatcher. Anything else
// returned by the store is a persistence fault: logged in full, shown
// to the caller as a generic failure.
var (
	// ErrUnknownIdentity means no account matches the presented identity
	ErrUnknownIdentity = errors.New("unknown identity")

	// ErrDuplicateIdentity means the persistent identity is already taken
	ErrDuplicateIdentity = errors.New("identity already exists")

	// ErrAlreadyLinked means the account is linked to a different session
	ErrAlreadyLinked = errors.New("account already linked to another session")

	// ErrSessionInUse means the session identity is linked to another account
	ErrSessionInUse = errors.New("session already linked to another account")

	// ErrInvalidCredentials means the presented secret did not verify
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotLinked means no account is linked to the presented session
	ErrNotLinked = errors.New("session not linked to any account")

	// ErrInsufficientFunds means the sender's balance cannot cover the amount
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount means a transfer amount was zero or negative
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrSelfTransfer means sender and recipient are the same account
	ErrSelfTransfer = errors.New("cannot transfer to self")
)

// IsDomainError reports whether err is one of the typed domain failures
// rather than a persistence fault
func IsDomainError(err error) bool {
	for _, sentinel := range []error{
		ErrUnknownIdentity,
		ErrDuplicateIdentity,
		ErrAlreadyLinked,
		ErrSessionInUse,
		ErrInvalidCredentials,
		ErrNotLinked,
		ErrInsufficientFunds,
		ErrInvalidAmount,
		ErrSelfTransfer,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
