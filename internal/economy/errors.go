package economy

import "errors"

// Engine errors. All are recoverable and map to stable machine-readable codes
// at the API boundary.
var (
	// Invalid input.
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidInput  = errors.New("invalid input")

	// Not found.
	ErrUserNotFound     = errors.New("user not found")
	ErrJobNotFound      = errors.New("job not found")
	ErrProposalNotFound = errors.New("proposal not found")

	// Policy violations.
	ErrSelfTransfer     = errors.New("cannot transfer to self")
	ErrLevelTooLow      = errors.New("level too low")
	ErrAlreadyActive    = errors.New("job attempt already active")
	ErrAlreadyCompleted = errors.New("job already completed")
	ErrNotActive        = errors.New("no active job attempt")
	ErrProposalClosed   = errors.New("proposal is closed")
	ErrAlreadyVoted     = errors.New("already voted on proposal")

	ErrInsufficientFunds = errors.New("insufficient funds")
)
