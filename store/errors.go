package store

import "errors"

// Business errors returned by PollStore operations. A failed operation
// leaves prior state unchanged; none of these are retried by the store.
var (
	// ErrAuthRequired means the operation needs a current user and none
	// is set.
	ErrAuthRequired = errors.New("authentication required")

	// ErrPollNotFound means the referenced poll does not exist.
	ErrPollNotFound = errors.New("poll not found")

	// ErrOptionNotFound means the option does not belong to the poll.
	ErrOptionNotFound = errors.New("option not found")

	// ErrDuplicateVote means a one-vote-per-user poll already has a
	// ledger entry for this user.
	ErrDuplicateVote = errors.New("user already voted on this poll")

	// ErrPollClosed means the poll is not accepting votes.
	ErrPollClosed = errors.New("poll is closed")

	// ErrInvalidInput means malformed input reached the store boundary.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited means the user exceeded the configured vote rate.
	ErrRateLimited = errors.New("vote rate limit exceeded")
)
