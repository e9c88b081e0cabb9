package model

import "time"

// VoteRecord is one ledger entry: which option a user chose on a poll.
// Entries are created on a successful vote and never mutated afterwards,
// except that polls allowing repeat votes overwrite the chosen option.
type VoteRecord struct {
	UserID   string    `json:"user_id"`
	PollID   string    `json:"poll_id"`
	OptionID string    `json:"option_id"`
	VotedAt  time.Time `json:"voted_at"`
}
