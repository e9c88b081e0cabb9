package model

import "time"

// PollStatus describes where a poll is in its lifecycle.
// Transitions: draft -> active -> closed; closed is terminal. Polls created
// through the store default to active. A poll past its expiry time stays
// active until explicitly closed; "time remaining" is a display concern.
type PollStatus string

const (
	PollStatusDraft  PollStatus = "draft"
	PollStatusActive PollStatus = "active"
	PollStatusClosed PollStatus = "closed"
)

// PollVisibility controls whether a poll is listed publicly.
type PollVisibility string

const (
	VisibilityPublic  PollVisibility = "public"
	VisibilityPrivate PollVisibility = "private"
)

// PollOption is one selectable answer within a poll. The id is unique
// within its poll and the vote count is mutated only by the vote operation.
type PollOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	VoteCount int64  `json:"vote_count"`
}

// Poll is a titled question with at least two selectable options, owned by
// a creator, with a visibility and a voting policy.
type Poll struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Options        []PollOption   `json:"options"`
	CreatorID      string         `json:"creator_id"`
	CreatorName    string         `json:"creator_name"`
	Status         PollStatus     `json:"status"`
	Visibility     PollVisibility `json:"visibility"`
	OneVotePerUser bool           `json:"one_vote_per_user"`
	DurationHours  *int           `json:"duration_hours,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	ExpiresAt      *time.Time     `json:"expires_at,omitempty"`
	TotalVotes     int64          `json:"total_votes"`
	VotedUserIDs   []string       `json:"voted_user_ids"`
}

// Clone returns a deep copy of the poll. Callers outside the store only
// ever hold clones, never the store's own instance.
func (p *Poll) Clone() *Poll {
	if p == nil {
		return nil
	}
	c := *p
	c.Options = make([]PollOption, len(p.Options))
	copy(c.Options, p.Options)
	c.VotedUserIDs = make([]string, len(p.VotedUserIDs))
	copy(c.VotedUserIDs, p.VotedUserIDs)
	if p.DurationHours != nil {
		d := *p.DurationHours
		c.DurationHours = &d
	}
	if p.ExpiresAt != nil {
		e := *p.ExpiresAt
		c.ExpiresAt = &e
	}
	return &c
}

// Option returns the option with the given id, or nil if it does not
// belong to this poll.
func (p *Poll) Option(optionID string) *PollOption {
	for i := range p.Options {
		if p.Options[i].ID == optionID {
			return &p.Options[i]
		}
	}
	return nil
}

// ConsistentTotals reports whether TotalVotes equals the sum of the option
// vote counts. The store maintains the total incrementally; tests use this
// to catch drift.
func (p *Poll) ConsistentTotals() bool {
	var sum int64
	for _, opt := range p.Options {
		sum += opt.VoteCount
	}
	return sum == p.TotalVotes
}

// OptionResult is a per-option tally with its share of the total.
type OptionResult struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	VoteCount  int64   `json:"vote_count"`
	Percentage float64 `json:"percentage"`
}

// PollResults is the aggregated view presentation renders from.
type PollResults struct {
	PollID     string         `json:"poll_id"`
	Title      string         `json:"title"`
	Status     PollStatus     `json:"status"`
	TotalVotes int64          `json:"total_votes"`
	Options    []OptionResult `json:"options"`
}

// Results computes per-option percentages. The total is recomputed from the
// option counts rather than read from TotalVotes, so a defensive caller gets
// consistent percentages even if the stored total ever drifted.
func (p *Poll) Results() *PollResults {
	var total int64
	for _, opt := range p.Options {
		total += opt.VoteCount
	}

	options := make([]OptionResult, len(p.Options))
	for i, opt := range p.Options {
		options[i] = OptionResult{
			ID:        opt.ID,
			Text:      opt.Text,
			VoteCount: opt.VoteCount,
		}
		if total > 0 {
			options[i].Percentage = float64(opt.VoteCount) / float64(total) * 100
		}
	}

	return &PollResults{
		PollID:     p.ID,
		Title:      p.Title,
		Status:     p.Status,
		TotalVotes: total,
		Options:    options,
	}
}

// CreatePollInput is the draft a caller submits to create a poll.
type CreatePollInput struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Options        []string       `json:"options"`
	Visibility     PollVisibility `json:"visibility"`
	OneVotePerUser bool           `json:"one_vote_per_user"`
	DurationHours  *int           `json:"duration_hours,omitempty"`
	Status         PollStatus     `json:"status,omitempty"`
}

// UpdatePollInput carries a partial update. Pointer fields distinguish
// "not provided" from zero values; nil fields are left unchanged.
type UpdatePollInput struct {
	Title          *string         `json:"title,omitempty"`
	Description    *string         `json:"description,omitempty"`
	Status         *PollStatus     `json:"status,omitempty"`
	Visibility     *PollVisibility `json:"visibility,omitempty"`
	OneVotePerUser *bool           `json:"one_vote_per_user,omitempty"`
	ExpiresAt      *time.Time      `json:"expires_at,omitempty"`
}
