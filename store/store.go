// Package store implements the poll state service: the single source of
// truth for polls, the current-session user, and the per-user vote ledger.
// It is the only component that mutates poll or ledger state; consumers
// hold an explicit *PollStore instance and receive read-only snapshots.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pollstore/config"
	"pollstore/events"
	"pollstore/model"
	"pollstore/storage"
)

// PollStore owns the authoritative poll collection, the current-session
// identity, and the vote ledger. A single mutex serializes every mutation,
// so the vote precondition checks and the tally update are atomic from the
// caller's point of view.
type PollStore struct {
	mu     sync.Mutex
	user   *model.User
	polls  []*model.Poll // most-recent-first
	ledger map[string]map[string]model.VoteRecord // userID -> pollID -> record

	kv      storage.KV
	hub     *events.Hub
	limiter *voteLimiter // nil when rate limiting is disabled

	authLatency   time.Duration
	createLatency time.Duration
	voteLatency   time.Duration
}

// New restores the current user, the vote ledger and the poll collection
// from durable storage, seeding the sample polls when the collection is
// empty and seeding is enabled.
func New(ctx context.Context, kv storage.KV, cfg *config.Config, hub *events.Hub) (*PollStore, error) {
	s := &PollStore{
		ledger:        make(map[string]map[string]model.VoteRecord),
		kv:            kv,
		hub:           hub,
		authLatency:   cfg.AuthLatency,
		createLatency: cfg.CreateLatency,
		voteLatency:   cfg.VoteLatency,
	}
	if cfg.RateLimitEnabled {
		s.limiter = newVoteLimiter(cfg.UserVoteRate, cfg.UserVoteBurst)
	}

	if err := s.restoreUser(ctx); err != nil {
		return nil, err
	}
	if err := s.restoreLedger(ctx); err != nil {
		return nil, err
	}
	if err := s.restorePolls(ctx, cfg.SeedPolls); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *PollStore) restoreUser(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, storage.KeyCurrentUser)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore current user: %w", err)
	}
	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return fmt.Errorf("restore current user: %w", err)
	}
	s.user = &user
	return nil
}

func (s *PollStore) restoreLedger(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, storage.KeyVoteLedger)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore vote ledger: %w", err)
	}
	var records []model.VoteRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return fmt.Errorf("restore vote ledger: %w", err)
	}
	for _, rec := range records {
		if s.ledger[rec.UserID] == nil {
			s.ledger[rec.UserID] = make(map[string]model.VoteRecord)
		}
		s.ledger[rec.UserID][rec.PollID] = rec
	}
	return nil
}

func (s *PollStore) restorePolls(ctx context.Context, seed bool) error {
	raw, err := s.kv.Get(ctx, storage.KeyPolls)
	if errors.Is(err, storage.ErrKeyNotFound) {
		if !seed {
			return nil
		}
		s.polls = defaultSeedPolls()
		if err := s.persistPolls(ctx, s.polls); err != nil {
			return err
		}
		log.Printf("seeded %d sample polls", len(s.polls))
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore polls: %w", err)
	}
	var polls []*model.Poll
	if err := json.Unmarshal([]byte(raw), &polls); err != nil {
		return fmt.Errorf("restore polls: %w", err)
	}
	s.polls = polls
	return nil
}

// --- Session operations ---

// CurrentUser returns a snapshot of the current user, or nil when no
// session is active.
func (s *PollStore) CurrentUser() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.Clone()
}

// Authenticate starts a session for the given credentials. There is no
// backing directory, so any non-empty credentials succeed; the display
// name is derived from the email's local part. The user is persisted so
// the session survives a restart.
func (s *PollStore) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	if err := simulateLatency(ctx, s.authLatency); err != nil {
		return nil, err
	}

	user := &model.User{
		ID:    uuid.NewString(),
		Name:  model.DisplayNameFromEmail(email),
		Email: email,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persistUser(ctx, user); err != nil {
		return nil, err
	}
	s.user = user
	return user.Clone(), nil
}

// Register builds a new user with a fresh id. Email uniqueness is not
// checked; there is no directory to check against.
func (s *PollStore) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	}
	if err := simulateLatency(ctx, s.authLatency); err != nil {
		return nil, err
	}

	user := &model.User{
		ID:    uuid.NewString(),
		Name:  name,
		Email: email,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persistUser(ctx, user); err != nil {
		return nil, err
	}
	s.user = user
	return user.Clone(), nil
}

// ContinueAsGuest starts a session without credentials. Guests may vote
// like any other user.
func (s *PollStore) ContinueAsGuest(ctx context.Context) (*model.User, error) {
	user := &model.User{
		ID:      model.GuestIDPrefix + uuid.NewString(),
		Name:    "Guest User",
		IsGuest: true,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persistUser(ctx, user); err != nil {
		return nil, err
	}
	s.user = user
	return user.Clone(), nil
}

// EndSession clears the current user. The vote ledger is kept so a user
// who signs back in still sees which polls they voted on.
func (s *PollStore) EndSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Del(ctx, storage.KeyCurrentUser); err != nil {
		return fmt.Errorf("clear current user: %w", err)
	}
	s.user = nil
	return nil
}

// --- Poll lifecycle operations ---

// CreatePoll constructs a new poll owned by the current user and prepends
// it to the collection, so listings are most-recent-first. All option
// counts start at zero. Returns the new poll's id.
func (s *PollStore) CreatePoll(ctx context.Context, input model.CreatePollInput) (string, error) {
	if err := validateCreateInput(input); err != nil {
		return "", err
	}
	if err := simulateLatency(ctx, s.createLatency); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return "", ErrAuthRequired
	}

	now := time.Now()
	poll := &model.Poll{
		ID:             uuid.NewString(),
		Title:          input.Title,
		Description:    input.Description,
		Options:        make([]model.PollOption, len(input.Options)),
		CreatorID:      s.user.ID,
		CreatorName:    s.user.Name,
		Status:         input.Status,
		Visibility:     input.Visibility,
		OneVotePerUser: input.OneVotePerUser,
		CreatedAt:      now,
		TotalVotes:     0,
		VotedUserIDs:   []string{},
	}
	if poll.Status == "" {
		poll.Status = model.PollStatusActive
	}
	if poll.Visibility == "" {
		poll.Visibility = model.VisibilityPublic
	}
	for i, text := range input.Options {
		poll.Options[i] = model.PollOption{ID: uuid.NewString(), Text: text}
	}
	if input.DurationHours != nil {
		hours := *input.DurationHours
		expires := now.Add(time.Duration(hours) * time.Hour)
		poll.DurationHours = &hours
		poll.ExpiresAt = &expires
	}

	next := append([]*model.Poll{poll}, s.polls...)
	if err := s.persistPolls(ctx, next); err != nil {
		return "", err
	}
	s.polls = next

	s.publish(events.Event{Type: events.EventPollCreated, PollID: poll.ID, Payload: poll.Clone()})
	return poll.ID, nil
}

// UpdatePoll merges the provided fields into the poll. The store does not
// re-validate that merged fields preserve poll invariants; closing a poll
// is just setting its status to closed.
func (s *PollStore) UpdatePoll(ctx context.Context, pollID string, updates model.UpdatePollInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfLocked(pollID)
	if idx < 0 {
		return ErrPollNotFound
	}

	next := s.polls[idx].Clone()
	if updates.Title != nil {
		next.Title = *updates.Title
	}
	if updates.Description != nil {
		next.Description = *updates.Description
	}
	if updates.Status != nil {
		next.Status = *updates.Status
	}
	if updates.Visibility != nil {
		next.Visibility = *updates.Visibility
	}
	if updates.OneVotePerUser != nil {
		next.OneVotePerUser = *updates.OneVotePerUser
	}
	if updates.ExpiresAt != nil {
		expires := *updates.ExpiresAt
		next.ExpiresAt = &expires
	}

	if err := s.persistPollsWithReplacement(ctx, idx, next); err != nil {
		return err
	}
	s.polls[idx] = next

	s.publish(events.Event{Type: events.EventPollUpdated, PollID: pollID, Payload: next.Clone()})
	return nil
}

// DeletePoll removes the poll and its options from the collection.
// Deleting an id that does not exist is a no-op, not an error.
func (s *PollStore) DeletePoll(ctx context.Context, pollID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfLocked(pollID)
	if idx < 0 {
		return nil
	}

	next := make([]*model.Poll, 0, len(s.polls)-1)
	next = append(next, s.polls[:idx]...)
	next = append(next, s.polls[idx+1:]...)
	if err := s.persistPolls(ctx, next); err != nil {
		return err
	}
	s.polls = next

	s.publish(events.Event{Type: events.EventPollDeleted, PollID: pollID})
	return nil
}

// --- Voting ---

// CastVote records one vote by the current user for an option of a poll.
// Preconditions are checked in order, each a distinct failure: a user must
// be signed in, the poll must exist, the poll must be active, a
// one-vote-per-user poll must have no ledger entry for this user yet, and
// the option must belong to the poll. The checks and the tally update run
// under one lock, so the one-vote rule has test-and-set semantics. Either
// the vote fully commits or the caller observes a failure with prior state
// unchanged.
func (s *PollStore) CastVote(ctx context.Context, pollID, optionID string) error {
	if err := simulateLatency(ctx, s.voteLatency); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return ErrAuthRequired
	}
	if s.limiter != nil && !s.limiter.allow(s.user.ID) {
		return ErrRateLimited
	}

	idx := s.indexOfLocked(pollID)
	if idx < 0 {
		return ErrPollNotFound
	}
	poll := s.polls[idx]

	if poll.Status != model.PollStatusActive {
		return ErrPollClosed
	}
	if poll.OneVotePerUser {
		if _, voted := s.ledger[s.user.ID][pollID]; voted {
			return ErrDuplicateVote
		}
	}

	next := poll.Clone()
	opt := next.Option(optionID)
	if opt == nil {
		return ErrOptionNotFound
	}
	opt.VoteCount++
	next.TotalVotes++
	next.VotedUserIDs = append(next.VotedUserIDs, s.user.ID)

	record := model.VoteRecord{
		UserID:   s.user.ID,
		PollID:   pollID,
		OptionID: optionID,
		VotedAt:  time.Now(),
	}

	// Persist before swapping the in-memory state, so a storage failure
	// leaves the prior state visible.
	if err := s.persistPollsWithReplacement(ctx, idx, next); err != nil {
		return err
	}
	if err := s.persistLedgerWith(ctx, record); err != nil {
		return err
	}

	s.polls[idx] = next
	if s.ledger[s.user.ID] == nil {
		s.ledger[s.user.ID] = make(map[string]model.VoteRecord)
	}
	s.ledger[s.user.ID][pollID] = record

	s.publish(events.Event{Type: events.EventVoteUpdate, PollID: pollID, Payload: next.Results()})
	return nil
}

// HasVoted reports whether the ledger has an entry for the current user on
// the given poll. False, not an error, when no user is signed in.
func (s *PollStore) HasVoted(pollID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return false
	}
	_, voted := s.ledger[s.user.ID][pollID]
	return voted
}

// --- Queries ---

// GetPoll returns a snapshot of the poll with the given id.
func (s *PollStore) GetPoll(pollID string) (*model.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOfLocked(pollID)
	if idx < 0 {
		return nil, ErrPollNotFound
	}
	return s.polls[idx].Clone(), nil
}

// ListPolls returns snapshots of all polls, most-recent-first.
func (s *PollStore) ListPolls() []*model.Poll {
	s.mu.Lock()
	defer s.mu.Unlock()
	polls := make([]*model.Poll, len(s.polls))
	for i, p := range s.polls {
		polls[i] = p.Clone()
	}
	return polls
}

// PollsCreatedByCurrentUser returns snapshots of the polls whose creator
// is the current user, in collection order. Empty, never an error, when no
// user is signed in.
func (s *PollStore) PollsCreatedByCurrentUser() []*model.Poll {
	s.mu.Lock()
	defer s.mu.Unlock()
	polls := []*model.Poll{}
	if s.user == nil {
		return polls
	}
	for _, p := range s.polls {
		if p.CreatorID == s.user.ID {
			polls = append(polls, p.Clone())
		}
	}
	return polls
}

// PollResults returns the aggregated tallies and percentages for a poll.
func (s *PollStore) PollResults(pollID string) (*model.PollResults, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOfLocked(pollID)
	if idx < 0 {
		return nil, ErrPollNotFound
	}
	return s.polls[idx].Results(), nil
}

// --- internals ---

func validateCreateInput(input model.CreatePollInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(input.Options) < 2 {
		return fmt.Errorf("%w: a poll must have at least two options", ErrInvalidInput)
	}
	for _, text := range input.Options {
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%w: option text must not be empty", ErrInvalidInput)
		}
	}
	return nil
}

// indexOfLocked returns the position of the poll in the collection, or -1.
func (s *PollStore) indexOfLocked(pollID string) int {
	for i, p := range s.polls {
		if p.ID == pollID {
			return i
		}
	}
	return -1
}

func (s *PollStore) persistUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("persist current user: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyCurrentUser, string(data)); err != nil {
		return fmt.Errorf("persist current user: %w", err)
	}
	return nil
}

func (s *PollStore) persistPolls(ctx context.Context, polls []*model.Poll) error {
	data, err := json.Marshal(polls)
	if err != nil {
		return fmt.Errorf("persist polls: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyPolls, string(data)); err != nil {
		return fmt.Errorf("persist polls: %w", err)
	}
	return nil
}

// persistPollsWithReplacement persists the collection as it will look with
// the poll at idx replaced, without touching the in-memory slice.
func (s *PollStore) persistPollsWithReplacement(ctx context.Context, idx int, replacement *model.Poll) error {
	polls := make([]*model.Poll, len(s.polls))
	copy(polls, s.polls)
	polls[idx] = replacement
	return s.persistPolls(ctx, polls)
}

// persistLedgerWith persists all ledger entries plus the given record.
func (s *PollStore) persistLedgerWith(ctx context.Context, extra model.VoteRecord) error {
	records := make([]model.VoteRecord, 0, len(s.ledger)+1)
	for userID, byPoll := range s.ledger {
		for pollID, rec := range byPoll {
			if userID == extra.UserID && pollID == extra.PollID {
				continue
			}
			records = append(records, rec)
		}
	}
	records = append(records, extra)

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("persist vote ledger: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyVoteLedger, string(data)); err != nil {
		return fmt.Errorf("persist vote ledger: %w", err)
	}
	return nil
}

func (s *PollStore) publish(event events.Event) {
	if s.hub != nil {
		s.hub.Publish(event)
	}
}

// simulateLatency stands in for a real network round trip. It returns the
// context error if the caller gives up while waiting, in which case the
// operation has mutated nothing.
func simulateLatency(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
