package main

import (
	"context"
	"errors"
	"log"

	"pollstore/config"
	"pollstore/events"
	"pollstore/store"
	"pollstore/storage"
)

// A scripted session exercising the store end to end: restore state, start
// a guest session, cast a vote on the newest poll and print the results.
func main() {
	cfg := config.Load()

	kv, err := storage.Open(cfg)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer kv.Close()

	hub := events.NewHub()
	ctx := context.Background()

	s, err := store.New(ctx, kv, cfg, hub)
	if err != nil {
		log.Fatalf("init poll store: %v", err)
	}

	user := s.CurrentUser()
	if user == nil {
		user, err = s.ContinueAsGuest(ctx)
		if err != nil {
			log.Fatalf("start guest session: %v", err)
		}
		log.Printf("started guest session: %s", user.ID)
	} else {
		log.Printf("restored session for %s (%s)", user.Name, user.ID)
	}

	polls := s.ListPolls()
	if len(polls) == 0 {
		log.Println("no polls available")
		return
	}
	log.Printf("%d polls available", len(polls))

	poll := polls[0]
	log.Printf("newest poll: %q with %d options", poll.Title, len(poll.Options))

	updates, cancel := hub.Subscribe(poll.ID, 4)
	defer cancel()

	if s.HasVoted(poll.ID) {
		log.Printf("already voted on %q", poll.Title)
	} else {
		if err := s.CastVote(ctx, poll.ID, poll.Options[0].ID); err != nil {
			if errors.Is(err, store.ErrDuplicateVote) || errors.Is(err, store.ErrPollClosed) {
				log.Printf("vote rejected: %v", err)
			} else {
				log.Fatalf("cast vote: %v", err)
			}
		} else {
			log.Printf("voted for %q", poll.Options[0].Text)
			update := <-updates
			log.Printf("received %s event for poll %s", update.Type, update.PollID)
		}
	}

	results, err := s.PollResults(poll.ID)
	if err != nil {
		log.Fatalf("poll results: %v", err)
	}
	for _, opt := range results.Options {
		log.Printf("  %-20s %4d votes (%.1f%%)", opt.Text, opt.VoteCount, opt.Percentage)
	}
	log.Printf("total votes: %d", results.TotalVotes)
}
