package store

import (
	"time"

	"pollstore/model"
)

// defaultSeedPolls builds the sample dataset loaded when the durable store
// has no poll collection yet.
func defaultSeedPolls() []*model.Poll {
	now := time.Now()
	weekAway := now.Add(7 * 24 * time.Hour)
	duration := 7 * 24

	return []*model.Poll{
		{
			ID:          "seed-poll-languages",
			Title:       "What is your favorite programming language?",
			Description: "Pick the language you reach for first on a new project.",
			Options: []model.PollOption{
				{ID: "seed-opt-go", Text: "Go", VoteCount: 10},
				{ID: "seed-opt-python", Text: "Python", VoteCount: 8},
				{ID: "seed-opt-java", Text: "Java", VoteCount: 6},
				{ID: "seed-opt-js", Text: "JavaScript", VoteCount: 9},
				{ID: "seed-opt-cpp", Text: "C++", VoteCount: 4},
			},
			CreatorID:      "seed-user-demo",
			CreatorName:    "Demo Team",
			Status:         model.PollStatusActive,
			Visibility:     model.VisibilityPublic,
			OneVotePerUser: true,
			DurationHours:  &duration,
			CreatedAt:      now,
			ExpiresAt:      &weekAway,
			TotalVotes:     37,
			VotedUserIDs:   []string{},
		},
		{
			ID:          "seed-poll-standup",
			Title:       "When should the team standup move to?",
			Description: "",
			Options: []model.PollOption{
				{ID: "seed-opt-0900", Text: "09:00", VoteCount: 0},
				{ID: "seed-opt-1000", Text: "10:00", VoteCount: 0},
				{ID: "seed-opt-1400", Text: "14:00", VoteCount: 0},
			},
			CreatorID:      "seed-user-demo",
			CreatorName:    "Demo Team",
			Status:         model.PollStatusActive,
			Visibility:     model.VisibilityPublic,
			OneVotePerUser: false,
			CreatedAt:      now.Add(-time.Hour),
			TotalVotes:     0,
			VotedUserIDs:   []string{},
		},
	}
}
