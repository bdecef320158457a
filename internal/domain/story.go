package domain

import "time"

// StoryRecord is the frozen result of one completed voting round for one
// named story. Records are created by Room.ResetVotes and never mutated
// afterwards, except for the superseded flag when the story is re-estimated.
type StoryRecord struct {
	StoryName      string
	Votes          map[string]string // player name -> vote token
	VoteSummary    map[string]int    // vote token -> count
	Average        *float64
	RoundedAverage *string
	RoundNumber    int
	Superseded     bool
	VotedAt        time.Time
}

// NewStoryRecord copies the vote maps so the record stays immutable even if
// the caller keeps mutating its own maps.
func NewStoryRecord(
	storyName string,
	votes map[string]string,
	voteSummary map[string]int,
	average *float64,
	roundedAverage *string,
	roundNumber int,
) *StoryRecord {
	votesCopy := make(map[string]string, len(votes))
	for name, vote := range votes {
		votesCopy[name] = vote
	}
	summaryCopy := make(map[string]int, len(voteSummary))
	for token, count := range voteSummary {
		summaryCopy[token] = count
	}
	return &StoryRecord{
		StoryName:      storyName,
		Votes:          votesCopy,
		VoteSummary:    summaryCopy,
		Average:        average,
		RoundedAverage: roundedAverage,
		RoundNumber:    roundNumber,
		VotedAt:        time.Now(),
	}
}

func (s *StoryRecord) TotalVoters() int { return len(s.Votes) }

// Consensus returns the single token everyone voted, if the round was
// unanimous.
func (s *StoryRecord) Consensus() (string, bool) {
	if len(s.Votes) == 0 {
		return "", false
	}
	first := ""
	for _, vote := range s.Votes {
		if first == "" {
			first = vote
			continue
		}
		if vote != first {
			return "", false
		}
	}
	return first, true
}

func (s *StoryRecord) HasNumericAverage() bool { return s.Average != nil }
