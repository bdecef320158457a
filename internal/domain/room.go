// Package domain holds the Scrum Poker aggregate and its entities. Nothing
// in here is safe for concurrent use; callers serialize access per room.
package domain

import (
	"strconv"
	"strings"
	"time"
)

// RoomStatus is the voting state machine of a room.
type RoomStatus string

const (
	StatusVoting   RoomStatus = "voting"
	StatusRevealed RoomStatus = "revealed"
)

// VotingMode controls whether individual votes are attributed by name in
// the shared history.
type VotingMode string

const (
	ModePublic    VotingMode = "public"
	ModeAnonymous VotingMode = "anonymous"
)

// Validation limits shared by the operation layer and the boundaries.
const (
	MaxRoomNameLen   = 100
	MaxPlayerNameLen = 50
	MaxStoryNameLen  = 200
)

// Room is the aggregate root of one estimation session: it owns the
// players, the current scale, the active story and the estimation history.
type Room struct {
	ID          string
	Name        string
	CreatedAt   time.Time
	Status      RoomStatus
	VotingMode  VotingMode
	Players     map[string]*Player
	StoryName   string
	History     []*StoryRecord
	ScaleName   string
	CustomScale []string
}

// NewRoom creates a room in the initial voting state with the default scale.
func NewRoom(id, name string) *Room {
	return &Room{
		ID:         id,
		Name:       name,
		CreatedAt:  time.Now(),
		Status:     StatusVoting,
		VotingMode: ModePublic,
		Players:    make(map[string]*Player),
		ScaleName:  DefaultScaleName,
	}
}

// --- player management ---

func (r *Room) AddPlayer(p *Player) { r.Players[p.ID] = p }

func (r *Room) RemovePlayer(playerID string) { delete(r.Players, playerID) }

func (r *Room) Player(playerID string) (*Player, bool) {
	p, ok := r.Players[playerID]
	return p, ok
}

// FindPlayerByName matches a display name case-insensitively. The join flow
// keeps names unique, so at most one player can match.
func (r *Room) FindPlayerByName(name string) (*Player, bool) {
	for _, p := range r.Players {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return nil, false
}

// Facilitator returns the room's facilitator, if any remains.
func (r *Room) Facilitator() (*Player, bool) {
	for _, p := range r.Players {
		if p.Facilitator {
			return p, true
		}
	}
	return nil, false
}

// ActiveVoters are the connected non-observer players.
func (r *Room) ActiveVoters() []*Player {
	voters := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.CanVote() {
			voters = append(voters, p)
		}
	}
	return voters
}

func (r *Room) ConnectedPlayers() []*Player {
	connected := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Connected {
			connected = append(connected, p)
		}
	}
	return connected
}

func (r *Room) PlayerCount() int { return len(r.Players) }

// AllVoted reports whether every active voter has cast a vote. An empty
// set of active voters is never "all voted".
func (r *Room) AllVoted() bool {
	voters := r.ActiveVoters()
	if len(voters) == 0 {
		return false
	}
	for _, p := range voters {
		if !p.HasVoted() {
			return false
		}
	}
	return true
}

// --- scale management ---

// CurrentScale returns the effective scale: the custom one when set,
// otherwise the predefined scale by name.
func (r *Room) CurrentScale() Scale {
	if len(r.CustomScale) > 0 {
		return Scale{Name: "custom", Values: r.CustomScale}
	}
	return PredefinedScale(r.ScaleName)
}

func (r *Room) CurrentScaleValues() []string { return r.CurrentScale().Values }

// SetScale switches to a predefined scale and discards any custom values.
func (r *Room) SetScale(name string) {
	r.ScaleName = name
	r.CustomScale = nil
}

// SetCustomScale installs a custom scale. The values must already satisfy
// the minimum-size rule; the operation layer validates raw input.
func (r *Room) SetCustomScale(values []string) {
	r.CustomScale = CleanScaleValues(values)
	r.ScaleName = "custom"
}

func (r *Room) IsValidVote(token string) bool {
	return r.CurrentScale().Contains(token)
}

func (r *Room) RoundToScale(value float64) (string, bool) {
	return r.CurrentScale().Round(value)
}

// --- voting flow ---

// RevealVotes transitions to the revealed state. Revealing twice is a no-op.
func (r *Room) RevealVotes() { r.Status = StatusRevealed }

func (r *Room) IsRevealed() bool { return r.Status == StatusRevealed }

func (r *Room) IsVoting() bool { return r.Status == StatusVoting }

// VoteSummary tallies non-observer votes by token, only once revealed.
func (r *Room) VoteSummary() map[string]int {
	summary := make(map[string]int)
	if r.Status != StatusRevealed {
		return summary
	}
	for _, p := range r.Players {
		if !p.Observer && p.HasVoted() {
			summary[p.Vote]++
		}
	}
	return summary
}

// AverageVote is the mean of the numeric non-observer votes, only once
// revealed. Symbolic votes like "?" and "☕" are skipped.
func (r *Room) AverageVote() (float64, bool) {
	if r.Status != StatusRevealed {
		return 0, false
	}
	sum := 0.0
	count := 0
	for _, p := range r.Players {
		if p.Observer || !p.HasVoted() {
			continue
		}
		if n, err := strconv.ParseFloat(p.Vote, 64); err == nil {
			sum += n
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// ToggleVotingMode flips between public and anonymous and returns the new
// mode. The voting status is unaffected.
func (r *Room) ToggleVotingMode() VotingMode {
	if r.VotingMode == ModePublic {
		r.VotingMode = ModeAnonymous
	} else {
		r.VotingMode = ModePublic
	}
	return r.VotingMode
}

func (r *Room) IsAnonymous() bool { return r.VotingMode == ModeAnonymous }

// --- story management ---

func (r *Room) SetStoryName(name string) { r.StoryName = name }

// archiveStory appends a record for the story, marking every earlier record
// of the same story as superseded and numbering the new round one past the
// highest previous round.
func (r *Room) archiveStory(
	storyName string,
	votes map[string]string,
	voteSummary map[string]int,
	average *float64,
	roundedAverage *string,
) {
	roundNumber := 1
	for _, record := range r.History {
		if record.StoryName == storyName {
			record.Superseded = true
			if record.RoundNumber+1 > roundNumber {
				roundNumber = record.RoundNumber + 1
			}
		}
	}
	r.History = append(r.History, NewStoryRecord(
		storyName, votes, voteSummary, average, roundedAverage, roundNumber,
	))
}

// ResetVotes archives the current round (when a story is active and at
// least one vote was cast), then clears all votes and the story name and
// returns the room to the voting state.
func (r *Room) ResetVotes() {
	if r.StoryName != "" {
		votes := make(map[string]string)
		voteSummary := make(map[string]int)
		numericSum := 0.0
		numericCount := 0

		for _, p := range r.Players {
			if p.Observer || !p.HasVoted() {
				continue
			}
			votes[p.Name] = p.Vote
			voteSummary[p.Vote]++
			if n, err := strconv.ParseFloat(p.Vote, 64); err == nil {
				numericSum += n
				numericCount++
			}
		}

		if len(votes) > 0 {
			var average *float64
			var roundedAverage *string
			if numericCount > 0 {
				avg := numericSum / float64(numericCount)
				average = &avg
				if rounded, ok := r.RoundToScale(avg); ok {
					roundedAverage = &rounded
				}
			}
			r.archiveStory(r.StoryName, votes, voteSummary, average, roundedAverage)
		}
	}

	for _, p := range r.Players {
		p.ClearVote()
	}
	r.StoryName = ""
	r.Status = StatusVoting
}

// TotalStoryPoints sums the numeric rounded averages of the records still
// in force. Superseded rounds and non-numeric results are skipped.
func (r *Room) TotalStoryPoints() float64 {
	total := 0.0
	for _, record := range r.History {
		if record.Superseded || record.RoundedAverage == nil {
			continue
		}
		if n, err := strconv.ParseFloat(*record.RoundedAverage, 64); err == nil {
			total += n
		}
	}
	return total
}
