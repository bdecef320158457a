package app

import (
	"sort"
	"time"

	"github.com/nmoreno/scrumpoker/internal/domain"
)

// RoomSummary is the read-only view returned by the room lifecycle API.
type RoomSummary struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Status      domain.RoomStatus `json:"status"`
	PlayerCount int               `json:"player_count"`
}

// PlayerState is a player's view inside a room snapshot. The vote value is
// present only while votes are revealed.
type PlayerState struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	IsObserver    bool   `json:"is_observer"`
	IsFacilitator bool   `json:"is_facilitator"`
	Connected     bool   `json:"connected"`
	HasVoted      bool   `json:"has_voted"`
	Vote          string `json:"vote,omitempty"`
}

// HistoryEntry mirrors a StoryRecord on the wire. Individual votes appear
// only while the room's voting mode is public.
type HistoryEntry struct {
	StoryName      string            `json:"story_name"`
	VoteSummary    map[string]int    `json:"vote_summary"`
	Average        *float64          `json:"average"`
	RoundedAverage *string           `json:"rounded_average"`
	RoundNumber    int               `json:"round_number"`
	IsSuperseded   bool              `json:"is_superseded"`
	VotedAt        time.Time         `json:"voted_at"`
	Votes          map[string]string `json:"votes,omitempty"`
}

// RoomState is the full snapshot broadcast to every connected player after
// a mutating operation.
type RoomState struct {
	RoomID           string            `json:"room_id"`
	RoomName         string            `json:"room_name"`
	Status           domain.RoomStatus `json:"status"`
	VotingMode       domain.VotingMode `json:"voting_mode"`
	VotingScale      string            `json:"voting_scale"`
	CurrentScale     []string          `json:"current_scale"`
	StoryName        string            `json:"story_name"`
	Players          []PlayerState     `json:"players"`
	AllVoted         bool              `json:"all_voted"`
	History          []HistoryEntry    `json:"history"`
	TotalStoryPoints float64           `json:"total_story_points"`
	VoteSummary      map[string]int    `json:"vote_summary,omitempty"`
	Average          *float64          `json:"average,omitempty"`
	RoundedAverage   *string           `json:"rounded_average,omitempty"`
}

func summarize(room *domain.Room) *RoomSummary {
	return &RoomSummary{
		ID:          room.ID,
		Name:        room.Name,
		Status:      room.Status,
		PlayerCount: room.PlayerCount(),
	}
}

// snapshot builds the broadcast state. It must run under the room lock so
// the snapshot observes exactly the state the operation produced.
func snapshot(room *domain.Room) *RoomState {
	state := &RoomState{
		RoomID:           room.ID,
		RoomName:         room.Name,
		Status:           room.Status,
		VotingMode:       room.VotingMode,
		VotingScale:      room.ScaleName,
		CurrentScale:     room.CurrentScaleValues(),
		StoryName:        room.StoryName,
		Players:          make([]PlayerState, 0, room.PlayerCount()),
		AllVoted:         room.AllVoted(),
		History:          make([]HistoryEntry, 0, len(room.History)),
		TotalStoryPoints: room.TotalStoryPoints(),
	}

	players := make([]*domain.Player, 0, room.PlayerCount())
	for _, p := range room.Players {
		players = append(players, p)
	}
	// Join order keeps the player list stable across broadcasts.
	sort.Slice(players, func(i, j int) bool {
		if players[i].JoinedAt.Equal(players[j].JoinedAt) {
			return players[i].ID < players[j].ID
		}
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})

	for _, p := range players {
		ps := PlayerState{
			ID:            p.ID,
			Name:          p.Name,
			IsObserver:    p.Observer,
			IsFacilitator: p.Facilitator,
			Connected:     p.Connected,
			HasVoted:      p.HasVoted(),
		}
		if room.IsRevealed() {
			ps.Vote = p.Vote
		}
		state.Players = append(state.Players, ps)
	}

	for _, record := range room.History {
		entry := HistoryEntry{
			StoryName:      record.StoryName,
			VoteSummary:    record.VoteSummary,
			Average:        record.Average,
			RoundedAverage: record.RoundedAverage,
			RoundNumber:    record.RoundNumber,
			IsSuperseded:   record.Superseded,
			VotedAt:        record.VotedAt,
		}
		if !room.IsAnonymous() {
			entry.Votes = record.Votes
		}
		state.History = append(state.History, entry)
	}

	if room.IsRevealed() {
		state.VoteSummary = room.VoteSummary()
		if avg, ok := room.AverageVote(); ok {
			state.Average = &avg
			if rounded, ok := room.RoundToScale(avg); ok {
				state.RoundedAverage = &rounded
			}
		}
	}

	return state
}
