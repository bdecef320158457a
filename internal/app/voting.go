package app

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nmoreno/scrumpoker/internal/domain"
)

// Every mutating voting operation returns the post-mutation snapshot,
// built under the room lock, so the caller can broadcast exactly what the
// operation produced. A failed operation mutates nothing and returns no
// snapshot.

// CastVote records a player's vote. An empty token clears the vote and is
// always accepted; a non-empty token must belong to the current scale.
// Voting stays allowed after a reveal and does not change the room status.
func (s *Service) CastVote(roomID, playerID, token string) (*RoomState, error) {
	return s.mutate(roomID, func(room *domain.Room) error {
		player, ok := room.Player(playerID)
		if !ok {
			return notFound("player not found: " + playerID)
		}
		if token != "" && !room.IsValidVote(token) {
			return invalid(fmt.Sprintf("invalid vote: %s is not in the current scale", token))
		}
		player.SetVote(token)
		return nil
	})
}

// RevealVotes transitions the room to revealed. Facilitator only.
func (s *Service) RevealVotes(roomID, playerID string) (*RoomState, error) {
	return s.mutate(roomID, func(room *domain.Room) error {
		if err := requireFacilitator(room, playerID, "only the facilitator can reveal votes"); err != nil {
			return err
		}
		room.RevealVotes()
		log.Info().Str("module", "app.voting").Str("room_id", roomID).Msg("votes revealed")
		return nil
	})
}

// ResetVotes archives the current round when applicable, clears every vote
// and returns the room to voting. Facilitator only.
func (s *Service) ResetVotes(roomID, playerID string) (*RoomState, error) {
	return s.mutate(roomID, func(room *domain.Room) error {
		if err := requireFacilitator(room, playerID, "only the facilitator can start a new round"); err != nil {
			return err
		}
		room.ResetVotes()
		log.Info().Str("module", "app.voting").Str("room_id", roomID).Int("history", len(room.History)).Msg("votes reset")
		return nil
	})
}

// SetStory names the story under estimation. Any player may set it.
func (s *Service) SetStory(roomID, storyName string) (*RoomState, error) {
	name, err := validStoryName(storyName)
	if err != nil {
		return nil, err
	}
	return s.mutate(roomID, func(room *domain.Room) error {
		room.SetStoryName(name)
		return nil
	})
}

// ToggleVotingMode flips public/anonymous. Facilitator only.
func (s *Service) ToggleVotingMode(roomID, playerID string) (*RoomState, error) {
	return s.mutate(roomID, func(room *domain.Room) error {
		if err := requireFacilitator(room, playerID, "only the facilitator can change the voting mode"); err != nil {
			return err
		}
		mode := room.ToggleVotingMode()
		log.Info().Str("module", "app.voting").Str("room_id", roomID).Str("mode", string(mode)).Msg("voting mode toggled")
		return nil
	})
}

// ChangeScale switches the room to a predefined scale. Facilitator only.
// Unknown names are stored as-is and resolve to the default scale.
func (s *Service) ChangeScale(roomID, playerID, scaleName string) (*RoomState, error) {
	return s.mutate(roomID, func(room *domain.Room) error {
		if err := requireFacilitator(room, playerID, "only the facilitator can change the voting scale"); err != nil {
			return err
		}
		room.SetScale(scaleName)
		return nil
	})
}

// SetCustomScale installs a custom scale from raw values. Facilitator only.
func (s *Service) SetCustomScale(roomID, playerID string, values []string) (*RoomState, error) {
	return s.mutate(roomID, func(room *domain.Room) error {
		if err := requireFacilitator(room, playerID, "only the facilitator can set a custom scale"); err != nil {
			return err
		}
		clean := domain.CleanScaleValues(values)
		if len(clean) < domain.MinScaleValues {
			return invalid(fmt.Sprintf("custom scale needs at least %d values", domain.MinScaleValues))
		}
		room.SetCustomScale(clean)
		return nil
	})
}

// Connect marks the player's transport as attached.
func (s *Service) Connect(roomID, playerID string) (*RoomState, error) {
	return s.mutate(roomID, func(room *domain.Room) error {
		player, ok := room.Player(playerID)
		if !ok {
			return notFound("player not found: " + playerID)
		}
		player.Reconnect()
		return nil
	})
}

// Disconnect marks the player's transport as gone. The player stays in the
// room and keeps its id for reconnection by name.
func (s *Service) Disconnect(roomID, playerID string) (*RoomState, error) {
	return s.mutate(roomID, func(room *domain.Room) error {
		player, ok := room.Player(playerID)
		if !ok {
			return notFound("player not found: " + playerID)
		}
		player.Disconnect()
		return nil
	})
}

// mutate runs fn under the room lock and snapshots the result while still
// holding it, so no other operation can interleave between mutation and
// broadcast state.
func (s *Service) mutate(roomID string, fn func(*domain.Room) error) (*RoomState, error) {
	var state *RoomState
	err := s.dir.With(roomID, func(room *domain.Room) error {
		if err := fn(room); err != nil {
			return err
		}
		state = snapshot(room)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

func requireFacilitator(room *domain.Room, playerID, msg string) error {
	player, ok := room.Player(playerID)
	if !ok {
		return notFound("player not found: " + playerID)
	}
	if !player.Facilitator {
		return unauthorized(msg)
	}
	return nil
}

func validStoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) > domain.MaxStoryNameLen {
		return "", invalid(fmt.Sprintf("story name too long (max %d characters)", domain.MaxStoryNameLen))
	}
	return name, nil
}
