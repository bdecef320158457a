// Package app is the operation layer: validated entry points that resolve
// rooms from the directory, apply the business rules and hand back the
// snapshot to broadcast.
package app

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nmoreno/scrumpoker/internal/domain"
)

// MaxPlayersPerRoom caps distinct participants; reconnects by name are
// exempt.
const MaxPlayersPerRoom = 20

// Service exposes every room operation. All methods are safe for
// concurrent use; per-room serialization comes from the directory.
type Service struct {
	dir   *Directory
	newID func() string
}

func NewService(dir *Directory) *Service {
	return &Service{
		dir: dir,
		// Short ids keep the room URL shareable, as 8 chars of a uuid.
		newID: func() string { return uuid.NewString()[:8] },
	}
}

// JoinResult identifies the player inside the room after a join, whether
// fresh or reconnected.
type JoinResult struct {
	RoomID      string `json:"room_id"`
	PlayerID    string `json:"player_id"`
	PlayerName  string `json:"player_name"`
	Reconnected bool   `json:"-"`
}

// CreateRoom validates the name and registers a fresh room.
func (s *Service) CreateRoom(name string) (*RoomSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("room name cannot be empty")
	}
	if len(name) > domain.MaxRoomNameLen {
		return nil, invalid(fmt.Sprintf("room name too long (max %d characters)", domain.MaxRoomNameLen))
	}

	room := domain.NewRoom(s.newID(), name)
	s.dir.Save(room)
	log.Info().Str("module", "app.service").Str("room_id", room.ID).Str("name", name).Msg("room created")
	return summarize(room), nil
}

// ListRooms returns a summary of every active room.
func (s *Service) ListRooms() []*RoomSummary {
	ids := s.dir.IDs()
	summaries := make([]*RoomSummary, 0, len(ids))
	for _, id := range ids {
		_ = s.dir.With(id, func(room *domain.Room) error {
			summaries = append(summaries, summarize(room))
			return nil
		})
	}
	return summaries
}

func (s *Service) GetRoom(roomID string) (*RoomSummary, error) {
	var summary *RoomSummary
	err := s.dir.With(roomID, func(room *domain.Room) error {
		summary = summarize(room)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *Service) DeleteRoom(roomID string) error {
	if !s.dir.Delete(roomID) {
		return notFound("room not found: " + roomID)
	}
	return nil
}

// JoinRoom adds a player to a room. A player whose name already exists in
// the room (case-insensitive) is reconnected instead: same id, observer
// flag refreshed, no effect on the room cap. The first player of an empty
// room becomes the facilitator; the flag is never reassigned afterwards.
func (s *Service) JoinRoom(roomID, playerName string, observer bool) (*JoinResult, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, invalid("player name cannot be empty")
	}
	if len(playerName) > domain.MaxPlayerNameLen {
		return nil, invalid(fmt.Sprintf("player name too long (max %d characters)", domain.MaxPlayerNameLen))
	}

	var result *JoinResult
	err := s.dir.With(roomID, func(room *domain.Room) error {
		if existing, ok := room.FindPlayerByName(playerName); ok {
			existing.Reconnect()
			existing.Observer = observer
			result = &JoinResult{
				RoomID:      roomID,
				PlayerID:    existing.ID,
				PlayerName:  existing.Name,
				Reconnected: true,
			}
			log.Info().Str("module", "app.service").Str("room_id", roomID).Str("player_id", existing.ID).Msg("player reconnected")
			return nil
		}

		if room.PlayerCount() >= MaxPlayersPerRoom {
			return invalid(fmt.Sprintf("room is full (max %d players)", MaxPlayersPerRoom))
		}

		player := domain.NewPlayer(s.newID(), playerName, observer, room.PlayerCount() == 0)
		room.AddPlayer(player)
		result = &JoinResult{
			RoomID:     roomID,
			PlayerID:   player.ID,
			PlayerName: player.Name,
		}
		log.Info().Str("module", "app.service").Str("room_id", roomID).Str("player_id", player.ID).Str("name", playerName).Bool("facilitator", player.Facilitator).Msg("player joined")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Snapshot returns the current broadcast state of a room without mutating
// anything.
func (s *Service) Snapshot(roomID string) (*RoomState, error) {
	var state *RoomState
	err := s.dir.With(roomID, func(room *domain.Room) error {
		state = snapshot(room)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}
