package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Pusher is the send side of a player's channel. Owned by the adapter; the
// adapter must Close() it.
type Pusher interface {
	TrySend([]byte) error
	Close()
}

// Registry tracks the live connection of every player, keyed room first.
// Delivery is fire-and-forget: a failed send drops that connection and
// never fails the triggering operation.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Pusher
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[string]Pusher)}
}

// Register attaches a player's connection, replacing (and closing) any
// previous one for the same player.
func (r *Registry) Register(roomID, playerID string, conn Pusher) {
	r.mu.Lock()
	old := r.rooms[roomID][playerID]
	if r.rooms[roomID] == nil {
		r.rooms[roomID] = make(map[string]Pusher)
	}
	r.rooms[roomID][playerID] = conn
	r.mu.Unlock()

	if old != nil {
		old.Close()
	}
	log.Info().Str("module", "ws.registry").Str("room_id", roomID).Str("player_id", playerID).Msg("connection registered")
}

// Unregister detaches a player's connection if the given one is still
// current. Empty room buckets are removed.
func (r *Registry) Unregister(roomID, playerID string, conn Pusher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.rooms[roomID][playerID]
	if !ok || (conn != nil && current != conn) {
		return
	}
	delete(r.rooms[roomID], playerID)
	if len(r.rooms[roomID]) == 0 {
		delete(r.rooms, roomID)
	}
	log.Info().Str("module", "ws.registry").Str("room_id", roomID).Str("player_id", playerID).Msg("connection unregistered")
}

// SendTo delivers a message to one player. Returns false when the player
// has no live connection or the send failed (the connection is dropped).
func (r *Registry) SendTo(roomID, playerID string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "ws.registry").Msg("marshal")
		return false
	}

	r.mu.RLock()
	conn, ok := r.rooms[roomID][playerID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if err := conn.TrySend(data); err != nil {
		r.Unregister(roomID, playerID, conn)
		return false
	}
	return true
}

// Broadcast fans a message out to every connection in the room. Failed
// recipients are silently dropped from the registry.
func (r *Registry) Broadcast(roomID string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "ws.registry").Msg("marshal")
		return
	}

	type target struct {
		playerID string
		conn     Pusher
	}
	r.mu.RLock()
	targets := make([]target, 0, len(r.rooms[roomID]))
	for playerID, conn := range r.rooms[roomID] {
		targets = append(targets, target{playerID, conn})
	}
	r.mu.RUnlock()

	for _, t := range targets {
		if err := t.conn.TrySend(data); err != nil {
			log.Warn().Str("module", "ws.registry").Str("room_id", roomID).Str("player_id", t.playerID).Msg("dropping slow or closed connection")
			r.Unregister(roomID, t.playerID, t.conn)
		}
	}
}

func (r *Registry) ConnectionCount(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

func (r *Registry) IsConnected(roomID, playerID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[roomID][playerID]
	return ok
}
