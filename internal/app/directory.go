package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/nmoreno/scrumpoker/internal/domain"
)

// Directory is the process-wide keyed store of rooms. It is constructed
// explicitly in main and injected into the service; there is no ambient
// singleton.
//
// Each room carries its own lock so that one operation's "mutate plus
// snapshot" is atomic relative to other operations on the same room, while
// unrelated rooms proceed in parallel.
type Directory struct {
	mu    sync.RWMutex
	rooms map[string]*roomEntry
}

type roomEntry struct {
	mu   sync.Mutex
	room *domain.Room
}

func NewDirectory() *Directory {
	return &Directory{rooms: make(map[string]*roomEntry)}
}

// Save registers a room. Saving an existing id replaces the aggregate but
// keeps its lock, so in-flight operations finish against the old state.
func (d *Directory) Save(room *domain.Room) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if entry, ok := d.rooms[room.ID]; ok {
		entry.room = room
		return
	}
	d.rooms[room.ID] = &roomEntry{room: room}
	log.Info().Str("module", "app.directory").Str("room_id", room.ID).Str("name", room.Name).Msg("room saved")
}

// With runs fn with the room locked. Every operation that touches room
// state goes through here.
func (d *Directory) With(roomID string, fn func(*domain.Room) error) error {
	d.mu.RLock()
	entry, ok := d.rooms[roomID]
	d.mu.RUnlock()
	if !ok {
		return notFound("room not found: " + roomID)
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.room)
}

func (d *Directory) Exists(roomID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.rooms[roomID]
	return ok
}

func (d *Directory) Delete(roomID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.rooms[roomID]; !ok {
		return false
	}
	delete(d.rooms, roomID)
	log.Info().Str("module", "app.directory").Str("room_id", roomID).Msg("room deleted")
	return true
}

func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

// IDs returns the ids of all rooms, in no particular order.
func (d *Directory) IDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]string, 0, len(d.rooms))
	for id := range d.rooms {
		ids = append(ids, id)
	}
	return ids
}
