package game

import (
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Directory maps room codes to live rooms. Rooms are created on first join
// and removed when their last member leaves; nothing else evicts them.
type Directory struct {
	clock           clockwork.Clock
	defaultCapacity int

	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewDirectory returns an empty directory whose rooms default to
// defaultCapacity players and stamp deadlines from clock.
func NewDirectory(clock clockwork.Clock, defaultCapacity int) *Directory {
	return &Directory{
		clock:           clock,
		defaultCapacity: defaultCapacity,
		rooms:           make(map[string]*Room),
	}
}

// Join resolves code to a room, creating one if needed, and admits p. It
// returns the room on success and nil when the room was full. A room caught
// mid-teardown is resolved again, so a joiner racing the last leaver lands in
// a fresh room rather than a dead one.
func (d *Directory) Join(p Peer, code, name string, capacity int, hasCapacity bool) *Room {
	for {
		room := d.getOrCreate(code)
		switch room.Join(p, name, capacity, hasCapacity) {
		case JoinAccepted:
			return room
		case JoinRejectedFull:
			return nil
		case JoinRetry:
		}
	}
}

// Leave removes p from room and drops the room from the directory once it
// empties.
func (d *Directory) Leave(room *Room, p Peer) {
	removed, empty := room.Disconnect(p)
	if !removed {
		return
	}
	if empty {
		d.remove(room)
	}
}

// Lookup returns the live room for code, if any.
func (d *Directory) Lookup(code string) (*Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	room, ok := d.rooms[code]
	return room, ok
}

// Len returns the number of live rooms.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

func (d *Directory) getOrCreate(code string) *Room {
	d.mu.Lock()
	defer d.mu.Unlock()

	if room, ok := d.rooms[code]; ok && !room.destroyed.Load() {
		return room
	}
	room := newRoom(code, d.clock, d.defaultCapacity)
	d.rooms[code] = room
	log.Info().
		Str("room", code).
		Int("max", d.defaultCapacity).
		Msg("room created")
	return room
}

// remove deletes room from the map only if the entry still points at it; a
// replacement created for the same code in the meantime is left alone.
func (d *Directory) remove(room *Room) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cur, ok := d.rooms[room.code]; ok && cur == room {
		delete(d.rooms, room.code)
		log.Info().
			Str("room", room.code).
			Msg("room destroyed")
	}
}
