package game

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/MondherWebDev/bw-server/internal/protocol"
)

// broadcastLocked serializes event once and fans the bytes out to every
// member. Callers must hold r.mu.
func (r *Room) broadcastLocked(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().
			Str("room", r.code).
			Err(err).
			Msg("failed to marshal event")
		return
	}
	r.broadcastRawLocked(data)
}

// broadcastRawLocked delivers pre-serialized bytes to every member. A failed
// enqueue is logged and skipped; the member stays on the roster, because only
// an observed disconnect may remove it. The heartbeat sweep reaps connections
// that stay unresponsive.
func (r *Room) broadcastRawLocked(data []byte) {
	for _, m := range r.roster {
		if err := m.Peer.Enqueue(data); err != nil {
			log.Warn().
				Str("room", r.code).
				Str("conn", m.Peer.ID()).
				Err(err).
				Msg("failed to deliver event")
		}
	}
}

// unicastLocked sends event to a single peer. Callers must hold r.mu.
func (r *Room) unicastLocked(p Peer, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().
			Str("room", r.code).
			Err(err).
			Msg("failed to marshal event")
		return
	}
	if err := p.Enqueue(data); err != nil {
		log.Warn().
			Str("room", r.code).
			Str("conn", p.ID()).
			Err(err).
			Msg("failed to deliver event")
	}
}

// broadcastRosterLocked publishes the membership snapshot followed by the
// occupancy counter, in that order.
func (r *Room) broadcastRosterLocked() {
	r.broadcastLocked(protocol.Roster{T: protocol.TypeRoster, List: r.rosterSnapshotLocked()})
	r.broadcastLocked(protocol.PeerCount{T: protocol.TypePeerCount, N: len(r.roster), Max: r.maxPlayers})
}

// rosterSnapshotLocked copies the roster into wire form, preserving join
// order.
func (r *Room) rosterSnapshotLocked() []protocol.RosterEntry {
	list := make([]protocol.RosterEntry, 0, len(r.roster))
	for _, m := range r.roster {
		list = append(list, protocol.RosterEntry{Role: m.Role, Name: m.Name})
	}
	return list
}
