package protocol

// RosterEntry is one roster row as shown to clients.
type RosterEntry struct {
	Role Role   `json:"role"`
	Name string `json:"name"`
}

// ScorePair holds a host/guest point pair, used both for single-round deltas
// and for running totals.
type ScorePair struct {
	Host  int `json:"host"`
	Guest int `json:"guest"`
}

// ScoreTotals wraps the running totals under the field name older clients
// still read.
type ScoreTotals struct {
	Totals ScorePair `json:"totals"`
}

// Joined confirms room entry to the joining client only.
type Joined struct {
	T    MessageType   `json:"t"`
	Code string        `json:"code"`
	Role Role          `json:"role"`
	Max  int           `json:"max"`
	List []RosterEntry `json:"list"`
	Lang string        `json:"lang"`
}

// RoomFull tells a rejected joiner the room is at capacity.
type RoomFull struct {
	T   MessageType `json:"t"`
	Max int         `json:"max"`
}

// NeedMore tells the host a round cannot start below the player floor.
type NeedMore struct {
	T MessageType `json:"t"`
	N int         `json:"n"`
}

// Roster is the room-wide membership snapshot.
type Roster struct {
	T    MessageType   `json:"t"`
	List []RosterEntry `json:"list"`
}

// PeerCount reports current occupancy against capacity.
type PeerCount struct {
	T   MessageType `json:"t"`
	N   int         `json:"n"`
	Max int         `json:"max"`
}

// HostChanged announces that host authority migrated after a departure.
type HostChanged struct {
	T MessageType `json:"t"`
}

// StartEvent opens a round. Deadline is absolute wall-clock time in Unix
// milliseconds so clients can render a countdown without clock negotiation.
type StartEvent struct {
	T        MessageType `json:"t"`
	Round    int         `json:"round"`
	Letter   string      `json:"letter"`
	Total    int         `json:"total"`
	Deadline int64       `json:"deadline"`
}

// FinishEvent closes the answering phase of the current round.
type FinishEvent struct {
	T MessageType `json:"t"`
}

// ScoresEvent publishes the authoritative result of a scored round. Scores
// mirrors Running for clients that predate the perRound/running split.
type ScoresEvent struct {
	T        MessageType `json:"t"`
	PerRound ScorePair   `json:"perRound"`
	Running  ScorePair   `json:"running"`
	Scores   ScoreTotals `json:"scores"`
}

// ChatEvent is a chat line tagged with the sender's roster identity.
type ChatEvent struct {
	T    MessageType `json:"t"`
	Text string      `json:"text"`
	Role Role        `json:"role"`
	Name string      `json:"name"`
}
