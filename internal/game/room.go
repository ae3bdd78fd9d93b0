package game

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/MondherWebDev/bw-server/internal/protocol"
)

// Room capacity and gameplay policy.
const (
	MinCapacity       = 2
	MaxCapacity       = 8
	MinPlayersToStart = 2

	DefaultLang         = "ar"
	DefaultRoundSeconds = 60
)

// Peer is what the room needs from a connected player: an identity, a
// non-blocking outbound queue and a way to be closed politely. The gateway's
// connection type implements it.
type Peer interface {
	ID() string
	Enqueue(data []byte) error
	CloseNormal(reason string)
}

// Member is one roster slot. Role is authoritative: at most one member holds
// RoleHost at any time.
type Member struct {
	Peer Peer
	Role protocol.Role
	Name string
}

// JoinStatus reports how a join attempt ended.
type JoinStatus int

const (
	// JoinAccepted means the peer now occupies a roster slot.
	JoinAccepted JoinStatus = iota
	// JoinRejectedFull means the room was at capacity; the peer was told and
	// its connection scheduled to close.
	JoinRejectedFull
	// JoinRetry means the room emptied out and is being torn down; the caller
	// should resolve the code again.
	JoinRetry
)

// Room is one game session. All mutations and broadcasts happen under mu, so
// every member observes the same sequence of events regardless of how many
// connection goroutines are active.
type Room struct {
	code  string
	clock clockwork.Clock

	// destroyed flips once, when the last member leaves. The directory checks
	// it without taking mu to decide whether a cached pointer is still live.
	destroyed atomic.Bool

	mu           sync.Mutex
	maxPlayers   int
	roster       []*Member
	lang         string
	rules        protocol.RuleSet
	round        int
	totalSeconds int
	letter       string
	pendingHost  *[]string
	pendingGuest *[]string
	running      protocol.ScorePair
	history      []protocol.ScorePair
	// lastScoredRound guards against double scoring when finish and a late
	// answers submission race for the same round.
	lastScoredRound int
}

func newRoom(code string, clock clockwork.Clock, defaultCapacity int) *Room {
	return &Room{
		code:         code,
		clock:        clock,
		maxPlayers:   defaultCapacity,
		lang:         DefaultLang,
		rules:        protocol.RuleSet{RequireLetter: true, DupZero: true},
		round:        1,
		totalSeconds: DefaultRoundSeconds,
	}
}

// Code returns the room's normalized code.
func (r *Room) Code() string {
	return r.code
}

// Size returns the current roster length.
func (r *Room) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.roster)
}

// Join admits p under the given display name. The first member may size the
// room; an out-of-range or repeated capacity request is ignored. On a full
// room the peer gets a room-full notice and a normal close instead of a slot.
func (r *Room) Join(p Peer, name string, capacity int, hasCapacity bool) JoinStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed.Load() {
		return JoinRetry
	}

	if len(r.roster) == 0 && hasCapacity && capacity >= MinCapacity && capacity <= MaxCapacity {
		r.maxPlayers = capacity
	}

	if len(r.roster) >= r.maxPlayers {
		r.unicastLocked(p, protocol.RoomFull{T: protocol.TypeRoomFull, Max: r.maxPlayers})
		p.CloseNormal("room full")
		log.Info().
			Str("room", r.code).
			Str("conn", p.ID()).
			Int("max", r.maxPlayers).
			Msg("join rejected, room full")
		return JoinRejectedFull
	}

	role := protocol.RoleGuest
	if r.hostLocked() == nil {
		role = protocol.RoleHost
	}
	r.roster = append(r.roster, &Member{Peer: p, Role: role, Name: name})

	r.broadcastRosterLocked()
	r.unicastLocked(p, protocol.Joined{
		T:    protocol.TypeJoined,
		Code: r.code,
		Role: role,
		Max:  r.maxPlayers,
		List: r.rosterSnapshotLocked(),
		Lang: r.lang,
	})

	log.Info().
		Str("room", r.code).
		Str("conn", p.ID()).
		Str("name", name).
		Str("role", string(role)).
		Int("peers", len(r.roster)).
		Msg("player joined room")
	return JoinAccepted
}

// Disconnect removes p from the roster, migrating host authority to the
// oldest remaining member when the host left. It reports whether p was a
// member and whether the room is now empty; an empty room is marked destroyed
// and must be dropped by the directory.
func (r *Room) Disconnect(p Peer) (removed, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, m := range r.roster {
		if m.Peer == p {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, false
	}

	wasHost := r.roster[idx].Role == protocol.RoleHost
	name := r.roster[idx].Name
	r.roster = append(r.roster[:idx], r.roster[idx+1:]...)

	if len(r.roster) == 0 {
		r.destroyed.Store(true)
		log.Info().
			Str("room", r.code).
			Str("conn", p.ID()).
			Msg("last player left room")
		return true, true
	}

	if wasHost {
		r.roster[0].Role = protocol.RoleHost
		r.broadcastLocked(protocol.HostChanged{T: protocol.TypeHostChanged})
		log.Info().
			Str("room", r.code).
			Str("name", r.roster[0].Name).
			Msg("host migrated")
	}
	r.broadcastRosterLocked()

	log.Info().
		Str("room", r.code).
		Str("conn", p.ID()).
		Str("name", name).
		Int("peers", len(r.roster)).
		Msg("player left room")
	return true, false
}

// SendRoster unicasts the current roster snapshot to the requester only.
func (r *Room) SendRoster(p Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unicastLocked(p, protocol.Roster{T: protocol.TypeRoster, List: r.rosterSnapshotLocked()})
}

// Chat rebroadcasts text to the whole room tagged with the sender's roster
// identity. Non-members are ignored.
func (r *Room) Chat(p Peer, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.memberLocked(p)
	if m == nil {
		return
	}
	r.broadcastLocked(protocol.ChatEvent{
		T:    protocol.TypeChat,
		Text: text,
		Role: m.Role,
		Name: m.Name,
	})

	log.Debug().
		Str("room", r.code).
		Str("conn", p.ID()).
		Str("role", string(m.Role)).
		Msg("chat relayed")
}

// SetLang updates the room language and rebroadcasts the original envelope
// verbatim. Only the host may change it, and only to a supported tag.
func (r *Room) SetLang(p Peer, lang string, raw []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isHostLocked(p) {
		return
	}
	if lang != "ar" && lang != "en" {
		return
	}
	r.lang = lang
	r.broadcastRawLocked(raw)
}

// MergeRules applies a partial rule update and rebroadcasts the original
// envelope verbatim. Host only.
func (r *Room) MergeRules(p Peer, patch protocol.RulesPatch, raw []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isHostLocked(p) {
		return
	}
	if patch.RequireLetter != nil {
		r.rules.RequireLetter = *patch.RequireLetter
	}
	if patch.DupZero != nil {
		r.rules.DupZero = *patch.DupZero
	}
	r.broadcastRawLocked(raw)
}

// RebroadcastScores relays a host-authored scores envelope to the room
// without interpreting it.
func (r *Room) RebroadcastScores(p Peer, raw []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isHostLocked(p) {
		return
	}
	r.broadcastRawLocked(raw)
}

// Start opens a round. Only the host may start, and only with enough players
// present; otherwise the host alone is told how many are needed. The deadline
// is stamped server-side so all clients count down against the same clock.
func (r *Room) Start(p Peer, round, total int, letter string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isHostLocked(p) {
		return
	}
	if len(r.roster) < MinPlayersToStart {
		r.unicastLocked(p, protocol.NeedMore{T: protocol.TypeNeedMore, N: MinPlayersToStart})
		return
	}

	r.round = round
	r.totalSeconds = total
	r.letter = letter
	r.pendingHost = nil
	r.pendingGuest = nil

	deadline := r.clock.Now().Add(time.Duration(total) * time.Second).UnixMilli()
	r.broadcastLocked(protocol.StartEvent{
		T:        protocol.TypeStart,
		Round:    round,
		Letter:   letter,
		Total:    total,
		Deadline: deadline,
	})

	log.Info().
		Str("room", r.code).
		Int("round", round).
		Str("letter", letter).
		Int("total", total).
		Msg("round started")
}

// SubmitAnswers records a member's submission for the current round. The
// host's answers and the latest guest answers each fill one slot; once both
// slots are filled the round is scored immediately.
func (r *Room) SubmitAnswers(p Peer, answers []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.memberLocked(p)
	if m == nil {
		return
	}
	if m.Role == protocol.RoleHost {
		r.pendingHost = &answers
	} else {
		r.pendingGuest = &answers
	}
	if r.pendingHost != nil && r.pendingGuest != nil {
		r.scoreRoundLocked()
	}
}

// Finish ends the answering phase: the finish notice goes out, missing
// submissions default to empty, and the round is scored. Any member may
// finish.
func (r *Room) Finish(p Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.memberLocked(p) == nil {
		return
	}
	r.broadcastLocked(protocol.FinishEvent{T: protocol.TypeFinish})

	if r.pendingHost == nil {
		empty := []string{}
		r.pendingHost = &empty
	}
	if r.pendingGuest == nil {
		empty := []string{}
		r.pendingGuest = &empty
	}
	r.scoreRoundLocked()
}

// scoreRoundLocked scores the current round exactly once, no matter how many
// triggers fire for it, then publishes per-round and running totals.
func (r *Room) scoreRoundLocked() {
	if r.lastScoredRound == r.round {
		return
	}

	var hostAnswers, guestAnswers []string
	if r.pendingHost != nil {
		hostAnswers = *r.pendingHost
	}
	if r.pendingGuest != nil {
		guestAnswers = *r.pendingGuest
	}

	result := ScoreRound(hostAnswers, guestAnswers, r.letter, r.rules)
	perRound := protocol.ScorePair{Host: result.Host, Guest: result.Guest}
	r.running.Host += perRound.Host
	r.running.Guest += perRound.Guest
	r.history = append(r.history, perRound)
	r.lastScoredRound = r.round
	r.pendingHost = nil
	r.pendingGuest = nil

	r.broadcastLocked(protocol.ScoresEvent{
		T:        protocol.TypeScores,
		PerRound: perRound,
		Running:  r.running,
		Scores:   protocol.ScoreTotals{Totals: r.running},
	})

	log.Info().
		Str("room", r.code).
		Int("round", r.round).
		Int("hostDelta", perRound.Host).
		Int("guestDelta", perRound.Guest).
		Int("hostTotal", r.running.Host).
		Int("guestTotal", r.running.Guest).
		Msg("round scored")
}

func (r *Room) memberLocked(p Peer) *Member {
	for _, m := range r.roster {
		if m.Peer == p {
			return m
		}
	}
	return nil
}

func (r *Room) hostLocked() *Member {
	for _, m := range r.roster {
		if m.Role == protocol.RoleHost {
			return m
		}
	}
	return nil
}

func (r *Room) isHostLocked(p Peer) bool {
	m := r.memberLocked(p)
	return m != nil && m.Role == protocol.RoleHost
}
