package protocol

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// MessageType is the value of the `t` discriminator on every wire envelope.
type MessageType string

const (
	// client -> server
	TypeJoin      MessageType = "join"
	TypeAskRoster MessageType = "askRoster"
	TypeChat      MessageType = "chat"
	TypeLang      MessageType = "lang"
	TypeRules     MessageType = "rules"
	TypeStart     MessageType = "start"
	TypeFinish    MessageType = "finish"
	TypeAnswers   MessageType = "answers"
	TypeScores    MessageType = "scores"

	// server -> client only
	TypeJoined      MessageType = "joined"
	TypeRoomFull    MessageType = "room-full"
	TypeNeedMore    MessageType = "need-more"
	TypeRoster      MessageType = "roster"
	TypePeerCount   MessageType = "peer-count"
	TypeHostChanged MessageType = "host-changed"
)

// Role identifies a roster member's authority within a room.
type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// Boundary limits applied while decoding. Lengths count runes, not bytes,
// so Arabic text is measured the same way as Latin.
const (
	MaxNameRunes   = 32
	MaxChatRunes   = 240
	MaxLetterRunes = 2
	MaxAnswerRunes = 64
	MaxCodeRunes   = 6
)

// Inbound is the closed set of client messages. Every concrete message type
// implements it; the dispatcher type-switches over all cases.
type Inbound interface {
	inbound()
}

// Join asks to enter (or lazily create) the room named by Code. MaxPlayers is
// only meaningful when HasMaxPlayers is set, which requires the client to have
// sent an integral JSON number; range policy is enforced by the room.
type Join struct {
	Code          string
	Name          string
	MaxPlayers    int
	HasMaxPlayers bool
}

// AskRoster requests a roster snapshot for the sender's current room.
type AskRoster struct{}

// Chat carries free text to be rebroadcast to the room.
type Chat struct {
	Text string
}

// Lang sets the room language tag (host only).
type Lang struct {
	Lang string
}

// Rules carries a partial rule update (host only).
type Rules struct {
	Patch RulesPatch
}

// Start begins a round with the host-selected letter and duration.
type Start struct {
	Round  int
	Total  int
	Letter string
}

// Finish forces scoring of the current round.
type Finish struct{}

// Answers submits the sender's category answers for the current round.
type Answers struct {
	Answers []string
}

// Scores is a host-only passthrough; the dispatcher rebroadcasts the raw
// envelope verbatim, so no payload is decoded here.
type Scores struct{}

func (Join) inbound()      {}
func (AskRoster) inbound() {}
func (Chat) inbound()      {}
func (Lang) inbound()      {}
func (Rules) inbound()     {}
func (Start) inbound()     {}
func (Finish) inbound()    {}
func (Answers) inbound()   {}
func (Scores) inbound()    {}

// RulesPatch is a partial rule set; nil fields are left untouched on merge.
type RulesPatch struct {
	RequireLetter *bool `json:"requireLetter"`
	DupZero       *bool `json:"dupZero"`
}

// RuleSet is the effective scoring configuration of a room.
type RuleSet struct {
	RequireLetter bool `json:"requireLetter"`
	DupZero       bool `json:"dupZero"`
}

// Parse decodes one wire envelope into its concrete inbound message.
// Free-text fields are truncated to their boundary limits here so the rest of
// the server only ever sees bounded input.
func Parse(data []byte) (Inbound, error) {
	var env struct {
		T MessageType `json:"t"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}

	switch env.T {
	case TypeJoin:
		var m struct {
			Code       string          `json:"code"`
			Name       string          `json:"name"`
			MaxPlayers json.RawMessage `json:"maxPlayers"`
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to decode join: %w", err)
		}
		join := Join{
			Code: m.Code,
			Name: truncateRunes(m.Name, MaxNameRunes),
		}
		if v, ok := integralNumber(m.MaxPlayers); ok {
			join.MaxPlayers = v
			join.HasMaxPlayers = true
		}
		return join, nil

	case TypeAskRoster:
		return AskRoster{}, nil

	case TypeChat:
		var m struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to decode chat: %w", err)
		}
		return Chat{Text: truncateRunes(m.Text, MaxChatRunes)}, nil

	case TypeLang:
		var m struct {
			Lang string `json:"lang"`
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to decode lang: %w", err)
		}
		return Lang{Lang: m.Lang}, nil

	case TypeRules:
		var m struct {
			Rules RulesPatch `json:"rules"`
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to decode rules: %w", err)
		}
		return Rules{Patch: m.Rules}, nil

	case TypeStart:
		var m struct {
			Round  int    `json:"round"`
			Total  int    `json:"total"`
			Letter string `json:"letter"`
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to decode start: %w", err)
		}
		return Start{
			Round:  m.Round,
			Total:  m.Total,
			Letter: truncateRunes(m.Letter, MaxLetterRunes),
		}, nil

	case TypeFinish:
		return Finish{}, nil

	case TypeAnswers:
		var m struct {
			Answers json.RawMessage `json:"answers"`
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to decode answers: %w", err)
		}
		return Answers{Answers: decodeAnswers(m.Answers)}, nil

	case TypeScores:
		return Scores{}, nil

	default:
		return nil, fmt.Errorf("unknown message type %q", env.T)
	}
}

// NormalizeCode uppercases a room code, strips everything that is not an
// ASCII letter or digit and truncates to the code length limit. The empty
// string means the code was unusable and the join must be dropped.
func NormalizeCode(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == MaxCodeRunes {
				break
			}
		}
	}
	return b.String()
}

// decodeAnswers tolerates malformed submissions: anything that is not a JSON
// array becomes an empty (but present) sequence, and non-string entries become
// empty strings, which can never score.
func decodeAnswers(raw json.RawMessage) []string {
	var entries []any
	if err := json.Unmarshal(raw, &entries); err != nil {
		return []string{}
	}
	answers := make([]string, len(entries))
	for i, e := range entries {
		if s, ok := e.(string); ok {
			answers[i] = truncateRunes(s, MaxAnswerRunes)
		}
	}
	return answers
}

// integralNumber reports whether raw holds a JSON number with no fractional
// part, returning it as an int.
func integralNumber(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
