package gateway

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/MondherWebDev/bw-server/internal/game"
	"github.com/MondherWebDev/bw-server/internal/protocol"
)

// Service owns the WebSocket side of the server: it upgrades requests, runs
// the per-connection pumps and routes parsed messages into the game layer.
type Service struct {
	cfg       Config
	clock     clockwork.Clock
	directory *game.Directory
	registry  *Registry
	upgrader  websocket.Upgrader
}

func NewService(cfg Config, clock clockwork.Clock, directory *game.Directory, registry *Registry) *Service {
	return &Service{
		cfg:       cfg,
		clock:     clock,
		directory: directory,
		registry:  registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
	}
}

// HandleSocket upgrades the request and hands the connection to its pumps.
// The HTTP handler returns immediately; the connection lives on in its own
// goroutines.
func (s *Service) HandleSocket(w http.ResponseWriter, r *http.Request) {
	sock, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		log.Error().
			Err(err).
			Msg("failed to upgrade connection")
		return
	}

	limiter := NewTokenBucket(s.clock, s.cfg.RateCapacity, s.cfg.RateRefillPerSec)
	c := newConnection(sock, limiter, s.cfg)
	s.registry.Register(c)

	go c.writePump()
	go c.readPump(s)

	log.Info().
		Str("conn", c.id).
		Str("remote", sock.RemoteAddr().String()).
		Msg("connection established")
}

// dispatch routes one inbound message. Malformed envelopes are dropped, join
// is only honored once per connection, and everything else requires prior
// join context.
func (s *Service) dispatch(c *Connection, raw []byte) {
	msg, err := protocol.Parse(raw)
	if err != nil {
		log.Debug().
			Str("conn", c.id).
			Err(err).
			Msg("dropping malformed message")
		return
	}

	if join, ok := msg.(protocol.Join); ok {
		if c.room != nil {
			return
		}
		code := protocol.NormalizeCode(join.Code)
		if code == "" {
			log.Debug().
				Str("conn", c.id).
				Msg("dropping join without usable room code")
			return
		}
		if room := s.directory.Join(c, code, join.Name, join.MaxPlayers, join.HasMaxPlayers); room != nil {
			c.room = room
		}
		return
	}

	if c.room == nil {
		return
	}

	switch m := msg.(type) {
	case protocol.AskRoster:
		c.room.SendRoster(c)
	case protocol.Chat:
		c.room.Chat(c, m.Text)
	case protocol.Lang:
		c.room.SetLang(c, m.Lang, raw)
	case protocol.Rules:
		c.room.MergeRules(c, m.Patch, raw)
	case protocol.Start:
		c.room.Start(c, m.Round, m.Total, m.Letter)
	case protocol.Finish:
		c.room.Finish(c)
	case protocol.Answers:
		c.room.SubmitAnswers(c, m.Answers)
	case protocol.Scores:
		c.room.RebroadcastScores(c, raw)
	}
}

// dropConnection runs once per connection, from the read pump's defer: it
// leaves the room (possibly migrating the host or destroying the room),
// unregisters and makes sure the pumps wind down.
func (s *Service) dropConnection(c *Connection) {
	s.registry.Unregister(c)
	if c.room != nil {
		s.directory.Leave(c.room, c)
		c.room = nil
	}
	c.Terminate("")

	log.Info().
		Str("conn", c.id).
		Msg("connection closed")
}
