package gateway

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Sweeper runs the liveness protocol: every interval it terminates
// connections that never answered the previous ping and pings the rest. A
// dead connection is therefore reaped within two intervals.
type Sweeper struct {
	registry *Registry
	clock    clockwork.Clock
	interval time.Duration
}

func NewSweeper(registry *Registry, clock clockwork.Clock, interval time.Duration) *Sweeper {
	return &Sweeper{
		registry: registry,
		clock:    clock,
		interval: interval,
	}
}

// Run ticks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	log.Info().
		Dur("interval", s.interval).
		Msg("heartbeat sweeper started")

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("heartbeat sweeper stopped")
			return
		case <-ticker.Chan():
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	conns := s.registry.Snapshot()
	pinged, terminated := 0, 0

	for _, c := range conns {
		if c.awaitingPong.Load() {
			c.Terminate("heartbeat timeout")
			terminated++
			continue
		}
		c.awaitingPong.Store(true)
		if err := c.ping(); err != nil {
			// The socket is likely gone; the flag stays set so the next
			// sweep terminates it.
			log.Debug().
				Str("conn", c.id).
				Err(err).
				Msg("ping failed")
		}
		pinged++
	}

	if terminated > 0 {
		log.Info().
			Int("pinged", pinged).
			Int("terminated", terminated).
			Msg("heartbeat sweep reaped connections")
	} else if len(conns) > 0 {
		log.Debug().
			Int("pinged", pinged).
			Msg("heartbeat sweep complete")
	}
}
