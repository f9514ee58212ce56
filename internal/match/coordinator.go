package match

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rodzevich/tic-tac-toe/internal/game"
)

var (
	ErrAlreadyOnline = errors.New("user is already online")
	ErrShuttingDown  = errors.New("server is shutting down")
)

// Coordinator is the process-wide matchmaking authority: the online
// registry, the single waiting slot with its fallback timer, and the set
// of active sessions. All three are mutated only under c.mu, and c.mu is
// never held across a call into a session, so the registry and session
// locks are never held together.
type Coordinator struct {
	records    game.Records
	maxWaiting time.Duration
	moveDelay  time.Duration

	mu       sync.Mutex
	online   map[string]*game.Player
	waiting  *game.Player
	fallback *time.Timer
	sessions map[*game.Session]struct{}
	closed   bool
}

func New(records game.Records, maxWaiting, moveDelay time.Duration) *Coordinator {
	return &Coordinator{
		records:    records,
		maxWaiting: maxWaiting,
		moveDelay:  moveDelay,
		online:     map[string]*game.Player{},
		sessions:   map[*game.Session]struct{}{},
	}
}

func (c *Coordinator) IsOnline(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.online[name]
	return ok
}

// PlayerConnected registers a freshly connected player and either pairs it
// with the waiting player or installs it as the new waiter. Pairing and
// fallback-timer cancellation happen inside one critical section, so a
// concurrently firing timer can never produce a second session for the
// same waiter.
func (c *Coordinator) PlayerConnected(p *game.Player) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrShuttingDown
	}
	if _, ok := c.online[p.Name()]; ok {
		return ErrAlreadyOnline
	}
	c.online[p.Name()] = p
	log.Info().Str("player", p.Name()).Msg("player connected")

	if c.waiting != nil {
		opponent := c.waiting
		c.waiting = nil
		c.cancelFallbackLocked()
		c.startSessionLocked(p, opponent)
		return nil
	}

	c.waiting = p
	p.Send(&game.Queued{Action: "queued"})
	c.fallback = time.AfterFunc(c.maxWaiting, func() { c.fallbackFired(p) })
	return nil
}

// fallbackFired converts a still-waiting player into a game against an
// automated opponent. If the player was paired (or left) before the timer
// could be stopped, this is a no-op.
func (c *Coordinator) fallbackFired(p *game.Player) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.waiting != p {
		return
	}
	c.waiting = nil
	c.fallback = nil
	c.startSessionLocked(p, game.NewAutomated(c.moveDelay))
}

// PlayerDisconnected handles both explicit closes and failed liveness
// probes. A waiting player releases the slot and its timer; a player
// mid-session forfeits to the opponent.
func (c *Coordinator) PlayerDisconnected(p *game.Player) {
	c.mu.Lock()
	if c.waiting == p {
		c.waiting = nil
		c.cancelFallbackLocked()
	}
	if c.online[p.Name()] == p {
		delete(c.online, p.Name())
	}
	closed := c.closed
	c.mu.Unlock()

	log.Info().Str("player", p.Name()).Msg("player disconnected")
	if closed {
		return
	}
	if sess := p.Session(); sess != nil {
		sess.Forfeit(p)
	}
}

// sessionEnded is the onEnd callback handed to every session.
func (c *Coordinator) sessionEnded(s *game.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, s)
	for _, p := range s.Players() {
		if !p.IsAutomated() && c.online[p.Name()] == p {
			delete(c.online, p.Name())
		}
	}
}

// OnlineHumans snapshots the currently online human players for the
// liveness sweep. Automated players never enter the registry.
func (c *Coordinator) OnlineHumans() []*game.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	players := make([]*game.Player, 0, len(c.online))
	for _, p := range c.online {
		if !p.IsAutomated() {
			players = append(players, p)
		}
	}
	return players
}

// Shutdown stops accepting players, releases the waiting slot and closes
// every online connection without forfeiting anyone. The liveness sweep
// must already be stopped.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	c.closed = true
	c.waiting = nil
	c.cancelFallbackLocked()
	players := make([]*game.Player, 0, len(c.online))
	for _, p := range c.online {
		players = append(players, p)
	}
	c.mu.Unlock()

	for _, p := range players {
		p.Close()
	}
	log.Info().Int("players", len(players)).Msg("coordinator shut down")
}

func (c *Coordinator) startSessionLocked(a, b *game.Player) {
	s := game.NewSession(a, b, c.records, c.sessionEnded)
	c.sessions[s] = struct{}{}
	log.Info().
		Str("game_id", s.ID()).
		Str("player_a", a.Name()).
		Str("player_b", b.Name()).
		Msg("game session created")
}

func (c *Coordinator) cancelFallbackLocked() {
	if c.fallback != nil {
		c.fallback.Stop()
		c.fallback = nil
	}
}
