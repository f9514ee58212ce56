package game

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rodzevich/tic-tac-toe/internal/store"
)

// Conn is the transport side of a human player. Implemented by the
// websocket client; replaced by fakes in tests.
type Conn interface {
	Send(v any) error
	Ping() error
	Close() error
}

type Kind int

const (
	Human Kind = iota
	Automated
)

// AutomatedName is the display name of the synthetic opponent. Automated
// players never join the online registry, so a human using the same name
// cannot collide with one.
const AutomatedName = "AI"

// Player is the runtime identity for one side of a session: a record
// snapshot plus either a real connection (Human) or the delayed
// random-mover (Automated). Behavior differences between the two kinds are
// dispatched here, not through the session.
type Player struct {
	Record *store.PlayerRecord

	kind      Kind
	conn      Conn
	moveDelay time.Duration

	mu        sync.Mutex
	sign      string
	session   *Session
	moveTimer *time.Timer
}

func NewHuman(rec *store.PlayerRecord, conn Conn) *Player {
	return &Player{Record: rec, kind: Human, conn: conn}
}

func NewAutomated(moveDelay time.Duration) *Player {
	return &Player{
		Record:    &store.PlayerRecord{Name: AutomatedName},
		kind:      Automated,
		moveDelay: moveDelay,
	}
}

func (p *Player) Name() string { return p.Record.Name }

func (p *Player) IsAutomated() bool { return p.kind == Automated }

func (p *Player) Sign() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sign
}

func (p *Player) setSign(sign string) {
	p.mu.Lock()
	p.sign = sign
	p.mu.Unlock()
}

// Session returns the weak back-reference to the game the player is in,
// or nil once the session has been torn down.
func (p *Player) Session() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

func (p *Player) setSession(s *Session) {
	p.mu.Lock()
	p.session = s
	p.mu.Unlock()
}

// detach clears the session reference and cancels any pending automated
// move. Called only by session teardown.
func (p *Player) detach() {
	p.mu.Lock()
	p.session = nil
	if p.moveTimer != nil {
		p.moveTimer.Stop()
		p.moveTimer = nil
	}
	p.mu.Unlock()
}

// Send delivers a server frame to the player. For humans a transport
// failure is logged and swallowed: the liveness sweep surfaces the broken
// connection on its next cycle. For automated players the frame is
// inspected instead and may schedule a move.
func (p *Player) Send(msg any) {
	if p.kind == Automated {
		p.onNotify(msg)
		return
	}
	if err := p.conn.Send(msg); err != nil {
		log.Info().Str("player", p.Name()).Err(err).Msg("connection is broken")
	}
}

// Ping probes the transport. Always healthy for automated players.
func (p *Player) Ping() error {
	if p.kind == Automated {
		return nil
	}
	return p.conn.Ping()
}

// Close shuts the transport down. No-op for automated players.
func (p *Player) Close() {
	if p.kind == Automated {
		return
	}
	if err := p.conn.Close(); err != nil {
		log.Debug().Str("player", p.Name()).Err(err).Msg("close failed")
	}
}

// Persist writes the player's record. Automated players are stateless
// across games and are never stored.
func (p *Player) Persist(ctx context.Context, records Records) error {
	if p.kind == Automated {
		return nil
	}
	return records.UpsertPlayer(ctx, p.Record)
}

// onNotify reacts to board notifications addressed to the automated player
// as the active side: pick any empty cell uniformly at random, then submit
// it after the configured thinking delay through the same validation path
// a human submission takes.
func (p *Player) onNotify(msg any) {
	t, ok := msg.(*Turn)
	if !ok || t.Active != "you" {
		return
	}
	x, y, ok := chooseMove(t.Board)
	if !ok {
		return
	}
	p.mu.Lock()
	if p.session == nil {
		p.mu.Unlock()
		return
	}
	p.moveTimer = time.AfterFunc(p.moveDelay, func() {
		if s := p.Session(); s != nil {
			s.SubmitTurn(p, x, y)
		}
	})
	p.mu.Unlock()
}
