package game

import (
	"context"
	"math/rand"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/rodzevich/tic-tac-toe/internal/store"
)

// Session is the state machine for one game between exactly two players.
// It owns turn order, win/draw detection and outcome broadcasting, and is
// the only place the win/loss/draw counters change. A session is active
// from creation until the single transition to finished; nothing moves
// after that.
type Session struct {
	id      string
	records Records
	onEnd   func(*Session)

	mu        sync.Mutex
	playerA   *Player
	playerB   *Player
	board     Board
	turnA     bool // playerA is the active side
	turnCount int
	finished  bool
}

// NewSession pairs two players: first mover is chosen at random and gets
// X, both plays counters are bumped and persisted, and both sides receive
// their personalized initial turn frame before this returns.
func NewSession(a, b *Player, records Records, onEnd func(*Session)) *Session {
	s := &Session{
		id:      store.NewID(),
		records: records,
		onEnd:   onEnd,
		playerA: a,
		playerB: b,
		board:   NewBoard(),
		turnA:   rand.Intn(2) == 0,
	}

	active, waiting := s.sides()
	active.setSign(SignX)
	waiting.setSign(SignO)

	a.Record.Plays++
	b.Record.Plays++
	a.setSession(s)
	b.setSession(s)
	s.persistPlayers()

	log.Info().
		Str("game_id", s.id).
		Str("x", active.Name()).
		Str("o", waiting.Name()).
		Msg("game started")

	s.mu.Lock()
	s.broadcastTurnLocked()
	s.mu.Unlock()
	return s
}

func (s *Session) ID() string { return s.id }

// Active returns the player whose move it currently is.
func (s *Session) Active() *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	active, _ := s.sides()
	return active
}

func (s *Session) Players() [2]*Player {
	return [2]*Player{s.playerA, s.playerB}
}

func (s *Session) TurnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnCount
}

func (s *Session) BoardSnapshot() Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board
}

// sides returns (active, waiting). Callers hold s.mu except during
// construction.
func (s *Session) sides() (*Player, *Player) {
	if s.turnA {
		return s.playerA, s.playerB
	}
	return s.playerB, s.playerA
}

func (s *Session) opponent(p *Player) *Player {
	if p == s.playerA {
		return s.playerB
	}
	return s.playerA
}

// SubmitTurn applies one move. Moves from the non-active player or into an
// occupied cell are answered with an error frame to the submitter only;
// game state is untouched. The boundary layer rejects out-of-range
// coordinates before they get here; the guard below only backstops that.
func (s *Session) SubmitTurn(p *Player, x, y int) {
	s.mu.Lock()
	if s.finished || !s.board.InRange(x, y) {
		s.mu.Unlock()
		return
	}
	active, _ := s.sides()
	if p != active {
		s.mu.Unlock()
		p.Send(&ErrorMessage{Error: "Not your turn"})
		return
	}
	if s.board[x][y] != Empty {
		s.mu.Unlock()
		p.Send(&ErrorMessage{Error: "Cell is already occupied"})
		return
	}

	s.board[x][y] = p.Sign()
	s.turnCount++

	switch {
	case s.board.LineThrough(x, y):
		s.finished = true
		s.mu.Unlock()
		s.finish(p)
	case s.turnCount == 9:
		s.finished = true
		s.mu.Unlock()
		s.finish(nil)
	default:
		s.turnA = !s.turnA
		s.broadcastTurnLocked()
		s.mu.Unlock()
	}
}

// Forfeit terminates the session with the other player as winner. Used for
// disconnects; idempotent once the session is finished.
func (s *Session) Forfeit(p *Player) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	s.mu.Unlock()

	log.Info().Str("game_id", s.id).Str("player", p.Name()).Msg("player left, forfeiting")
	s.finish(s.opponent(p))
}

// finish runs exactly once per session, after finished has been set:
// update and persist both records, send the personalized outcome frames,
// detach and close both players, then report back to the coordinator.
func (s *Session) finish(winner *Player) {
	a, b := s.playerA, s.playerB
	if winner != nil {
		winner.Record.Wins++
		s.opponent(winner).Record.Loses++
	} else {
		a.Record.Draws++
		b.Record.Draws++
	}
	s.persistPlayers()

	for _, p := range []*Player{a, b} {
		outcome := "nobody"
		if winner == p {
			outcome = "you"
		} else if winner != nil {
			outcome = "opponent"
		}
		p.Send(&GameFinished{Action: "game_finished", GameID: s.id, Winner: outcome, Board: s.board})
	}

	winnerName := "nobody"
	if winner != nil {
		winnerName = winner.Name()
	}
	log.Info().
		Str("game_id", s.id).
		Str("winner", winnerName).
		Int("turns", s.turnCount).
		Msg("game finished")

	a.detach()
	b.detach()
	a.Close()
	b.Close()

	if s.onEnd != nil {
		s.onEnd(s)
	}
}

// broadcastTurnLocked sends both personalized turn frames in one step so
// neither side can observe the update without its counterpart being on the
// wire. Caller holds s.mu; sends never block (buffered writes for humans,
// timer scheduling for automated players).
func (s *Session) broadcastTurnLocked() {
	active, waiting := s.sides()
	active.Send(&Turn{
		Action:   "turn",
		GameID:   s.id,
		Active:   "you",
		Board:    s.board,
		You:      infoFor(active),
		Opponent: infoFor(waiting),
	})
	waiting.Send(&Turn{
		Action:   "turn",
		GameID:   s.id,
		Active:   "opponent",
		Board:    s.board,
		You:      infoFor(waiting),
		Opponent: infoFor(active),
	})
}

func (s *Session) persistPlayers() {
	ctx := context.Background()
	for _, p := range []*Player{s.playerA, s.playerB} {
		if err := p.Persist(ctx, s.records); err != nil {
			log.Error().Str("game_id", s.id).Str("player", p.Name()).Err(err).Msg("persist player failed")
		}
	}
}
