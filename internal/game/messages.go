package game

import (
	"context"

	"github.com/rodzevich/tic-tac-toe/internal/store"
)

// Server-to-client frames. Turn and GameFinished are personalized per
// recipient: the same event is always encoded twice, once per side, with
// "you"/"opponent" framing swapped.

type Queued struct {
	Action string `json:"action"`
}

type PlayerInfo struct {
	Name  string `json:"name"`
	Sign  string `json:"sign"`
	Wins  int    `json:"wins"`
	Loses int    `json:"loses"`
	Draws int    `json:"draws"`
	Plays int    `json:"plays"`
}

type Turn struct {
	Action   string     `json:"action"`
	GameID   string     `json:"game_id"`
	Active   string     `json:"active"` // "you" or "opponent"
	Board    Board      `json:"board"`
	You      PlayerInfo `json:"you"`
	Opponent PlayerInfo `json:"opponent"`
}

type GameFinished struct {
	Action string `json:"action"`
	GameID string `json:"game_id"`
	Winner string `json:"winner"` // "you", "opponent" or "nobody"
	Board  Board  `json:"board"`
}

type ErrorMessage struct {
	Error string `json:"error"`
}

func infoFor(p *Player) PlayerInfo {
	return PlayerInfo{
		Name:  p.Record.Name,
		Sign:  p.Sign(),
		Wins:  p.Record.Wins,
		Loses: p.Record.Loses,
		Draws: p.Record.Draws,
		Plays: p.Record.Plays,
	}
}

// Records is the persistence collaborator the session needs: name-unique
// upserts of player counters. *store.Store satisfies it.
type Records interface {
	UpsertPlayer(ctx context.Context, r *store.PlayerRecord) error
}
