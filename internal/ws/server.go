package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/rodzevich/tic-tac-toe/internal/game"
	"github.com/rodzevich/tic-tac-toe/internal/match"
	"github.com/rodzevich/tic-tac-toe/internal/store"
)

// Records is the store surface the endpoint needs: load-or-create of a
// player record by name. *store.Store satisfies it.
type Records interface {
	FindPlayer(ctx context.Context, name string) (*store.PlayerRecord, error)
	UpsertPlayer(ctx context.Context, r *store.PlayerRecord) error
}

type Server struct {
	records  Records
	coord    *match.Coordinator
	upgrader websocket.Upgrader
}

func NewServer(records Records, coord *match.Coordinator) *Server {
	return &Server{
		records:  records,
		coord:    coord,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// HandleWS establishes a player connection. Everything that can be
// rejected cheaply (missing name, duplicate identity, storage failure) is
// rejected with a JSON error body before the upgrade, so no session state
// is ever touched for a bad request.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if s.coord.IsOnline(name) {
		writeError(w, http.StatusBadRequest, "User is already online")
		return
	}

	rec, err := s.records.FindPlayer(ctx, name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		rec = &store.PlayerRecord{Name: name}
		if err := s.records.UpsertPlayer(ctx, rec); err != nil {
			log.Error().Str("player", name).Err(err).Msg("create player failed")
			writeError(w, http.StatusInternalServerError, "Storage unavailable")
			return
		}
	case err != nil:
		log.Error().Str("player", name).Err(err).Msg("load player failed")
		writeError(w, http.StatusInternalServerError, "Storage unavailable")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := newClient(conn)
	go client.writeLoop()

	player := game.NewHuman(rec, client)
	if err := s.coord.PlayerConnected(player); err != nil {
		// lost the duplicate race between the pre-upgrade check and here
		_ = client.Send(&game.ErrorMessage{Error: err.Error()})
		_ = client.Close()
		return
	}

	s.readLoop(client, player)
}

// readLoop processes inbound frames strictly in arrival order until the
// connection drops or the client asks to close.
func (s *Server) readLoop(c *Client, player *game.Player) {
	defer func() {
		_ = c.Close()
		s.coord.PlayerDisconnected(player)
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if string(msg) == "close" {
			log.Info().Str("player", player.Name()).Msg("close requested")
			return
		}

		outcome, turn, errMsg := parseRequest(msg)
		switch outcome {
		case parseDrop, parseIgnore:
			continue
		case parseError:
			player.Send(&game.ErrorMessage{Error: errMsg})
		case parseTurn:
			sess := player.Session()
			if sess == nil {
				continue
			}
			sess.SubmitTurn(player, turn.X, turn.Y)
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(game.ErrorMessage{Error: msg})
}
