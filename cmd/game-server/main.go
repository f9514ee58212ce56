package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rodzevich/tic-tac-toe/internal/config"
	"github.com/rodzevich/tic-tac-toe/internal/logging"
	"github.com/rodzevich/tic-tac-toe/internal/match"
	"github.com/rodzevich/tic-tac-toe/internal/store"
	"github.com/rodzevich/tic-tac-toe/internal/ws"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(cfg.Log); err != nil {
		panic(err)
	}

	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}
	if err := st.EnsureSchema(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("ensure schema failed")
	}

	coord := match.New(st, cfg.Server.MaxWaiting(), cfg.Server.AIMoveDelay())
	liveness := match.NewLiveness(coord, cfg.Server.PingInterval())
	liveness.Start()

	wsServer := ws.NewServer(st, coord)
	server := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: newRouter(st, wsServer),
	}

	go func() {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("game server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	// Order matters: stop probing first, then drop connections without
	// forfeiting anyone, then release the database.
	liveness.Stop()
	coord.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	st.Close()
}
