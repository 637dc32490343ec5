package main

import (
	"context"
	"net/http"
	"time"

	appintegrity "tictac-arena/internal/app/integrity"
	appmatch "tictac-arena/internal/app/match"
	appplayer "tictac-arena/internal/app/player"
	"tictac-arena/internal/config"
	"tictac-arena/internal/energy"
	"tictac-arena/internal/ledger"
	"tictac-arena/internal/logging"
	"tictac-arena/internal/store"
	httptransport "tictac-arena/internal/transport/http"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	mgr, err := energy.NewManager(cfg.Engine.Energy(), log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid energy config")
	}
	led := ledger.New(st)
	players := appplayer.NewService(st, mgr, led)
	integ := appintegrity.NewService(st, mgr, led, cfg.Engine.Thresholds())
	matches := appmatch.NewService(st, mgr, integ)

	if cfg.Server.SweepIntervalSecs > 0 {
		players.StartSweeper(context.Background(), time.Duration(cfg.Server.SweepIntervalSecs)*time.Second)
	}

	r := httptransport.NewRouter(st, cfg.Server, players, matches, integ)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}
