package main

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	appintegrity "tictac-arena/internal/app/integrity"
	appmatch "tictac-arena/internal/app/match"
	appplayer "tictac-arena/internal/app/player"
	"tictac-arena/internal/config"
	"tictac-arena/internal/energy"
	"tictac-arena/internal/game"
	"tictac-arena/internal/ledger"
	"tictac-arena/internal/store"
	httptransport "tictac-arena/internal/transport/http"

	"github.com/go-chi/chi/v5"
)

func newTestRouter(t *testing.T, st *store.Store, cfg config.ServerConfig) *chi.Mux {
	t.Helper()
	mgr, err := energy.NewManager(energy.Config{
		MaxLevel:      5,
		RegenPeriod:   90 * time.Minute,
		CostPerAction: 1,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	led := ledger.New(st)
	players := appplayer.NewService(st, mgr, led)
	integ := appintegrity.NewService(st, mgr, led, game.DefaultThresholds())
	matches := appmatch.NewService(st, mgr, integ)
	return httptransport.NewRouter(st, cfg, players, matches, integ)
}
