package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	appintegrity "tictac-arena/internal/app/integrity"
	appmatch "tictac-arena/internal/app/match"
	appplayer "tictac-arena/internal/app/player"
	"tictac-arena/internal/config"
	"tictac-arena/internal/ledger"
	"tictac-arena/internal/mcpserver"
	"tictac-arena/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func NewRouter(st *store.Store, cfg config.ServerConfig, players *appplayer.Service, matches *appmatch.Service, integ *appintegrity.Service) *chi.Mux {
	led := ledger.New(st)
	mcpSrv := mcpserver.New(st, players, matches)

	playerHandlers := NewPlayerHandlers(players)
	gameHandlers := NewGameHandlers(matches)
	publicHandlers := NewPublicHandlers(st)
	adminHandlers := NewAdminHandlers(st, players, integ, led)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())
	r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
	})
	r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", mcpSrv.Handler())
	r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", mcpSrv.Handler())
	r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", mcpSrv.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Post("/players/register", playerHandlers.Register())
		r.Get("/public/leaderboard", publicHandlers.Leaderboard())

		r.Group(func(r chi.Router) {
			r.Use(PlayerAuthMiddleware(st))
			r.Get("/me", playerHandlers.Me())
			r.Get("/me/energy", playerHandlers.Energy())
			r.Get("/me/energy/schedule", playerHandlers.EnergySchedule())
			r.Post("/games", gameHandlers.Start())
			r.Get("/games", gameHandlers.List())
			r.Get("/games/{game_id}", gameHandlers.Get())
			r.Post("/games/{game_id}/moves", gameHandlers.Move())
			r.Get("/games/{game_id}/hint", gameHandlers.Hint())
			r.Post("/games/{game_id}/forfeit", gameHandlers.Forfeit())
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Get("/players", adminHandlers.Players())
			r.Get("/energy/ledger", adminHandlers.EnergyLedger())
			r.Post("/energy/topup", adminHandlers.Topup())
			r.Post("/energy/sweep", adminHandlers.Sweep())
			r.Get("/flags", adminHandlers.Flags())
			r.Post("/games/{game_id}/review", adminHandlers.ReviewGame())
			r.Get("/players/{player_id}/scan", adminHandlers.ScanPlayer())
			r.Get("/players/{player_id}/tamper", adminHandlers.TamperScan())

			r.Route("/debug", func(r chi.Router) {
				r.Use(BodyCaptureMiddleware(4096))
				r.Get("/vars", expvar.Handler().ServeHTTP)
			})
		})
	})

	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 64)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
