package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	appintegrity "tictac-arena/internal/app/integrity"
	appplayer "tictac-arena/internal/app/player"
	"tictac-arena/internal/ledger"
	"tictac-arena/internal/store"

	"github.com/go-chi/chi/v5"
)

type AdminHandlers struct {
	store   *store.Store
	players *appplayer.Service
	integ   *appintegrity.Service
	ledger  *ledger.Ledger
}

func NewAdminHandlers(st *store.Store, players *appplayer.Service, integ *appintegrity.Service, led *ledger.Ledger) *AdminHandlers {
	return &AdminHandlers{store: st, players: players, integ: integ, ledger: led}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.store.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

func (h *AdminHandlers) Players() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		resp, err := h.players.List(r.Context(), limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *AdminHandlers) EnergyLedger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		f := store.EnergyFilter{
			PlayerID: r.URL.Query().Get("player_id"),
			Reason:   r.URL.Query().Get("reason"),
		}
		if v := r.URL.Query().Get("from"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				f.From = &t
			}
		}
		if v := r.URL.Query().Get("to"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				f.To = &t
			}
		}
		items, err := h.ledger.List(r.Context(), f, limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}

func (h *AdminHandlers) Topup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PlayerID string `json:"player_id"`
			Amount   int    `json:"amount"`
			Actor    string `json:"actor"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.players.TopUp(r.Context(), appplayer.TopUpInput{
			PlayerID: body.PlayerID,
			Amount:   body.Amount,
			Actor:    body.Actor,
		})
		if err != nil {
			switch {
			case errors.Is(err, appplayer.ErrInvalidRequest):
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			case errors.Is(err, store.ErrNotFound):
				WriteHTTPError(w, http.StatusNotFound, "not_found")
			default:
				WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			}
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *AdminHandlers) Sweep() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := h.players.Sweep(r.Context(), time.Now().UTC())
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		metricSweepRunsTotal.Add(1)
		metricSweepUpdated.Add(int64(n))
		_ = json.NewEncoder(w).Encode(appplayer.SweepResponse{Updated: n})
	}
}

func (h *AdminHandlers) Flags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		f := store.FlagFilter{
			PlayerID: r.URL.Query().Get("player_id"),
			Risk:     r.URL.Query().Get("risk"),
		}
		resp, err := h.integ.ListFlags(r.Context(), f, limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *AdminHandlers) ReviewGame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.integ.ReviewGame(r.Context(), chi.URLParam(r, "game_id"), appintegrity.SourceAdmin)
		if err != nil {
			writeIntegrityError(w, err)
			return
		}
		if resp.FlagID != "" {
			metricFlagsRaisedTotal.Add(1)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *AdminHandlers) ScanPlayer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := ParsePagination(r)
		resp, err := h.integ.ScanPlayer(r.Context(), chi.URLParam(r, "player_id"), limit, appintegrity.SourceAdmin)
		if err != nil {
			writeIntegrityError(w, err)
			return
		}
		if resp.FlagID != "" {
			metricFlagsRaisedTotal.Add(1)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *AdminHandlers) TamperScan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := ParsePagination(r)
		resp, err := h.integ.TamperScan(r.Context(), chi.URLParam(r, "player_id"), limit, appintegrity.SourceAdmin)
		if err != nil {
			writeIntegrityError(w, err)
			return
		}
		if resp.FlagID != "" {
			metricFlagsRaisedTotal.Add(1)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func writeIntegrityError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appintegrity.ErrInvalidRequest):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
	case errors.Is(err, store.ErrNotFound):
		WriteHTTPError(w, http.StatusNotFound, "not_found")
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}
