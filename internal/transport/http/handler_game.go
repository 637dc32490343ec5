package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	appmatch "tictac-arena/internal/app/match"
	"tictac-arena/internal/store"

	"github.com/go-chi/chi/v5"
)

type GameHandlers struct {
	svc *appmatch.Service
}

func NewGameHandlers(svc *appmatch.Service) *GameHandlers {
	return &GameHandlers{svc: svc}
}

func (h *GameHandlers) Start() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := PlayerFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		resp, err := h.svc.Start(r.Context(), p)
		if err != nil {
			writeGameError(w, err)
			return
		}
		metricGamesStartedTotal.Add(1)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *GameHandlers) Move() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := PlayerFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body struct {
			Position int `json:"position"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.Move(r.Context(), p, appmatch.MoveInput{
			GameID:   chi.URLParam(r, "game_id"),
			Position: body.Position,
		})
		if err != nil {
			writeGameError(w, err)
			return
		}
		metricMovesPlayedTotal.Add(1)
		if resp.BotMove != nil {
			metricMovesPlayedTotal.Add(1)
		}
		if resp.Game.Status != store.GameStatusOngoing {
			metricGamesFinishedTotal.Add(1)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *GameHandlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := PlayerFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		resp, err := h.svc.Get(r.Context(), p, chi.URLParam(r, "game_id"))
		if err != nil {
			writeGameError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *GameHandlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := PlayerFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		limit, offset := ParsePagination(r)
		resp, err := h.svc.List(r.Context(), p, r.URL.Query().Get("status"), limit, offset)
		if err != nil {
			writeGameError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *GameHandlers) Hint() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := PlayerFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		resp, err := h.svc.Hint(r.Context(), p, chi.URLParam(r, "game_id"))
		if err != nil {
			writeGameError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *GameHandlers) Forfeit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := PlayerFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		resp, err := h.svc.Forfeit(r.Context(), p, chi.URLParam(r, "game_id"))
		if err != nil {
			writeGameError(w, err)
			return
		}
		metricGamesFinishedTotal.Add(1)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// writeGameError maps the match sentinels onto the API's status codes.
// Insufficient energy and moves on finished games are conflicts, not client
// syntax errors; illegal moves are well-formed but unprocessable.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appmatch.ErrInvalidRequest):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
	case errors.Is(err, appmatch.ErrInsufficientEnergy):
		WriteHTTPError(w, http.StatusConflict, "energy_insufficient")
	case errors.Is(err, appmatch.ErrIllegalMove):
		WriteHTTPError(w, http.StatusUnprocessableEntity, "illegal_move")
	case errors.Is(err, appmatch.ErrGameOver):
		WriteHTTPError(w, http.StatusConflict, "game_over")
	case errors.Is(err, store.ErrNotFound):
		WriteHTTPError(w, http.StatusNotFound, "not_found")
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}
