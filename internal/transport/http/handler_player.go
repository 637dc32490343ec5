package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	appplayer "tictac-arena/internal/app/player"
	"tictac-arena/internal/store"
)

type PlayerHandlers struct {
	svc *appplayer.Service
}

func NewPlayerHandlers(svc *appplayer.Service) *PlayerHandlers {
	return &PlayerHandlers{svc: svc}
}

func (h *PlayerHandlers) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.Register(r.Context(), appplayer.RegisterInput{Name: body.Name})
		if err != nil {
			if errors.Is(err, appplayer.ErrInvalidRequest) {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PlayerHandlers) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := PlayerFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		resp, err := h.svc.Me(r.Context(), p)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PlayerHandlers) Energy() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := PlayerFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		resp, err := h.svc.EnergyStatus(r.Context(), p.ID)
		if err != nil {
			writePlayerError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PlayerHandlers) EnergySchedule() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := PlayerFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var horizon time.Duration
		if v := r.URL.Query().Get("hours"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				horizon = time.Duration(n) * time.Hour
			}
		}
		resp, err := h.svc.EnergySchedule(r.Context(), p.ID, horizon)
		if err != nil {
			writePlayerError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func writePlayerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appplayer.ErrInvalidRequest):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
	case errors.Is(err, store.ErrNotFound):
		WriteHTTPError(w, http.StatusNotFound, "not_found")
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}
