package httptransport

import (
	"encoding/json"
	"net/http"

	"tictac-arena/internal/store"
)

type PublicHandlers struct {
	store *store.Store
}

func NewPublicHandlers(st *store.Store) *PublicHandlers {
	return &PublicHandlers{store: st}
}

func (h *PublicHandlers) Leaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		items, err := h.store.ListLeaderboard(r.Context(), limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}
