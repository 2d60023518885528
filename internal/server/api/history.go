package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/librasio/internal/app"
	"github.com/ayusman/librasio/internal/store"
)

// MaxHistoryLimit caps the limit query parameter.
const MaxHistoryLimit = 1000

// HistoryHandler serves the committed label history.
type HistoryHandler struct {
	store *store.Store
}

// NewHistoryHandler creates a new HistoryHandler with the given store.
func NewHistoryHandler(s *store.Store) *HistoryHandler {
	return &HistoryHandler{store: s}
}

type historyResponse struct {
	Events []*store.LabelEvent `json:"events"`
}

type clearResponse struct {
	Deleted int64 `json:"deleted"`
}

// ServeHTTP handles GET and DELETE on /api/history. Both accept an optional
// stream query parameter; GET also takes limit.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stream := r.URL.Query().Get("stream")
	if stream != "" {
		if _, err := app.ParseStreamID(stream); err != nil {
			writeError(w, http.StatusBadRequest, "Unknown stream: "+stream)
			return
		}
	}

	switch r.Method {
	case http.MethodGet:
		h.list(w, r, stream)
	case http.MethodDelete:
		h.clear(w, stream)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *HistoryHandler) list(w http.ResponseWriter, r *http.Request, stream string) {
	limit := store.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > MaxHistoryLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	events, err := h.store.Labels().List(stream, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list history")
		return
	}
	if events == nil {
		events = []*store.LabelEvent{}
	}

	writeJSON(w, http.StatusOK, historyResponse{Events: events})
}

func (h *HistoryHandler) clear(w http.ResponseWriter, stream string) {
	n, err := h.store.Labels().Clear(stream)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear history")
		return
	}
	writeJSON(w, http.StatusOK, clearResponse{Deleted: n})
}
