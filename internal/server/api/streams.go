package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/librasio/internal/app"
)

// StreamController is the part of the application the stream endpoints drive.
type StreamController interface {
	Streams() []app.StreamStatus
	Activate(id app.StreamID) error
	Deactivate()
	IsEnabled() bool
	SetEnabled(enabled bool)
}

// StreamHandler handles HTTP requests for classification streams.
type StreamHandler struct {
	streams StreamController
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(c StreamController) *StreamHandler {
	return &StreamHandler{streams: c}
}

type streamsResponse struct {
	Streams []app.StreamStatus `json:"streams"`
	Active  string             `json:"active"`
	Enabled bool               `json:"enabled"`
}

// ServeHTTP routes
//
//	GET  /api/streams
//	POST /api/streams/{id}/activate
//	POST /api/streams/deactivate
//	POST /api/streams/pause
//	POST /api/streams/resume
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/streams")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch path {
	case "deactivate":
		h.streams.Deactivate()
	case "pause":
		h.streams.SetEnabled(false)
	case "resume":
		h.streams.SetEnabled(true)
	default:
		id, action, ok := strings.Cut(path, "/")
		if !ok || action != "activate" {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		if err := h.streams.Activate(app.StreamID(id)); err != nil {
			if errors.Is(err, app.ErrUnknownStream) {
				writeError(w, http.StatusNotFound, "Unknown stream: "+id)
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to activate stream")
			return
		}
	}

	h.list(w)
}

func (h *StreamHandler) list(w http.ResponseWriter) {
	resp := streamsResponse{
		Streams: h.streams.Streams(),
		Enabled: h.streams.IsEnabled(),
	}
	for _, s := range resp.Streams {
		if s.Active {
			resp.Active = string(s.ID)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
