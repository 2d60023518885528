package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ayusman/librasio/internal/app"
)

const boundary = "frame"

// StreamHandler serves the annotated frames of the active stream as MJPEG.
type StreamHandler struct {
	tap *app.FrameTap
}

// NewStreamHandler creates a new StreamHandler reading from tap.
func NewStreamHandler(tap *app.FrameTap) *StreamHandler {
	return &StreamHandler{tap: tap}
}

// ServeHTTP writes every newly published frame until the client goes away.
// Frames published while a write is in progress are skipped.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	var seq uint64
	for {
		data, next, err := h.tap.Next(r.Context(), seq)
		if err != nil {
			return
		}
		seq = next

		if err := writePart(w, data); err != nil {
			return
		}
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}

func writePart(w http.ResponseWriter, data []byte) error {
	if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", boundary, len(data)); err != nil {
		return err
	}
	n, err := w.Write(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return errors.New("short write")
	}
	_, err = fmt.Fprint(w, "\r\n")
	return err
}
