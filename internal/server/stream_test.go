package server

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/librasio/internal/app"
)

func TestStreamHandler_MethodNotAllowed(t *testing.T) {
	h := NewStreamHandler(app.NewFrameTap())

	req := httptest.NewRequest(http.MethodPost, "/api/stream", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestStreamHandler_WritesParts(t *testing.T) {
	tap := app.NewFrameTap()
	ts := httptest.NewServer(NewStreamHandler(tap))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary=frame" {
		t.Fatalf("Content-Type = %q", ct)
	}

	frames := [][]byte{[]byte("first-jpeg"), []byte("second-jpeg")}
	r := textproto.NewReader(bufio.NewReader(resp.Body))

	for _, want := range frames {
		tap.PublishJPEG(want)

		line, err := r.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine() error = %v", err)
		}
		if line != "--frame" {
			t.Fatalf("boundary = %q, want --frame", line)
		}
		header, err := r.ReadMIMEHeader()
		if err != nil {
			t.Fatalf("ReadMIMEHeader() error = %v", err)
		}
		if header.Get("Content-Type") != "image/jpeg" {
			t.Errorf("part Content-Type = %q", header.Get("Content-Type"))
		}
		n, _ := strconv.Atoi(header.Get("Content-Length"))
		body := make([]byte, n)
		if _, err := io.ReadFull(r.R, body); err != nil {
			t.Fatalf("read part body: %v", err)
		}
		if string(body) != string(want) {
			t.Errorf("part body = %q, want %q", body, want)
		}
		if rest, _ := r.ReadLine(); strings.TrimSpace(rest) != "" {
			t.Errorf("expected CRLF after part, got %q", rest)
		}
	}
}
