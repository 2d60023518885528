// Package plugin runs external programs on committed labels. A plugin is a
// directory holding a plugin.json manifest and an executable that reads one
// JSON Request on stdin and writes one JSON Response on stdout.
package plugin

import (
	"encoding/json"
	"slices"
	"time"
)

// Manifest describes a plugin's metadata and subscriptions.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Executable  string `json:"executable"`
	// Streams limits the plugin to these streams. Empty means all.
	Streams []string `json:"streams,omitempty"`
	// Labels limits the plugin to these labels. Empty means all.
	Labels []string        `json:"labels,omitempty"`
	Config json.RawMessage `json:"config,omitempty"`
}

// Request is sent to a plugin when a stream commits a new label.
type Request struct {
	Stream      string          `json:"stream"`
	Kind        string          `json:"kind"`
	Label       string          `json:"label"`
	CommittedAt time.Time       `json:"committed_at"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Wants reports whether the plugin subscribes to label on stream.
func (p *Plugin) Wants(stream, label string) bool {
	if len(p.Manifest.Streams) > 0 && !slices.Contains(p.Manifest.Streams, stream) {
		return false
	}
	if len(p.Manifest.Labels) > 0 && !slices.Contains(p.Manifest.Labels, label) {
		return false
	}
	return true
}
