// Package main provides a plugin that types fingerspelled letters into the
// focused window. It uses AppleScript on macOS and xdotool elsewhere.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Request is the label event sent by the plugin executor.
type Request struct {
	Stream      string          `json:"stream"`
	Kind        string          `json:"kind"`
	Label       string          `json:"label"`
	CommittedAt time.Time       `json:"committed_at"`
	Config      json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Config is read from the manifest's config object.
type Config struct {
	// Lowercase types letters in lower case.
	Lowercase bool `json:"lowercase"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	if req.Kind != "letter" {
		writeErrorResponse(fmt.Sprintf("unsupported label kind: %s", req.Kind))
		return
	}

	var cfg Config
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("failed to parse config: %v", err))
			return
		}
	}

	key := req.Label
	if cfg.Lowercase {
		key = strings.ToLower(key)
	}
	if err := typeKey(key); err != nil {
		writeErrorResponse(fmt.Sprintf("typing %q failed: %v", key, err))
		return
	}

	writeSuccessResponse()
}

// typeKey sends key as a keystroke. Only single letters are accepted.
func typeKey(key string) error {
	if len(key) != 1 || !strings.ContainsAny(strings.ToUpper(key), "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		return fmt.Errorf("not a letter: %q", key)
	}

	var cmd *exec.Cmd
	if runtime.GOOS == "darwin" {
		cmd = exec.Command("osascript", "-e", fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key))
	} else {
		cmd = exec.Command("xdotool", "type", "--", key)
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}
