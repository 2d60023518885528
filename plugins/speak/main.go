// Package main provides a plugin that reads recognized words aloud with the
// platform speech synthesizer: say on macOS, espeak elsewhere.
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
	Voice string `json:"voice"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	var cfg Config
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("failed to parse config: %v", err))
			return
		}
	}

	if err := speak(spoken(req.Label), cfg.Voice); err != nil {
		writeErrorResponse(fmt.Sprintf("speaking %q failed: %v", req.Label, err))
		return
	}

	writeSuccessResponse()
}

// spoken turns a catalog label into speakable text: "Cool/Good" reads as
// "Cool or Good".
func spoken(label string) string {
	return strings.ReplaceAll(label, "/", " or ")
}

func speak(text, voice string) error {
	var args []string
	name := "espeak"
	if runtime.GOOS == "darwin" {
		name = "say"
	}
	if voice != "" {
		args = append(args, "-v", voice)
	}
	args = append(args, text)

	output, err := exec.Command(name, args...).CombinedOutput()
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
