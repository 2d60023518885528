package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ManifestFile is the manifest every plugin directory carries.
const ManifestFile = "plugin.json"

// ErrPluginNotFound is returned when a requested plugin cannot be found.
var ErrPluginNotFound = errors.New("plugin not found")

// Manager loads plugins from a directory and answers who wants which label.
type Manager struct {
	dir string

	mu      sync.RWMutex
	plugins map[string]*Plugin
	skipped map[string]error
}

// NewManager creates a Manager rooted at dir. Nothing is loaded until Discover.
func NewManager(dir string) *Manager {
	return &Manager{
		dir:     dir,
		plugins: make(map[string]*Plugin),
		skipped: make(map[string]error),
	}
}

// Discover replaces the loaded set with the plugins found under the
// directory. A missing directory yields no plugins. Subdirectories whose
// manifest cannot be used are recorded in Skipped.
func (m *Manager) Discover() error {
	plugins := make(map[string]*Plugin)
	skipped := make(map[string]error)

	entries, err := os.ReadDir(m.dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		entries = nil
	case err != nil:
		return fmt.Errorf("reading plugin dir: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p, err := load(filepath.Join(m.dir, entry.Name()))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			skipped[entry.Name()] = err
			continue
		}
		plugins[p.Manifest.Name] = p
	}

	m.mu.Lock()
	m.plugins, m.skipped = plugins, skipped
	m.mu.Unlock()
	return nil
}

func load(path string) (*Plugin, error) {
	data, err := os.ReadFile(filepath.Join(path, ManifestFile))
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if manifest.Name == "" {
		return nil, errors.New("manifest has no name")
	}
	if manifest.Executable == "" {
		return nil, errors.New("manifest has no executable")
	}

	return &Plugin{
		Manifest:   manifest,
		Path:       path,
		Executable: filepath.Join(path, manifest.Executable),
	}, nil
}

// Skipped returns the directories the last Discover rejected, keyed by
// directory name.
func (m *Manager) Skipped() map[string]error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]error, len(m.skipped))
	for k, v := range m.skipped {
		out[k] = v
	}
	return out
}

// Get returns a plugin by manifest name.
func (m *Manager) Get(name string) (*Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, ok := m.plugins[name]; ok {
		return p, nil
	}
	return nil, ErrPluginNotFound
}

// List returns all discovered plugins sorted by name.
func (m *Manager) List() []*Plugin {
	m.mu.RLock()
	list := make([]*Plugin, 0, len(m.plugins))
	for _, p := range m.plugins {
		list = append(list, p)
	}
	m.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].Manifest.Name < list[j].Manifest.Name
	})
	return list
}

// Subscribers returns the plugins that want label on stream, sorted by name.
func (m *Manager) Subscribers(stream, label string) []*Plugin {
	var out []*Plugin
	for _, p := range m.List() {
		if p.Wants(stream, label) {
			out = append(out, p)
		}
	}
	return out
}

// PluginDir returns the plugin directory path.
func (m *Manager) PluginDir() string {
	return m.dir
}
