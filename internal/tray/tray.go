// Package tray provides a system tray menu for librasio: stream selection,
// pause and the last committed label.
package tray

import (
	"sync"

	"github.com/ayusman/librasio/internal/app"
	"github.com/getlantern/systray"
)

// Tray represents the system tray application. It is an app.DisplaySink.
type Tray struct {
	onToggle   func(enabled bool)
	onSelect   func(id app.StreamID)
	onSettings func()
	onQuit     func()
	enabled    bool
	active     app.StreamID
	labels     map[app.StreamID]string
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle    *systray.MenuItem
	menuLastLabel *systray.MenuItem
	menuStreams   map[app.StreamID]*systray.MenuItem
	menuOff       *systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled: true,
		labels:  make(map[app.StreamID]string),
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSelect sets the callback for stream selection. The empty id means off.
func (t *Tray) OnSelect(fn func(id app.StreamID)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSelect = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops Run.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Librasio")
	systray.SetTooltip("Librasio sign recognition")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume recognition")
	systray.AddSeparator()

	t.menuStreams = make(map[app.StreamID]*systray.MenuItem, len(app.StreamIDs))
	for _, id := range app.StreamIDs {
		t.menuStreams[id] = systray.AddMenuItem(streamTitle(string(id), id == t.active), "Recognize "+string(id))
	}
	t.menuOff = systray.AddMenuItem(streamTitle("off", t.active == ""), "Stop recognizing")
	systray.AddSeparator()

	t.menuLastLabel = systray.AddMenuItem(lastTitle(t.labels[t.active]), "Last committed label")
	t.menuLastLabel.Disable()
	systray.AddSeparator()
	t.mu.Unlock()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Librasio")

	for id, item := range t.menuStreams {
		go func(id app.StreamID, item *systray.MenuItem) {
			for range item.ClickedCh {
				t.handleSelect(id)
			}
		}(id, item)
	}

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-t.menuOff.ClickedCh:
				t.handleSelect("")
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Paused"
}

func streamTitle(name string, selected bool) string {
	if selected {
		return "✓ " + name
	}
	return "   " + name
}

func lastTitle(label string) string {
	if label == "" {
		return "Last: none"
	}
	return "Last: " + label
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleSelect(id app.StreamID) {
	t.mu.RLock()
	callback := t.onSelect
	t.mu.RUnlock()

	if callback != nil {
		callback(id)
	}
	t.SetActive(id)
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetLabel implements app.DisplaySink. Only the active stream's label is
// shown; the others are remembered for when they become active.
func (t *Tray) SetLabel(stream app.StreamID, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if last, ok := t.labels[stream]; ok && last == text {
		return
	}
	t.labels[stream] = text
	if stream == t.active && t.menuLastLabel != nil {
		t.menuLastLabel.SetTitle(lastTitle(text))
	}
}

// SetActive marks id as the selected stream. The empty id means off.
func (t *Tray) SetActive(id app.StreamID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active = id
	for sid, item := range t.menuStreams {
		item.SetTitle(streamTitle(string(sid), sid == id))
	}
	if t.menuOff != nil {
		t.menuOff.SetTitle(streamTitle("off", id == ""))
	}
	if t.menuLastLabel != nil {
		t.menuLastLabel.SetTitle(lastTitle(t.labels[id]))
	}
}

// SetEnabled updates the pause state without calling OnToggle.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Active returns the selected stream.
func (t *Tray) Active() app.StreamID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

// LastLabel returns the text shown for the active stream.
func (t *Tray) LastLabel() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return lastTitle(t.labels[t.active])
}
