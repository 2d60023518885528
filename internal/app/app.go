// Package app drives the sign classification streams: it reads camera
// frames, runs one pass per tick on the active stream and publishes labels.
package app

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ayusman/librasio/internal/capture"
	"github.com/ayusman/librasio/internal/logger"
	"github.com/ayusman/librasio/internal/metrics"
	"github.com/ayusman/librasio/internal/store"
)

// Pipeline timing defaults.
const (
	// IdleFPS is the tick rate while no stream is active or detection is paused.
	IdleFPS = 2
	// ActiveFPS is the tick rate while a stream is active.
	ActiveFPS = 15
)

// Config holds the collaborators of the application.
type Config struct {
	Camera  capture.Camera
	Streams []*Stream

	// Clock paces the loop. Nil uses a TickerClock.
	Clock FrameClock
	// Motion slows the active stream to IdleFPS over a still scene. Optional.
	Motion    *capture.MotionGate
	ActiveFPS int
	IdleFPS   int

	// Settings persists the active stream. Optional.
	Settings *store.SettingsRepository
	// Tap receives every processed frame. Optional.
	Tap *FrameTap

	// OnChange is called after the active stream or the pause state
	// changes, outside the App's locks. Optional.
	OnChange func(active StreamID, enabled bool)

	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// StreamStatus is a snapshot of one stream.
type StreamStatus struct {
	ID     StreamID `json:"id"`
	Active bool     `json:"active"`
	Label  string   `json:"label"`
	Raw    string   `json:"raw"`
}

// App runs at most one active stream at a time.
type App struct {
	camera    capture.Camera
	clock     FrameClock
	motion    *capture.MotionGate
	activeFPS int
	idleFPS   int
	settings  *store.SettingsRepository
	tap       *FrameTap
	onChange  func(StreamID, bool)
	metrics   *metrics.Metrics
	logger    *zap.Logger

	streams map[StreamID]*Stream
	order   []StreamID

	// passMu serializes passes with activation resets. Acquire before mu.
	passMu sync.Mutex
	rate   int

	mu      sync.RWMutex
	active  StreamID
	enabled bool
	cancel  func()
	done    chan struct{}
}

// New creates an App with no active stream and detection enabled.
func New(c Config) (*App, error) {
	if c.Camera == nil {
		return nil, errors.New("app: nil camera")
	}
	if c.ActiveFPS <= 0 {
		c.ActiveFPS = ActiveFPS
	}
	if c.IdleFPS <= 0 {
		c.IdleFPS = IdleFPS
	}
	if c.Clock == nil {
		c.Clock = NewTickerClock(c.IdleFPS)
	}

	a := &App{
		camera:    c.Camera,
		clock:     c.Clock,
		motion:    c.Motion,
		activeFPS: c.ActiveFPS,
		idleFPS:   c.IdleFPS,
		settings:  c.Settings,
		tap:       c.Tap,
		onChange:  c.OnChange,
		metrics:   c.Metrics,
		logger:    logger.OrNop(c.Logger),
		streams:   make(map[StreamID]*Stream),
		enabled:   true,
	}

	for _, s := range c.Streams {
		if _, dup := a.streams[s.ID()]; dup {
			return nil, fmt.Errorf("app: duplicate stream %s", s.ID())
		}
		a.streams[s.ID()] = s
		a.order = append(a.order, s.ID())
	}

	return a, nil
}

// Activate makes id the only stream fed frames. The stream is reset so it
// starts from an unknown label, and the choice is persisted.
func (a *App) Activate(id StreamID) error {
	s, ok := a.streams[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStream, id)
	}

	defer a.notify()
	a.passMu.Lock()
	defer a.passMu.Unlock()

	s.Reset()

	a.mu.Lock()
	a.active = id
	a.mu.Unlock()

	if a.motion != nil {
		a.motion.Reset()
	}
	a.setRate(a.activeFPS)
	a.metrics.SetActive(string(id), a.streamNames())
	a.persist(string(id))
	a.logger.Info("stream activated", zap.String("stream", string(id)))
	return nil
}

// Deactivate idles the loop.
func (a *App) Deactivate() {
	defer a.notify()
	a.passMu.Lock()
	defer a.passMu.Unlock()

	a.mu.Lock()
	prev := a.active
	a.active = ""
	a.mu.Unlock()

	a.setRate(a.idleFPS)
	a.metrics.SetActive("", a.streamNames())
	a.persist("")
	if prev != "" {
		a.logger.Info("stream deactivated", zap.String("stream", string(prev)))
	}
}

// RestoreActive activates the persisted stream, or fallback when nothing
// was persisted. An empty result leaves the app idle. A persisted id that
// no longer names a stream falls back too.
func (a *App) RestoreActive(fallback StreamID) error {
	id := fallback
	if a.settings != nil {
		v, err := a.settings.Get(store.SettingActiveStream)
		switch {
		case err == nil:
			if _, ok := a.streams[StreamID(v)]; ok || v == "" {
				id = StreamID(v)
			}
		case !errors.Is(err, store.ErrNotFound):
			a.logger.Warn("failed to read active stream", zap.Error(err))
		}
	}

	if id == "" {
		a.Deactivate()
		return nil
	}
	return a.Activate(id)
}

func (a *App) persist(value string) {
	if a.settings == nil {
		return
	}
	// An empty value records that the user left the app idle.
	if err := a.settings.Set(store.SettingActiveStream, value); err != nil {
		a.logger.Warn("failed to persist active stream", zap.Error(err))
	}
}

// Active returns the active stream id, if any.
func (a *App) Active() (StreamID, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.active, a.active != ""
}

// SetEnabled pauses or resumes detection. A paused app keeps its active
// stream but runs no passes.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()

	a.logger.Info("detection toggled", zap.Bool("enabled", enabled))
	a.notify()
}

func (a *App) notify() {
	if a.onChange == nil {
		return
	}
	a.mu.RLock()
	active, enabled := a.active, a.enabled
	a.mu.RUnlock()
	a.onChange(active, enabled)
}

// IsEnabled returns whether detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Streams returns the status of every stream in registration order.
func (a *App) Streams() []StreamStatus {
	a.passMu.Lock()
	defer a.passMu.Unlock()

	active, _ := a.Active()
	out := make([]StreamStatus, 0, len(a.order))
	for _, id := range a.order {
		s := a.streams[id]
		out = append(out, StreamStatus{
			ID:     id,
			Active: id == active,
			Label:  s.Render(),
			Raw:    s.render(s.Raw()),
		})
	}
	return out
}

// setRate paces both the loop and the capture device. Callers hold passMu.
func (a *App) setRate(fps int) {
	if fps == a.rate {
		return
	}
	a.rate = fps
	a.clock.SetFPS(fps)
	a.camera.SetFPS(fps)
}

func (a *App) streamNames() []string {
	names := make([]string, len(a.order))
	for i, id := range a.order {
		names[i] = string(id)
	}
	return names
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Tap returns the frame tap, or nil.
func (a *App) Tap() *FrameTap {
	return a.tap
}
