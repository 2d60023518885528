package plugin

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/librasio/internal/app"
	"github.com/ayusman/librasio/internal/gesture"
	"github.com/ayusman/librasio/internal/logger"
	"go.uber.org/zap"
)

const queueSize = 16

// Dispatcher is an app.DisplaySink that hands committed labels to the
// subscribed plugins. Runs happen on one background worker; when the queue
// is full new labels are dropped.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	kinds    map[app.StreamID]gesture.Kind
	unknown  map[app.StreamID]string
	logger   *zap.Logger

	queue   chan Request
	dropped atomic.Uint64

	mu   sync.Mutex
	last map[app.StreamID]string
}

// NewDispatcher creates a dispatcher. kinds and unknown are keyed like the
// history sink: the label kind of each stream and its placeholder text.
func NewDispatcher(m *Manager, e *Executor, kinds map[app.StreamID]gesture.Kind, unknown map[app.StreamID]string, l *zap.Logger) *Dispatcher {
	return &Dispatcher{
		manager:  m,
		executor: e,
		kinds:    kinds,
		unknown:  unknown,
		logger:   logger.OrNop(l),
		queue:    make(chan Request, queueSize),
		last:     make(map[app.StreamID]string),
	}
}

// SetLabel implements app.DisplaySink.
func (d *Dispatcher) SetLabel(stream app.StreamID, text string) {
	d.mu.Lock()
	if d.last[stream] == text {
		d.mu.Unlock()
		return
	}
	d.last[stream] = text
	d.mu.Unlock()

	placeholder, ok := d.unknown[stream]
	if !ok {
		placeholder = gesture.DefaultPlaceholder
	}
	if text == "" || text == placeholder {
		return
	}

	req := Request{
		Stream:      string(stream),
		Kind:        d.kinds[stream].String(),
		Label:       text,
		CommittedAt: time.Now().UTC(),
	}
	select {
	case d.queue <- req:
	default:
		d.dropped.Add(1)
		d.logger.Debug("plugin queue full, label dropped", zap.String("label", text))
	}
}

// Dropped returns how many labels were discarded on a full queue.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Run executes queued requests until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-d.queue:
			d.dispatch(ctx, req)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, req Request) {
	for _, p := range d.manager.Subscribers(req.Stream, req.Label) {
		resp, err := d.executor.Execute(ctx, p, req)
		switch {
		case err != nil:
			d.logger.Warn("plugin failed", zap.String("plugin", p.Manifest.Name), zap.Error(err))
		case !resp.Success:
			d.logger.Warn("plugin reported an error",
				zap.String("plugin", p.Manifest.Name),
				zap.String("error", resp.Error),
			)
		default:
			d.logger.Debug("plugin ran",
				zap.String("plugin", p.Manifest.Name),
				zap.String("label", req.Label),
			)
		}
	}
}
