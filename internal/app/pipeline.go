package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Start opens the camera and runs the loop in the background until Stop.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("pipeline stopped", zap.Error(err))
		}
	}(a.done)

	a.logger.Info("detection pipeline started")
	return nil
}

// Stop halts the loop and releases the camera. A stopped App is not restarted.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	if err := a.camera.Close(); err != nil {
		a.logger.Warn("error closing camera", zap.Error(err))
	}
	if a.motion != nil {
		a.motion.Close()
	}
	a.clock.Stop()

	a.logger.Info("detection pipeline stopped")
}

// Run ticks until ctx is cancelled. Every tick runs at most one pass on the
// active stream; frame and recognition failures are logged and the loop
// keeps ticking.
func (a *App) Run(ctx context.Context) error {
	ticks := a.clock.C()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticks:
			a.tick(ctx)
		}
	}
}

// tick runs one pass if a stream is active and detection is enabled.
func (a *App) tick(ctx context.Context) {
	a.passMu.Lock()
	defer a.passMu.Unlock()

	a.mu.RLock()
	id, enabled := a.active, a.enabled
	a.mu.RUnlock()

	if id == "" || !enabled {
		return
	}
	s := a.streams[id]

	frame, err := a.camera.ReadFrame()
	if err != nil {
		a.metrics.FrameError(string(id), "camera")
		a.logger.Debug("error reading frame", zap.Error(err))
		return
	}
	defer frame.Close()

	if a.motion != nil {
		if moving, _ := a.motion.Observe(frame, time.Now()); moving {
			a.setRate(a.activeFPS)
		} else {
			a.setRate(a.idleFPS)
		}
	}

	o := s.Step(ctx, frame)

	if a.tap != nil {
		if err := a.tap.Publish(frame, o); err != nil {
			a.logger.Debug("failed to publish frame", zap.Error(err))
		}
	}
}
