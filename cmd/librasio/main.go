// Command librasio runs the sign classification loop with its HTTP surface
// and, optionally, a system tray menu.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/librasio/internal/app"
	"github.com/ayusman/librasio/internal/capture"
	"github.com/ayusman/librasio/internal/classifier"
	"github.com/ayusman/librasio/internal/config"
	"github.com/ayusman/librasio/internal/detector"
	"github.com/ayusman/librasio/internal/gesture"
	"github.com/ayusman/librasio/internal/logger"
	"github.com/ayusman/librasio/internal/metrics"
	"github.com/ayusman/librasio/internal/plugin"
	"github.com/ayusman/librasio/internal/server"
	"github.com/ayusman/librasio/internal/stabilizer"
	"github.com/ayusman/librasio/internal/store"
	"github.com/ayusman/librasio/internal/tray"
)

var streamKinds = map[app.StreamID]gesture.Kind{
	app.StreamAlphabet: gesture.KindLetter,
	app.StreamWords:    gesture.KindWord,
}

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	envPath := flag.String("env", ".env", "path to a dotenv file")
	noTray := flag.Bool("no-tray", false, "run without the system tray")
	flag.Parse()

	if err := run(*configPath, *envPath, *noTray); err != nil {
		fmt.Fprintf(os.Stderr, "librasio: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, envPath string, noTray bool) error {
	if err := config.LoadEnvFile(envPath); err != nil {
		return err
	}
	cfg, err := config.LoadWithFallback(configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.Init(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	m := metrics.New()
	go m.SampleProcess(ctx, cfg.Metrics.ProcessInterval.Std(), log)

	det := newDetector(cfg, log)
	defer det.Close()

	hub := server.NewLabelHub(log)
	board := app.NewLabelBoard()
	history := app.NewHistorySink(st.Labels(), streamKinds,
		map[app.StreamID]string{
			app.StreamAlphabet: cfg.Streams.Alphabet.Unknown,
			app.StreamWords:    cfg.Streams.Words.Unknown,
		},
		log,
	)

	var tr *tray.Tray
	display := app.MultiDisplay{board, hub, history}
	if d := newPluginDispatcher(cfg, log); d != nil {
		go d.Run(ctx)
		display = append(display, d)
	}
	if cfg.Tray.Enabled && !noTray {
		tr = tray.New()
		display = append(display, tr)
	}

	streams, err := newStreams(cfg, det, display, hub, m, log)
	if err != nil {
		return err
	}

	var motion *capture.MotionGate
	if cfg.Camera.MotionThreshold > 0 {
		motion = capture.NewMotionGate(cfg.Camera.MotionThreshold, cfg.Camera.StillAfter.Std())
	}

	tap := app.NewFrameTap()
	a, err := app.New(app.Config{
		Camera:    capture.NewCamera(cfg.Camera.DeviceID, cfg.Camera.Width, cfg.Camera.Height),
		Streams:   streams,
		Motion:    motion,
		ActiveFPS: cfg.Camera.ActiveFPS,
		IdleFPS:   cfg.Camera.IdleFPS,
		Settings:  st.Settings(),
		Tap:       tap,
		OnChange: func(active app.StreamID, enabled bool) {
			if tr != nil {
				tr.SetActive(active)
				tr.SetEnabled(enabled)
			}
		},
		Metrics: m,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	if err := a.RestoreActive(app.StreamID(cfg.Streams.Active)); err != nil {
		log.Warn("failed to restore active stream", zap.Error(err))
	}
	if err := a.Start(ctx); err != nil {
		return fmt.Errorf("start camera: %w", err)
	}
	defer a.Stop()

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		log.Info("serving static files", zap.String("dir", staticDir))
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Streams:   a,
		Store:     st,
		Hub:       hub,
		Tap:       tap,
		Metrics:   m,
		Logger:    log,
	})

	errc := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe(cfg.Server.Addr)
		errc <- err
		if err != nil {
			stop()
		}
	}()

	if tr != nil {
		tr.OnToggle(a.SetEnabled)
		tr.OnSelect(func(id app.StreamID) {
			if id == "" {
				a.Deactivate()
				return
			}
			if err := a.Activate(id); err != nil {
				log.Warn("failed to activate stream", zap.Error(err))
			}
		})
		tr.OnSettings(func() {
			log.Info("settings available", zap.String("url", "http://localhost"+cfg.Server.Addr))
		})
		tr.OnQuit(stop)
		if id, ok := a.Active(); ok {
			tr.SetActive(id)
		}
		go func() {
			<-ctx.Done()
			tr.Quit()
		}()
		// The tray owns the main goroutine until it quits.
		tr.Run()
		stop()
	}

	<-ctx.Done()
	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	default:
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Warn("http shutdown", zap.Error(err))
	}
	return nil
}

func newPluginDispatcher(cfg *config.Config, log *zap.Logger) *plugin.Dispatcher {
	if cfg.Plugins.Dir == "" {
		return nil
	}
	mgr := plugin.NewManager(cfg.Plugins.Dir)
	if err := mgr.Discover(); err != nil {
		log.Warn("plugin discovery failed", zap.String("dir", cfg.Plugins.Dir), zap.Error(err))
		return nil
	}
	for dir, err := range mgr.Skipped() {
		log.Warn("plugin skipped", zap.String("dir", dir), zap.Error(err))
	}
	plugins := mgr.List()
	if len(plugins) == 0 {
		return nil
	}
	for _, p := range plugins {
		log.Info("plugin loaded", zap.String("name", p.Manifest.Name), zap.Strings("streams", p.Manifest.Streams))
	}
	return plugin.NewDispatcher(mgr, plugin.NewExecutor(cfg.Plugins.Timeout.Std()), streamKinds, map[app.StreamID]string{
		app.StreamAlphabet: cfg.Streams.Alphabet.Unknown,
		app.StreamWords:    cfg.Streams.Words.Unknown,
	}, log)
}

func newDetector(cfg *config.Config, log *zap.Logger) detector.Detector {
	if cfg.Detector.Mock {
		log.Warn("using mock detector; no hands will be found")
		return detector.NewMockDetector()
	}
	d, err := detector.NewMediaPipeDetector(cfg.Detector.Config, cfg.Detector.Script, log)
	if err != nil {
		log.Warn("mediapipe detector unavailable, falling back to mock", zap.Error(err))
		return detector.NewMockDetector()
	}
	return d
}

func newStreams(cfg *config.Config, det detector.Detector, display app.DisplaySink, overlay app.OverlaySink, m *metrics.Metrics, log *zap.Logger) ([]*app.Stream, error) {
	defs := []struct {
		id   app.StreamID
		mode gesture.Mode
		sc   config.StreamConfig
	}{
		{app.StreamAlphabet, gesture.ModeLetter, cfg.Streams.Alphabet},
		{app.StreamWords, gesture.ModeWord, cfg.Streams.Words},
	}

	var out []*app.Stream
	for _, d := range defs {
		stab, err := stabilizer.New(d.sc.Stabilizer)
		if err != nil {
			return nil, fmt.Errorf("stream %s: %w", d.id, err)
		}

		rec := newRecognizer(cfg, d.id, d.mode, d.sc, det, log)
		s, err := app.NewStream(app.StreamConfig{
			ID:         d.id,
			Recognizer: rec,
			Stabilizer: stab,
			Options:    app.StreamOptions{Unknown: d.sc.Unknown, Language: d.sc.Language},
			Display:    display,
			Overlay:    overlay,
			Metrics:    m,
			Logger:     log,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func newRecognizer(cfg *config.Config, id app.StreamID, mode gesture.Mode, sc config.StreamConfig, det detector.Detector, log *zap.Logger) app.Recognizer {
	if sc.Source == config.SourceImage {
		if cfg.Classifier.URL != "" {
			model := classifier.NewRemoteModel(cfg.Classifier.URL, cfg.Classifier.Timeout.Std())
			return app.NewImageRecognizer(classifier.NewPredictor(model, nil, sc.ConfidenceThreshold), sc.CropFraction)
		}
		log.Warn("no classifier url configured, using landmark rules",
			zap.String("stream", string(id)),
			zap.String("env", config.EnvClassifierURL),
		)
	}

	rules := gesture.NewClassifier(gesture.WordOptions{Mirror: sc.Mirror})
	opts := gesture.ExtractOptions{ThumbJoint: gesture.ThumbJoint(sc.ThumbJoint)}
	return app.NewLandmarkRecognizer(det, rules, mode, opts)
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.librasio/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".librasio", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
