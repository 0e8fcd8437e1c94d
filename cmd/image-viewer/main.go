package main

import (
	"context"
	"log"
	"runtime"
	"time"

	"image-viewer/internal/config"
	"image-viewer/internal/decoder"
	"image-viewer/internal/decoder/opencv"
	"image-viewer/internal/gui"
	"image-viewer/internal/logger"
	"image-viewer/internal/shutdown"
	"image-viewer/internal/viewer"
	"image-viewer/internal/worker"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

const AppVersion = "0.1.0"

// Application wires the window, the view controller and the decode worker.
type Application struct {
	cfg *config.Config

	fyneApp fyne.App
	window  fyne.Window
	logger  logger.Logger

	controller *viewer.Controller
	view       *gui.View
	worker     *worker.Worker
	frames     *gui.FrameLoop
	shutdown   *shutdown.Manager
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	application := NewApplication(cfg)
	application.Run()

	log.Println("Application terminated successfully")
}

func NewApplication(cfg *config.Config) *Application {
	appLogger := logger.NewConsoleLogger(cfg.Level())

	fyneApp := app.NewWithID(cfg.AppID)
	app.SetMetadata(fyne.AppMetadata{
		ID:      cfg.AppID,
		Name:    cfg.Title,
		Version: AppVersion,
	})
	fyneApp.Settings().SetTheme(gui.DarkTheme())

	window := fyneApp.NewWindow(cfg.Title)
	window.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))
	window.SetFixedSize(true)

	shutdownMgr := shutdown.NewManager(appLogger, 10*time.Second)

	decodeWorker := worker.New(newDecoder(cfg), appLogger, cfg.DecodeTimeout.Duration)
	controller := viewer.NewController(shutdownMgr.Context(), decodeWorker, viewer.Options{
		DefaultPath:  cfg.DefaultPath,
		Sources:      sources(cfg),
		ResultBuffer: cfg.ResultBuffer,
	}, appLogger)

	view := gui.NewView(window, controller.Sources(), func(slot int) {
		controller.Load(slot)
	})
	frames := gui.NewFrameLoop(cfg.FrameInterval(), func() {
		controller.Frame(view)
	})

	// stopped in reverse: frames first, then in-flight decodes
	shutdownMgr.Register("worker", decodeWorker)
	shutdownMgr.Register("frame loop", frames)

	application := &Application{
		cfg:        cfg,
		fyneApp:    fyneApp,
		window:     window,
		logger:     appLogger.With("app"),
		controller: controller,
		view:       view,
		worker:     decodeWorker,
		frames:     frames,
		shutdown:   shutdownMgr,
	}

	application.logger.Info("Application initialized", map[string]interface{}{
		"version":     AppVersion,
		"window_size": []float32{cfg.Window.Width, cfg.Window.Height},
		"decoder":     cfg.Decoder,
		"frame_rate":  cfg.FrameRate,
		"go_version":  runtime.Version(),
		"log_level":   cfg.Level().String(),
	})

	return application
}

func newDecoder(cfg *config.Config) decoder.Service {
	if cfg.Decoder == config.DecoderOpenCV {
		return opencv.NewService()
	}
	return decoder.NewNative()
}

func sources(cfg *config.Config) []viewer.Source {
	out := make([]viewer.Source, 0, len(cfg.Images))
	for _, img := range cfg.Images {
		out = append(out, viewer.Source{Label: img.Label, Path: img.Path})
	}
	return out
}

// Run blocks until the window is closed or a shutdown signal arrives.
func (a *Application) Run() {
	a.window.SetOnClosed(func() {
		a.logger.Info("Window closed", nil)
		a.shutdown.Shutdown()
	})
	a.shutdown.Listen(func() {
		fyne.Do(a.fyneApp.Quit)
	})

	a.view.Show()
	a.frames.Start()
	go a.monitorWorker(a.shutdown.Context())

	a.fyneApp.Run()
	a.shutdown.Shutdown()
}

func (a *Application) monitorWorker(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.StatsInterval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats := a.worker.Stats()
			a.logger.Debug("Worker metrics", map[string]interface{}{
				"spawned":         stats.Spawned,
				"succeeded":       stats.Succeeded,
				"failed":          stats.Failed,
				"timed_out":       stats.TimedOut,
				"send_failures":   stats.SendFailures,
				"in_flight":       stats.InFlight,
				"avg_decode_ms":   stats.AverageDecode.Milliseconds(),
				"goroutine_count": runtime.NumGoroutine(),
			})
		case <-ctx.Done():
			return
		}
	}
}
