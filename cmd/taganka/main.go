// Command taganka renders a pair of wheels rolling across a terrain model.
//
// Usage:
//
//	taganka [-config taganka.yaml] [-headless -frames 600 -dt 1.6]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/taganka/engine"
	"github.com/Carmen-Shannon/taganka/engine/camera"
	"github.com/Carmen-Shannon/taganka/engine/config"
	"github.com/Carmen-Shannon/taganka/engine/kinematics"
	"github.com/Carmen-Shannon/taganka/engine/loader"
	"github.com/Carmen-Shannon/taganka/engine/model"
	"github.com/Carmen-Shannon/taganka/engine/profiler"
	"github.com/Carmen-Shannon/taganka/engine/renderer"
	"github.com/Carmen-Shannon/taganka/engine/scene"
	"github.com/Carmen-Shannon/taganka/engine/telemetry"
	"github.com/Carmen-Shannon/taganka/engine/window"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	headless := flag.Bool("headless", false, "run without a window on the recording device")
	frames := flag.Int("frames", 600, "frames to run in headless mode, 0 runs until interrupted")
	deltaTime := flag.Float64("dt", 1.6, "simulator time per frame in headless mode")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *headless, *frames, *deltaTime); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, headless bool, frames int, deltaTime float64) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var (
		device renderer.Device
		driver engine.FrameDriver
		aspect = float64(cfg.Window.Width) / float64(cfg.Window.Height)
	)
	if headless {
		device, err = renderer.NewDevice(renderer.BackendTypeRecording, nil, renderer.WithLogger(logger))
		if err != nil {
			return err
		}
		driver = engine.FixedDriver{Frames: frames, DeltaTime: deltaTime}
	} else {
		win, err := window.NewWindow(
			window.WithTitle(cfg.Window.Title),
			window.WithSize(cfg.Window.Width, cfg.Window.Height),
		)
		if err != nil {
			return err
		}
		defer func() { _ = win.Close() }()

		device, err = renderer.NewDevice(renderer.BackendTypeWGPU, win,
			renderer.WithLogger(logger),
			renderer.WithForceSoftwareRenderer(cfg.Window.SoftwareRenderer),
		)
		if err != nil {
			return err
		}
		driver = engine.NewWindowDriver(win,
			engine.WithDriverLogger(logger),
			engine.WithFrameLimit(cfg.Window.FrameLimit),
		)
	}

	sc := buildScene(cfg, device, logger)

	options := []engine.EngineBuilderOption{
		engine.WithLogger(logger),
		engine.WithAspect(aspect),
		engine.WithProfiling(cfg.Profiler.Enabled),
		engine.WithProfiler(profiler.NewProfiler(
			profiler.WithLogger(logger.Named("profiler")),
			profiler.WithInterval(cfg.Profiler.Interval),
		)),
	}
	if cfg.Telemetry.Enabled {
		hub := telemetry.NewHub(
			telemetry.WithLogger(logger.Named("telemetry")),
			telemetry.WithAllowedOrigin(cfg.Telemetry.AllowedOrigin),
		)
		defer func() { _ = hub.Close() }()
		go func() {
			if err := hub.ListenAndServe(ctx, cfg.Telemetry.Address); err != nil {
				logger.Error("telemetry stopped", zap.Error(err))
			}
		}()
		options = append(options, engine.WithTelemetry(hub))
	}

	err = engine.NewEngine(sc, driver, options...).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func buildScene(cfg *config.Config, device renderer.Device, logger *zap.Logger) scene.Scene {
	ldr := loader.NewLoader(loader.BackendTypeGLTF,
		loader.WithLogger(logger.Named("loader")),
		loader.WithWorkers(cfg.Assets.Workers),
	)

	cam := camera.NewCamera(
		camera.WithEye(cfg.Camera.Eye),
		camera.WithCenter(cfg.Camera.Center),
		camera.WithUp(cfg.Camera.Up),
		camera.WithFov(cfg.Camera.Fov),
		camera.WithClipPlanes(cfg.Camera.Near, cfg.Camera.Far),
	)

	sim := kinematics.NewSimulator(
		kinematics.WithTireRadius(cfg.Wheels.TireRadius),
		kinematics.WithWheelBase(cfg.Wheels.WheelBase),
		kinematics.WithSteeringRate(cfg.Wheels.SteeringRate),
		kinematics.WithUp(cfg.Camera.Up),
	)

	wheels := scene.NewWheelsModel(
		model.NewModel(
			model.WithName("wheels"),
			model.WithSource(ldr.Source(cfg.Assets.Wheel)),
			model.WithDevice(device),
			model.WithLogger(logger),
		),
		scene.WithSimulator(sim),
		scene.WithMount(cfg.Wheels.Mount),
	)

	options := []scene.SceneBuilderOption{
		scene.WithName("taganka8"),
		scene.WithLogger(logger.Named("scene")),
		scene.WithWheels(wheels),
	}
	if cfg.Assets.Terrain != "" {
		options = append(options, scene.WithModels(scene.NewStaticModel(
			model.WithName("terrain"),
			model.WithSource(ldr.Source(cfg.Assets.Terrain)),
			model.WithDevice(device),
			model.WithLogger(logger),
		)))
	}
	return scene.NewScene(cam, device, options...)
}
