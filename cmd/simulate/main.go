package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/spatialcore/internal/core/config"
	"github.com/zeusync/spatialcore/internal/core/events/bus"
	"github.com/zeusync/spatialcore/internal/core/observability/log"
	"github.com/zeusync/spatialcore/internal/core/scene"
	"github.com/zeusync/spatialcore/internal/core/systems"
	"github.com/zeusync/spatialcore/internal/core/world"
	"github.com/zeusync/spatialcore/internal/injector"
)

var (
	configPath = flag.String("config", "", "YAML config file; defaults are used when empty")
	frames     = flag.Int("frames", 3600, "Number of frames to simulate")
	speed      = flag.Float64("speed", 2e5, "Camera speed in meters per second")
	seed       = flag.Int64("seed", 1, "Seed for frame time jitter")
	realtime   = flag.Bool("realtime", false, "Sleep between frames to match their simulated duration")
)

// Planet-scale anchors, in meters from the world origin.
var (
	earth = mgl64.Vec3{0, 0, 0}
	moon  = mgl64.Vec3{3.844e8, 0, 0}
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, "Error loading config:", err)
			os.Exit(1)
		}
	}

	w, err := injector.InitializeWorld(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error building world:", err)
		os.Exit(1)
	}
	logger := log.Provide()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	populate(w, logger)
	run(ctx, w, logger)
}

func populate(w *world.World, logger log.Log) {
	box := func(x, y, z float64) *scene.CollisionShape {
		s := scene.BoxShape(mgl64.Vec3{x, y, z})
		return &s
	}
	sphere := func(r float64) *scene.CollisionShape {
		s := scene.SphereShape(r)
		return &s
	}

	// launch pad on the surface
	surface := earth.Add(mgl64.Vec3{0, 6.371e6, 0})
	w.Spawn(world.Spawn{Position: surface, Shape: box(500, 4, 500)})
	for i := range 16 {
		w.Spawn(world.Spawn{
			Position: surface.Add(mgl64.Vec3{float64(i%4)*4 - 6, 20 + float64(i)*3, float64(i/4)*4 - 6}),
			Shape:    box(1, 1, 1),
			Mass:     10,
		})
	}

	// satellites in low orbit, a station near the moon
	for i := range 8 {
		sat := w.Spawn(world.Spawn{Shape: sphere(5), Kinematic: true})
		err := w.Orbit().Add(sat, systems.OrbitParams{
			Center: earth,
			Radius: 6.771e6 + float64(i)*1e4,
			Period: 5400,
			Axis:   mgl64.Vec3{0.1 * float64(i), 1, 0},
			Phase:  float64(i),
		})
		if err != nil {
			logger.Error("orbit rejected", log.Error(err))
		}
		w.Spin().Add(sat, mgl64.Vec3{0, 0.5, 0})
	}
	w.Spawn(world.Spawn{Position: moon.Add(mgl64.Vec3{0, 1.74e6, 0}), Shape: box(50, 50, 50)})

	logger.Info("scene populated", log.Int("entities", w.Scene().Len()))
}

// run flies a camera from the launch pad toward the moon. The camera keeps
// local coordinates and shifts itself whenever the origin is rebased.
func run(ctx context.Context, w *world.World, logger log.Log) {
	camera := earth.Add(mgl64.Vec3{0, 6.371e6 + 100, 0}).Sub(w.Origin().CurrentOrigin())
	heading := moon.Sub(camera).Normalize()

	_, err := w.Events().Subscribe(bus.TypeOriginRebased, func(e bus.Event) error {
		camera = camera.Sub(e.Data().(bus.OriginRebased).Offset)
		return nil
	})
	if err != nil {
		logger.Error("subscribe failed", log.Error(err))
		return
	}

	rng := rand.New(rand.NewSource(*seed))
	start := time.Now()
	steps := 0
	for i := 0; i < *frames && ctx.Err() == nil; i++ {
		delta := time.Duration(10+rng.Intn(15)) * time.Millisecond
		if rng.Intn(500) == 0 {
			delta = 750 * time.Millisecond // hitch
		}
		camera = camera.Add(heading.Mul(*speed * delta.Seconds()))
		res := w.Frame(delta, camera)
		steps += res.Steps

		if *realtime {
			time.Sleep(delta)
		}
	}

	if ctx.Err() != nil {
		logger.Warn("interrupted", log.Uint64("frame", w.Frames()))
	}

	absolute := w.Origin().CurrentOrigin().Add(camera)
	logger.Info("simulation finished",
		log.Uint64("frames", w.Frames()),
		log.Int("steps", steps),
		log.Uint64("rebases", w.Origin().Rebases()),
		log.Vec3("camera", absolute),
		log.Uint64("overruns", w.Scheduler().Stats().Overruns),
		log.Uint64("stale_handles", w.Protocol().Stats().StaleHandles),
		log.Uint64("digest", w.Scene().Digest()),
		log.Duration("wall", time.Since(start)))
}
