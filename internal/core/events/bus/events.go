package bus

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// TypeOriginRebased is published after a rebase has updated both the
	// scene and the physics engine. Data is OriginRebased.
	TypeOriginRebased = "origin.rebased"
	// TypeSchedulerOverrun is published when the fixed-step accumulator drops
	// simulated time. Data is SchedulerOverrun.
	TypeSchedulerOverrun = "scheduler.overrun"
)

// OriginRebased carries the offset just applied. Anything holding local
// coordinates outside the scene (cameras, smoothing state) subtracts Offset.
type OriginRebased struct {
	Offset mgl64.Vec3
	Origin mgl64.Vec3
	Count  uint64
}

type SchedulerOverrun struct {
	Frame   uint64
	Owed    time.Duration
	Dropped time.Duration
}
