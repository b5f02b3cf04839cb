package systems

import (
	"errors"
	"math"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/spatialcore/internal/core/scene"
)

var ErrEmptyPath = errors.New("path needs at least one waypoint")

// PathFunc returns an absolute position for a simulated time in seconds.
type PathFunc func(t float64) mgl64.Vec3

type pathState struct {
	fn PathFunc
	t  float64
}

// Path drives entities along scripted trajectories of simulated time. Meant
// for kinematic entities: the next pre-step pushes the scripted position into
// the physics engine.
type Path struct {
	scene   *scene.Scene
	origin  OriginReader
	entries *orderedmap.OrderedMap[scene.Entity, *pathState]
}

func NewPath(s *scene.Scene, origin OriginReader) *Path {
	return &Path{
		scene:   s,
		origin:  origin,
		entries: orderedmap.NewOrderedMap[scene.Entity, *pathState](),
	}
}

func (p *Path) Name() string       { return "path" }
func (p *Path) Priority() Priority { return PriorityHigh }

// Add starts e on fn at time zero and places it there.
func (p *Path) Add(e scene.Entity, fn PathFunc) {
	st := &pathState{fn: fn}
	p.entries.Set(e, st)
	p.scene.SetAbsolute(e, fn(0), p.origin.CurrentOrigin())
}

func (p *Path) Remove(e scene.Entity) { p.entries.Delete(e) }

func (p *Path) Reset() {
	p.entries = orderedmap.NewOrderedMap[scene.Entity, *pathState]()
}

// Elapsed returns how far along its path e is, in seconds.
func (p *Path) Elapsed(e scene.Entity) (float64, bool) {
	st, ok := p.entries.Get(e)
	if !ok {
		return 0, false
	}
	return st.t, true
}

func (p *Path) FixedUpdate(dt float64) error {
	origin := p.origin.CurrentOrigin()
	for el := p.entries.Front(); el != nil; {
		next := el.Next()
		if !p.scene.Alive(el.Key) {
			p.entries.Delete(el.Key)
			el = next
			continue
		}
		st := el.Value
		st.t += dt
		p.scene.SetAbsolute(el.Key, st.fn(st.t), origin)
		el = next
	}
	return nil
}

// Linear moves from start at a constant velocity.
func Linear(start, velocity mgl64.Vec3) PathFunc {
	return func(t float64) mgl64.Vec3 {
		return start.Add(velocity.Mul(t))
	}
}

// Waypoints visits points in order, spending segment seconds between
// consecutive points, and loops back to the first when loop is set.
// Otherwise it rests on the last point.
func Waypoints(segment float64, loop bool, points ...mgl64.Vec3) (PathFunc, error) {
	if len(points) == 0 {
		return nil, ErrEmptyPath
	}
	if segment <= 0 || len(points) == 1 {
		first := points[0]
		return func(float64) mgl64.Vec3 { return first }, nil
	}
	pts := append([]mgl64.Vec3(nil), points...)
	if loop {
		pts = append(pts, pts[0])
	}
	legs := len(pts) - 1
	total := segment * float64(legs)
	return func(t float64) mgl64.Vec3 {
		if t <= 0 {
			return pts[0]
		}
		if loop {
			t = math.Mod(t, total)
		} else if t >= total {
			return pts[legs]
		}
		leg := int(t / segment)
		if leg >= legs {
			leg = legs - 1
		}
		f := (t - float64(leg)*segment) / segment
		a, b := pts[leg], pts[leg+1]
		return a.Add(b.Sub(a).Mul(f))
	}, nil
}
