package systems

import (
	"errors"
	"fmt"
	"math"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/spatialcore/internal/core/scene"
)

var ErrInvalidOrbit = errors.New("invalid orbit")

// OrbitParams describes a circular orbit in absolute coordinates.
type OrbitParams struct {
	Center mgl64.Vec3
	Radius float64
	// Period is the time, in seconds, of one revolution.
	Period float64
	// Axis is the orbit normal. Zero means +Y.
	Axis mgl64.Vec3
	// Phase is the starting angle in radians.
	Phase float64
}

type orbitState struct {
	params OrbitParams
	u, v   mgl64.Vec3
	angle  float64
}

// Orbit moves entities along circular orbits. Positions are derived from
// absolute coordinates every step, so they stay exact at planetary scale.
type Orbit struct {
	scene   *scene.Scene
	origin  OriginReader
	entries *orderedmap.OrderedMap[scene.Entity, *orbitState]
}

func NewOrbit(s *scene.Scene, origin OriginReader) *Orbit {
	return &Orbit{
		scene:   s,
		origin:  origin,
		entries: orderedmap.NewOrderedMap[scene.Entity, *orbitState](),
	}
}

func (o *Orbit) Name() string       { return "orbit" }
func (o *Orbit) Priority() Priority { return PriorityNormal }

// Add puts e on an orbit and places it at its starting point.
func (o *Orbit) Add(e scene.Entity, p OrbitParams) error {
	if !finite(p.Radius, p.Period, p.Phase) || !finite(p.Center[:]...) || !finite(p.Axis[:]...) {
		return fmt.Errorf("%w: non-finite parameter", ErrInvalidOrbit)
	}
	if p.Radius < 0 || p.Period <= 0 {
		return ErrInvalidOrbit
	}
	axis := p.Axis
	if axis.LenSqr() == 0 {
		axis = mgl64.Vec3{0, 1, 0}
	}
	axis = axis.Normalize()
	u := perpendicular(axis)
	st := &orbitState{params: p, u: u, v: axis.Cross(u), angle: p.Phase}
	o.entries.Set(e, st)
	o.place(e, st)
	return nil
}

func (o *Orbit) Remove(e scene.Entity) { o.entries.Delete(e) }

func (o *Orbit) Reset() {
	o.entries = orderedmap.NewOrderedMap[scene.Entity, *orbitState]()
}

func (o *Orbit) Len() int { return o.entries.Len() }

func (o *Orbit) FixedUpdate(dt float64) error {
	for el := o.entries.Front(); el != nil; {
		next := el.Next()
		if !o.scene.Alive(el.Key) {
			o.entries.Delete(el.Key)
			el = next
			continue
		}
		st := el.Value
		st.angle = math.Mod(st.angle+2*math.Pi*dt/st.params.Period, 2*math.Pi)
		o.place(el.Key, st)
		el = next
	}
	return nil
}

func (o *Orbit) place(e scene.Entity, st *orbitState) {
	sin, cos := math.Sincos(st.angle)
	offset := st.u.Mul(cos * st.params.Radius).Add(st.v.Mul(sin * st.params.Radius))
	o.scene.SetAbsolute(e, st.params.Center.Add(offset), o.origin.CurrentOrigin())
}

// perpendicular returns a unit vector orthogonal to the unit vector n.
func perpendicular(n mgl64.Vec3) mgl64.Vec3 {
	ref := mgl64.Vec3{1, 0, 0}
	if math.Abs(n.X()) > 0.9 {
		ref = mgl64.Vec3{0, 0, 1}
	}
	return n.Cross(ref).Normalize()
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
