package systems

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/spatialcore/internal/core/observability/log"
	"github.com/zeusync/spatialcore/internal/core/scene"
)

type fixedOrigin struct{ v mgl64.Vec3 }

func (o *fixedOrigin) CurrentOrigin() mgl64.Vec3 { return o.v }

type recorder struct {
	name     string
	priority Priority
	calls    *[]string
	err      error
}

func (r *recorder) Name() string       { return r.name }
func (r *recorder) Priority() Priority { return r.priority }
func (r *recorder) FixedUpdate(float64) error {
	*r.calls = append(*r.calls, r.name)
	return r.err
}

func TestManagerOrdersByPriorityThenRegistration(t *testing.T) {
	var calls []string
	m := NewManager(log.Nop())
	require.NoError(t, m.Register(&recorder{name: "a", priority: PriorityLow, calls: &calls}))
	require.NoError(t, m.Register(&recorder{name: "b", priority: PriorityHigh, calls: &calls}))
	require.NoError(t, m.Register(&recorder{name: "c", priority: PriorityLow, calls: &calls}))
	require.NoError(t, m.Register(&recorder{name: "d", priority: PriorityHighest, calls: &calls}))

	assert.ErrorIs(t, m.Register(&recorder{name: "a", calls: &calls}), ErrDuplicateSystem)
	assert.Equal(t, []string{"d", "b", "a", "c"}, m.ExecutionOrder())

	require.NoError(t, m.FixedUpdate(0.1))
	assert.Equal(t, []string{"d", "b", "a", "c"}, calls)

	require.NoError(t, m.Unregister("b"))
	assert.ErrorIs(t, m.Unregister("b"), ErrSystemNotFound)
	require.NoError(t, m.SetEnabled("d", false))
	calls = nil
	require.NoError(t, m.FixedUpdate(0.1))
	assert.Equal(t, []string{"a", "c"}, calls)
}

func TestManagerKeepsRunningAfterFailure(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	m := NewManager(log.Nop())
	require.NoError(t, m.Register(&recorder{name: "bad", priority: PriorityHigh, calls: &calls, err: boom}))
	require.NoError(t, m.Register(&recorder{name: "good", priority: PriorityLow, calls: &calls}))

	err := m.FixedUpdate(0.1)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"bad", "good"}, calls)

	metrics, ok := m.Metrics("bad")
	require.True(t, ok)
	assert.Equal(t, uint64(1), metrics.ExecutionCount)
	assert.Equal(t, uint64(1), metrics.ErrorCount)
	assert.ErrorIs(t, metrics.LastError, boom)

	m.Reset()
	metrics, _ = m.Metrics("bad")
	assert.Zero(t, metrics.ExecutionCount)
}

func TestOrbitStaysOnCircleAtPlanetaryScale(t *testing.T) {
	s := scene.New()
	origin := &fixedOrigin{v: mgl64.Vec3{1.5e11, 0, 0}}
	orbit := NewOrbit(s, origin)
	center := mgl64.Vec3{1.5e11, 0, 0}
	e := s.Create()
	require.NoError(t, orbit.Add(e, OrbitParams{Center: center, Radius: 7e6, Period: 100}))

	for range 250 {
		require.NoError(t, orbit.FixedUpdate(0.1))
		abs, ok := s.Absolutes.Get(e)
		require.True(t, ok)
		assert.InDelta(t, 7e6, abs.Sub(center).Len(), 1e-3)
		pos, _ := s.Positions.Get(e)
		assert.Equal(t, abs.Sub(origin.v), pos)
	}

	assert.ErrorIs(t, orbit.Add(e, OrbitParams{Radius: 1}), ErrInvalidOrbit)
}

func TestOrbitRejectsNonFiniteParams(t *testing.T) {
	tests := []struct {
		name   string
		params OrbitParams
	}{
		{"nan period", OrbitParams{Radius: 1, Period: math.NaN()}},
		{"inf period", OrbitParams{Radius: 1, Period: math.Inf(1)}},
		{"nan radius", OrbitParams{Radius: math.NaN(), Period: 1}},
		{"inf radius", OrbitParams{Radius: math.Inf(1), Period: 1}},
		{"nan phase", OrbitParams{Radius: 1, Period: 1, Phase: math.NaN()}},
		{"inf center", OrbitParams{Center: mgl64.Vec3{math.Inf(-1), 0, 0}, Radius: 1, Period: 1}},
		{"nan axis", OrbitParams{Axis: mgl64.Vec3{0, math.NaN(), 0}, Radius: 1, Period: 1}},
		{"negative radius", OrbitParams{Radius: -1, Period: 1}},
		{"zero period", OrbitParams{Radius: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := scene.New()
			orbit := NewOrbit(s, &fixedOrigin{})
			e := s.Create()

			assert.ErrorIs(t, orbit.Add(e, tt.params), ErrInvalidOrbit)
			assert.Zero(t, orbit.Len())
			assert.False(t, s.Positions.Has(e))
			assert.False(t, s.Absolutes.Has(e))
		})
	}
}

func TestOrbitReturnsAfterOnePeriod(t *testing.T) {
	s := scene.New()
	orbit := NewOrbit(s, &fixedOrigin{})
	e := s.Create()
	require.NoError(t, orbit.Add(e, OrbitParams{Radius: 10, Period: 1, Axis: mgl64.Vec3{0, 0, 1}}))
	start, _ := s.Positions.Get(e)

	for range 4 {
		require.NoError(t, orbit.FixedUpdate(0.25))
	}
	end, _ := s.Positions.Get(e)
	assert.True(t, start.ApproxEqualThreshold(end, 1e-9), "%v vs %v", start, end)
}

func TestSpinRotates(t *testing.T) {
	s := scene.New()
	spin := NewSpin(s)
	e := s.Create()
	spin.Add(e, mgl64.Vec3{0, math.Pi, 0})

	for range 10 {
		require.NoError(t, spin.FixedUpdate(0.05))
	}
	got := s.Rotation(e)
	want := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	assert.True(t, got.ApproxEqualThreshold(want, 1e-9))
}

func TestPathFollowsScript(t *testing.T) {
	s := scene.New()
	origin := &fixedOrigin{v: mgl64.Vec3{100, 0, 0}}
	path := NewPath(s, origin)
	e := s.Create()
	path.Add(e, Linear(mgl64.Vec3{100, 0, 0}, mgl64.Vec3{2, 0, 0}))

	pos, _ := s.Positions.Get(e)
	assert.Equal(t, mgl64.Vec3{0, 0, 0}, pos)

	for range 5 {
		require.NoError(t, path.FixedUpdate(0.5))
	}
	pos, _ = s.Positions.Get(e)
	assert.InDelta(t, 5, pos.X(), 1e-9)
	elapsed, ok := path.Elapsed(e)
	require.True(t, ok)
	assert.InDelta(t, 2.5, elapsed, 1e-12)

	s.Destroy(e)
	require.NoError(t, path.FixedUpdate(0.5))
	_, ok = path.Elapsed(e)
	assert.False(t, ok, "dead entities are dropped")
}

func TestWaypoints(t *testing.T) {
	fn, err := Waypoints(1, true, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 0, 0}, mgl64.Vec3{10, 10, 0})
	require.NoError(t, err)

	assert.Equal(t, mgl64.Vec3{5, 0, 0}, fn(0.5))
	assert.Equal(t, mgl64.Vec3{10, 5, 0}, fn(1.5))
	assert.True(t, fn(3).ApproxEqualThreshold(mgl64.Vec3{0, 0, 0}, 1e-9))
	assert.True(t, fn(3.5).ApproxEqualThreshold(mgl64.Vec3{5, 0, 0}, 1e-9))

	once, err := Waypoints(1, false, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, once(42))

	_, err = Waypoints(1, false)
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestManagerRemoveEntity(t *testing.T) {
	s := scene.New()
	m := NewManager(log.Nop())
	orbit := NewOrbit(s, &fixedOrigin{})
	require.NoError(t, m.Register(orbit))
	e := s.Create()
	require.NoError(t, orbit.Add(e, OrbitParams{Radius: 1, Period: 1}))

	m.RemoveEntity(e)
	assert.Equal(t, 0, orbit.Len())
}
