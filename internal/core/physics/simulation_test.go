package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSimulation(t *testing.T, workers int) (*Simulation, ShapeIndex) {
	t.Helper()
	sim := NewSimulation(Config{Gravity: mgl32.Vec3{0, -10, 0}, Workers: workers, SleepDelay: 0.5})
	box, err := sim.AddShape(Box(1, 1, 1))
	require.NoError(t, err)
	return sim, box
}

func TestAddShapeRejectsInvalidDimensions(t *testing.T) {
	sim := NewSimulation(DefaultConfig())
	tests := []Shape{
		Sphere(0),
		Box(1, -1, 1),
		Capsule(1, 0),
		Cylinder(-1, 2),
		{Kind: 42, Radius: 1},
	}
	for _, shape := range tests {
		idx, err := sim.AddShape(shape)
		assert.ErrorIs(t, err, ErrInvalidShape, shape.Kind.String())
		assert.Equal(t, InvalidShape, idx)
	}
}

func TestAddBodyWithUnknownShapeFails(t *testing.T) {
	sim := NewSimulation(DefaultConfig())
	_, err := sim.AddBody(BodyDescription{Kind: BodyKinematic, Shape: 3})
	assert.ErrorIs(t, err, ErrShapeNotFound)
}

func TestRemovedHandlesAreNeverReused(t *testing.T) {
	sim, box := newTestSimulation(t, 1)

	first, err := sim.AddBody(BodyDescription{Kind: BodyKinematic, Shape: box, Pose: PoseAt(mgl32.Vec3{1, 2, 3})})
	require.NoError(t, err)
	require.NoError(t, sim.RemoveBody(first))

	second, err := sim.AddBody(BodyDescription{Kind: BodyKinematic, Shape: box})
	require.NoError(t, err)
	assert.Equal(t, first.index, second.index, "slot is recycled")
	assert.NotEqual(t, first, second, "generation differs")

	_, err = sim.BodyPose(first)
	assert.ErrorIs(t, err, ErrBodyNotFound)
	assert.ErrorIs(t, sim.RemoveBody(first), ErrBodyNotFound)
	assert.Equal(t, 1, sim.BodyCount())

	_, err = sim.BodyPose(BodyHandle{})
	assert.ErrorIs(t, err, ErrBodyNotFound)
}

func TestStaticHandlesGoStaleAfterRemoval(t *testing.T) {
	sim, box := newTestSimulation(t, 1)
	h, err := sim.AddStatic(StaticDescription{Shape: box, Pose: PoseAt(mgl32.Vec3{5, 0, 0})})
	require.NoError(t, err)

	pose, err := sim.StaticPose(h)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{5, 0, 0}, pose.Position)

	require.NoError(t, sim.RemoveStatic(h))
	_, err = sim.StaticPose(h)
	assert.ErrorIs(t, err, ErrStaticNotFound)
}

func TestDynamicBodyFallsUnderGravity(t *testing.T) {
	sim, box := newTestSimulation(t, 1)
	h, err := sim.AddBody(BodyDescription{Kind: BodyDynamic, Shape: box, Pose: PoseAt(mgl32.Vec3{0, 100, 0}), Mass: 1})
	require.NoError(t, err)

	require.NoError(t, sim.Step(0.1))
	pose, err := sim.BodyPose(h)
	require.NoError(t, err)
	assert.InDelta(t, 99.9, pose.Position.Y(), 1e-4)
}

func TestKinematicBodyIgnoresGravity(t *testing.T) {
	sim, box := newTestSimulation(t, 1)
	h, err := sim.AddBody(BodyDescription{
		Kind:           BodyKinematic,
		Shape:          box,
		Pose:           PoseAt(mgl32.Vec3{0, 10, 0}),
		LinearVelocity: mgl32.Vec3{1, 0, 0},
	})
	require.NoError(t, err)

	require.NoError(t, sim.Step(0.5))
	pose, err := sim.BodyPose(h)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{0.5, 10, 0}, pose.Position)
}

func TestDynamicBodyRestsOnStatic(t *testing.T) {
	sim, box := newTestSimulation(t, 1)
	ground, err := sim.AddShape(Box(20, 1, 20))
	require.NoError(t, err)
	_, err = sim.AddStatic(StaticDescription{Shape: ground, Pose: PoseAt(mgl32.Vec3{0, -0.5, 0})})
	require.NoError(t, err)
	h, err := sim.AddBody(BodyDescription{Kind: BodyDynamic, Shape: box, Pose: PoseAt(mgl32.Vec3{0, 2, 0}), SleepThreshold: 0.01})
	require.NoError(t, err)

	for i := 0; i < 120; i++ {
		require.NoError(t, sim.Step(1.0/60))
	}
	pose, err := sim.BodyPose(h)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, pose.Position.Y(), 1e-3)

	awake, err := sim.IsAwake(h)
	require.NoError(t, err)
	assert.False(t, awake, "resting body falls asleep")
}

func TestSetBodyPoseLeavesBoundsStaleUntilUpdated(t *testing.T) {
	sim, box := newTestSimulation(t, 1)
	h, err := sim.AddBody(BodyDescription{Kind: BodyKinematic, Shape: box})
	require.NoError(t, err)

	require.NoError(t, sim.SetBodyPose(h, PoseAt(mgl32.Vec3{50, 0, 0})))
	_, hit := sim.RayCast(mgl32.Vec3{50, 10, 0}, mgl32.Vec3{0, -1, 0}, 100)
	assert.False(t, hit, "broad phase still holds the old bounds")

	require.NoError(t, sim.UpdateBounds(h))
	res, hit := sim.RayCast(mgl32.Vec3{50, 10, 0}, mgl32.Vec3{0, -1, 0}, 100)
	require.True(t, hit)
	assert.Equal(t, h, res.Body)
	assert.InDelta(t, 9.5, res.Distance, 1e-5)
}

func TestSleepingBodiesAreSkippedUntilAwakened(t *testing.T) {
	sim, box := newTestSimulation(t, 1)
	h, err := sim.AddBody(BodyDescription{Kind: BodyKinematic, Shape: box, SleepThreshold: 0.1})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, sim.Step(0.1))
	}
	awake, err := sim.IsAwake(h)
	require.NoError(t, err)
	require.False(t, awake)

	require.NoError(t, sim.SetBodyVelocity(h, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}))
	require.NoError(t, sim.Step(0.1))
	pose, _ := sim.BodyPose(h)
	assert.Equal(t, mgl32.Vec3{}, pose.Position, "asleep, not integrated")

	require.NoError(t, sim.Awaken(h))
	require.NoError(t, sim.Step(0.1))
	pose, _ = sim.BodyPose(h)
	assert.InDelta(t, 0.1, pose.Position.X(), 1e-6)
}

func TestStepRejectsInvalidDuration(t *testing.T) {
	sim, _ := newTestSimulation(t, 1)
	assert.ErrorIs(t, sim.Step(0), ErrInvalidStep)
	assert.ErrorIs(t, sim.Step(-1), ErrInvalidStep)
}

func TestParallelStepMatchesSerialStep(t *testing.T) {
	build := func(workers int) (*Simulation, []BodyHandle) {
		sim, box := newTestSimulation(t, workers)
		handles := make([]BodyHandle, 0, 64)
		for i := 0; i < 64; i++ {
			h, err := sim.AddBody(BodyDescription{
				Kind:            BodyDynamic,
				Shape:           box,
				Pose:            PoseAt(mgl32.Vec3{float32(i), 10, float32(-i)}),
				LinearVelocity:  mgl32.Vec3{float32(i) * 0.1, 1, 0},
				AngularVelocity: mgl32.Vec3{0, float32(i) * 0.01, 0},
			})
			require.NoError(t, err)
			handles = append(handles, h)
		}
		return sim, handles
	}

	serial, sh := build(1)
	parallel, ph := build(8)
	for i := 0; i < 30; i++ {
		require.NoError(t, serial.Step(1.0/30))
		require.NoError(t, parallel.Step(1.0/30))
	}
	for i := range sh {
		a, _ := serial.BodyPose(sh[i])
		b, _ := parallel.BodyPose(ph[i])
		assert.Equal(t, a, b)
	}
}

func TestRayCastPicksNearest(t *testing.T) {
	sim, box := newTestSimulation(t, 1)
	far, err := sim.AddStatic(StaticDescription{Shape: box, Pose: PoseAt(mgl32.Vec3{0, 0, 10})})
	require.NoError(t, err)
	near, err := sim.AddStatic(StaticDescription{Shape: box, Pose: PoseAt(mgl32.Vec3{0, 0, 5})})
	require.NoError(t, err)

	hit, ok := sim.RayCast(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, 100)
	require.True(t, ok)
	assert.True(t, hit.IsStatic())
	assert.Equal(t, near, hit.Static)
	assert.NotEqual(t, far, hit.Static)
	assert.InDelta(t, 4.5, hit.Distance, 1e-5)

	_, ok = sim.RayCast(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, 4)
	assert.False(t, ok)
}

func TestClearInvalidatesEverything(t *testing.T) {
	sim, box := newTestSimulation(t, 1)
	b, _ := sim.AddBody(BodyDescription{Kind: BodyKinematic, Shape: box})
	st, _ := sim.AddStatic(StaticDescription{Shape: box})

	sim.Clear()
	assert.Zero(t, sim.BodyCount())
	assert.Zero(t, sim.StaticCount())
	_, err := sim.BodyPose(b)
	assert.ErrorIs(t, err, ErrBodyNotFound)
	_, err = sim.StaticPose(st)
	assert.ErrorIs(t, err, ErrStaticNotFound)

	_, err = sim.Shape(box)
	assert.NoError(t, err, "shapes survive a clear")
}

func BenchmarkStep(b *testing.B) {
	sim := NewSimulation(Config{Gravity: mgl32.Vec3{0, -10, 0}, Workers: 4})
	box, _ := sim.AddShape(Box(1, 1, 1))
	for i := 0; i < 4096; i++ {
		_, _ = sim.AddBody(BodyDescription{Kind: BodyDynamic, Shape: box, Pose: PoseAt(mgl32.Vec3{float32(i), 0, 0})})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = sim.Step(1.0 / 60)
	}
}

func TestLiveHandleListing(t *testing.T) {
	sim := NewSimulation(DefaultConfig())
	shape, err := sim.AddShape(Sphere(1))
	require.NoError(t, err)

	a, err := sim.AddBody(BodyDescription{Kind: BodyKinematic, Shape: shape, Pose: PoseAt(mgl32.Vec3{})})
	require.NoError(t, err)
	b, err := sim.AddBody(BodyDescription{Kind: BodyDynamic, Shape: shape, Pose: PoseAt(mgl32.Vec3{})})
	require.NoError(t, err)
	st, err := sim.AddStatic(StaticDescription{Shape: shape, Pose: PoseAt(mgl32.Vec3{})})
	require.NoError(t, err)

	require.NoError(t, sim.RemoveBody(a))
	assert.Equal(t, []BodyHandle{b}, sim.Bodies())
	assert.Equal(t, []StaticHandle{st}, sim.Statics())
}
