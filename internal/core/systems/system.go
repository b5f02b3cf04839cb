// Package systems runs world logic once per fixed step, after physics.
package systems

import (
	"errors"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/spatialcore/internal/core/scene"
)

var (
	ErrDuplicateSystem = errors.New("system already registered")
	ErrSystemNotFound  = errors.New("system not found")
)

// System is world logic advanced by the fixed step. Systems with a higher
// Priority run first; equal priorities run in registration order.
type System interface {
	Name() string
	Priority() Priority
	FixedUpdate(dt float64) error
}

// EntityRemover is implemented by systems that track entities of their own
// and must forget them when the entity is destroyed.
type EntityRemover interface {
	Remove(e scene.Entity)
}

// Resetter is implemented by systems holding state that must be cleared on
// world reinitialization.
type Resetter interface {
	Reset()
}

// OriginReader exposes the cumulative floating origin.
type OriginReader interface {
	CurrentOrigin() mgl64.Vec3
}

// Priority defines execution order priority
type Priority uint16

const (
	PriorityLowest  Priority = 200
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	ErrorCount           uint64
	LastError            error
}

func (m *Metrics) record(elapsed time.Duration, err error) {
	m.ExecutionCount++
	m.TotalExecutionTime += elapsed
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	if elapsed > m.MaxExecutionTime {
		m.MaxExecutionTime = elapsed
	}
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}
