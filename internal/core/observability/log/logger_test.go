package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"off", LevelSilent},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestSetLevel(t *testing.T) {
	l := Nop()
	l.SetLevel(LevelWarn)
	assert.Equal(t, LevelWarn, l.GetLevel())
	assert.False(t, l.checkLevel(LevelInfo))
	assert.True(t, l.checkLevel(LevelError))
}

type countingLog struct {
	*Logger
	count int
}

func (c *countingLog) Log(level Level, msg string, fields ...Field) {
	c.count++
}

func TestOnceSuppressesRepeats(t *testing.T) {
	c := &countingLog{Logger: Nop()}
	once := NewOnce(c)

	assert.True(t, once.Log("entity:1", LevelWarn, "stale"))
	assert.False(t, once.Log("entity:1", LevelWarn, "stale"))
	assert.True(t, once.Log("entity:2", LevelWarn, "stale"))
	assert.Equal(t, 2, c.count)

	once.Forget("entity:1")
	assert.True(t, once.Log("entity:1", LevelWarn, "stale"))

	once.Reset()
	assert.True(t, once.Log("entity:2", LevelWarn, "stale"))
	assert.Equal(t, 4, c.count)
}
