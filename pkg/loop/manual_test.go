package loop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManual_AfterFuncOrder(t *testing.T) {
	m := NewManual(time.Time{})
	var order []string

	m.AfterFunc(300*time.Millisecond, func() { order = append(order, "c") })
	m.AfterFunc(100*time.Millisecond, func() { order = append(order, "a") })
	m.AfterFunc(100*time.Millisecond, func() { order = append(order, "b") })

	m.Advance(99 * time.Millisecond)
	assert.Empty(t, order)

	m.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 0, m.Pending())
}

func TestManual_NowFollowsCallbacks(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManual(start)

	var seen time.Time
	m.AfterFunc(2*time.Second, func() { seen = m.Now() })
	m.Advance(5 * time.Second)

	assert.Equal(t, start.Add(2*time.Second), seen)
	assert.Equal(t, start.Add(5*time.Second), m.Now())
}

func TestManual_NestedScheduling(t *testing.T) {
	m := NewManual(time.Time{})
	var fired []time.Duration
	start := m.Now()

	m.AfterFunc(100*time.Millisecond, func() {
		fired = append(fired, m.Now().Sub(start))
		m.AfterFunc(300*time.Millisecond, func() {
			fired = append(fired, m.Now().Sub(start))
		})
	})

	m.Advance(time.Second)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 400 * time.Millisecond}, fired)
}

func TestManual_EveryAndCancel(t *testing.T) {
	m := NewManual(time.Time{})
	count := 0
	cancel := m.Every(30*time.Millisecond, func() { count++ })

	m.Advance(95 * time.Millisecond)
	assert.Equal(t, 3, count)
	assert.Equal(t, 1, m.Pending())

	cancel()
	m.Advance(time.Second)
	assert.Equal(t, 3, count)
	assert.Equal(t, 0, m.Pending())
}

func TestManual_CancelInsideCallback(t *testing.T) {
	m := NewManual(time.Time{})
	count := 0
	var cancel Cancel
	cancel = m.Every(10*time.Millisecond, func() {
		count++
		if count == 2 {
			cancel()
		}
	})

	m.Advance(time.Second)
	assert.Equal(t, 2, count)
}
