package bot

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestOnceSchedule(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	s := onceSchedule{at: at}
	assert.Equal(t, at, s.Next(at.Add(-time.Hour)))
	assert.True(t, s.Next(at).IsZero())
	assert.True(t, s.Next(at.Add(time.Second)).IsZero())
}

func TestPlannerOnceRunsAndForgets(t *testing.T) {
	p := NewPlanner(zaptest.NewLogger(t))
	p.Start()
	defer p.Stop()

	var runs atomic.Int32
	p.Once(time.Now().Add(100*time.Millisecond), func() { runs.Add(1) })
	require.Equal(t, 1, p.Pending())

	require.Eventually(t, func() bool { return runs.Load() == 1 && p.Pending() == 0 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestPlannerEvery(t *testing.T) {
	p := NewPlanner(nil)
	_, err := p.Every("0 8 * * MON", func() {})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Pending())

	_, err = p.Every("not a spec", func() {})
	assert.Error(t, err)
}
