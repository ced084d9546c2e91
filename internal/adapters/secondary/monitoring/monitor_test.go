package monitoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_StartStop(t *testing.T) {
	t.Run("start samples runtime immediately", func(t *testing.T) {
		monitor := NewMonitorWithInterval(time.Hour)
		monitor.Start(context.Background())
		defer monitor.Stop()

		snapshot := monitor.Snapshot()
		assert.Greater(t, snapshot.Runtime.Goroutines, 0)
		assert.Greater(t, snapshot.Runtime.MemoryBytes, int64(0))
		assert.False(t, snapshot.Runtime.SampledAt.IsZero())
	})

	t.Run("ticker refreshes samples", func(t *testing.T) {
		monitor := NewMonitorWithInterval(10 * time.Millisecond)
		monitor.Start(context.Background())
		defer monitor.Stop()

		first := monitor.Snapshot().Runtime.SampledAt
		assert.Eventually(t, func() bool {
			return monitor.Snapshot().Runtime.SampledAt.After(first)
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("stop is idempotent and restart works", func(t *testing.T) {
		monitor := NewMonitor()
		monitor.Stop()

		monitor.Start(context.Background())
		monitor.Start(context.Background())
		monitor.Stop()
		assert.NotPanics(t, monitor.Stop)

		monitor.Start(context.Background())
		monitor.Stop()
	})

	t.Run("context cancel ends sampling", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		monitor := NewMonitorWithInterval(time.Millisecond)
		monitor.Start(ctx)
		cancel()
		monitor.Stop()
	})
}

func TestMonitor_Counters(t *testing.T) {
	monitor := NewMonitor()

	monitor.RecordHTTPRequest(200)
	monitor.RecordHTTPRequest(404)
	monitor.RecordHTTPRequest(502)
	monitor.RecordWebSocketConnection()
	monitor.RecordParse(5, nil)
	monitor.RecordParse(3, nil)
	monitor.RecordParse(0, errors.New("no content"))

	snapshot := monitor.Snapshot()
	assert.Equal(t, int64(3), snapshot.HTTPRequests)
	assert.Equal(t, int64(1), snapshot.HTTPErrors)
	assert.Equal(t, int64(1), snapshot.WebSockets)
	assert.Equal(t, int64(2), snapshot.DecksParsed)
	assert.Equal(t, int64(8), snapshot.SlidesParsed)
	assert.Equal(t, int64(1), snapshot.ParseFailures)
}

func TestMonitor_Timings(t *testing.T) {
	t.Run("generation average", func(t *testing.T) {
		monitor := NewMonitor()

		monitor.RecordGeneration(100*time.Millisecond, nil)
		snapshot := monitor.Snapshot()
		assert.Equal(t, int64(1), snapshot.Generation.Count)
		assert.Equal(t, int64(100), snapshot.Generation.AverageMs)

		monitor.RecordGeneration(200*time.Millisecond, errors.New("rate limited"))
		snapshot = monitor.Snapshot()
		assert.Equal(t, int64(2), snapshot.Generation.Count)
		assert.Equal(t, int64(1), snapshot.Generation.Failures)
		assert.InDelta(t, 110, snapshot.Generation.AverageMs, 1)
		assert.Equal(t, int64(200), snapshot.Generation.LastMs)
	})

	t.Run("exports per format", func(t *testing.T) {
		monitor := NewMonitor()

		monitor.RecordExport("pptx", 40*time.Millisecond, nil)
		monitor.RecordExport("pptx", 40*time.Millisecond, nil)
		monitor.RecordExport("json", time.Millisecond, errors.New("empty deck"))

		snapshot := monitor.Snapshot()
		require.Len(t, snapshot.Exports, 2)
		assert.Equal(t, int64(2), snapshot.Exports["pptx"].Count)
		assert.Equal(t, int64(1), snapshot.Exports["json"].Failures)
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		monitor := NewMonitor()
		monitor.RecordExport("html", time.Millisecond, nil)

		snapshot := monitor.Snapshot()
		monitor.RecordExport("html", time.Millisecond, nil)

		assert.Equal(t, int64(1), snapshot.Exports["html"].Count)
	})
}

func TestMonitor_Health(t *testing.T) {
	monitor := NewMonitor()
	assert.True(t, monitor.IsHealthy(), "unsampled monitor is healthy")

	monitor.mu.Lock()
	monitor.runtime.Goroutines = maxHealthyGoroutines + 1
	monitor.mu.Unlock()
	assert.False(t, monitor.IsHealthy())
	assert.False(t, monitor.Snapshot().Healthy)
}

func TestMonitor_Uptime(t *testing.T) {
	monitor := NewMonitor()
	monitor.now = func() time.Time { return monitor.startedAt.Add(90 * time.Second) }

	assert.Equal(t, 90*time.Second, monitor.Uptime())
	assert.Equal(t, "1m30s", monitor.Snapshot().Uptime)
}

func TestMonitor_Concurrency(t *testing.T) {
	monitor := NewMonitor()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			monitor.RecordHTTPRequest(200)
			monitor.RecordExport("pptx", time.Millisecond, nil)
			monitor.RecordParse(1, nil)
			_ = monitor.Snapshot()
		}()
	}
	wg.Wait()

	snapshot := monitor.Snapshot()
	assert.Equal(t, int64(50), snapshot.HTTPRequests)
	assert.Equal(t, int64(50), snapshot.Exports["pptx"].Count)
	assert.Equal(t, int64(50), snapshot.DecksParsed)
}

func TestSafeUint64ToInt64(t *testing.T) {
	assert.Equal(t, int64(42), safeUint64ToInt64(42))
	assert.Equal(t, int64(9223372036854775807), safeUint64ToInt64(1<<63))
}
