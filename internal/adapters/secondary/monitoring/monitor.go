// Package monitoring keeps in-process counters for the deck server.
package monitoring

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"
)

const (
	defaultSampleInterval = 30 * time.Second

	// emaAlpha weights the newest sample in moving averages
	emaAlpha = 0.1

	maxHealthyMemory     = int64(500 * 1024 * 1024)
	maxHealthyGoroutines = 1000
)

// Timing summarises one kind of operation
type Timing struct {
	Count     int64 `json:"count"`
	Failures  int64 `json:"failures"`
	AverageMs int64 `json:"averageMs"`
	LastMs    int64 `json:"lastMs"`

	average time.Duration
}

func (t *Timing) record(d time.Duration, failed bool) {
	t.Count++
	if failed {
		t.Failures++
	}

	if t.average == 0 {
		t.average = d
	} else {
		t.average = time.Duration(float64(t.average)*(1-emaAlpha) + float64(d)*emaAlpha)
	}
	t.AverageMs = t.average.Milliseconds()
	t.LastMs = d.Milliseconds()
}

// Runtime is the last sampled process state
type Runtime struct {
	MemoryBytes int64     `json:"memoryBytes"`
	HeapBytes   int64     `json:"heapBytes"`
	Goroutines  int       `json:"goroutines"`
	GCCycles    uint32    `json:"gcCycles"`
	SampledAt   time.Time `json:"sampledAt"`
}

// Snapshot is a copy of all counters
type Snapshot struct {
	StartedAt     time.Time         `json:"startedAt"`
	Uptime        string            `json:"uptime"`
	Healthy       bool              `json:"healthy"`
	HTTPRequests  int64             `json:"httpRequests"`
	HTTPErrors    int64             `json:"httpErrors"`
	WebSockets    int64             `json:"websocketConnections"`
	DecksParsed   int64             `json:"decksParsed"`
	SlidesParsed  int64             `json:"slidesParsed"`
	ParseFailures int64             `json:"parseFailures"`
	Generation    Timing            `json:"generation"`
	Exports       map[string]Timing `json:"exports"`
	Runtime       Runtime           `json:"runtime"`
}

// Monitor records server activity. All methods are safe for concurrent use.
type Monitor struct {
	mu            sync.RWMutex
	startedAt     time.Time
	httpRequests  int64
	httpErrors    int64
	websockets    int64
	decksParsed   int64
	slidesParsed  int64
	parseFailures int64
	generation    Timing
	exports       map[string]*Timing
	runtime       Runtime

	interval time.Duration
	stopCh   chan struct{}
	running  bool
	now      func() time.Time
}

// NewMonitor creates a monitor sampling runtime stats every 30 seconds once started
func NewMonitor() *Monitor {
	return NewMonitorWithInterval(defaultSampleInterval)
}

// NewMonitorWithInterval creates a monitor with a custom sampling interval
func NewMonitorWithInterval(interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = defaultSampleInterval
	}
	return &Monitor{
		startedAt: time.Now(),
		exports:   make(map[string]*Timing),
		interval:  interval,
		now:       time.Now,
	}
}

// Start samples runtime stats until ctx ends or Stop is called. Extra calls are ignored.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	stopCh := make(chan struct{})
	m.stopCh = stopCh
	m.mu.Unlock()

	m.sample()

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-stopCh:
				return
			case <-ticker.C:
				m.sample()
			}
		}
	}()
}

// Stop ends sampling. It is safe to call more than once.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.running = false
	close(m.stopCh)
}

// sample refreshes the runtime section
func (m *Monitor) sample() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	rt := Runtime{
		MemoryBytes: safeUint64ToInt64(memStats.Alloc),
		HeapBytes:   safeUint64ToInt64(memStats.HeapAlloc),
		Goroutines:  runtime.NumGoroutine(),
		GCCycles:    memStats.NumGC,
		SampledAt:   m.now(),
	}

	m.mu.Lock()
	m.runtime = rt
	m.mu.Unlock()
}

// RecordHTTPRequest counts a served request. 5xx responses count as errors.
func (m *Monitor) RecordHTTPRequest(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.httpRequests++
	if status >= 500 {
		m.httpErrors++
	}
}

// RecordWebSocketConnection counts an accepted websocket client
func (m *Monitor) RecordWebSocketConnection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.websockets++
}

// RecordGeneration records one upstream text-generation call
func (m *Monitor) RecordGeneration(duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation.record(duration, err != nil)
}

// RecordParse records a parse attempt producing slides slides
func (m *Monitor) RecordParse(slides int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.parseFailures++
		return
	}
	m.decksParsed++
	m.slidesParsed += int64(slides)
}

// RecordExport records one export render in format
func (m *Monitor) RecordExport(format string, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	timing, ok := m.exports[format]
	if !ok {
		timing = &Timing{}
		m.exports[format] = timing
	}
	timing.record(duration, err != nil)
}

// Uptime returns time since the monitor was created
func (m *Monitor) Uptime() time.Duration {
	return m.now().Sub(m.startedAt)
}

// Snapshot returns a copy of every counter
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	exports := make(map[string]Timing, len(m.exports))
	for format, timing := range m.exports {
		exports[format] = *timing
	}

	return Snapshot{
		StartedAt:     m.startedAt,
		Uptime:        m.Uptime().Round(time.Second).String(),
		Healthy:       m.healthy(),
		HTTPRequests:  m.httpRequests,
		HTTPErrors:    m.httpErrors,
		WebSockets:    m.websockets,
		DecksParsed:   m.decksParsed,
		SlidesParsed:  m.slidesParsed,
		ParseFailures: m.parseFailures,
		Generation:    m.generation,
		Exports:       exports,
		Runtime:       m.runtime,
	}
}

// IsHealthy reports whether the last runtime sample is within limits
func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthy()
}

// healthy expects mu to be held. An unsampled monitor is healthy.
func (m *Monitor) healthy() bool {
	return m.runtime.MemoryBytes < maxHealthyMemory &&
		m.runtime.Goroutines < maxHealthyGoroutines
}

// safeUint64ToInt64 caps val at the largest int64
func safeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(val)
}
