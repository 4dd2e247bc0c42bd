package metrics

import (
	"sort"
	"sync"
	"time"
)

const maxSamples = 1000

type Metrics struct {
	mutex         sync.RWMutex
	requests      map[string]int64
	responseTimes map[string][]time.Duration
	statusCodes   map[string]map[int]int64
	startTime     time.Time
}

type Snapshot struct {
	TotalRequests int64                    `json:"total_requests"`
	Uptime        time.Duration            `json:"uptime"`
	Scripts       map[string]ScriptMetrics `json:"scripts"`
}

type ScriptMetrics struct {
	Requests    int64         `json:"requests"`
	Failures    int64         `json:"failures"`
	AvgResponse time.Duration `json:"avg_response"`
	P50Response time.Duration `json:"p50_response"`
	P95Response time.Duration `json:"p95_response"`
	P99Response time.Duration `json:"p99_response"`
	StatusCodes map[int]int64 `json:"status_codes"`
}

func (m *Metrics) IncrementRequests(script string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.requests[script]++
}

func (m *Metrics) RecordResponse(script string, duration time.Duration, statusCode int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.responseTimes[script] = append(m.responseTimes[script], duration)

	if len(m.responseTimes[script]) > maxSamples {
		m.responseTimes[script] = m.responseTimes[script][1:]
	}

	if m.statusCodes[script] == nil {
		m.statusCodes[script] = make(map[int]int64)
	}
	m.statusCodes[script][statusCode]++
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime:  time.Since(m.startTime),
		Scripts: make(map[string]ScriptMetrics),
	}

	allScripts := make(map[string]bool)
	for script := range m.requests {
		allScripts[script] = true
	}
	for script := range m.responseTimes {
		allScripts[script] = true
	}

	for script := range allScripts {
		snap.TotalRequests += m.requests[script]

		sm := ScriptMetrics{
			Requests:    m.requests[script],
			StatusCodes: make(map[int]int64, len(m.statusCodes[script])),
		}

		for code, count := range m.statusCodes[script] {
			sm.StatusCodes[code] = count
			if code >= 500 {
				sm.Failures += count
			}
		}

		durations := m.responseTimes[script]
		if len(durations) > 0 {
			sorted := make([]time.Duration, len(durations))
			copy(sorted, durations)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			sm.AvgResponse = average(sorted)
			sm.P50Response = percentile(sorted, 0.50)
			sm.P95Response = percentile(sorted, 0.95)
			sm.P99Response = percentile(sorted, 0.99)
		}

		snap.Scripts[script] = sm
	}

	return snap
}

func NewMetrics() *Metrics {
	return &Metrics{
		requests:      make(map[string]int64),
		responseTimes: make(map[string][]time.Duration),
		statusCodes:   make(map[string]map[int]int64),
		startTime:     time.Now(),
	}
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
