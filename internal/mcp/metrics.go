package mcp

import (
	"sort"
	"sync"
	"time"

	"awmcp/internal/envelope"
	"awmcp/internal/storage"
)

// ToolStats holds aggregated invocation stats for a single tool in the
// current process.
type ToolStats struct {
	ToolName     string  `json:"toolName"`
	CallCount    int64   `json:"callCount"`
	ErrorCount   int64   `json:"errorCount"`
	TotalResults int64   `json:"totalResults"`
	TotalBytes   int64   `json:"totalBytes"`
	TotalMs      int64   `json:"totalMs"`
	AvgLatencyMs float64 `json:"avgLatencyMs"` // computed on read
	ErrorRate    float64 `json:"errorRate"`    // computed on read
}

func (s *ToolStats) avgLatency() float64 {
	if s.CallCount == 0 {
		return 0
	}
	return float64(s.TotalMs) / float64(s.CallCount)
}

func (s *ToolStats) errorRate() float64 {
	if s.CallCount == 0 {
		return 0
	}
	return float64(s.ErrorCount) / float64(s.CallCount)
}

// invocationRecorder aggregates per-tool call stats in memory and mirrors
// each call into SQLite when persistence is enabled.
type invocationRecorder struct {
	mu    sync.Mutex
	tools map[string]*ToolStats
	db    *storage.DB // nil disables persistence
}

func newInvocationRecorder(db *storage.DB) *invocationRecorder {
	return &invocationRecorder{
		tools: make(map[string]*ToolStats),
		db:    db,
	}
}

// Record updates the in-memory aggregate for one tool call and, when a
// store is attached, persists the invocation asynchronously. Write errors
// are dropped; metrics never fail a tool call.
func (r *invocationRecorder) Record(toolName string, resp *envelope.Response, responseBytes int, elapsed time.Duration) {
	success := true
	errorCode := ""
	if resp != nil && resp.IsError() {
		success = false
		errorCode = resp.Error.Code
	}

	// The envelope only carries an item count when the result was trimmed;
	// untrimmed calls record zero results rather than re-counting payloads.
	resultCount := 0
	if resp != nil && resp.Meta != nil && resp.Meta.Truncation != nil {
		resultCount = resp.Meta.Truncation.Shown
	}

	elapsedMs := elapsed.Milliseconds()

	r.mu.Lock()
	stats, ok := r.tools[toolName]
	if !ok {
		stats = &ToolStats{ToolName: toolName}
		r.tools[toolName] = stats
	}
	stats.CallCount++
	if !success {
		stats.ErrorCount++
	}
	stats.TotalResults += int64(resultCount)
	stats.TotalBytes += int64(responseBytes)
	stats.TotalMs += elapsedMs
	db := r.db
	r.mu.Unlock()

	if db != nil {
		go func() {
			_ = db.RecordInvocation(storage.Invocation{
				ToolName:      toolName,
				Success:       success,
				ErrorCode:     errorCode,
				ResultCount:   resultCount,
				ResponseBytes: responseBytes,
				ExecutionMs:   elapsedMs,
			})
		}()
	}
}

// Summary returns a copy of the session aggregates, most-called tools first.
func (r *invocationRecorder) Summary() []ToolStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ToolStats, 0, len(r.tools))
	for _, stats := range r.tools {
		s := *stats
		s.AvgLatencyMs = s.avgLatency()
		s.ErrorRate = s.errorRate()
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CallCount != out[j].CallCount {
			return out[i].CallCount > out[j].CallCount
		}
		return out[i].ToolName < out[j].ToolName
	})
	return out
}

// HasStore reports whether invocations are persisted across restarts.
func (r *invocationRecorder) HasStore() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.db != nil
}

// PersistedAggregates reads per-tool rollups from the store; nil when
// persistence is disabled.
func (r *invocationRecorder) PersistedAggregates(since time.Time) ([]storage.ToolAggregate, error) {
	r.mu.Lock()
	db := r.db
	r.mu.Unlock()

	if db == nil {
		return nil, nil
	}
	return db.GetToolAggregates(since)
}
