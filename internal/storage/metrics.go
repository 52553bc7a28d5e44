package storage

import (
	"database/sql"
	"time"
)

// Invocation is one recorded tool call.
type Invocation struct {
	ID            int64
	ToolName      string
	Success       bool
	ErrorCode     string
	ResultCount   int
	ResponseBytes int
	ExecutionMs   int64
	RecordedAt    time.Time
}

// ToolAggregate is the rolled-up view of one tool's invocations.
type ToolAggregate struct {
	ToolName     string  `json:"toolName"`
	CallCount    int64   `json:"callCount"`
	ErrorCount   int64   `json:"errorCount"`
	TotalResults int64   `json:"totalResults"`
	TotalBytes   int64   `json:"totalBytes"`
	TotalMs      int64   `json:"totalMs"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
	ErrorRate    float64 `json:"errorRate"`
}

func (a *ToolAggregate) avgLatency() float64 {
	if a.CallCount == 0 {
		return 0
	}
	return float64(a.TotalMs) / float64(a.CallCount)
}

func (a *ToolAggregate) errorRate() float64 {
	if a.CallCount == 0 {
		return 0
	}
	return float64(a.ErrorCount) / float64(a.CallCount)
}

// RecordInvocation persists one tool call.
func (db *DB) RecordInvocation(inv Invocation) error {
	recordedAt := inv.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	_, err := db.Exec(`
		INSERT INTO tool_metrics (
			tool_name, success, error_code, result_count,
			response_bytes, execution_ms, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, inv.ToolName, boolToInt(inv.Success), nullIfEmpty(inv.ErrorCode),
		inv.ResultCount, inv.ResponseBytes, inv.ExecutionMs,
		recordedAt.UTC().Format(time.RFC3339))
	return err
}

// GetToolAggregates returns per-tool rollups for calls recorded at or after
// since, most-called tools first.
func (db *DB) GetToolAggregates(since time.Time) ([]ToolAggregate, error) {
	rows, err := db.Query(`
		SELECT
			tool_name,
			COUNT(*) as call_count,
			SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END) as error_count,
			SUM(result_count) as total_results,
			SUM(response_bytes) as total_bytes,
			SUM(execution_ms) as total_ms
		FROM tool_metrics
		WHERE recorded_at >= ?
		GROUP BY tool_name
		ORDER BY call_count DESC, tool_name ASC
	`, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ToolAggregate
	for rows.Next() {
		var agg ToolAggregate
		if err := rows.Scan(
			&agg.ToolName,
			&agg.CallCount,
			&agg.ErrorCount,
			&agg.TotalResults,
			&agg.TotalBytes,
			&agg.TotalMs,
		); err != nil {
			return nil, err
		}
		agg.AvgLatencyMs = agg.avgLatency()
		agg.ErrorRate = agg.errorRate()
		result = append(result, agg)
	}

	return result, rows.Err()
}

// GetRecentInvocations returns the latest records, optionally filtered by
// tool name.
func (db *DB) GetRecentInvocations(limit int, toolFilter string) ([]Invocation, error) {
	var rows *sql.Rows
	var err error

	if toolFilter != "" {
		rows, err = db.Query(`
			SELECT id, tool_name, success, error_code, result_count,
			       response_bytes, execution_ms, recorded_at
			FROM tool_metrics
			WHERE tool_name = ?
			ORDER BY recorded_at DESC, id DESC
			LIMIT ?
		`, toolFilter, limit)
	} else {
		rows, err = db.Query(`
			SELECT id, tool_name, success, error_code, result_count,
			       response_bytes, execution_ms, recorded_at
			FROM tool_metrics
			ORDER BY recorded_at DESC, id DESC
			LIMIT ?
		`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Invocation
	for rows.Next() {
		var r Invocation
		var success int
		var errorCode sql.NullString
		var recordedAt string
		if err := rows.Scan(
			&r.ID, &r.ToolName, &success, &errorCode,
			&r.ResultCount, &r.ResponseBytes, &r.ExecutionMs, &recordedAt,
		); err != nil {
			return nil, err
		}
		r.Success = success != 0
		r.ErrorCode = errorCode.String
		r.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt)
		records = append(records, r)
	}

	return records, rows.Err()
}

// CleanupOldMetrics removes records older than the retention period and
// reports how many were deleted.
func (db *DB) CleanupOldMetrics(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC().Format(time.RFC3339)
	result, err := db.Exec(`DELETE FROM tool_metrics WHERE recorded_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetMetricsStats returns the record count and the time range covered by
// the metrics table.
func (db *DB) GetMetricsStats() (totalRecords int64, oldestRecord, newestRecord *time.Time, err error) {
	var oldestStr, newestStr sql.NullString
	err = db.QueryRow(`
		SELECT COUNT(*), MIN(recorded_at), MAX(recorded_at)
		FROM tool_metrics
	`).Scan(&totalRecords, &oldestStr, &newestStr)
	if err == sql.ErrNoRows {
		return 0, nil, nil, nil
	}
	if err != nil {
		return 0, nil, nil, err
	}

	if oldestStr.Valid {
		if t, parseErr := time.Parse(time.RFC3339, oldestStr.String); parseErr == nil {
			oldestRecord = &t
		}
	}
	if newestStr.Valid {
		if t, parseErr := time.Parse(time.RFC3339, newestStr.String); parseErr == nil {
			newestRecord = &t
		}
	}
	return
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
