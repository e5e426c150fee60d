package delivery

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResponses() []Response {
	return []Response{
		{RecordID: "run_001", StatusCode: 200, ResponseTime: 0.1, Timestamp: time.Now()},
		{RecordID: "run_002", StatusCode: 200, ResponseTime: 0.3, Timestamp: time.Now()},
		{RecordID: "run_003", StatusCode: 500, ResponseTime: 0.2, ResponseText: "boom", Timestamp: time.Now()},
		{RecordID: "run_004", StatusCode: 0, Error: "request failed: connection refused", Timestamp: time.Now()},
		{RecordID: "run_005", StatusCode: 202, ResponseTime: 2.0, Timestamp: time.Now()},
	}
}

func TestStatsFromResponses(t *testing.T) {
	t.Run("aggregates exclude untimed failures", func(t *testing.T) {
		stats := StatsFromResponses(sampleResponses())

		assert.Equal(t, 5, stats.TotalSent)
		assert.Equal(t, 3, stats.Successful)
		assert.Equal(t, 2, stats.Failed)
		assert.Equal(t, 60.0, stats.SuccessRate)
		assert.Equal(t, 2.0, stats.MaxResponseTime)
		assert.Equal(t, 0.1, stats.MinResponseTime)
		assert.InDelta(t, 0.65, stats.AvgResponseTime, 1e-9)
	})

	t.Run("empty input yields zero values", func(t *testing.T) {
		stats := StatsFromResponses(nil)
		assert.Equal(t, Stats{}, stats)
	})

	t.Run("same input yields same stats", func(t *testing.T) {
		responses := sampleResponses()
		assert.Equal(t, StatsFromResponses(responses), StatsFromResponses(responses))
	})
}

func TestNewReport(t *testing.T) {
	t.Run("summary and breakdown", func(t *testing.T) {
		report := NewReport(sampleResponses())

		assert.Equal(t, 5, report.Summary.TotalRequests)
		assert.Equal(t, 3, report.Summary.SuccessfulRequests)
		assert.Equal(t, 2, report.Summary.FailedRequests)
		assert.Equal(t, 60.0, report.Summary.SuccessRatePercent)

		assert.Equal(t, 2, report.StatusCodeBreakdown["200"])
		assert.Equal(t, 1, report.StatusCodeBreakdown["202"])
		assert.Equal(t, 1, report.StatusCodeBreakdown["500"])
		assert.Equal(t, 1, report.StatusCodeBreakdown["0"])
	})

	t.Run("failures carry record ids sorted", func(t *testing.T) {
		report := NewReport(sampleResponses())
		require.Len(t, report.Failures, 2)
		assert.Equal(t, "run_003", report.Failures[0].RecordID)
		assert.Equal(t, "run_004", report.Failures[1].RecordID)
		assert.Equal(t, "boom", report.Failures[0].ResponseText)
		assert.Contains(t, report.Failures[1].Error, "connection refused")
	})

	t.Run("requests per second uses total over capped max time", func(t *testing.T) {
		// Max response time 2.0s: 5 / 2.0 = 2.5.
		report := NewReport(sampleResponses())
		assert.Equal(t, 2.5, report.PerformanceMetrics.RequestsPerSecond)

		// Sub-second max clamps the divisor to 1, so rps equals the total.
		fast := []Response{
			{RecordID: "run_001", StatusCode: 200, ResponseTime: 0.05},
			{RecordID: "run_002", StatusCode: 200, ResponseTime: 0.04},
		}
		report = NewReport(fast)
		assert.Equal(t, 2.0, report.PerformanceMetrics.RequestsPerSecond)
	})

	t.Run("wire format keys are stable", func(t *testing.T) {
		data, err := json.Marshal(NewReport(sampleResponses()))
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(data, &doc))
		for _, key := range []string{"summary", "status_code_breakdown", "failures", "performance_metrics", "generated_at"} {
			assert.Contains(t, doc, key)
		}

		summary, ok := doc["summary"].(map[string]any)
		require.True(t, ok)
		for _, key := range []string{
			"total_requests", "successful_requests", "failed_requests",
			"success_rate_percent", "avg_response_time_seconds",
			"max_response_time_seconds", "min_response_time_seconds",
		} {
			assert.Contains(t, summary, key)
		}

		metrics, ok := doc["performance_metrics"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, metrics, "requests_per_second")
	})
}

func TestWriteReport(t *testing.T) {
	t.Run("success - creates directories and writes JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "delivery_report.json")
		require.NoError(t, WriteReport(NewReport(sampleResponses()), path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var report Report
		require.NoError(t, json.Unmarshal(data, &report))
		assert.Equal(t, 5, report.Summary.TotalRequests)
	})
}
