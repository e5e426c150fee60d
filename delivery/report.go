package delivery

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

/* The delivery report is a stable JSON document consumed by downstream
 * tooling; its top-level keys (summary, status_code_breakdown, failures,
 * performance_metrics, generated_at) must not change.
 */

// ReportSummary aggregates the run's delivery outcome.
type ReportSummary struct {
	TotalRequests          int     `json:"total_requests"`
	SuccessfulRequests     int     `json:"successful_requests"`
	FailedRequests         int     `json:"failed_requests"`
	SuccessRatePercent     float64 `json:"success_rate_percent"`
	AvgResponseTimeSeconds float64 `json:"avg_response_time_seconds"`
	MaxResponseTimeSeconds float64 `json:"max_response_time_seconds"`
	MinResponseTimeSeconds float64 `json:"min_response_time_seconds"`
}

// ReportFailure is one failed delivery, with the response body capped for
// readability.
type ReportFailure struct {
	RecordID     string  `json:"record_id"`
	StatusCode   int     `json:"status_code"`
	Error        string  `json:"error,omitempty"`
	ResponseText string  `json:"response_text,omitempty"`
	ResponseTime float64 `json:"response_time"`
}

// PerformanceMetrics mirrors the historical report shape.
type PerformanceMetrics struct {
	// RequestsPerSecond is total/max(maxResponseTime, 1), a crude
	// approximation rather than a measured throughput. Downstream reports
	// compare against historical values of this exact formula.
	RequestsPerSecond float64 `json:"requests_per_second"`
	FastestResponse   float64 `json:"fastest_response"`
	SlowestResponse   float64 `json:"slowest_response"`
}

// Report is the full delivery report document.
type Report struct {
	Summary             ReportSummary      `json:"summary"`
	StatusCodeBreakdown map[string]int     `json:"status_code_breakdown"`
	Failures            []ReportFailure    `json:"failures"`
	PerformanceMetrics  PerformanceMetrics `json:"performance_metrics"`
	GeneratedAt         string             `json:"generated_at"`
}

// NewReport builds the delivery report from a response list.
func NewReport(responses []Response) Report {
	stats := StatsFromResponses(responses)

	breakdown := make(map[string]int)
	failures := []ReportFailure{}
	for _, r := range responses {
		breakdown[strconv.Itoa(r.StatusCode)]++
		if !r.Success() {
			failures = append(failures, ReportFailure{
				RecordID:     r.RecordID,
				StatusCode:   r.StatusCode,
				Error:        r.Error,
				ResponseText: truncate(r.ResponseText, 200),
				ResponseTime: round(r.ResponseTime, 3),
			})
		}
	}
	sort.Slice(failures, func(i, j int) bool { return failures[i].RecordID < failures[j].RecordID })

	return Report{
		Summary: ReportSummary{
			TotalRequests:          stats.TotalSent,
			SuccessfulRequests:     stats.Successful,
			FailedRequests:         stats.Failed,
			SuccessRatePercent:     round(stats.SuccessRate, 2),
			AvgResponseTimeSeconds: round(stats.AvgResponseTime, 3),
			MaxResponseTimeSeconds: round(stats.MaxResponseTime, 3),
			MinResponseTimeSeconds: round(stats.MinResponseTime, 3),
		},
		StatusCodeBreakdown: breakdown,
		Failures:            failures,
		PerformanceMetrics: PerformanceMetrics{
			RequestsPerSecond: round(float64(stats.TotalSent)/math.Max(stats.MaxResponseTime, 1), 2),
			FastestResponse:   round(stats.MinResponseTime, 3),
			SlowestResponse:   round(stats.MaxResponseTime, 3),
		},
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// WriteReport saves a report as indented JSON, creating parent directories.
func WriteReport(report Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling delivery report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing delivery report: %w", err)
	}
	return nil
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
