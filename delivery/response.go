package delivery

import (
	"time"
	"unicode/utf8"
)

// maxResponseText caps stored response bodies; full bodies are only useful
// in logs, not in aggregated reports.
const maxResponseText = 1000

/* Response is the outcome of one attempted webhook delivery.
 * Exactly one Response exists per attempted record; under retry the last
 * attempt wins. StatusCode 0 means the request never produced an HTTP
 * response (timeout, connection failure, encoding error).
 */
type Response struct {
	RecordID     string    `json:"record_id"`
	StatusCode   int       `json:"status_code"`
	ResponseText string    `json:"response_text"`
	ResponseTime float64   `json:"response_time_seconds"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Success reports whether the delivery got a 2xx response.
func (r Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// truncate caps s at max bytes without splitting a UTF-8 sequence, so the
// result stays valid in JSON output.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
