package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/VindiceCode/bonzobuddy/record"
)

const userAgent = "BonzoBuddy-IntegrationTest/1.0"

// Config holds webhook delivery settings for one run. Zero values fall back
// to the defaults applied by NewSender.
type Config struct {
	WebhookURL         string
	Timeout            time.Duration
	RetryAttempts      int
	RetryDelay         time.Duration
	ConcurrentRequests int
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 5 * time.Second
	}
	if c.ConcurrentRequests <= 0 {
		c.ConcurrentRequests = 5
	}
	return c
}

/* Sender delivers webhook payloads to a single endpoint.
 * Uses pointer semantics as it's an API, not data. Safe for concurrent use:
 * its configuration is read-only after construction and http.Client is
 * concurrency-safe.
 */
type Sender struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// NewSender builds a sender with defaults applied. Timeouts are enforced per
// request through contexts, not on the client, so one slow delivery cannot
// consume a shared budget.
func NewSender(cfg Config) *Sender {
	return &Sender{
		cfg:    cfg.withDefaults(),
		client: &http.Client{},
		logger: slog.With("module", "delivery"),
	}
}

// Send performs a single delivery attempt. It never returns an error: any
// failure is reported in the Response with status code 0.
func (s *Sender) Send(ctx context.Context, recordID string, payload any) Response {
	start := time.Now()

	body, err := json.Marshal(payload)
	if err != nil {
		return s.failure(recordID, start, fmt.Sprintf("encoding payload: %v", err))
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return s.failure(recordID, start, fmt.Sprintf("creating request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	s.logger.Debug("sending webhook", "record_id", recordID)

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return s.failure(recordID, start, fmt.Sprintf("timeout after %s", s.cfg.Timeout))
		}
		return s.failure(recordID, start, fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	text, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseText))

	response := Response{
		RecordID:     recordID,
		StatusCode:   resp.StatusCode,
		ResponseText: truncate(string(text), maxResponseText),
		ResponseTime: time.Since(start).Seconds(),
		Timestamp:    time.Now().UTC(),
	}
	s.logger.Info("webhook delivered", "record_id", recordID, "status", resp.StatusCode, "response_time", response.ResponseTime)
	return response
}

func (s *Sender) failure(recordID string, start time.Time, msg string) Response {
	s.logger.Warn("webhook failed", "record_id", recordID, "error", msg)
	return Response{
		RecordID:     recordID,
		StatusCode:   0,
		ResponseTime: time.Since(start).Seconds(),
		Error:        msg,
		Timestamp:    time.Now().UTC(),
	}
}

// SendBulk delivers all records with at most ConcurrentRequests in flight at
// once. Every submitted record yields exactly one Response; a failing request
// never aborts its siblings. Completion order is unspecified: callers
// associate results by RecordID.
func (s *Sender) SendBulk(ctx context.Context, records []record.Record) []Response {
	s.logger.Info("sending bulk webhooks", "count", len(records), "concurrency", s.cfg.ConcurrentRequests)

	gate := make(chan struct{}, s.cfg.ConcurrentRequests)
	results := make(chan Response, len(records))

	var wg sync.WaitGroup
	for _, rec := range records {
		wg.Add(1)
		go func(rec record.Record) {
			defer wg.Done()
			results <- s.deliver(ctx, gate, rec)
		}(rec)
	}
	wg.Wait()
	close(results)

	responses := make([]Response, 0, len(records))
	for resp := range results {
		responses = append(responses, resp)
	}
	return responses
}

// deliver wraps one gated delivery. Anything unanticipated, including a
// panic, still becomes a well-formed Response so the caller never sees a
// missing result.
func (s *Sender) deliver(ctx context.Context, gate chan struct{}, rec record.Record) (resp Response) {
	defer func() {
		if p := recover(); p != nil {
			resp = Response{
				RecordID:   rec.RecordID,
				StatusCode: 0,
				Error:      fmt.Sprintf("delivery panicked: %v", p),
				Timestamp:  time.Now().UTC(),
			}
		}
	}()

	// Tasks wait for a slot before issuing their request; the gate is the
	// only shared mutable state across delivery goroutines.
	select {
	case gate <- struct{}{}:
	case <-ctx.Done():
		return s.failure(rec.RecordID, time.Now(), fmt.Sprintf("canceled before send: %v", ctx.Err()))
	}
	defer func() { <-gate }()

	return s.Send(ctx, rec.RecordID, rec.Payload)
}

// SendWithRetry attempts a single delivery up to RetryAttempts times, sleeping
// RetryDelay between attempts and returning immediately on the first 2xx.
// On exhaustion the last attempt's response is returned; callers that need
// attempt history must log attempts as they happen.
func (s *Sender) SendWithRetry(ctx context.Context, recordID string, payload any) Response {
	var last Response
	for attempt := 1; attempt <= s.cfg.RetryAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(s.cfg.RetryDelay):
			case <-ctx.Done():
				return last
			}
		}

		last = s.Send(ctx, recordID, payload)
		if last.Success() {
			return last
		}
		s.logger.Warn("webhook attempt failed",
			"record_id", recordID, "attempt", attempt, "attempts", s.cfg.RetryAttempts,
			"status", last.StatusCode, "error", last.Error)
	}
	return last
}
