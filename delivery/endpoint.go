package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"
)

// EndpointCheck is the outcome of the distinguished "ping" validation call.
// It is a diagnosis, not a pass/fail boolean: the error strings distinguish
// timeouts from refused connections from everything else.
type EndpointCheck struct {
	EndpointReachable bool    `json:"endpoint_reachable"`
	SupportsPost      bool    `json:"supports_post"`
	AcceptsJSON       bool    `json:"accepts_json"`
	ResponseTime      float64 `json:"response_time"`
	StatusCode        int     `json:"status_code,omitempty"`
	ResponseText      string  `json:"response_text,omitempty"`
	Error             string  `json:"error,omitempty"`
}

// ValidateEndpoint posts a minimal JSON body to the webhook endpoint and
// reports what it found. It never returns a Go error and never panics; an
// unreachable host yields EndpointReachable=false with a populated Error.
func (s *Sender) ValidateEndpoint(ctx context.Context) EndpointCheck {
	var check EndpointCheck

	parsed, err := url.Parse(s.cfg.WebhookURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		check.Error = "invalid webhook URL format"
		return check
	}

	body := []byte(`{"test": "endpoint_validation"}`)
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		check.Error = fmt.Sprintf("validation failed: %v", err)
		return check
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		check.Error = classifyEndpointError(err, s.cfg.Timeout)
		s.logger.Warn("webhook endpoint validation failed", "error", check.Error)
		return check
	}
	defer resp.Body.Close()

	text, _ := io.ReadAll(io.LimitReader(resp.Body, 500))

	check.ResponseTime = time.Since(start).Seconds()
	check.EndpointReachable = true
	check.SupportsPost = true
	check.AcceptsJSON = true
	check.StatusCode = resp.StatusCode
	check.ResponseText = string(text)

	s.logger.Info("webhook endpoint validated", "status", resp.StatusCode, "response_time", check.ResponseTime)
	return check
}

func classifyEndpointError(err error, timeout time.Duration) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Sprintf("endpoint timeout after %s", timeout)
	case errors.Is(err, syscall.ECONNREFUSED):
		return "cannot connect to webhook endpoint"
	default:
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			return "cannot connect to webhook endpoint"
		}
		return fmt.Sprintf("validation failed: %v", err)
	}
}
