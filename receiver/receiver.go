package receiver

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/VindiceCode/bonzobuddy/metrics"
	"github.com/google/uuid"
)

/* Event represents one webhook received by the mock endpoint
 * Uses value semantics as it represents data, not behavior
 */
type Event struct {
	ID          string            `json:"id"`
	Integration string            `json:"integration"`
	Payload     json.RawMessage   `json:"payload"`
	Headers     map[string]string `json:"headers"`
	ReceivedAt  time.Time         `json:"received_at"`
}

// Options configures the inbox's response behavior, letting tests inject
// failures deterministically.
type Options struct {
	// ResponseStatus is returned for accepted events (default 202).
	ResponseStatus int

	// ResponseDelay is waited before answering, to exercise timeouts.
	ResponseDelay time.Duration

	// FailEveryN makes every Nth event fail with FailStatus; 0 disables.
	FailEveryN int

	// FailStatus is the injected failure status (default 500).
	FailStatus int
}

func (o Options) withDefaults() Options {
	if o.ResponseStatus == 0 {
		o.ResponseStatus = 202
	}
	if o.FailStatus == 0 {
		o.FailStatus = 500
	}
	return o
}

/* Inbox stores received webhook events in memory.
 * It exists for end-to-end dry runs: state is inspectable in process and
 * intentionally lost on restart.
 */
type Inbox struct {
	mu        sync.RWMutex
	events    map[string][]Event
	total     int
	opts      Options
	collector *metrics.InMemoryCollector
}

// NewInbox creates an empty inbox.
func NewInbox(opts Options, collector *metrics.InMemoryCollector) *Inbox {
	return &Inbox{
		events:    make(map[string][]Event),
		opts:      opts.withDefaults(),
		collector: collector,
	}
}

// Receive validates and stores one event, returning the stored event and the
// HTTP status the receiver should answer with.
func (i *Inbox) Receive(integration string, payload []byte, headers map[string]string) (Event, int, error) {
	if !json.Valid(payload) {
		return Event{}, 400, fmt.Errorf("payload must be valid JSON")
	}

	if i.opts.ResponseDelay > 0 {
		time.Sleep(i.opts.ResponseDelay)
	}

	i.mu.Lock()
	i.total++
	status := i.opts.ResponseStatus
	if i.opts.FailEveryN > 0 && i.total%i.opts.FailEveryN == 0 {
		status = i.opts.FailStatus
	}

	event := Event{
		ID:          uuid.New().String(),
		Integration: integration,
		Payload:     json.RawMessage(payload),
		Headers:     headers,
		ReceivedAt:  time.Now().UTC(),
	}
	if status >= 200 && status < 300 {
		i.events[integration] = append(i.events[integration], event)
	}
	i.mu.Unlock()

	if i.collector != nil {
		i.collector.Record(integration, fmt.Sprintf("%d", status))
	}
	return event, status, nil
}

// List returns the events received for an integration, oldest first.
func (i *Inbox) List(integration string) []Event {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]Event, len(i.events[integration]))
	copy(out, i.events[integration])
	return out
}

// Reset clears the events received for an integration.
func (i *Inbox) Reset(integration string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.events, integration)
}
