package metrics

import (
	"context"
	"sync"
	"time"
)

// Snapshot is the current state of the mock receiver.
type Snapshot struct {
	// ReceivedCounts maps integration name to the number of received events
	ReceivedCounts map[string]int64 `json:"received_counts"`

	// StatusCounts maps the HTTP status returned to its occurrence count
	StatusCounts map[string]int64 `json:"status_counts"`

	// Timestamp when the snapshot was taken
	Timestamp time.Time `json:"timestamp"`
}

// Collector defines the interface for collecting metrics from the receiver.
type Collector interface {
	// Collect gathers the current snapshot
	Collect(ctx context.Context) (Snapshot, error)

	// GetReceivedCounts returns received events per integration
	GetReceivedCounts(ctx context.Context) (map[string]int64, error)

	// GetStatusCounts returns responses grouped by returned status
	GetStatusCounts(ctx context.Context) (map[string]int64, error)
}

/* InMemoryCollector counts received events in process memory.
 * The mock receiver is a test fixture: losing counters on restart is the
 * desired behavior, so there is no backing store.
 */
type InMemoryCollector struct {
	mu       sync.Mutex
	received map[string]int64
	statuses map[string]int64
}

// NewInMemoryCollector creates an empty collector.
func NewInMemoryCollector() *InMemoryCollector {
	return &InMemoryCollector{
		received: make(map[string]int64),
		statuses: make(map[string]int64),
	}
}

// Record counts one received event and the status returned for it.
func (c *InMemoryCollector) Record(integration, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.received[integration]++
	c.statuses[status]++
}

// Collect gathers the current snapshot.
func (c *InMemoryCollector) Collect(ctx context.Context) (Snapshot, error) {
	received, err := c.GetReceivedCounts(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	statuses, err := c.GetStatusCounts(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		ReceivedCounts: received,
		StatusCounts:   statuses,
		Timestamp:      time.Now().UTC(),
	}, nil
}

// GetReceivedCounts returns a copy of the per-integration counters.
func (c *InMemoryCollector) GetReceivedCounts(_ context.Context) (map[string]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.received))
	for k, v := range c.received {
		out[k] = v
	}
	return out, nil
}

// GetStatusCounts returns a copy of the per-status counters.
func (c *InMemoryCollector) GetStatusCounts(_ context.Context) (map[string]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.statuses))
	for k, v := range c.statuses {
		out[k] = v
	}
	return out, nil
}
