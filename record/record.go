package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/VindiceCode/bonzobuddy/schema"
	"github.com/google/uuid"
)

/* User represents a test user a record can be assigned to.
 * Reference data loaded from configuration; the toolkit only reads it.
 */
type User struct {
	Name   string
	Email  string
	UserID int
	TeamID int
}

/* Record is a single generated test record.
 * Uses value semantics as it represents data, not behavior; immutable after
 * construction.
 */
type Record struct {
	RecordID       string
	UserEmail      string
	UserID         int
	TeamID         int
	Payload        schema.OrderedObject
	SequenceNumber int
}

// NewRunID returns an identifier for one test run: a UTC timestamp plus a
// short random suffix so two runs started in the same second stay distinct.
func NewRunID() string {
	ts := time.Now().UTC().Format("20060102_150405")
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%s_%s", ts, suffix)
}

// RecordID derives the globally unique record identifier for a sequence
// number within a run. Uniqueness holds by construction: the run ID is fixed
// and the sequence number is strictly increasing.
func RecordID(runID string, sequence int) string {
	return fmt.Sprintf("%s_%03d", runID, sequence)
}
