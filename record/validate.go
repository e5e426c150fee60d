package record

import "fmt"

/* Validation surfaces every independent problem with a generated record set
 * at once, as human-readable strings rather than a single error: a run with
 * three defects should report three lines, not fail on the first.
 */

// Validate checks a generated record set against the requested total.
// Returns an empty slice when the set is clean.
func Validate(records []Record, expectedTotal int) []string {
	var errs []string

	if len(records) != expectedTotal {
		errs = append(errs, fmt.Sprintf("expected %d records, got %d", expectedTotal, len(records)))
	}

	seenEmails := make(map[string]string, len(records))
	seenIDs := make(map[string]struct{}, len(records))

	for _, rec := range records {
		if _, dup := seenIDs[rec.RecordID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate record_id %s", rec.RecordID))
		}
		seenIDs[rec.RecordID] = struct{}{}

		if rec.Payload.GetString("first_name") == "" {
			errs = append(errs, fmt.Sprintf("missing first_name in record %s", rec.RecordID))
		}

		// Monitorbase-style payloads carry lo_email instead of email.
		email := rec.Payload.GetString("email")
		if email == "" {
			email = rec.Payload.GetString("lo_email")
		}
		if email == "" {
			errs = append(errs, fmt.Sprintf("missing email field in record %s", rec.RecordID))
		} else if prev, dup := seenEmails[email]; dup {
			errs = append(errs, fmt.Sprintf("duplicate email %s in records %s and %s", email, prev, rec.RecordID))
		} else {
			seenEmails[email] = rec.RecordID
		}

		// Superuser payloads must carry a non-empty user_id.
		if v, ok := rec.Payload.Get("user_id"); ok {
			if s, isString := v.(string); isString && s == "" {
				errs = append(errs, fmt.Sprintf("missing user_id in record %s", rec.RecordID))
			}
		}
	}

	return errs
}

// CountByUser returns the per-user record counts keyed by user email.
func CountByUser(records []Record) map[string]int {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.UserEmail]++
	}
	return counts
}
