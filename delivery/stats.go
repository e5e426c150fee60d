package delivery

/* Stats is an aggregate view over a response list.
 * It is a pure function of the list: deriving it twice from the same
 * responses yields identical numbers, and it carries no hidden state.
 */
type Stats struct {
	TotalSent       int
	Successful      int
	Failed          int
	AvgResponseTime float64
	MaxResponseTime float64
	MinResponseTime float64
	SuccessRate     float64
}

// StatsFromResponses computes delivery statistics. Response times of zero or
// below (failed before any round trip was measured) are excluded from the
// timing aggregates.
func StatsFromResponses(responses []Response) Stats {
	stats := Stats{TotalSent: len(responses)}

	var timed int
	var sum float64
	for _, r := range responses {
		if r.Success() {
			stats.Successful++
		}
		if r.ResponseTime > 0 {
			if timed == 0 || r.ResponseTime > stats.MaxResponseTime {
				stats.MaxResponseTime = r.ResponseTime
			}
			if timed == 0 || r.ResponseTime < stats.MinResponseTime {
				stats.MinResponseTime = r.ResponseTime
			}
			sum += r.ResponseTime
			timed++
		}
	}

	stats.Failed = stats.TotalSent - stats.Successful
	if timed > 0 {
		stats.AvgResponseTime = sum / float64(timed)
	}
	if stats.TotalSent > 0 {
		stats.SuccessRate = float64(stats.Successful) / float64(stats.TotalSent) * 100
	}
	return stats
}
