package tracker

import (
	"math"
	"strconv"
	"time"
)

// DurationStats are read-only timing figures derived from the combat
// start timestamp and the current round.
type DurationStats struct {
	TotalSeconds        int `json:"total_seconds"`
	AverageRoundSeconds int `json:"average_round_seconds"`
	// EstimatedRemainingSeconds is nil when no round cap is configured.
	EstimatedRemainingSeconds *int `json:"estimated_remaining_seconds"`
	TotalFormatted            string `json:"total_formatted"`
}

// durationStats computes timing figures at the given wall-clock time.
// Without a start timestamp every figure is zero.
func durationStats(startedAt *time.Time, round, maxRounds int, now time.Time) DurationStats {
	stats := DurationStats{TotalFormatted: FormatDuration(0)}
	if startedAt == nil || round <= 0 {
		if maxRounds > 0 {
			zero := 0
			stats.EstimatedRemainingSeconds = &zero
		}
		return stats
	}
	total := int(math.Floor(now.Sub(*startedAt).Seconds()))
	if total < 0 {
		total = 0
	}
	stats.TotalSeconds = total
	stats.AverageRoundSeconds = total / round
	stats.TotalFormatted = FormatDuration(float64(total))
	if maxRounds > 0 {
		left := maxRounds - round
		if left < 0 {
			left = 0
		}
		est := left * stats.AverageRoundSeconds
		stats.EstimatedRemainingSeconds = &est
	}
	return stats
}

// FormatDuration renders a second count as a compact human-readable
// string: "45s", "1m 30s", "2m", "1h 1m 5s". Negative or non-finite
// input formats as "0s"; fractional seconds round up.
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return "0s"
	}
	total := int(math.Ceil(seconds))
	if total < 60 {
		return strconv.Itoa(total) + "s"
	}
	if total < 3600 {
		m := total / 60
		s := total % 60
		if s == 0 {
			return strconv.Itoa(m) + "m"
		}
		return strconv.Itoa(m) + "m " + strconv.Itoa(s) + "s"
	}
	hours := total / 3600
	rest := total % 3600
	m := rest / 60
	s := rest % 60
	out := strconv.Itoa(hours) + "h"
	if m > 0 {
		out += " " + strconv.Itoa(m) + "m"
	}
	if s > 0 {
		out += " " + strconv.Itoa(s) + "s"
	}
	return out
}
