package helpers

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration parses a duration string, returns default duration on error.
// Besides the time.ParseDuration syntax it accepts whole days ("30d").
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := ParseDurationWithDays(durationStr)
	if err != nil {
		// Use the global logger here, assuming logger might not be configured when this is called.
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// ParseDurationWithDays is time.ParseDuration plus a "<n>d" form.
func ParseDurationWithDays(durationStr string) (time.Duration, error) {
	s := strings.TrimSpace(durationStr)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err == nil {
			return time.Duration(n) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}
