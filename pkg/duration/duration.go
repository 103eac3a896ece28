// Package duration converts between the persisted HH:MM:SS form of maintenance
// budgets and integer seconds used for ledger arithmetic.
package duration

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	SecondsPerMinute = 60
	SecondsPerHour   = 3600

	Zero = "00:00:00"
)

var ErrMalformedDuration = errors.New("malformed duration")

// Decode parses "H:M:S" into total seconds. Each field must be a non-negative
// integer; the hours field is unbounded.
func Decode(text string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDuration, text)
	}

	var fields [3]int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrMalformedDuration, text)
		}
		fields[i] = n
	}

	return fields[0]*SecondsPerHour + fields[1]*SecondsPerMinute + fields[2], nil
}

// DecodeOrZero is the recovery form of Decode: malformed input counts as zero.
func DecodeOrZero(text string) int64 {
	s, err := Decode(text)
	if err != nil {
		return 0
	}
	return s
}

// Encode formats seconds as zero-padded HH:MM:SS. Hours are not wrapped at 24.
// Negative input encodes as Zero.
func Encode(seconds int64) string {
	if seconds <= 0 {
		return Zero
	}
	h := seconds / SecondsPerHour
	m := (seconds % SecondsPerHour) / SecondsPerMinute
	s := seconds % SecondsPerMinute
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FromHours converts a fractional hour count to seconds, rounded to the nearest second.
func FromHours(hours float64) int64 {
	return int64(math.Round(hours * SecondsPerHour))
}

// FromBudget converts the hours/minutes budget entered at registration.
func FromBudget(hours, minutes int) int64 {
	return int64(hours)*SecondsPerHour + int64(minutes)*SecondsPerMinute
}

// FromElapsed converts a wall-clock span to whole seconds.
func FromElapsed(d time.Duration) int64 {
	return int64(d.Round(time.Second) / time.Second)
}

func Hours(seconds int64) float64 {
	return float64(seconds) / SecondsPerHour
}

// Clamp bounds seconds to [0, upper].
func Clamp(seconds, upper int64) int64 {
	if upper < 0 {
		upper = 0
	}
	return min(max(seconds, 0), upper)
}
