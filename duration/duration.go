// Package duration converts between human-entered time-spent strings such as
// "1h 30m", "1.5h" or "45m" and canonical elapsed seconds.
package duration

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// MinimumSeconds is the smallest canonical value Parse returns.
	MinimumSeconds = 60
	// MaximumSeconds is the largest value Parse accepts.
	MaximumSeconds = math.MaxInt32

	secondsPerHour   = 3600
	secondsPerMinute = 60
)

// ErrMalformedDuration is returned for input that is neither grammar-valid,
// a zero-literal, nor a bare number of hours.
var ErrMalformedDuration = errors.New("malformed duration")

var (
	grammarPattern = regexp.MustCompile(`(?i)^((\d+(\.\d+)?h)?\s*(\d+m)?|\d+(\.\d+)?h|\d+m)$`)
	hoursPattern   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)h`)
	minutesPattern = regexp.MustCompile(`(?i)(\d+)m`)
	decimalPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// zeroLiterals are accepted verbatim and billed as the minimum. Other
// zero-equivalent spellings ("0.0h", "0h 0m") go through the grammar.
var zeroLiterals = map[string]struct{}{
	"0m": {},
	"0h": {},
	"0":  {},
}

// IsZeroLiteral reports whether text is exactly "0m", "0h" or "0".
func IsZeroLiteral(text string) bool {
	_, ok := zeroLiterals[text]
	return ok
}

// Validate reports whether text is a well-formed time-spent string. It does
// not apply the minimum floor and does not accept bare numbers.
func Validate(text string) bool {
	if IsZeroLiteral(text) {
		return true
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	return grammarPattern.MatchString(trimmed)
}

// Parse returns the canonical number of seconds for text, never less than
// MinimumSeconds. A bare decimal number is read as hours.
func Parse(text string) (int, error) {
	if IsZeroLiteral(text) {
		return MinimumSeconds, nil
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty value", ErrMalformedDuration)
	}

	var total float64
	switch {
	case grammarPattern.MatchString(trimmed):
		if match := hoursPattern.FindStringSubmatch(trimmed); match != nil {
			hours, err := strconv.ParseFloat(match[1], 64)
			if err != nil {
				return 0, fmt.Errorf("%w: hours in %q: %v", ErrMalformedDuration, text, err)
			}
			total += hours * secondsPerHour
		}
		if match := minutesPattern.FindStringSubmatch(trimmed); match != nil {
			minutes, err := strconv.Atoi(match[1])
			if err != nil {
				return 0, fmt.Errorf("%w: minutes in %q: %v", ErrMalformedDuration, text, err)
			}
			total += float64(minutes) * secondsPerMinute
		}
	case decimalPattern.MatchString(trimmed):
		hours, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrMalformedDuration, text, err)
		}
		total = hours * secondsPerHour
	default:
		return 0, fmt.Errorf("%w: %q (expected e.g. 1h 30m, 1.5h or 45m)", ErrMalformedDuration, text)
	}

	if total > MaximumSeconds {
		return 0, fmt.Errorf("%w: %q out of range", ErrMalformedDuration, text)
	}
	if total < MinimumSeconds {
		total = MinimumSeconds
	}
	return int(math.Round(total)), nil
}

// Format renders seconds as "<H>h <M>m", dropping zero components and
// sub-minute remainders. Anything under a minute renders as "0m".
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMinutes := seconds / secondsPerMinute
	hours := totalMinutes / 60
	minutes := totalMinutes % 60

	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// Normalize returns text in a form the remote service accepts. Grammar-valid
// input and zero-literals are returned as entered (trimmed); a bare number of
// hours is rewritten through Parse and Format.
func Normalize(text string) (string, error) {
	if IsZeroLiteral(text) {
		return text, nil
	}
	seconds, err := Parse(text)
	if err != nil {
		return "", err
	}
	if Validate(text) {
		return strings.TrimSpace(text), nil
	}
	return Format(seconds), nil
}
