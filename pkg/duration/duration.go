package duration

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidDuration = errors.New("invalid ISO 8601 duration")

// ParseISO8601Minutes converts an ISO 8601 duration such as "PT2H30M" to
// total minutes. Day components are accepted ("P1DT4H"); seconds are
// truncated. Anything below a full minute rounds down.
func ParseISO8601Minutes(s string) (int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "P") {
		return 0, ErrInvalidDuration
	}
	s = s[1:]

	datePart := s
	timePart := ""
	if idx := strings.Index(s, "T"); idx >= 0 {
		datePart = s[:idx]
		timePart = s[idx+1:]
	}

	total := 0

	days, rest, err := takeComponent(datePart, 'D')
	if err != nil {
		return 0, err
	}
	if rest != "" {
		return 0, ErrInvalidDuration
	}
	total += days * 24 * 60

	hours, timePart, err := takeComponent(timePart, 'H')
	if err != nil {
		return 0, err
	}
	total += hours * 60

	minutes, timePart, err := takeComponent(timePart, 'M')
	if err != nil {
		return 0, err
	}
	total += minutes

	_, timePart, err = takeComponent(timePart, 'S')
	if err != nil {
		return 0, err
	}
	if timePart != "" {
		return 0, ErrInvalidDuration
	}

	return total, nil
}

// takeComponent consumes a leading "<digits><unit>" component if present and
// returns its value plus the remaining string.
func takeComponent(s string, unit byte) (int, string, error) {
	idx := strings.IndexByte(s, unit)
	if idx < 0 {
		return 0, s, nil
	}
	value, err := strconv.Atoi(s[:idx])
	if err != nil {
		return 0, s, ErrInvalidDuration
	}
	return value, s[idx+1:], nil
}
