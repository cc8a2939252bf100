package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Clock is a wall-clock time of day expressed in minutes since midnight.
// It serializes as a 24-hour "HH:MM" string.
type Clock int

const MinutesPerDay = 24 * 60

// ParseClock parses a 24-hour "HH:MM" string. "24:00" is accepted as end of day.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("parse clock %q: expected HH:MM", s)
	}

	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: hour: %w", s, err)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: minute: %w", s, err)
	}

	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("parse clock %q: out of range", s)
	}

	return Clock(h*60 + m), nil
}

// MustParseClock is ParseClock for constants and tests.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c Clock) Add(minutes int) Clock { return c + Clock(minutes) }

// Sub returns the number of minutes between o and c.
func (c Clock) Sub(o Clock) int { return int(c - o) }

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("clock: %w", err)
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
