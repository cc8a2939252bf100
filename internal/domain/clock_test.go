package domain

import (
	"encoding/json"
	"testing"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want Clock
		ok   bool
	}{
		{"09:00", 540, true},
		{"18:30", 1110, true},
		{" 7:05 ", 425, true},
		{"00:00", 0, true},
		{"24:00", 1440, true},
		{"24:01", 0, false},
		{"12:60", 0, false},
		{"noon", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.ok && err != nil {
			t.Errorf("ParseClock(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if !tc.ok {
			if err == nil {
				t.Errorf("ParseClock(%q) expected error, got %v", tc.in, got)
			}
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestClockJSON(t *testing.T) {
	c := MustParseClock("10:30").Add(95)
	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"12:05"` {
		t.Fatalf("marshal = %s, want \"12:05\"", raw)
	}

	var back Clock
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != c {
		t.Fatalf("round trip = %v, want %v", back, c)
	}
	if back.Sub(MustParseClock("10:30")) != 95 {
		t.Fatalf("sub = %d, want 95", back.Sub(MustParseClock("10:30")))
	}

	if err := json.Unmarshal([]byte(`"25:00"`), &back); err == nil {
		t.Fatalf("expected error for out of range clock")
	}
}
