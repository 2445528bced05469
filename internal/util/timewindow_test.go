package util

import (
	"testing"
	"time"
)

func TestRemaining(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		now     time.Time
		wantSec int
		expired bool
	}{
		{"just started", start, 1800, false},
		{"halfway", start.Add(15 * time.Minute), 900, false},
		{"one second left", start.Add(30*time.Minute - time.Second), 1, false},
		{"exactly elapsed", start.Add(30 * time.Minute), 0, true},
		{"long past", start.Add(2 * time.Hour), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sec, expired := Remaining(start, 30, tt.now)
			if sec != tt.wantSec || expired != tt.expired {
				t.Errorf("Remaining = (%d, %v), want (%d, %v)", sec, expired, tt.wantSec, tt.expired)
			}
		})
	}
}

func TestRemainingMonotonic(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	prev := 1<<31 - 1
	for i := 0; i <= 40; i++ {
		sec, _ := Remaining(start, 30, start.Add(time.Duration(i)*time.Minute))
		if sec > prev {
			t.Fatalf("remaining increased at minute %d: %d > %d", i, sec, prev)
		}
		prev = sec
	}
}

func TestCanStartNow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		from *time.Time
		to   *time.Time
		want bool
	}{
		{"no bounds", nil, nil, true},
		{"open window", &past, &future, true},
		{"not yet open", &future, nil, false},
		{"already closed", nil, &past, false},
		{"only from, past", &past, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanStartNow(tt.from, tt.to, now); got != tt.want {
				t.Errorf("CanStartNow = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFlexibleTime(t *testing.T) {
	t.Run("explicit UTC passes through", func(t *testing.T) {
		got, err := ParseFlexibleTime("2026-03-01T10:00:00Z")
		if err != nil {
			t.Fatal(err)
		}
		want := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("explicit offset converted", func(t *testing.T) {
		got, err := ParseFlexibleTime("2026-03-01T10:00:00+02:00")
		if err != nil {
			t.Fatal(err)
		}
		want := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("zoneless interpreted as IST", func(t *testing.T) {
		got, err := ParseFlexibleTime("2026-03-01T10:00:00")
		if err != nil {
			t.Fatal(err)
		}
		want := time.Date(2026, 3, 1, 4, 30, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		if _, err := ParseFlexibleTime("next tuesday"); err == nil {
			t.Error("expected error")
		}
	})
}

func TestRoundTo(t *testing.T) {
	if got := RoundTo(66.66666, 2); got != 66.67 {
		t.Errorf("RoundTo(66.66666, 2) = %v", got)
	}
	if got := RoundTo(0.123456, 4); got != 0.1235 {
		t.Errorf("RoundTo(0.123456, 4) = %v", got)
	}
}
