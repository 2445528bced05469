package service

import (
	"context"
	"testing"
	"time"
)

func TestSameDay(t *testing.T) {
	base := time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC)
	cases := []struct {
		name string
		a, b time.Time
		want bool
	}{
		{"same moment", base, base, true},
		{"same day different hour", base, base.Add(-23 * time.Hour), true},
		{"across midnight", base, base.Add(2 * time.Minute), false},
		{"exactly a year apart", base, base.AddDate(-1, 0, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sameDay(tc.a, tc.b); got != tc.want {
				t.Errorf("sameDay(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestLeaderboardWithoutRedis(t *testing.T) {
	s := NewStreakService(nil, nil)
	entries, err := s.Leaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if entries != nil {
		t.Errorf("expected empty leaderboard, got %v", entries)
	}
}
