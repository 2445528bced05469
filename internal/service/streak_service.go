package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const leaderboardKey = "streak:leaderboard"

// StreakService tracks daily study check-ins. Streak state lives in
// MySQL; redis only holds the leaderboard ranking and is best-effort.
type StreakService struct {
	Checkins *repository.CheckinRepository
	Redis    *redis.Client
}

func NewStreakService(checkins *repository.CheckinRepository, rdb *redis.Client) *StreakService {
	return &StreakService{Checkins: checkins, Redis: rdb}
}

// StreakStatus is the caller's current streak view.
type StreakStatus struct {
	StreakDays     int        `json:"streakDays"`
	TotalCheckins  int64      `json:"totalCheckins"`
	CheckedInToday bool       `json:"checkedInToday"`
	LastCheckinAt  *time.Time `json:"lastCheckinAt,omitempty"`
}

// CheckIn records today's check-in. A second call on the same day is a
// no-op returning the current state. The streak continues when the last
// check-in was yesterday and restarts at 1 otherwise.
func (s *StreakService) CheckIn(ctx context.Context, userID uint, now time.Time) (*StreakStatus, error) {
	if existing, err := s.Checkins.FindByUserAndDate(userID, now); err == nil {
		return s.status(userID, existing, true)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	streak := 1
	latest, err := s.Checkins.FindLatestByUser(userID)
	if err == nil {
		yesterday := now.AddDate(0, 0, -1)
		if sameDay(latest.CheckinAt, yesterday) {
			streak = latest.StreakDays + 1
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	checkin := &model.Checkin{UserID: userID, CheckinAt: now, StreakDays: streak}
	if err := s.Checkins.Create(checkin); err != nil {
		return nil, err
	}

	if s.Redis != nil {
		member := strconv.FormatUint(uint64(userID), 10)
		if err := s.Redis.ZAdd(ctx, leaderboardKey, &redis.Z{
			Score:  float64(streak),
			Member: member,
		}).Err(); err != nil {
			logger.Log.Warn("leaderboard update failed",
				zap.Uint("userId", userID),
				zap.Error(err))
		}
	}

	return s.status(userID, checkin, true)
}

func (s *StreakService) GetStreak(userID uint, now time.Time) (*StreakStatus, error) {
	latest, err := s.Checkins.FindLatestByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &StreakStatus{}, nil
		}
		return nil, err
	}

	status, err := s.status(userID, latest, sameDay(latest.CheckinAt, now))
	if err != nil {
		return nil, err
	}
	// A streak lapses once a whole day passes without checking in.
	if !status.CheckedInToday && !sameDay(latest.CheckinAt, now.AddDate(0, 0, -1)) {
		status.StreakDays = 0
	}
	return status, nil
}

func (s *StreakService) status(userID uint, latest *model.Checkin, today bool) (*StreakStatus, error) {
	total, err := s.Checkins.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	return &StreakStatus{
		StreakDays:     latest.StreakDays,
		TotalCheckins:  total,
		CheckedInToday: today,
		LastCheckinAt:  &latest.CheckinAt,
	}, nil
}

// LeaderboardEntry is one row of the streak ranking.
type LeaderboardEntry struct {
	UserID     uint    `json:"userId"`
	StreakDays float64 `json:"streakDays"`
}

// Leaderboard returns the top streaks from redis. Without redis the
// leaderboard is simply empty.
func (s *StreakService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if s.Redis == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := s.Redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		member, ok := row.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, LeaderboardEntry{UserID: uint(id), StreakDays: row.Score})
	}
	return entries, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
