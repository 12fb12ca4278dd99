package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elawdiya/backend/internal/cache"
	"github.com/elawdiya/backend/internal/database"
	"github.com/elawdiya/backend/internal/dto"
	"github.com/elawdiya/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultOffenderLimit    = 50
	DefaultLeaderboardLimit = 100
	MaxShameLimit           = 100
)

type TopOffendersQuery struct {
	TimeRange     string
	ViolationType string
	Limit         int
}

type ShameService struct {
	db    *gorm.DB
	cache *cache.ShameCache
	now   func() time.Time
}

func NewShameService(db *gorm.DB, shameCache *cache.ShameCache) *ShameService {
	return &ShameService{db: db, cache: shameCache, now: time.Now}
}

// TopOffenders builds the hall of shame from verified reports inside the
// requested window.
func (s *ShameService) TopOffenders(ctx context.Context, q TopOffendersQuery) (*dto.HallOfShame, error) {
	if q.Limit == 0 {
		q.Limit = DefaultOffenderLimit
	}
	if q.Limit < 1 || q.Limit > MaxShameLimit {
		return nil, validationf(fmt.Sprintf("limit must be between 1 and %d", MaxShameLimit))
	}
	since, err := ParseTimeRange(q.TimeRange, s.now().UTC())
	if err != nil {
		return nil, err
	}
	violationType := strings.TrimSpace(q.ViolationType)

	key := cache.Key("offenders", strings.ToLower(strings.TrimSpace(q.TimeRange)), violationType, strconv.Itoa(q.Limit))
	var cached dto.HallOfShame
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	db := s.db.WithContext(ctx)

	var reports []models.Report
	if err := db.Scopes(
		database.WithStatus(models.ReportVerified),
		database.CreatedSince(since),
		database.OfViolationType(violationType),
	).Order("created_at ASC, id ASC").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch verified reports: %w", err)
	}

	var recent []models.Report
	if err := db.Preload("Reporter").Scopes(database.WithStatus(models.ReportVerified)).
		Order("created_at DESC").Limit(RecentActivitySize).Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recent activity: %w", err)
	}

	result := &dto.HallOfShame{
		Offenders:      BuildOffenders(reports, q.Limit),
		OverallStats:   Summarize(reports),
		RecentActivity: BuildRecentActivity(recent),
	}
	s.toCache(ctx, key, result)
	return result, nil
}

// Leaderboard ranks every user by points. When viewer is set, the viewer's
// own entry is returned as UserRank even if it falls outside limit.
func (s *ShameService) Leaderboard(ctx context.Context, limit int, viewer *uuid.UUID) (*dto.LeaderboardResponse, error) {
	if limit == 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit < 1 || limit > MaxShameLimit {
		return nil, validationf(fmt.Sprintf("limit must be between 1 and %d", MaxShameLimit))
	}

	ranked, err := s.rankedUsers(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.LeaderboardResponse{Leaderboard: Entries(ranked, limit)}
	if viewer != nil {
		resp.UserRank = FindRank(ranked, *viewer)
	}
	return resp, nil
}

func (s *ShameService) rankedUsers(ctx context.Context) ([]RankedUser, error) {
	key := cache.Key("leaderboard", "all")
	var ranked []RankedUser
	if s.fromCache(ctx, key, &ranked) {
		return ranked, nil
	}

	var rows []LeaderboardRow
	err := s.db.WithContext(ctx).
		Table("users").
		Select(`users.id AS user_id, users.name AS name, users.total_points AS total_points,
			COUNT(reports.id) AS report_count,
			COALESCE(SUM(CASE WHEN reports.status = ? THEN 1 ELSE 0 END), 0) AS verified_count`,
			models.ReportVerified).
		Joins("LEFT JOIN reports ON reports.user_id = users.id").
		Group("users.id, users.name, users.total_points").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate leaderboard: %w", err)
	}

	ranked = RankLeaderboard(rows)
	s.toCache(ctx, key, ranked)
	return ranked, nil
}

func (s *ShameService) fromCache(ctx context.Context, key string, dst interface{}) bool {
	payload, ok := s.cache.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(payload, dst) == nil
}

func (s *ShameService) toCache(ctx context.Context, key string, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.cache.Set(ctx, key, payload)
}
