package services

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/elawdiya/backend/internal/dto"
	"github.com/elawdiya/backend/internal/models"
	"github.com/google/uuid"
)

const (
	RiskCritical = "critical"
	RiskHigh     = "high"
	RiskMedium   = "medium"
	RiskLow      = "low"

	DefaultTimeRange   = "30"
	maxTimeRangeDays   = 36500
	RecentActivitySize = 20
)

// ParseTimeRange turns a time_range query value into the start of the
// aggregation window. "all" reaches back to the Unix epoch; any other value
// must be a whole number of days.
func ParseTimeRange(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultTimeRange
	}
	if strings.EqualFold(s, "all") {
		return time.Unix(0, 0).UTC(), nil
	}
	days, err := strconv.Atoi(s)
	if err != nil || days < 1 || days > maxTimeRangeDays {
		return time.Time{}, validationf("time_range must be a number of days or \"all\"")
	}
	return now.AddDate(0, 0, -days), nil
}

// RiskLevel classifies a hotspot by its violation count.
func RiskLevel(count int) string {
	switch {
	case count >= 5:
		return RiskCritical
	case count >= 3:
		return RiskHigh
	case count >= 1:
		return RiskMedium
	default:
		return RiskLow
	}
}

type hotspot struct {
	location      string
	violationType string
	latitude      *float64
	longitude     *float64
	count         int
	latest        time.Time
	confidenceSum float64
	reporters     map[uuid.UUID]struct{}
	points        int
}

// BuildOffenders groups reports by exact location string and ranks the
// groups by violation count, descending. Equal counts keep the order in
// which their locations first appeared in reports. limit <= 0 means no limit.
func BuildOffenders(reports []models.Report, limit int) []dto.Offender {
	index := make(map[string]int)
	spots := make([]*hotspot, 0)

	for _, r := range reports {
		i, ok := index[r.Location]
		if !ok {
			i = len(spots)
			index[r.Location] = i
			spots = append(spots, &hotspot{
				location:      r.Location,
				violationType: r.ViolationType,
				latitude:      r.Latitude,
				longitude:     r.Longitude,
				reporters:     make(map[uuid.UUID]struct{}),
			})
		}
		h := spots[i]
		h.count++
		if r.CreatedAt.After(h.latest) {
			h.latest = r.CreatedAt
		}
		h.confidenceSum += r.DetectionConfidence
		h.reporters[r.UserID] = struct{}{}
		h.points += r.PointsAwarded
	}

	sort.SliceStable(spots, func(a, b int) bool {
		return spots[a].count > spots[b].count
	})
	if limit > 0 && len(spots) > limit {
		spots = spots[:limit]
	}

	offenders := make([]dto.Offender, len(spots))
	for i, h := range spots {
		offenders[i] = dto.Offender{
			ViolationType: h.violationType,
			Location: dto.Location{
				Address:   h.location,
				Latitude:  h.latitude,
				Longitude: h.longitude,
			},
			Statistics: dto.OffenderStatistics{
				TotalViolations:    h.count,
				LatestViolation:    h.latest,
				AverageConfidence:  h.confidenceSum / float64(h.count),
				UniqueReporters:    len(h.reporters),
				TotalPointsAwarded: h.points,
			},
			RiskLevel: RiskLevel(h.count),
		}
	}
	return offenders
}

// Summarize computes the overall statistics of a fetch. The car and bike
// buckets are always present in ViolationsByType.
func Summarize(reports []models.Report) dto.OverallStats {
	stats := dto.OverallStats{
		ViolationsByType: map[string]int{"car": 0, "bike": 0},
	}
	locations := make(map[string]struct{})
	reporters := make(map[uuid.UUID]struct{})
	var confidenceSum float64

	for _, r := range reports {
		stats.TotalVerifiedReports++
		locations[r.Location] = struct{}{}
		reporters[r.UserID] = struct{}{}
		stats.ViolationsByType[r.ViolationType]++
		confidenceSum += r.DetectionConfidence
		stats.TotalPointsAwarded += r.PointsAwarded
	}

	stats.UniqueLocations = len(locations)
	stats.UniqueReporters = len(reporters)
	if stats.TotalVerifiedReports > 0 {
		stats.AverageDetectionConfidence = confidenceSum / float64(stats.TotalVerifiedReports)
	}
	return stats
}

// BuildRecentActivity maps reports, already ordered newest first and with
// Reporter preloaded, to the activity feed.
func BuildRecentActivity(reports []models.Report) []dto.RecentActivity {
	feed := make([]dto.RecentActivity, len(reports))
	for i, r := range reports {
		feed[i] = dto.RecentActivity{
			ID:            r.ID.String(),
			ViolationType: r.ViolationType,
			Location: dto.Location{
				Address:   r.Location,
				Latitude:  r.Latitude,
				Longitude: r.Longitude,
			},
			Timestamp:           r.CreatedAt,
			DetectionConfidence: r.DetectionConfidence,
			ReporterName:        reporterName(r),
		}
	}
	return feed
}

// LeaderboardRow is one user's aggregate as read from the database.
type LeaderboardRow struct {
	UserID        uuid.UUID
	Name          string
	TotalPoints   int
	ReportCount   int
	VerifiedCount int
}

// RankLeaderboard sorts rows by points, then verified count, then name and
// id, and assigns contiguous 1-based ranks.
func RankLeaderboard(rows []LeaderboardRow) []RankedUser {
	sorted := make([]LeaderboardRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(a, b int) bool {
		x, y := sorted[a], sorted[b]
		if x.TotalPoints != y.TotalPoints {
			return x.TotalPoints > y.TotalPoints
		}
		if x.VerifiedCount != y.VerifiedCount {
			return x.VerifiedCount > y.VerifiedCount
		}
		if x.Name != y.Name {
			return x.Name < y.Name
		}
		return x.UserID.String() < y.UserID.String()
	})

	ranked := make([]RankedUser, len(sorted))
	for i, row := range sorted {
		ranked[i] = RankedUser{
			UserID: row.UserID,
			Entry: dto.LeaderboardEntry{
				Rank:          i + 1,
				Name:          row.Name,
				TotalPoints:   row.TotalPoints,
				ReportCount:   row.ReportCount,
				VerifiedCount: row.VerifiedCount,
			},
		}
	}
	return ranked
}

// RankedUser pairs a leaderboard entry with the user it belongs to.
type RankedUser struct {
	UserID uuid.UUID            `json:"user_id"`
	Entry  dto.LeaderboardEntry `json:"entry"`
}

// FindRank returns the entry of userID within ranked, or nil.
func FindRank(ranked []RankedUser, userID uuid.UUID) *dto.LeaderboardEntry {
	for i := range ranked {
		if ranked[i].UserID == userID {
			entry := ranked[i].Entry
			return &entry
		}
	}
	return nil
}

// Entries truncates ranked to limit and strips the user ids.
func Entries(ranked []RankedUser, limit int) []dto.LeaderboardEntry {
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	entries := make([]dto.LeaderboardEntry, len(ranked))
	for i, r := range ranked {
		entries[i] = r.Entry
	}
	return entries
}
