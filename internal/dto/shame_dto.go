package dto

import "time"

type Location struct {
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type OffenderStatistics struct {
	TotalViolations    int       `json:"total_violations"`
	LatestViolation    time.Time `json:"latest_violation"`
	AverageConfidence  float64   `json:"average_confidence"`
	UniqueReporters    int       `json:"unique_reporters"`
	TotalPointsAwarded int       `json:"total_points_awarded"`
}

type Offender struct {
	ViolationType string             `json:"violation_type"`
	Location      Location           `json:"location"`
	Statistics    OffenderStatistics `json:"statistics"`
	RiskLevel     string             `json:"risk_level"`
}

type OverallStats struct {
	TotalVerifiedReports       int            `json:"total_verified_reports"`
	UniqueLocations            int            `json:"unique_locations"`
	UniqueReporters            int            `json:"unique_reporters"`
	ViolationsByType           map[string]int `json:"violations_by_type"`
	AverageDetectionConfidence float64        `json:"average_detection_confidence"`
	TotalPointsAwarded         int            `json:"total_points_awarded"`
}

type RecentActivity struct {
	ID                  string    `json:"id"`
	ViolationType       string    `json:"violation_type"`
	Location            Location  `json:"location"`
	Timestamp           time.Time `json:"timestamp"`
	DetectionConfidence float64   `json:"detection_confidence"`
	ReporterName        string    `json:"reporter_name"`
}

type HallOfShame struct {
	Offenders      []Offender       `json:"offenders"`
	OverallStats   OverallStats     `json:"overall_stats"`
	RecentActivity []RecentActivity `json:"recent_activity"`
}

type TopOffendersResponse struct {
	Data HallOfShame `json:"data"`
}

type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	Name          string `json:"name"`
	TotalPoints   int    `json:"total_points"`
	ReportCount   int    `json:"report_count"`
	VerifiedCount int    `json:"verified_count"`
}

type LeaderboardResponse struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	UserRank    *LeaderboardEntry  `json:"user_rank"`
}
