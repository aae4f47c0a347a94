package analytics

import (
	"context"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/lumenlearn/tutor-backend/internal/db"
	"github.com/lumenlearn/tutor-backend/internal/models"
)

// PlatformStats summarizes the admin dashboard headline numbers.
type PlatformStats struct {
	TotalStudents         int64   `json:"total_students"`
	TotalMessages         int64   `json:"total_messages"`
	ActiveToday           int64   `json:"active_today"`
	ActiveWeek            int64   `json:"active_week"`
	FlaggedCount          int64   `json:"flagged_count"`
	AvgMessagesPerStudent float64 `json:"avg_messages_per_student"`
}

// DailyActivity is the message count for one calendar day.
type DailyActivity struct {
	Date     string `json:"date"`
	Messages int64  `json:"messages"`
}

// TopStudent is one row of the most-active-students leaderboard.
type TopStudent struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	MessageCount int64  `json:"message_count"`
}

// FlaggedStats breaks flagged content down by review status.
type FlaggedStats struct {
	TotalFlagged int64 `json:"total_flagged"`
	Unreviewed   int64 `json:"unreviewed"`
	Reviewed     int64 `json:"reviewed"`
}

// CategoryCount is the flag count for one harm category and severity.
type CategoryCount struct {
	Category string `json:"category"`
	Severity string `json:"severity"`
	Count    int64  `json:"count"`
}

// ResponseStats summarizes tutor reply latency.
type ResponseStats struct {
	AvgResponseTime *float64 `json:"avg_response_time"`
	MinResponseTime *int64   `json:"min_response_time"`
	MaxResponseTime *int64   `json:"max_response_time"`
}

// PlatformAnalytics is the detailed analytics payload.
type PlatformAnalytics struct {
	TotalStudents int64           `json:"total_students"`
	TotalMessages int64           `json:"total_messages"`
	DailyActivity []DailyActivity `json:"daily_activity"`
	TopStudents   []TopStudent    `json:"top_students"`
	FlaggedStats  FlaggedStats    `json:"flagged_stats"`
	ResponseStats ResponseStats   `json:"response_stats"`
}

// ComprehensiveAnalytics extends platform analytics with a flag breakdown
// and token totals over a caller-chosen day range.
type ComprehensiveAnalytics struct {
	Days             int             `json:"days"`
	TotalStudents    int64           `json:"total_students"`
	TotalMessages    int64           `json:"total_messages"`
	MessagesInRange  int64           `json:"messages_in_range"`
	TokensEstInRange int64           `json:"tokens_est_in_range"`
	DailyActivity    []DailyActivity `json:"daily_activity"`
	TopStudents      []TopStudent    `json:"top_students"`
	FlaggedStats     FlaggedStats    `json:"flagged_stats"`
	FlaggedBreakdown []CategoryCount `json:"flagged_breakdown"`
	ResponseStats    ResponseStats   `json:"response_stats"`
}

// Stats computes the admin dashboard headline numbers.
func Stats(ctx context.Context, conn *gorm.DB) (PlatformStats, error) {
	var out PlatformStats
	tx := conn.WithContext(ctx)

	if err := tx.Model(&models.Student{}).Count(&out.TotalStudents).Error; err != nil {
		return out, fmt.Errorf("count students: %w", err)
	}
	if err := tx.Model(&models.Message{}).Count(&out.TotalMessages).Error; err != nil {
		return out, fmt.Errorf("count messages: %w", err)
	}

	dateCol := db.DateExpr(conn, "created_at")
	if err := tx.Model(&models.Message{}).
		Where(fmt.Sprintf("%s = %s", dateCol, db.TodayExpr(conn))).
		Distinct("student_id").
		Count(&out.ActiveToday).Error; err != nil {
		return out, fmt.Errorf("count active today: %w", err)
	}
	if err := tx.Model(&models.Message{}).
		Where(fmt.Sprintf("created_at >= %s", db.DaysAgoExpr(conn, 7))).
		Distinct("student_id").
		Count(&out.ActiveWeek).Error; err != nil {
		return out, fmt.Errorf("count active week: %w", err)
	}
	if err := tx.Model(&models.FlaggedContent{}).
		Where("reviewed = ?", false).
		Count(&out.FlaggedCount).Error; err != nil {
		return out, fmt.Errorf("count unreviewed flags: %w", err)
	}

	var avg *float64
	if err := tx.Model(&models.Student{}).
		Where("total_messages > 0").
		Select("AVG(total_messages)").
		Scan(&avg).Error; err != nil {
		return out, fmt.Errorf("average messages: %w", err)
	}
	if avg != nil {
		out.AvgMessagesPerStudent = math.Round(*avg*10) / 10
	}
	return out, nil
}

// Platform computes the detailed analytics payload: 30 days of daily
// activity, a 7 day leaderboard, flag review totals, and reply latency.
func Platform(ctx context.Context, conn *gorm.DB) (PlatformAnalytics, error) {
	var out PlatformAnalytics
	tx := conn.WithContext(ctx)

	if err := tx.Model(&models.Student{}).Count(&out.TotalStudents).Error; err != nil {
		return out, fmt.Errorf("count students: %w", err)
	}
	if err := tx.Model(&models.Message{}).Count(&out.TotalMessages).Error; err != nil {
		return out, fmt.Errorf("count messages: %w", err)
	}

	var err error
	if out.DailyActivity, err = dailyActivity(tx, conn, 30); err != nil {
		return out, err
	}
	if out.TopStudents, err = topStudents(tx, conn, 7, 10); err != nil {
		return out, err
	}
	if out.FlaggedStats, err = flaggedStats(tx); err != nil {
		return out, err
	}
	if out.ResponseStats, err = responseStats(tx, conn, 7); err != nil {
		return out, err
	}
	return out, nil
}

// Comprehensive computes analytics bounded to the last N days. days<=0
// means all time.
func Comprehensive(ctx context.Context, conn *gorm.DB, days int) (ComprehensiveAnalytics, error) {
	if days < 0 {
		days = 0
	}
	out := ComprehensiveAnalytics{Days: days}
	tx := conn.WithContext(ctx)

	if err := tx.Model(&models.Student{}).Count(&out.TotalStudents).Error; err != nil {
		return out, fmt.Errorf("count students: %w", err)
	}
	if err := tx.Model(&models.Message{}).Count(&out.TotalMessages).Error; err != nil {
		return out, fmt.Errorf("count messages: %w", err)
	}

	ranged := tx.Model(&models.Message{})
	if days > 0 {
		ranged = ranged.Where(fmt.Sprintf("created_at >= %s", db.DaysAgoExpr(conn, days)))
	}
	if err := ranged.Count(&out.MessagesInRange).Error; err != nil {
		return out, fmt.Errorf("count ranged messages: %w", err)
	}

	tokens := tx.Model(&models.Message{}).Where("tokens_est IS NOT NULL")
	if days > 0 {
		tokens = tokens.Where(fmt.Sprintf("created_at >= %s", db.DaysAgoExpr(conn, days)))
	}
	var tokenSum *int64
	if err := tokens.Select("SUM(tokens_est)").Scan(&tokenSum).Error; err != nil {
		return out, fmt.Errorf("sum tokens: %w", err)
	}
	if tokenSum != nil {
		out.TokensEstInRange = *tokenSum
	}

	activityDays := days
	if activityDays == 0 {
		activityDays = 30
	}
	var err error
	if out.DailyActivity, err = dailyActivity(tx, conn, activityDays); err != nil {
		return out, err
	}

	leaderboardDays := days
	if leaderboardDays == 0 {
		leaderboardDays = 7
	}
	if out.TopStudents, err = topStudents(tx, conn, leaderboardDays, 10); err != nil {
		return out, err
	}
	if out.FlaggedStats, err = flaggedStats(tx); err != nil {
		return out, err
	}
	if out.FlaggedBreakdown, err = flaggedBreakdown(tx, conn, days); err != nil {
		return out, err
	}
	if out.ResponseStats, err = responseStats(tx, conn, leaderboardDays); err != nil {
		return out, err
	}
	return out, nil
}

func dailyActivity(tx *gorm.DB, conn *gorm.DB, days int) ([]DailyActivity, error) {
	dateCol := db.DateExpr(conn, "created_at")
	rows := make([]DailyActivity, 0)
	err := tx.Model(&models.Message{}).
		Select(fmt.Sprintf("%s AS date, COUNT(*) AS messages", dateCol)).
		Where(fmt.Sprintf("created_at >= %s", db.DaysAgoExpr(conn, days))).
		Group(dateCol).
		Order("date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("daily activity: %w", err)
	}
	return rows, nil
}

func topStudents(tx *gorm.DB, conn *gorm.DB, days, limit int) ([]TopStudent, error) {
	rows := make([]TopStudent, 0)
	err := tx.Model(&models.Student{}).
		Select("students.name AS name, students.email AS email, COUNT(messages.id) AS message_count").
		Joins("JOIN messages ON messages.student_id = students.student_id").
		Where(fmt.Sprintf("messages.created_at >= %s", db.DaysAgoExpr(conn, days))).
		Group("students.student_id, students.name, students.email").
		Order("message_count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top students: %w", err)
	}
	return rows, nil
}

func flaggedStats(tx *gorm.DB) (FlaggedStats, error) {
	var out FlaggedStats
	if err := tx.Model(&models.FlaggedContent{}).Count(&out.TotalFlagged).Error; err != nil {
		return out, fmt.Errorf("count flags: %w", err)
	}
	if err := tx.Model(&models.FlaggedContent{}).
		Where("reviewed = ?", false).
		Count(&out.Unreviewed).Error; err != nil {
		return out, fmt.Errorf("count unreviewed: %w", err)
	}
	out.Reviewed = out.TotalFlagged - out.Unreviewed
	return out, nil
}

func flaggedBreakdown(tx *gorm.DB, conn *gorm.DB, days int) ([]CategoryCount, error) {
	rows := make([]CategoryCount, 0)
	query := tx.Model(&models.FlaggedContent{}).
		Select("category, severity, COUNT(*) AS count").
		Group("category, severity").
		Order("count DESC")
	if days > 0 {
		query = query.Where(fmt.Sprintf("flagged_at >= %s", db.DaysAgoExpr(conn, days)))
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("flag breakdown: %w", err)
	}
	return rows, nil
}

func responseStats(tx *gorm.DB, conn *gorm.DB, days int) (ResponseStats, error) {
	var out ResponseStats
	err := tx.Model(&models.Message{}).
		Select("AVG(response_time_ms) AS avg_response_time, MIN(response_time_ms) AS min_response_time, MAX(response_time_ms) AS max_response_time").
		Where("response_time_ms IS NOT NULL").
		Where(fmt.Sprintf("created_at >= %s", db.DaysAgoExpr(conn, days))).
		Scan(&out).Error
	if err != nil {
		return out, fmt.Errorf("response stats: %w", err)
	}
	return out, nil
}
