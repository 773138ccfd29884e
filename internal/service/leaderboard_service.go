package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/probuilder/lms-api/internal/models"
	"github.com/probuilder/lms-api/pkg/config"
	appErrors "github.com/probuilder/lms-api/pkg/errors"
	"github.com/probuilder/lms-api/pkg/export"
)

type leaderboardReader interface {
	TopUsers(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

type ledgerReader interface {
	SumByUser(ctx context.Context, userID string) (int, error)
	ListByUser(ctx context.Context, userID string) ([]models.PointsTransaction, error)
}

type earnedBadgeReader interface {
	ListEarnedByUser(ctx context.Context, userID string) ([]models.EarnedBadge, error)
}

type summaryStatsReader interface {
	CountCompletedCourses(ctx context.Context, userID string) (int, error)
	CountCompletedPrograms(ctx context.Context, userID string) (int, error)
	CountLessonCompletions(ctx context.Context, userID string) (int, error)
	CountSubmissions(ctx context.Context, userID string) (int, error)
	HasPerfectScore(ctx context.Context, userID string) (bool, error)
}

type leaderboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ExportFormat selects the leaderboard export rendering.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// LeaderboardService serves the ranked points view, the per-user summary and
// tabular exports. Rankings are always computed from the ledger; the cache
// only shortens the read path.
type LeaderboardService struct {
	board  leaderboardReader
	ledger ledgerReader
	badges earnedBadgeReader
	stats  summaryStatsReader
	cache  leaderboardCache
	cfg    config.LeaderboardConfig
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewLeaderboardService constructs LeaderboardService. The cache may be nil.
func NewLeaderboardService(
	board leaderboardReader,
	ledger ledgerReader,
	badges earnedBadgeReader,
	stats summaryStatsReader,
	cache leaderboardCache,
	cfg config.LeaderboardConfig,
	logger *zap.Logger,
) *LeaderboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}
	return &LeaderboardService{
		board:  board,
		ledger: ledger,
		badges: badges,
		stats:  stats,
		cache:  cache,
		cfg:    cfg,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

func (s *LeaderboardService) clampLimit(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		return s.cfg.MaxLimit
	}
	return limit
}

// GetLeaderboard returns the top users ordered by total points, ties broken
// by earliest account creation. Ranks are assigned dense from 1.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	limit = s.clampLimit(limit)
	key := "leaderboard:top:" + strconv.Itoa(limit)

	if s.cache != nil {
		var cached []models.LeaderboardEntry
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("leaderboard cache read failed", zap.Error(err))
		}
	}

	entries, err := s.board.TopUsers(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load leaderboard")
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, entries, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("leaderboard cache write failed", zap.Error(err))
		}
	}
	return entries, nil
}

// GetUserSummary aggregates a user's total points, earned badges, transaction
// history and progress stats into one view. The total is always the sum of
// the ledger, never a separately stored counter.
func (s *LeaderboardService) GetUserSummary(ctx context.Context, userID string) (*models.GamificationSummary, error) {
	total, err := s.ledger.SumByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to sum points")
	}

	history, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to list points history")
	}

	earned, err := s.badges.ListEarnedByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to list earned badges")
	}

	stats, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.GamificationSummary{
		UserID:        userID,
		TotalPoints:   total,
		Badges:        earned,
		PointsHistory: history,
		Stats:         stats,
	}, nil
}

func (s *LeaderboardService) snapshot(ctx context.Context, userID string) (models.StatsSnapshot, error) {
	var snapshot models.StatsSnapshot

	courses, err := s.stats.CountCompletedCourses(ctx, userID)
	if err != nil {
		return snapshot, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to count completed courses")
	}
	programs, err := s.stats.CountCompletedPrograms(ctx, userID)
	if err != nil {
		return snapshot, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to count completed programs")
	}
	lessons, err := s.stats.CountLessonCompletions(ctx, userID)
	if err != nil {
		return snapshot, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to count lesson completions")
	}
	submissions, err := s.stats.CountSubmissions(ctx, userID)
	if err != nil {
		return snapshot, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to count submissions")
	}
	perfect, err := s.stats.HasPerfectScore(ctx, userID)
	if err != nil {
		return snapshot, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to check perfect score")
	}

	snapshot.CourseCompletions = courses
	snapshot.ProgramCompletions = programs
	snapshot.LessonCompletions = lessons
	snapshot.AssessmentCompletions = submissions
	snapshot.HasPerfectScore = perfect
	return snapshot, nil
}

// ExportLeaderboard renders the current leaderboard as CSV or PDF bytes,
// returning the payload, its content type and a suggested filename.
func (s *LeaderboardService) ExportLeaderboard(ctx context.Context, limit int, format ExportFormat) ([]byte, string, string, error) {
	entries, err := s.GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, "", "", err
	}

	data := export.Dataset{
		Headers: []string{"Rank", "Username", "Full Name", "Total Points", "Badges"},
	}
	for _, entry := range entries {
		data.Rows = append(data.Rows, map[string]string{
			"Rank":         strconv.Itoa(entry.Rank),
			"Username":     entry.Username,
			"Full Name":    entry.FullName,
			"Total Points": strconv.Itoa(entry.TotalPoints),
			"Badges":       strconv.Itoa(entry.BadgeCount),
		})
	}

	stamp := time.Now().UTC().Format("20060102")
	switch format {
	case ExportCSV:
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", fmt.Sprintf("leaderboard_%s.csv", stamp), nil
	case ExportPDF:
		payload, err := s.pdf.Render(data, "Leaderboard")
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", fmt.Sprintf("leaderboard_%s.pdf", stamp), nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format "+string(format))
	}
}
