package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/probuilder/lms-api/internal/models"
	appErrors "github.com/probuilder/lms-api/pkg/errors"
)

type pointsAccruer interface {
	Accrue(ctx context.Context, req AccrueRequest) (*models.PointsTransaction, error)
}

type badgeEvaluator interface {
	Evaluate(ctx context.Context, userID string) ([]string, error)
}

type badgeAwarder interface {
	InsertUserBadge(ctx context.Context, userID, badgeID string) (*models.UserBadge, error)
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// Ledger descriptions per event type, shown on user transaction history.
var eventDescriptions = map[models.TransactionType]string{
	models.TransactionCourseCompletion:     "Completed a course",
	models.TransactionLessonCompletion:     "Completed a lesson",
	models.TransactionAssessmentCompletion: "Completed an assessment",
	models.TransactionPerfectScore:         "Achieved a perfect score on an assessment",
	models.TransactionProgramCompletion:    "Completed a program",
	models.TransactionDailyLogin:           "Daily login bonus",
}

// HandleEventRequest describes one learning event to be rewarded.
type HandleEventRequest struct {
	UserID        string                 `validate:"required"`
	EventType     models.TransactionType `validate:"required"`
	ReferenceID   string
	ReferenceType string
	Score         *int
}

// EventResult reports what a single event produced.
type EventResult struct {
	Transactions []models.PointsTransaction `json:"transactions"`
	NewBadges    []models.UserBadge         `json:"new_badges"`
}

// AwardService coordinates the reward pipeline for a learning event: points
// accrual first, then badge evaluation, then persisting any newly earned
// badges. Duplicate badge awards are treated as benign no-ops.
type AwardService struct {
	points    pointsAccruer
	evaluator badgeEvaluator
	awards    badgeAwarder
	cache     cacheInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	enabled   bool
}

// NewAwardService constructs AwardService. The cache invalidator and metrics
// may be nil when not configured. With enabled false every event is a no-op,
// which lets deployments switch gamification off without rewiring callers.
func NewAwardService(points pointsAccruer, evaluator badgeEvaluator, awards badgeAwarder, cache cacheInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, enabled bool) *AwardService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AwardService{
		points:    points,
		evaluator: evaluator,
		awards:    awards,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		enabled:   enabled,
	}
}

// HandleEvent runs the full pipeline for one event. A perfect assessment
// score produces two ledger entries: the completion and the bonus. Accrual
// failure aborts the pipeline before any badge evaluation; badge evaluation
// failure does not undo already-written ledger entries.
func (s *AwardService) HandleEvent(ctx context.Context, req HandleEventRequest) (*EventResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}

	result := &EventResult{}
	if !s.enabled {
		return result, nil
	}

	primary, err := s.points.Accrue(ctx, AccrueRequest{
		UserID:        req.UserID,
		EventType:     req.EventType,
		ReferenceID:   req.ReferenceID,
		ReferenceType: req.ReferenceType,
		Description:   eventDescriptions[req.EventType],
	})
	if err != nil {
		return nil, err
	}
	result.Transactions = append(result.Transactions, *primary)
	s.metrics.RecordPointsAwarded(string(primary.TransactionType), primary.Points)

	if req.EventType == models.TransactionAssessmentCompletion && req.Score != nil && *req.Score == 100 {
		bonus, err := s.points.Accrue(ctx, AccrueRequest{
			UserID:        req.UserID,
			EventType:     models.TransactionPerfectScore,
			ReferenceID:   req.ReferenceID,
			ReferenceType: req.ReferenceType,
			Description:   eventDescriptions[models.TransactionPerfectScore],
		})
		if err != nil {
			return nil, err
		}
		result.Transactions = append(result.Transactions, *bonus)
		s.metrics.RecordPointsAwarded(string(bonus.TransactionType), bonus.Points)
	}

	qualifying, err := s.evaluator.Evaluate(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	for _, badgeID := range qualifying {
		award, err := s.awards.InsertUserBadge(ctx, req.UserID, badgeID)
		if err != nil {
			if appErrors.Is(err, appErrors.ErrAlreadyExists) {
				s.logger.Debug("badge already awarded, skipping",
					zap.String("user_id", req.UserID),
					zap.String("badge_id", badgeID),
				)
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to award badge")
		}
		result.NewBadges = append(result.NewBadges, *award)
		s.metrics.RecordBadgeAwarded()
		s.logger.Info("badge awarded",
			zap.String("user_id", req.UserID),
			zap.String("badge_id", badgeID),
		)
	}

	s.invalidateLeaderboard(ctx)
	return result, nil
}

// invalidateLeaderboard drops cached leaderboard pages after points change.
// Cache failures are logged, never propagated.
func (s *AwardService) invalidateLeaderboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "leaderboard:*"); err != nil {
		s.logger.Warn("failed to invalidate leaderboard cache", zap.Error(err))
	}
}
