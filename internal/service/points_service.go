package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/probuilder/lms-api/internal/models"
	"github.com/probuilder/lms-api/pkg/config"
	appErrors "github.com/probuilder/lms-api/pkg/errors"
)

type pointsLedger interface {
	Insert(ctx context.Context, tx *models.PointsTransaction) error
}

// PointsTable maps each recognized event type to its point value. It is
// immutable after construction; the accrual engine never consults global
// state.
type PointsTable map[models.TransactionType]int

// PointsTableFromConfig builds the accrual table from configuration.
func PointsTableFromConfig(cfg config.GamificationConfig) PointsTable {
	return PointsTable{
		models.TransactionCourseCompletion:     cfg.CourseCompletionPoints,
		models.TransactionLessonCompletion:     cfg.LessonCompletionPoints,
		models.TransactionAssessmentCompletion: cfg.AssessmentCompletionPoints,
		models.TransactionPerfectScore:         cfg.PerfectScorePoints,
		models.TransactionProgramCompletion:    cfg.ProgramCompletionPoints,
		models.TransactionDailyLogin:           cfg.DailyLoginPoints,
	}
}

// AccrueRequest describes a single point accrual.
type AccrueRequest struct {
	UserID        string                 `validate:"required"`
	EventType     models.TransactionType `validate:"required"`
	ReferenceID   string
	ReferenceType string
	Description   string
}

// PointsService is the accrual engine: it resolves an event type to its
// configured point value and appends exactly one ledger entry per call.
type PointsService struct {
	ledger    pointsLedger
	table     PointsTable
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPointsService constructs PointsService.
func NewPointsService(ledger pointsLedger, table PointsTable, validate *validator.Validate, logger *zap.Logger) *PointsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PointsService{ledger: ledger, table: table, validator: validate, logger: logger}
}

// Accrue appends one immutable ledger entry for the event. Unknown event
// types are a caller bug and fail immediately; existing entries are never
// touched.
func (s *PointsService) Accrue(ctx context.Context, req AccrueRequest) (*models.PointsTransaction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid accrual payload")
	}

	points, ok := s.table[req.EventType]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidEventType, "no point value configured for event type "+string(req.EventType))
	}

	tx := &models.PointsTransaction{
		UserID:          req.UserID,
		Points:          points,
		TransactionType: req.EventType,
		Description:     req.Description,
	}
	if req.ReferenceID != "" {
		tx.ReferenceID = &req.ReferenceID
	}
	if req.ReferenceType != "" {
		tx.ReferenceType = &req.ReferenceType
	}

	if err := s.ledger.Insert(ctx, tx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to append points transaction")
	}

	s.logger.Debug("points accrued",
		zap.String("user_id", req.UserID),
		zap.String("event_type", string(req.EventType)),
		zap.Int("points", points),
	)
	return tx, nil
}
