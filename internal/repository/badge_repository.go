package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/probuilder/lms-api/internal/models"
	appErrors "github.com/probuilder/lms-api/pkg/errors"
)

const pqUniqueViolation = "23505"

// BadgeRepository handles the badge catalog and user badge awards.
type BadgeRepository struct {
	db *sqlx.DB
}

// NewBadgeRepository constructs the repository.
func NewBadgeRepository(db *sqlx.DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// ListAll returns the full badge catalog.
func (r *BadgeRepository) ListAll(ctx context.Context) ([]models.Badge, error) {
	const query = `SELECT id, title, description, image_url, badge_type, requirements, created_at, updated_at
        FROM badges ORDER BY created_at ASC`
	var badges []models.Badge
	if err := r.db.SelectContext(ctx, &badges, query); err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	return badges, nil
}

// FindByID returns a catalog badge by its ID.
func (r *BadgeRepository) FindByID(ctx context.Context, id string) (*models.Badge, error) {
	const query = `SELECT id, title, description, image_url, badge_type, requirements, created_at, updated_at
        FROM badges WHERE id = $1`
	var badge models.Badge
	if err := r.db.GetContext(ctx, &badge, query, id); err != nil {
		return nil, err
	}
	return &badge, nil
}

// Create persists a new catalog badge.
func (r *BadgeRepository) Create(ctx context.Context, badge *models.Badge) error {
	if badge.ID == "" {
		badge.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	badge.CreatedAt = now
	badge.UpdatedAt = now
	const query = `INSERT INTO badges (id, title, description, image_url, badge_type, requirements, created_at, updated_at)
        VALUES (:id, :title, :description, :image_url, :badge_type, :requirements, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, badge); err != nil {
		return fmt.Errorf("create badge: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a catalog badge.
func (r *BadgeRepository) Update(ctx context.Context, badge *models.Badge) error {
	badge.UpdatedAt = time.Now().UTC()
	const query = `UPDATE badges SET title = :title, description = :description, image_url = :image_url,
        badge_type = :badge_type, requirements = :requirements, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, badge); err != nil {
		return fmt.Errorf("update badge: %w", err)
	}
	return nil
}

// ListUserBadgeIDs returns the IDs of badges the user already earned.
func (r *BadgeRepository) ListUserBadgeIDs(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT badge_id FROM user_badges WHERE user_id = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("list user badge ids: %w", err)
	}
	return ids, nil
}

// ListEarnedByUser returns the user's badges joined with catalog data,
// newest first.
func (r *BadgeRepository) ListEarnedByUser(ctx context.Context, userID string) ([]models.EarnedBadge, error) {
	const query = `SELECT b.id, b.title, b.description, b.image_url, b.badge_type, b.requirements,
        b.created_at, b.updated_at, ub.earned_at
        FROM badges b
        JOIN user_badges ub ON ub.badge_id = b.id
        WHERE ub.user_id = $1
        ORDER BY ub.earned_at DESC`
	var badges []models.EarnedBadge
	if err := r.db.SelectContext(ctx, &badges, query, userID); err != nil {
		return nil, fmt.Errorf("list earned badges: %w", err)
	}
	return badges, nil
}

// InsertUserBadge awards a badge. The user_badges table carries a unique
// constraint on (user_id, badge_id); a violation is surfaced as
// ErrAlreadyExists so callers can treat the race as benign.
func (r *BadgeRepository) InsertUserBadge(ctx context.Context, userID, badgeID string) (*models.UserBadge, error) {
	award := &models.UserBadge{
		ID:       uuid.NewString(),
		UserID:   userID,
		BadgeID:  badgeID,
		EarnedAt: time.Now().UTC(),
	}
	const query = `INSERT INTO user_badges (id, user_id, badge_id, earned_at)
        VALUES (:id, :user_id, :badge_id, :earned_at)`
	if _, err := r.db.NamedExecContext(ctx, query, award); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, appErrors.Clone(appErrors.ErrAlreadyExists, "badge already awarded")
		}
		return nil, fmt.Errorf("insert user badge: %w", err)
	}
	return award, nil
}
