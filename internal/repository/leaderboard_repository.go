package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/probuilder/lms-api/internal/models"
)

// LeaderboardRepository serves read-only ranking projections over the points
// ledger and badge awards.
type LeaderboardRepository struct {
	db *sqlx.DB
}

// NewLeaderboardRepository constructs the repository.
func NewLeaderboardRepository(db *sqlx.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// TopUsers returns up to limit users ranked by total points. Point and badge
// aggregates are computed in independent subqueries so one cannot fan out the
// other. Ties on total points are broken by earliest registration, then id,
// which keeps the ordering deterministic.
func (r *LeaderboardRepository) TopUsers(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	const query = `SELECT u.id AS user_id, u.username, u.full_name,
        COALESCE(p.total_points, 0) AS total_points,
        COALESCE(b.badge_count, 0) AS badge_count
        FROM users u
        LEFT JOIN (SELECT user_id, SUM(points) AS total_points FROM points_transactions GROUP BY user_id) p ON p.user_id = u.id
        LEFT JOIN (SELECT user_id, COUNT(*) AS badge_count FROM user_badges GROUP BY user_id) b ON b.user_id = u.id
        ORDER BY total_points DESC, u.created_at ASC, u.id ASC
        LIMIT $1`
	var entries []models.LeaderboardEntry
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}
	return entries, nil
}
