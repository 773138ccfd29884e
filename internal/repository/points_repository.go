package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/probuilder/lms-api/internal/models"
)

// PointsRepository owns the append-only points ledger. Rows are never
// updated or deleted here.
type PointsRepository struct {
	db *sqlx.DB
}

// NewPointsRepository constructs the repository.
func NewPointsRepository(db *sqlx.DB) *PointsRepository {
	return &PointsRepository{db: db}
}

// Insert appends a single ledger entry.
func (r *PointsRepository) Insert(ctx context.Context, tx *models.PointsTransaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO points_transactions (id, user_id, points, transaction_type, reference_id, reference_type, description, created_at)
        VALUES (:id, :user_id, :points, :transaction_type, :reference_id, :reference_type, :description, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, tx); err != nil {
		return fmt.Errorf("insert points transaction: %w", err)
	}
	return nil
}

// SumByUser returns the user's total points straight from the ledger.
func (r *PointsRepository) SumByUser(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COALESCE(SUM(points), 0) FROM points_transactions WHERE user_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, userID); err != nil {
		return 0, fmt.Errorf("sum points: %w", err)
	}
	return total, nil
}

// ListByUser returns the user's transactions, newest first.
func (r *PointsRepository) ListByUser(ctx context.Context, userID string) ([]models.PointsTransaction, error) {
	const query = `SELECT id, user_id, points, transaction_type, reference_id, reference_type, description, created_at
        FROM points_transactions WHERE user_id = $1 ORDER BY created_at DESC`
	var transactions []models.PointsTransaction
	if err := r.db.SelectContext(ctx, &transactions, query, userID); err != nil {
		return nil, fmt.Errorf("list points transactions: %w", err)
	}
	return transactions, nil
}
