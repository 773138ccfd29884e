package models

// LeaderboardEntry is one ranked row of the global leaderboard. TotalPoints
// is computed from the ledger at query time; ranks are dense and ties are
// broken by earliest registration, then user id.
type LeaderboardEntry struct {
	Rank        int    `db:"-" json:"rank"`
	UserID      string `db:"user_id" json:"user_id"`
	Username    string `db:"username" json:"username"`
	FullName    string `db:"full_name" json:"full_name"`
	TotalPoints int    `db:"total_points" json:"total_points"`
	BadgeCount  int    `db:"badge_count" json:"badge_count"`
}
