package stats

import (
	"context"
	"errors"

	"never-have-i-ever/internal/db"

	"gorm.io/gorm"
)

// Postgres increments counters on the users table.
type Postgres struct {
	conn *gorm.DB
}

func NewPostgres(conn *gorm.DB) *Postgres {
	return &Postgres{conn: conn}
}

func (p *Postgres) IncrementPoints(ctx context.Context, userID string, delta int) error {
	return db.IncrementUser(ctx, p.conn, userID, map[string]int{
		"points":       delta,
		"daily_points": delta,
		"total_points": delta,
	})
}

func (p *Postgres) IncrementGamesPlayed(ctx context.Context, userID string) error {
	return db.IncrementUser(ctx, p.conn, userID, map[string]int{"games_played": 1})
}

func (p *Postgres) IncrementGamesWon(ctx context.Context, userID string) error {
	return db.IncrementUser(ctx, p.conn, userID, map[string]int{"games_won": 1})
}

func (p *Postgres) Leaderboard(ctx context.Context, limit int) ([]Entry, error) {
	users, err := db.TopUsers(ctx, p.conn, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(users))
	for i, user := range users {
		entries = append(entries, Entry{UserID: user.ID, Points: int64(user.TotalPoints), Rank: int64(i) + 1})
	}
	return entries, nil
}

func (p *Postgres) User(ctx context.Context, userID string) (*UserStats, error) {
	user, err := db.FindUser(ctx, p.conn, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &UserStats{
		UserID:      user.ID,
		Points:      user.Points,
		DailyPoints: user.DailyPoints,
		TotalPoints: user.TotalPoints,
		GamesPlayed: user.GamesPlayed,
		GamesWon:    user.GamesWon,
	}, nil
}
