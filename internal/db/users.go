package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IncrementUser adds to a user's counters, creating the row on first use.
func IncrementUser(ctx context.Context, conn *gorm.DB, userID string, deltas map[string]int) error {
	if conn == nil {
		return nil
	}
	if len(deltas) == 0 {
		return nil
	}
	now := time.Now().UTC()
	user := User{ID: userID, CreatedAt: now, UpdatedAt: now}
	assignments := map[string]any{"updated_at": now}
	for column, delta := range deltas {
		switch column {
		case "points":
			user.Points = delta
		case "daily_points":
			user.DailyPoints = delta
		case "total_points":
			user.TotalPoints = delta
		case "games_played":
			user.GamesPlayed = delta
		case "games_won":
			user.GamesWon = delta
		default:
			return errors.New("unknown user counter " + column)
		}
		assignments[column] = gorm.Expr("users."+column+" + ?", delta)
	}
	return conn.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&user).Error
}

func FindUser(ctx context.Context, conn *gorm.DB, userID string) (*User, error) {
	var user User
	if err := conn.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func TopUsers(ctx context.Context, conn *gorm.DB, limit int) ([]User, error) {
	var users []User
	err := conn.WithContext(ctx).Order("total_points desc").Order("id asc").Limit(limit).Find(&users).Error
	return users, err
}
