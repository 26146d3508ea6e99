package stats

import (
	"context"
	"errors"
	"sort"
	"sync"

	"never-have-i-ever/internal/game"
)

var ErrUserNotFound = &game.Error{Kind: game.KindNotFound, Code: "user_not_found", Message: "user not found"}

type Entry struct {
	UserID string `json:"userId"`
	Points int64  `json:"points"`
	Rank   int64  `json:"rank"`
}

type UserStats struct {
	UserID      string `json:"userId"`
	Points      int    `json:"points"`
	DailyPoints int    `json:"dailyPoints"`
	TotalPoints int    `json:"totalPoints"`
	GamesPlayed int    `json:"gamesPlayed"`
	GamesWon    int    `json:"gamesWon"`
}

type Reader interface {
	Leaderboard(ctx context.Context, limit int) ([]Entry, error)
	User(ctx context.Context, userID string) (*UserStats, error)
}

// Multi fans each update out to every sink and keeps going past failures.
type Multi []game.StatsUpdater

func (m Multi) IncrementPoints(ctx context.Context, userID string, delta int) error {
	var errs []error
	for _, sink := range m {
		if err := sink.IncrementPoints(ctx, userID, delta); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) IncrementGamesPlayed(ctx context.Context, userID string) error {
	var errs []error
	for _, sink := range m {
		if err := sink.IncrementGamesPlayed(ctx, userID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) IncrementGamesWon(ctx context.Context, userID string) error {
	var errs []error
	for _, sink := range m {
		if err := sink.IncrementGamesWon(ctx, userID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Memory keeps counters in process. It backs the server when neither
// Postgres nor Redis is configured.
type Memory struct {
	mu    sync.Mutex
	users map[string]*UserStats
}

func NewMemory() *Memory {
	return &Memory{users: make(map[string]*UserStats)}
}

func (m *Memory) entry(userID string) *UserStats {
	user, ok := m.users[userID]
	if !ok {
		user = &UserStats{UserID: userID}
		m.users[userID] = user
	}
	return user
}

func (m *Memory) IncrementPoints(_ context.Context, userID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := m.entry(userID)
	user.Points += delta
	user.DailyPoints += delta
	user.TotalPoints += delta
	return nil
}

func (m *Memory) IncrementGamesPlayed(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry(userID).GamesPlayed++
	return nil
}

func (m *Memory) IncrementGamesWon(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry(userID).GamesWon++
	return nil
}

func (m *Memory) Leaderboard(_ context.Context, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]*UserStats, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].TotalPoints == users[j].TotalPoints {
			return users[i].UserID < users[j].UserID
		}
		return users[i].TotalPoints > users[j].TotalPoints
	})
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	entries := make([]Entry, 0, len(users))
	for i, user := range users {
		entries = append(entries, Entry{UserID: user.UserID, Points: int64(user.TotalPoints), Rank: int64(i) + 1})
	}
	return entries, nil
}

func (m *Memory) User(_ context.Context, userID string) (*UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	snapshot := *user
	return &snapshot, nil
}
