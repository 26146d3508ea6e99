package stats

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const LeaderboardKey = "leaderboard:points"

func userKey(userID string) string {
	return "user:stats:" + userID
}

// Redis mirrors point totals into a sorted set for fast leaderboard reads
// and keeps per-user counters in a hash.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func Dial(ctx context.Context, addr, password string, dbIndex int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       dbIndex,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (r *Redis) IncrementPoints(ctx context.Context, userID string, delta int) error {
	pipe := r.client.TxPipeline()
	pipe.ZIncrBy(ctx, LeaderboardKey, float64(delta), userID)
	pipe.HIncrBy(ctx, userKey(userID), "points", int64(delta))
	pipe.HIncrBy(ctx, userKey(userID), "dailyPoints", int64(delta))
	pipe.HIncrBy(ctx, userKey(userID), "totalPoints", int64(delta))
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Redis) IncrementGamesPlayed(ctx context.Context, userID string) error {
	return r.client.HIncrBy(ctx, userKey(userID), "gamesPlayed", 1).Err()
}

func (r *Redis) IncrementGamesWon(ctx context.Context, userID string) error {
	return r.client.HIncrBy(ctx, userKey(userID), "gamesWon", 1).Err()
}

func (r *Redis) Leaderboard(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	results, err := r.client.ZRevRangeWithScores(ctx, LeaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(results))
	for i, result := range results {
		userID, ok := result.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, Entry{UserID: userID, Points: int64(result.Score), Rank: int64(i) + 1})
	}
	return entries, nil
}

func (r *Redis) User(ctx context.Context, userID string) (*UserStats, error) {
	fields, err := r.client.HGetAll(ctx, userKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrUserNotFound
	}
	atoi := func(key string) int {
		value, _ := strconv.Atoi(fields[key])
		return value
	}
	return &UserStats{
		UserID:      userID,
		Points:      atoi("points"),
		DailyPoints: atoi("dailyPoints"),
		TotalPoints: atoi("totalPoints"),
		GamesPlayed: atoi("gamesPlayed"),
		GamesWon:    atoi("gamesWon"),
	}, nil
}
