package questions

import (
	"context"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"sync"

	"never-have-i-ever/internal/db"
	"never-have-i-ever/internal/game"

	"gorm.io/gorm"
)

const (
	DefaultCount = 10
	MaxCount     = 50
)

// Bank samples questions for a game and for the public question endpoint.
type Bank interface {
	Sample(ctx context.Context, count int, category string) ([]game.Question, error)
	Categories(ctx context.Context) ([]string, error)
}

type Postgres struct {
	conn *gorm.DB
}

func NewPostgres(conn *gorm.DB) *Postgres {
	return &Postgres{conn: conn}
}

func (p *Postgres) Sample(ctx context.Context, count int, category string) ([]game.Question, error) {
	rows, err := db.SampleQuestions(ctx, p.conn, count, category)
	if err != nil {
		return nil, err
	}
	out := make([]game.Question, 0, len(rows))
	for _, row := range rows {
		out = append(out, game.Question{
			ID:         strconv.FormatUint(uint64(row.ID), 10),
			Text:       row.Text,
			Category:   row.Category,
			Difficulty: row.Difficulty,
		})
	}
	return out, nil
}

func (p *Postgres) Categories(ctx context.Context) ([]string, error) {
	return db.QuestionCategories(ctx, p.conn)
}

// Memory serves a fixed bank when no database is configured.
type Memory struct {
	mu        sync.Mutex
	questions []game.Question
	rng       *rand.Rand
}

func NewMemory(questions []game.Question) *Memory {
	if len(questions) == 0 {
		questions = fallbackQuestions()
	}
	return &Memory{
		questions: append([]game.Question(nil), questions...),
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

func (m *Memory) Sample(_ context.Context, count int, category string) ([]game.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pool := make([]game.Question, 0, len(m.questions))
	for _, q := range m.questions {
		if category == "" || strings.EqualFold(q.Category, category) {
			pool = append(pool, q)
		}
	}
	m.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if count < len(pool) {
		pool = pool[:count]
	}
	return pool, nil
}

func (m *Memory) Categories(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]struct{})
	for _, q := range m.questions {
		seen[q.Category] = struct{}{}
	}
	categories := make([]string, 0, len(seen))
	for category := range seen {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories, nil
}

// ParseCount applies the endpoint defaults: empty means DefaultCount, and
// anything outside 1..MaxCount is rejected.
func ParseCount(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultCount, nil
	}
	count, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || count < 1 || count > MaxCount {
		return 0, game.Validationf("count must be between 1 and %d", MaxCount)
	}
	return count, nil
}

func fallbackQuestions() []game.Question {
	texts := []struct {
		category   string
		difficulty string
		text       string
	}{
		{"classic", "easy", "Never have I ever stayed up all night"},
		{"classic", "easy", "Never have I ever forgotten a friend's birthday"},
		{"classic", "easy", "Never have I ever sung in the shower"},
		{"classic", "medium", "Never have I ever lied to get out of plans"},
		{"classic", "medium", "Never have I ever pretended to know a song"},
		{"classic", "medium", "Never have I ever fallen asleep in a movie theater"},
		{"classic", "hard", "Never have I ever read someone else's messages"},
		{"travel", "easy", "Never have I ever missed a flight"},
		{"travel", "easy", "Never have I ever traveled alone"},
		{"travel", "medium", "Never have I ever gotten lost in a foreign city"},
		{"travel", "medium", "Never have I ever slept in an airport"},
		{"travel", "hard", "Never have I ever lost my passport"},
		{"food", "easy", "Never have I ever eaten breakfast for dinner"},
		{"food", "easy", "Never have I ever burned toast"},
		{"food", "medium", "Never have I ever eaten food off the floor"},
		{"food", "medium", "Never have I ever sent a dish back at a restaurant"},
		{"food", "hard", "Never have I ever eaten an insect"},
		{"work", "easy", "Never have I ever been late to work"},
		{"work", "medium", "Never have I ever replied all by accident"},
		{"work", "medium", "Never have I ever fallen asleep in a meeting"},
		{"work", "hard", "Never have I ever quit a job without notice"},
		{"party", "easy", "Never have I ever danced on a table"},
		{"party", "medium", "Never have I ever crashed a party"},
		{"party", "medium", "Never have I ever been the last to leave a party"},
		{"party", "hard", "Never have I ever forgotten how I got home"},
	}
	questions := make([]game.Question, 0, len(texts))
	for i, entry := range texts {
		questions = append(questions, game.Question{
			ID:         "builtin-" + strconv.Itoa(i+1),
			Text:       entry.text,
			Category:   entry.category,
			Difficulty: entry.difficulty,
		})
	}
	return questions
}
