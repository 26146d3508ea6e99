package game

import "time"

const (
	StatusWaiting   = "waiting"
	StatusPlaying   = "playing"
	StatusCompleted = "completed"
)

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

const (
	MinPlayers      = 2
	MaxPlayersLimit = 30
	MinRounds       = 1
	MaxRoundsLimit  = 20
)

type Room struct {
	ID                string
	Name              string
	Visibility        string
	AccessCode        string
	HostID            string
	MaxPlayers        int
	MaxRounds         int
	CurrentRound      int
	Status            string
	Players           []PlayerEntry
	Questions         []Question
	CurrentQuestionID string
	Answers           []Answer
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type PlayerEntry struct {
	UserID  string `json:"userId"`
	Name    string `json:"name,omitempty"`
	Points  int    `json:"points"`
	IsReady bool   `json:"isReady"`
}

type Question struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

type Answer struct {
	UserID     string `json:"userId"`
	QuestionID string `json:"questionId"`
	Value      bool   `json:"value"`
	Round      int    `json:"round"`
}

type RoomSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Visibility   string    `json:"visibility"`
	Status       string    `json:"status"`
	HostID       string    `json:"hostId"`
	Players      int       `json:"players"`
	MaxPlayers   int       `json:"maxPlayers"`
	MaxRounds    int       `json:"maxRounds"`
	CurrentRound int       `json:"currentRound"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ListFilter selects rooms for listing. A zero Limit means no limit.
type ListFilter struct {
	Status     string
	PublicOnly bool
	Offset     int
	Limit      int
}

// Clone returns a deep copy so callers can mutate a room without touching
// the stored one until it is saved.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Players = append([]PlayerEntry(nil), r.Players...)
	clone.Questions = append([]Question(nil), r.Questions...)
	clone.Answers = append([]Answer(nil), r.Answers...)
	return &clone
}

func (r *Room) Summary() RoomSummary {
	return RoomSummary{
		ID:           r.ID,
		Name:         r.Name,
		Visibility:   r.Visibility,
		Status:       r.Status,
		HostID:       r.HostID,
		Players:      len(r.Players),
		MaxPlayers:   r.MaxPlayers,
		MaxRounds:    r.MaxRounds,
		CurrentRound: r.CurrentRound,
		CreatedAt:    r.CreatedAt,
	}
}

func (r *Room) IsHost(userID string) bool {
	return r.HostID != "" && r.HostID == userID
}

func (r *Room) PlayerIndex(userID string) int {
	for i := range r.Players {
		if r.Players[i].UserID == userID {
			return i
		}
	}
	return -1
}

func (r *Room) HasPlayer(userID string) bool {
	return r.PlayerIndex(userID) >= 0
}

func (r *Room) CurrentQuestion() *Question {
	if r.CurrentQuestionID == "" {
		return nil
	}
	for i := range r.Questions {
		if r.Questions[i].ID == r.CurrentQuestionID {
			q := r.Questions[i]
			return &q
		}
	}
	return &Question{ID: r.CurrentQuestionID}
}

// questionForRound maps a 1-based round number onto the question sequence.
func (r *Room) questionForRound(round int) (Question, bool) {
	if round < 1 || round > len(r.Questions) {
		return Question{}, false
	}
	return r.Questions[round-1], true
}

func (r *Room) PlayersCopy() []PlayerEntry {
	players := make([]PlayerEntry, len(r.Players))
	copy(players, r.Players)
	return players
}

func (r *Room) matches(filter ListFilter) bool {
	if filter.PublicOnly && r.Visibility != VisibilityPublic {
		return false
	}
	if filter.Status != "" && r.Status != filter.Status {
		return false
	}
	return true
}
