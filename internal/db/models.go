package db

import (
	"time"

	"gorm.io/datatypes"
)

type Room struct {
	ID                string                             `gorm:"primaryKey;size:36"`
	Name              string                             `gorm:"size:64;not null"`
	Visibility        string                             `gorm:"size:16;not null;index"`
	AccessCode        string                             `gorm:"size:16"`
	HostID            string                             `gorm:"size:64;not null"`
	MaxPlayers        int                                `gorm:"not null"`
	MaxRounds         int                                `gorm:"not null"`
	CurrentRound      int                                `gorm:"not null;default:0"`
	Status            string                             `gorm:"size:32;not null;index"`
	QuestionSet       datatypes.JSONSlice[QuestionEntry] `gorm:"type:jsonb"`
	CurrentQuestionID string                             `gorm:"size:64"`
	Version           int                                `gorm:"not null;default:1"`
	CreatedAt         time.Time                          `gorm:"not null;index"`
	UpdatedAt         time.Time                          `gorm:"not null"`
	Players           []RoomPlayer                       `gorm:"constraint:OnDelete:CASCADE"`
	Answers           []RoomAnswer                       `gorm:"constraint:OnDelete:CASCADE"`
}

// QuestionEntry is the question sequence assigned at start, stored inline so
// later edits to the question bank never change a running game.
type QuestionEntry struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

type RoomPlayer struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    string    `gorm:"size:36;not null;uniqueIndex:idx_room_players_room_user"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_room_players_room_user"`
	Name      string    `gorm:"size:64"`
	Seat      int       `gorm:"not null"`
	Points    int       `gorm:"not null;default:0"`
	IsReady   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type RoomAnswer struct {
	ID         uint      `gorm:"primaryKey"`
	RoomID     string    `gorm:"size:36;not null;index;uniqueIndex:idx_room_answers_unique"`
	UserID     string    `gorm:"size:64;not null;uniqueIndex:idx_room_answers_unique"`
	QuestionID string    `gorm:"size:64;not null;uniqueIndex:idx_room_answers_unique"`
	Round      int       `gorm:"not null;uniqueIndex:idx_room_answers_unique"`
	Value      bool      `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

type Question struct {
	ID         uint      `gorm:"primaryKey"`
	Category   string    `gorm:"size:64;not null;uniqueIndex:idx_questions_category_text"`
	Text       string    `gorm:"size:280;not null;uniqueIndex:idx_questions_category_text"`
	Difficulty string    `gorm:"size:16;not null;default:'medium'"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

type User struct {
	ID          string    `gorm:"primaryKey;size:64"`
	Points      int       `gorm:"not null;default:0"`
	DailyPoints int       `gorm:"not null;default:0"`
	TotalPoints int       `gorm:"not null;default:0"`
	GamesPlayed int       `gorm:"not null;default:0"`
	GamesWon    int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	RoomID    string         `gorm:"size:36;index;not null"`
	UserID    *string        `gorm:"size:64;index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
