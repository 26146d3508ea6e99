package db

import (
	"context"
	"errors"

	"never-have-i-ever/internal/game"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoomStore keeps rooms in Postgres. Saves are compare-and-set on the
// version column so a concurrent writer in another process cannot be
// silently overwritten.
type RoomStore struct {
	conn *gorm.DB
}

func NewRoomStore(conn *gorm.DB) *RoomStore {
	return &RoomStore{conn: conn}
}

func (s *RoomStore) Create(ctx context.Context, room *game.Room) error {
	room.Version = 1
	record := toRecord(room)
	err := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&record).Error; err != nil {
			return err
		}
		if len(record.Players) > 0 {
			if err := tx.Create(&record.Players).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if isUniqueViolation(err) {
		return game.Validationf("room %s already exists", room.ID)
	}
	return err
}

func (s *RoomStore) Get(ctx context.Context, id string) (*game.Room, error) {
	var record Room
	err := s.conn.WithContext(ctx).
		Preload("Players", func(tx *gorm.DB) *gorm.DB { return tx.Order("seat asc") }).
		Preload("Answers", func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") }).
		First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, game.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromRecord(record), nil
}

func (s *RoomStore) Save(ctx context.Context, room *game.Room) error {
	record := toRecord(room)
	err := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Room{}).
			Where("id = ? AND version = ?", room.ID, room.Version).
			Updates(map[string]any{
				"name":                record.Name,
				"status":              record.Status,
				"current_round":       record.CurrentRound,
				"question_set":        record.QuestionSet,
				"current_question_id": record.CurrentQuestionID,
				"version":             room.Version + 1,
				"updated_at":          record.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&Room{}).Where("id = ?", room.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return game.ErrRoomNotFound
			}
			return game.ErrStaleRoom
		}

		if err := tx.Where("room_id = ?", room.ID).Delete(&RoomPlayer{}).Error; err != nil {
			return err
		}
		if len(record.Players) > 0 {
			if err := tx.Create(&record.Players).Error; err != nil {
				return err
			}
		}

		// Answers are append-only and only the current round can gain new ones.
		fresh := make([]RoomAnswer, 0, len(room.Players))
		for _, answer := range record.Answers {
			if answer.Round == room.CurrentRound {
				fresh = append(fresh, answer)
			}
		}
		if len(fresh) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	room.Version++
	return nil
}

func (s *RoomStore) Delete(ctx context.Context, id string) error {
	return s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", id).Delete(&RoomAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", id).Delete(&RoomPlayer{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&Room{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return game.ErrRoomNotFound
		}
		return nil
	})
}

func (s *RoomStore) List(ctx context.Context, filter game.ListFilter) ([]game.RoomSummary, int64, error) {
	scope := func() *gorm.DB {
		query := s.conn.WithContext(ctx).Model(&Room{})
		if filter.PublicOnly {
			query = query.Where("visibility = ?", game.VisibilityPublic)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		return query
	}
	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query := scope().Preload("Players").Order("created_at desc").Order("id asc")
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var records []Room
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	list := make([]game.RoomSummary, 0, len(records))
	for _, record := range records {
		list = append(list, fromRecord(record).Summary())
	}
	return list, total, nil
}

func toRecord(room *game.Room) Room {
	record := Room{
		ID:                room.ID,
		Name:              room.Name,
		Visibility:        room.Visibility,
		AccessCode:        room.AccessCode,
		HostID:            room.HostID,
		MaxPlayers:        room.MaxPlayers,
		MaxRounds:         room.MaxRounds,
		CurrentRound:      room.CurrentRound,
		Status:            room.Status,
		CurrentQuestionID: room.CurrentQuestionID,
		Version:           room.Version,
		CreatedAt:         room.CreatedAt,
		UpdatedAt:         room.UpdatedAt,
	}
	record.QuestionSet = make(datatypes.JSONSlice[QuestionEntry], 0, len(room.Questions))
	for _, q := range room.Questions {
		record.QuestionSet = append(record.QuestionSet, QuestionEntry{
			ID:         q.ID,
			Text:       q.Text,
			Category:   q.Category,
			Difficulty: q.Difficulty,
		})
	}
	for seat, player := range room.Players {
		record.Players = append(record.Players, RoomPlayer{
			RoomID:    room.ID,
			UserID:    player.UserID,
			Name:      player.Name,
			Seat:      seat,
			Points:    player.Points,
			IsReady:   player.IsReady,
			CreatedAt: room.UpdatedAt,
			UpdatedAt: room.UpdatedAt,
		})
	}
	for _, answer := range room.Answers {
		record.Answers = append(record.Answers, RoomAnswer{
			RoomID:     room.ID,
			UserID:     answer.UserID,
			QuestionID: answer.QuestionID,
			Round:      answer.Round,
			Value:      answer.Value,
			CreatedAt:  room.UpdatedAt,
		})
	}
	return record
}

func fromRecord(record Room) *game.Room {
	room := &game.Room{
		ID:                record.ID,
		Name:              record.Name,
		Visibility:        record.Visibility,
		AccessCode:        record.AccessCode,
		HostID:            record.HostID,
		MaxPlayers:        record.MaxPlayers,
		MaxRounds:         record.MaxRounds,
		CurrentRound:      record.CurrentRound,
		Status:            record.Status,
		CurrentQuestionID: record.CurrentQuestionID,
		Version:           record.Version,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}
	for _, q := range record.QuestionSet {
		room.Questions = append(room.Questions, game.Question{
			ID:         q.ID,
			Text:       q.Text,
			Category:   q.Category,
			Difficulty: q.Difficulty,
		})
	}
	for _, player := range record.Players {
		room.Players = append(room.Players, game.PlayerEntry{
			UserID:  player.UserID,
			Name:    player.Name,
			Points:  player.Points,
			IsReady: player.IsReady,
		})
	}
	for _, answer := range record.Answers {
		room.Answers = append(room.Answers, game.Answer{
			UserID:     answer.UserID,
			QuestionID: answer.QuestionID,
			Value:      answer.Value,
			Round:      answer.Round,
		})
	}
	return room
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
