package db

import (
	"context"
	"encoding/json"

	"never-have-i-ever/internal/game"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventLog appends every room notification to the events table.
type EventLog struct {
	conn *gorm.DB
}

func NewEventLog(conn *gorm.DB) *EventLog {
	return &EventLog{conn: conn}
}

func (l *EventLog) Record(ctx context.Context, roomID string, n game.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	event := Event{
		RoomID:  roomID,
		UserID:  eventUserID(n),
		Type:    n.Event(),
		Payload: datatypes.JSON(data),
	}
	return l.conn.WithContext(ctx).Create(&event).Error
}

// List returns a window of a room's events, oldest first, and the total count.
func (l *EventLog) List(ctx context.Context, roomID string, offset, limit int) ([]Event, int64, error) {
	if offset < 0 {
		offset = 0
	}
	scope := func() *gorm.DB {
		return l.conn.WithContext(ctx).Model(&Event{}).Where("room_id = ?", roomID)
	}
	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query := scope().Order("id asc").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	var events []Event
	err := query.Find(&events).Error
	return events, total, err
}

func eventUserID(n game.Notification) *string {
	var userID string
	switch v := n.(type) {
	case game.PlayerJoined:
		userID = v.User.UserID
	case game.PlayerLeft:
		userID = v.UserID
	case game.PlayerReady:
		userID = v.UserID
	case game.PlayerAnswered:
		userID = v.UserID
	}
	if userID == "" {
		return nil
	}
	return &userID
}
