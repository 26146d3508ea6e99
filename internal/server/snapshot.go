package server

import "never-have-i-ever/internal/game"

// snapshotRoom is the full room document clients re-fetch after a missed
// notification. The access code never leaves the server.
func snapshotRoom(room *game.Room) map[string]any {
	questionIDs := make([]string, 0, len(room.Questions))
	for _, q := range room.Questions {
		questionIDs = append(questionIDs, q.ID)
	}
	answers := room.Answers
	if answers == nil {
		answers = []game.Answer{}
	}
	return map[string]any{
		"id":                room.ID,
		"name":              room.Name,
		"visibility":        room.Visibility,
		"hasAccessCode":     room.AccessCode != "",
		"hostId":            room.HostID,
		"maxPlayers":        room.MaxPlayers,
		"maxRounds":         room.MaxRounds,
		"currentRound":      room.CurrentRound,
		"status":            room.Status,
		"players":           room.PlayersCopy(),
		"questionIds":       questionIDs,
		"currentQuestionId": room.CurrentQuestionID,
		"currentQuestion":   room.CurrentQuestion(),
		"answers":           answers,
		"version":           room.Version,
		"createdAt":         room.CreatedAt,
		"updatedAt":         room.UpdatedAt,
	}
}
