package game

// HasAnswered reports whether an answer exists for the exact
// (user, question, round) triple.
func HasAnswered(room *Room, userID, questionID string, round int) bool {
	if room == nil {
		return false
	}
	for _, answer := range room.Answers {
		if answer.UserID == userID && answer.QuestionID == questionID && answer.Round == round {
			return true
		}
	}
	return false
}

// RecordAnswer validates and appends one answer for the current round and
// returns the updated copy. The input room is never modified.
func RecordAnswer(room *Room, userID string, value bool) (*Room, error) {
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if room.Status != StatusPlaying || room.CurrentQuestionID == "" {
		return nil, ErrRoomNotPlaying
	}
	if !room.HasPlayer(userID) {
		return nil, ErrPlayerNotInRoom
	}
	if HasAnswered(room, userID, room.CurrentQuestionID, room.CurrentRound) {
		return nil, ErrDuplicateAnswer
	}
	next := room.Clone()
	next.Answers = append(next.Answers, Answer{
		UserID:     userID,
		QuestionID: room.CurrentQuestionID,
		Value:      value,
		Round:      room.CurrentRound,
	})
	return next, nil
}

func AnswersForCurrentRound(room *Room) []Answer {
	if room == nil || room.CurrentQuestionID == "" {
		return nil
	}
	answers := make([]Answer, 0, len(room.Players))
	for _, answer := range room.Answers {
		if answer.QuestionID == room.CurrentQuestionID && answer.Round == room.CurrentRound {
			answers = append(answers, answer)
		}
	}
	return answers
}

// IsRoundComplete compares against the live player count. A room with no
// players never completes a round.
func IsRoundComplete(room *Room) bool {
	if room == nil || len(room.Players) == 0 {
		return false
	}
	return len(AnswersForCurrentRound(room)) == len(room.Players)
}
