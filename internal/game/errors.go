package game

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindConflict
	KindNotEnoughPlayers
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindNotEnoughPlayers:
		return "not_enough_players"
	default:
		return "internal"
	}
}

// Error is a rejected action. Two errors are equal under errors.Is when
// their codes match, so wrapped sentinels still compare.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

var (
	ErrRoomNotFound       = &Error{Kind: KindNotFound, Code: "room_not_found", Message: "room not found"}
	ErrDuplicateAnswer    = &Error{Kind: KindConflict, Code: "duplicate_answer", Message: "you have already answered this question"}
	ErrPlayerNotInRoom    = &Error{Kind: KindConflict, Code: "player_not_in_room", Message: "you are not in this room"}
	ErrRoomNotPlaying     = &Error{Kind: KindConflict, Code: "room_not_playing", Message: "game is not in progress"}
	ErrRoomNotWaiting     = &Error{Kind: KindConflict, Code: "room_not_waiting", Message: "game already started"}
	ErrRoundIncomplete    = &Error{Kind: KindConflict, Code: "round_incomplete", Message: "all players must answer before advancing to the next round"}
	ErrRoomFull           = &Error{Kind: KindConflict, Code: "room_full", Message: "room is full"}
	ErrHostCannotLeave    = &Error{Kind: KindConflict, Code: "host_cannot_leave", Message: "host cannot leave while other players remain"}
	ErrNotEnoughQuestions = &Error{Kind: KindConflict, Code: "not_enough_questions", Message: "not enough questions available"}
	ErrStaleRoom          = &Error{Kind: KindConflict, Code: "stale_room", Message: "room was modified concurrently, please retry"}
	ErrHostOnlyStart      = &Error{Kind: KindForbidden, Code: "not_host", Message: "only the host can start the game"}
	ErrHostOnlyAdvance    = &Error{Kind: KindForbidden, Code: "not_host", Message: "only the host can advance to the next round"}
	ErrInvalidAccessCode  = &Error{Kind: KindForbidden, Code: "invalid_access_code", Message: "invalid access code"}
	ErrNotEnoughPlayers   = &Error{Kind: KindNotEnoughPlayers, Code: "not_enough_players", Message: "at least 2 players are required to start"}
)

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: "validation", Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the taxonomy bucket of err; anything that is not a *Error
// is an infrastructure failure.
func KindOf(err error) Kind {
	var gameErr *Error
	if errors.As(err, &gameErr) {
		return gameErr.Kind
	}
	return KindInternal
}

func CodeOf(err error) string {
	var gameErr *Error
	if errors.As(err, &gameErr) {
		return gameErr.Code
	}
	return "internal"
}
