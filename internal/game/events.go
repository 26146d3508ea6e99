package game

const (
	EventRoomData           = "room-data"
	EventPlayerJoined       = "player-joined"
	EventPlayerLeft         = "player-left"
	EventPlayerReady        = "player-ready"
	EventRoomClosed         = "room-closed"
	EventGameStarted        = "game-started"
	EventPlayerAnswered     = "player-answered"
	EventAllPlayersAnswered = "all-players-answered"
	EventRoundStarted       = "round-started"
	EventGameEnded          = "game-ended"
	EventLeaderboardUpdated = "leaderboard-updated"
	EventError              = "error"
)

// Notification is the closed set of messages pushed to room sessions. Each
// kind owns a fixed payload; Event names it on the wire.
type Notification interface {
	Event() string
	notification()
}

type PlayerJoined struct {
	RoomID string      `json:"roomId"`
	User   PlayerEntry `json:"user"`
}

type PlayerLeft struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type PlayerReady struct {
	RoomID  string `json:"roomId"`
	UserID  string `json:"userId"`
	IsReady bool   `json:"isReady"`
}

type RoomClosed struct {
	RoomID string `json:"roomId"`
}

type GameStarted struct {
	RoomID          string        `json:"roomId"`
	CurrentRound    int           `json:"currentRound"`
	CurrentQuestion *Question     `json:"currentQuestion"`
	Players         []PlayerEntry `json:"players"`
}

type PlayerAnswered struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type AnswerView struct {
	UserID string `json:"userId"`
	Answer bool   `json:"answer"`
}

type AllPlayersAnswered struct {
	RoomID   string        `json:"roomId"`
	YesCount int           `json:"yesCount"`
	NoCount  int           `json:"noCount"`
	Players  []PlayerEntry `json:"players"`
	Answers  []AnswerView  `json:"answers"`
}

type RoundStarted struct {
	RoomID          string        `json:"roomId"`
	CurrentRound    int           `json:"currentRound"`
	CurrentQuestion *Question     `json:"currentQuestion"`
	Players         []PlayerEntry `json:"players"`
}

type GameEnded struct {
	RoomID  string        `json:"roomId"`
	Players []PlayerEntry `json:"players"`
	Winner  *PlayerEntry  `json:"winner"`
	Winners []PlayerEntry `json:"winners"`
}

type LeaderboardUpdated struct{}

type RoomData struct {
	Room map[string]any `json:"room"`
}

type ErrorNotice struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (PlayerJoined) Event() string       { return EventPlayerJoined }
func (PlayerLeft) Event() string         { return EventPlayerLeft }
func (PlayerReady) Event() string        { return EventPlayerReady }
func (RoomClosed) Event() string         { return EventRoomClosed }
func (GameStarted) Event() string        { return EventGameStarted }
func (PlayerAnswered) Event() string     { return EventPlayerAnswered }
func (AllPlayersAnswered) Event() string { return EventAllPlayersAnswered }
func (RoundStarted) Event() string       { return EventRoundStarted }
func (GameEnded) Event() string          { return EventGameEnded }
func (LeaderboardUpdated) Event() string { return EventLeaderboardUpdated }
func (RoomData) Event() string           { return EventRoomData }
func (ErrorNotice) Event() string        { return EventError }

func (PlayerJoined) notification()       {}
func (PlayerLeft) notification()         {}
func (PlayerReady) notification()        {}
func (RoomClosed) notification()         {}
func (GameStarted) notification()        {}
func (PlayerAnswered) notification()     {}
func (AllPlayersAnswered) notification() {}
func (RoundStarted) notification()       {}
func (GameEnded) notification()          {}
func (LeaderboardUpdated) notification() {}
func (RoomData) notification()           {}
func (ErrorNotice) notification()        {}

// NoticeFor hides infrastructure failures behind a generic message.
func NoticeFor(err error) ErrorNotice {
	if KindOf(err) == KindInternal {
		return ErrorNotice{Message: "internal server error", Code: "internal"}
	}
	return ErrorNotice{Message: err.Error(), Code: CodeOf(err)}
}

func answerViews(answers []Answer) []AnswerView {
	views := make([]AnswerView, 0, len(answers))
	for _, answer := range answers {
		views = append(views, AnswerView{UserID: answer.UserID, Answer: answer.Value})
	}
	return views
}
