package game

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

type QuestionSampler interface {
	Sample(ctx context.Context, count int, category string) ([]Question, error)
}

type StatsUpdater interface {
	IncrementPoints(ctx context.Context, userID string, delta int) error
	IncrementGamesPlayed(ctx context.Context, userID string) error
	IncrementGamesWon(ctx context.Context, userID string) error
}

// Publisher delivers notifications to room sessions. Delivery is best
// effort; a client that misses one re-fetches the room.
type Publisher interface {
	Publish(roomID string, n Notification)
	PublishAll(n Notification)
	Prune(roomID string)
}

type AuditLog interface {
	Record(ctx context.Context, roomID string, n Notification) error
}

type Options struct {
	Store     RoomStore
	Questions QuestionSampler
	Stats     StatsUpdater
	Events    Publisher
	Audit     AuditLog
	Logger    *slog.Logger
	// DefaultCategory is used by Start when the caller names none.
	DefaultCategory string
}

type Controller struct {
	store           RoomStore
	questions       QuestionSampler
	stats           StatsUpdater
	events          Publisher
	audit           AuditLog
	logger          *slog.Logger
	defaultCategory string
	locks           *roomLocks
	now             func() time.Time
	newID           func() string
}

func NewController(opts Options) *Controller {
	c := &Controller{
		store:           opts.Store,
		questions:       opts.Questions,
		stats:           opts.Stats,
		events:          opts.Events,
		audit:           opts.Audit,
		logger:          opts.Logger,
		defaultCategory: opts.DefaultCategory,
		locks:           newRoomLocks(),
		now:             func() time.Time { return time.Now().UTC() },
		newID:           func() string { return uuid.NewString() },
	}
	if c.store == nil {
		c.store = NewMemoryStore()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.stats == nil {
		c.stats = noopStats{}
	}
	if c.events == nil {
		c.events = noopPublisher{}
	}
	return c
}

type CreateRoomParams struct {
	Name       string
	Visibility string
	AccessCode string
	HostID     string
	HostName   string
	MaxPlayers int
	MaxRounds  int
}

type AnswerResult struct {
	Room               *Room
	AllPlayersAnswered bool
	Tally              Tally
	Deltas             map[string]int
}

type AdvanceResult struct {
	Room         *Room
	CurrentRound int
	IsGameOver   bool
	Winners      []PlayerEntry
}

type LeaveResult struct {
	Room   *Room
	Closed bool
}

func (c *Controller) CreateRoom(ctx context.Context, params CreateRoomParams) (*Room, error) {
	name, err := ValidateRoomName(params.Name)
	if err != nil {
		return nil, err
	}
	hostID, err := ValidateUserID(params.HostID)
	if err != nil {
		return nil, err
	}
	hostName, err := ValidatePlayerName(params.HostName)
	if err != nil {
		return nil, err
	}
	visibility := params.Visibility
	if visibility == "" {
		visibility = VisibilityPublic
	}
	var accessCode string
	switch visibility {
	case VisibilityPublic:
	case VisibilityPrivate:
		accessCode, err = ValidateAccessCode(params.AccessCode)
		if err != nil {
			return nil, err
		}
	default:
		return nil, Validationf("visibility must be public or private")
	}
	if params.MaxPlayers < MinPlayers || params.MaxPlayers > MaxPlayersLimit {
		return nil, Validationf("maxPlayers must be between %d and %d", MinPlayers, MaxPlayersLimit)
	}
	if params.MaxRounds < MinRounds || params.MaxRounds > MaxRoundsLimit {
		return nil, Validationf("maxRounds must be between %d and %d", MinRounds, MaxRoundsLimit)
	}

	now := c.now()
	room := &Room{
		ID:         c.newID(),
		Name:       name,
		Visibility: visibility,
		AccessCode: accessCode,
		HostID:     hostID,
		MaxPlayers: params.MaxPlayers,
		MaxRounds:  params.MaxRounds,
		Status:     StatusWaiting,
		Players:    []PlayerEntry{{UserID: hostID, Name: hostName}},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := c.store.Create(ctx, room); err != nil {
		return nil, err
	}
	c.logger.Info("room created", "room_id", room.ID, "host_id", hostID, "visibility", visibility,
		"max_players", room.MaxPlayers, "max_rounds", room.MaxRounds)
	return room, nil
}

func (c *Controller) GetRoom(ctx context.Context, roomID string) (*Room, error) {
	if roomID == "" {
		return nil, ErrRoomNotFound
	}
	return c.store.Get(ctx, roomID)
}

// ListRooms only lists public rooms. It returns the window starting at
// offset and the total number of matching rooms.
func (c *Controller) ListRooms(ctx context.Context, status string, offset, limit int) ([]RoomSummary, int64, error) {
	switch status {
	case "", StatusWaiting, StatusPlaying, StatusCompleted:
	default:
		return nil, 0, Validationf("unknown status %q", status)
	}
	return c.store.List(ctx, ListFilter{Status: status, PublicOnly: true, Offset: offset, Limit: limit})
}

// JoinRoom is idempotent for players already seated.
func (c *Controller) JoinRoom(ctx context.Context, roomID, userID, name, accessCode string) (*Room, error) {
	userID, err := ValidateUserID(userID)
	if err != nil {
		return nil, err
	}
	name, err = ValidatePlayerName(name)
	if err != nil {
		return nil, err
	}

	unlock := c.locks.lock(roomID)
	defer unlock()
	room, err := c.store.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.HasPlayer(userID) {
		return room, nil
	}
	if room.Status != StatusWaiting {
		return nil, ErrRoomNotWaiting
	}
	if room.Visibility == VisibilityPrivate && strings.TrimSpace(accessCode) != room.AccessCode {
		return nil, ErrInvalidAccessCode
	}
	if len(room.Players) >= room.MaxPlayers {
		return nil, ErrRoomFull
	}
	entry := PlayerEntry{UserID: userID, Name: name}
	room.Players = append(room.Players, entry)
	if err := c.save(ctx, room); err != nil {
		return nil, err
	}
	c.logger.Info("player joined", "room_id", roomID, "user_id", userID, "players", len(room.Players))
	c.emit(ctx, roomID, PlayerJoined{RoomID: roomID, User: entry})
	return room, nil
}

// LeaveRoom removes a player from a waiting room. The host can only leave
// last, which closes the room.
func (c *Controller) LeaveRoom(ctx context.Context, roomID, userID string) (*LeaveResult, error) {
	userID, err := ValidateUserID(userID)
	if err != nil {
		return nil, err
	}

	unlock := c.locks.lock(roomID)
	defer unlock()
	room, err := c.store.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != StatusWaiting {
		return nil, ErrRoomNotWaiting
	}
	index := room.PlayerIndex(userID)
	if index < 0 {
		return nil, ErrPlayerNotInRoom
	}
	if room.IsHost(userID) && len(room.Players) > 1 {
		return nil, ErrHostCannotLeave
	}
	room.Players = append(room.Players[:index], room.Players[index+1:]...)

	if len(room.Players) == 0 {
		if err := c.store.Delete(ctx, roomID); err != nil {
			return nil, err
		}
		c.logger.Info("room closed", "room_id", roomID, "user_id", userID)
		c.emit(ctx, roomID, PlayerLeft{RoomID: roomID, UserID: userID})
		c.emit(ctx, roomID, RoomClosed{RoomID: roomID})
		c.events.Prune(roomID)
		return &LeaveResult{Room: room, Closed: true}, nil
	}

	if err := c.save(ctx, room); err != nil {
		return nil, err
	}
	c.logger.Info("player left", "room_id", roomID, "user_id", userID, "players", len(room.Players))
	c.emit(ctx, roomID, PlayerLeft{RoomID: roomID, UserID: userID})
	return &LeaveResult{Room: room}, nil
}

func (c *Controller) SetReady(ctx context.Context, roomID, userID string, ready bool) (*Room, error) {
	userID, err := ValidateUserID(userID)
	if err != nil {
		return nil, err
	}

	unlock := c.locks.lock(roomID)
	defer unlock()
	room, err := c.store.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != StatusWaiting {
		return nil, ErrRoomNotWaiting
	}
	index := room.PlayerIndex(userID)
	if index < 0 {
		return nil, ErrPlayerNotInRoom
	}
	room.Players[index].IsReady = ready
	if err := c.save(ctx, room); err != nil {
		return nil, err
	}
	c.emit(ctx, roomID, PlayerReady{RoomID: roomID, UserID: userID, IsReady: ready})
	return room, nil
}

// Start moves a waiting room into play with a freshly sampled question
// sequence, one question per round.
func (c *Controller) Start(ctx context.Context, roomID, requesterID, category string) (*Room, error) {
	requesterID, err := ValidateUserID(requesterID)
	if err != nil {
		return nil, err
	}
	category, err = ValidateCategory(category)
	if err != nil {
		return nil, err
	}
	if category == "" {
		category = c.defaultCategory
	}

	unlock := c.locks.lock(roomID)
	defer unlock()
	room, err := c.store.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != StatusWaiting {
		return nil, ErrRoomNotWaiting
	}
	if !room.IsHost(requesterID) {
		return nil, ErrHostOnlyStart
	}
	if len(room.Players) < MinPlayers {
		return nil, ErrNotEnoughPlayers
	}
	if c.questions == nil {
		return nil, ErrNotEnoughQuestions
	}
	questions, err := c.questions.Sample(ctx, room.MaxRounds, category)
	if err != nil {
		return nil, err
	}
	if len(questions) < room.MaxRounds {
		return nil, ErrNotEnoughQuestions
	}

	room.Questions = append([]Question(nil), questions[:room.MaxRounds]...)
	room.CurrentRound = 1
	room.CurrentQuestionID = room.Questions[0].ID
	room.Status = StatusPlaying
	if err := c.save(ctx, room); err != nil {
		return nil, err
	}
	c.logger.Info("game started", "room_id", roomID, "players", len(room.Players), "rounds", room.MaxRounds)
	c.emit(ctx, roomID, GameStarted{
		RoomID:          roomID,
		CurrentRound:    room.CurrentRound,
		CurrentQuestion: room.CurrentQuestion(),
		Players:         room.PlayersCopy(),
	})
	return room, nil
}

// SubmitAnswer records one answer and, when it completes the round, applies
// the minority bonus in the same save.
func (c *Controller) SubmitAnswer(ctx context.Context, roomID, userID string, value bool) (*AnswerResult, error) {
	userID, err := ValidateUserID(userID)
	if err != nil {
		return nil, err
	}

	unlock := c.locks.lock(roomID)
	defer unlock()
	room, err := c.store.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	next, err := RecordAnswer(room, userID, value)
	if err != nil {
		return nil, err
	}

	result := &AnswerResult{Room: next}
	var roundAnswers []Answer
	if IsRoundComplete(next) {
		roundAnswers = AnswersForCurrentRound(next)
		result.AllPlayersAnswered = true
		result.Tally = CountAnswers(roundAnswers)
		result.Deltas = Score(roundAnswers, len(next.Players))
		applyDeltas(next, result.Deltas)
	}
	if err := c.save(ctx, next); err != nil {
		return nil, err
	}

	c.emit(ctx, roomID, PlayerAnswered{RoomID: roomID, UserID: userID})
	if !result.AllPlayersAnswered {
		return result, nil
	}

	c.logger.Info("round scored", "room_id", roomID, "round", next.CurrentRound,
		"yes", result.Tally.Yes, "no", result.Tally.No)
	for _, answer := range roundAnswers {
		delta := result.Deltas[answer.UserID]
		if delta == 0 {
			continue
		}
		if err := c.stats.IncrementPoints(ctx, answer.UserID, delta); err != nil {
			c.logger.Warn("stats update failed", "room_id", roomID, "user_id", answer.UserID, "error", err)
		}
	}
	c.emit(ctx, roomID, AllPlayersAnswered{
		RoomID:   roomID,
		YesCount: result.Tally.Yes,
		NoCount:  result.Tally.No,
		Players:  next.PlayersCopy(),
		Answers:  answerViews(roundAnswers),
	})
	return result, nil
}

// AdvanceRound checks status, then completeness, then the host, so an
// incomplete round is a conflict whoever asks.
func (c *Controller) AdvanceRound(ctx context.Context, roomID, requesterID string) (*AdvanceResult, error) {
	requesterID, err := ValidateUserID(requesterID)
	if err != nil {
		return nil, err
	}

	unlock := c.locks.lock(roomID)
	defer unlock()
	room, err := c.store.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != StatusPlaying {
		return nil, ErrRoomNotPlaying
	}
	if !IsRoundComplete(room) {
		return nil, ErrRoundIncomplete
	}
	if !room.IsHost(requesterID) {
		return nil, ErrHostOnlyAdvance
	}

	room.CurrentRound++
	result := &AdvanceResult{Room: room, CurrentRound: room.CurrentRound}
	if room.CurrentRound > room.MaxRounds {
		room.Status = StatusCompleted
		room.CurrentQuestionID = ""
		result.IsGameOver = true
		result.Winners = Winners(room)
	} else {
		question, ok := room.questionForRound(room.CurrentRound)
		if !ok {
			return nil, ErrNotEnoughQuestions
		}
		room.CurrentQuestionID = question.ID
	}
	if err := c.save(ctx, room); err != nil {
		return nil, err
	}

	if !result.IsGameOver {
		c.logger.Info("round started", "room_id", roomID, "round", room.CurrentRound)
		c.emit(ctx, roomID, RoundStarted{
			RoomID:          roomID,
			CurrentRound:    room.CurrentRound,
			CurrentQuestion: room.CurrentQuestion(),
			Players:         room.PlayersCopy(),
		})
		return result, nil
	}

	c.finish(ctx, room, result.Winners)
	return result, nil
}

func (c *Controller) finish(ctx context.Context, room *Room, winners []PlayerEntry) {
	for _, player := range room.Players {
		if err := c.stats.IncrementGamesPlayed(ctx, player.UserID); err != nil {
			c.logger.Warn("stats update failed", "room_id", room.ID, "user_id", player.UserID, "error", err)
		}
	}
	for _, winner := range winners {
		if err := c.stats.IncrementGamesWon(ctx, winner.UserID); err != nil {
			c.logger.Warn("stats update failed", "room_id", room.ID, "user_id", winner.UserID, "error", err)
		}
	}

	ended := GameEnded{RoomID: room.ID, Players: room.PlayersCopy(), Winners: winners}
	if len(winners) > 0 {
		first := winners[0]
		ended.Winner = &first
	}
	c.logger.Info("game ended", "room_id", room.ID, "winners", len(winners))
	c.emit(ctx, room.ID, ended)
	c.events.PublishAll(LeaderboardUpdated{})
	c.events.Prune(room.ID)
}

func (c *Controller) save(ctx context.Context, room *Room) error {
	room.UpdatedAt = c.now()
	return c.store.Save(ctx, room)
}

func (c *Controller) emit(ctx context.Context, roomID string, n Notification) {
	c.events.Publish(roomID, n)
	if c.audit == nil {
		return
	}
	if err := c.audit.Record(ctx, roomID, n); err != nil {
		c.logger.Warn("audit record failed", "room_id", roomID, "event", n.Event(), "error", err)
	}
}

type noopStats struct{}

func (noopStats) IncrementPoints(context.Context, string, int) error { return nil }
func (noopStats) IncrementGamesPlayed(context.Context, string) error  { return nil }
func (noopStats) IncrementGamesWon(context.Context, string) error     { return nil }

type noopPublisher struct{}

func (noopPublisher) Publish(string, Notification) {}
func (noopPublisher) PublishAll(Notification)      {}
func (noopPublisher) Prune(string)                 {}
