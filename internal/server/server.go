package server

import (
	"log/slog"
	"net/http"

	"never-have-i-ever/internal/config"
	"never-have-i-ever/internal/db"
	"never-have-i-ever/internal/fanout"
	"never-have-i-ever/internal/game"
	"never-have-i-ever/internal/questions"
	"never-have-i-ever/internal/stats"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	ctrl      *game.Controller
	db        *gorm.DB
	hub       *fanout.Hub
	questions questions.Bank
	stats     stats.Reader
	events    *db.EventLog
	cfg       config.Config
	logger    *slog.Logger
}

type Option func(*options)

type options struct {
	redis     *redis.Client
	logger    *slog.Logger
	questions questions.Bank
}

func WithRedis(client *redis.Client) Option {
	return func(o *options) { o.redis = client }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithQuestionBank(bank questions.Bank) Option {
	return func(o *options) { o.questions = bank }
}

// New wires the game controller to its collaborators. A nil conn keeps
// rooms, questions and stats in memory.
func New(conn *gorm.DB, cfg config.Config, opts ...Option) *Server {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	s := &Server{
		db:     conn,
		hub:    fanout.NewHub(o.logger),
		cfg:    cfg,
		logger: o.logger,
	}

	var store game.RoomStore
	var sinks stats.Multi
	var audit game.AuditLog
	if conn != nil {
		store = db.NewRoomStore(conn)
		s.questions = questions.NewPostgres(conn)
		pg := stats.NewPostgres(conn)
		sinks = append(sinks, pg)
		s.stats = pg
		s.events = db.NewEventLog(conn)
		audit = s.events
	} else {
		store = game.NewMemoryStore()
		s.questions = questions.NewMemory(nil)
		memory := stats.NewMemory()
		sinks = append(sinks, memory)
		s.stats = memory
	}
	if o.redis != nil {
		mirror := stats.NewRedis(o.redis)
		sinks = append(sinks, mirror)
		s.stats = mirror
	}
	if o.questions != nil {
		s.questions = o.questions
	}

	s.ctrl = game.NewController(game.Options{
		Store:           store,
		Questions:       s.questions,
		Stats:           sinks,
		Events:          s.hub,
		Audit:           audit,
		Logger:          o.logger,
		DefaultCategory: cfg.QuestionCategory,
	})
	return s
}

func (s *Server) Handler() http.Handler {
	registerValidators()
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	api := router.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/rooms", s.handleListRooms)
	api.POST("/rooms", s.handleCreateRoom)
	api.GET("/rooms/:id", s.handleGetRoom)
	api.POST("/rooms/:id/join", s.handleJoinRoom)
	api.POST("/rooms/:id/leave", s.handleLeaveRoom)
	api.POST("/rooms/:id/ready", s.handleReady)
	api.POST("/rooms/:id/start", s.handleStartGame)
	api.POST("/rooms/:id/answers", s.handleSubmitAnswer)
	api.POST("/rooms/:id/next-round", s.handleNextRound)
	api.GET("/rooms/:id/events", s.handleEvents)
	api.GET("/rooms/:id/qr", s.handleJoinQR)
	api.GET("/questions", s.handleQuestions)
	api.GET("/questions/categories", s.handleQuestionCategories)
	api.GET("/leaderboard", s.handleLeaderboard)
	api.GET("/users/:id/stats", s.handleUserStats)

	router.GET("/ws/rooms/:id", s.handleWebsocket)
	return router
}

func (s *Server) Controller() *game.Controller {
	return s.ctrl
}
