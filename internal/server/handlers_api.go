package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"never-have-i-ever/internal/db"
	"never-have-i-ever/internal/game"
	"never-have-i-ever/internal/questions"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

type eventView struct {
	ID        uint      `json:"id"`
	Type      string    `json:"type"`
	UserID    *string   `json:"userId"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

func newEventView(event db.Event) eventView {
	return eventView{
		ID:        event.ID,
		Type:      event.Type,
		UserID:    event.UserID,
		Payload:   event.Payload,
		CreatedAt: event.CreatedAt,
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	status := gin.H{
		"status": "ok",
		"rooms":  s.hub.Rooms(),
	}
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleQuestions(c *gin.Context) {
	count, err := questions.ParseCount(c.Query("count"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	category := strings.TrimSpace(c.Query("category"))
	if category != "" {
		if category, err = game.ValidateCategory(category); err != nil {
			s.writeError(c, err)
			return
		}
	}
	list, err := s.questions.Sample(c.Request.Context(), count, category)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if list == nil {
		list = []game.Question{}
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleQuestionCategories(c *gin.Context) {
	categories, err := s.questions.Categories(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (s *Server) handleEvents(c *gin.Context) {
	if s.events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event log requires a database", "code": "unavailable"})
		return
	}
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	page, perPage := parsePagination(c, 50, 200)
	events, total, err := s.events.List(c.Request.Context(), uri.ID, pageOffset(page, perPage), perPage)
	if err != nil {
		s.writeError(c, err)
		return
	}
	views := make([]eventView, 0, len(events))
	for _, event := range events {
		views = append(views, newEventView(event))
	}
	c.JSON(http.StatusOK, gin.H{
		"events":     views,
		"pagination": buildPagination(page, perPage, total),
	})
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	limit := 10
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 1 || value > 100 {
			s.writeError(c, game.Validationf("limit must be between 1 and 100"))
			return
		}
		limit = value
	}
	entries, err := s.stats.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

func (s *Server) handleUserStats(c *gin.Context) {
	userID, err := game.ValidateUserID(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	user, err := s.stats.User(c.Request.Context(), userID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// handleJoinQR renders a PNG pointing at the room's join page.
func (s *Server) handleJoinQR(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	if _, err := s.ctrl.GetRoom(c.Request.Context(), uri.ID); err != nil {
		s.writeError(c, err)
		return
	}
	target := strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/join/" + uri.ID
	png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
