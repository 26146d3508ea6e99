package server

import (
	"net/http"

	"never-have-i-ever/internal/game"

	"github.com/gin-gonic/gin"
)

type roomURI struct {
	ID string `uri:"id" binding:"required"`
}

type createRoomRequest struct {
	Name       string `json:"name" binding:"required,roomname"`
	Visibility string `json:"visibility" binding:"omitempty,oneof=public private"`
	AccessCode string `json:"accessCode"`
	HostID     string `json:"hostId" binding:"required,userid"`
	HostName   string `json:"hostName" binding:"omitempty,playername"`
	MaxPlayers int    `json:"maxPlayers" binding:"required,min=2,max=30"`
	MaxRounds  int    `json:"maxRounds" binding:"required,min=1,max=20"`
}

type listRoomsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=waiting playing completed"`
}

type joinRequest struct {
	UserID     string `json:"userId" binding:"required,userid"`
	Name       string `json:"name" binding:"omitempty,playername"`
	AccessCode string `json:"accessCode"`
}

type userRequest struct {
	UserID string `json:"userId" binding:"required,userid"`
}

type readyRequest struct {
	UserID string `json:"userId" binding:"required,userid"`
	Ready  *bool  `json:"ready" binding:"required"`
}

type startRequest struct {
	UserID   string `json:"userId" binding:"required,userid"`
	Category string `json:"category" binding:"omitempty,category"`
}

type answerRequest struct {
	UserID string `json:"userId" binding:"required,userid"`
	Answer *bool  `json:"answer" binding:"required"`
}

var userMessages = bindMessages{
	"UserID": {
		"required": "userId is required",
		"userid":   "userId must be 64 characters or fewer",
	},
}

var createRoomMessages = bindMessages{
	"Name": {
		"required": "room name is required",
		"roomname": "room name must be 1 to 40 supported characters",
	},
	"Visibility": {"oneof": "visibility must be public or private"},
	"HostID": {
		"required": "hostId is required",
		"userid":   "hostId must be 64 characters or fewer",
	},
	"HostName":   {"playername": "host name must be 20 supported characters or fewer"},
	"MaxPlayers": {"required": "maxPlayers is required", "min": "maxPlayers must be between 2 and 30", "max": "maxPlayers must be between 2 and 30"},
	"MaxRounds":  {"required": "maxRounds is required", "min": "maxRounds must be between 1 and 20", "max": "maxRounds must be between 1 and 20"},
}

var joinMessages = bindMessages{
	"UserID": userMessages["UserID"],
	"Name":   {"playername": "name must be 20 supported characters or fewer"},
}

var readyMessages = bindMessages{
	"UserID": userMessages["UserID"],
	"Ready":  {"required": "ready is required"},
}

var startMessages = bindMessages{
	"UserID":   userMessages["UserID"],
	"Category": {"category": "category contains unsupported characters"},
}

var answerMessages = bindMessages{
	"UserID": userMessages["UserID"],
	"Answer": {"required": "please provide userId and answer"},
}

func (s *Server) handleCreateRoom(c *gin.Context) {
	var req createRoomRequest
	if !bindJSON(c, &req, createRoomMessages, "invalid room") {
		return
	}
	room, err := s.ctrl.CreateRoom(c.Request.Context(), game.CreateRoomParams{
		Name:       req.Name,
		Visibility: req.Visibility,
		AccessCode: req.AccessCode,
		HostID:     req.HostID,
		HostName:   req.HostName,
		MaxPlayers: req.MaxPlayers,
		MaxRounds:  req.MaxRounds,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snapshotRoom(room))
}

func (s *Server) handleListRooms(c *gin.Context) {
	var query listRoomsQuery
	if !bindQuery(c, &query, bindMessages{"Status": {"oneof": "status must be waiting, playing or completed"}}, "") {
		return
	}
	page, perPage := parsePagination(c, 20, 100)
	rooms, total, err := s.ctrl.ListRooms(c.Request.Context(), query.Status, pageOffset(page, perPage), perPage)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rooms":      rooms,
		"pagination": buildPagination(page, perPage, total),
	})
}

func (s *Server) handleGetRoom(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	room, err := s.ctrl.GetRoom(c.Request.Context(), uri.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshotRoom(room))
}

func (s *Server) handleJoinRoom(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	var req joinRequest
	if !bindJSON(c, &req, joinMessages, "invalid join") {
		return
	}
	room, err := s.ctrl.JoinRoom(c.Request.Context(), uri.ID, req.UserID, req.Name, req.AccessCode)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshotRoom(room))
}

func (s *Server) handleLeaveRoom(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	var req userRequest
	if !bindJSON(c, &req, userMessages, "invalid leave") {
		return
	}
	result, err := s.ctrl.LeaveRoom(c.Request.Context(), uri.ID, req.UserID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roomId": uri.ID, "closed": result.Closed})
}

func (s *Server) handleReady(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	var req readyRequest
	if !bindJSON(c, &req, readyMessages, "invalid ready") {
		return
	}
	room, err := s.ctrl.SetReady(c.Request.Context(), uri.ID, req.UserID, *req.Ready)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshotRoom(room))
}

func (s *Server) handleStartGame(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	var req startRequest
	if !bindJSON(c, &req, startMessages, "invalid start") {
		return
	}
	room, err := s.ctrl.Start(c.Request.Context(), uri.ID, req.UserID, req.Category)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshotRoom(room))
}

func (s *Server) handleSubmitAnswer(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	var req answerRequest
	if !bindJSON(c, &req, answerMessages, "please provide userId and answer") {
		return
	}
	result, err := s.ctrl.SubmitAnswer(c.Request.Context(), uri.ID, req.UserID, *req.Answer)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":            "answer submitted",
		"allPlayersAnswered": result.AllPlayersAnswered,
	})
}

func (s *Server) handleNextRound(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	var req userRequest
	if !bindJSON(c, &req, userMessages, "please provide userId") {
		return
	}
	result, err := s.ctrl.AdvanceRound(c.Request.Context(), uri.ID, req.UserID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	message := "advanced to next round"
	if result.IsGameOver {
		message = "game completed"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      message,
		"currentRound": result.CurrentRound,
		"isGameOver":   result.IsGameOver,
		"winners":      result.Winners,
	})
}
