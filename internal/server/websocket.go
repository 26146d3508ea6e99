package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"never-have-i-ever/internal/fanout"
	"never-have-i-ever/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 4096
)

const (
	clientSubmitAnswer = "submit-answer"
	clientNextRound    = "next-round"
	clientStartGame    = "start-game"
	clientSetReady     = "set-ready"
	clientLeaveRoom    = "leave-room"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type clientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type clientPayload struct {
	Answer   *bool  `json:"answer"`
	Ready    *bool  `json:"ready"`
	Category string `json:"category"`
}

func (s *Server) handleWebsocket(c *gin.Context) {
	roomID := c.Param("id")
	userID, err := game.ValidateUserID(c.Query("userId"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if _, err := s.ctrl.GetRoom(c.Request.Context(), roomID); err != nil {
		s.writeError(c, err)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", "room_id", roomID, "error", err)
		return
	}
	s.logger.Info("ws connected", "room_id", roomID, "user_id", userID, "remote", c.Request.RemoteAddr)

	session := fanout.NewSession(roomID, userID, fanout.DefaultQueueSize)
	s.hub.Subscribe(session)
	if room, err := s.ctrl.GetRoom(context.Background(), roomID); err == nil {
		s.hub.Send(session, game.RoomData{Room: snapshotRoom(room)})
	}

	go s.writePump(conn, session)
	go s.readPump(conn, session)
}

func (s *Server) readPump(conn *websocket.Conn, session *fanout.Session) {
	defer func() {
		s.hub.Unsubscribe(session)
		_ = conn.Close()
	}()
	conn.SetReadLimit(wsMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("ws read failed", "room_id", session.RoomID, "user_id", session.UserID, "error", err)
			}
			s.logger.Info("ws disconnected", "room_id", session.RoomID, "user_id", session.UserID)
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.hub.Send(session, game.ErrorNotice{Message: "malformed message", Code: "validation"})
			continue
		}
		if err := s.dispatch(session, msg); err != nil {
			s.hub.Send(session, game.NoticeFor(err))
		}
	}
}

// dispatch runs one client command on behalf of the session's user. Failures
// go back to the originating session only.
func (s *Server) dispatch(session *fanout.Session, msg clientMessage) error {
	var payload clientPayload
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return game.Validationf("malformed %s payload", msg.Event)
		}
	}
	ctx := context.Background()
	switch msg.Event {
	case clientSubmitAnswer:
		if payload.Answer == nil {
			return game.Validationf("please provide userId and answer")
		}
		_, err := s.ctrl.SubmitAnswer(ctx, session.RoomID, session.UserID, *payload.Answer)
		return err
	case clientNextRound:
		_, err := s.ctrl.AdvanceRound(ctx, session.RoomID, session.UserID)
		return err
	case clientStartGame:
		_, err := s.ctrl.Start(ctx, session.RoomID, session.UserID, payload.Category)
		return err
	case clientSetReady:
		ready := true
		if payload.Ready != nil {
			ready = *payload.Ready
		}
		_, err := s.ctrl.SetReady(ctx, session.RoomID, session.UserID, ready)
		return err
	case clientLeaveRoom:
		_, err := s.ctrl.LeaveRoom(ctx, session.RoomID, session.UserID)
		return err
	default:
		return game.Validationf("unknown event %q", msg.Event)
	}
}

func (s *Server) writePump(conn *websocket.Conn, session *fanout.Session) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case data, ok := <-session.Queue():
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.hub.Unsubscribe(session)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.hub.Unsubscribe(session)
				return
			}
		}
	}
}
