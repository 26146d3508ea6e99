package server

import (
	"errors"
	"net/http"
	"time"

	"never-have-i-ever/internal/game"

	"github.com/gin-gonic/gin"
)

func statusFor(kind game.Kind) int {
	switch kind {
	case game.KindValidation, game.KindConflict, game.KindNotEnoughPlayers:
		return http.StatusBadRequest
	case game.KindNotFound:
		return http.StatusNotFound
	case game.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with a single human readable message. Infrastructure
// failures are logged and hidden behind a generic message.
func (s *Server) writeError(c *gin.Context, err error) {
	kind := game.KindOf(err)
	if kind == game.KindInternal {
		s.logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "room_id", c.Param("id"), "error", err)
	}
	status := statusFor(kind)
	if errors.Is(err, game.ErrStaleRoom) {
		status = http.StatusConflict
	}
	notice := game.NoticeFor(err)
	c.JSON(status, gin.H{"error": notice.Message, "code": notice.Code})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
		}
		switch {
		case status >= http.StatusInternalServerError:
			s.logger.Error("http request", attrs...)
		case status >= http.StatusBadRequest:
			s.logger.Warn("http request", attrs...)
		default:
			s.logger.Debug("http request", attrs...)
		}
	}
}
