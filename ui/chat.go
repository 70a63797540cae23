package ui

import (
	"encoding/json"
	"net/http"
	"strconv"

	"aistats/adapters/render"
	apperrors "aistats/internal/errors"
	"aistats/ports"
	"aistats/ui/middleware"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

func (s *Server) handleChat(c *gin.Context) {
	if s.chat == nil || !s.chat.Enabled() {
		s.respondError(c, apperrors.New(apperrors.CodeModelDisabled, "AI assistant is not configured (set OPENAI_API_KEY)"))
		return
	}
	var req chatRequest
	if !s.bind(c, &req) {
		return
	}

	sess := middleware.Session(c)
	outcome, err := s.chat.Converse(c.Request.Context(), sess, req.Message)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reply":     outcome.Reply,
		"results":   outcome.Results,
		"outcome":   outcome.Outcome,
		"sentences": outcome.Sentences,
		"html":      render.NarrationHTML(outcome.Sentences),
	})
}

func (s *Server) handleHistory(c *gin.Context) {
	history := middleware.Session(c).History()
	c.JSON(http.StatusOK, gin.H{
		"turns": history,
		"count": len(history),
	})
}

func (s *Server) handleClearHistory(c *gin.Context) {
	middleware.Session(c).ClearHistory()
	c.Status(http.StatusNoContent)
}

// handleTurnLog reads persisted turns, which outlive the in-memory history
func (s *Server) handleTurnLog(c *gin.Context) {
	if s.recorder == nil {
		s.respondError(c, apperrors.NotFound("turn log"))
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 500 {
		limit = 50
	}

	sess := middleware.Session(c)
	records, err := s.recorder.ListTurns(c.Request.Context(), sess.ID, limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	type loggedTurn struct {
		ports.TurnRecord
		Results json.RawMessage `json:"results,omitempty"`
	}
	turns := make([]loggedTurn, 0, len(records))
	for _, r := range records {
		turns = append(turns, loggedTurn{TurnRecord: r, Results: r.Results})
	}
	c.JSON(http.StatusOK, gin.H{
		"turns": turns,
		"count": len(turns),
	})
}
