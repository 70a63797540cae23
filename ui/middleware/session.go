package middleware

import (
	"log"
	"net/http"

	apperrors "aistats/internal/errors"
	"aistats/internal/session"

	"github.com/gin-gonic/gin"
)

// SessionHeader carries the session id in both directions
const SessionHeader = "X-Session-ID"

const sessionKey = "aistats.session"

// EnsureSession resolves the X-Session-ID header to a session, creating one
// when the header is absent or names an unknown id. The id is echoed back.
func EnsureSession(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, created, err := sessions.GetOrCreate(c.GetHeader(SessionHeader))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
				"code":  apperrors.CodeInvalidInput,
			})
			return
		}
		if created {
			log.Printf("[EnsureSession] Created session %s", sess.ID)
		}
		c.Set(sessionKey, sess)
		c.Header(SessionHeader, sess.ID.String())
		c.Next()
	}
}

// Session returns the session attached by EnsureSession
func Session(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}
