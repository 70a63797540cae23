package ui

import (
	"errors"
	"net/http"

	"aistats/domain/core"
	apperrors "aistats/internal/errors"

	"github.com/gin-gonic/gin"
)

// respondError writes {"error": ..., "code": ...} with the mapped status
func (s *Server) respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	body := gin.H{
		"error": err.Error(),
		"code":  apperrors.GetCode(err),
	}
	var notFound *core.VariableNotFoundError
	if errors.As(err, &notFound) {
		body["variable"] = notFound.Name
	}
	c.JSON(status, body)
}

func badRequest(message string) error {
	return apperrors.InvalidInput(message)
}
