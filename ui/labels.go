package ui

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"aistats/adapters/labelfile"
	"aistats/domain/core"
	"aistats/internal/session"
	"aistats/ui/middleware"

	"github.com/gin-gonic/gin"
)

// labelsRequest updates one variable. Omitted fields are left unchanged;
// an empty value_labels object removes the value labels.
type labelsRequest struct {
	Label       *string            `json:"label"`
	ValueLabels *map[string]string `json:"value_labels"`
}

// requireColumn checks that a dataset is loaded and holds the variable
func requireColumn(sess *session.Session, variable string) error {
	ds := sess.Store().CurrentDataset()
	if ds == nil {
		return core.ErrNoData
	}
	if !ds.HasColumn(variable) {
		return core.NewVariableNotFoundError(variable)
	}
	return nil
}

func variableLabels(sess *session.Session, variable string) gin.H {
	labels := sess.Store().Labels()
	return gin.H{
		"variable":     variable,
		"label":        labels.VariableLabels[variable],
		"value_labels": labels.ValueLabelsFor(variable),
	}
}

func (s *Server) handleListLabels(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.Session(c).Store().Labels())
}

func (s *Server) handleGetLabels(c *gin.Context) {
	sess := middleware.Session(c)
	variable := c.Param("variable")
	if err := requireColumn(sess, variable); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, variableLabels(sess, variable))
}

func (s *Server) handlePutLabels(c *gin.Context) {
	sess := middleware.Session(c)
	variable := c.Param("variable")
	if err := requireColumn(sess, variable); err != nil {
		s.respondError(c, err)
		return
	}

	var req labelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, badRequest(fmt.Sprintf("invalid labels body: %v", err)))
		return
	}
	if req.Label != nil {
		sess.Store().SetVariableLabel(variable, strings.TrimSpace(*req.Label))
	}
	if req.ValueLabels != nil {
		sess.Store().SetValueLabels(variable, *req.ValueLabels)
	}
	c.JSON(http.StatusOK, variableLabels(sess, variable))
}

func (s *Server) handleDeleteLabels(c *gin.Context) {
	middleware.Session(c).Store().ClearLabels(c.Param("variable"))
	c.Status(http.StatusNoContent)
}

func (s *Server) handleExportLabels(c *gin.Context) {
	format := labelfile.FormatYAML
	if strings.EqualFold(c.Query("format"), labelfile.FormatJSON) {
		format = labelfile.FormatJSON
	}

	var buf bytes.Buffer
	if err := labelfile.Encode(&buf, middleware.Session(c).Store().Labels(), format); err != nil {
		s.respondError(c, err)
		return
	}
	contentType := "application/yaml"
	if format == labelfile.FormatJSON {
		contentType = "application/json"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"labels.%s\"", format))
	c.Data(http.StatusOK, contentType+"; charset=utf-8", buf.Bytes())
}

// handleImportLabels accepts a multipart "file" or a raw YAML/JSON body
func (s *Server) handleImportLabels(c *gin.Context) {
	var (
		src    io.Reader
		format string
	)
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			s.respondError(c, err)
			return
		}
		defer f.Close()
		src, format = f, labelfile.FormatFor(file.Filename)
	} else {
		src = c.Request.Body
		format = labelfile.FormatYAML
		if strings.Contains(c.ContentType(), "json") {
			format = labelfile.FormatJSON
		}
	}

	labels, err := labelfile.Decode(src, format)
	if err != nil {
		s.respondError(c, err)
		return
	}
	sess := middleware.Session(c)
	sess.Store().ImportLabels(labels)
	c.JSON(http.StatusOK, sess.Store().Labels())
}
