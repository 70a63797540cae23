package ui

import (
	"fmt"
	"net/http"

	apperrors "aistats/internal/errors"
	"aistats/ui/middleware"

	"github.com/gin-gonic/gin"
)

type variablesRequest struct {
	Variables []string `json:"variables" binding:"required,min=1"`
}

type ttestRequest struct {
	DataVar  string `json:"data_var" binding:"required"`
	GroupVar string `json:"group_var" binding:"required"`
}

type groupedRequest struct {
	GroupVar  string   `json:"group_var" binding:"required"`
	Variables []string `json:"variables" binding:"required,min=1"`
	Dimension bool     `json:"dimension"`
}

type oneSampleRequest struct {
	Variable  string   `json:"variable" binding:"required"`
	TestValue *float64 `json:"test_value" binding:"required"`
}

type pairedRequest struct {
	Variable1 string `json:"variable1" binding:"required"`
	Variable2 string `json:"variable2" binding:"required"`
}

type regressionRequest struct {
	Outcome    string   `json:"outcome" binding:"required"`
	Predictors []string `json:"predictors" binding:"required,min=1"`
}

type reliabilityRequest struct {
	Items []string `json:"items" binding:"required,min=2"`
}

type mediationRequest struct {
	X string `json:"x_var" binding:"required"`
	M string `json:"m_var" binding:"required"`
	Y string `json:"y_var" binding:"required"`
}

func (s *Server) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		s.respondError(c, badRequest(fmt.Sprintf("invalid request body: %v", err)))
		return false
	}
	return true
}

func (s *Server) handleDescriptive(c *gin.Context) {
	var req variablesRequest
	if !s.bind(c, &req) {
		return
	}
	result, err := middleware.Session(c).Engine().Descriptive(req.Variables)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleTTest(c *gin.Context) {
	var req ttestRequest
	if !s.bind(c, &req) {
		return
	}
	result, err := middleware.Session(c).Engine().Comparison(req.DataVar, req.GroupVar)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleCorrelation(c *gin.Context) {
	var req variablesRequest
	if !s.bind(c, &req) {
		return
	}
	result, err := middleware.Session(c).Engine().Correlation(req.Variables)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) respondResult(c *gin.Context, result interface{}, err error) {
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleGrouped(c *gin.Context) {
	var req groupedRequest
	if !s.bind(c, &req) {
		return
	}
	result, err := middleware.Session(c).Engine().GroupedDescriptive(req.GroupVar, req.Variables, req.Dimension)
	s.respondResult(c, result, err)
}

func (s *Server) handleOneSampleT(c *gin.Context) {
	var req oneSampleRequest
	if !s.bind(c, &req) {
		return
	}
	result, err := middleware.Session(c).Engine().OneSampleT(req.Variable, *req.TestValue)
	s.respondResult(c, result, err)
}

func (s *Server) handlePairedT(c *gin.Context) {
	var req pairedRequest
	if !s.bind(c, &req) {
		return
	}
	result, err := middleware.Session(c).Engine().PairedT(req.Variable1, req.Variable2)
	s.respondResult(c, result, err)
}

func (s *Server) handleANOVA(c *gin.Context) {
	var req ttestRequest
	if !s.bind(c, &req) {
		return
	}
	result, err := middleware.Session(c).Engine().ANOVA(req.DataVar, req.GroupVar)
	s.respondResult(c, result, err)
}

func (s *Server) handleRegression(c *gin.Context) {
	var req regressionRequest
	if !s.bind(c, &req) {
		return
	}
	result, err := middleware.Session(c).Engine().Regression(req.Outcome, req.Predictors)
	s.respondResult(c, result, err)
}

func (s *Server) handleReliability(c *gin.Context) {
	var req reliabilityRequest
	if !s.bind(c, &req) {
		return
	}
	result, err := middleware.Session(c).Engine().Reliability(req.Items)
	s.respondResult(c, result, err)
}

func (s *Server) handleMediation(c *gin.Context) {
	var req mediationRequest
	if !s.bind(c, &req) {
		return
	}
	result, err := middleware.Session(c).Engine().Mediation(req.X, req.M, req.Y)
	s.respondResult(c, result, err)
}

func (s *Server) handleLastResult(c *gin.Context) {
	last := middleware.Session(c).Engine().LastResult()
	if last == nil {
		s.respondError(c, apperrors.NotFound("analysis result"))
		return
	}
	c.JSON(http.StatusOK, last)
}
