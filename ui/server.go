package ui

import (
	"context"
	"net/http"
	"sync"
	"time"

	"aistats/app"
	"aistats/internal"
	"aistats/internal/metrics"
	"aistats/internal/session"
	"aistats/ports"
	"aistats/ui/middleware"

	"github.com/gin-gonic/gin"
)

// maxUploadBytes bounds multipart dataset and label uploads
const maxUploadBytes = 32 << 20

// Deps are the collaborators the API serves
type Deps struct {
	Sessions *session.Manager
	Chat     *app.ConversationService
	Recorder ports.TurnRecorder // optional turn log
	Metrics  *metrics.Metrics   // optional
	Logger   *internal.Logger
}

// Server is the JSON HTTP API
type Server struct {
	router   *gin.Engine
	sessions *session.Manager
	chat     *app.ConversationService
	recorder ports.TurnRecorder
	metrics  *metrics.Metrics
	logger   *internal.Logger

	mu   sync.Mutex
	http *http.Server
}

// NewServer builds the router with every route registered
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:   gin.New(),
		sessions: deps.Sessions,
		chat:     deps.Chat,
		recorder: deps.Recorder,
		metrics:  deps.Metrics,
		logger:   logger.With("API"),
	}
	s.router.MaxMultipartMemory = maxUploadBytes
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler exposes the router, e.g. for httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.POST("/sessions", s.handleCreateSession)

	scoped := api.Group("", middleware.EnsureSession(s.sessions))
	scoped.POST("/dataset", s.handleUploadDataset)
	scoped.GET("/dataset", s.handleGetDataset)
	scoped.DELETE("/dataset", s.handleClearDataset)

	scoped.GET("/labels", s.handleListLabels)
	scoped.GET("/labels/export", s.handleExportLabels)
	scoped.POST("/labels/import", s.handleImportLabels)
	scoped.GET("/labels/:variable", s.handleGetLabels)
	scoped.PUT("/labels/:variable", s.handlePutLabels)
	scoped.DELETE("/labels/:variable", s.handleDeleteLabels)

	scoped.POST("/stats/descriptive", s.handleDescriptive)
	scoped.POST("/stats/ttest", s.handleTTest)
	scoped.POST("/stats/correlation", s.handleCorrelation)
	scoped.POST("/stats/grouped", s.handleGrouped)
	scoped.POST("/stats/ttest/one-sample", s.handleOneSampleT)
	scoped.POST("/stats/ttest/paired", s.handlePairedT)
	scoped.POST("/stats/anova", s.handleANOVA)
	scoped.POST("/stats/regression", s.handleRegression)
	scoped.POST("/stats/reliability", s.handleReliability)
	scoped.POST("/stats/mediation", s.handleMediation)
	scoped.GET("/stats/last", s.handleLastResult)

	scoped.POST("/chat", s.handleChat)
	scoped.GET("/chat", s.handleHistory)
	scoped.DELETE("/chat", s.handleClearHistory)
	scoped.GET("/chat/log", s.handleTurnLog)
}

// Start serves on addr until Shutdown
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	s.logger.Info("listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"sessions":    s.sessions.Len(),
		"ai_enabled":  s.chat != nil && s.chat.Enabled(),
		"turn_log":    s.recorder != nil,
		"server_time": time.Now().UTC(),
	})
}

func (s *Server) handleCreateSession(c *gin.Context) {
	sess := s.sessions.Create()
	c.Header(middleware.SessionHeader, sess.ID.String())
	c.JSON(http.StatusCreated, gin.H{
		"session_id": sess.ID,
		"created_at": sess.CreatedAt,
	})
}
