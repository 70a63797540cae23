package container

import (
	"context"
	"fmt"
	"log"

	"aistats/adapters/excel"
	"aistats/adapters/labelfile"
	"aistats/adapters/llm"
	"aistats/adapters/postgres"
	"aistats/ai"
	"aistats/app"
	"aistats/domain/dataset"
	"aistats/internal"
	"aistats/internal/analysis"
	"aistats/internal/config"
	"aistats/internal/errors"
	"aistats/internal/metrics"
	"aistats/internal/migration"
	"aistats/internal/session"
	"aistats/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB      *sqlx.DB
	Metrics *metrics.Metrics

	// Conversation
	Prompts  *ai.PromptManager
	Model    ports.ChatModel // nil when no API key is configured
	Recorder ports.TurnRecorder
	Chat     *app.ConversationService

	// Sessions
	Sessions *session.Manager
}

// New creates a container with everything that does not need a database
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config:   cfg,
		Logger:   internal.DefaultLogger,
		Metrics:  metrics.New(),
		Prompts:  ai.NewPromptManager(cfg.AI.PromptsDir),
		Sessions: session.NewManager(EngineOptions(cfg)...),
	}

	if cfg.AI.Enabled() {
		model, err := llm.NewOpenAIClient(llm.Config{
			Model:       cfg.AI.Model,
			APIKey:      cfg.AI.OpenAIKey,
			BaseURL:     cfg.AI.BaseURL,
			Temperature: cfg.AI.Temperature,
			MaxTokens:   cfg.AI.MaxTokens,
			Timeout:     cfg.AI.Timeout,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create model client")
		}
		c.Model = model
		log.Printf("[Container] AI assistant enabled (model=%s)", cfg.AI.Model)
	} else {
		log.Printf("[Container] OPENAI_API_KEY not set, AI assistant disabled")
	}

	c.wireChat()
	return c, nil
}

// EngineOptions maps analysis settings onto engine options
func EngineOptions(cfg *config.Config) []analysis.Option {
	return []analysis.Option{
		analysis.WithCategoricalThreshold(cfg.Analysis.CategoricalThreshold),
		analysis.WithCIMethod(analysis.CIMethod(cfg.Analysis.CIMethod)),
		analysis.WithLogger(internal.DefaultLogger),
	}
}

func (c *Container) wireChat() {
	opts := []app.ServiceOption{
		app.WithMetrics(c.Metrics),
		app.WithModelTimeout(c.Config.AI.Timeout),
	}
	if c.Recorder != nil {
		opts = append(opts, app.WithTurnRecorder(c.Recorder))
	}
	c.Chat = app.NewConversationService(c.Model, c.Prompts, app.NewToolRegistry(), opts...)
}

// InitWithDatabase runs migrations and enables the turn log
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	c.DB = db

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		return errors.Wrap(err, "database migration failed")
	}

	c.Recorder = postgres.NewTurnRepository(db)
	c.wireChat()
	log.Printf("[Container] Turn log enabled")
	return nil
}

// Connect opens and pings the configured database
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to connect to database"))
	}
	return db, nil
}

// Preload reads DATA_FILE and LABELS_FILE once and installs them into every new session
func (c *Container) Preload() error {
	if c.Config.Data.DataFile == "" {
		if c.Config.Data.LabelsFile != "" {
			log.Printf("[Container] LABELS_FILE ignored without DATA_FILE")
		}
		return nil
	}

	reader := excel.NewDataReader(c.Config.Data.DataFile)
	ds, err := reader.ReadDataset()
	c.Metrics.CountDatasetLoad(reader.Format(), err == nil)
	if err != nil {
		return errors.Wrapf(err, "failed to load %s", c.Config.Data.DataFile)
	}

	var labels *dataset.LabelSet
	if c.Config.Data.LabelsFile != "" {
		labels, err = labelfile.Load(c.Config.Data.LabelsFile)
		if err != nil {
			return err
		}
	}

	c.Sessions.OnCreate(func(s *session.Session) {
		s.ReplaceDataset(ds)
		if labels != nil {
			s.Store().ImportLabels(labels)
		}
	})
	log.Printf("[Container] Preloaded %s (%d rows, %d columns)", ds.Name, ds.RowCount(), ds.ColumnCount())
	return nil
}

// Shutdown releases resources
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
