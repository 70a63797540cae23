package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aistats/internal/config"
	"aistats/internal/container"
	"aistats/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	if appConfig.Database.Enabled() {
		db, err := container.Connect(ctx, appConfig.Database.URL)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		if err := appContainer.InitWithDatabase(ctx, db); err != nil {
			log.Fatalf("Failed to initialize container: %v", err)
		}
	} else {
		log.Println("DATABASE_URL not set, conversation turns are kept in memory only")
	}

	if err := appContainer.Preload(); err != nil {
		log.Fatalf("Failed to preload data: %v", err)
	}

	server := ui.NewServer(ui.Deps{
		Sessions: appContainer.Sessions,
		Chat:     appContainer.Chat,
		Recorder: appContainer.Recorder,
		Metrics:  appContainer.Metrics,
		Logger:   appContainer.Logger,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("🚀 Starting AIStats server on port %s", appConfig.Server.Port)
		return server.Start(":" + appConfig.Server.Port)
	})

	var debugServer *http.Server
	if appConfig.Profiling.Enabled {
		debugServer = &http.Server{
			Addr:              ":" + appConfig.Profiling.Port,
			Handler:           ui.NewDebugRouter(appContainer.Metrics),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			log.Printf("🚀 Debug listener starting on :%s (/debug/pprof, /metrics)", appConfig.Profiling.Port)
			if err := debugServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if debugServer != nil {
			_ = debugServer.Shutdown(shutdownCtx)
		}
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
	log.Println("Server stopped")
}
