package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"aistats/adapters/postgres"
	"aistats/domain/core"
	"aistats/internal/migration"
	"aistats/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// exportedHistory is the body of GET /api/chat saved to disk
type exportedHistory struct {
	Turns []struct {
		ID        string          `json:"id"`
		Role      string          `json:"role"`
		Content   string          `json:"content"`
		Results   json.RawMessage `json:"results"`
		CreatedAt time.Time       `json:"created_at"`
	} `json:"turns"`
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <database_url> [history_export_dir]")
	}

	databaseURL := os.Args[1]
	ctx := context.Background()

	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}
	log.Printf("[Migrate] Schema version %s applied", runner.Version())

	if len(os.Args) < 3 {
		return
	}

	historyDir := os.Args[2]
	files, err := findHistoryFiles(historyDir)
	if err != nil {
		log.Fatalf("Failed to find history files: %v", err)
	}
	log.Printf("[Migrate] Found %d history exports in %s", len(files), historyDir)

	repo := postgres.NewTurnRepository(db)
	migrated, skipped := 0, 0
	for _, file := range files {
		records, err := loadHistory(file)
		if err != nil {
			log.Printf("[Migrate] Failed to load %s: %v", file, err)
			skipped++
			continue
		}
		if err := repo.RecordTurns(ctx, records); err != nil {
			log.Printf("[Migrate] Failed to import %s: %v", filepath.Base(file), err)
			skipped++
			continue
		}
		migrated++
		log.Printf("[Migrate] Imported %d turns from %s", len(records), filepath.Base(file))
	}

	log.Printf("[Migrate] Import complete: %d imported, %d skipped", migrated, skipped)
}

func findHistoryFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".json") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// sessionIDFor uses the file name when it is a session id, otherwise a
// deterministic id derived from the path so reruns map to the same session.
func sessionIDFor(path string) core.SessionID {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if id, err := core.ParseSessionID(stem); err == nil {
		return id
	}
	return core.SessionID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)).String())
}

func loadHistory(path string) ([]ports.TurnRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var history exportedHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}

	sessionID := sessionIDFor(path)
	records := make([]ports.TurnRecord, 0, len(history.Turns))
	for _, t := range history.Turns {
		id := core.TurnID(t.ID)
		if _, err := uuid.Parse(t.ID); err != nil {
			id = core.TurnID(core.NewID())
		}
		var results []byte
		if len(t.Results) > 0 && string(t.Results) != "null" {
			results = t.Results
		}
		records = append(records, ports.TurnRecord{
			ID:        id,
			SessionID: sessionID,
			Role:      t.Role,
			Content:   t.Content,
			Results:   results,
			CreatedAt: t.CreatedAt,
		})
	}
	return records, nil
}
