// seed loads verses into the SQLite corpus from a JSON file.
//
// The input file is a JSON array of verse records:
//
//	[{"verse_id": "psalm-46-10", "text": "...", "source": "Psalm 46:10",
//	  "mood_tags": ["peace", "comfort"]}, ...]
//
// Usage:
//
//	go run ./scripts/seed -file verses.json
//
// Environment variables:
//
//	SQLITE_PATH - corpus database path (default ./data/verses.db)
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/verse-companion-api/internal/config"
	"github.com/verse-companion-api/internal/models"
	"github.com/verse-companion-api/internal/repository/sqlite"
)

func main() {
	file := flag.String("file", "verses.json", "JSON file with verse records")
	flag.Parse()

	godotenv.Load()
	cfg := config.GetConfig()

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *file, err)
	}

	var verses []models.VerseRecord
	if err := json.Unmarshal(data, &verses); err != nil {
		log.Fatalf("Failed to parse %s: %v", *file, err)
	}

	repo, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to open corpus: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	for _, v := range verses {
		if v.VerseID == "" || v.Text == "" {
			log.Printf("Skipping record with missing verse_id or text: %+v", v)
			continue
		}
		if err := repo.Insert(ctx, v); err != nil {
			log.Fatalf("Failed to insert verse %s: %v", v.VerseID, err)
		}
	}

	log.Printf("Seeded %d verses into %s", len(verses), cfg.SQLitePath)
}
