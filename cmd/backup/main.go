// Command backup dumps the database to a JSON file or restores one.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stackit/internal/backup"
	"stackit/internal/config"
	"stackit/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/backup <dump [file]|restore <file>>")
}

func run() error {
	dir := flag.String("dir", "backups", "Directory for dumps when no file is given")
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: true})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx := context.Background()
	switch strings.ToLower(flag.Arg(0)) {
	case "dump", "backup":
		path := flag.Arg(1)
		if path == "" {
			if err := os.MkdirAll(*dir, 0o755); err != nil {
				return err
			}
			stamp := strings.NewReplacer(":", "-", ".", "-").Replace(time.Now().UTC().Format(time.RFC3339Nano))
			path = filepath.Join(*dir, "backup-"+stamp+".json")
		}
		snap, err := backup.Dump(ctx, db, cfg.DBName)
		if err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if err := backup.Write(f, snap); err != nil {
			return fmt.Errorf("write backup: %w", err)
		}
		log.Printf("✅ Backup saved to %s", path)
		logStats(snap.Stats)
	case "restore":
		if flag.NArg() < 2 {
			return usage()
		}
		f, err := os.Open(flag.Arg(1))
		if err != nil {
			return fmt.Errorf("open backup: %w", err)
		}
		defer func() { _ = f.Close() }()
		snap, err := backup.Read(f)
		if err != nil {
			return err
		}
		stats, err := backup.Restore(ctx, db, snap)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		log.Println("🎉 Database restored successfully!")
		logStats(stats)
	default:
		return usage()
	}
	return nil
}

func logStats(s backup.Stats) {
	log.Printf("   - Users: %d", s.Users)
	log.Printf("   - Questions: %d", s.Questions)
	log.Printf("   - Answers: %d", s.Answers)
	log.Printf("   - Notifications: %d", s.Notifications)
}
