package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/meur/tierrank/internal/config"
	"github.com/meur/tierrank/internal/models"
	"github.com/meur/tierrank/internal/ranking"
	"github.com/meur/tierrank/internal/storage"
	"gopkg.in/yaml.v3"
)

// seedFile is the on-disk layout of a seed. Tiers are created in file order,
// so the first listed tier is the best ranked.
type seedFile struct {
	Tiers []models.TierCreate `yaml:"tiers"`
	Items []models.ItemCreate `yaml:"items"`
}

func main() {
	configPath := flag.String("config", "", "YAML config file (default $RANKD_CONFIG)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	seedsDir := flag.String("seeds", "./seeds", "Seeds directory")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.Load(ctx, *configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	store, err := storage.New(cfg.DBPath, storage.WithMaxNameLength(cfg.MaxNameLength))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	files, err := filepath.Glob(filepath.Join(*seedsDir, "*.yaml"))
	if err != nil {
		log.Fatalf("Failed to list seeds: %v", err)
	}
	if len(files) == 0 {
		log.Printf("No seed files in %s, creating default tiers", *seedsDir)
		if err := seed(ctx, store, &seedFile{Tiers: models.DefaultTiers()}); err != nil {
			log.Fatalf("Failed to seed default tiers: %v", err)
		}
	}

	for _, path := range files {
		if err := seedPath(ctx, store, path); err != nil {
			log.Printf("Warning: failed to seed %s: %v", path, err)
		} else {
			log.Printf("Seeded %s", path)
		}
	}

	log.Println("Seeding complete")
}

func seedPath(ctx context.Context, store seedStore, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return err
	}
	if len(sf.Tiers) == 0 {
		sf.Tiers = models.DefaultTiers()
	}
	return seed(ctx, store, &sf)
}

// seedStore is the part of the store the seeder uses.
type seedStore interface {
	GetTier(ctx context.Context, name string) (*models.Tier, error)
	CreateTier(ctx context.Context, name, color string) (*models.Tier, error)
	GetItem(ctx context.Context, name string) (*models.Item, error)
	CreateItem(ctx context.Context, name string, tier *string) (*models.Item, error)
}

// seed creates whatever tiers and items are not present yet, so running it
// twice is harmless.
func seed(ctx context.Context, store seedStore, sf *seedFile) error {
	for _, t := range sf.Tiers {
		_, err := store.GetTier(ctx, t.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, ranking.ErrNotFound) {
			return fmt.Errorf("tier %q: %w", t.Name, err)
		}
		if _, err := store.CreateTier(ctx, t.Name, t.Color); err != nil {
			return fmt.Errorf("tier %q: %w", t.Name, err)
		}
	}
	for _, it := range sf.Items {
		_, err := store.GetItem(ctx, it.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, ranking.ErrNotFound) {
			return fmt.Errorf("item %q: %w", it.Name, err)
		}
		if _, err := store.CreateItem(ctx, it.Name, it.Tier); err != nil {
			return fmt.Errorf("item %q: %w", it.Name, err)
		}
	}
	return nil
}
