package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/kabbani-home/inventory-api/internal/catalog"
	"github.com/kabbani-home/inventory-api/internal/config"
	"github.com/kabbani-home/inventory-api/internal/importer"
	"github.com/kabbani-home/inventory-api/internal/postgres"
)

func main() {
	_ = godotenv.Load()

	file := flag.String("file", "", "path to the warehouse XLSX workbook")
	seed := flag.Bool("seed", false, "insert sample products instead of importing a workbook")
	flag.Parse()

	if *file == "" && !*seed {
		log.Fatal("either -file or -seed is required")
	}

	cfg := config.Load()
	ctx := context.Background()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	repo := &catalog.Repo{DB: db}

	if *seed {
		if err := importer.Seed(ctx, db, repo); err != nil {
			log.Fatalf("seed: %v", err)
		}
		log.Printf("seeded %d sample products", len(importer.SampleProducts()))
		return
	}

	imported, skipped, err := importer.ImportFile(ctx, db, repo, *file)
	if err != nil {
		log.Fatalf("import: %v", err)
	}
	log.Printf("import done: %d imported, %d skipped", imported, skipped)
}
