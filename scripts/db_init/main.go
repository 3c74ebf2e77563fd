package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	dbfs "github.com/garnizeh/staffboard/db"
	"github.com/garnizeh/staffboard/internal/config"
	"github.com/garnizeh/staffboard/internal/db"
)

func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	seed := flag.Bool("seed", false, "Load the sample data under db/seed after migrating")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	database, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
		os.Exit(1)
	}

	if *seed {
		if err := db.Seed(ctx, database, dbfs.SeedFiles); err != nil {
			fmt.Fprintf(os.Stderr, "Seed error: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("Database initialized successfully.")
}
