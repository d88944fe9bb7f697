package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"

	"catalogcrawler/config"
	"catalogcrawler/importer"
	"catalogcrawler/storage"
)

func init() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}

func main() {
	analyze := flag.Bool("analyze", false, "Print per-field gap counts of the snapshot and exit without importing.")
	fixImages := flag.Bool("fix-images", false, "Rewrite relative image URLs of already-stored products and exit.")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error, fatal, panic).")
	flag.Parse()

	parsedLevel, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	log.SetLevel(parsedLevel)

	cfg := config.Load()
	snapshotPath := filepath.Join(cfg.OutputDir, "all-products.json")
	ctx := context.Background()

	if *analyze {
		snapshot, err := importer.LoadSnapshot(snapshotPath)
		if err != nil {
			log.Errorf("Error reading snapshot: %v", err)
			os.Exit(1)
		}
		gaps := importer.FieldGaps(snapshot.Data)
		fields := make([]string, 0, len(gaps))
		for f := range gaps {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		log.Infof("Snapshot has %d products", len(snapshot.Data))
		for _, f := range fields {
			log.Infof("  %s: %d missing", f, gaps[f])
		}
		return
	}

	client, err := storage.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Errorf("Error connecting to MongoDB: %v", err)
		os.Exit(1)
	}
	defer client.Disconnect(ctx)

	repo := storage.NewProductRepo(client, cfg.MongoDatabase)

	if *fixImages {
		updated, err := repo.UpdateImageURLs(ctx, cfg.BaseURL+"/")
		if err != nil {
			log.Errorf("Error updating image URLs: %v", err)
			os.Exit(1)
		}
		log.Infof("Updated %d products with full image URLs", updated)
		return
	}

	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Errorf("Error creating indexes: %v", err)
		os.Exit(1)
	}

	report, err := importer.New(repo).Import(ctx, snapshotPath, cfg.BaseURL+"/")
	if err != nil {
		log.Errorf("Error importing products: %v", err)
		os.Exit(1)
	}

	log.Infof("Import finished: %d submitted, %d inserted, %d failed",
		report.Submitted, report.Inserted, len(report.Failures))
}
