package main

import (
	"flag"
	"os"

	log "github.com/sirupsen/logrus"

	"catalogcrawler/config"
	"catalogcrawler/exporter"
	"catalogcrawler/scraper"
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
	simple := flag.Bool("simple", false, "Use the browserless fallback scraper instead of a full browser.")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error, fatal, panic).")
	flag.Parse()

	parsedLevel, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	log.SetLevel(parsedLevel)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Info("Category scraper starting...")

	var result scraper.CategoryResult
	filename := "categories.json"

	if *simple {
		result = scraper.NewFallbackCategoryScraper(cfg).Extract()
		filename = "categories-simple.json"
	} else {
		session, err := scraper.NewSession(cfg)
		if err != nil {
			log.Fatalf("Failed to start browser: %v", err)
		}
		defer session.Close()

		result = scraper.NewCategoryScraper(cfg, session).Extract()
	}

	if err := exporter.SaveJSON(result, filename, cfg.OutputDir); err != nil {
		log.Fatalf("Failed to save categories: %v", err)
	}

	log.Infof("Success: %v", result.Success)
	log.Infof("Categories found: %d", len(result.Data))
	log.Infof("Duration: %.2f seconds", float64(result.DurationMS)/1000)
	if result.Error != "" {
		log.Errorf("Error: %s", result.Error)
	}

	if !result.Success {
		os.Exit(1)
	}
}
