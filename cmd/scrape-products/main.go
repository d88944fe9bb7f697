package main

import (
	"flag"
	"os"

	log "github.com/sirupsen/logrus"

	"catalogcrawler/config"
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

	log.Info("Product scraper starting...")

	categories, err := scraper.LoadCategories(cfg.OutputDir)
	if err != nil {
		log.Fatalf("Failed to load categories (run scrape-categories first): %v", err)
	}
	if len(categories) == 0 {
		log.Fatal("No categories to process. Exiting.")
	}
	log.Infof("Loaded %d categories to process", len(categories))

	session, err := scraper.NewSession(cfg)
	if err != nil {
		log.Fatalf("Failed to start browser: %v", err)
	}
	defer session.Close()

	orchestrator := scraper.NewOrchestrator(cfg, scraper.NewProductScraper(cfg, session))
	result, progress := orchestrator.Run(categories)

	log.Info("=== Final Summary ===")
	log.Infof("Total categories processed: %d", progress.ProcessedCategories)
	log.Infof("Total products scraped: %d", result.TotalProducts)
	log.Infof("Successful products: %d", progress.SuccessfulProducts)
	log.Infof("Failed products: %d", progress.FailedProducts)
	log.Infof("Total duration: %s", progress.Elapsed())
	log.Info("All products saved to: all-products.json")
}
