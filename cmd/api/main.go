package main

import (
	"context"
	"flag"
	"os"

	log "github.com/sirupsen/logrus"

	"catalogcrawler/api"
	"catalogcrawler/config"
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
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error, fatal, panic).")
	flag.Parse()

	parsedLevel, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	log.SetLevel(parsedLevel)

	cfg := config.Load()
	ctx := context.Background()

	client, err := storage.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	defer client.Disconnect(ctx)

	repo := storage.NewProductRepo(client, cfg.MongoDatabase)
	router := api.NewRouter(cfg, api.NewHandler(repo))

	log.Infof("Server is running on port %s", cfg.Port)
	if err := router.Run("0.0.0.0:" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
