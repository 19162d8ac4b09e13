package main

import (
	"log"

	"ecomai/internal/api"
	"ecomai/internal/config"
	"ecomai/internal/database"
	"ecomai/internal/logger"
	"ecomai/internal/queue"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	// Initialize task producer
	producer := queue.NewProducer(cfg.KafkaBrokers, cfg.TaskTopic, logger)
	defer producer.Close()

	// Initialize API server
	server := api.New(cfg, logger, db, producer)

	// Start server
	logger.Info("Starting API server on port " + cfg.APIPort)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
