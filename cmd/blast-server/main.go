package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"blast/pkg/runs"
)

const (
	defaultPort    = "8080"
	defaultDataDir = "./data"
)

func main() {
	port := getEnv("PORT", defaultPort)
	dataDir := getEnv("DATA_DIR", defaultDataDir)

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	storage, err := runs.NewFileStorage(dataDir)
	if err != nil {
		log.Fatalf("Failed to create run storage: %v", err)
	}
	manager := runs.NewManager(storage, logger)

	handler := &APIHandler{
		manager: manager,
		logger:  logger,
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting blast server on port %s", port)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Cancel any in-flight run so its record is persisted before exit
	if manager.Status() == runs.StatusRunning {
		if err := manager.Stop(); err != nil {
			log.Printf("Failed to stop active run: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
