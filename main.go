package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"deskcontrol/api"
	"deskcontrol/config"
	"deskcontrol/driver"
	"deskcontrol/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// setupLogging creates a log file in the log directory with timestamp
// Returns the log file handle (caller should defer Close())
func setupLogging() (*os.File, error) {
	logDir := "log"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(logDir, timestamp+".log")

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	// Write to both console and file
	multiWriter := io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(multiWriter)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	log.Printf("Logging to: %s", logPath)
	return logFile, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Printf("Warning: Failed to setup file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	// .env overrides are optional
	_ = godotenv.Load()
	cfg := config.New()

	log.Println("Starting deskcontrol server...")

	device, err := driver.NewX11Device(cfg.Display)
	if err != nil {
		log.Fatalf("Failed to open input device: %v", err)
	}
	defer device.Close()

	db, err := config.InitDatabase(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	macros := service.NewMacroStore(db)
	if err := macros.Init(); err != nil {
		log.Fatalf("Failed to initialize macro store: %v", err)
	}

	hub := service.NewMonitorHub()
	queue := service.NewActionQueue(device, device, hub)
	queue.Start()

	sessions := service.NewSessionManager(cfg.SessionTTL)

	router := gin.Default()
	api.SetupRoutes(router, queue, sessions, macros, hub, device)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	log.Printf("Server starting on http://%s", addr)
	log.Printf("Monitor stream on ws://%s/v1/monitor", addr)

	if err := router.Run(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
