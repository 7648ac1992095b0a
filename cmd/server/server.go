package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/axellelanca/linkbio/cmd"
	"github.com/axellelanca/linkbio/internal/api"
	"github.com/axellelanca/linkbio/internal/config"
	"github.com/axellelanca/linkbio/internal/models"
	"github.com/axellelanca/linkbio/internal/monitor"
	"github.com/axellelanca/linkbio/internal/ratelimit"
	"github.com/axellelanca/linkbio/internal/repository"
	"github.com/axellelanca/linkbio/internal/services"
	"github.com/axellelanca/linkbio/internal/workers"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RunServerCmd is the 'run-server' Cobra command, the entry point for
// launching the profile service.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Launches the profile API server and its background processes.",
	Long: `This command initializes the database, configures the API routes,
starts the click audit workers and the link monitor,
then launches the HTTP server.`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}

		// Schema creation plus additive backfill of newly introduced columns
		if err := db.AutoMigrate(&models.Profile{}, &models.Click{}); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}

		profileRepo := repository.NewProfileRepository(db)
		clickRepo := repository.NewClickRepository(db)
		log.Println("Repositories initialized.")

		profileService := services.NewProfileService(profileRepo)
		log.Println("Services initialized.")

		// Click audit pipeline: buffered channel drained by the worker pool
		clickEventsChan := make(chan models.ClickEvent, cfg.Analytics.BufferSize)
		api.ClickEventsChannel = clickEventsChan
		workers.StartClickWorkers(cfg.Analytics.WorkerCount, clickEventsChan, clickRepo)
		log.Printf("Click events channel initialized with a buffer of %d. %d click worker(s) started.",
			cfg.Analytics.BufferSize, cfg.Analytics.WorkerCount)

		// Periodic reachability checks of all profile link targets
		monitorInterval := time.Duration(cfg.Monitor.IntervalMinutes) * time.Minute
		linkMonitor := monitor.NewLinkMonitor(profileRepo, monitorInterval)
		go linkMonitor.Start()
		log.Printf("Link monitor started with an interval of %v.", monitorInterval)

		// Per-IP fixed-window limiters for profile creation and reads
		createLimiter := ratelimit.NewFixedWindow(cfg.RateLimit.CreateLimit,
			time.Duration(cfg.RateLimit.CreateWindowMinutes)*time.Minute)
		readLimiter := ratelimit.NewFixedWindow(cfg.RateLimit.ReadLimit,
			time.Duration(cfg.RateLimit.ReadWindowSeconds)*time.Second)

		router := gin.Default()
		api.SetupRoutes(router, profileService, createLimiter, readLimiter, cfg.Analytics.BufferSize)
		log.Println("API routes configured.")

		serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
		srv := &http.Server{
			Addr:    serverAddr,
			Handler: router,
		}

		// Start the server in a goroutine so we can wait for shutdown signals
		go func() {
			log.Printf("Starting server on %s", serverAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()

		// Graceful shutdown on SIGINT/SIGTERM
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		<-quit
		log.Println("Shutdown signal received. Stopping server...")

		// Give the click workers a moment to drain the channel
		log.Println("Shutting down... letting workers finish.")
		time.Sleep(5 * time.Second)

		log.Println("Server stopped cleanly.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
