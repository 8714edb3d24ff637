package main

import (
	"context"
	"embed"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobdeck/internal/api"
	"jobdeck/internal/cache"
	"jobdeck/internal/core"
	"jobdeck/internal/jobsource"
	"jobdeck/internal/store"
)

//go:embed migrations
var migrationsFS embed.FS

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize the core application components
	app, err := core.New(migrationsFS)
	if err != nil {
		log.Fatalf("Fatal error during application setup: %v", err)
	}
	defer app.Close()

	// Pick the job source: a local JSON file for development, otherwise
	// the live HTTP backend.
	var source jobsource.Source
	cfg := app.Config()
	if cfg.Source.File != "" {
		log.Printf("Using file job source: %s", cfg.Source.File)
		source = jobsource.NewFileSource(cfg.Source.File)
	} else {
		client := jobsource.NewClient(cfg.Source.URL, cfg.Source.APIKey)
		if version, err := client.CheckVersion(context.Background()); err != nil {
			log.Printf("Warning: job source version check failed: %v", err)
		} else {
			log.Printf("Connected to job source version %s", version)
		}
		source = client
	}

	// Start the refresh layer: periodic polls, post-command invalidation
	// and WebSocket push all run through it.
	refresher := cache.NewRefresher(source, store.New(app.DB()), app.WsHub())
	refresher.Start(cfg.RefreshInterval, cfg.History.KeepSnapshots)
	defer refresher.Stop()
	refresher.Invalidate() // initial fetch

	// When the job file changes on disk, refetch it.
	if fileSource, ok := source.(*jobsource.FileSource); ok {
		if err := fileSource.Watch(refresher.Invalidate); err != nil {
			log.Printf("Warning: could not watch job file: %v", err)
		}
		defer fileSource.Stop()
	}

	// Setup the API server
	server := api.NewServer(app, source, refresher)
	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}
	// --- Graceful Shutdown ---
	// Start the server in a goroutine so it doesn't block.
	go func() {
		log.Printf("Starting web server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %v", err)
		}
	}()

	// Wait for an interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create a context with a timeout to allow existing connections to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Attempt a graceful shutdown.
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
