package core

import (
	"database/sql"
	"embed"
	"fmt"
	"log"

	"jobdeck/internal/config"
	"jobdeck/internal/db"
	"jobdeck/internal/websocket"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// App holds the core components of the application that are shared
// between the server and the CLI.
type App struct {
	cfg     *config.Config
	db      *sql.DB
	wsHub   *websocket.Hub
	version string
}

// New sets up and returns a new App instance. It handles loading the
// configuration, initializing the database connection, and running migrations.
func New(migrationsFS embed.FS) (*App, error) {
	// Load configuration from config.yml
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize the database connection
	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	if err := db.RunMigrations(database, migrationsFS); err != nil {
		// We can't proceed without a valid database schema.
		// Close the DB connection before failing.
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	log.Println("Core application setup complete.")
	return &App{
		cfg:     cfg,
		db:      database,
		wsHub:   hub,
		version: Version,
	}, nil
}

// NewWithComponents assembles an App from already-initialized parts.
// Used by tests, which bring their own in-memory database.
func NewWithComponents(cfg *config.Config, database *sql.DB, hub *websocket.Hub, version string) *App {
	return &App{cfg: cfg, db: database, wsHub: hub, version: version}
}

func (a *App) Config() *config.Config { return a.cfg }
func (a *App) DB() *sql.DB            { return a.db }
func (a *App) WsHub() *websocket.Hub  { return a.wsHub }
func (a *App) Version() string        { return a.version }

// Close gracefully closes the application's resources, like the DB connection.
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
