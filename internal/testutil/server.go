// A shared test server setup utility, which simplifies all API tests.

package testutil

import (
	"database/sql"
	"testing"

	"jobdeck/internal/api"
	"jobdeck/internal/cache"
	"jobdeck/internal/config"
	"jobdeck/internal/core"
	"jobdeck/internal/store"
	"jobdeck/internal/websocket"
)

// SetupTestApp builds a core.App backed by an in-memory database.
func SetupTestApp(t *testing.T) *core.App {
	t.Helper()
	db := SetupTestDB(t)

	cfg := &config.Config{}
	hub := websocket.NewHub()
	go hub.Run()
	return core.NewWithComponents(cfg, db, hub, "test")
}

// SetupTestServer initializes a full core.App, fake job source and
// api.Server for integration testing. The refresher is created but not
// started; tests drive it explicitly via Refresh.
func SetupTestServer(t *testing.T, payload string) (*api.Server, *FakeSource, *cache.Refresher, *sql.DB) {
	t.Helper()
	app := SetupTestApp(t)

	src := NewFakeSource(payload)
	refresher := cache.NewRefresher(src, store.New(app.DB()), app.WsHub())
	server := api.NewServer(app, src, refresher)
	return server, src, refresher, app.DB()
}
