package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"jobdeck/internal/api"
	"jobdeck/internal/cache"
	"jobdeck/internal/config"
	"jobdeck/internal/core"
	"jobdeck/internal/store"
	"jobdeck/internal/testutil"
	"jobdeck/internal/websocket"
)

func setupAuthServer(t *testing.T) *api.Server {
	t.Helper()
	db := testutil.SetupTestDB(t)
	hub := websocket.NewHub()
	go hub.Run()

	cfg := &config.Config{}
	cfg.Auth.Username = "admin"
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg.Auth.PasswordHash = string(hash)

	app := core.NewWithComponents(cfg, db, hub, "test")
	src := testutil.NewFakeSource(`[]`)
	refresher := cache.NewRefresher(src, store.New(db), hub)
	return api.NewServer(app, src, refresher)
}

func TestAuthRequiredWithoutCredentials(t *testing.T) {
	server := setupAuthServer(t)

	req, _ := http.NewRequest("GET", "/api/jobs", nil)
	rr := httptest.NewRecorder()
	server.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
}

func TestAuthRejectsWrongPassword(t *testing.T) {
	server := setupAuthServer(t)

	req, _ := http.NewRequest("GET", "/api/jobs", nil)
	req.SetBasicAuth("admin", "wrong")
	rr := httptest.NewRecorder()
	server.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthAcceptsValidCredentials(t *testing.T) {
	server := setupAuthServer(t)

	req, _ := http.NewRequest("GET", "/api/jobs", nil)
	req.SetBasicAuth("admin", "hunter2")
	rr := httptest.NewRecorder()
	server.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthDisabledWhenUnconfigured(t *testing.T) {
	server, _, _, _ := testutil.SetupTestServer(t, `[]`)

	req, _ := http.NewRequest("GET", "/api/jobs", nil)
	rr := httptest.NewRecorder()
	server.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestVersionEndpointSkipsAuth(t *testing.T) {
	server := setupAuthServer(t)

	req, _ := http.NewRequest("GET", "/api/version", nil)
	rr := httptest.NewRecorder()
	server.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}
