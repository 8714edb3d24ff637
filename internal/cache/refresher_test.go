package cache_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobdeck/internal/cache"
	"jobdeck/internal/models"
	"jobdeck/internal/store"
	"jobdeck/internal/testutil"
)

func TestRefreshBuildsAndPersistsSnapshot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	src := testutil.NewFakeSource(`[
        {"job_id": 1, "status": "running"},
        {"job_id": 2, "status": "pending"}
    ]`)
	r := cache.NewRefresher(src, store.New(db), nil)

	snap := r.Refresh(context.Background())
	assert.Equal(t, 2, snap.TotalJobs)
	require.Len(t, snap.Groups, 2)
	assert.Equal(t, models.StatusRunning, snap.Groups[0].Status)

	// Current returns the same snapshot.
	assert.Equal(t, snap.TotalJobs, r.Current().TotalJobs)

	// And it was persisted.
	latest, err := store.New(db).LatestSnapshot()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 2, latest.TotalJobs)
}

func TestRefreshLoadFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	src := testutil.NewFakeSource("")
	src.FetchErr = fmt.Errorf("connection refused")
	r := cache.NewRefresher(src, store.New(db), nil)

	snap := r.Refresh(context.Background())
	assert.Contains(t, snap.LoadError, "connection refused")
	assert.Empty(t, snap.Groups)

	// Failed loads are not written to history.
	latest, err := store.New(db).LatestSnapshot()
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestRefreshDiagnosticPayload(t *testing.T) {
	db := testutil.SetupTestDB(t)
	src := testutil.NewFakeSource(`"maintenance mode"`)
	r := cache.NewRefresher(src, store.New(db), nil)

	snap := r.Refresh(context.Background())
	assert.Equal(t, "maintenance mode", snap.Diagnostic)
	assert.Empty(t, snap.Groups)
}

func TestRefreshRecoversAfterFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	src := testutil.NewFakeSource(`[]`)
	src.FetchErr = fmt.Errorf("timeout")
	r := cache.NewRefresher(src, store.New(db), nil)

	snap := r.Refresh(context.Background())
	assert.NotEmpty(t, snap.LoadError)

	src.FetchErr = nil
	src.SetPayload(`[{"job_id": 5, "status": "completed"}]`)
	snap = r.Refresh(context.Background())
	assert.Empty(t, snap.LoadError)
	assert.Equal(t, 1, snap.TotalJobs)
}

func TestStartSeedsFromLastSnapshot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)

	// Persist a snapshot as if a previous run had taken it.
	first := cache.NewRefresher(testutil.NewFakeSource(`[{"job_id": 1, "status": "failed"}]`), st, nil)
	first.Refresh(context.Background())

	// A fresh refresher with a dead source still serves the last state.
	src := testutil.NewFakeSource("")
	src.FetchErr = fmt.Errorf("down")
	r := cache.NewRefresher(src, st, nil)
	r.Start(0, 0)
	defer r.Stop()

	assert.Equal(t, 1, r.Current().TotalJobs)
}
