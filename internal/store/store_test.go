package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobdeck/internal/models"
	"jobdeck/internal/store"
	"jobdeck/internal/testutil"
)

func testSnapshot(takenAt time.Time, jobCount int) *models.Snapshot {
	groups := []models.JobGroup{}
	if jobCount > 0 {
		jobs := make([]models.JobView, jobCount)
		for i := range jobs {
			id := int64(i + 1)
			jobs[i] = models.JobView{
				JobRecord:  models.JobRecord{ID: &id, Name: "job", Status: "pending"},
				DisplayKey: "job-1",
				NormStatus: models.StatusPending,
			}
		}
		groups = append(groups, models.JobGroup{Status: models.StatusPending, Jobs: jobs, Count: jobCount})
	}
	return &models.Snapshot{Groups: groups, TotalJobs: jobCount, TakenAt: takenAt}
}

func TestSaveAndLatestSnapshot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	_, err := s.SaveSnapshot(testSnapshot(time.Now().Add(-time.Minute), 1))
	require.NoError(t, err)
	_, err = s.SaveSnapshot(testSnapshot(time.Now(), 3))
	require.NoError(t, err)

	latest, err := s.LatestSnapshot()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 3, latest.TotalJobs)
	require.Len(t, latest.Groups, 1)
	assert.Equal(t, models.StatusPending, latest.Groups[0].Status)
	assert.Equal(t, 3, latest.Groups[0].Count)
}

func TestLatestSnapshotEmptyDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	latest, err := s.LatestSnapshot()
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestPruneSnapshots(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	for i := 0; i < 5; i++ {
		_, err := s.SaveSnapshot(testSnapshot(time.Now(), i))
		require.NoError(t, err)
	}

	pruned, err := s.PruneSnapshots(2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pruned)

	var count int
	db.QueryRow("SELECT COUNT(*) FROM job_snapshots").Scan(&count)
	assert.Equal(t, 2, count)

	// The newest snapshots survive.
	latest, err := s.LatestSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 4, latest.TotalJobs)
}

func TestRecordCommandAndRecent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	jobID := int64(42)
	err := s.RecordCommand(&models.CommandEntry{
		CorrelationID: "corr-1",
		Command:       "delete_job",
		JobID:         &jobID,
		SubmittedAt:   time.Now(),
		Outcome:       "accepted",
	})
	require.NoError(t, err)
	err = s.RecordCommand(&models.CommandEntry{
		CorrelationID: "corr-2",
		Command:       "clear_queue",
		StatusLabel:   "failed",
		SubmittedAt:   time.Now(),
		Outcome:       "accepted",
	})
	require.NoError(t, err)

	entries, err := s.RecentCommands(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, "clear_queue", entries[0].Command)
	assert.Equal(t, "failed", entries[0].StatusLabel)
	assert.Nil(t, entries[0].JobID)
	assert.Equal(t, "delete_job", entries[1].Command)
	require.NotNil(t, entries[1].JobID)
	assert.Equal(t, int64(42), *entries[1].JobID)
}

func TestUpdateCommandOutcome(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	err := s.RecordCommand(&models.CommandEntry{
		CorrelationID: "corr-9",
		Command:       "force_start",
		SubmittedAt:   time.Now(),
		Outcome:       "accepted",
	})
	require.NoError(t, err)

	require.NoError(t, s.UpdateCommandOutcome("corr-9", "failed", "source returned 500"))

	entries, err := s.RecentCommands(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "failed", entries[0].Outcome)
	assert.Equal(t, "source returned 500", entries[0].Detail)
}

func TestUpdateCommandOutcomeNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	err := s.UpdateCommandOutcome("missing", "completed", "")
	assert.Error(t, err)
}
