// The refresh layer. It owns the latest job snapshot: periodic polls and
// post-command invalidations both funnel into Refresh, which fetches the
// raw payload from the job source, rebuilds the view model, persists the
// result and pushes it to connected WebSocket clients. Handlers only
// ever read the cached snapshot; they never talk to the source directly.

package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"jobdeck/internal/jobsource"
	"jobdeck/internal/models"
	"jobdeck/internal/store"
	"jobdeck/internal/viewmodel"
	"jobdeck/internal/websocket"
)

type Refresher struct {
	source jobsource.Source
	store  *store.Store
	hub    *websocket.Hub

	mu      sync.RWMutex
	current models.Snapshot

	// now is swappable so tests get deterministic snapshot times.
	now func() time.Time

	invalidate chan struct{}
	scheduler  *gocron.Scheduler
	stopChan   chan struct{}
}

func NewRefresher(source jobsource.Source, st *store.Store, hub *websocket.Hub) *Refresher {
	return &Refresher{
		source:     source,
		store:      st,
		hub:        hub,
		now:        time.Now,
		invalidate: make(chan struct{}, 1),
		stopChan:   make(chan struct{}),
	}
}

// Refresh performs one fetch-decode-group cycle and makes the result the
// current snapshot. A failed fetch produces a snapshot carrying only a
// terse load error; it is not retried here, the next scheduled poll or
// invalidation will try again.
func (r *Refresher) Refresh(ctx context.Context) models.Snapshot {
	var snap models.Snapshot
	body, err := r.source.FetchJobs(ctx)
	if err != nil {
		log.Printf("Job list refresh failed: %v", err)
		snap = models.Snapshot{LoadError: err.Error(), TakenAt: r.now()}
	} else {
		snap = viewmodel.BuildSnapshot(body, r.now())
	}

	r.mu.Lock()
	r.current = snap
	r.mu.Unlock()

	// Load errors are transient and not worth a history row.
	if snap.LoadError == "" && r.store != nil {
		if _, err := r.store.SaveSnapshot(&snap); err != nil {
			log.Printf("Failed to persist job snapshot: %v", err)
		}
	}

	if r.hub != nil {
		r.hub.BroadcastJSON(&snap)
	}
	return snap
}

// Current returns the most recent snapshot.
func (r *Refresher) Current() models.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Invalidate requests an asynchronous refresh. Called after every
// mutating command; multiple invalidations while a refresh is pending
// coalesce into one.
func (r *Refresher) Invalidate() {
	select {
	case r.invalidate <- struct{}{}:
	default:
	}
}

// Start seeds the cache from the last persisted snapshot, begins the
// periodic poll and the invalidation listener. keepSnapshots bounds how
// much history the nightly prune retains.
func (r *Refresher) Start(intervalSeconds, keepSnapshots int) {
	if r.store != nil {
		if last, err := r.store.LatestSnapshot(); err != nil {
			log.Printf("Could not load last snapshot: %v", err)
		} else if last != nil {
			r.mu.Lock()
			r.current = *last
			r.mu.Unlock()
		}
	}

	go func() {
		for {
			select {
			case <-r.invalidate:
				r.Refresh(context.Background())
			case <-r.stopChan:
				return
			}
		}
	}()

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	if intervalSeconds > 0 {
		log.Printf("Scheduling job list refresh every %d seconds.", intervalSeconds)
		_, err := s.Every(intervalSeconds).Seconds().Do(func() {
			r.Refresh(context.Background())
		})
		if err != nil {
			log.Printf("Error scheduling refresh job: %v", err)
		}
	} else {
		log.Println("Refresh interval is 0, periodic refresh is disabled.")
	}

	if r.store != nil && keepSnapshots > 0 {
		_, err := s.Every(1).Day().Do(func() {
			pruned, err := r.store.PruneSnapshots(keepSnapshots)
			if err != nil {
				log.Printf("Snapshot prune failed: %v", err)
			} else if pruned > 0 {
				log.Printf("Pruned %d old job snapshots.", pruned)
			}
		})
		if err != nil {
			log.Printf("Error scheduling snapshot prune job: %v", err)
		}
	}

	s.StartAsync()
	r.scheduler = s
}

// Stop halts the scheduler and the invalidation listener.
func (r *Refresher) Stop() {
	close(r.stopChan)
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}
