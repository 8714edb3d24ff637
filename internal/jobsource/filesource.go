// A file-backed job source for development and testing: the job list
// lives in a JSON file and commands rewrite it in place. An fsnotify
// watcher notices outside edits so the refresh pipeline can be driven by
// hand-editing the file while no live backend is available.

package jobsource

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"jobdeck/internal/models"
)

type FileSource struct {
	path    string
	mu      sync.Mutex
	watcher *fsnotify.Watcher

	onChange      func()
	debounceTimer *time.Timer
	debounceDelay time.Duration
	stopChan      chan struct{}
}

func NewFileSource(path string) *FileSource {
	return &FileSource{
		path:          path,
		debounceDelay: 500 * time.Millisecond,
		stopChan:      make(chan struct{}),
	}
}

// Watch starts watching the backing file's directory and invokes onChange
// (debounced) whenever the file is rewritten from outside.
func (f *FileSource) Watch(onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory rather than the file: editors replace files on
	// save, which would drop a direct file watch.
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		watcher.Close()
		return err
	}
	f.watcher = watcher
	f.onChange = onChange

	log.Printf("Watching job file: %s", f.path)
	go f.processEvents()
	return nil
}

func (f *FileSource) Stop() error {
	close(f.stopChan)
	if f.watcher != nil {
		return f.watcher.Close()
	}
	return nil
}

func (f *FileSource) processEvents() {
	for {
		select {
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(f.path) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			f.mu.Lock()
			if f.debounceTimer != nil {
				f.debounceTimer.Stop()
			}
			f.debounceTimer = time.AfterFunc(f.debounceDelay, f.onChange)
			f.mu.Unlock()

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Job file watcher error: %v", err)

		case <-f.stopChan:
			return
		}
	}
}

// FetchJobs returns the raw file contents; the view model layer decodes
// them, including the non-array diagnostic case.
func (f *FileSource) FetchJobs(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("could not read job file: %w", err)
	}
	return data, nil
}

func (f *FileSource) DeleteJob(ctx context.Context, jobID int64) error {
	return f.rewrite(func(records []models.JobRecord) ([]models.JobRecord, error) {
		out := records[:0]
		for _, rec := range records {
			if rec.ID != nil && *rec.ID == jobID {
				continue
			}
			out = append(out, rec)
		}
		return out, nil
	})
}

func (f *FileSource) ClearQueue(ctx context.Context, statusLabel string) error {
	status := models.NormalizeStatus(statusLabel)
	if status == models.StatusRunning {
		return ErrClearRunning
	}
	return f.rewrite(func(records []models.JobRecord) ([]models.JobRecord, error) {
		out := records[:0]
		for _, rec := range records {
			if models.NormalizeStatus(rec.Status) == status {
				continue
			}
			out = append(out, rec)
		}
		return out, nil
	})
}

func (f *FileSource) ActionOnJob(ctx context.Context, jobID int64, action string) error {
	if !ValidAction(action) {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return f.rewrite(func(records []models.JobRecord) ([]models.JobRecord, error) {
		idx := -1
		for i, rec := range records {
			if rec.ID != nil && *rec.ID == jobID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, fmt.Errorf("job %d not found", jobID)
		}

		switch action {
		case ActionForceStart:
			records[idx].Status = string(models.StatusRunning)
			return records, nil
		case ActionMoveTop:
			moved := records[idx]
			records = append(records[:idx], records[idx+1:]...)
			return append([]models.JobRecord{moved}, records...), nil
		case ActionMoveBottom:
			moved := records[idx]
			records = append(records[:idx], records[idx+1:]...)
			return append(records, moved), nil
		}
		return records, nil
	})
}

func (f *FileSource) rewrite(transform func([]models.JobRecord) ([]models.JobRecord, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("could not read job file: %w", err)
	}
	var records []models.JobRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("job file is not a job list: %w", err)
	}

	records, err = transform(records)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, out, 0644)
}
