// The view model builder: a pure transformation from the flat job list
// returned by the job source into the grouped, ordered, display-ready
// structure the UI renders. It performs no I/O and never mutates its input.

package viewmodel

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"jobdeck/internal/models"
)

// GroupOrder is the fixed priority order in which groups are emitted.
// Groups with zero jobs are omitted.
var GroupOrder = []models.Status{
	models.StatusRunning,
	models.StatusPending,
	models.StatusFailed,
	models.StatusCompleted,
	models.StatusUnknown,
}

// Build partitions records by normalized status and returns the groups in
// the fixed priority order. Within a group, jobs are sorted most recent
// first, except the pending group, which keeps source order: the source
// treats it as a queue and the user can reorder it explicitly.
//
// now is used as the display time for jobs with no last_run_time; passing
// it in keeps the function deterministic.
func Build(records []models.JobRecord, now time.Time) []models.JobGroup {
	buckets := make(map[models.Status][]models.JobView)
	for i, rec := range records {
		view := buildView(rec, i, now)
		buckets[view.NormStatus] = append(buckets[view.NormStatus], view)
	}

	var groups []models.JobGroup
	for _, status := range GroupOrder {
		jobs, ok := buckets[status]
		if !ok {
			continue
		}
		if status != models.StatusPending {
			// Stable, so jobs sharing a timestamp keep encounter order.
			sort.SliceStable(jobs, func(a, b int) bool {
				return jobs[a].DisplayTime.After(jobs[b].DisplayTime)
			})
		}
		groups = append(groups, models.JobGroup{
			Status: status,
			Jobs:   jobs,
			Count:  len(jobs),
		})
	}
	return groups
}

func buildView(rec models.JobRecord, position int, now time.Time) models.JobView {
	status := models.NormalizeStatus(rec.Status)

	// The positional key is for display identity only; it is never sent
	// back to the job source.
	key := fmt.Sprintf("pos-%d", position)
	if rec.ID != nil {
		key = fmt.Sprintf("job-%d", *rec.ID)
	}

	displayTime := now
	if rec.LastRunTime != nil {
		displayTime = *rec.LastRunTime
	}

	return models.JobView{
		JobRecord:   rec,
		DisplayKey:  key,
		NormStatus:  status,
		Percent:     Percent(rec.ProgressValue, rec.ProgressMax, status),
		DisplayTime: displayTime,
	}
}

// Percent derives a progress percentage. A max of zero on a completed job
// means "nothing left to track", so it reads as fully complete rather
// than untouched.
func Percent(value, max float64, status models.Status) int {
	if max > 0 {
		return int(math.Round(value / max * 100))
	}
	if status == models.StatusCompleted {
		return 100
	}
	return 0
}

// DecodePayload interprets the raw body returned by the job source. A
// top-level JSON array is decoded into job records. Anything else (the
// source occasionally answers with a bare string or an arbitrary object,
// e.g. during maintenance) is preserved verbatim as a diagnostic blob so
// the UI can show it instead of crashing.
func DecodePayload(body []byte) (records []models.JobRecord, diagnostic string, err error) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		// Not JSON at all; show it as-is.
		return nil, string(body), nil
	}

	trimmed := []byte(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, "", fmt.Errorf("malformed job list: %w", err)
		}
		return records, "", nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return nil, s, nil
	}
	return nil, string(trimmed), nil
}

// BuildSnapshot runs the full decode-and-group pipeline for one refresh.
func BuildSnapshot(body []byte, now time.Time) models.Snapshot {
	records, diagnostic, err := DecodePayload(body)
	if err != nil {
		return models.Snapshot{LoadError: err.Error(), TakenAt: now}
	}
	if diagnostic != "" {
		return models.Snapshot{Diagnostic: diagnostic, TakenAt: now}
	}
	return models.Snapshot{
		Groups:    Build(records, now),
		TotalJobs: len(records),
		TakenAt:   now,
	}
}
