package models

import "time"

// Status is the normalized lifecycle state of a job as reported by the
// job source. Anything the source sends that we don't recognize maps to
// StatusUnknown rather than being dropped.
type Status string

const (
	StatusRunning   Status = "running"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
	StatusCompleted Status = "completed"
	StatusUnknown   Status = "unknown"
)

// NormalizeStatus maps a raw status string from the source onto one of
// the known Status values.
func NormalizeStatus(raw string) Status {
	switch Status(raw) {
	case StatusRunning, StatusPending, StatusFailed, StatusCompleted:
		return Status(raw)
	default:
		return StatusUnknown
	}
}

// JobRecord is a read-only snapshot of a single job owned by the external
// job source. Pointer fields are nullable in the source payload.
type JobRecord struct {
	ID              *int64     `json:"job_id"`
	Name            string     `json:"job_name"`
	Status          string     `json:"status"`
	LastRunTime     *time.Time `json:"last_run_time,omitempty"`
	IsProgress      bool       `json:"is_progress"`
	ProgressValue   float64    `json:"progress_value"`
	ProgressMax     float64    `json:"progress_max"`
	ProgressMessage string     `json:"progress_message,omitempty"`
}

// JobView is a single job prepared for display: normalized status,
// derived percentage and a display key that is always present even when
// the source omitted the job id.
type JobView struct {
	JobRecord
	DisplayKey  string    `json:"display_key"`
	NormStatus  Status    `json:"norm_status"`
	Percent     int       `json:"percent"`
	DisplayTime time.Time `json:"display_time"`
}

// JobGroup is one bucket of the grouped view model.
type JobGroup struct {
	Status Status    `json:"status"`
	Jobs   []JobView `json:"jobs"`
	Count  int       `json:"count"`
}

// Snapshot is what the refresh layer hands to clients: either a grouped
// view model, a verbatim diagnostic blob when the source returned
// something that isn't a job list, or a load error message.
type Snapshot struct {
	Groups     []JobGroup `json:"groups"`
	TotalJobs  int        `json:"total_jobs"`
	Diagnostic string     `json:"diagnostic,omitempty"`
	LoadError  string     `json:"load_error,omitempty"`
	TakenAt    time.Time  `json:"taken_at"`
}

// Empty reports whether the snapshot carries no jobs and no diagnostic,
// i.e. the UI should show its "no jobs" indicator.
func (s *Snapshot) Empty() bool {
	return s.TotalJobs == 0 && s.Diagnostic == "" && s.LoadError == ""
}

// CommandEntry is one row of the local command audit log.
type CommandEntry struct {
	ID            int64     `json:"id"`
	CorrelationID string    `json:"correlation_id"`
	Command       string    `json:"command"`
	JobID         *int64    `json:"job_id,omitempty"`
	StatusLabel   string    `json:"status_label,omitempty"`
	SubmittedAt   time.Time `json:"submitted_at"`
	Outcome       string    `json:"outcome"` // "accepted", "suppressed", "failed"
	Detail        string    `json:"detail,omitempty"`
}
