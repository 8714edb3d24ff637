// HTTP client for the external job source. The source owns job execution
// and state; jobdeck only reads the job list and relays user commands,
// then relies on a refresh to pick up the authoritative result.

package jobsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Masterminds/semver/v3"

	"jobdeck/internal/models"
)

// MinSourceVersion is the oldest job source API jobdeck knows how to talk to.
const MinSourceVersion = ">= 1.2.0"

const (
	ActionMoveTop    = "move_top"
	ActionMoveBottom = "move_bottom"
	ActionForceStart = "force_start"
)

var (
	ErrUnknownAction = fmt.Errorf("unknown job action")
	// ErrClearRunning guards the source's own invariant: the running
	// group cannot be cleared.
	ErrClearRunning = fmt.Errorf("cannot clear the running queue")
)

// ValidAction reports whether the action is one the source understands.
func ValidAction(action string) bool {
	switch action {
	case ActionMoveTop, ActionMoveBottom, ActionForceStart:
		return true
	}
	return false
}

// Source is the read-and-command surface jobdeck needs from a job
// backend. Client talks to a live HTTP source; FileSource serves a local
// JSON file for development.
type Source interface {
	FetchJobs(ctx context.Context) ([]byte, error)
	DeleteJob(ctx context.Context, jobID int64) error
	ClearQueue(ctx context.Context, statusLabel string) error
	ActionOnJob(ctx context.Context, jobID int64, action string) error
}

// Client is an HTTP implementation of Source.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// FetchJobs returns the raw job list payload. Decoding is left to the
// view model layer, which also handles the source's occasional non-array
// answers.
func (c *Client) FetchJobs(ctx context.Context) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/jobs", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("job source unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("job source returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// DeleteJob cancels/removes a pending job. Fire-and-forget: the caller
// invalidates the cache afterwards instead of inspecting the response.
func (c *Client) DeleteJob(ctx context.Context, jobID int64) error {
	path := fmt.Sprintf("/api/jobs/%d", jobID)
	return c.command(ctx, http.MethodDelete, path, nil)
}

// ClearQueue removes every job in the given status group. The running
// group is refused locally; the source would reject it anyway.
func (c *Client) ClearQueue(ctx context.Context, statusLabel string) error {
	if models.NormalizeStatus(statusLabel) == models.StatusRunning {
		return ErrClearRunning
	}
	payload, _ := json.Marshal(map[string]string{"status": statusLabel})
	return c.command(ctx, http.MethodPost, "/api/jobs/clear", payload)
}

// ActionOnJob submits a queue action (move_top, move_bottom, force_start)
// for a single job.
func (c *Client) ActionOnJob(ctx context.Context, jobID int64, action string) error {
	if !ValidAction(action) {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	payload, _ := json.Marshal(map[string]string{"action": action})
	path := fmt.Sprintf("/api/jobs/%d/action", jobID)
	return c.command(ctx, http.MethodPost, path, payload)
}

func (c *Client) command(ctx context.Context, method, path string, payload []byte) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("job source unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("job source rejected %s %s with status %d", method, path, resp.StatusCode)
	}
	return nil
}

// CheckVersion fetches the source's reported version and verifies it
// satisfies MinSourceVersion.
func (c *Client) CheckVersion(ctx context.Context) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/system/version", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("job source unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("job source returned status %d", resp.StatusCode)
	}

	var payload struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("could not decode version payload: %w", err)
	}

	v, err := semver.NewVersion(payload.Version)
	if err != nil {
		return "", fmt.Errorf("source reported unparseable version %q: %w", payload.Version, err)
	}
	constraint, err := semver.NewConstraint(MinSourceVersion)
	if err != nil {
		return "", err
	}
	if !constraint.Check(v) {
		return payload.Version, fmt.Errorf("job source version %s is older than supported (%s)", payload.Version, MinSourceVersion)
	}
	return payload.Version, nil
}
