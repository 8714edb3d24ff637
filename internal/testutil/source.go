package testutil

import (
	"context"
	"fmt"
	"sync"
)

// FakeSource is an in-memory job source for tests. Set Payload (and
// optionally FetchErr) to control what a refresh sees; every command is
// appended to Calls so tests can assert on what reached the source.
type FakeSource struct {
	mu       sync.Mutex
	Payload  []byte
	FetchErr error
	CmdErr   error
	Calls    []string
}

func NewFakeSource(payload string) *FakeSource {
	return &FakeSource{Payload: []byte(payload)}
}

func (f *FakeSource) SetPayload(payload string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Payload = []byte(payload)
}

func (f *FakeSource) FetchJobs(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	return f.Payload, nil
}

func (f *FakeSource) DeleteJob(ctx context.Context, jobID int64) error {
	return f.record(fmt.Sprintf("delete:%d", jobID))
}

func (f *FakeSource) ClearQueue(ctx context.Context, statusLabel string) error {
	return f.record("clear:" + statusLabel)
}

func (f *FakeSource) ActionOnJob(ctx context.Context, jobID int64, action string) error {
	return f.record(fmt.Sprintf("action:%s:%d", action, jobID))
}

func (f *FakeSource) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)
	return f.CmdErr
}

// CallLog returns a copy of the recorded command calls.
func (f *FakeSource) CallLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	copy(out, f.Calls)
	return out
}
