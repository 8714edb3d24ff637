// Debounced command dispatch. Every user command against the job source
// goes through here: rapid repeated submissions of the same command are
// coalesced on the trailing edge of a short window, and a command whose
// request is still in flight is suppressed outright rather than queued.

package dispatch

import (
	"log"
	"sync"
	"time"
)

// DefaultWindow is the debounce window for coalescing repeated clicks.
const DefaultWindow = 300 * time.Millisecond

// Result says what happened to a submission.
type Result int

const (
	// Scheduled means the command will run when the window elapses.
	Scheduled Result = iota
	// Coalesced means an earlier submission of the same key was still
	// waiting; its timer was reset and only one execution will happen.
	Coalesced
	// Suppressed means a request for this key is already in flight.
	Suppressed
)

type Dispatcher struct {
	mu       sync.Mutex
	window   time.Duration
	pending  map[string]*time.Timer
	inFlight map[string]bool
}

// New creates a dispatcher. A zero window falls back to DefaultWindow.
func New(window time.Duration) *Dispatcher {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Dispatcher{
		window:   window,
		pending:  make(map[string]*time.Timer),
		inFlight: make(map[string]bool),
	}
}

// Submit schedules fn to run once the debounce window for key elapses.
// The key identifies the command (e.g. "delete:42" or "clear:failed"):
// submissions sharing a key within the window collapse into one
// execution, and submissions while that execution's request is pending
// are dropped. fn runs on its own goroutine and must not block forever.
func (d *Dispatcher) Submit(key string, fn func()) Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.inFlight[key] {
		log.Printf("Command %q suppressed: request already in flight", key)
		return Suppressed
	}

	result := Scheduled
	if timer, ok := d.pending[key]; ok {
		timer.Stop()
		result = Coalesced
	}

	d.pending[key] = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		delete(d.pending, key)
		if d.inFlight[key] {
			// A previous execution is still running; drop this one.
			d.mu.Unlock()
			return
		}
		d.inFlight[key] = true
		d.mu.Unlock()

		defer func() {
			d.mu.Lock()
			d.inFlight[key] = false
			d.mu.Unlock()
		}()
		fn()
	})
	return result
}

// InFlight reports whether a request for key is currently pending
// against the job source. The UI uses this to disable the control.
func (d *Dispatcher) InFlight(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inFlight[key]
}

// Flush stops all pending timers. Used on shutdown; commands that were
// still inside their debounce window are discarded.
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, timer := range d.pending {
		timer.Stop()
		delete(d.pending, key)
	}
}
