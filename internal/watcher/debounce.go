package watcher

import (
	"sort"
	"sync"
	"time"
)

// State is the debounce state of a single file.
type State int

const (
	// Idle means no write is pending for the file.
	Idle State = iota
	// Settling means the file appeared and its writes are being waited out.
	Settling
)

func (s State) String() string {
	switch s {
	case Settling:
		return "settling"
	default:
		return "idle"
	}
}

// Signature identifies the observable content of a file between polls.
type Signature struct {
	Size    int64
	ModTime time.Time
}

type settling struct {
	signature  Signature
	lastChange time.Time
}

// Debouncer tracks files until their writes have been quiet for a window.
// It never reads the clock itself; callers pass the time of each observation.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	pending map[string]*settling
}

// NewDebouncer returns a Debouncer that settles files after window without change.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window:  window,
		pending: make(map[string]*settling),
	}
}

// Begin moves name from Idle to Settling. It reports false when name is
// already settling, in which case the call counts as an observation.
func (d *Debouncer) Begin(name string, sig Signature, at time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if entry, ok := d.pending[name]; ok {
		entry.observe(sig, at)
		return false
	}
	d.pending[name] = &settling{signature: sig, lastChange: at}
	return true
}

// Observe records the current signature of a settling file. A changed
// signature restarts its quiet window. Idle files are ignored.
func (d *Debouncer) Observe(name string, sig Signature, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if entry, ok := d.pending[name]; ok {
		entry.observe(sig, at)
	}
}

// Touch restarts the quiet window of a settling file regardless of its signature.
func (d *Debouncer) Touch(name string, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if entry, ok := d.pending[name]; ok && at.After(entry.lastChange) {
		entry.lastChange = at
	}
}

// Cancel returns name to Idle without reporting it ready.
func (d *Debouncer) Cancel(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pending, name)
}

// State reports the state of name.
func (d *Debouncer) State(name string) State {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.pending[name]; ok {
		return Settling
	}
	return Idle
}

// Pending lists settling files in name order.
func (d *Debouncer) Pending() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.pending))
	for name := range d.pending {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Ready returns, in name order, the files quiet for at least the window at
// now and moves them back to Idle.
func (d *Debouncer) Ready(now time.Time) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for name, entry := range d.pending {
		if now.Sub(entry.lastChange) >= d.window {
			out = append(out, name)
			delete(d.pending, name)
		}
	}
	sort.Strings(out)
	return out
}

func (s *settling) observe(sig Signature, at time.Time) {
	if sig.Size == s.signature.Size && sig.ModTime.Equal(s.signature.ModTime) {
		return
	}
	s.signature = sig
	if at.After(s.lastChange) {
		s.lastChange = at
	}
}
