package route

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/DanielleFiene/redditmini/internal/otel"
)

// Activation is one navigation to a route. Results produced under an
// activation are applied only while it is current.
type Activation struct {
	Gen   uint64
	ID    string
	Route Route
	Ctx   context.Context // cancelled when a newer activation replaces this one
}

// Tracker is a generation counter for one view slot (the main view, or a
// sidebar). Activate supersedes the previous activation and cancels its
// context so in-flight requests stop early; Current tells a result handler
// whether to apply or drop what it received.
type Tracker struct {
	parent context.Context

	mu      sync.Mutex
	gen     uint64
	current Activation
	cancel  context.CancelFunc
}

// NewTracker returns a Tracker whose activation contexts derive from parent.
func NewTracker(parent context.Context) *Tracker {
	return &Tracker{parent: parent}
}

// Activate starts a new activation for r.
func (t *Tracker) Activate(r Route) Activation {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}
	t.gen++
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(otel.WithActivation(t.parent, id))
	t.cancel = cancel
	t.current = Activation{Gen: t.gen, ID: id, Route: r, Ctx: ctx}
	return t.current
}

// Current reports whether a is still the live activation.
func (t *Tracker) Current(a Activation) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return a.Gen != 0 && a.Gen == t.gen
}

// Active returns the live activation, if any.
func (t *Tracker) Active() (Activation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current, t.gen != 0
}

// Stop cancels the live activation without starting a new one.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.gen++
}
