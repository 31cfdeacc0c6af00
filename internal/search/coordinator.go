package search

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned by a search whose session started a newer one
var ErrSuperseded = errors.New("search superseded by a newer request")

// Coordinator enforces last-request-wins per session. Beginning a search
// cancels the session's in-flight search and makes it stale.
type Coordinator struct {
	mu       sync.Mutex
	next     uint64
	sessions map[string]*inflight
}

type inflight struct {
	gen    uint64
	cancel context.CancelFunc
}

// NewCoordinator creates a coordinator
func NewCoordinator() *Coordinator {
	return &Coordinator{sessions: make(map[string]*inflight)}
}

// Ticket identifies one search generation of a session
type Ticket struct {
	c       *Coordinator
	session string
	gen     uint64
	cancel  context.CancelFunc
}

// Begin registers a new search for session and returns its ticket and a
// context that is cancelled when a newer search begins. An empty session
// is not tracked.
func (c *Coordinator) Begin(ctx context.Context, session string) (*Ticket, context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	if session == "" {
		return &Ticket{cancel: cancel}, ctx
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// generations are global so a stale ticket never matches a later
	// search of a session whose entry was dropped in between
	c.next++
	gen := c.next
	if prev, ok := c.sessions[session]; ok {
		prev.cancel()
	}
	c.sessions[session] = &inflight{gen: gen, cancel: cancel}

	return &Ticket{c: c, session: session, gen: gen, cancel: cancel}, ctx
}

// Current reports whether no newer search has begun for the session
func (t *Ticket) Current() bool {
	if t.c == nil {
		return true
	}
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	cur, ok := t.c.sessions[t.session]
	return ok && cur.gen == t.gen
}

// Generation returns the ticket's generation; later searches have larger ones
func (t *Ticket) Generation() uint64 {
	return t.gen
}

// Finish releases the ticket. The session entry is dropped only while this
// ticket is still its latest search.
func (t *Ticket) Finish() {
	t.cancel()
	if t.c == nil {
		return
	}
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if cur, ok := t.c.sessions[t.session]; ok && cur.gen == t.gen {
		delete(t.c.sessions, t.session)
	}
}

// Active returns the number of sessions with a search in flight
func (c *Coordinator) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}
