// ABOUTME: Side navigation panel state machine
// ABOUTME: Closing keeps the variant visible until a deferred reset fires
package state

import (
	"sync"
	"time"
)

type SideNavVariant string

const (
	VariantNone        SideNavVariant = "None"
	VariantLeadFilters SideNavVariant = "LeadFilters"
)

// DefaultSideNavDelay is how long a closed panel keeps its variant.
const DefaultSideNavDelay = 500 * time.Millisecond

// SideNavState is a snapshot. Pending is true while a reset is scheduled.
type SideNavState struct {
	IsOpen  bool
	Variant SideNavVariant
	Pending bool
}

// SideNav moves between Closed, Open(variant) and ClosingDeferred.
type SideNav struct {
	mu    sync.Mutex
	delay time.Duration
	state SideNavState
	timer *time.Timer
	gen   uint64
	store *Store[SideNavState]
}

func NewSideNav(delay time.Duration) *SideNav {
	if delay <= 0 {
		delay = DefaultSideNavDelay
	}
	initial := SideNavState{Variant: VariantNone}
	return &SideNav{delay: delay, state: initial, store: NewStore(initial)}
}

func (n *SideNav) State() SideNavState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Subscribe reports every transition, including the deferred reset.
func (n *SideNav) Subscribe(fn func(SideNavState)) func() {
	return n.store.Subscribe(fn)
}

// Open cancels any pending reset and shows variant.
func (n *SideNav) Open(variant SideNavVariant) {
	n.mu.Lock()
	n.stopLocked()
	n.state = SideNavState{IsOpen: true, Variant: variant}
	s := n.state
	n.mu.Unlock()
	n.store.Set(s)
}

// Close hides the panel and (re)starts the reset timer.
func (n *SideNav) Close() {
	n.mu.Lock()
	n.stopLocked()
	n.gen++
	gen := n.gen
	n.timer = time.AfterFunc(n.delay, func() { n.reset(gen) })
	n.state = SideNavState{IsOpen: false, Variant: n.state.Variant, Pending: true}
	s := n.state
	n.mu.Unlock()
	n.store.Set(s)
}

// Stop cancels a pending reset without changing what is shown.
func (n *SideNav) Stop() {
	n.mu.Lock()
	n.stopLocked()
	changed := n.state.Pending
	n.state.Pending = false
	s := n.state
	n.mu.Unlock()
	if changed {
		n.store.Set(s)
	}
}

func (n *SideNav) reset(gen uint64) {
	n.mu.Lock()
	// a timer that lost the race with Stop/Open/Close is stale
	if gen != n.gen || n.timer == nil {
		n.mu.Unlock()
		return
	}
	n.timer = nil
	n.state = SideNavState{IsOpen: n.state.IsOpen, Variant: VariantNone}
	s := n.state
	n.mu.Unlock()
	n.store.Set(s)
}

func (n *SideNav) stopLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
