// Package scheduler implements the event calendar and event loop:
// a per-particle next-event cache backed by a pluggable Sorter (a bounded
// priority queue of circular buckets, or an alternative complete binary
// tree), driven by the stale-event-detection/invalidation protocol that
// lets the loop skip eagerly purging the queue on every event.
//
// Grounded on taskstore/pqueue.go and taskstore/tqueue: the
// same indexed-heap-with-O(log n)-middle-removal trick reappears here as
// TreeSorter, and the bucket-calendar design (CalendarQueue) generalizes
// the same "index by key, then remove" idea to a fixed-width time grid
// instead of a single heap.
package scheduler

import "github.com/dynamo-sim/dynamo/internal/particle"

// Event is a predicted next event for one particle: the time it fires and
// the full set of particles whose counters it depends on (its own plus any
// partner). A predicted event is stale once any of these counters no
// longer match the live particle state.
type Event struct {
	Time float64
	Targets []int
	TargetCounters []uint64
}

// Sorter is the event calendar's pluggable backing store: something that
// can hold one pending (id, time) pair per particle, pop the
// globally-soonest, and invalidate (remove) a particle's pending entry in
// better than linear time. CalendarQueue and TreeSorter are the two
// implementations provided here; the event loop does not care which is
// active, since the choice must not be observable in the output modulo
// tie-break order.
type Sorter interface {
	Push(id int, time float64)
	Pop() (id int, ok bool)
	Invalidate(id int)
	Len() int
}

// PredictFunc computes the next Event for particle id against every
// applicable interaction, local, global and system source, returning
// false if the particle currently has no predictable next event (e.g. it
// is sleeping, or not Alive).
type PredictFunc func(store *particle.Store, id int) (Event, bool)

// ExecuteFunc advances the simulation to fire the given event for
// particle id: it streams every affected particle to ev.Time, applies the
// event's physical effect, and returns every particle ID that was
// mutated (always including id itself) so the caller can invalidate and
// recompute their cached predictions. This must include not
// just the direct participants but, transitively, every particle whose
// own cached prediction named one of them (done via the neighbour-list
// globals at the sim layer, not here).
type ExecuteFunc func(store *particle.Store, id int, ev Event) (affected []int)

// EventLoop is the generic "heart" event loop, parameterized over
// how an event is predicted and executed so that this package stays free
// of any dependency on internal/interaction, internal/local,
// internal/global or internal/sysevent — those are wired together by
// internal/sim's PredictFunc/ExecuteFunc closures.
type EventLoop struct {
	Sorter Sorter
	Store *particle.Store
	Predict PredictFunc
	Execute ExecuteFunc

	// OnEvent, if set, is called after every successfully executed (i.e.
	// non-stale) event, mirroring "notify_output_plugins(ev, changes)".
	OnEvent func(id int, ev Event, affected []int)

	GlobalTime float64
	EventCount int
	StaleCount int

	cache []Event
	valid []bool
}

// NewEventLoop builds a loop over store's current particle set and
// performs step 6: predicting every particle's first event and
// populating both the cache and the sorter.
func NewEventLoop(sorter Sorter, store *particle.Store, predict PredictFunc, execute ExecuteFunc) *EventLoop {
	return NewEventLoopN(sorter, store, store.Len(), predict, execute)
}

// NewEventLoopN is NewEventLoop generalized to a caller-supplied ID space
// wider than the particle store. The sim layer uses this to give each
// system event its own pseudo-ID above the real particle IDs, so that a
// time-triggered system event (the Andersen thermostat, say) competes in
// the same calendar as every particle's pairwise/local/global prediction
// instead of needing a second event loop.
func NewEventLoopN(sorter Sorter, store *particle.Store, numIDs int, predict PredictFunc, execute ExecuteFunc) *EventLoop {
	l := &EventLoop{
		Sorter: sorter,
		Store: store,
		Predict: predict,
		Execute: execute,
		cache: make([]Event, numIDs),
		valid: make([]bool, numIDs),
	}
	for id := 0; id < numIDs; id++ {
		l.recompute(id)
	}
	return l
}

func (l *EventLoop) recompute(id int) {
	ev, ok := l.Predict(l.Store, id)
	l.valid[id] = ok
	if !ok {
		return
	}
	l.cache[id] = ev
	l.Sorter.Push(id, ev.Time)
}

func (l *EventLoop) isStale(ev Event) bool {
	for i, target := range ev.Targets {
		if l.Store.Get(target).Counter() != ev.TargetCounters[i] {
			return true
		}
	}
	return false
}

// Step runs one iteration of the event loop's body. advanced reports
// whether a real (non-stale) event fired; more reports whether the sorter
// still had anything to pop (false means the simulation has run out of
// predictable events and the caller should stop).
func (l *EventLoop) Step() (advanced bool, more bool) {
	id, ok := l.Sorter.Pop()
	if !ok {
		return false, false
	}

	ev := l.cache[id]
	if !l.valid[id] || l.isStale(ev) {
		l.StaleCount++
		l.recompute(id)
		return false, true
	}

	l.GlobalTime = ev.Time
	affected := l.Execute(l.Store, id, ev)
	l.EventCount++

	if l.OnEvent != nil {
		l.OnEvent(id, ev, affected)
	}

	seen := make(map[int]bool, len(affected)+1)
	l.invalidateAndRecompute(id, seen)
	for _, p := range affected {
		l.invalidateAndRecompute(p, seen)
	}

	return true, true
}

// Invalidate forces the cached prediction for each given ID to be dropped
// and recomputed, outside of Step's own affected-particle handling. Used
// by the sim layer for event sources that fire independently of the
// scheduler's own pop-and-execute cycle (an event-count-triggered system,
// say), where nothing in the popped event's own Targets/affected list
// would otherwise tell the loop those IDs changed.
func (l *EventLoop) Invalidate(ids...int) {
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		l.invalidateAndRecompute(id, seen)
	}
}

func (l *EventLoop) invalidateAndRecompute(id int, seen map[int]bool) {
	if seen[id] {
		return
	}
	seen[id] = true
	l.Sorter.Invalidate(id)
	l.recompute(id)
}

// Run drives Step until the sorter is exhausted or maxEvents real events
// have fired (maxEvents <= 0 means unbounded).
func (l *EventLoop) Run(maxEvents int) {
	for {
		advanced, more := l.Step()
		if !more {
			return
		}
		if advanced && maxEvents > 0 {
			maxEvents--
			if maxEvents == 0 {
				return
			}
		}
	}
}
