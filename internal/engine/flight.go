package engine

import "sync"

// flightTable tracks which row ids have a mutation in flight.
// Acquisition never blocks: callers either get the slot or are told no,
// matching the "reject, don't queue" rule for duplicate intents.
type flightTable struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func newFlightTable() *flightTable {
	return &flightTable{inFlight: make(map[string]struct{})}
}

// tryAcquire claims the slot for a key. Returns false if already held.
func (f *flightTable) tryAcquire(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, held := f.inFlight[key]; held {
		return false
	}
	f.inFlight[key] = struct{}{}
	return true
}

// release frees the slot. Must be called exactly once per successful acquire.
func (f *flightTable) release(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.inFlight, key)
}

func (f *flightTable) busy(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, held := f.inFlight[key]
	return held
}

func (f *flightTable) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inFlight)
}
