package driver

// State is a lifecycle stage of a test run.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateCacheHit
	StateQueued
	StatePolling
	StateCompleted
	StateFailed
)

var stateNames = [...]string{
	StateIdle:       "idle",
	StateSubmitting: "submitting",
	StateCacheHit:   "cache_hit",
	StateQueued:     "queued",
	StatePolling:    "polling",
	StateCompleted:  "completed",
	StateFailed:     "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}
