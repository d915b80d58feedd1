package tasks

import "fmt"

// State is the scheduler's position in its lifecycle.
type State int32

const (
	Idle State = iota
	Polling
	Refreshing
	ShuttingDown
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Polling:
		return "polling"
	case Refreshing:
		return "refreshing"
	case ShuttingDown:
		return "shutting_down"
	case Stopped:
		return "stopped"
	default:
		return ""
	}
}

// Update is a progress event emitted by the scheduler.
//
// Sends never block, so a slow consumer misses updates instead of stalling the loop.
type Update struct {
	State   State  // Scheduler state when the event was emitted
	Poll    int    // Number of polls made so far
	Cycle   int    // Number of completed refresh cycles
	Bio     string // Text written, empty for events without a write
	Message string // Human-readable message for display
	Err     error  // Non-fatal error attached to the event
}

func pollUpdate(poll, cycle int) Update {
	return Update{
		State:   Polling,
		Poll:    poll,
		Cycle:   cycle,
		Message: fmt.Sprintf("Polling playback (%d)...", poll),
	}
}

func bioUpdate(poll, cycle int, bio string) Update {
	return Update{
		State:   Polling,
		Poll:    poll,
		Cycle:   cycle,
		Bio:     bio,
		Message: fmt.Sprintf("Bio updated: %s", bio),
	}
}

func skippedUpdate(poll, cycle int, err error) Update {
	return Update{
		State:   Polling,
		Poll:    poll,
		Cycle:   cycle,
		Message: "Skipped malformed playback state",
		Err:     err,
	}
}

func refreshUpdate(poll, cycle int) Update {
	return Update{
		State:   Refreshing,
		Poll:    poll,
		Cycle:   cycle,
		Message: fmt.Sprintf("Access token refreshed (cycle %d)", cycle),
	}
}

func shutdownUpdate(poll, cycle int, bio string) Update {
	return Update{
		State:   ShuttingDown,
		Poll:    poll,
		Cycle:   cycle,
		Bio:     bio,
		Message: "Restoring idle bio...",
	}
}

func stoppedUpdate(poll, cycle int, err error) Update {
	return Update{
		State:   Stopped,
		Poll:    poll,
		Cycle:   cycle,
		Message: "Stopped",
		Err:     err,
	}
}
