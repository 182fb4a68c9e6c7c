package tasks

import (
	"fmt"

	"github.com/desertthunder/plman/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchTarget Phase = iota
	CheckPresent
	ResolveTracks
	AddTracks
)

func (p Phase) String() string {
	switch p {
	case FetchTarget:
		return "fetch_target"
	case CheckPresent:
		return "check_present"
	case ResolveTracks:
		return "resolve_tracks"
	case AddTracks:
		return "add_tracks"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fetchTargetUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTarget,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching target playlist (%s)...", name),
	}
}

func presentTrackUpdate(step, total int, q models.TrackQuery) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CheckPresent,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Skipping (already exists): %s", step, total, q),
		Data:    q,
	}
}

func resolveTrackUpdate(step, total int, q models.TrackQuery) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Searching: %s", step, total, q),
		Data:    q,
	}
}

func addTracksUpdate(count int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Adding %d tracks to %s...", count, name),
	}
}
