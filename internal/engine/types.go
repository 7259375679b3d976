package engine

import "fmt"

// EventKind identifies a sync event.
type EventKind int

const (
	RepoRefreshStart EventKind = iota
	RepoRefreshOK
	RepoRefreshFailed
	ChartSkipped
	ChartStart
	ChartSuccess
	ChartFailed
)

func (k EventKind) String() string {
	switch k {
	case RepoRefreshStart:
		return "RepoRefreshStart"
	case RepoRefreshOK:
		return "RepoRefreshOK"
	case RepoRefreshFailed:
		return "RepoRefreshFailed"
	case ChartSkipped:
		return "ChartSkipped"
	case ChartStart:
		return "ChartStart"
	case ChartSuccess:
		return "ChartSuccess"
	case ChartFailed:
		return "ChartFailed"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Skip reasons carried by ChartSkipped events.
const (
	ReasonNoSync      = "no_sync=true"
	ReasonNotSelected = "not selected"
	ReasonLocal       = "local chart"
	ReasonUpToDate    = "up to date"
)

// Event is one step of a sync run. Which fields are set depends on Kind:
// Reason for ChartSkipped, Source for ChartSuccess, Err for the failure kinds.
type Event struct {
	Kind   EventKind
	Chart  string
	Reason string
	Source string
	Err    error
}

// Stats counts chart outcomes of a sync run.
type Stats struct {
	Synced  int
	Failed  int
	Skipped int
}

// SyncResult holds the outcome of a sync operation.
type SyncResult struct {
	Stats
	Events []Event

	// LockfileSaved is true when at least one chart synced and the
	// lockfile was written.
	LockfileSaved bool
}

// OK reports whether every chart either synced or was skipped.
func (r *SyncResult) OK() bool {
	return r.Failed == 0
}

// ChartError pairs a chart with the error it produced.
type ChartError struct {
	Chart string
	Err   error
}

func (e ChartError) Error() string {
	return e.Chart + ": " + e.Err.Error()
}

func (e ChartError) Unwrap() error {
	return e.Err
}
