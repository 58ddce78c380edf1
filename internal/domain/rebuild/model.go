package rebuild

import "time"

type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is the audit row of one family rebuild.
type Run struct {
	ID               string
	FamilyKey        string
	HeadLeagueID     string
	Status           Status
	Stage            string
	LeaguesProcessed int
	EventsWritten    int
	Warnings         []string
	ErrorMessage     string
	StartedAt        time.Time
	FinishedAt       *time.Time
	TraceID          string
}

// Duration is zero while the run is still in progress.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r Run) Finished() bool {
	return r.Status == StatusSucceeded || r.Status == StatusFailed
}
