package entities

import (
	"time"
)

// DiscoveryAttempt records one load attempt during bootstrap.
type DiscoveryAttempt struct {
	Candidate Candidate     `json:"candidate"`
	Error     string        `json:"error,omitempty"`
	Status    Status        `json:"status"`
	Duration  time.Duration `json:"duration_ns"`
	Cached    bool          `json:"cached,omitempty"`
}

// Succeeded reports whether the attempt produced a root.
func (a DiscoveryAttempt) Succeeded() bool {
	return a.Error == "" && a.Status.IsSuccess()
}

// LoadReport describes one bootstrap.
type LoadReport struct {
	// StartTime is when bootstrap started.
	StartTime time.Time `json:"start_time"`

	// EndTime is when bootstrap returned.
	EndTime time.Time `json:"end_time"`

	// Selected is the candidate that produced the root, if any.
	Selected *Candidate `json:"selected,omitempty"`

	// Requested is the interface version passed to the entry point.
	Requested Version `json:"requested"`

	// RootID identifies the returned root handle.
	RootID string `json:"root_id,omitempty"`

	Attempts []DiscoveryAttempt `json:"attempts"`

	// Duration is the total bootstrap time.
	Duration time.Duration `json:"duration_ns"`
}

// NewLoadReport starts a report at start.
func NewLoadReport(start time.Time, requested Version) *LoadReport {
	return &LoadReport{StartTime: start, Requested: requested}
}

// Record appends an attempt.
func (r *LoadReport) Record(a DiscoveryAttempt) {
	r.Attempts = append(r.Attempts, a)
}

// Finish stamps the end time and duration.
func (r *LoadReport) Finish(end time.Time) *LoadReport {
	r.EndTime = end
	r.Duration = end.Sub(r.StartTime)
	return r
}

// WithSelected marks c as the candidate that produced root id.
func (r *LoadReport) WithSelected(c Candidate, rootID string) *LoadReport {
	r.Selected = &c
	r.RootID = rootID
	return r
}
