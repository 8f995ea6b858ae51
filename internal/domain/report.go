package domain

import "time"

// PackageStatus is the per-package result of a run.
type PackageStatus string

const (
	// StatusPublished means a PR was created or updated this run.
	StatusPublished PackageStatus = "published"
	// StatusSkipped means the pipeline completed without publishing
	// (no change, duplicate PR, or guard). Not an error.
	StatusSkipped PackageStatus = "skipped"
	// StatusFailed means the pipeline hit a fatal error for this package.
	StatusFailed PackageStatus = "failed"
)

// PackageResult records one package pipeline's outcome for the run report.
type PackageResult struct {
	Package       string        `json:"package"`
	Status        PackageStatus `json:"status"`
	Before        string        `json:"before,omitempty"`
	After         string        `json:"after,omitempty"`
	SkipReason    string        `json:"skip_reason,omitempty"`
	PRNumber      int           `json:"pr_number,omitempty"`
	PRURL         string        `json:"pr_url,omitempty"`
	ReviewVerdict ReviewVerdict `json:"review_verdict,omitempty"`
	ReviewFailed  bool          `json:"review_failed,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// RunReport aggregates one run's per-package results. A single package
// failure marks the run failed without touching sibling outcomes.
type RunReport struct {
	SessionID  string          `json:"session_id"`
	RunURL     string          `json:"run_url,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Packages   []PackageResult `json:"packages"`
}

// Failed reports whether any package pipeline failed.
func (r *RunReport) Failed() bool {
	for _, p := range r.Packages {
		if p.Status == StatusFailed {
			return true
		}
	}
	return false
}
