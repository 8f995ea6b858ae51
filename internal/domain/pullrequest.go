package domain

// PullRequestRecord identifies a pull request owned by the hosting system.
// The run only ever reads (existence checks) or writes (create/update) it,
// never deletes it.

type PullRequestRecord struct {
	Number  int    `json:"number"`
	URL     string `json:"url"`
	Branch  string `json:"branch"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	// Created is true when this run created the PR, false when an existing
	// open PR for the same (package, version) pair was updated.
	Created bool `json:"created"`
}

// ReviewVerdict is the pass/fail result of the external reviewer.
type ReviewVerdict string

const (
	ReviewPass ReviewVerdict = "pass"
	ReviewFail ReviewVerdict = "fail"
)

// ReviewReport is the reviewer's result attached to exactly one pull
// request, appended as a comment and never overwriting prior ones.
type ReviewReport struct {
	PRNumber int           `json:"pr_number"`
	Verdict  ReviewVerdict `json:"verdict"`
	Summary  string        `json:"summary"`
	Log      string        `json:"log,omitempty"`
}

// Passed reports whether the reviewer approved the change.
func (r ReviewReport) Passed() bool {
	return r.Verdict == ReviewPass
}
