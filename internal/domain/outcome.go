package domain

import "time"

// OutcomeKind tags the result of running the updater for one package.
type OutcomeKind string

const (
	OutcomeNoChange OutcomeKind = "no_change"
	OutcomeUpdated  OutcomeKind = "updated"
	OutcomeFailed   OutcomeKind = "failed"
)

// UpdateOutcome is the typed result of the updater invocation plus change
// inspection. It is produced once per package per run and consumed
// immediately by the publication decision; it is never persisted beyond
// the run report.
type UpdateOutcome struct {
	Kind     OutcomeKind
	Versions VersionSnapshot
	Diff     string
	// Drift marks outcomes where the working tree changed but the version
	// did not (e.g. hash format rewrites). Surfaced as a PR body warning.
	Drift      bool
	FailDetail string
}

// NoChangeOutcome reports that the updater left the tree untouched.
func NoChangeOutcome(versions VersionSnapshot) UpdateOutcome {
	return UpdateOutcome{Kind: OutcomeNoChange, Versions: versions}
}

// UpdatedOutcome reports a material change with its diff.
func UpdatedOutcome(versions VersionSnapshot, diff string, drift bool) UpdateOutcome {
	return UpdateOutcome{Kind: OutcomeUpdated, Versions: versions, Diff: diff, Drift: drift}
}

// FailedOutcome reports an abnormal updater exit.
func FailedOutcome(versions VersionSnapshot, detail string) UpdateOutcome {
	return UpdateOutcome{Kind: OutcomeFailed, Versions: versions, FailDetail: detail}
}

// ProcessResult is the raw result of invoking an external tool. It is
// decoded into typed outcomes at the service boundary and never inspected
// as raw exit codes downstream.
type ProcessResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Elapsed  time.Duration
}

// DecisionKind tags the publication decision for an outcome.
type DecisionKind string

const (
	DecisionSkip    DecisionKind = "skip"
	DecisionPublish DecisionKind = "publish"
)

// PublishDecision is the Publication Decider's verdict: either skip, or
// publish with fully constructed branch, title and body.
type PublishDecision struct {
	Kind       DecisionKind
	BranchName string
	Title      string
	Body       string
	CommitMsg  string
	// SkipReason explains a Skip decision for logging; empty on Publish.
	SkipReason string
}

// Skip returns a skip decision with an operator-readable reason.
func Skip(reason string) PublishDecision {
	return PublishDecision{Kind: DecisionSkip, SkipReason: reason}
}
