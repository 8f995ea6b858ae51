package domain

import "fmt"

// Pipeline errors are typed per step so a run can report which step of
// which package failed without parsing messages. Each error is fatal for
// its own package's pipeline only (ReviewError excepted, which is logged
// and leaves the published PR open).

// ProbeError means the target's version expression could not be evaluated.
type ProbeError struct {
	Package string
	Err     error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe failed for %s: %v", e.Package, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// UpdaterError means the external updater exited abnormally. The diff, if
// any, is discarded.
type UpdaterError struct {
	Package string
	Detail  string
	Err     error
}

func (e *UpdaterError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("updater failed for %s: %s", e.Package, e.Detail)
	}
	return fmt.Sprintf("updater failed for %s: %v", e.Package, e.Err)
}

func (e *UpdaterError) Unwrap() error { return e.Err }

// PublishError means the hosting API write failed. The local update work
// is preserved; the next scheduled run retries from unchanged state.
type PublishError struct {
	Package string
	Err     error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish failed for %s: %v", e.Package, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// ReviewError means the reviewer tool itself errored, as opposed to
// reviewing the change and finding problems. Non-fatal to publication.
type ReviewError struct {
	Package  string
	PRNumber int
	Err      error
}

func (e *ReviewError) Error() string {
	return fmt.Sprintf("review failed for %s (PR #%d): %v", e.Package, e.PRNumber, e.Err)
}

func (e *ReviewError) Unwrap() error { return e.Err }
