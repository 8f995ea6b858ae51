package domain

import (
	"github.com/Masterminds/semver/v3"
)

// IsUpgrade reports whether after is a strict semver upgrade over before.
// The second return value is false when either string does not parse as a
// semantic version, in which case the caller must not draw conclusions
// about ordering: the core comparison contract is plain string equality,
// and ordering is only an optional guard on top of it.
func IsUpgrade(before, after string) (upgrade bool, comparable bool) {
	b, err := semver.NewVersion(before)
	if err != nil {
		return false, false
	}
	a, err := semver.NewVersion(after)
	if err != nil {
		return false, false
	}
	return a.GreaterThan(b), true
}
