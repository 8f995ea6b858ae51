package domain

// PackageTarget is one tracked package whose pinned version the run keeps
// current. Targets are supplied by static configuration and immutable for
// the duration of a run.

type PackageTarget struct {
	// Name uniquely identifies the package within a run, e.g. "zed-editor".
	Name string `mapstructure:"name" json:"name"`
	// Attr is the expression used to evaluate the package's version, e.g.
	// a nix attribute path. Defaults to Name when empty.
	Attr string `mapstructure:"attr" json:"attr"`
	// Subpath restricts the diff to the files the updater may touch,
	// relative to the repository root. Empty means the whole tree.
	Subpath string `mapstructure:"subpath" json:"subpath,omitempty"`
}

// VersionAttr returns the expression used to read the target's version.
func (t PackageTarget) VersionAttr() string {
	if t.Attr != "" {
		return t.Attr
	}
	return t.Name
}

// VersionSnapshot holds the version strings captured around the updater
// invocation. Versions are opaque; the core only compares them for
// equality.
type VersionSnapshot struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// Changed reports whether the after-version differs from the baseline.
// Exact string comparison, no normalization.
func (s VersionSnapshot) Changed() bool {
	return s.After != s.Before
}
