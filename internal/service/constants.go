package service

import "time"

// Timeout constants for external tool invocations
const (
	// DefaultProbeTimeout is the timeout for version evaluation
	DefaultProbeTimeout = 2 * time.Minute
	// DefaultUpdateTimeout is the timeout for the external updater
	DefaultUpdateTimeout = 30 * time.Minute
	// DefaultReviewTimeout is the timeout for the external reviewer
	DefaultReviewTimeout = 60 * time.Minute
)
