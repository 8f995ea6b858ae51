package orchestrator

import "time"

const (
	// DefaultPackageTimeout bounds one package pipeline end to end,
	// dominated by the external updater.
	DefaultPackageTimeout = 90 * time.Minute
	// DefaultParallelism is how many package pipelines run at once. Each
	// pipeline holds a full checkout, so this also bounds disk use.
	DefaultParallelism = 4
	// DefaultRetryCount is the number of retries for remote GitHub writes.
	DefaultRetryCount = uint64(3)
	// DefaultRetryDelay is the initial delay for exponential backoff.
	DefaultRetryDelay = 1 * time.Second
	// DirPermissionsDefault is the permission for created work directories.
	DirPermissionsDefault = 0755
)
