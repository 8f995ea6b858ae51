package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/botnk/upkeep/internal/domain"
	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

const (
	// ReportSchemaVersion defines the current schema version for report files
	ReportSchemaVersion = "1.0.0"
	// ReportFilePermissions defines the permissions for report files
	ReportFilePermissions = 0600
	// ReportDirPermissions defines the permissions for the report directory
	ReportDirPermissions = 0700
	// LockTimeout defines the maximum time to wait for a lock
	LockTimeout = 30 * time.Second
	// LockRetryInterval defines the interval between lock retry attempts
	LockRetryInterval = 100 * time.Millisecond
)

// ReportRepository defines the interface for persisting run reports.
type ReportRepository interface {
	Save(ctx context.Context, report *domain.RunReport) error
	Load(ctx context.Context, sessionID string) (*domain.RunReport, error)
	LoadLatest(ctx context.Context) (*domain.RunReport, error)
}

// ReportMetadata contains metadata about the report file
type ReportMetadata struct {
	SchemaVersion string    `json:"schema_version"`
	Checksum      string    `json:"checksum"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ReportWrapper wraps the report with metadata
type ReportWrapper struct {
	Metadata ReportMetadata    `json:"metadata"`
	Report   *domain.RunReport `json:"report"`
}

// JSONReportRepository implements ReportRepository using JSON file storage
// with file locking, so overlapping scheduled runs never corrupt each
// other's reports.
type JSONReportRepository struct {
	fs        afero.Fs
	reportDir string
	mu        sync.RWMutex
}

// NewJSONReportRepository creates a new JSON-based report repository.
func NewJSONReportRepository(fs afero.Fs, reportDir string) ReportRepository {
	if reportDir == "" {
		reportDir = ".upkeep-state"
	}
	return &JSONReportRepository{
		fs:        fs,
		reportDir: reportDir,
	}
}

// Save persists the run report to a JSON file with proper locking.
func (r *JSONReportRepository) Save(ctx context.Context, report *domain.RunReport) error {
	if err := r.fs.MkdirAll(r.reportDir, ReportDirPermissions); err != nil {
		return fmt.Errorf("failed to ensure report directory: %w", err)
	}
	filename := r.reportFilename(report.SessionID)
	lock := flock.New(r.lockFilename(report.SessionID))
	lockCtx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()
	locked, err := r.acquireLock(lockCtx, lock)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("could not acquire lock within timeout")
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to unlock file: %v\n", unlockErr)
		}
	}()
	wrapper := ReportWrapper{
		Metadata: ReportMetadata{
			SchemaVersion: ReportSchemaVersion,
			CreatedAt:     report.StartedAt,
			UpdatedAt:     time.Now(),
		},
		Report: report,
	}
	reportData, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report for checksum: %w", err)
	}
	wrapper.Metadata.Checksum = checksum(reportData)
	data, err := json.MarshalIndent(wrapper, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report wrapper: %w", err)
	}
	// Write atomically using a temp file.
	tempFile := filename + ".tmp"
	if err := afero.WriteFile(r.fs, tempFile, data, ReportFilePermissions); err != nil {
		return fmt.Errorf("failed to write temp report file: %w", err)
	}
	if err := r.fs.Rename(tempFile, filename); err != nil {
		if removeErr := r.fs.Remove(tempFile); removeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to remove temp file: %v\n", removeErr)
		}
		return fmt.Errorf("failed to rename report file: %w", err)
	}
	if err := r.updateLatestLink(filename); err != nil {
		return fmt.Errorf("failed to update latest link: %w", err)
	}
	return nil
}

// Load retrieves a specific run report by session ID with validation.
func (r *JSONReportRepository) Load(ctx context.Context, sessionID string) (*domain.RunReport, error) {
	filename := r.reportFilename(sessionID)
	lock := flock.New(r.lockFilename(sessionID))
	lockCtx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()
	locked, err := r.acquireSharedLock(lockCtx, lock)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire shared lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire shared lock within timeout")
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to unlock file: %v\n", unlockErr)
		}
	}()
	data, err := afero.ReadFile(r.fs, filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("report not found for session %s", sessionID)
		}
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}
	var wrapper ReportWrapper
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report wrapper: %w", err)
	}
	if wrapper.Metadata.SchemaVersion != ReportSchemaVersion {
		return nil, fmt.Errorf("incompatible schema version: expected %s, got %s",
			ReportSchemaVersion, wrapper.Metadata.SchemaVersion)
	}
	reportData, err := json.Marshal(wrapper.Report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report for checksum validation: %w", err)
	}
	if wrapper.Metadata.Checksum != checksum(reportData) {
		return nil, fmt.Errorf("report checksum mismatch: data may be corrupted")
	}
	return wrapper.Report, nil
}

// LoadLatest retrieves the most recent run report.
func (r *JSONReportRepository) LoadLatest(ctx context.Context) (*domain.RunReport, error) {
	r.mu.RLock()
	data, err := afero.ReadFile(r.fs, r.latestLink())
	r.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no latest report found")
		}
		return nil, fmt.Errorf("failed to read latest link: %w", err)
	}
	sessionID := r.extractSessionID(string(data))
	if sessionID == "" {
		return nil, fmt.Errorf("invalid latest link target: %s", string(data))
	}
	return r.Load(ctx, sessionID)
}

func (r *JSONReportRepository) acquireLock(ctx context.Context, lock *flock.Flock) (bool, error) {
	ticker := time.NewTicker(LockRetryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
			locked, err := lock.TryLock()
			if err != nil {
				return false, err
			}
			if locked {
				return true, nil
			}
		}
	}
}

func (r *JSONReportRepository) acquireSharedLock(ctx context.Context, lock *flock.Flock) (bool, error) {
	ticker := time.NewTicker(LockRetryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
			locked, err := lock.TryRLock()
			if err != nil {
				return false, err
			}
			if locked {
				return true, nil
			}
		}
	}
}

func checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func (r *JSONReportRepository) reportFilename(sessionID string) string {
	return filepath.Join(r.reportDir, fmt.Sprintf("run-%s.json", sessionID))
}

func (r *JSONReportRepository) lockFilename(sessionID string) string {
	return filepath.Join(r.reportDir, fmt.Sprintf(".run-%s.lock", sessionID))
}

func (r *JSONReportRepository) latestLink() string {
	return filepath.Join(r.reportDir, "latest.txt")
}

func (r *JSONReportRepository) updateLatestLink(target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	link := r.latestLink()
	tempLink := link + ".tmp"
	if err := afero.WriteFile(r.fs, tempLink, []byte(target), ReportFilePermissions); err != nil {
		return fmt.Errorf("failed to write temp latest link: %w", err)
	}
	if err := r.fs.Rename(tempLink, link); err != nil {
		if removeErr := r.fs.Remove(tempLink); removeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to remove temp link: %v\n", removeErr)
		}
		return fmt.Errorf("failed to update latest link: %w", err)
	}
	return nil
}

func (r *JSONReportRepository) extractSessionID(filename string) string {
	base := filepath.Base(filename)
	if len(base) > 9 && base[:4] == "run-" && base[len(base)-5:] == ".json" {
		return base[4 : len(base)-5]
	}
	return ""
}
