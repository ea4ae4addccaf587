// Package admin contains domain entities for administrative storage operations.
package admin

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Status of a path in an audit report.
type Status string

const (
	StatusLinked  Status = "linked"
	StatusOrphan  Status = "orphan"
	StatusMissing Status = "missing"
)

// FileReference is a media path found in a content row.
type FileReference struct {
	Path      string `json:"path"`
	OwnerType string `json:"ownerType"`
	OwnerID   string `json:"ownerId"`
}

// Owner identifies a row that references a file.
type Owner struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// StorageObject is a single object found in the bucket.
type StorageObject struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"sizeBytes"`
	Folder    string `json:"folder"`
}

// AuditEntry is the classification of one normalized path. Key is the exact
// object key in the bucket and is what a delete request should name; it is
// empty for missing entries.
type AuditEntry struct {
	File      string  `json:"file"`
	Key       string  `json:"key,omitempty"`
	Status    Status  `json:"status"`
	SizeBytes *int64  `json:"sizeBytes,omitempty"`
	Folder    *string `json:"folder,omitempty"`
	Owners    []Owner `json:"owners,omitempty"`
}

// AuditSummary holds the counts of an audit report.
type AuditSummary struct {
	Linked      int   `json:"linked"`
	Orphan      int   `json:"orphan"`
	Missing     int   `json:"missing"`
	OrphanBytes int64 `json:"orphanBytes"`
}

// AuditReport is the full result of a storage audit. Each list is sorted by path.
type AuditReport struct {
	Linked      []AuditEntry `json:"linked"`
	Orphan      []AuditEntry `json:"orphan"`
	Missing     []AuditEntry `json:"missing"`
	Summary     AuditSummary `json:"summary"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// Paths returns the file paths of a list of entries.
func Paths(entries []AuditEntry) []string {
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.File
	}
	return paths
}

// DeleteStatus is the per-path outcome of a delete batch.
type DeleteStatus string

const (
	DeleteStatusDeleted              DeleteStatus = "deleted"
	DeleteStatusSkippedNowReferenced DeleteStatus = "skipped-now-referenced"
	DeleteStatusSkippedNotFound      DeleteStatus = "skipped-not-found"
	DeleteStatusFailedStorageError   DeleteStatus = "failed-storage-error"
	// The path lies outside the audited storage prefix, so it was never an orphan.
	DeleteStatusRejectedOutOfScope DeleteStatus = "rejected-out-of-scope"
)

// DeleteResult reports what happened to one requested path.
type DeleteResult struct {
	File   string       `json:"file"`
	Status DeleteStatus `json:"status"`
	Error  string       `json:"error,omitempty"`
}

// DeleteSummary counts the outcomes of a delete batch.
type DeleteSummary struct {
	Requested int `json:"requested"`
	Deleted   int `json:"deleted"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// DeleteBatchResult is returned for every delete batch. The batch itself never fails.
type DeleteBatchResult struct {
	Results []DeleteResult `json:"results"`
	Summary DeleteSummary  `json:"summary"`
}

// Summarize recomputes the summary from the results.
func (r *DeleteBatchResult) Summarize() {
	s := DeleteSummary{Requested: len(r.Results)}
	for _, res := range r.Results {
		switch res.Status {
		case DeleteStatusDeleted:
			s.Deleted++
		case DeleteStatusSkippedNowReferenced, DeleteStatusSkippedNotFound:
			s.Skipped++
		case DeleteStatusFailedStorageError, DeleteStatusRejectedOutOfScope:
			s.Failed++
		}
	}
	r.Summary = s
}

var (
	// ErrDeleteConflict means a path became referenced between audit and delete.
	ErrDeleteConflict = errors.New("object is referenced by content")
	// ErrOutOfScope rejects deletes outside the configured storage prefix.
	ErrOutOfScope = errors.New("path is outside the audited storage prefix")
	// ErrStorageTransient wraps storage failures during delete. Retrying may succeed.
	ErrStorageTransient = errors.New("storage operation failed")
)

// SourceReadError records a failure reading one input of an audit.
// Page is set for storage listing failures and is 1-based.
type SourceReadError struct {
	Source string
	Page   int
	Err    error
}

func (e *SourceReadError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("read %s page %d: %v", e.Source, e.Page, e.Err)
	}
	return fmt.Sprintf("read %s: %v", e.Source, e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

// IncompleteAuditError is returned instead of a report when any source could
// not be read completely. No partial report is ever produced.
type IncompleteAuditError struct {
	Failures []*SourceReadError
}

func (e *IncompleteAuditError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return "incomplete audit: " + strings.Join(parts, "; ")
}

// FailedSources returns the names of the failed sources, sorted.
func (e *IncompleteAuditError) FailedSources() []string {
	seen := make(map[string]bool, len(e.Failures))
	var names []string
	for _, f := range e.Failures {
		if !seen[f.Source] {
			seen[f.Source] = true
			names = append(names, f.Source)
		}
	}
	sort.Strings(names)
	return names
}

// NewIncompleteAuditError collects the non-nil failures. It returns nil when
// there are none so callers can return it directly.
func NewIncompleteAuditError(failures ...*SourceReadError) error {
	var collected []*SourceReadError
	for _, f := range failures {
		if f != nil {
			collected = append(collected, f)
		}
	}
	if len(collected) == 0 {
		return nil
	}
	return &IncompleteAuditError{Failures: collected}
}
