package export

import (
	"github.com/matzehuels/adforge/pkg/artifact"
	"github.com/matzehuels/adforge/pkg/errors"
)

// Status is the state of one export.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRendering Status = "rendering"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Terminal reports whether s is a final state.
func (s Status) Terminal() bool { return s == StatusSucceeded || s == StatusFailed }

// Result is the outcome of one export. Succeeded results carry an artifact,
// filename and size; failed results carry an error and no artifact.
type Result struct {
	Status      Status        `json:"status"`
	Success     bool          `json:"success"`
	LayoutID    string        `json:"layoutId"`
	Channel     string        `json:"channel"`
	Format      string        `json:"format,omitempty"`
	Filename    string        `json:"filename,omitempty"`
	ContentType string        `json:"contentType,omitempty"`
	Size        int           `json:"size"`
	Artifact    *artifact.Ref `json:"artifact,omitempty"`
	Error       string        `json:"error,omitempty"`
	Code        errors.Code   `json:"code,omitempty"`
	Err         error         `json:"-"`
}

func (r *Result) fail(err error) {
	r.Status = StatusFailed
	r.Success = false
	r.Artifact = nil
	r.Size = 0
	r.Err = err
	r.Error = errors.UserMessage(err)
	r.Code = errors.GetCode(err)
	if r.Code == "" {
		r.Code = errors.ErrCodeInternal
	}
}

// BatchResult aggregates a multi-format or project export.
type BatchResult struct {
	Results      []Result      `json:"results"`
	SuccessCount int           `json:"successCount"`
	FailureCount int           `json:"failureCount"`
	TotalSize    int           `json:"totalSize"`
	Archive      *artifact.Ref `json:"archive,omitempty"`
	ArchiveError string        `json:"archiveError,omitempty"`
}

func (b *BatchResult) add(r Result) {
	b.Results = append(b.Results, r)
	if r.Success {
		b.SuccessCount++
	} else {
		b.FailureCount++
	}
	b.TotalSize += r.Size
}
