// Package uploadflow runs the upload and replace workflow, including the
// duplicate-detection path: a conflicting upload is resolved through a
// follow-up lookup and an explicit user decision to replace the existing
// record or pick a different file.
package uploadflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/paperless/paperless-go/client"
)

// DefaultProcessingDelay is the grace period held in the processing phase
// after the backend accepts an upload, giving post-processing a head start
// before the record is shown as final.
const DefaultProcessingDelay = 500 * time.Millisecond

// Progress checkpoints for the two network phases.
const (
	progressUploading  = 30
	progressProcessing = 70
	progressDone       = 100
)

// Backend is the slice of the API client the resolver needs.
// *client.Client satisfies it.
type Backend interface {
	UploadFile(ctx context.Context, req client.UploadRequest) (*client.FileMetadata, error)
	UpdateFile(ctx context.Context, id int64, req client.UpdateRequest) (*client.FileMetadata, error)
	ListFiles(ctx context.Context, params client.SearchParams) ([]client.FileMetadata, error)
}

// Resolver owns one upload form's state. Create with New.
type Resolver struct {
	backend Backend
	delay   time.Duration
	logger  zerolog.Logger

	mu       sync.Mutex
	progress client.UploadProgress
	result   *client.FileMetadata
	conflict *client.DuplicateFileInfo

	// pending selection held for a replace decision
	pendingName   string
	pendingAuthor string
	pendingData   []byte

	// rejected pair remembered across select-new so re-picking the same
	// file re-raises the conflict locally
	rejected         *client.DuplicateFileInfo
	rejectedName     string
	rejectedAuthor   string
	hasRejectedEntry bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithProcessingDelay overrides the post-acceptance grace period.
func WithProcessingDelay(d time.Duration) Option {
	return func(r *Resolver) {
		if d >= 0 {
			r.delay = d
		}
	}
}

// WithLogger routes resolver diagnostics to a specific logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New builds an idle resolver.
func New(backend Backend, opts ...Option) *Resolver {
	r := &Resolver{
		backend:  backend,
		delay:    DefaultProcessingDelay,
		logger:   log.Logger,
		progress: client.UploadProgress{Status: client.UploadIdle},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Upload submits a file. A blank author is rejected before any network
// call. Re-selecting the exact (filename, author) pair the user previously
// walked away from re-raises the remembered conflict with no round-trip;
// any other selection clears that memory and uploads normally.
func (r *Resolver) Upload(ctx context.Context, filename string, content io.Reader, author string) error {
	if author == "" {
		err := client.NewValidationError(errors.New("author is required"))
		r.setError("Author is required before uploading.", nil)
		return err
	}
	if filename == "" {
		err := client.NewValidationError(errors.New("filename is required"))
		r.setError("Select a file to upload.", nil)
		return err
	}

	r.mu.Lock()
	if r.hasRejectedEntry && filename == r.rejectedName && author == r.rejectedAuthor {
		conflict := *r.rejected
		r.conflict = &conflict
		r.pendingName, r.pendingAuthor = filename, author
		// content for a re-raised conflict still needs to be held for a
		// possible replace decision
		r.mu.Unlock()
		data, err := io.ReadAll(content)
		if err != nil {
			r.setError(fmt.Sprintf("Could not read %s: %v", filename, err), nil)
			return err
		}
		r.mu.Lock()
		r.pendingData = data
		r.progress = client.UploadProgress{
			Status:  client.UploadError,
			Message: duplicateMessage(filename, author),
		}
		r.mu.Unlock()
		return nil
	}
	r.rejected = nil
	r.hasRejectedEntry = false
	r.mu.Unlock()

	data, err := io.ReadAll(content)
	if err != nil {
		r.setError(fmt.Sprintf("Could not read %s: %v", filename, err), nil)
		return err
	}

	r.mu.Lock()
	r.result = nil
	r.conflict = nil
	r.pendingName, r.pendingAuthor, r.pendingData = filename, author, data
	r.progress = client.UploadProgress{
		Status:   client.UploadUploading,
		Progress: progressUploading,
		Message:  fmt.Sprintf("Uploading %s...", filename),
	}
	r.mu.Unlock()

	rec, err := r.backend.UploadFile(ctx, client.UploadRequest{
		Filename: filename,
		Content:  bytes.NewReader(data),
		Author:   author,
	})
	if err != nil {
		if client.IsConflict(err) {
			return r.enterConflict(ctx, filename, author)
		}
		r.setError(fmt.Sprintf("Upload failed: %v", err), err)
		return err
	}

	return r.finish(ctx, rec, "Processing document...", fmt.Sprintf("%s uploaded.", filename))
}

// Replace re-submits the held selection as an in-place update of the
// conflicting record. It is blocked until the conflict carries a resolved
// existing id; replacing against an unknown record is a validation error,
// not a request.
func (r *Resolver) Replace(ctx context.Context) error {
	r.mu.Lock()
	if r.conflict == nil {
		r.mu.Unlock()
		return client.NewValidationError(errors.New("no duplicate conflict to replace"))
	}
	if r.conflict.ExistingFileID == 0 {
		r.mu.Unlock()
		return client.NewValidationError(errors.New("conflicting record id unresolved, replace unavailable"))
	}
	id := r.conflict.ExistingFileID
	filename, author, data := r.pendingName, r.pendingAuthor, r.pendingData
	r.conflict = nil
	r.rejected = nil
	r.hasRejectedEntry = false
	r.progress = client.UploadProgress{
		Status:   client.UploadUploading,
		Progress: progressUploading,
		Message:  fmt.Sprintf("Replacing %s...", filename),
	}
	r.mu.Unlock()

	rec, err := r.backend.UpdateFile(ctx, id, client.UpdateRequest{
		Filename: filename,
		Content:  bytes.NewReader(data),
		Author:   author,
	})
	if err != nil {
		r.setError(fmt.Sprintf("Replace failed: %v", err), err)
		return err
	}
	return r.finish(ctx, rec, "Processing replacement...", fmt.Sprintf("%s replaced.", filename))
}

// SelectNew abandons the conflicting selection so a different file can be
// chosen. The rejected (filename, author) pair is remembered: picking it
// again re-raises the same conflict locally.
func (r *Resolver) SelectNew() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflict != nil {
		remembered := *r.conflict
		r.rejected = &remembered
		r.rejectedName, r.rejectedAuthor = r.pendingName, r.pendingAuthor
		r.hasRejectedEntry = true
	}
	r.conflict = nil
	r.pendingName, r.pendingAuthor, r.pendingData = "", "", nil
	r.progress = client.UploadProgress{Status: client.UploadIdle}
}

// Reset returns the resolver to a blank idle state, conflict memory
// included.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = client.UploadProgress{Status: client.UploadIdle}
	r.result = nil
	r.conflict = nil
	r.pendingName, r.pendingAuthor, r.pendingData = "", "", nil
	r.rejected = nil
	r.rejectedName, r.rejectedAuthor = "", ""
	r.hasRejectedEntry = false
}

// Progress returns the current upload session state.
func (r *Resolver) Progress() client.UploadProgress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress
}

// Conflict returns the active duplicate conflict, or nil.
func (r *Resolver) Conflict() *client.DuplicateFileInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflict == nil {
		return nil
	}
	c := *r.conflict
	return &c
}

// Result returns the record produced by the last successful upload or
// replace, or nil.
func (r *Resolver) Result() *client.FileMetadata {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

// enterConflict handles a 409: surface the duplicate, then try to resolve
// the existing record's id with a filtered lookup. A failed lookup leaves
// the id at 0; the conflict is surfaced regardless.
func (r *Resolver) enterConflict(ctx context.Context, filename, author string) error {
	conflict := &client.DuplicateFileInfo{Filename: filename, Author: author}

	records, err := r.backend.ListFiles(ctx, client.SearchParams{Search: filename, Author: author})
	if err != nil {
		r.logger.Warn().Err(err).Str("filename", filename).Msg("duplicate lookup failed")
	} else {
		for i := range records {
			if records[i].Filename == filename && records[i].Author == author {
				conflict.ExistingFileID = records[i].ID
				break
			}
		}
	}

	r.mu.Lock()
	r.conflict = conflict
	r.progress = client.UploadProgress{
		Status:  client.UploadError,
		Message: duplicateMessage(filename, author),
	}
	r.mu.Unlock()
	return nil
}

// finish walks accepted uploads through processing to success.
func (r *Resolver) finish(ctx context.Context, rec *client.FileMetadata, processingMsg, doneMsg string) error {
	r.mu.Lock()
	r.progress = client.UploadProgress{
		Status:   client.UploadProcessing,
		Progress: progressProcessing,
		Message:  processingMsg,
	}
	r.mu.Unlock()

	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r.mu.Lock()
	r.result = rec
	r.conflict = nil
	r.pendingName, r.pendingAuthor, r.pendingData = "", "", nil
	r.progress = client.UploadProgress{
		Status:   client.UploadSuccess,
		Progress: progressDone,
		Message:  doneMsg,
	}
	r.mu.Unlock()
	return nil
}

func (r *Resolver) setError(msg string, err error) {
	if err != nil {
		r.logger.Debug().Err(err).Msg("upload failed")
	}
	r.mu.Lock()
	r.progress = client.UploadProgress{Status: client.UploadError, Message: msg}
	r.mu.Unlock()
}

func duplicateMessage(filename, author string) string {
	return fmt.Sprintf("A file named %q by %s already exists.", filename, author)
}
