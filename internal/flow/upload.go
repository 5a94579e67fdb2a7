package flow

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/yildizm/domainslab/internal/api"
	"github.com/yildizm/domainslab/internal/logger"
	"github.com/yildizm/domainslab/internal/notify"
)

// ProcessedMessage is the notification shown when an upload completes
const ProcessedMessage = "File processed successfully !"

// UploadController owns the selected file and the upload progress
type UploadController struct {
	uploader Uploader
	allowed  []string
	log      *logger.Logger
	notifier notify.Notifier

	mu          sync.Mutex
	state       UploadState
	generation  uint64
	cancel      context.CancelFunc
	subscribers subscribers[UploadState]
}

// NewUploadController creates an upload controller. A nil allowed list
// uses DefaultAllowedExtensions; nil log and notifier discard output.
func NewUploadController(uploader Uploader, allowed []string, log *logger.Logger, notifier notify.Notifier) *UploadController {
	if len(allowed) == 0 {
		allowed = DefaultAllowedExtensions
	}
	if log == nil {
		log = logger.Discard()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &UploadController{
		uploader: uploader,
		allowed:  allowed,
		log:      log,
		notifier: notifier,
	}
}

// State returns a snapshot of the controller state
func (c *UploadController) State() UploadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Processed reports whether the last upload finished; it gates search
func (c *UploadController) Processed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Processed
}

// Subscribe registers fn for every state change and returns a function
// that removes it. fn runs on the goroutine that changed the state.
func (c *UploadController) Subscribe(fn func(UploadState)) func() {
	c.mu.Lock()
	id := c.subscribers.add(fn)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		c.subscribers.remove(id)
		c.mu.Unlock()
	}
}

// Select validates the dropped files and uploads the accepted one,
// blocking until the backend finishes processing. A later Select
// supersedes an upload still in flight.
func (c *UploadController) Select(ctx context.Context, files ...SelectedFile) error {
	file, err := validateSelection(files, c.allowed)
	if err != nil {
		c.log.Warn("rejected selection: %v", err)
		c.update(func(s *UploadState) { s.Error = err.Error() })
		c.notifier.Error(err.Error())
		return err
	}

	uploadCtx, gen := c.begin(ctx, file)
	started := time.Now()
	c.log.InfoWithFields("upload started", []logger.Field{logger.File(file.Name), logger.F("bytes", len(file.Content))})

	err = c.uploader.Upload(uploadCtx, file.Name, file.MIMEType, bytes.NewReader(file.Content), func(chunk string) {
		c.applyChunk(gen, chunk)
	})

	return c.finish(gen, file, started, err)
}

// Cancel aborts an upload in flight; its state is reset to idle
func (c *UploadController) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (c *UploadController) begin(ctx context.Context, file SelectedFile) (context.Context, uint64) {
	uploadCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation
	c.cancel = cancel
	c.state = UploadState{
		File:      file.Info(),
		Uploading: true,
		Progress:  Progress{Indeterminate: true},
	}
	snapshot, fns := c.state, c.subscribers.list()
	c.mu.Unlock()

	publish(snapshot, fns)
	return uploadCtx, gen
}

// applyChunk reflects one progress chunk. Progress never moves backwards
// within an upload and stays inside 0..100.
func (c *UploadController) applyChunk(gen uint64, chunk string) {
	percent, ok := api.ParseProgressChunk(chunk)
	if !ok {
		c.log.Debug("ignoring non-progress chunk %q", chunk)
		return
	}
	percent = max(0, min(100, percent))

	c.mu.Lock()
	if gen != c.generation || !c.state.Uploading {
		c.mu.Unlock()
		return
	}
	if !c.state.Progress.Indeterminate && percent < c.state.Progress.Percent {
		c.mu.Unlock()
		return
	}
	c.state.Progress = Progress{Percent: percent}
	snapshot, fns := c.state, c.subscribers.list()
	c.mu.Unlock()

	publish(snapshot, fns)
}

func (c *UploadController) finish(gen uint64, file SelectedFile, started time.Time, err error) error {
	c.mu.Lock()
	if gen != c.generation {
		// superseded by a newer selection, which owns the state now
		c.mu.Unlock()
		c.log.Debug("discarding result of superseded upload of %s", file.Name)
		return err
	}
	canceled := err != nil && api.IsCanceled(err)
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state.Uploading = false
	switch {
	case err == nil:
		c.state.Progress = Progress{Percent: 100}
		c.state.Processed = true
	case canceled:
		c.state.Progress = Progress{}
	default:
		c.state.Error = api.Message(err)
	}
	snapshot, fns := c.state, c.subscribers.list()
	c.mu.Unlock()

	publish(snapshot, fns)

	fields := []logger.Field{logger.File(file.Name), logger.Duration(time.Since(started))}
	switch {
	case err == nil:
		c.log.InfoWithFields("upload processed", fields)
		c.notifier.Success(ProcessedMessage)
	case canceled:
		c.log.InfoWithFields("upload canceled", fields)
	default:
		c.log.ErrorWithFields("upload failed", append(fields, logger.Error(err)))
		c.notifier.Error(snapshot.Error)
	}

	return err
}

func (c *UploadController) update(fn func(*UploadState)) {
	c.mu.Lock()
	fn(&c.state)
	snapshot, fns := c.state, c.subscribers.list()
	c.mu.Unlock()

	publish(snapshot, fns)
}

func publish[S any](snapshot S, fns []func(S)) {
	for _, fn := range fns {
		fn(snapshot)
	}
}
