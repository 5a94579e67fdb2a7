// Package flow holds the upload, search and download controllers. Each
// controller owns its state, mutates it only from its own methods and lets
// the rendering layer observe it through snapshots and subscriptions.
package flow

import (
	"context"
	"fmt"
	"io"
)

// Uploader streams a domains file to the backend, reporting each chunk of
// the response body in arrival order. contentType labels the file part.
type Uploader interface {
	Upload(ctx context.Context, fileName, contentType string, content io.Reader, onChunk func(string)) error
}

// Searcher resolves a keyword to a result locator
type Searcher interface {
	Search(ctx context.Context, keyword string) (string, error)
}

// Downloader fetches the bytes behind a result locator
type Downloader interface {
	Download(ctx context.Context, locator string) ([]byte, error)
}

// Gate reports whether the searchable content is ready
type Gate interface {
	Processed() bool
}

// Progress is the upload completion percentage. Indeterminate is set from
// the start of an upload until the first progress chunk arrives.
type Progress struct {
	Percent       int  `json:"percent"`
	Indeterminate bool `json:"indeterminate"`
}

func (p Progress) String() string {
	if p.Indeterminate {
		return "…"
	}
	return fmt.Sprintf("%d%%", p.Percent)
}

// UploadState is a read-only snapshot of the upload controller
type UploadState struct {
	File      *FileInfo `json:"file,omitempty"`
	Uploading bool      `json:"uploading"`
	Processed bool      `json:"processed"`
	Progress  Progress  `json:"progress"`
	Error     string    `json:"error,omitempty"`
}

// SearchResult is the locator of a server-generated result artifact
type SearchResult struct {
	Keyword string `json:"keyword"`
	Locator string `json:"locator"`
}

// SearchState is a read-only snapshot of the search controller
type SearchState struct {
	Keyword string        `json:"keyword,omitempty"`
	Result  *SearchResult `json:"result,omitempty"`
	Loading bool          `json:"loading"`

	// InputError is the inline validation message next to the search box;
	// Error holds the last backend failure.
	InputError string `json:"input_error,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ValidationError represents a client-side rejection; no request is sent
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// subscribers fans state snapshots out to observers
type subscribers[S any] struct {
	next int
	fns  map[int]func(S)
}

func (s *subscribers[S]) add(fn func(S)) int {
	if s.fns == nil {
		s.fns = make(map[int]func(S))
	}
	s.next++
	s.fns[s.next] = fn
	return s.next
}

func (s *subscribers[S]) remove(id int) {
	delete(s.fns, id)
}

func (s *subscribers[S]) list() []func(S) {
	fns := make([]func(S), 0, len(s.fns))
	for i := 1; i <= s.next; i++ {
		if fn, ok := s.fns[i]; ok {
			fns = append(fns, fn)
		}
	}
	return fns
}
