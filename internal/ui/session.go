// Package ui holds the state behind the detection panel: one selected image,
// its preview, and either a verdict or an error.
package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/veriscan-ai/veriscan/internal/types"
	"github.com/veriscan-ai/veriscan/internal/utils/imageutil"
	"github.com/veriscan-ai/veriscan/pkg/client"
)

var (
	ErrNoSelection = errors.New("no image selected")
	ErrBusy        = errors.New("analysis already in progress")
	ErrClosed      = errors.New("session is closed")
)

type Detector interface {
	Detect(ctx context.Context, filename, contentType string, content []byte) (*types.DetectionResult, error)
}

type Selection struct {
	Name        string
	ContentType string
	Size        int64
}

// State is a snapshot of the session. Result and Error are never both set.
type State struct {
	Selection   *Selection
	PreviewPath string
	Result      *types.DetectionResult
	Error       string
	Analyzing   bool
}

func (s State) CanAnalyze() bool {
	return s.Selection != nil && !s.Analyzing
}

type Session struct {
	mu sync.Mutex

	detector    Detector
	previewDir  string
	previewSide int

	selection *Selection
	content   []byte
	preview   *Preview
	result    *types.DetectionResult
	errMsg    string
	analyzing bool
	closed    bool

	// bumped on every selection change so a late verdict for a replaced
	// image is dropped
	generation uint64
}

type Option func(*Session)

func WithPreviewDir(dir string) Option {
	return func(s *Session) {
		s.previewDir = dir
	}
}

func WithPreviewSide(side int) Option {
	return func(s *Session) {
		s.previewSide = side
	}
}

func NewSession(detector Detector, opts ...Option) *Session {
	s := &Session{
		detector:    detector,
		previewSide: defaultPreviewSide,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Select replaces the current selection, clearing any result or error.
// Content that cannot be decoded as an image is still selected, just
// without a preview.
func (s *Session) Select(name string, content []byte) error {
	preview, _ := newPreview(s.previewDir, content, s.previewSide)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		if preview != nil {
			preview.Release()
		}
		return ErrClosed
	}

	released := s.releasePreviewLocked()
	s.generation++
	s.selection = &Selection{
		Name:        name,
		ContentType: imageutil.Sniff(content),
		Size:        int64(len(content)),
	}
	s.content = content
	s.preview = preview
	s.result = nil
	s.errMsg = ""

	return released
}

func (s *Session) SelectFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	return s.Select(filepath.Base(path), content)
}

// Analyze submits the selection. It is a no-op returning ErrNoSelection or
// ErrBusy when nothing is selected or a submission is already in flight.
func (s *Session) Analyze(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.selection == nil {
		s.mu.Unlock()
		return ErrNoSelection
	}
	if s.analyzing {
		s.mu.Unlock()
		return ErrBusy
	}

	s.analyzing = true
	s.errMsg = ""
	gen := s.generation
	name, contentType, content := s.selection.Name, s.selection.ContentType, s.content
	s.mu.Unlock()

	result, err := s.detector.Detect(ctx, name, contentType, content)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.analyzing = false
	if gen != s.generation {
		return nil
	}

	if err != nil {
		s.result = nil
		s.errMsg = errorMessage(err)
		return err
	}

	s.result = result
	s.errMsg = ""
	return nil
}

// Reset clears selection, preview, result and error in one step.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.releasePreviewLocked()
	s.generation++
	s.selection = nil
	s.content = nil
	s.result = nil
	s.errMsg = ""

	return err
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State{
		Result:    s.result,
		Error:     s.errMsg,
		Analyzing: s.analyzing,
	}
	if s.selection != nil {
		sel := *s.selection
		state.Selection = &sel
	}
	if s.preview != nil {
		state.PreviewPath = s.preview.Path()
	}

	return state
}

// Close releases the preview. The session cannot be used afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return s.releasePreviewLocked()
}

func (s *Session) releasePreviewLocked() error {
	if s.preview == nil {
		return nil
	}

	err := s.preview.Release()
	s.preview = nil
	return err
}

func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	if msg := err.Error(); msg != "" {
		return msg
	}

	return client.GenericFailureMessage
}
