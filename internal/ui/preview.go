package ui

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/veriscan-ai/veriscan/internal/utils/imageutil"
)

const defaultPreviewSide = 320

// Preview is a thumbnail of the current selection written to a temp file.
// It lives until Release is called; Release is idempotent.
type Preview struct {
	path          string
	width, height int
	once          sync.Once
	err           error
}

func newPreview(dir string, content []byte, maxSide int) (*Preview, error) {
	img, err := imageutil.Thumbnail(content, maxSide)
	if err != nil {
		return nil, err
	}

	f, err := os.CreateTemp(dir, "veriscan-preview-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create preview file: %w", err)
	}
	path := f.Name()
	f.Close()

	if err := imageutil.SavePNG(path, img); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write preview: %w", err)
	}

	bounds := img.Bounds()
	return &Preview{path: path, width: bounds.Dx(), height: bounds.Dy()}, nil
}

func (p *Preview) Path() string {
	return p.path
}

func (p *Preview) Size() (int, int) {
	return p.width, p.height
}

func (p *Preview) Release() error {
	p.once.Do(func() {
		if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.err = err
		}
	})

	return p.err
}
