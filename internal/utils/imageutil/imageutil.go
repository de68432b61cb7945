package imageutil

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/gabriel-vasile/mimetype"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrNotAnImage = errors.New("content is not a supported image")

// Sniff detects the content type from magic bytes, ignoring whatever the
// sender declared.
func Sniff(content []byte) string {
	return mimetype.Detect(content).String()
}

// IsImage reports whether the magic bytes identify an image/* type.
func IsImage(content []byte) (string, bool) {
	mime := mimetype.Detect(content)
	for m := mime; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return mime.String(), true
		}
	}

	return mime.String(), false
}

// Thumbnail decodes content and scales it so that neither side exceeds
// maxSide, keeping the aspect ratio. Smaller images are returned as is.
func Thumbnail(content []byte, maxSide int) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return img, nil
	}

	if w >= h {
		h = max(1, h*maxSide/w)
		w = maxSide
	} else {
		w = max(1, w*maxSide/h)
		h = maxSide
	}

	return transform.Resize(img, w, h, transform.Linear), nil
}

func SavePNG(path string, img image.Image) error {
	return imgio.Save(path, img, imgio.PNGEncoder())
}
