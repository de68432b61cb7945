package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/veriscan-ai/veriscan/internal/api/middleware"
	"github.com/veriscan-ai/veriscan/internal/app"
	"github.com/veriscan-ai/veriscan/internal/services/inference"
	"github.com/veriscan-ai/veriscan/internal/types"
	"github.com/veriscan-ai/veriscan/internal/utils/imageutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	errMissingImage  = errors.New("no image in request")
	errTooManyImages = errors.New("more than one image in request")
	errImageTooLarge = errors.New("image exceeds upload limit")
	errMalformedForm = errors.New("malformed multipart form")
)

// Detect relays a single uploaded image to the inference backend and passes
// its JSON verdict back unchanged.
func Detect(c *gin.Context) {
	app := c.MustGet("app").(*app.App)
	cfg := app.Config()
	requestID := middleware.GetRequestID(c)
	log := app.Logger.With(zap.String("request_id", requestID))

	upload, err := readUpload(c, cfg.MaxUploadSize)
	if err != nil {
		switch {
		case errors.Is(err, errImageTooLarge):
			respondError(c, http.StatusRequestEntityTooLarge, types.ErrImageTooLarge, nil)
		case errors.Is(err, errTooManyImages):
			respondError(c, http.StatusBadRequest, types.ErrNoImageUploaded, "exactly one image must be sent in the image field")
		case errors.Is(err, errMissingImage):
			respondError(c, http.StatusBadRequest, types.ErrNoImageUploaded, nil)
		case errors.Is(err, errMalformedForm):
			respondError(c, http.StatusBadRequest, types.ErrNoImageUploaded, err.Error())
		default:
			log.Error("failed to read upload", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Failed to read upload", nil)
		}
		return
	}

	if cfg.StrictContentType {
		if mime, ok := imageutil.IsImage(upload.Content); !ok {
			log.Info("rejected non-image upload", zap.String("sniffed", mime), zap.String("declared", upload.ContentType))
			respondError(c, http.StatusUnsupportedMediaType, types.ErrUnsupportedImageType, mime)
			return
		}
	}

	body, err := app.Inference().Detect(c.Request.Context(), upload, requestID)
	if err != nil {
		var rejected *inference.RejectedError
		var unavailable *inference.UnavailableError
		switch {
		case errors.As(err, &rejected):
			respondError(c, rejected.StatusCode, types.ErrInferenceFailed, rejected.Details())
		case errors.As(err, &unavailable):
			respondError(c, http.StatusInternalServerError, types.ErrInferenceFailed, unavailable.Err.Error())
		default:
			respondError(c, http.StatusInternalServerError, types.ErrInferenceFailed, err.Error())
		}
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func readUpload(c *gin.Context, maxSize int64) (*types.Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return nil, errImageTooLarge
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) || errors.Is(err, io.EOF) {
			return nil, errMissingImage
		}
		return nil, fmt.Errorf("%w: %v", errMalformedForm, err)
	}

	files := form.File[inference.ImageField]
	switch {
	case len(files) == 0:
		return nil, errMissingImage
	case len(files) > 1:
		return nil, errTooManyImages
	}

	header := files[0]
	if header.Size > maxSize {
		return nil, errImageTooLarge
	}

	content, err := readFileContent(header)
	if err != nil {
		return nil, err
	}

	return &types.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

func readFileContent(file *multipart.FileHeader) ([]byte, error) {
	content, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer content.Close()

	return io.ReadAll(content)
}
