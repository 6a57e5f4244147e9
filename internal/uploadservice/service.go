package uploadservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sushihentaime/bloghub/internal/common"
)

var (
	ErrFileTooLarge    = errors.New("file must not be larger than 5MB")
	ErrUnsupportedType = errors.New("only jpeg, png, gif and webp images are allowed")
	ErrEmptyFile       = errors.New("file is empty")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func NewUploadService(store ImageStore, metrics *common.Metrics, logger *slog.Logger) *UploadService {
	return &UploadService{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// Upload checks that r holds an image of at most MaxImageSize bytes and stores it.
// size is the length announced by the client and is only used to reject early.
// The content type is sniffed from the bytes, the filename extension is ignored.
func (s *UploadService) Upload(ctx context.Context, r io.Reader, filename string, size int64) (*Image, error) {
	if size > MaxImageSize {
		return nil, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	if int64(len(data)) > MaxImageSize {
		return nil, ErrFileTooLarge
	}

	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	contentType := http.DetectContentType(data)
	if _, ok := allowedTypes[contentType]; !ok {
		return nil, ErrUnsupportedType
	}

	img, err := s.store.Save(ctx, bytes.NewReader(data), filename, contentType)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	s.metrics.CounterImageUploads.Inc()
	s.logger.Info("image uploaded", slog.String("public_id", img.PublicID), slog.Int("bytes", len(data)))

	return img, nil
}

// extension returns the file extension used for contentType.
func extension(contentType string) string {
	return allowedTypes[contentType]
}
