package uploadservice

import (
	"context"
	"io"
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"

	"github.com/sushihentaime/bloghub/internal/common"
)

const (
	MaxImageSize int64 = 5 << 20

	// Folder groups every uploaded blog image on the image host.
	Folder = "blogging-images"
)

// Image is a stored image as returned to the client.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// ImageStore persists image bytes and returns where they can be fetched from.
type ImageStore interface {
	Save(ctx context.Context, r io.Reader, filename, contentType string) (*Image, error)
}

type UploadService struct {
	store   ImageStore
	metrics *common.Metrics
	logger  *slog.Logger
}

type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// DiskStore keeps images in a local directory that the HTTP server exposes under /uploads/.
type DiskStore struct {
	dir     string
	baseURL string
}
