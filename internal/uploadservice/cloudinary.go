package uploadservice

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

func NewCloudinaryStore(cloudName, apiKey, apiSecret string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("could not configure cloudinary: %w", err)
	}

	return &CloudinaryStore{cld: cld, folder: Folder}, nil
}

func (s *CloudinaryStore) Save(ctx context.Context, r io.Reader, filename, contentType string) (*Image, error) {
	res, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       s.folder,
		ResourceType: "image",
	})
	if err != nil {
		return nil, err
	}

	if res.Error.Message != "" {
		return nil, errors.New(res.Error.Message)
	}

	return &Image{URL: res.SecureURL, PublicID: res.PublicID}, nil
}
