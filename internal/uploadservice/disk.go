package uploadservice

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// NewDiskStore creates dir if needed. baseURL is the public address of the server, e.g. http://localhost:4000.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create upload dir: %w", err)
	}

	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) Save(ctx context.Context, r io.Reader, filename, contentType string) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := uuid.NewString() + extension(contentType)

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, err
	}

	return &Image{
		URL:      s.baseURL + "/uploads/" + name,
		PublicID: Folder + "/" + strings.TrimSuffix(name, filepath.Ext(name)),
	}, nil
}
