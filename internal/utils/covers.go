package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// CoverStore saves uploaded cover images under a fixed directory. Filenames
// are the upload timestamp in milliseconds plus the original extension;
// same-millisecond collisions are an accepted limitation.
type CoverStore struct {
	Dir string
}

// NewCoverStore creates the upload directory if needed.
func NewCoverStore(dir string) (*CoverStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload dir")
	}
	return &CoverStore{Dir: dir}, nil
}

// Save writes the uploaded file and returns the generated filename.
func (s *CoverStore) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	name := fmt.Sprintf("%d%s", time.Now().UnixMilli(), filepath.Ext(header.Filename))

	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", errors.Wrap(err, "create cover file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", errors.Wrap(err, "write cover file")
	}
	return name, nil
}
