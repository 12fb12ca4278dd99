package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PublicPrefix is the URL path uploaded images are served under.
const PublicPrefix = "/uploads"

var (
	ErrImageTooLarge = errors.New("image is too large")
	ErrImageType     = errors.New("invalid image format: only JPEG, PNG, WEBP and HEIC are allowed")
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

// ImageStore writes uploaded report images to a local directory under
// random, collision-free names.
type ImageStore struct {
	dir      string
	maxBytes int64
}

func NewImageStore(dir string, maxBytes int64) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &ImageStore{dir: dir, maxBytes: maxBytes}, nil
}

// Save validates and persists the uploaded file and returns its public
// reference (/uploads/<uuid>.<ext>). The bytes go to a temp file first and
// are renamed into place, so a failed write never leaves a visible file.
func (s *ImageStore) Save(fh *multipart.FileHeader) (string, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", ErrImageTooLarge
	}
	ext, ok := allowedImageTypes[strings.ToLower(fh.Header.Get("Content-Type"))]
	if !ok {
		return "", ErrImageType
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := uuid.New().String() + ext
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	reader := io.Reader(src)
	if s.maxBytes > 0 {
		reader = io.LimitReader(src, s.maxBytes+1)
	}
	n, copyErr := io.Copy(tmp, reader)
	closeErr := tmp.Close()
	if copyErr == nil && s.maxBytes > 0 && n > s.maxBytes {
		copyErr = ErrImageTooLarge
	}
	if copyErr != nil || closeErr != nil {
		os.Remove(tmpPath)
		if copyErr != nil {
			if errors.Is(copyErr, ErrImageTooLarge) {
				return "", copyErr
			}
			return "", fmt.Errorf("failed to write image: %w", copyErr)
		}
		return "", fmt.Errorf("failed to write image: %w", closeErr)
	}

	if err := os.Rename(tmpPath, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	return path.Join(PublicPrefix, name), nil
}
