package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

var (
	ErrImageTooLarge    = errors.New("image too large")
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageNotFound    = errors.New("image not found")
)

var allowedMimes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload is an image received from a client, not yet persisted.
type Upload struct {
	Filename string
	Size     int64
	Data     io.Reader
}

// Stored describes a file that was written to the store.
type Stored struct {
	Name     string
	MimeType string
	Width    int
	Height   int
}

// ImageStorage keeps board images on the local filesystem under rootPath,
// one directory per board.
type ImageStorage struct {
	rootPath string
	maxSize  int64
}

func NewImageStorage(rootPath string, maxSize int64) (*ImageStorage, error) {
	p, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve image directory %s: %w", rootPath, err)
	}
	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory %s: %w", p, err)
	}
	return &ImageStorage{rootPath: p, maxSize: maxSize}, nil
}

// Save validates the upload and writes it as <boardID>/<uuid><ext>. The
// returned name is relative to the storage root.
func (s *ImageStorage) Save(boardID uint, upload *Upload) (*Stored, error) {
	if upload.Size > s.maxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrImageTooLarge, upload.Size, s.maxSize)
	}

	// Read one byte past the limit so oversized bodies with a lying Size are caught.
	data, err := io.ReadAll(io.LimitReader(upload.Data, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrImageTooLarge, s.maxSize)
	}

	mtype := mimetype.Detect(data)
	ext, ok := allowedMimes[mtype.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s (file: %s)", ErrUnsupportedImage, mtype.String(), upload.Filename)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a decodable image", ErrUnsupportedImage, upload.Filename)
	}

	name := filepath.Join(strconv.FormatUint(uint64(boardID), 10), uuid.NewString()+ext)
	fullPath := filepath.Join(s.rootPath, name)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create board image directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write image: %w", err)
	}

	return &Stored{
		Name:     filepath.ToSlash(name),
		MimeType: mtype.String(),
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}

// Open returns the stored file and its content type.
func (s *ImageStorage) Open(name string) (io.ReadCloser, string, error) {
	fullPath, err := s.resolve(name)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%w: %s", ErrImageNotFound, name)
		}
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to detect image type: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to rewind image: %w", err)
	}
	return f, mtype.String(), nil
}

// Delete removes a stored image. Missing files are not an error.
func (s *ImageStorage) Delete(name string) error {
	fullPath, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	// The board directory is dropped once it is empty; a non-empty one stays.
	if dir := filepath.Dir(fullPath); dir != s.rootPath {
		os.Remove(dir)
	}
	return nil
}

func (s *ImageStorage) resolve(name string) (string, error) {
	fullPath := filepath.Join(s.rootPath, filepath.FromSlash(name))
	rel, err := filepath.Rel(s.rootPath, fullPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, name)
	}
	return fullPath, nil
}
