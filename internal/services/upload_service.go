package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoders
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
)

const (
	ThumbnailMaxSize = 400
	uploadURLPrefix  = "/static/uploads/"
)

var (
	ErrNoFile             = errors.New("no file uploaded")
	ErrFileTooLarge       = errors.New("file too large")
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	ErrInvalidImage       = errors.New("invalid image file")
)

var allowedImageExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

// StoredImage is where an upload landed, as public URL paths.
type StoredImage struct {
	Path          string
	ThumbnailPath string
}

type UploadService struct {
	dir      string
	maxBytes int64
}

func NewUploadService(dir string, maxBytes int64) *UploadService {
	return &UploadService{dir: dir, maxBytes: maxBytes}
}

func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

// AllowedFile reports whether the file name carries an allowed image extension.
func AllowedFile(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return allowedImageExtensions[ext]
}

// SecureFilename keeps ASCII letters, digits, dot, dash and underscore.
// Spaces become underscores; any path components are dropped.
func SecureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "._")
}

// SaveImage validates and stores an uploaded image plus a PNG thumbnail.
func (s *UploadService) SaveImage(filename string, content []byte) (*StoredImage, error) {
	if filename == "" || len(content) == 0 {
		return nil, ErrNoFile
	}
	if int64(len(content)) > s.maxBytes {
		return nil, ErrFileTooLarge
	}
	if !AllowedFile(filename) {
		return nil, ErrFileTypeNotAllowed
	}
	safe := SecureFilename(filename)
	if !AllowedFile(safe) {
		return nil, ErrFileTypeNotAllowed
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, ErrInvalidImage
	}

	name := uuid.NewString() + "_" + safe
	base := strings.TrimSuffix(name, filepath.Ext(name))
	thumbName := "thumb_" + base + ".png"

	if err := writeBytesToFile(filepath.Join(s.dir, name), content); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, resizeToFit(decoded, ThumbnailMaxSize)); err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	if err := writeBytesToFile(filepath.Join(s.dir, thumbName), buf.Bytes()); err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return nil, fmt.Errorf("failed to store thumbnail: %w", err)
	}

	return &StoredImage{
		Path:          uploadURLPrefix + name,
		ThumbnailPath: uploadURLPrefix + thumbName,
	}, nil
}

// resizeToFit scales src down so neither side exceeds maxSize.
func resizeToFit(src image.Image, maxSize int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || (w <= maxSize && h <= maxSize) {
		return src
	}

	scale := float64(maxSize) / float64(w)
	if hs := float64(maxSize) / float64(h); hs < scale {
		scale = hs
	}
	newW := max(1, int(float64(w)*scale))
	newH := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
