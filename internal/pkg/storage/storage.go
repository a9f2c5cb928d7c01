// Package storage keeps uploaded images on the local disk.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/eltech/store-backend/internal/config"
	"github.com/eltech/store-backend/internal/pkg/apperr"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Kinds of stored images, each kept in its own directory
const (
	KindProduct  = "product"
	KindCategory = "category"
	KindPost     = "post"
	KindService  = "service"
	KindProfile  = "profile"
)

var (
	ErrNoFile          = apperr.New(apperr.ErrInvalid, "no file provided")
	ErrFileTooLarge    = apperr.New(apperr.ErrInvalid, "file is too large")
	ErrUnsupportedType = apperr.New(apperr.ErrInvalid, "file type is not allowed")
)

// Local stores images under a root directory and serves them under a public prefix
type Local struct {
	root       string
	publicPath string
	maxSize    int64
	allowed    map[string]bool
	logger     *logrus.Logger
}

// NewLocal creates local image storage from the storage and upload config
func NewLocal(cfg *config.Config, logger *logrus.Logger) *Local {
	allowed := make(map[string]bool, len(cfg.Upload.AllowedExtensions))
	for _, ext := range cfg.Upload.AllowedExtensions {
		allowed["."+strings.TrimPrefix(strings.ToLower(ext), ".")] = true
	}
	return &Local{
		root:       cfg.Storage.LocalPath,
		publicPath: strings.Trim(cfg.Storage.PublicURL, "/"),
		maxSize:    cfg.Upload.MaxSize,
		allowed:    allowed,
		logger:     logger,
	}
}

// Root returns the directory served as the public prefix
func (l *Local) Root() string {
	return l.root
}

// SaveImage validates an uploaded image and writes it as <kind>/<uuid><ext>.
// It returns the public path, e.g. uploads/product/<uuid>.png.
func (l *Local) SaveImage(header *multipart.FileHeader, kind string) (string, error) {
	if header == nil {
		return "", ErrNoFile
	}
	if l.maxSize > 0 && header.Size > l.maxSize {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, l.maxSize)
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !l.allowed[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	return l.save(src, kind, ext)
}

func (l *Local) save(src io.Reader, kind, ext string) (string, error) {
	sniff := make([]byte, 512)
	n, err := io.ReadFull(src, sniff)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	sniff = sniff[:n]
	if !strings.HasPrefix(http.DetectContentType(sniff), "image/") {
		return "", fmt.Errorf("%w: content is not an image", ErrUnsupportedType)
	}

	filename := uuid.New().String() + ext
	dir := filepath.Join(l.root, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	fullPath := filepath.Join(dir, filename)
	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.MultiReader(strings.NewReader(string(sniff)), src)); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return path.Join(l.publicPath, kind, filename), nil
}

// Delete removes a stored file by its public path. Missing files and foreign paths are ignored.
func (l *Local) Delete(publicPath string) {
	if publicPath == "" {
		return
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(publicPath, "/"), l.publicPath+"/")
	if rel == publicPath || strings.Contains(rel, "..") {
		return
	}
	if err := os.Remove(filepath.Join(l.root, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		l.logger.WithError(err).WithField("path", publicPath).Warn("Failed to delete stored file")
	}
}
