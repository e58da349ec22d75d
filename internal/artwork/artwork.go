// Package artwork validates customer design files and moves them in and out of
// the blob store. Files live under temp/ until an order is placed.
package artwork

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// MaxFileSize is the upload limit in bytes.
const MaxFileSize = 50 << 20 // 50 MB

var (
	ErrFileTooLarge    = errors.New("artwork: file exceeds maximum size of 50MB")
	ErrUnsupportedType = errors.New("artwork: file type not allowed")
	ErrTooManyFiles    = errors.New("artwork: file limit reached")
)

var contentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
	".ai":   "application/postscript",
	".eps":  "application/postscript",
}

// AllowedExtensions lists the accepted artwork file extensions.
var AllowedExtensions = []string{".png", ".jpg", ".jpeg", ".svg", ".pdf", ".ai", ".eps"}

// File describes one uploaded artwork file.
type File struct {
	Path         string `json:"path"`
	FileName     string `json:"file_name"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
	ContentType  string `json:"content_type"`
	URL          string `json:"url,omitempty"`
}

// BlobStore is the external file storage.
type BlobStore interface {
	Upload(ctx context.Context, path, contentType string, size int64, r io.Reader) error
	Delete(ctx context.Context, path string) error
	SignedURL(ctx context.Context, path string, expires time.Duration) (string, error)
}

// Validate checks extension and size. It runs before any storage call, so an
// oversized or unsupported file never reaches the network.
func Validate(name string, size int64) error {
	if size > MaxFileSize {
		return ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := contentTypes[ext]; !ok {
		return fmt.Errorf("%w: %s (accepted: %s)", ErrUnsupportedType, ext, strings.Join(AllowedExtensions, ", "))
	}
	return nil
}

// Service tracks the files uploaded during the current configuration session
// and enforces the file-count limit. The mutex spans the storage call during
// upload so the limit holds under concurrent requests.
type Service struct {
	store    BlobStore
	maxFiles int

	mu    sync.Mutex
	files []File
}

func NewService(store BlobStore, maxFiles int) *Service {
	if maxFiles < 1 {
		maxFiles = 1
	}
	return &Service{store: store, maxFiles: maxFiles}
}

// Upload validates and stores one file, returning its blob path and a one-hour
// signed preview URL. Exceeding the file limit is rejected synchronously, not
// queued.
func (s *Service) Upload(ctx context.Context, originalName string, size int64, r io.Reader) (File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.files) >= s.maxFiles {
		return File{}, ErrTooManyFiles
	}
	if err := Validate(originalName, size); err != nil {
		return File{}, err
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	fileName := storageName(originalName)
	path := "temp/" + fileName

	if err := s.store.Upload(ctx, path, contentTypes[ext], size, r); err != nil {
		return File{}, fmt.Errorf("artwork: upload failed: %w", err)
	}

	url, err := s.store.SignedURL(ctx, path, time.Hour)
	if err != nil {
		// Preview URL is cosmetic; the upload itself succeeded.
		log.Warn().Err(err).Str("path", path).Msg("artwork: failed to sign preview url")
	}

	f := File{
		Path:         path,
		FileName:     fileName,
		OriginalName: originalName,
		Size:         size,
		ContentType:  contentTypes[ext],
		URL:          url,
	}
	s.files = append(s.files, f)

	return f, nil
}

// Remove stops tracking the file and issues a best-effort deletion to the blob
// store. Only files the service currently tracks are deleted; an arbitrary path
// is refused so a client cannot delete blobs it never uploaded. Cleanup
// failures are logged, not returned; a stale temp file is not an error the
// customer can act on.
func (s *Service) Remove(ctx context.Context, path string) bool {
	if !s.Release(path) {
		log.Warn().Str("path", path).Msg("artwork: refusing to delete untracked file")
		return false
	}
	if err := s.store.Delete(ctx, path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("artwork: failed to delete file")
	}
	return true
}

// Release stops tracking the file without deleting the blob. Used when the
// artwork is consumed by a cart item and must survive the session. Reports
// whether the path was tracked.
func (s *Service) Release(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.files {
		if s.files[i].Path == path {
			s.files = append(s.files[:i], s.files[i+1:]...)
			return true
		}
	}
	return false
}

// Files returns the tracked files in upload order.
func (s *Service) Files() []File {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]File, len(s.files))
	copy(out, s.files)
	return out
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

func storageName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	base := strings.TrimSuffix(originalName, filepath.Ext(originalName))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	if len(base) > 30 {
		base = base[:30]
	}

	suffix := uuid.Must(uuid.NewV4()).String()[:8]
	return fmt.Sprintf("%d_%s_%s%s", time.Now().UnixMilli(), suffix, base, ext)
}
