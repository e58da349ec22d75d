package artwork_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkrunner/storefront/internal/artwork"
)

type mockBlobStore struct {
	uploadFunc func(ctx context.Context, path, contentType string, size int64, r io.Reader) error
	deleteFunc func(ctx context.Context, path string) error
	signFunc   func(ctx context.Context, path string, expires time.Duration) (string, error)

	uploads []string
	deletes []string
}

func (m *mockBlobStore) Upload(ctx context.Context, path, contentType string, size int64, r io.Reader) error {
	m.uploads = append(m.uploads, path)
	if m.uploadFunc != nil {
		return m.uploadFunc(ctx, path, contentType, size, r)
	}
	return nil
}

func (m *mockBlobStore) Delete(ctx context.Context, path string) error {
	m.deletes = append(m.deletes, path)
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, path)
	}
	return nil
}

func (m *mockBlobStore) SignedURL(ctx context.Context, path string, expires time.Duration) (string, error) {
	if m.signFunc != nil {
		return m.signFunc(ctx, path, expires)
	}
	return "https://blobs.example.com/" + path, nil
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		size     int64
		wantErr  error
	}{
		{name: "png accepted", fileName: "logo.png", size: 1024},
		{name: "uppercase extension accepted", fileName: "LOGO.PNG", size: 1024},
		{name: "vector pdf accepted", fileName: "print-ready.pdf", size: 10 << 20},
		{name: "illustrator accepted", fileName: "source.ai", size: 1024},
		{name: "at the size limit", fileName: "big.jpg", size: artwork.MaxFileSize},
		{name: "over the size limit", fileName: "huge.jpg", size: artwork.MaxFileSize + 1, wantErr: artwork.ErrFileTooLarge},
		{name: "executable rejected", fileName: "totally-art.exe", size: 1024, wantErr: artwork.ErrUnsupportedType},
		{name: "no extension rejected", fileName: "mystery", size: 1024, wantErr: artwork.ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := artwork.Validate(tt.fileName, tt.size)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestService_Upload(t *testing.T) {
	ctx := context.Background()
	store := &mockBlobStore{}
	svc := artwork.NewService(store, 5)

	file, err := svc.Upload(ctx, "My Cool Logo (final).png", 2048, strings.NewReader("png bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(file.Path, "temp/"))
	assert.True(t, strings.HasSuffix(file.FileName, ".png"))
	assert.NotContains(t, file.FileName, " ")
	assert.NotContains(t, file.FileName, "(")
	assert.Equal(t, "My Cool Logo (final).png", file.OriginalName)
	assert.Equal(t, int64(2048), file.Size)
	assert.Equal(t, "image/png", file.ContentType)
	assert.Equal(t, "https://blobs.example.com/"+file.Path, file.URL)

	require.Len(t, store.uploads, 1)
	assert.Equal(t, file.Path, store.uploads[0])
	assert.Equal(t, []artwork.File{file}, svc.Files())
}

func TestService_Upload_UniqueStorageNames(t *testing.T) {
	ctx := context.Background()
	svc := artwork.NewService(&mockBlobStore{}, 5)

	first, err := svc.Upload(ctx, "logo.png", 1024, strings.NewReader("a"))
	require.NoError(t, err)
	second, err := svc.Upload(ctx, "logo.png", 1024, strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first.Path, second.Path)
}

func TestService_Upload_RejectsBeforeStorageCall(t *testing.T) {
	ctx := context.Background()
	store := &mockBlobStore{}
	svc := artwork.NewService(store, 5)

	_, err := svc.Upload(ctx, "huge.png", artwork.MaxFileSize+1, strings.NewReader(""))
	assert.ErrorIs(t, err, artwork.ErrFileTooLarge)

	_, err = svc.Upload(ctx, "malware.exe", 1024, strings.NewReader(""))
	assert.ErrorIs(t, err, artwork.ErrUnsupportedType)

	// rejected files never reach the blob store
	assert.Empty(t, store.uploads)
	assert.Empty(t, svc.Files())
}

func TestService_Upload_FileLimit(t *testing.T) {
	ctx := context.Background()
	store := &mockBlobStore{}
	svc := artwork.NewService(store, 2)

	_, err := svc.Upload(ctx, "one.png", 1024, strings.NewReader("a"))
	require.NoError(t, err)
	_, err = svc.Upload(ctx, "two.png", 1024, strings.NewReader("b"))
	require.NoError(t, err)

	_, err = svc.Upload(ctx, "three.png", 1024, strings.NewReader("c"))
	assert.ErrorIs(t, err, artwork.ErrTooManyFiles)
	assert.Len(t, store.uploads, 2)
}

func TestService_Upload_StorageFailure(t *testing.T) {
	ctx := context.Background()
	store := &mockBlobStore{
		uploadFunc: func(ctx context.Context, path, contentType string, size int64, r io.Reader) error {
			return errors.New("access denied")
		},
	}
	svc := artwork.NewService(store, 5)

	_, err := svc.Upload(ctx, "logo.png", 1024, strings.NewReader("a"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, artwork.ErrFileTooLarge)
	assert.Empty(t, svc.Files())
}

func TestService_Upload_SignFailureIsCosmetic(t *testing.T) {
	ctx := context.Background()
	store := &mockBlobStore{
		signFunc: func(ctx context.Context, path string, expires time.Duration) (string, error) {
			return "", errors.New("signing key unavailable")
		},
	}
	svc := artwork.NewService(store, 5)

	file, err := svc.Upload(ctx, "logo.png", 1024, strings.NewReader("a"))
	require.NoError(t, err)
	assert.Empty(t, file.URL)
	assert.Len(t, svc.Files(), 1)
}

func TestService_Remove(t *testing.T) {
	ctx := context.Background()
	store := &mockBlobStore{}
	svc := artwork.NewService(store, 5)

	file, err := svc.Upload(ctx, "logo.png", 1024, strings.NewReader("a"))
	require.NoError(t, err)

	assert.True(t, svc.Remove(ctx, file.Path))

	assert.Empty(t, svc.Files())
	assert.Equal(t, []string{file.Path}, store.deletes)
}

func TestService_Remove_UntrackedPathIsRefused(t *testing.T) {
	ctx := context.Background()
	store := &mockBlobStore{}
	svc := artwork.NewService(store, 5)

	_, err := svc.Upload(ctx, "logo.png", 1024, strings.NewReader("a"))
	require.NoError(t, err)

	// a path the session never uploaded must not reach the blob store
	assert.False(t, svc.Remove(ctx, "orders/999_paid_design.png"))
	assert.Empty(t, store.deletes)
	assert.Len(t, svc.Files(), 1)
}

func TestService_Remove_DeletionFailureStopsTracking(t *testing.T) {
	ctx := context.Background()
	store := &mockBlobStore{
		deleteFunc: func(ctx context.Context, path string) error {
			return errors.New("access denied")
		},
	}
	svc := artwork.NewService(store, 5)

	file, err := svc.Upload(ctx, "logo.png", 1024, strings.NewReader("a"))
	require.NoError(t, err)

	// cleanup is best-effort; the file is forgotten either way
	svc.Remove(ctx, file.Path)
	assert.Empty(t, svc.Files())
}

func TestService_Release(t *testing.T) {
	ctx := context.Background()
	store := &mockBlobStore{}
	svc := artwork.NewService(store, 2)

	file, err := svc.Upload(ctx, "logo.png", 1024, strings.NewReader("a"))
	require.NoError(t, err)

	assert.True(t, svc.Release(file.Path))
	assert.False(t, svc.Release(file.Path))

	// the blob stays put and the slot frees up
	assert.Empty(t, store.deletes)
	assert.Empty(t, svc.Files())
	_, err = svc.Upload(ctx, "next.png", 1024, strings.NewReader("b"))
	assert.NoError(t, err)
}

func TestService_ConcurrentUploadsRespectLimit(t *testing.T) {
	ctx := context.Background()
	store := &mockBlobStore{}
	svc := artwork.NewService(store, 3)

	// the file limit must hold when uploads arrive on separate goroutines
	// (run with -race)
	var wg sync.WaitGroup
	var rejected atomic.Int32
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Upload(ctx, "logo.png", 1024, strings.NewReader("a"))
			if errors.Is(err, artwork.ErrTooManyFiles) {
				rejected.Add(1)
			} else {
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, svc.Files(), 3)
	assert.Len(t, store.uploads, 3)
	assert.Equal(t, int32(5), rejected.Load())
}
