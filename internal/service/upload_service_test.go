package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"packtrail/internal/config"
	"packtrail/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeTestPNG renders a small gradient so the bytes are a real image.
func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	buf := bytes.NewBuffer(nil)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestUploadService_Upload(t *testing.T) {
	t.Parallel()

	t.Run("stores the image and a thumbnail", func(t *testing.T) {
		t.Parallel()
		store := storage.NewMemoryStore(testMediaBase)
		svc := NewUploadService(store, &config.Config{UploadMaxMB: 10})

		result, err := svc.Upload(context.Background(), UploadInput{
			UserID:      1,
			Filename:    "camp photo.png",
			ContentType: "image/png",
			Content:     encodeTestPNG(t, 64, 48),
		})
		require.NoError(t, err)

		assert.Equal(t, 2, store.Len())
		assert.True(t, store.Has(result.Key))
		assert.True(t, store.Has(result.Key+".thumb.webp"))
		assert.True(t, strings.HasSuffix(result.Key, "-camp_photo.png"), "key keeps a sanitized filename")
		assert.True(t, store.Owns(result.URL))
		assert.Equal(t, store.URL(result.Key+".thumb.webp"), result.ThumbURL)
	})

	t.Run("oversized image is scaled down", func(t *testing.T) {
		t.Parallel()
		store := storage.NewMemoryStore(testMediaBase)
		svc := NewUploadService(store, nil)

		result, err := svc.Upload(context.Background(), UploadInput{
			UserID:   1,
			Filename: "pano.png",
			Content:  encodeTestPNG(t, MasterMaxSize+400, 200),
		})
		require.NoError(t, err)

		data, err := store.Get(context.Background(), result.Key)
		require.NoError(t, err)
		decoded, _, err := image.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.LessOrEqual(t, decoded.Bounds().Dx(), MasterMaxSize)
		assert.LessOrEqual(t, decoded.Bounds().Dy(), MasterMaxSize)
	})

	t.Run("non-image rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewUploadService(storage.NewMemoryStore(testMediaBase), nil)
		_, err := svc.Upload(context.Background(), UploadInput{
			UserID:   1,
			Filename: "notes.txt",
			Content:  []byte("just some text, definitely not pixels"),
		})
		assertValidationError(t, err)
	})

	t.Run("content type mismatch rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewUploadService(storage.NewMemoryStore(testMediaBase), nil)
		_, err := svc.Upload(context.Background(), UploadInput{
			UserID:      1,
			Filename:    "photo.jpg",
			ContentType: "image/jpeg",
			Content:     encodeTestPNG(t, 16, 16),
		})
		assertValidationError(t, err)
	})

	t.Run("size limit enforced", func(t *testing.T) {
		t.Parallel()
		svc := NewUploadService(storage.NewMemoryStore(testMediaBase), &config.Config{UploadMaxMB: 1})
		_, err := svc.Upload(context.Background(), UploadInput{
			UserID:   1,
			Filename: "huge.png",
			Content:  make([]byte, 2*1024*1024),
		})
		assertValidationError(t, err)
	})
}
