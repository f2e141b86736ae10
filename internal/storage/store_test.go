package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyShape(t *testing.T) {
	key := NewKey("tent photo.jpg")
	require.True(t, keyPattern.MatchString(key), "key %q should start with uuid-timestamp", key)
	assert.True(t, strings.HasSuffix(key, "-tent_photo.jpg"))
}

func TestRekeyFromPreservesOriginalName(t *testing.T) {
	src := NewKey("pack.png")
	dup := RekeyFrom(src)

	assert.NotEqual(t, src, dup)
	assert.True(t, strings.HasSuffix(dup, "-pack.png"))
	// Only one uuid-timestamp prefix, not two stacked.
	trimmed := keyPattern.ReplaceAllString(dup, "")
	assert.Equal(t, "pack.png", trimmed)
}

func TestKeyFromURL(t *testing.T) {
	assert.Equal(t, "abc-1-x.jpg", KeyFromURL("/media/abc-1-x.jpg"))
	assert.Equal(t, "abc-1-x.jpg", KeyFromURL("https://cdn.example.com/media/abc-1-x.jpg"))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "x.jpg", SanitizeName("../../x.jpg"))
	assert.Equal(t, "x.jpg", SanitizeName("C:\\photos\\x.jpg"))
	assert.Equal(t, "upload", SanitizeName("  "))
}

func TestMemoryStoreCopyAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("/media")

	key := NewKey("a.jpg")
	require.NoError(t, s.Put(ctx, key, []byte("jpegdata")))

	dup, err := s.Copy(ctx, key)
	require.NoError(t, err)
	assert.NotEqual(t, key, dup)

	data, err := s.Get(ctx, dup)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpegdata"), data)

	require.NoError(t, s.Delete(ctx, key))
	assert.False(t, s.Has(key))
	assert.True(t, s.Has(dup), "copy must not share storage with the original")
}

func TestMemoryStoreCarriesThumbnail(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("/media")

	key := NewKey("a.jpg")
	require.NoError(t, s.Put(ctx, key, []byte("jpegdata")))
	require.NoError(t, s.Put(ctx, ThumbKey(key), []byte("webpdata")))

	dup, err := s.Copy(ctx, key)
	require.NoError(t, err)
	assert.True(t, s.Has(ThumbKey(dup)), "thumbnail duplicated with its master")

	require.NoError(t, s.Delete(ctx, key))
	assert.False(t, s.Has(ThumbKey(key)), "thumbnail removed with its master")
	assert.ElementsMatch(t, []string{key, ThumbKey(key)}, s.Deletes)
	assert.True(t, s.Has(ThumbKey(dup)), "the copy's thumbnail survives")
}

func TestDiskStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewDiskStore(t.TempDir(), "/media/")
	require.NoError(t, err)

	key := NewKey("b.png")
	require.NoError(t, s.Put(ctx, key, []byte("pngdata")))

	dup, err := s.Copy(ctx, key)
	require.NoError(t, err)
	data, err := s.Get(ctx, dup)
	require.NoError(t, err)
	assert.Equal(t, []byte("pngdata"), data)

	assert.Equal(t, "/media/"+key, s.URL(key))
	assert.True(t, s.Owns(s.URL(key)))
	assert.False(t, s.Owns("https://images.example.com/external.jpg"))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.Error(t, err)
	// Deleting again is a no-op.
	assert.NoError(t, s.Delete(ctx, key))
}

func TestDiskStoreCarriesThumbnail(t *testing.T) {
	ctx := context.Background()
	s, err := NewDiskStore(t.TempDir(), "/media")
	require.NoError(t, err)

	key := NewKey("c.jpg")
	require.NoError(t, s.Put(ctx, key, []byte("jpegdata")))
	require.NoError(t, s.Put(ctx, ThumbKey(key), []byte("webpdata")))

	dup, err := s.Copy(ctx, key)
	require.NoError(t, err)
	thumb, err := s.Get(ctx, ThumbKey(dup))
	require.NoError(t, err)
	assert.Equal(t, []byte("webpdata"), thumb)

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, ThumbKey(key))
	assert.Error(t, err, "thumbnail removed with its master")
}

func TestDiskStoreRejectsTraversal(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), "/media")
	require.NoError(t, err)
	assert.Error(t, s.Put(context.Background(), "../escape", []byte("x")))
	assert.Error(t, s.Put(context.Background(), "a/b", []byte("x")))
}
