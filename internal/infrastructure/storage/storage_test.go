package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf-backend/internal/config"
)

type flakyStore struct {
	err   error
	calls int
}

func (f *flakyStore) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "http://minio/bucket/" + key, nil
}

func (f *flakyStore) Delete(context.Context, string) error {
	f.calls++
	return f.err
}

func testBreakerSettings(name string) BreakerSettings {
	return BreakerSettings{
		Name:         name,
		FailureRatio: 0.5,
		MinRequests:  2,
		Timeout:      time.Minute,
		Interval:     time.Minute,
	}
}

func TestBreakerStore_PassesThrough(t *testing.T) {
	next := &flakyStore{}
	b := NewBreakerStore(next, testBreakerSettings("pass"))

	url, err := b.Put(context.Background(), "books/images/a.png", []byte("x"), "image/png")

	require.NoError(t, err)
	assert.Equal(t, "http://minio/bucket/books/images/a.png", url)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerStore_OpensAfterFailures(t *testing.T) {
	next := &flakyStore{err: errors.New("connection refused")}
	b := NewBreakerStore(next, testBreakerSettings("open"))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := b.Put(ctx, "k", nil, "")
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Put(ctx, "k", nil, "")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, next.calls, "open breaker must not reach the store")
}

func TestBreakerStore_CancelledContextDoesNotTrip(t *testing.T) {
	next := &flakyStore{err: context.Canceled}
	b := NewBreakerStore(next, testBreakerSettings("cancel"))

	for i := 0; i < 3; i++ {
		_ = b.Delete(context.Background(), "http://minio/bucket/k")
	}

	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestKeyFromURL(t *testing.T) {
	base := "http://localhost:9000/bookshelf"

	key, ok := keyFromURL(base, base+"/books/images/a.png")
	assert.True(t, ok)
	assert.Equal(t, "books/images/a.png", key)

	_, ok = keyFromURL(base, "https://drive.example.com/file.pdf")
	assert.False(t, ok)

	_, ok = keyFromURL(base, base+"/")
	assert.False(t, ok)
}

func TestPublicBaseURL(t *testing.T) {
	cfg := config.MinIOConfig{Bucket: "bookshelf"}
	assert.Equal(t, "http://localhost:9000/bookshelf", publicBaseURL(cfg, "http://localhost:9000"))

	cfg.PublicURL = "https://cdn.example.com/"
	assert.Equal(t, "https://cdn.example.com/bookshelf", publicBaseURL(cfg, "http://localhost:9000"))
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageProcessor_KeepsSmallImage(t *testing.T) {
	data := encodePNG(t, 40, 20)
	p := NewImageProcessor(1<<20, 100, 0)

	out, err := p.Process(data)

	require.NoError(t, err)
	assert.Equal(t, data, out.Data)
	assert.Equal(t, "image/png", out.ContentType)
	assert.Equal(t, ".png", out.Ext)
}

func TestImageProcessor_DownscalesWideImage(t *testing.T) {
	p := NewImageProcessor(1<<20, 50, 0)

	out, err := p.Process(encodePNG(t, 200, 100))
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 50, cfg.Width)
	assert.Equal(t, 25, cfg.Height)
}

func TestImageProcessor_Rejects(t *testing.T) {
	p := NewImageProcessor(1<<20, 100, 0)

	_, err := p.Process([]byte("%PDF-1.4 not an image"))
	assert.ErrorIs(t, err, ErrNotAnImage)

	small := NewImageProcessor(10, 100, 0)
	_, err = small.Process(encodePNG(t, 10, 10))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

// withDimensions rewrites the IHDR of a PNG to declare w x h, keeping the
// chunk checksum valid. Pixel data is left as is.
func withDimensions(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	out := append([]byte(nil), data...)
	require.Equal(t, "IHDR", string(out[12:16]))
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestImageProcessor_RejectsHugeDeclaredDimensions(t *testing.T) {
	data := withDimensions(t, encodePNG(t, 8, 8), 60000, 60000)
	require.Less(t, len(data), 1<<10)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 60000, cfg.Width)

	p := NewImageProcessor(1<<20, 1200, 40_000_000)
	_, err = p.Process(data)

	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestImageProcessor_PixelCapAllowsImagesWithinBound(t *testing.T) {
	p := NewImageProcessor(1<<20, 100, 40*20)

	_, err := p.Process(encodePNG(t, 40, 20))
	require.NoError(t, err)

	_, err = p.Process(encodePNG(t, 41, 20))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}
