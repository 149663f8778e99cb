package image

import (
	"bytes"
	"context"
	stdimage "image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/explore-grabby/booking-backend/internal/entity"
	"github.com/explore-grabby/booking-backend/internal/pkg/storage"
)

func testPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func setup(t *testing.T) (Service, *entity.Entity) {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	entities := entity.NewService(entity.NewMemoryRepository(), nil)
	e, err := entities.Create(ctx, entity.CreateRequest{Name: "Switch", Details: entity.Console{Color: "red"}})
	require.NoError(t, err)

	return NewService(store, entities), e
}

func decodeSize(t *testing.T, rc io.ReadCloser) (int, int) {
	t.Helper()
	defer rc.Close()
	cfg, format, err := stdimage.DecodeConfig(rc)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	return cfg.Width, cfg.Height
}

func TestUploadAndOpen(t *testing.T) {
	ctx := context.Background()
	svc, e := setup(t)

	has, err := svc.HasImage(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, svc.Upload(ctx, e.ID, bytes.NewReader(testPNG(t, 1500, 1500, color.White))))

	has, err = svc.HasImage(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, has)

	rc, err := svc.Open(ctx, e.ID)
	require.NoError(t, err)
	w, h := decodeSize(t, rc)
	assert.Equal(t, 1000, w)
	assert.Equal(t, 1000, h)
}

func TestOpenFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	svc, e := setup(t)

	_, err := svc.Open(ctx, e.ID)
	assert.ErrorIs(t, err, ErrNoImage)

	require.NoError(t, svc.UploadDefault(ctx, bytes.NewReader(testPNG(t, 10, 20, color.Black))))

	rc, err := svc.Open(ctx, e.ID)
	require.NoError(t, err)
	w, h := decodeSize(t, rc)
	assert.Equal(t, 10, w)
	assert.Equal(t, 20, h)

	has, err := svc.HasImage(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, has, "the default image does not count as the entity's own")
}

func TestUploadRejects(t *testing.T) {
	ctx := context.Background()
	svc, e := setup(t)

	assert.ErrorIs(t, svc.Upload(ctx, "missing", bytes.NewReader(testPNG(t, 5, 5, color.White))), entity.ErrNotFound)
	assert.ErrorIs(t, svc.Upload(ctx, e.ID, strings.NewReader("")), ErrEmptyFile)
	assert.ErrorIs(t, svc.Upload(ctx, e.ID, strings.NewReader("plain text")), ErrUnsupportedType)

	has, err := svc.HasImage(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, e := setup(t)

	require.NoError(t, svc.Upload(ctx, e.ID, bytes.NewReader(testPNG(t, 5, 5, color.White))))
	require.NoError(t, svc.Delete(ctx, e.ID))

	has, err := svc.HasImage(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, has)
}
