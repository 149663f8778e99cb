package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ok, err := s.Exists(ctx, "entities/a.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Get(ctx, "entities/a.jpg")
	assert.ErrorIs(t, err, ErrNotExist)

	require.NoError(t, s.Save(ctx, "entities/a.jpg", strings.NewReader("first")))
	require.NoError(t, s.Save(ctx, "entities/a.jpg", strings.NewReader("second")))

	ok, err = s.Exists(ctx, "entities/a.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Get(ctx, "entities/a.jpg")
	require.NoError(t, err)
	bs, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "second", string(bs))

	require.NoError(t, s.Delete(ctx, "entities/a.jpg"))
	require.NoError(t, s.Delete(ctx, "entities/a.jpg"))

	ok, err = s.Exists(ctx, "entities/a.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStorageStaysInsideBase(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewLocalStorage(base)
	require.NoError(t, err)

	assert.Equal(t, s.fullPath("escape.txt"), s.fullPath("../../escape.txt"))
	require.NoError(t, s.Save(ctx, "../escape.txt", strings.NewReader("x")))

	ok, err := s.Exists(ctx, "escape.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func pngOf(w, h int) *bytes.Buffer {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 50, B: 50, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	_ = png.Encode(buf, img)
	return buf
}

func TestNormalize(t *testing.T) {
	p := NewImageProcessor()

	t.Run("ShrinksToBox", func(t *testing.T) {
		out, err := p.Normalize(pngOf(2000, 500))
		require.NoError(t, err)

		img, format, err := image.Decode(out)
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, 1000, img.Bounds().Dx())
		assert.Equal(t, 250, img.Bounds().Dy())
	})

	t.Run("KeepsSmallImages", func(t *testing.T) {
		out, err := p.Normalize(pngOf(40, 30))
		require.NoError(t, err)

		img, err := imaging.Decode(out)
		require.NoError(t, err)
		assert.Equal(t, 40, img.Bounds().Dx())
		assert.Equal(t, 30, img.Bounds().Dy())
	})

	t.Run("RejectsGarbage", func(t *testing.T) {
		_, err := p.Normalize(strings.NewReader("not an image"))
		assert.Error(t, err)
	})
}
