package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/Carmen-Shannon/tempest/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

// encodeBMP writes a 2x2 opaque image: red, green on top and blue, white below.
func encodeBMP(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	img.Set(1, 1, color.RGBA{255, 255, 255, 255})

	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, img))
	return buf.Bytes()
}

func writeBMP(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, encodeBMP(t), 0o644))
	return path
}

func TestDecodeBMP(t *testing.T) {
	data, err := DecodeBMP(bytes.NewReader(encodeBMP(t)))
	require.NoError(t, err)

	assert.Equal(t, uint32(2), data.Width)
	assert.Equal(t, uint32(2), data.Height)
	assert.Equal(t, []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 255, 255, 255, 255,
	}, data.Pixels)
}

func TestDecodeBMPBadMagic(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"one byte", []byte("B")},
		{"png signature", []byte("\x89PNG\r\n\x1a\n")},
		{"lower case", []byte("bm0000000000")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBMP(bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, ErrNotBMP)
			assert.EqualError(t, err, "Not a correct BMP file")
		})
	}
}

func TestDecodeBMPTruncated(t *testing.T) {
	full := encodeBMP(t)
	_, err := DecodeBMP(bytes.NewReader(full[:20]))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotBMP)
}

func TestLoadBMP(t *testing.T) {
	dir := t.TempDir()
	path := writeBMP(t, dir, "ok.bmp")

	data, err := LoadBMP(path)
	require.NoError(t, err)
	assert.False(t, data.Empty())

	_, err = LoadBMP(filepath.Join(dir, "missing.bmp"))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	bad := filepath.Join(dir, "bad.bmp")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))
	_, err = LoadBMP(bad)
	assert.ErrorIs(t, err, ErrNotBMP)
	assert.Contains(t, err.Error(), bad)
}

func TestCheckerboard(t *testing.T) {
	data := Checkerboard(4, 2)

	require.Len(t, data.Pixels, 4*4*4)
	pixel := func(x, y int) byte { return data.Pixels[(y*4+x)*4] }
	assert.Equal(t, byte(0xE0), pixel(0, 0))
	assert.Equal(t, byte(0xE0), pixel(1, 1))
	assert.Equal(t, byte(0x40), pixel(2, 0))
	assert.Equal(t, byte(0x40), pixel(0, 2))
	assert.Equal(t, byte(0xE0), pixel(3, 3))
	assert.Equal(t, byte(0xFF), data.Pixels[3], "opaque")

	assert.Len(t, Checkerboard(3, 0).Pixels, 36, "zero cell is treated as one")
}

func TestLoaderLoadAllInOrder(t *testing.T) {
	var calls atomic.Int32
	l := NewLoader(WithWorkers(3), WithDecoder(func(path string) (common.TextureStagingData, error) {
		calls.Add(1)
		return common.TextureStagingData{Pixels: []byte(path), Width: 1, Height: 1}, nil
	}))
	defer l.Close()

	paths := []string{"a", "b", "c", "d", "e", "f", "g"}
	got, err := l.LoadAll(paths...)
	require.NoError(t, err)

	require.Len(t, got, len(paths))
	for i, p := range paths {
		assert.Equal(t, []byte(p), got[i].Pixels)
	}
	assert.Equal(t, int32(len(paths)), calls.Load())
}

func TestLoaderJoinsFailures(t *testing.T) {
	errA := errors.New("a failed")
	errC := errors.New("c failed")
	l := NewLoader(WithDecoder(func(path string) (common.TextureStagingData, error) {
		switch path {
		case "a":
			return common.TextureStagingData{}, errA
		case "c":
			return common.TextureStagingData{}, fmt.Errorf("wrapped: %w", errC)
		}
		return common.TextureStagingData{Width: 1, Height: 1}, nil
	}))
	defer l.Close()

	got, err := l.LoadAll("a", "b", "c")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errC)
}

func TestLoaderDecodesBMPFiles(t *testing.T) {
	dir := t.TempDir()
	paths := []string{writeBMP(t, dir, "one.bmp"), writeBMP(t, dir, "two.bmp")}

	l := NewLoader()
	defer l.Close()

	got, err := l.LoadAll(paths...)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, got[0], got[1])
	assert.Equal(t, uint32(2), got[0].Width)
}

func TestLoaderNoPaths(t *testing.T) {
	l := NewLoader()
	defer l.Close()

	got, err := l.LoadAll()
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoaderClose(t *testing.T) {
	l := NewLoader(WithWorkers(1), WithDecoder(func(path string) (common.TextureStagingData, error) {
		return common.TextureStagingData{Pixels: []byte(path), Width: 1, Height: 1}, nil
	}))

	got, err := l.LoadAll("a")
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close(), "closing twice is a no-op")

	got, err = l.LoadAll("a")
	assert.ErrorIs(t, err, ErrLoaderClosed)
	assert.Nil(t, got)
}
