// Package texture decodes image files into RGBA staging data for the renderer.
package texture

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Carmen-Shannon/tempest/common"
	"golang.org/x/image/bmp"
)

// bmpMagic is the two-byte signature every BMP file starts with.
const bmpMagic = "BM"

// ErrNotBMP is returned when the data does not start with the BMP signature.
var ErrNotBMP = errors.New("Not a correct BMP file")

// DecodeBMP decodes a BMP image into top-down RGBA8 pixels.
//
// Parameters:
//   - r: the BMP data
//
// Returns:
//   - common.TextureStagingData: the pixels and dimensions
//   - error: ErrNotBMP for a missing signature, or the decoder error
func DecodeBMP(r io.Reader) (common.TextureStagingData, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(bmpMagic))
	if err != nil || string(magic) != bmpMagic {
		return common.TextureStagingData{}, ErrNotBMP
	}

	img, err := bmp.Decode(br)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("texture: decode bmp: %w", err)
	}
	return common.StagingFromImage(img), nil
}

// LoadBMP reads and decodes a BMP file.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - common.TextureStagingData: the pixels and dimensions
//   - error: the open error, ErrNotBMP, or the decoder error, naming the path
func LoadBMP(path string) (common.TextureStagingData, error) {
	f, err := os.Open(path)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("texture: %w", err)
	}
	defer f.Close()

	data, err := DecodeBMP(f)
	if err != nil {
		log.Printf("[Texture] %s: %v", path, err)
		return common.TextureStagingData{}, fmt.Errorf("texture: %s: %w", path, err)
	}
	return data, nil
}

// Checkerboard builds a square two-tone texture, used when no image file is available.
//
// Parameters:
//   - size: the width and height in pixels
//   - cell: the side of one square in pixels, at least 1
//
// Returns:
//   - common.TextureStagingData: light and dark gray squares starting with light at the top left
func Checkerboard(size, cell uint32) common.TextureStagingData {
	cell = max(cell, 1)
	pixels := make([]byte, size*size*4)
	for y := uint32(0); y < size; y++ {
		for x := uint32(0); x < size; x++ {
			v := byte(0xE0)
			if (x/cell+y/cell)%2 == 1 {
				v = 0x40
			}
			i := (y*size + x) * 4
			pixels[i], pixels[i+1], pixels[i+2], pixels[i+3] = v, v, v, 0xFF
		}
	}
	return common.TextureStagingData{Pixels: pixels, Width: size, Height: size}
}
