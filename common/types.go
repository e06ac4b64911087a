// package common contains plain data types and helpers shared across the engine packages. They are not
// interface-wrapped structs, just the values that flow between loaders, the renderer and the demo.
package common

import (
	"image"

	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/draw"
)

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is the RGBA8 pixel data, 4 bytes per pixel, rows top to bottom.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// Empty reports whether the staging data holds no pixels.
func (t TextureStagingData) Empty() bool {
	return len(t.Pixels) == 0 || t.Width == 0 || t.Height == 0
}

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
// A nil *SamplerStagingData selects DefaultSampler; see Resolve. The zero value is not a
// sentinel: the zero address and filter modes are Repeat and Nearest.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside [0, 1].
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// DefaultSampler is linear filtering with repeat addressing over the full mip range.
var DefaultSampler = SamplerStagingData{
	AddressModeU:  wgpu.AddressModeRepeat,
	AddressModeV:  wgpu.AddressModeRepeat,
	AddressModeW:  wgpu.AddressModeRepeat,
	MagFilter:     wgpu.FilterModeLinear,
	MinFilter:     wgpu.FilterModeLinear,
	MipmapFilter:  wgpu.MipmapFilterModeLinear,
	LodMaxClamp:   32,
	MaxAnisotropy: 1,
}

// Resolve returns a copy of the sampler with defaults applied. A nil sampler becomes def.
// Otherwise only LodMaxClamp and MaxAnisotropy, whose zero values are unusable, fall back to def.
// Filter and address fields are kept as given.
//
// Parameters:
//   - def: the defaults to fall back to
//
// Returns:
//   - SamplerStagingData: the sampler ready for creation
func (s *SamplerStagingData) Resolve(def SamplerStagingData) SamplerStagingData {
	if s == nil {
		return def
	}
	out := *s
	out.LodMaxClamp = coalesce(out.LodMaxClamp, def.LodMaxClamp)
	out.MaxAnisotropy = coalesce(out.MaxAnisotropy, def.MaxAnisotropy)
	return out
}

// coalesce returns the first non-zero value, or the zero value if all are zero.
func coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// NearestSampler is the sampler used for BMP textures: nearest filtering with repeat addressing.
var NearestSampler = SamplerStagingData{
	AddressModeU: wgpu.AddressModeRepeat,
	AddressModeV: wgpu.AddressModeRepeat,
	AddressModeW: wgpu.AddressModeRepeat,
	MagFilter:    wgpu.FilterModeNearest,
	MinFilter:    wgpu.FilterModeNearest,
	MipmapFilter: wgpu.MipmapFilterModeNearest,
}

// StagingFromImage converts any decoded image to RGBA staging data.
// Reference: https://pkg.go.dev/golang.org/x/image/draw
//
// Parameters:
//   - img: the decoded source image
//
// Returns:
//   - TextureStagingData: the RGBA pixels and dimensions
func StagingFromImage(img image.Image) TextureStagingData {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}
}
