package common

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPerspectiveDepthRange(t *testing.T) {
	near, far := float32(0.01), float32(100)
	proj := Perspective(mgl32.DegToRad(45), 1280.0/720.0, near, far)

	toNDC := func(z float32) float32 {
		clip := proj.Mul4x1(mgl32.Vec4{0, 0, -z, 1})
		return clip.Z() / clip.W()
	}

	assert.InDelta(t, 0, toNDC(near), 1e-4)
	assert.InDelta(t, 1, toNDC(far), 1e-4)
	assert.Greater(t, toNDC(1), float32(0))
	assert.Less(t, toNDC(1), float32(1))
}

func TestPerspectiveKeepsXY(t *testing.T) {
	gl := mgl32.Perspective(mgl32.DegToRad(30), 2, 0.1, 10)
	wg := Perspective(mgl32.DegToRad(30), 2, 0.1, 10)

	assert.Equal(t, gl.Row(0), wg.Row(0))
	assert.Equal(t, gl.Row(1), wg.Row(1))
	assert.Equal(t, gl.Row(3), wg.Row(3))
}

func TestFloat32sRoundTrip(t *testing.T) {
	values := []float32{0, 1, -2.5, 3.25e-3}
	data := Float32sToBytes(values)

	assert.Len(t, data, 16)
	assert.Equal(t, values, Float32sFromBytes(data))
	assert.Nil(t, Float32sToBytes(nil))
}

func TestSamplerResolve(t *testing.T) {
	var unset *SamplerStagingData
	assert.Equal(t, DefaultSampler, unset.Resolve(DefaultSampler))

	got := NearestSampler.Resolve(DefaultSampler)
	assert.Equal(t, NearestSampler.MagFilter, got.MagFilter)
	assert.Equal(t, NearestSampler.MinFilter, got.MinFilter)
	assert.Equal(t, NearestSampler.MipmapFilter, got.MipmapFilter)
	assert.Equal(t, float32(32), got.LodMaxClamp)
	assert.Equal(t, uint16(1), got.MaxAnisotropy)

	custom := SamplerStagingData{LodMaxClamp: 4, MaxAnisotropy: 8}
	got = custom.Resolve(DefaultSampler)
	assert.Equal(t, float32(4), got.LodMaxClamp)
	assert.Equal(t, uint16(8), got.MaxAnisotropy)
}

func TestSamplerResolveKeepsZeroModes(t *testing.T) {
	zero := SamplerStagingData{}
	got := zero.Resolve(DefaultSampler)

	assert.Equal(t, wgpu.FilterModeNearest, got.MagFilter)
	assert.Equal(t, wgpu.FilterModeNearest, got.MinFilter)
	assert.Equal(t, wgpu.MipmapFilterModeNearest, got.MipmapFilter)
	assert.Equal(t, wgpu.AddressModeRepeat, got.AddressModeU)
	assert.NotEqual(t, DefaultSampler.MagFilter, got.MagFilter)
	assert.Equal(t, float32(0), zero.LodMaxClamp, "the receiver is not modified")
}
