package common

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ClipSpaceCorrection remaps OpenGL-style clip depth [-w, w] to the WebGPU range [0, w].
// Stored column-major like every mgl32 matrix.
var ClipSpaceCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Perspective creates a perspective projection matrix for WebGPU clip space, where
// normalized device depth runs from 0 at the near plane to 1 at the far plane.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	return ClipSpaceCorrection.Mul4(mgl32.Perspective(fovY, aspect, near, far))
}

// Float32sToBytes encodes a float32 slice as little-endian bytes for GPU buffer uploads.
// Unlike an unsafe reinterpretation, the result owns its memory and is safe to retain.
//
// Parameters:
//   - data: source values
//
// Returns:
//   - []byte: 4 bytes per value, or nil if data is empty
func Float32sToBytes(data []float32) []byte {
	if len(data) == 0 {
		return nil
	}
	out := make([]byte, len(data)*4)
	PutFloat32s(out, data)
	return out
}

// PutFloat32s writes values into dst as little-endian float32s starting at offset 0.
// dst must hold at least 4*len(values) bytes.
//
// Parameters:
//   - dst: destination byte slice
//   - values: values to encode
func PutFloat32s(dst []byte, values []float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

// Float32sFromBytes decodes little-endian float32 values, the inverse of Float32sToBytes.
// Trailing bytes that do not form a full value are ignored.
func Float32sFromBytes(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}
