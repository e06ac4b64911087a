package cube

import (
	_ "embed"

	"github.com/Carmen-Shannon/tempest/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// PhongSource is the WGSL program shared by every cube face: vs_main transforms the
// interleaved position/normal/uv vertex, fs_main applies ambient, diffuse and specular
// lighting to the object color.
//
//go:embed assets/phong.wgsl
var PhongSource string

// PhongProgramKey is the pipeline key of the shared Phong program in the renderer cache.
const PhongProgramKey = "cube.phong"

// FaceUniforms is the per-draw uniform set of one face. It matches the FaceUniforms struct
// in PhongSource (256 bytes: three mat4x4 followed by four 16-byte aligned vec3).
type FaceUniforms struct {
	Model      mgl32.Mat4 // offset   0
	View       mgl32.Mat4 // offset  64
	Projection mgl32.Mat4 // offset 128
	Light      mgl32.Vec3 // offset 192: light color
	LightPos   mgl32.Vec3 // offset 208: world-space light position
	ViewPos    mgl32.Vec3 // offset 224: camera position
	Coral      mgl32.Vec3 // offset 240: object base color
}

// Write stores every member into the block by uniform name. Names the block's struct does
// not declare are skipped.
//
// Parameters:
//   - block: the uniform block of the bound program
//
// Returns:
//   - int: the number of members written
func (u FaceUniforms) Write(block *shader.UniformBlock) int {
	written := 0
	for _, ok := range []bool{
		block.SetMat4("model", u.Model),
		block.SetMat4("view", u.View),
		block.SetMat4("projection", u.Projection),
		block.SetVec3("light", u.Light),
		block.SetVec3("lightPos", u.LightPos),
		block.SetVec3("viewPos", u.ViewPos),
		block.SetVec3("coral", u.Coral),
	} {
		if ok {
			written++
		}
	}
	return written
}
