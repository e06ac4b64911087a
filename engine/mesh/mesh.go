// Package mesh builds the interleaved vertex data for an axis-aligned box drawn as six
// triangle-fan quads.
package mesh

import (
	"github.com/Carmen-Shannon/tempest/common"
	"github.com/go-gl/mathgl/mgl32"
)

// FaceID identifies one of the six box faces. The numeric value is the face's index in
// every [FaceCount]Face array and in the packed vertex buffer.
type FaceID int

const (
	FaceFront FaceID = iota
	FaceBack
	FaceLeft
	FaceRight
	FaceTop
	FaceBottom
)

const (
	// FaceCount is the number of faces in a box mesh.
	FaceCount = 6

	// VerticesPerFace is the number of vertices in one fan quad.
	VerticesPerFace = 4

	// VertexCount is the total number of vertices in a packed box mesh.
	VertexCount = FaceCount * VerticesPerFace
)

// String returns the lower-case face name.
func (f FaceID) String() string {
	switch f {
	case FaceFront:
		return "front"
	case FaceBack:
		return "back"
	case FaceLeft:
		return "left"
	case FaceRight:
		return "right"
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	}
	return "unknown"
}

// faceNormals holds the outward normal of each face, indexed by FaceID.
var faceNormals = [FaceCount]mgl32.Vec3{
	FaceFront:  {0, 0, 1},
	FaceBack:   {0, 0, -1},
	FaceLeft:   {-1, 0, 0},
	FaceRight:  {1, 0, 0},
	FaceTop:    {0, 1, 0},
	FaceBottom: {0, -1, 0},
}

// faceTexCoords is the (u, v) assigned to vertex index 0..3 of every face.
var faceTexCoords = [VerticesPerFace]mgl32.Vec2{
	{1, 0},
	{0, 0},
	{0, 1},
	{1, 1},
}

// Vertex is a single interleaved vertex: position, normal, texture coordinate.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
}

// Face is one quad of the box, in triangle-fan order.
type Face [VerticesPerFace]Vertex

// Mesh is a built box: six faces in FaceID order.
type Mesh struct {
	Faces [FaceCount]Face
}

// Normal returns the outward normal assigned to the given face.
//
// Parameters:
//   - id: the face to look up
//
// Returns:
//   - mgl32.Vec3: the unit normal for the face
func Normal(id FaceID) mgl32.Vec3 {
	return faceNormals[id]
}

// TexCoord returns the texture coordinate assigned to the given vertex index of any face.
func TexCoord(vertex int) mgl32.Vec2 {
	return faceTexCoords[vertex]
}

// BuildFaces returns the corner positions of a box with the given half-extents.
//
// Each face's four corners are listed so that the fan triangles (0,1,2) and (0,2,3) wind
// counter-clockwise when seen from outside the box. Normals and texture coordinates are
// left zero; see AssignNormals and AssignTexCoords.
//
// Zero extents are accepted and produce a degenerate box.
//
// Parameters:
//   - x: half-width
//   - y: half-height
//   - z: half-depth
//
// Returns:
//   - [FaceCount]Face: faces ordered front, back, left, right, top, bottom
func BuildFaces(x, y, z float32) [FaceCount]Face {
	corners := [FaceCount][VerticesPerFace]mgl32.Vec3{
		FaceFront:  {{-x, -y, z}, {x, -y, z}, {x, y, z}, {-x, y, z}},
		FaceBack:   {{x, -y, -z}, {-x, -y, -z}, {-x, y, -z}, {x, y, -z}},
		FaceLeft:   {{-x, -y, -z}, {-x, -y, z}, {-x, y, z}, {-x, y, -z}},
		FaceRight:  {{x, -y, z}, {x, -y, -z}, {x, y, -z}, {x, y, z}},
		FaceTop:    {{-x, y, z}, {x, y, z}, {x, y, -z}, {-x, y, -z}},
		FaceBottom: {{-x, -y, -z}, {x, -y, -z}, {x, -y, z}, {-x, -y, z}},
	}

	var faces [FaceCount]Face
	for i := range corners {
		for j, pos := range corners[i] {
			faces[i][j].Position = pos
		}
	}
	return faces
}

// AssignNormals sets every vertex normal to its face's constant outward normal.
//
// Parameters:
//   - faces: the faces to update in place
func AssignNormals(faces *[FaceCount]Face) {
	for i := range faces {
		for j := range faces[i] {
			faces[i][j].Normal = faceNormals[i]
		}
	}
}

// AssignTexCoords applies the same four corner texture coordinates to every face.
//
// Parameters:
//   - faces: the faces to update in place
func AssignTexCoords(faces *[FaceCount]Face) {
	for i := range faces {
		for j := range faces[i] {
			faces[i][j].TexCoord = faceTexCoords[j]
		}
	}
}

// NewBox builds a complete box mesh from half-extents.
//
// Parameters:
//   - x, y, z: half-extents along each axis
//
// Returns:
//   - Mesh: the box with positions, normals and texture coordinates assigned
func NewBox(x, y, z float32) Mesh {
	faces := BuildFaces(x, y, z)
	AssignNormals(&faces)
	AssignTexCoords(&faces)
	return Mesh{Faces: faces}
}

// FaceFirstVertex returns the index of the face's first vertex in the packed buffer.
func FaceFirstVertex(id FaceID) uint32 {
	return uint32(id) * VerticesPerFace
}

// Pack interleaves all vertices into a flat float slice of VertexCount*FloatsPerVertex values.
//
// Returns:
//   - []float32: position, normal and texture coordinate per vertex, faces in order
func (m Mesh) Pack() []float32 {
	out := make([]float32, 0, VertexCount*FloatsPerVertex)
	for _, face := range m.Faces {
		for _, v := range face {
			out = append(out, v.Position[:]...)
			out = append(out, v.Normal[:]...)
			out = append(out, v.TexCoord[:]...)
		}
	}
	return out
}

// Marshal returns the packed vertex data as little-endian bytes ready for upload.
func (m Mesh) Marshal() []byte {
	return common.Float32sToBytes(m.Pack())
}

// Centroid returns the average of a face's four corner positions.
func (f Face) Centroid() mgl32.Vec3 {
	var sum mgl32.Vec3
	for _, v := range f {
		sum = sum.Add(v.Position)
	}
	return sum.Mul(1.0 / VerticesPerFace)
}

// FanNormals returns the unnormalized normals of the two fan triangles (0,1,2) and (0,2,3).
func (f Face) FanNormals() (mgl32.Vec3, mgl32.Vec3) {
	a := f[1].Position.Sub(f[0].Position).Cross(f[2].Position.Sub(f[0].Position))
	b := f[2].Position.Sub(f[0].Position).Cross(f[3].Position.Sub(f[0].Position))
	return a, b
}
