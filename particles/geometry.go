package particles

import "github.com/go-gl/mathgl/mgl32"

// Vertex is one corner of a billboard quad in the static vertex buffer.
type Vertex struct {
	Position mgl32.Vec3
	UV       mgl32.Vec2
	Color    mgl32.Vec4
}

// Variant selects one of the three billboard quads.
type Variant uint8

const (
	VariantGeneral Variant = iota // small square, splashes
	VariantRain                   // thin vertical streak
	VariantFire                   // large square
)

const (
	// VerticesPerQuad is two triangles without sharing.
	VerticesPerQuad = 6
	// VertexCount covers the three variant quads.
	VertexCount = 3 * VerticesPerQuad
	// IndexCount is the length of the sequential index buffer.
	IndexCount = 12
)

// QuadRange returns the first vertex and vertex count of a variant's quad.
func QuadRange(v Variant) (first, count int) {
	return int(v) * VerticesPerQuad, VerticesPerQuad
}

// VariantForList maps an active list to the quad it is drawn with.
func VariantForList(l List) Variant {
	switch l {
	case ListRain:
		return VariantRain
	case ListFire:
		return VariantFire
	default:
		return VariantGeneral
	}
}

// BuildGeometry returns the static vertex and index data. Quads are centred
// on the origin; per-instance positions place them in the world.
func BuildGeometry(g GeometrySettings) ([]Vertex, []uint32) {
	vertices := make([]Vertex, 0, VertexCount)
	vertices = appendQuad(vertices, g.GeneralHalfSize, g.GeneralHalfSize)
	vertices = appendQuad(vertices, g.RainHalfWidth, g.RainHalfWidth*g.RainStretch)
	vertices = appendQuad(vertices, g.FireHalfSize, g.FireHalfSize)

	indices := make([]uint32, IndexCount)
	for i := range indices {
		indices[i] = uint32(i)
	}
	return vertices, indices
}

// appendQuad emits bottom-left, top-left, bottom-right, bottom-right,
// top-left, top-right.
func appendQuad(dst []Vertex, halfW, halfH float32) []Vertex {
	grey := mgl32.Vec4{0.5, 0.5, 0.5, 1}
	corners := [VerticesPerQuad]struct {
		x, y float32
		uv   mgl32.Vec2
	}{
		{-halfW, -halfH, mgl32.Vec2{0, 1}},
		{-halfW, halfH, mgl32.Vec2{0, 0}},
		{halfW, -halfH, mgl32.Vec2{1, 1}},
		{halfW, -halfH, mgl32.Vec2{1, 1}},
		{-halfW, halfH, mgl32.Vec2{0, 0}},
		{halfW, halfH, mgl32.Vec2{1, 0}},
	}
	for _, c := range corners {
		dst = append(dst, Vertex{
			Position: mgl32.Vec3{c.x, c.y, 0},
			UV:       c.uv,
			Color:    grey,
		})
	}
	return dst
}
