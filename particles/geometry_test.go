package particles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGeometry(t *testing.T) {
	g := DefaultSettings().Geometry
	vertices, indices := BuildGeometry(g)

	require.Len(t, vertices, VertexCount)
	require.Len(t, indices, IndexCount)
	for i, idx := range indices {
		assert.Equal(t, uint32(i), idx)
	}

	tests := []struct {
		variant      Variant
		halfW, halfH float32
	}{
		{VariantGeneral, 0.015, 0.015},
		{VariantRain, 0.010, 0.16},
		{VariantFire, 0.20, 0.20},
	}
	for _, tt := range tests {
		first, count := QuadRange(tt.variant)
		require.Equal(t, VerticesPerQuad, count)
		quad := vertices[first : first+count]

		// bottom-left, top-left, bottom-right, bottom-right, top-left, top-right
		assert.InDelta(t, -tt.halfW, quad[0].Position.X(), 1e-6)
		assert.InDelta(t, -tt.halfH, quad[0].Position.Y(), 1e-6)
		assert.InDelta(t, tt.halfH, quad[1].Position.Y(), 1e-6)
		assert.InDelta(t, tt.halfW, quad[5].Position.X(), 1e-6)
		assert.Equal(t, quad[2], quad[3])
		assert.Equal(t, quad[1], quad[4])
		assert.Equal(t, float32(1), quad[0].UV.Y())
		assert.Equal(t, float32(1), quad[5].UV.X())
		assert.Equal(t, float32(1), quad[0].Color.W())
	}
}

func TestVariantForList(t *testing.T) {
	assert.Equal(t, VariantRain, VariantForList(ListRain))
	assert.Equal(t, VariantFire, VariantForList(ListFire))
	assert.Equal(t, VariantGeneral, VariantForList(ListGeneral))
}
