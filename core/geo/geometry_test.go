package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRing(t *testing.T) {
	t.Run("ClosesOpenRing", func(t *testing.T) {
		ring, err := Ring([]orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
		require.NoError(t, err)
		assert.Len(t, ring, 5)
		assert.True(t, ring.Closed())
	})

	t.Run("KeepsClosedRing", func(t *testing.T) {
		ring, err := Ring([]orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 0}})
		require.NoError(t, err)
		assert.Len(t, ring, 4)
	})

	t.Run("CollapsesDuplicates", func(t *testing.T) {
		ring, err := Ring([]orb.Point{{0, 0}, {0, 0}, {1, 0}, {1, 0}, {1, 1}, {0, 0}})
		require.NoError(t, err)
		assert.Equal(t, orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 0}}, ring)
	})

	t.Run("TooFewVertices", func(t *testing.T) {
		_, err := Ring([]orb.Point{{0, 0}, {1, 1}, {0, 0}})
		assert.Error(t, err)
	})

	t.Run("Collinear", func(t *testing.T) {
		_, err := Ring([]orb.Point{{0, 0}, {1, 1}, {2, 2}})
		var gerr *GeometryError
		require.ErrorAs(t, err, &gerr)
		assert.Contains(t, gerr.Reason, "zero area")
	})

	t.Run("Bowtie", func(t *testing.T) {
		_, err := Ring([]orb.Point{{0, 0}, {3, 2}, {3, 0}, {0, 3}})
		var gerr *GeometryError
		require.ErrorAs(t, err, &gerr)
		assert.Contains(t, gerr.Reason, "self-intersecting")
	})

	t.Run("OutOfRange", func(t *testing.T) {
		_, err := Ring([]orb.Point{{0, 0}, {200, 0}, {1, 1}})
		assert.Error(t, err)
	})
}

func TestLine(t *testing.T) {
	line, err := Line([]orb.Point{{6.1, 46.2}, {6.1, 46.2}, {6.13, 46.25}})
	require.NoError(t, err)
	assert.Len(t, line, 2)

	_, err = Line([]orb.Point{{6.1, 46.2}, {6.1, 46.2}})
	assert.Error(t, err)
}

func TestMultiPolygon(t *testing.T) {
	a, err := Ring([]orb.Point{{0, 0}, {1, 0}, {1, 1}})
	require.NoError(t, err)
	b, err := Ring([]orb.Point{{5, 5}, {6, 5}, {6, 6}})
	require.NoError(t, err)

	mp := MultiPolygon(a, b)
	require.Len(t, mp, 2)
	assert.Equal(t, a, mp[0][0])
	assert.Equal(t, b, mp[1][0])
}
