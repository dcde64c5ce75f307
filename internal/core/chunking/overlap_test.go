package chunking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOverlaps_Empty(t *testing.T) {
	assert.Nil(t, BuildOverlaps(nil, 2, false))
}

func TestBuildOverlaps_SingleChunkEmittedUnmodified(t *testing.T) {
	got := BuildOverlaps([]Chunk{{"a", "b"}}, 2, false)
	require.Len(t, got, 1)
	assert.Equal(t, Chunk{"a", "b"}, got[0])
}

func TestBuildOverlaps_InteriorSymmetry(t *testing.T) {
	a := Chunk{"a1", "a2", "a3"}
	b := Chunk{"b1", "b2", "b3"}
	c := Chunk{"c1", "c2", "c3"}

	got := BuildOverlaps([]Chunk{a, b, c}, 2, false)
	require.Len(t, got, 3)

	// suffix(A, 2) + B + prefix(C, 2)
	assert.Equal(t, Chunk{"a2", "a3", "b1", "b2", "b3", "c1", "c2"}, got[1])
}

func TestBuildOverlaps_BoundaryOneSidedness(t *testing.T) {
	a := Chunk{"a1", "a2", "a3"}
	b := Chunk{"b1", "b2", "b3"}
	c := Chunk{"c1", "c2", "c3"}

	got := BuildOverlaps([]Chunk{a, b, c}, 1, false)
	require.Len(t, got, 3)

	// First chunk: nothing prepended.
	assert.Equal(t, Chunk{"a1", "a2", "a3", "b1"}, got[0])
	// Last chunk: nothing appended.
	assert.Equal(t, Chunk{"b3", "c1", "c2", "c3"}, got[2])
}

func TestBuildOverlaps_ShortNeighborTakenWhole(t *testing.T) {
	a := Chunk{"a1"}
	b := Chunk{"b1", "b2", "b3"}
	c := Chunk{"c1"}

	got := BuildOverlaps([]Chunk{a, b, c}, 3, false)
	require.Len(t, got, 3)

	// len(A)=1 < 3 and len(C)=1 < 3: both neighbors taken whole.
	assert.Equal(t, Chunk{"a1", "b1", "b2", "b3", "c1"}, got[1])
}

func TestBuildOverlaps_ExactOverlapSizeNeighborSliced(t *testing.T) {
	// A neighbor of exactly overlapSize units is sliced, not taken whole;
	// the tie-break is strictly "shorter than".
	a := Chunk{"a1", "a2"}
	b := Chunk{"b1"}

	got := BuildOverlaps([]Chunk{a, b}, 2, false)
	require.Len(t, got, 2)
	assert.Equal(t, Chunk{"a1", "a2", "b1"}, got[0])
	assert.Equal(t, Chunk{"a1", "a2", "b1"}, got[1])
}

func TestBuildOverlaps_IgnoreLastIndexSkipsFinalChunk(t *testing.T) {
	a := Chunk{"a1", "a2"}
	b := Chunk{"b1", "b2"}
	c := Chunk{"c1", "c2"}

	got := BuildOverlaps([]Chunk{a, b, c}, 1, true)
	require.Len(t, got, 2)
	assert.Equal(t, Chunk{"a1", "a2", "b1"}, got[0])
	assert.Equal(t, Chunk{"a2", "b1", "b2", "c1"}, got[1])
}

func TestBuildOverlaps_OrderPreserved(t *testing.T) {
	chunks := []Chunk{{"1"}, {"2"}, {"3"}, {"4"}}
	got := BuildOverlaps(chunks, 1, false)
	require.Len(t, got, 4)
	for i, out := range got {
		assert.Contains(t, out, chunks[i][0], "output %d must contain its own chunk", i)
	}
}

func TestBuildOverlaps_InputChunksNotMutated(t *testing.T) {
	a := Chunk{"a1", "a2", "a3"}
	b := Chunk{"b1", "b2", "b3"}
	BuildOverlaps([]Chunk{a, b}, 2, false)
	assert.Equal(t, Chunk{"a1", "a2", "a3"}, a)
	assert.Equal(t, Chunk{"b1", "b2", "b3"}, b)
}

func TestChunk_Join(t *testing.T) {
	c := Chunk{"x", "y", "z"}
	assert.Equal(t, "xyz", c.Join(""))
	assert.Equal(t, "x y z", c.Join(" "))
}
