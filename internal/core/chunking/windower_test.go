package chunking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flushCapture struct {
	chunks  []Chunk
	starts  []int
	batches []int
}

func (f *flushCapture) fn(overlapped []Chunk, startSequence int) error {
	f.starts = append(f.starts, startSequence)
	f.batches = append(f.batches, len(overlapped))
	f.chunks = append(f.chunks, overlapped...)
	return nil
}

func unitNamed(text string) TextUnit {
	return TextUnit{DocumentName: "doc", DocumentDescription: "desc", Page: 1, Text: text}
}

func TestWindower_SealsWholeAccumulator(t *testing.T) {
	// chunkSize=3 with the inclusive boundary seals 4-unit chunks; the
	// remainder comes out undersized.
	cap := &flushCapture{}
	w := NewWindower(3, 0, 100, 0, cap.fn)

	for i := 0; i < 10; i++ {
		require.NoError(t, w.Add(unitNamed(fmt.Sprintf("u%d", i))))
	}
	require.NoError(t, w.Flush())

	// overlapSize=0 keeps the sealed chunks untouched.
	require.Len(t, cap.chunks, 3)
	assert.Len(t, cap.chunks[0], 4)
	assert.Len(t, cap.chunks[1], 4)
	assert.Len(t, cap.chunks[2], 2)
}

func TestWindower_DropsEmptyUnits(t *testing.T) {
	cap := &flushCapture{}
	w := NewWindower(5, 0, 100, 0, cap.fn)

	require.NoError(t, w.Add(unitNamed("")))
	require.NoError(t, w.Add(unitNamed("   ")))
	require.NoError(t, w.Add(unitNamed("A")))
	require.NoError(t, w.Flush())

	require.Len(t, cap.chunks, 1)
	require.Len(t, cap.chunks[0], 1)
	assert.Equal(t, unitNamed("A").Encode(), cap.chunks[0][0])
}

func TestWindower_EmptyInputFlushesNothing(t *testing.T) {
	cap := &flushCapture{}
	w := NewWindower(3, 1, 2, 0, cap.fn)
	require.NoError(t, w.Flush())
	assert.Empty(t, cap.chunks)
	assert.Empty(t, cap.starts)
}

func TestWindower_EndToEndScenario(t *testing.T) {
	// Seven units, chunkSize=2, overlapSize=1, spoolingSize=2. The late-seal
	// rule yields chunks [S1 S2 S3], [S4 S5 S6], [S7]; overlapped output is
	// [S1..S4], [S3..S7], [S6 S7].
	enc := func(texts ...string) Chunk {
		c := Chunk{}
		for _, s := range texts {
			c = append(c, unitNamed(s).Encode())
		}
		return c
	}

	cap := &flushCapture{}
	w := NewWindower(2, 1, 2, 0, cap.fn)
	for i := 1; i <= 7; i++ {
		require.NoError(t, w.Add(unitNamed(fmt.Sprintf("S%d", i))))
	}
	require.NoError(t, w.Flush())

	require.Len(t, cap.chunks, 3)
	assert.Equal(t, enc("S1", "S2", "S3", "S4"), cap.chunks[0])
	assert.Equal(t, enc("S3", "S4", "S5", "S6", "S7"), cap.chunks[1])
	assert.Equal(t, enc("S6", "S7"), cap.chunks[2])
	assert.Equal(t, 3, w.Sequence())
}

func TestWindower_SpoolingDoesNotChangeOutput(t *testing.T) {
	run := func(spoolingSize int) *flushCapture {
		cap := &flushCapture{}
		w := NewWindower(4, 2, spoolingSize, 0, cap.fn)
		for i := 0; i < 200; i++ {
			require.NoError(t, w.Add(unitNamed(fmt.Sprintf("u%03d", i))))
		}
		require.NoError(t, w.Flush())
		return cap
	}

	small := run(3)
	large := run(50)

	require.Equal(t, len(large.chunks), len(small.chunks))
	for i := range large.chunks {
		assert.Equal(t, large.chunks[i], small.chunks[i], "chunk %d", i)
	}
}

func TestWindower_SpoolNeverFlushesEmpty(t *testing.T) {
	// At the minimum spooling size the retained pair satisfies the batch
	// threshold on every Add. The sink must still only see flushes that carry
	// chunks, and the output must match an unspooled run.
	spooled := &flushCapture{}
	w := NewWindower(2, 1, 2, 0, spooled.fn)
	for i := 0; i < 30; i++ {
		require.NoError(t, w.Add(unitNamed(fmt.Sprintf("u%d", i))))
	}
	require.NoError(t, w.Flush())

	for i, n := range spooled.batches {
		assert.Positive(t, n, "flush %d handed off no chunks", i)
	}

	plain := &flushCapture{}
	w2 := NewWindower(2, 1, 100, 0, plain.fn)
	for i := 0; i < 30; i++ {
		require.NoError(t, w2.Add(unitNamed(fmt.Sprintf("u%d", i))))
	}
	require.NoError(t, w2.Flush())
	assert.Equal(t, plain.chunks, spooled.chunks)
}

func TestWindower_SequenceBasesMatchHandedOffCounts(t *testing.T) {
	cap := &flushCapture{}
	w := NewWindower(2, 1, 2, 0, cap.fn)
	for i := 0; i < 40; i++ {
		require.NoError(t, w.Add(unitNamed(fmt.Sprintf("u%d", i))))
	}
	require.NoError(t, w.Flush())

	// Each flush's sequence base equals the number of chunks already handed
	// off, so ids stay monotonic across spooled batches.
	seen := 0
	for i, start := range cap.starts {
		assert.Equal(t, seen, start, "flush %d", i)
		seen += cap.batches[i]
	}
	assert.Equal(t, len(cap.chunks), w.Sequence())
}

func TestWindower_StartingChunkCountOffsetsSequence(t *testing.T) {
	cap := &flushCapture{}
	w := NewWindower(2, 1, 50, 10, cap.fn)
	for i := 0; i < 9; i++ {
		require.NoError(t, w.Add(unitNamed(fmt.Sprintf("u%d", i))))
	}
	require.NoError(t, w.Flush())

	require.NotEmpty(t, cap.starts)
	assert.Equal(t, 10, cap.starts[0])
	assert.Equal(t, 10+len(cap.chunks), w.Sequence())
}
