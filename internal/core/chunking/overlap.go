package chunking

import "strings"

// Chunk is an ordered sequence of encoded text units, sealed by the windower.
type Chunk []string

// Join produces the final text blob handed to the embedding step.
func (c Chunk) Join(joiningCharacter string) string {
	return strings.Join(c, joiningCharacter)
}

// BuildOverlaps augments each chunk with a bounded slice of its neighbors so
// retrieval-time similarity search has cross-chunk context. The first chunk
// gets a prefix of the next, the last a suffix of the previous, interior
// chunks both. When a neighbor is shorter than overlapSize the whole neighbor
// is taken; otherwise exactly overlapSize units from the adjacent end. This
// slicing must stay byte-exact: re-ingestion has to reproduce previously
// stored content.
//
// ignoreLastIndex skips the final chunk entirely; the spooling flow sets it
// when that chunk will be completed by the next batch.
func BuildOverlaps(chunks []Chunk, overlapSize int, ignoreLastIndex bool) []Chunk {
	return overlapRange(chunks, overlapSize, false, ignoreLastIndex)
}

// overlapRange additionally supports ignoring the first index. The windower
// carries the final two chunks of a spooled batch into the next one: the
// second-to-last provides left context for the chunk that was skipped under
// ignoreLastIndex, and must not be emitted twice.
func overlapRange(chunks []Chunk, overlapSize int, ignoreFirstIndex, ignoreLastIndex bool) []Chunk {
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) == 1 {
		if ignoreFirstIndex || ignoreLastIndex {
			return nil
		}
		// No neighbor to overlap against; emit as-is rather than dropping.
		return []Chunk{append(Chunk{}, chunks[0]...)}
	}

	overlapped := make([]Chunk, 0, len(chunks))
	for i, chunk := range chunks {
		switch {
		case i == 0:
			if ignoreFirstIndex {
				continue
			}
			out := append(Chunk{}, chunk...)
			out = append(out, prefixOf(chunks[i+1], overlapSize)...)
			overlapped = append(overlapped, out)
		case i == len(chunks)-1:
			if ignoreLastIndex {
				continue
			}
			out := append(Chunk{}, suffixOf(chunks[i-1], overlapSize)...)
			out = append(out, chunk...)
			overlapped = append(overlapped, out)
		default:
			out := append(Chunk{}, suffixOf(chunks[i-1], overlapSize)...)
			out = append(out, chunk...)
			out = append(out, prefixOf(chunks[i+1], overlapSize)...)
			overlapped = append(overlapped, out)
		}
	}
	return overlapped
}

func prefixOf(c Chunk, overlapSize int) Chunk {
	if len(c) < overlapSize {
		return c
	}
	return c[:overlapSize]
}

func suffixOf(c Chunk, overlapSize int) Chunk {
	if len(c) < overlapSize {
		return c
	}
	return c[len(c)-overlapSize:]
}
