package chunking

import (
	"strings"
)

// FlushFunc receives one batch of overlapped chunks ready for embedding plus
// the number of overlapped chunks already handed off during this run. The
// second argument is the sequence base: the k-th chunk of the batch gets
// sequence startSequence+k.
type FlushFunc func(overlapped []Chunk, startSequence int) error

// Windower accumulates provenance-tagged text units into bounded chunks and
// spools sealed chunks to the flush sink in batches, so peak memory stays
// proportional to spoolingSize*chunkSize regardless of document length.
//
// Sealing is inclusive-boundary on purpose: the accumulator is sealed as one
// chunk when its length exceeds chunkSize, so the common-path chunk holds
// chunkSize+1 units. Stored vectors were produced with this rule; changing it
// would break deterministic re-ingestion.
type Windower struct {
	chunkSize    int
	overlapSize  int
	spoolingSize int
	flush        FlushFunc

	units        Chunk   // running unit accumulator
	batch        []Chunk // sealed chunks awaiting overlap+upload
	continuation bool    // a spooled flush already ran; batch[0] is context only
	sequence     int     // overlapped chunks handed off so far
}

// NewWindower builds a windower. startingChunkCount seeds the running
// sequence; zero makes a full re-run overwrite prior stored records, which is
// the system's idempotence mechanism. Nonzero offsets interleave with, rather
// than overwrite, an earlier full run.
func NewWindower(chunkSize, overlapSize, spoolingSize, startingChunkCount int, flush FlushFunc) *Windower {
	return &Windower{
		chunkSize:    chunkSize,
		overlapSize:  overlapSize,
		spoolingSize: spoolingSize,
		flush:        flush,
		sequence:     startingChunkCount,
	}
}

// Add appends one unit to the accumulator. Units that are empty after
// trimming are dropped before accumulation; they are never stored and never
// count toward chunk size. A spooled upload may be triggered.
func (w *Windower) Add(unit TextUnit) error {
	unit.Text = strings.TrimSpace(unit.Text)
	if unit.Text == "" {
		return nil
	}

	w.units = append(w.units, unit.Encode())
	if len(w.units) > w.chunkSize {
		w.seal()
		// Spool only on a fresh seal, and only once the batch holds at least
		// two chunks: the last is withheld for the next batch and its
		// predecessor rides along as context. Between seals the retained pair
		// carries no new work, so the sink is never called with an empty
		// slice.
		if len(w.batch) >= w.spoolingSize && len(w.batch) >= 2 {
			return w.spool()
		}
	}
	return nil
}

// Flush seals any non-empty remainder as a final (possibly undersized) chunk
// and pushes everything still buffered through the overlap builder. Call once
// at end of input.
func (w *Windower) Flush() error {
	if len(w.units) > 0 {
		w.seal()
	}
	if len(w.batch) == 0 {
		return nil
	}

	overlapped := overlapRange(w.batch, w.overlapSize, w.continuation, false)
	if err := w.flush(overlapped, w.sequence); err != nil {
		return err
	}
	w.sequence += len(overlapped)
	w.batch = nil
	w.continuation = false
	return nil
}

// Sequence reports how many overlapped chunks have been handed to the sink,
// including the starting offset.
func (w *Windower) Sequence() int {
	return w.sequence
}

func (w *Windower) seal() {
	w.batch = append(w.batch, w.units)
	w.units = nil
}

// spool flushes the buffered batch early. The final chunk is withheld (its
// right neighbor has not been sealed yet) and stays in the batch along with
// its predecessor, which the next pass needs as left context.
func (w *Windower) spool() error {
	overlapped := overlapRange(w.batch, w.overlapSize, w.continuation, true)
	if err := w.flush(overlapped, w.sequence); err != nil {
		return err
	}
	w.sequence += len(overlapped)

	w.batch = w.batch[len(w.batch)-2:]
	w.continuation = true
	return nil
}
