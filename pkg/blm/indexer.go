package blm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
)

// PreviewRecords is the number of records indexed in processing mode
const PreviewRecords = 2

// DefaultMaxProcessSize is the file offset past which processing mode stops
// indexing
const DefaultMaxProcessSize int64 = 1 << 20

// RecordRange is the half-open byte range [Start, End) of one record, excluding
// its delimiter
type RecordRange struct {
	Index uint32
	Start int64
	End   int64
}

// Len returns the size of the record in bytes
func (r RecordRange) Len() int64 {
	return r.End - r.Start
}

// IndexOptions controls a RecordIndexer pass
type IndexOptions struct {
	ChunkSize      int
	Preview        bool  // Stop early after PreviewRecords or MaxProcessSize
	MaxProcessSize int64 // Absolute file offset; 0 disables the byte bound
}

// RecordIndexer builds the record index of a DATA section
type RecordIndexer struct {
	opts IndexOptions
}

// NewRecordIndexer creates an indexer with the given options
func NewRecordIndexer(opts IndexOptions) *RecordIndexer {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	return &RecordIndexer{opts: opts}
}

// Index reads the DATA section from r, which must be positioned at
// data.StartOffset, and returns one range per eor-terminated record. complete is
// false when processing mode stopped the pass before the end of the section.
// Bytes after the last delimiter do not form a record.
func (ix *RecordIndexer) Index(ctx context.Context, r io.Reader, data Section, eor byte) (ranges []RecordRange, complete bool, err error) {
	chunk := make([]byte, ix.opts.ChunkSize)
	remaining := data.Length
	pos := data.StartOffset // absolute offset of chunk[0]
	start := pos            // start of the record being read

	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		size := int64(len(chunk))
		if size > remaining {
			size = remaining
		}
		n, err := io.ReadFull(r, chunk[:size])
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return nil, false, fmt.Errorf("failed to read records: %w", err)
		}
		remaining -= int64(n)
		// A short read means the section ran past the end of the file
		if int64(n) < size {
			remaining = 0
		}

		b := chunk[:n]
		for off := 0; ; {
			i := bytes.IndexByte(b[off:], eor)
			if i < 0 {
				break
			}
			end := pos + int64(off+i)
			ranges = append(ranges, RecordRange{
				Index: uint32(len(ranges)),
				Start: start,
				End:   end,
			})
			start = end + 1
			off += i + 1

			if ix.stop(len(ranges), start) {
				// Nothing left to index when the section is exhausted and the
				// rest of the chunk holds no further delimiter
				done := remaining == 0 && bytes.IndexByte(b[off:], eor) < 0
				return ranges, done, nil
			}
		}
		pos += int64(n)

		if ix.stop(len(ranges), start) && remaining > 0 {
			return ranges, false, nil
		}
	}

	return ranges, true, nil
}

// stop reports whether processing mode has reached its bound
func (ix *RecordIndexer) stop(count int, start int64) bool {
	if !ix.opts.Preview {
		return false
	}
	if count >= PreviewRecords {
		return true
	}
	return ix.opts.MaxProcessSize > 0 && start > ix.opts.MaxProcessSize
}
