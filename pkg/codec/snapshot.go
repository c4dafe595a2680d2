package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// SnapshotVersion is the format version written by Encode
const SnapshotVersion uint8 = 1

// headerSize is CRC32(4) + PayloadSize(4) + Version(1)
const headerSize = 9

// ErrCorruption is returned when a snapshot fails its integrity check
var ErrCorruption = errors.New("snapshot corruption detected")

// Snapshot is the memoized state of one BLM file: section boundaries, header
// metadata and, once indexing ran, the record index
type Snapshot struct {
	Indexed  bool // Ranges holds a built index
	Complete bool // The index covers the whole DATA section
	Sections []SectionEntry
	Header   HeaderEntry
	Ranges   []RangeEntry
}

// SectionEntry is one section boundary
type SectionEntry struct {
	Tag    int64
	Start  int64
	Length int64
}

// HeaderEntry is the parsed HEADER and DEFINITION content
type HeaderEntry struct {
	Version       string
	EOF           byte
	EOR           byte
	PropertyCount int64
	GeneratedDate string
	Fields        []string
}

// RangeEntry is the half-open byte range of one record
type RangeEntry struct {
	Start int64
	End   int64
}

const (
	flagIndexed uint8 = 1 << iota
	flagComplete
)

// SnapshotCodec handles serialization and deserialization of snapshots
type SnapshotCodec struct{}

// NewSnapshotCodec creates a new snapshot codec instance
func NewSnapshotCodec() *SnapshotCodec {
	return &SnapshotCodec{}
}

// Encode serializes a snapshot
// Format: [CRC32(4)][PayloadSize(4)][Version(1)][Payload]
func (c *SnapshotCodec) Encode(s *Snapshot) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("nil snapshot")
	}
	if len(s.Sections) > 0xFF {
		return nil, fmt.Errorf("too many sections: %d", len(s.Sections))
	}

	buf := make([]byte, headerSize, headerSize+64+len(s.Ranges)*16)

	var flags uint8
	if s.Indexed {
		flags |= flagIndexed
	}
	if s.Complete {
		flags |= flagComplete
	}
	buf = append(buf, flags, uint8(len(s.Sections)))
	for _, sec := range s.Sections {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(sec.Tag))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(sec.Start))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(sec.Length))
	}

	h := s.Header
	buf = appendString(buf, h.Version)
	buf = append(buf, h.EOF, h.EOR)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(h.PropertyCount))
	buf = appendString(buf, h.GeneratedDate)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(h.Fields)))
	for _, f := range h.Fields {
		buf = appendString(buf, f)
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.Ranges)))
	for _, r := range s.Ranges {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(r.Start))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(r.End))
	}

	payloadSize := len(buf) - headerSize
	if payloadSize > int(^uint32(0)) {
		return nil, fmt.Errorf("snapshot too large: %d bytes", payloadSize)
	}
	binary.LittleEndian.PutUint32(buf[4:], uint32(payloadSize))
	buf[8] = SnapshotVersion
	binary.LittleEndian.PutUint32(buf[0:], crc32.ChecksumIEEE(buf[4:]))

	return buf, nil
}

// Decode deserializes and validates a snapshot
func (c *SnapshotCodec) Decode(data []byte) (*Snapshot, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("data too short for snapshot header")
	}

	crc := binary.LittleEndian.Uint32(data[0:4])
	payloadSize := binary.LittleEndian.Uint32(data[4:8])
	if uint64(len(data)) != uint64(headerSize)+uint64(payloadSize) {
		return nil, fmt.Errorf("%w: payload size mismatch: %d != %d", ErrCorruption, len(data)-headerSize, payloadSize)
	}
	if got := crc32.ChecksumIEEE(data[4:]); got != crc {
		return nil, fmt.Errorf("%w: CRC32 mismatch: %d != %d", ErrCorruption, crc, got)
	}
	if v := data[8]; v != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version: %d", v)
	}

	r := &reader{data: data[headerSize:]}
	s := &Snapshot{}

	flags := r.u8()
	s.Indexed = flags&flagIndexed != 0
	s.Complete = flags&flagComplete != 0

	count := int(r.u8())
	for i := 0; i < count && r.err == nil; i++ {
		s.Sections = append(s.Sections, SectionEntry{
			Tag:    int64(r.u64()),
			Start:  int64(r.u64()),
			Length: int64(r.u64()),
		})
	}

	s.Header.Version = r.str()
	s.Header.EOF = r.u8()
	s.Header.EOR = r.u8()
	s.Header.PropertyCount = int64(r.u64())
	s.Header.GeneratedDate = r.str()
	fields := r.count(4)
	s.Header.Fields = make([]string, 0, fields)
	for i := 0; i < fields && r.err == nil; i++ {
		s.Header.Fields = append(s.Header.Fields, r.str())
	}

	ranges := r.count(16)
	s.Ranges = make([]RangeEntry, 0, ranges)
	for i := 0; i < ranges && r.err == nil; i++ {
		s.Ranges = append(s.Ranges, RangeEntry{
			Start: int64(r.u64()),
			End:   int64(r.u64()),
		})
	}

	if r.err != nil {
		return nil, r.err
	}
	if len(r.data) != r.off {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruption, len(r.data)-r.off)
	}
	return s, nil
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// reader walks a payload, recording the first short read
type reader struct {
	data []byte
	off  int
	err  error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.data)-r.off < n {
		r.err = fmt.Errorf("%w: payload truncated at offset %d", ErrCorruption, r.off)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) u32() uint32 {
	if b := r.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *reader) u64() uint64 {
	if b := r.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (r *reader) str() string {
	n := r.u32()
	return string(r.take(int(n)))
}

// count reads an element count and rejects counts the remaining payload cannot
// hold, given each element needs at least size bytes
func (r *reader) count(size int) int {
	n := int(r.u32())
	if r.err == nil && n > (len(r.data)-r.off)/size {
		r.err = fmt.Errorf("%w: element count %d exceeds payload", ErrCorruption, n)
		return 0
	}
	return n
}
