// Package codec provides snapshot serialization for the BLM index cache.
//
// A snapshot captures everything a reader derives from a BLM file: the four
// section boundaries, the parsed header and column map, and the record index.
// Persisting it lets a reader reopen a large, unchanged file without scanning it
// again.
//
// # Snapshot Format
//
// Snapshots are serialized in a binary format with the following structure:
//
//	[CRC32(4)][PayloadSize(4)][Version(1)][Payload]
//
// The payload is, in order:
//   - Flags (1): bit 0 indexed, bit 1 complete
//   - SectionCount (1), then Tag(8) Start(8) Length(8) per section
//   - Version string, EOF (1), EOR (1), PropertyCount (8), GeneratedDate string
//   - FieldCount (4), then one string per field
//   - RangeCount (4), then Start(8) End(8) per record
//
// Strings are a 32-bit length followed by the bytes. All integers are
// little-endian.
//
// # CRC32 Calculation
//
// The CRC32 checksum covers every byte after the CRC32 field itself, so damage to
// the size, version or payload is detected by Decode, which reports
// ErrCorruption.
//
// # Usage
//
//	c := codec.NewSnapshotCodec()
//
//	encoded, err := c.Encode(snapshot)
//	if err != nil {
//	    return err
//	}
//
//	decoded, err := c.Decode(encoded)
//	if errors.Is(err, codec.ErrCorruption) {
//	    // rebuild the index from the file
//	}
//
// # Thread Safety
//
// SnapshotCodec instances are stateless and safe for concurrent use.
package codec
