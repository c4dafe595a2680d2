package blm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/ssargent/blmreader/pkg/codec"
)

// Option configures a File
type Option func(*options)

type options struct {
	chunkSize      int
	preview        bool
	maxProcessSize int64
	logger         log.Logger
	cache          IndexCache
	cacheKey       string
}

// WithChunkSize sets the read size used while scanning and indexing
func WithChunkSize(n int) Option {
	return func(o *options) { o.chunkSize = n }
}

// WithProcessing enables processing (preview) mode from the start
func WithProcessing(on bool) Option {
	return func(o *options) { o.preview = on }
}

// WithMaxProcessSize sets the file offset at which processing mode stops indexing
func WithMaxProcessSize(n int64) Option {
	return func(o *options) { o.maxProcessSize = n }
}

// WithLogger sets the logger for scan and index events
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithCache stores and reuses index snapshots in cache. Open derives the key from
// the file path, size and modification time; NewFile needs WithCacheKey as well.
func WithCache(cache IndexCache) Option {
	return func(o *options) { o.cache = cache }
}

// WithCacheKey sets the key under which the file's snapshots are cached
func WithCacheKey(key string) Option {
	return func(o *options) { o.cacheKey = key }
}

// File is a random-access reader over the records of one BLM file. Sections and
// header metadata are read when the File is created; the record index is built on
// first use and memoized.
type File struct {
	rs     io.ReadSeeker
	closer io.Closer
	opts   options
	codec  *codec.SnapshotCodec

	sections Sections
	header   Header
	ranges   []RecordRange
	indexed  bool
	complete bool
	closed   bool
}

// Open opens the BLM file at path
func Open(path string, opts ...Option) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	// Prepend so an explicit WithCacheKey still wins
	opts = append([]Option{WithCacheKey(CacheKey(path, info))}, opts...)

	f, err := newFile(file, file, opts)
	if err != nil {
		file.Close()
		return nil, err
	}
	return f, nil
}

// NewFile reads the sections and header of the BLM content in rs. The File takes
// ownership of rs's seek position; it does not close rs.
func NewFile(rs io.ReadSeeker, opts ...Option) (*File, error) {
	return newFile(rs, nil, opts)
}

func newFile(rs io.ReadSeeker, closer io.Closer, opts []Option) (*File, error) {
	o := options{
		chunkSize:      DefaultChunkSize,
		maxProcessSize: DefaultMaxProcessSize,
		logger:         log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.chunkSize <= 0 {
		o.chunkSize = DefaultChunkSize
	}

	f := &File{
		rs:     rs,
		closer: closer,
		opts:   o,
		codec:  codec.NewSnapshotCodec(),
	}

	if snap, ok := f.loadSnapshot(); ok {
		f.restore(snap)
		return f, nil
	}
	if err := f.readMetadata(); err != nil {
		return nil, err
	}
	return f, nil
}

// readMetadata scans the sections and parses HEADER and DEFINITION
func (f *File) readMetadata() error {
	if _, err := f.rs.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind file: %w", err)
	}

	start := time.Now()
	sections, err := ScanSections(f.rs, f.opts.chunkSize)
	if err != nil {
		return err
	}
	f.sections = sections

	hdr := sections.Get(SectionHeader)
	raw, err := f.readAt(hdr.StartOffset, hdr.Length)
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	f.header = ParseHeader(string(bytes.TrimSpace(raw)))

	def := sections.Get(SectionDefinition)
	raw, err = f.readAt(def.StartOffset, def.Length-1)
	if err != nil {
		return fmt.Errorf("failed to read definition: %w", err)
	}
	f.header.Fields = ParseDefinition(string(raw), f.header.EOF)

	level.Debug(f.opts.logger).Log("msg", "scanned sections", "fields", len(f.header.Fields),
		"data_start", sections.Get(SectionData).StartOffset,
		"data_length", sections.Get(SectionData).Length,
		"duration", time.Since(start))
	return nil
}

// Processing toggles processing (preview) mode. Switching mode discards a
// memoized index so the next accessor rebuilds it under the new policy.
func (f *File) Processing(on bool) {
	if f.opts.preview == on {
		return
	}
	f.opts.preview = on
	f.ranges = nil
	f.indexed = false
	f.complete = false
}

// IsProcessing reports whether processing mode is on
func (f *File) IsProcessing() bool {
	return f.opts.preview
}

// SetMaxProcessSize sets the processing mode byte threshold. A changed threshold
// discards a memoized preview index.
func (f *File) SetMaxProcessSize(n int64) {
	if f.opts.maxProcessSize == n {
		return
	}
	f.opts.maxProcessSize = n
	if f.opts.preview {
		f.ranges = nil
		f.indexed = false
		f.complete = false
	}
}

// Sections returns the section boundaries
func (f *File) Sections() Sections {
	return f.sections
}

// Header returns the parsed header metadata
func (f *File) Header() Header {
	return f.header
}

// Map returns the column names from DEFINITION
func (f *File) Map() []string {
	return f.header.Fields
}

// EOF returns the field delimiter
func (f *File) EOF() byte {
	return f.header.EOF
}

// EOR returns the record delimiter
func (f *File) EOR() byte {
	return f.header.EOR
}

// BuildIndex builds the record index if it has not been built yet
func (f *File) BuildIndex(ctx context.Context) error {
	if f.closed {
		return ErrClosed
	}
	if f.indexed {
		return nil
	}

	if snap, ok := f.loadSnapshot(); ok && snap.Indexed {
		f.restore(snap)
		return nil
	}

	data := f.sections.Get(SectionData)
	if _, err := f.rs.Seek(data.StartOffset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to data: %w", err)
	}

	start := time.Now()
	indexer := NewRecordIndexer(IndexOptions{
		ChunkSize:      f.opts.chunkSize,
		Preview:        f.opts.preview,
		MaxProcessSize: f.opts.maxProcessSize,
	})
	ranges, complete, err := indexer.Index(ctx, f.rs, data, f.header.EOR)
	if err != nil {
		return err
	}

	f.ranges = ranges
	f.indexed = true
	f.complete = complete
	level.Debug(f.opts.logger).Log("msg", "indexed records", "records", len(ranges), "complete", complete,
		"processing", f.opts.preview, "duration", time.Since(start))

	f.storeSnapshot()
	return nil
}

// Indexed reports whether the record index has been built
func (f *File) Indexed() bool {
	return f.indexed
}

// Complete reports whether the index covers the whole DATA section. It is false
// when processing mode stopped indexing early.
func (f *File) Complete() bool {
	return f.complete
}

// RecordCount returns the number of indexed records, building the index on
// first use
func (f *File) RecordCount() (int, error) {
	if err := f.BuildIndex(context.Background()); err != nil {
		return 0, err
	}
	return len(f.ranges), nil
}

// Range returns the byte range of record i
func (f *File) Range(i int) (RecordRange, error) {
	count, err := f.RecordCount()
	if err != nil {
		return RecordRange{}, err
	}
	if i < 0 || i >= count {
		return RecordRange{}, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, i, count)
	}
	return f.ranges[i], nil
}

// Ranges returns a copy of the record index
func (f *File) Ranges() ([]RecordRange, error) {
	if err := f.BuildIndex(context.Background()); err != nil {
		return nil, err
	}
	out := make([]RecordRange, len(f.ranges))
	copy(out, f.ranges)
	return out, nil
}

// Record returns the raw bytes of record i, without its delimiter
func (f *File) Record(i int) ([]byte, error) {
	r, err := f.Range(i)
	if err != nil {
		return nil, err
	}
	data, err := f.readAt(r.Start, r.Len())
	if err != nil {
		return nil, fmt.Errorf("failed to read record %d: %w", i, err)
	}
	return data, nil
}

// Records returns an iterator over every indexed record
func (f *File) Records() RecordIterator {
	return &recordIterator{file: f, index: -1}
}

// Close closes the underlying file if File opened it
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}

// readAt reads exactly n bytes at offset
func (f *File) readAt(offset, n int64) ([]byte, error) {
	if f.closed {
		return nil, ErrClosed
	}
	if n <= 0 {
		return []byte{}, nil
	}
	if _, err := f.rs.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(f.rs, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// RecordIterator provides streaming access to records
type RecordIterator interface {
	Next() bool
	Index() int
	Record() []byte
	Err() error
	Close() error
}

type recordIterator struct {
	file   *File
	index  int
	record []byte
	err    error
}

func (it *recordIterator) Next() bool {
	if it.err != nil {
		return false
	}
	count, err := it.file.RecordCount()
	if err != nil {
		it.err = err
		return false
	}
	if it.index+1 >= count {
		return false
	}
	it.index++
	it.record, it.err = it.file.Record(it.index)
	return it.err == nil
}

func (it *recordIterator) Index() int {
	return it.index
}

func (it *recordIterator) Record() []byte {
	return it.record
}

func (it *recordIterator) Err() error {
	return it.err
}

func (it *recordIterator) Close() error {
	// The file is owned by the caller
	return nil
}
