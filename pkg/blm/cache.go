package blm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-kit/log/level"

	"github.com/ssargent/blmreader/pkg/codec"
)

// IndexCache stores encoded index snapshots between opens of the same file.
// Get returns ErrCacheMiss when the key is unknown.
type IndexCache interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// CacheKey identifies one on-disk version of a file
func CacheKey(path string, info os.FileInfo) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
}

// snapshotKey separates full snapshots from preview ones. A preview index depends
// on the byte threshold it was built under, so the threshold is part of its key.
func (f *File) snapshotKey() string {
	if f.opts.preview {
		return f.opts.cacheKey + "|preview|" + strconv.FormatInt(f.opts.maxProcessSize, 10)
	}
	return f.opts.cacheKey + "|full"
}

func (f *File) loadSnapshot() (*codec.Snapshot, bool) {
	if f.opts.cache == nil || f.opts.cacheKey == "" {
		return nil, false
	}

	key := f.snapshotKey()
	data, err := f.opts.cache.Get(key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			level.Warn(f.opts.logger).Log("msg", "index cache read failed", "key", key, "err", err)
		}
		return nil, false
	}

	snap, err := f.codec.Decode(data)
	if err != nil {
		level.Warn(f.opts.logger).Log("msg", "discarding corrupt index snapshot", "key", key, "err", err)
		return nil, false
	}
	if len(snap.Sections) != len(sectionOrder) {
		level.Warn(f.opts.logger).Log("msg", "discarding index snapshot with wrong section count", "key", key, "sections", len(snap.Sections))
		return nil, false
	}
	level.Debug(f.opts.logger).Log("msg", "index cache hit", "key", key, "records", len(snap.Ranges), "indexed", snap.Indexed)
	return snap, true
}

func (f *File) storeSnapshot() {
	if f.opts.cache == nil || f.opts.cacheKey == "" {
		return
	}

	key := f.snapshotKey()
	data, err := f.codec.Encode(f.snapshot())
	if err != nil {
		level.Warn(f.opts.logger).Log("msg", "failed to encode index snapshot", "key", key, "err", err)
		return
	}
	if err := f.opts.cache.Set(key, data); err != nil {
		level.Warn(f.opts.logger).Log("msg", "index cache write failed", "key", key, "err", err)
	}
}

// snapshot captures the memoized state of the file
func (f *File) snapshot() *codec.Snapshot {
	snap := &codec.Snapshot{
		Indexed:  f.indexed,
		Complete: f.complete,
		Header: codec.HeaderEntry{
			Version:       f.header.Version,
			EOF:           f.header.EOF,
			EOR:           f.header.EOR,
			PropertyCount: int64(f.header.PropertyCount),
			GeneratedDate: f.header.GeneratedDate,
			Fields:        f.header.Fields,
		},
	}
	for _, s := range f.sections {
		snap.Sections = append(snap.Sections, codec.SectionEntry{
			Tag:    s.TagOffset,
			Start:  s.StartOffset,
			Length: s.Length,
		})
	}
	for _, r := range f.ranges {
		snap.Ranges = append(snap.Ranges, codec.RangeEntry{Start: r.Start, End: r.End})
	}
	return snap
}

// restore replaces the memoized state with a decoded snapshot
func (f *File) restore(snap *codec.Snapshot) {
	for i, s := range snap.Sections {
		f.sections[i] = Section{
			Name:        sectionOrder[i],
			TagOffset:   s.Tag,
			StartOffset: s.Start,
			Length:      s.Length,
		}
	}
	f.header = Header{
		Version:       snap.Header.Version,
		EOF:           snap.Header.EOF,
		EOR:           snap.Header.EOR,
		PropertyCount: int(snap.Header.PropertyCount),
		GeneratedDate: snap.Header.GeneratedDate,
		Fields:        snap.Header.Fields,
	}
	if snap.Header.Fields == nil {
		f.header.Fields = []string{}
	}

	if !snap.Indexed {
		return
	}
	f.ranges = make([]RecordRange, len(snap.Ranges))
	for i, r := range snap.Ranges {
		f.ranges[i] = RecordRange{Index: uint32(i), Start: r.Start, End: r.End}
	}
	f.indexed = true
	f.complete = snap.Complete
}
