package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/cockroachdb/pebble"
	"github.com/klauspost/compress/zstd"

	"github.com/ssargent/blmreader/pkg/blm"
)

// IndexCache persists BLM index snapshots in a pebble database. Values are zstd
// compressed; a record index is mostly small ascending offsets and shrinks well.
type IndexCache struct {
	db      *pebble.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewIndexCache opens (or creates) the cache database in dir
func NewIndexCache(dir string) (*IndexCache, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open index cache: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &IndexCache{db: db, encoder: encoder, decoder: decoder}, nil
}

// Get returns the snapshot stored under key, or blm.ErrCacheMiss
func (c *IndexCache) Get(key string) ([]byte, error) {
	data, closer, err := c.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, blm.ErrCacheMiss
		}
		return nil, err
	}
	defer closer.Close()

	// DecodeAll copies out of data, which is only valid until closer is closed
	out, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s: %w", key, err)
	}
	return out, nil
}

// Set stores a snapshot under key
func (c *IndexCache) Set(key string, value []byte) error {
	return c.db.Set([]byte(key), c.encoder.EncodeAll(value, nil), pebble.NoSync)
}

// Delete removes the snapshot stored under key
func (c *IndexCache) Delete(key string) error {
	return c.db.Delete([]byte(key), pebble.NoSync)
}

// Keys returns every cached key
func (c *IndexCache) Keys() ([]string, error) {
	iter, err := c.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var keys []string
	for iter.First(); iter.Valid(); iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	return keys, iter.Error()
}

// Close flushes and closes the database
func (c *IndexCache) Close() error {
	c.decoder.Close()
	c.encoder.Close()
	if err := c.db.Flush(); err != nil {
		c.db.Close()
		return err
	}
	return c.db.Close()
}
