// Package di provides dependency injection container
package di

import (
	"io"

	"github.com/ssargent/blmreader/pkg/api" //nolint:depguard
	"github.com/ssargent/blmreader/pkg/blm"
	"github.com/ssargent/blmreader/pkg/storage"
)

// Cache is an index cache that is closed when the command exits
type Cache interface {
	blm.IndexCache
	io.Closer
	Keys() ([]string, error)
	Delete(key string) error
}

// CacheFactory opens the index cache stored in dir
type CacheFactory func(dir string) (Cache, error)

// Container holds all the dependencies for the application
type Container struct {
	serverFactory api.ServerFactory
	cacheFactory  CacheFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		serverFactory: api.NewServerFactory(),
		cacheFactory: func(dir string) (Cache, error) {
			cache, err := storage.NewIndexCache(dir)
			if err != nil {
				return nil, err
			}
			return cache, nil
		},
	}
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// GetCacheFactory returns the index cache factory
func (c *Container) GetCacheFactory() CacheFactory {
	return c.cacheFactory
}

// SetCacheFactory allows overriding the index cache factory (for testing)
func (c *Container) SetCacheFactory(factory CacheFactory) {
	c.cacheFactory = factory
}
