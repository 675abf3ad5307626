package main

import (
	"context"
	"sync"

	"github.com/subclone/subeth/chainbackend"
	"github.com/subclone/subeth/translator"
)

// metadataCache fetches a chain's runtime metadata once it first succeeds:
// treated as read-mostly and immutable for the lifetime of a running node,
// so every later eth_call shares that decode. A failed fetch (e.g. node
// still syncing at startup) is not cached, so the next call retries.
type metadataCache struct {
	backend chainbackend.Backend

	mu   sync.Mutex
	have bool
	meta translator.Metadata
}

func newMetadataCache(backend chainbackend.Backend) *metadataCache {
	return &metadataCache{backend: backend}
}

// lookup matches ethapi.Service.MetadataLookup's signature.
func (c *metadataCache) lookup() (translator.Metadata, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.have {
		return c.meta, nil
	}
	meta, err := c.backend.Metadata(context.Background())
	if err != nil {
		return translator.Metadata{}, err
	}
	c.meta, c.have = meta, true
	return c.meta, nil
}
