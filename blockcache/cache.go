// Package blockcache implements the bounded, dual-indexed block cache on
// the gateway's hot read path.
package blockcache

import (
	"sync"

	"github.com/subclone/subeth/translator"
)

// DefaultCapacity is the cache's default entry capacity.
const DefaultCapacity = 100

// Cache is a concurrent, bounded, FIFO-evicted cache of recent EthBlocks,
// indexed by both block hash and block number. All three internal
// structures (the FIFO order, the hash index, and the number index) move
// together under one sync.RWMutex; no callback is ever invoked while the
// lock is held.
type Cache struct {
	mu sync.RWMutex

	capacity     int
	order        [][32]byte // FIFO of hashes; duplicates tolerated, cleaned up on eviction
	hashToBlock  map[[32]byte]translator.EthBlock
	numberToHash map[uint64][32]byte
}

// New returns an empty Cache with the given capacity. A capacity <= 0 is
// replaced with DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity:     capacity,
		hashToBlock:  make(map[[32]byte]translator.EthBlock),
		numberToHash: make(map[uint64][32]byte),
	}
}

// InsertBlock inserts block, evicting the oldest entry first if the cache
// is already at capacity. Re-inserting a block already present is allowed
// and produces a duplicate order entry, an accepted over-eviction
// trade-off for simplicity.
func (c *Cache) InsertBlock(block translator.EthBlock) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.order) == c.capacity {
		c.evictOldestLocked()
	}

	c.hashToBlock[block.Hash] = block
	c.numberToHash[block.Number] = block.Hash
	c.order = append(c.order, block.Hash)
}

// evictOldestLocked pops the front of the FIFO order, removes it from
// hashToBlock, and purges any numberToHash entry that still points at the
// evicted hash. Callers must hold c.mu for writing.
func (c *Cache) evictOldestLocked() {
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.hashToBlock, oldest)

	for number, hash := range c.numberToHash {
		if hash == oldest {
			delete(c.numberToHash, number)
		}
	}
}

// InsertNumberToHash records that block number n resolves to hash h,
// without affecting the FIFO eviction order. Used when a hash has been
// resolved but the full block has not yet been fetched.
func (c *Cache) InsertNumberToHash(n uint64, h [32]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.numberToHash[n] = h
}

// GetByHash returns the cached block for h, if any.
func (c *Cache) GetByHash(h [32]byte) (translator.EthBlock, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.hashToBlock[h]
	return b, ok
}

// GetHashByNumber returns the hash cached for block number n, if any.
func (c *Cache) GetHashByNumber(n uint64) ([32]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.numberToHash[n]
	return h, ok
}

// GetByNumber returns the cached block for number n, if both the
// number->hash mapping and the hash->block entry are still present.
func (c *Cache) GetByNumber(n uint64) (translator.EthBlock, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.numberToHash[n]
	if !ok {
		return translator.EthBlock{}, false
	}
	b, ok := c.hashToBlock[h]
	return b, ok
}

// Clear drops all cached state.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	c.hashToBlock = make(map[[32]byte]translator.EthBlock)
	c.numberToHash = make(map[uint64][32]byte)
}
