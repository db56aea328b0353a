package memory

import (
	"sync"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// CacheConfig holds block cache parameters.
type CacheConfig struct {
	// Size in bytes
	Size int
	// Associativity (number of ways)
	Associativity int
	// BlockSize in bytes
	BlockSize int
}

// DefaultCacheConfig returns a 64KB 4-way cache with 256B blocks.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Size:          64 * 1024,
		Associativity: 4,
		BlockSize:     256,
	}
}

// CacheStats holds block cache statistics.
type CacheStats struct {
	Reads     uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
	// Bypasses counts reads served directly by the backing source
	// because they cross a block boundary or the block could not be filled.
	Bypasses uint64
}

// Cache is a read-only set-associative block cache in front of a slower
// source. Tag state is kept in an akita cache directory with LRU
// replacement. Cache is safe for concurrent use.
type Cache struct {
	mu sync.Mutex

	config    CacheConfig
	directory *akitacache.DirectoryImpl
	// Indexed by setID*associativity + wayID.
	dataStore [][]byte
	stats     CacheStats

	backing ByteSource
}

// NewCache creates a block cache over backing.
func NewCache(config CacheConfig, backing ByteSource) *Cache {
	numSets := config.Size / (config.Associativity * config.BlockSize)
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}
}

// Stats returns cache statistics.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Reset invalidates every block and clears the statistics.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.directory.Reset()
	c.stats = CacheStats{}
}

func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

// ReadBytes implements ByteSource. The returned slice is a copy.
func (c *Cache) ReadBytes(address uint64, count int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Reads++

	blockSize := uint64(c.config.BlockSize)
	blockAddr := address / blockSize * blockSize
	offset := address - blockAddr

	if count < 0 || offset+uint64(count) > blockSize {
		c.stats.Bypasses++
		return c.backing.ReadBytes(address, count)
	}

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		return c.copyOut(block, offset, count), nil
	}

	c.stats.Misses++
	return c.fill(blockAddr, offset, address, count)
}

// fill loads the block at blockAddr and serves the read from it. A block
// that cannot be read whole, typically the last one of a source, is not
// cached and the read goes to the backing source.
func (c *Cache) fill(blockAddr, offset, address uint64, count int) ([]byte, error) {
	data, err := c.backing.ReadBytes(blockAddr, c.config.BlockSize)
	if err != nil {
		c.stats.Bypasses++
		return c.backing.ReadBytes(address, count)
	}

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		c.stats.Bypasses++
		return c.backing.ReadBytes(address, count)
	}
	if victim.IsValid {
		c.stats.Evictions++
	}

	copy(c.dataStore[c.blockIndex(victim)], data)
	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)

	return c.copyOut(victim, offset, count), nil
}

func (c *Cache) copyOut(block *akitacache.Block, offset uint64, count int) []byte {
	out := make([]byte, count)
	copy(out, c.dataStore[c.blockIndex(block)][offset:])
	return out
}
