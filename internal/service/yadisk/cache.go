package yadisk

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/oshokin/yadisk-grabber/internal/metrics"
)

// ListingCache keeps listings for a limited time.
type ListingCache interface {
	// Get returns the cached listing for ref, or false when it is absent or expired.
	Get(ref PublicResourceRef) (*ListingResult, bool)
	// Put stores a listing, replacing the previous one and restarting its TTL.
	Put(ref PublicResourceRef, result *ListingResult)
	// Purge drops every cached listing.
	Purge()
	// Len returns the number of cached listings, expired ones included until they are evicted.
	Len() int
}

// ExpirableListingCache implements ListingCache on top of an expirable LRU.
// It is safe for concurrent use.
type ExpirableListingCache struct {
	// listings maps PublicResourceRef.CacheKey to listings.
	listings *expirable.LRU[string, *ListingResult]
}

// NewListingCache creates a cache of at most size listings that expire after ttl.
// A non-positive ttl disables caching.
func NewListingCache(size int, ttl time.Duration) ListingCache {
	if ttl <= 0 || size <= 0 {
		return disabledListingCache{}
	}

	return &ExpirableListingCache{
		listings: expirable.NewLRU[string, *ListingResult](size, nil, ttl),
	}
}

// Get returns the cached listing for ref, or false when it is absent or expired.
func (c *ExpirableListingCache) Get(ref PublicResourceRef) (*ListingResult, bool) {
	result, ok := c.listings.Get(ref.CacheKey())
	metrics.RecordCacheLookup(ok)

	return result, ok
}

// Put stores a listing, replacing the previous one and restarting its TTL.
func (c *ExpirableListingCache) Put(ref PublicResourceRef, result *ListingResult) {
	c.listings.Add(ref.CacheKey(), result)
}

// Purge drops every cached listing.
func (c *ExpirableListingCache) Purge() {
	c.listings.Purge()
}

// Len returns the number of cached listings.
func (c *ExpirableListingCache) Len() int {
	return c.listings.Len()
}

// disabledListingCache never holds anything.
type disabledListingCache struct{}

func (disabledListingCache) Get(PublicResourceRef) (*ListingResult, bool) {
	metrics.RecordCacheLookup(false)

	return nil, false
}

func (disabledListingCache) Put(PublicResourceRef, *ListingResult) {}

func (disabledListingCache) Purge() {}

func (disabledListingCache) Len() int { return 0 }
