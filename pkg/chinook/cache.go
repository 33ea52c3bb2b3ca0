package chinook

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
)

const (
	defaultCacheSize = 512
	defaultCacheTTL  = 5 * time.Minute
)

var _ contractx.DataService = (*CachedService)(nil)

// CachedService memoizes successful lookups of a DataService for a bounded
// time. Errors, including not-found, are never cached.
type CachedService struct {
	next  contractx.DataService
	cache *expirable.LRU[string, any]
}

func NewCachedService(next contractx.DataService, size int, ttl time.Duration) *CachedService {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedService{
		next:  next,
		cache: expirable.NewLRU[string, any](size, nil, ttl),
	}
}

func (c *CachedService) Len() int {
	return c.cache.Len()
}

func (c *CachedService) AlbumsByArtist(ctx context.Context, artist string) ([]contractx.Album, error) {
	return cached(c, "albums:"+normalizeKey(artist), func() ([]contractx.Album, error) {
		return c.next.AlbumsByArtist(ctx, artist)
	})
}

func (c *CachedService) ArtistsByGenre(ctx context.Context, genre string) ([]contractx.Artist, error) {
	return cached(c, "artists:"+normalizeKey(genre), func() ([]contractx.Artist, error) {
		return c.next.ArtistsByGenre(ctx, genre)
	})
}

func (c *CachedService) TopTracksByArtist(ctx context.Context, artist string) ([]contractx.Track, error) {
	return cached(c, "tracks:"+normalizeKey(artist), func() ([]contractx.Track, error) {
		return c.next.TopTracksByArtist(ctx, artist)
	})
}

// Customer and billing lookups are not cached.
func (c *CachedService) CustomerByID(ctx context.Context, customerID string) (*contractx.Customer, error) {
	return c.next.CustomerByID(ctx, customerID)
}

func (c *CachedService) InvoiceByID(ctx context.Context, invoiceID string) (*contractx.Invoice, error) {
	return c.next.InvoiceByID(ctx, invoiceID)
}

func (c *CachedService) PurchaseHistory(ctx context.Context, customerID string) ([]contractx.Purchase, error) {
	return c.next.PurchaseHistory(ctx, customerID)
}

func cached[T any](c *CachedService, key string, load func() ([]T, error)) ([]T, error) {
	if v, ok := c.cache.Get(key); ok {
		if items, ok := v.([]T); ok {
			return copyItems(items), nil
		}
	}

	items, err := load()
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, copyItems(items))
	return items, nil
}

func copyItems[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}

func normalizeKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
