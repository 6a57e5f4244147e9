package common

import (
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	cachePrefixBlogBySlug = "blog_by_slug:"
	cachePrefixBlogPage   = "blogs:"
	cachePrefixRevoked    = "revoked_token:"
)

type Cache struct {
	*cache.Cache
}

func NewCache(expirationTime, cleanupTime time.Duration) *Cache {
	return &Cache{cache.New(expirationTime, cleanupTime)}
}

func (c *Cache) Set(key string, value interface{}, expiration ...time.Duration) {
	if len(expiration) > 0 {
		c.Cache.Set(key, value, expiration[0])
		return
	}
	c.Cache.Set(key, value, cache.DefaultExpiration)
}

func (c *Cache) Get(key string) (interface{}, bool) {
	return c.Cache.Get(key)
}

// DeletePrefix removes every unexpired item whose key starts with prefix.
func (c *Cache) DeletePrefix(prefix string) {
	for key := range c.Cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.Cache.Delete(key)
		}
	}
}

func (c *Cache) Flush() {
	c.Cache.Flush()
}

func CacheKeyBlogBySlug(slug string) string {
	return cachePrefixBlogBySlug + slug
}

func CacheKeyBlogPage(page, limit int) string {
	return cachePrefixBlogPage + strconv.Itoa(page) + ":" + strconv.Itoa(limit)
}

// CacheKeyBlogPages is the prefix shared by every cached blog list page.
func CacheKeyBlogPages() string {
	return cachePrefixBlogPage
}

func CacheKeyRevokedToken(jti string) string {
	return cachePrefixRevoked + jti
}
