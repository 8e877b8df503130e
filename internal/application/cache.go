package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/allegro/bigcache/v3"
	"github.com/pkg/errors"
)

// Cache holds the fetched collection per admin session so status and
// comment updates can be patched in place instead of refetching.
type Cache struct {
	mu    sync.Mutex
	store *bigcache.BigCache
}

func NewCache(store *bigcache.BigCache) *Cache {
	return &Cache{store: store}
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "applications:" + hex.EncodeToString(sum[:])
}

func (c *Cache) Get(token string) ([]Application, bool) {
	raw, err := c.store.Get(cacheKey(token))
	if err != nil {
		return nil, false
	}
	var list []Application
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false
	}
	return list, true
}

func (c *Cache) Set(token string, list []Application) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return errors.Wrap(err, "unable to encode applications")
	}
	return c.store.Set(cacheKey(token), raw)
}

// Patch applies fn to the cached application with the given id. It reports
// false when nothing is cached for the session or the id is unknown.
func (c *Cache) Patch(token, id string, fn func(*Application)) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list, ok := c.Get(token)
	if !ok {
		return false, nil
	}
	found := false
	for i := range list {
		if list[i].ID == id {
			fn(&list[i])
			found = true
			break
		}
	}
	if !found {
		return false, nil
	}
	return true, c.Set(token, list)
}

func (c *Cache) Invalidate(token string) {
	c.store.Delete(cacheKey(token))
}
