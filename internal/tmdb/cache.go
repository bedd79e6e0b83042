package tmdb

import (
	"container/list"
	"sync"

	"github.com/hyperjump/reelmatch/internal/models"
)

// MovieCache is an LRU cache of normalized movie records keyed by id.
type MovieCache struct {
	capacity int
	cache    map[int]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type cacheEntry struct {
	id    int
	movie models.Movie
}

// NewMovieCache creates a cache holding at most capacity movies. A non-positive
// capacity disables caching.
func NewMovieCache(capacity int) *MovieCache {
	return &MovieCache{
		capacity: capacity,
		cache:    make(map[int]*list.Element),
		lru:      list.New(),
	}
}

// Get returns a copy of the cached movie if present.
func (c *MovieCache) Get(id int) (*models.Movie, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[id]; ok {
		c.lru.MoveToFront(elem)
		m := elem.Value.(*cacheEntry).movie
		m.Genres = append([]string(nil), m.Genres...)
		return &m, true
	}
	return nil, false
}

// Set stores a copy of the movie, evicting the least recently used entry when full.
func (c *MovieCache) Set(m *models.Movie) {
	if c.capacity <= 0 || m == nil {
		return
	}
	movie := *m
	movie.Genres = append([]string(nil), m.Genres...)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[m.ID]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).movie = movie
		return
	}

	elem := c.lru.PushFront(&cacheEntry{id: m.ID, movie: movie})
	c.cache[m.ID] = elem

	if c.lru.Len() > c.capacity {
		if oldest := c.lru.Back(); oldest != nil {
			c.lru.Remove(oldest)
			delete(c.cache, oldest.Value.(*cacheEntry).id)
		}
	}
}

// Len returns the number of cached movies.
func (c *MovieCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
