package cache

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrKeyExists = errors.New("key already exists in cache")
)

// Cache is a weighted LRU cache. Inserting past the weight budget evicts
// the least recently used items.
type Cache[T any] interface {
	// GetWeight returns the current weight of the cache
	GetWeight() int

	// GetBudget returns the weight budget of the cache
	GetBudget() int

	// Insert adds a new item. Returns ErrKeyExists if the key is present.
	Insert(key string, value T, weight int) error

	// Retrieve gets an item and marks it as recently used
	Retrieve(key string) (T, bool)

	// Clear removes all items
	Clear()
}

type cacheNode[T any] struct {
	next   *cacheNode[T]
	prev   *cacheNode[T]
	key    string
	value  T
	weight int
}

type cache[T any] struct {
	log *logrus.Entry

	mu     sync.Mutex
	head   *cacheNode[T]
	tail   *cacheNode[T]
	lookup map[string]*cacheNode[T]
	weight int
	budget int
}

// NewCache returns a new cache with a given weight budget.
func NewCache[T any](budget int) Cache[T] {
	return &cache[T]{
		log:    logrus.StandardLogger().WithField("type", "cache"),
		lookup: make(map[string]*cacheNode[T]),
		budget: budget,
	}
}

func (c *cache[T]) GetWeight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weight
}

func (c *cache[T]) GetBudget() int {
	return c.budget
}

func (c *cache[T]) Insert(key string, value T, weight int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, found := c.lookup[key]; found {
		return ErrKeyExists
	}

	node := &cacheNode[T]{
		key:    key,
		value:  value,
		weight: weight,
	}
	c.pushFront(node)
	c.lookup[key] = node
	c.weight += weight

	for c.weight > c.budget && c.tail != nil {
		evicted := c.tail
		c.unlink(evicted)
		delete(c.lookup, evicted.key)
		c.weight -= evicted.weight

		c.log.WithFields(logrus.Fields{
			"key":          evicted.key,
			"weight":       evicted.weight,
			"spare_weight": c.budget - c.weight,
		}).Trace("cache eviction")
	}

	return nil
}

func (c *cache[T]) Retrieve(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, found := c.lookup[key]
	if !found {
		var zero T
		return zero, false
	}

	if node != c.head {
		c.unlink(node)
		c.pushFront(node)
	}
	return node.value, true
}

func (c *cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.head = nil
	c.tail = nil
	c.lookup = make(map[string]*cacheNode[T])
	c.weight = 0
}

func (c *cache[T]) pushFront(node *cacheNode[T]) {
	node.prev = nil
	node.next = c.head
	if c.head != nil {
		c.head.prev = node
	}
	c.head = node
	if c.tail == nil {
		c.tail = node
	}
}

func (c *cache[T]) unlink(node *cacheNode[T]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		c.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		c.tail = node.prev
	}
	node.next = nil
	node.prev = nil
}
