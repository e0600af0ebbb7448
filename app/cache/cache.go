// Package cache provides a bounded LRU over decoded video frames so that
// scrubbing backwards does not force a re-decode from the start of the file.
package cache

import (
	"image"
	"sync"
)

// FrameCache is a fixed-capacity LRU of decoded frames. Safe for concurrent
// use, although the editing session is the only writer in practice.
type FrameCache struct {
	mu       sync.Mutex
	capacity int
	head     *frameNode
	tail     *frameNode
	nodes    map[string]*frameNode
}

// frameNode is a node in the eviction list
type frameNode struct {
	key        string
	frame      *image.RGBA
	prev, next *frameNode
}

// NewFrameCache creates a cache that holds at most capacity frames. A
// capacity below 1 disables caching entirely.
func NewFrameCache(capacity int) *FrameCache {
	head := &frameNode{}
	tail := &frameNode{}
	head.next = tail
	tail.prev = head

	return &FrameCache{
		capacity: capacity,
		head:     head,
		tail:     tail,
		nodes:    make(map[string]*frameNode),
	}
}

// Get returns the cached frame for key and marks it most recently used.
// Callers must treat the returned frame as read-only.
func (c *FrameCache) Get(key string) (*image.RGBA, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.nodes[key]
	if !ok {
		return nil, false
	}
	c.unlink(node)
	c.pushFront(node)
	return node.frame, true
}

// Put stores a frame under key, evicting the least recently used frame when
// the cache is full.
func (c *FrameCache) Put(key string, frame *image.RGBA) {
	if c.capacity < 1 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.nodes[key]; ok {
		node.frame = frame
		c.unlink(node)
		c.pushFront(node)
		return
	}

	node := &frameNode{key: key, frame: frame}
	c.nodes[key] = node
	c.pushFront(node)

	for len(c.nodes) > c.capacity {
		oldest := c.tail.prev
		c.unlink(oldest)
		delete(c.nodes, oldest.key)
	}
}

// Len returns the number of cached frames.
func (c *FrameCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}

func (c *FrameCache) unlink(node *frameNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
}

func (c *FrameCache) pushFront(node *frameNode) {
	node.next = c.head.next
	node.prev = c.head
	c.head.next.prev = node
	c.head.next = node
}
