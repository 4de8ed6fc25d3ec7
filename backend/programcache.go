// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import "sync"

// programCacheSize bounds the number of compiled programs kept in memory.
// Every renderer compiles the same grid program, so a handful is plenty.
const programCacheSize = 8

// programNode is a node in the doubly-linked LRU list of programCache.
type programNode struct {
	key   ProgramSource
	value *CompiledProgram
	prev  *programNode
	next  *programNode
}

// programCache maps sources to compiled programs with LRU eviction.
// The head of the list is the most recently used entry.
//
// programCache is safe for concurrent use.
type programCache struct {
	mu      sync.Mutex
	entries map[ProgramSource]*programNode
	head    *programNode
	tail    *programNode
	limit   int
	hits    uint64
	misses  uint64
}

func newProgramCache(limit int) *programCache {
	return &programCache{entries: make(map[ProgramSource]*programNode), limit: limit}
}

var compiledPrograms = newProgramCache(programCacheSize)

func (c *programCache) get(src ProgramSource) (*CompiledProgram, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.entries[src]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.moveToFront(node)
	return node.value, true
}

func (c *programCache) put(src ProgramSource, p *CompiledProgram) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.entries[src]; ok {
		node.value = p
		c.moveToFront(node)
		return
	}
	node := &programNode{key: src, value: p}
	c.entries[src] = node
	c.pushFront(node)

	for c.limit > 0 && len(c.entries) > c.limit {
		oldest := c.tail
		c.unlink(oldest)
		delete(c.entries, oldest.key)
	}
}

func (c *programCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *programCache) stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *programCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[ProgramSource]*programNode)
	c.head, c.tail = nil, nil
	c.hits, c.misses = 0, 0
}

func (c *programCache) pushFront(node *programNode) {
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

func (c *programCache) moveToFront(node *programNode) {
	if node == c.head {
		return
	}
	c.unlink(node)
	c.pushFront(node)
}

func (c *programCache) unlink(node *programNode) {
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
	node.prev = nil
	node.next = nil
}
