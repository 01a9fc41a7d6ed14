package mcp

import (
	"sync"
	"time"
)

// ResourceCache caches resource reads. Every read otherwise costs a
// round of vendor calls through the scripting bridge, which is slow
// and single-flight. Entries carry per-URI TTLs and are invalidated
// when a mutating tool runs.
type ResourceCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttls    map[string]time.Duration
	enabled bool
}

type cacheEntry struct {
	result    *ReadResourceResult
	expiresAt time.Time
}

// Default TTLs per resource.
const (
	// VersionTTL is long; the host version does not change mid-session.
	VersionTTL = 5 * time.Minute

	// CapabilitiesTTL matches the version; the probe result is stable.
	CapabilitiesTTL = 5 * time.Minute

	// ProjectTTL is short since the user can switch projects in the UI
	// at any time.
	ProjectTTL = 10 * time.Second

	// TimelineTTL is the shortest; edits land here constantly.
	TimelineTTL = 5 * time.Second

	// MarkersTTL mirrors the timeline.
	MarkersTTL = 5 * time.Second

	// MediaPoolTTL is medium; imports are less frequent than edits.
	MediaPoolTTL = 30 * time.Second

	// RenderJobsTTL is short while renders are being queued.
	RenderJobsTTL = 5 * time.Second
)

// NewResourceCache creates a cache with default TTLs.
func NewResourceCache() *ResourceCache {
	return &ResourceCache{
		entries: make(map[string]*cacheEntry),
		ttls: map[string]time.Duration{
			"resolve://version":      VersionTTL,
			"resolve://capabilities": CapabilitiesTTL,
			"resolve://project":      ProjectTTL,
			"resolve://timelines":    TimelineTTL,
			"resolve://markers":      MarkersTTL,
			"resolve://media-pool":   MediaPoolTTL,
			"resolve://render-queue": RenderJobsTTL,
		},
		enabled: true,
	}
}

// Get returns the cached result for a URI or nil when absent or expired.
func (c *ResourceCache) Get(uri string) *ReadResourceResult {
	if !c.enabled {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[uri]
	if !ok {
		return nil
	}
	if time.Now().After(entry.expiresAt) {
		return nil
	}
	return entry.result
}

// Set caches a result with the TTL configured for that URI.
func (c *ResourceCache) Set(uri string, result *ReadResourceResult) {
	if !c.enabled || result == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ttl := c.ttls[uri]
	if ttl == 0 {
		ttl = 10 * time.Second
	}
	c.entries[uri] = &cacheEntry{
		result:    result,
		expiresAt: time.Now().Add(ttl),
	}
}

// Invalidate removes a specific resource from the cache.
func (c *ResourceCache) Invalidate(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, uri)
}

// InvalidateAll removes all resources from the cache.
func (c *ResourceCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// InvalidateProjectState drops every resource that reflects mutable
// project state. Called after any tool that writes to the host.
// Version and capabilities survive since mutations cannot change them.
func (c *ResourceCache) InvalidateProjectState() {
	c.mu.Lock()
	defer c.mu.Unlock()

	stateDependent := []string{
		"resolve://project",
		"resolve://timelines",
		"resolve://markers",
		"resolve://media-pool",
		"resolve://render-queue",
	}
	for _, uri := range stateDependent {
		delete(c.entries, uri)
	}
}

// SetTTL configures the TTL for a specific resource URI.
func (c *ResourceCache) SetTTL(uri string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttls[uri] = ttl
}

// SetEnabled enables or disables caching.
func (c *ResourceCache) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
	if !enabled {
		c.entries = make(map[string]*cacheEntry)
	}
}

// IsEnabled returns whether caching is enabled.
func (c *ResourceCache) IsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// Cleanup removes expired entries to bound memory growth.
func (c *ResourceCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for uri, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, uri)
		}
	}
}
