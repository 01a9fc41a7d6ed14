package mcp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cachedResult(uri, text string) *ReadResourceResult {
	return &ReadResourceResult{
		Contents: []ResourceContent{{URI: uri, MIMEType: "application/json", Text: text}},
	}
}

func TestCacheSetAndGet(t *testing.T) {
	c := NewResourceCache()

	assert.Nil(t, c.Get("resolve://project"))

	c.Set("resolve://project", cachedResult("resolve://project", `{"name":"Demo"}`))
	got := c.Get("resolve://project")
	require.NotNil(t, got)
	assert.Equal(t, `{"name":"Demo"}`, got.Contents[0].Text)
}

func TestCacheExpiry(t *testing.T) {
	c := NewResourceCache()
	c.SetTTL("resolve://timelines", time.Millisecond)

	c.Set("resolve://timelines", cachedResult("resolve://timelines", "{}"))
	time.Sleep(5 * time.Millisecond)
	assert.Nil(t, c.Get("resolve://timelines"))
}

func TestCacheInvalidateProjectState(t *testing.T) {
	c := NewResourceCache()
	for _, uri := range []string{
		"resolve://version", "resolve://capabilities", "resolve://project",
		"resolve://timelines", "resolve://markers",
		"resolve://media-pool", "resolve://render-queue",
	} {
		c.Set(uri, cachedResult(uri, "{}"))
	}

	c.InvalidateProjectState()

	assert.NotNil(t, c.Get("resolve://version"), "version is immutable and must survive")
	assert.NotNil(t, c.Get("resolve://capabilities"))
	for _, uri := range []string{
		"resolve://project", "resolve://timelines", "resolve://markers",
		"resolve://media-pool", "resolve://render-queue",
	} {
		assert.Nil(t, c.Get(uri), "%s should be dropped", uri)
	}
}

func TestCacheInvalidateSingle(t *testing.T) {
	c := NewResourceCache()
	c.Set("resolve://project", cachedResult("resolve://project", "{}"))
	c.Set("resolve://timelines", cachedResult("resolve://timelines", "{}"))

	c.Invalidate("resolve://project")
	assert.Nil(t, c.Get("resolve://project"))
	assert.NotNil(t, c.Get("resolve://timelines"))
}

func TestCacheDisabled(t *testing.T) {
	c := NewResourceCache()
	c.Set("resolve://project", cachedResult("resolve://project", "{}"))

	c.SetEnabled(false)
	assert.False(t, c.IsEnabled())
	assert.Nil(t, c.Get("resolve://project"), "disabling drops existing entries")

	c.Set("resolve://project", cachedResult("resolve://project", "{}"))
	assert.Nil(t, c.Get("resolve://project"), "a disabled cache never stores")
}

func TestCacheCleanup(t *testing.T) {
	c := NewResourceCache()
	c.SetTTL("resolve://timelines", time.Millisecond)
	c.Set("resolve://timelines", cachedResult("resolve://timelines", "{}"))
	c.Set("resolve://version", cachedResult("resolve://version", "{}"))

	time.Sleep(5 * time.Millisecond)
	c.Cleanup()

	c.mu.RLock()
	defer c.mu.RUnlock()
	assert.NotContains(t, c.entries, "resolve://timelines")
	assert.Contains(t, c.entries, "resolve://version")
}
