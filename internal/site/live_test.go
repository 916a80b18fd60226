package site

import (
	"context"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/hookpress/internal/models"
)

func TestLive_ReloadSwapsState(t *testing.T) {
	fsys := contentFS()
	s, _ := newSite(t, fsys)
	live := NewLive(s)
	assert.Nil(t, live.State())

	_, err := live.Page(context.Background(), models.Request{Slug: "custom", Route: "blog"})
	assert.Error(t, err)

	first, err := live.Reload(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, live.State())
	assert.Len(t, live.Documents(), 3)

	fsys["routes/blog/new.md"] = &fstest.MapFile{Data: []byte("# New")}
	second, err := live.Reload(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Len(t, live.Documents(), 4)

	req, ok := live.Resolve("/new/")
	require.True(t, ok)
	page, err := live.Page(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, page.HTML, "<h1>New</h1>")

	// The old state is untouched.
	_, ok = first.Resolve("/new/")
	assert.False(t, ok)
}

func TestLive_FailedReloadKeepsState(t *testing.T) {
	fsys := contentFS()
	s, _ := newSite(t, fsys)
	live := NewLive(s)
	first, err := live.Reload(context.Background())
	require.NoError(t, err)

	// blog/simple collides with the simple route's permalink.
	fsys["routes/blog/simple.md"] = &fstest.MapFile{Data: []byte("clash")}
	_, err = live.Reload(context.Background())
	require.Error(t, err)
	assert.Same(t, first, live.State())
}

func TestLive_ConcurrentReadsDuringReload(t *testing.T) {
	s, _ := newSite(t, contentFS())
	live := NewLive(s)
	_, err := live.Reload(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := live.Reload(context.Background())
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			data, err := live.PageData(context.Background(), models.Request{Slug: "custom", Route: "blog"})
			assert.NoError(t, err)
			assert.Contains(t, data[models.DataHTML], "<h1>Hi</h1>")
		}()
	}
	wg.Wait()
}
