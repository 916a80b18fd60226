package site

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/starford/hookpress/internal/apperr"
	"github.com/starford/hookpress/internal/models"
)

// Live holds the current State of a long-running site. Readers always see a
// complete state; Reload bootstraps a new one and swaps it in only on success.
type Live struct {
	site   *Site
	state  atomic.Pointer[State]
	reload sync.Mutex
}

// NewLive wraps s. Call Reload before serving.
func NewLive(s *Site) *Live {
	return &Live{site: s}
}

// Site returns the underlying site.
func (l *Live) Site() *Site { return l.site }

// State returns the current state, or nil before the first successful Reload.
func (l *Live) State() *State { return l.state.Load() }

// Reload bootstraps a fresh state and makes it current. On failure the
// previous state stays in place. Concurrent reloads run one at a time.
func (l *Live) Reload(ctx context.Context) (*State, error) {
	l.reload.Lock()
	defer l.reload.Unlock()

	st, err := l.site.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	l.state.Store(st)
	l.site.rec.IncReload()
	return st, nil
}

func (l *Live) current() (*State, error) {
	st := l.State()
	if st == nil {
		return nil, fmt.Errorf("site: not bootstrapped: %w", apperr.ErrNotReady)
	}
	return st, nil
}

// Resolve returns the request served at permalink in the current state.
func (l *Live) Resolve(permalink string) (models.Request, bool) {
	st := l.State()
	if st == nil {
		return models.Request{}, false
	}
	return st.Resolve(permalink)
}

// Page renders req against the current state.
func (l *Live) Page(ctx context.Context, req models.Request) (*Page, error) {
	st, err := l.current()
	if err != nil {
		return nil, err
	}
	return l.site.Page(ctx, st, req)
}

// PageData returns the data req would be rendered with in the current state.
func (l *Live) PageData(ctx context.Context, req models.Request) (models.Data, error) {
	st, err := l.current()
	if err != nil {
		return nil, err
	}
	return l.site.PageData(ctx, st, req)
}

// Documents returns the content documents of the current state.
func (l *Live) Documents() []models.Document {
	st := l.State()
	if st == nil {
		return nil
	}
	docs, _ := st.data.Documents()
	return docs
}
