package app

import (
	"dao-dashboard/internal/chain"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// View is a mounted page.
type View interface {
	ID() string
	Snapshot() interface{}
	SetSession(session chain.Session)
	Reload()
	Close()
}

// ViewRegistry keeps the mounted views. A view untouched for the TTL is
// unmounted, which cancels its in-flight loads.
type ViewRegistry struct {
	logger *zap.Logger
	views  *cache.Cache
	ttl    time.Duration
}

func newViewRegistry(logger *zap.Logger, ttl time.Duration, metrics Metrics) *ViewRegistry {
	views := cache.New(ttl, ttl/2)
	views.OnEvicted(func(id string, v interface{}) {
		v.(View).Close()
		metrics.ViewUnmounted()
		logger.Debug("view unmounted", zap.String("viewID", id))
	})
	return &ViewRegistry{logger: logger, views: views, ttl: ttl}
}

func (r *ViewRegistry) add(assign func(id string) View) View {
	id := uuid.NewString()
	view := assign(id)
	r.views.SetDefault(id, view)
	return view
}

// Get returns the view and extends its lifetime.
func (r *ViewRegistry) Get(id string) (View, error) {
	v, ok := r.views.Get(id)
	if !ok {
		return nil, ErrViewNotFound
	}
	// a view unmounted in between stays unmounted
	_ = r.views.Replace(id, v, cache.DefaultExpiration)
	return v.(View), nil
}

func (r *ViewRegistry) Remove(id string) error {
	if _, ok := r.views.Get(id); !ok {
		return ErrViewNotFound
	}
	r.views.Delete(id)
	return nil
}

func (r *ViewRegistry) Count() int {
	return r.views.ItemCount()
}

// Clear unmounts every view.
func (r *ViewRegistry) Clear() {
	for id := range r.views.Items() {
		r.views.Delete(id)
	}
}
