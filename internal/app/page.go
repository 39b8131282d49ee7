package app

import (
	"context"
	"dao-dashboard/internal/chain"
	"dao-dashboard/internal/model"
	"sync"
)

type PageStatus string

const (
	StatusLoading PageStatus = "loading"
	StatusReady   PageStatus = "ready"
	StatusError   PageStatus = "error"
)

// LoadState is the visible outcome of the last load. A failed load is
// retryable with an explicit reload.
type LoadState struct {
	Status    PageStatus
	Error     string
	Retryable bool
}

func loading() LoadState {
	return LoadState{Status: StatusLoading}
}

func ready() LoadState {
	return LoadState{Status: StatusReady}
}

func failed(err error) LoadState {
	return LoadState{Status: StatusError, Error: err.Error(), Retryable: true}
}

// page holds what every mounted page shares: the lifetime context cancelled
// on unmount and the session of the viewer.
type page struct {
	app *App
	id  string

	mu           sync.Mutex
	session      chain.Session
	ctx          context.Context
	cancel       context.CancelFunc
	notification *model.Notification
	wg           sync.WaitGroup
}

func (p *page) init(a *App, session chain.Session) {
	p.app = a
	p.session = session
	p.ctx, p.cancel = context.WithCancel(context.Background())
}

// swapSession replaces the session and reports whether the account changed.
func (p *page) swapSession(session chain.Session) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session.Address == session.Address {
		return false
	}
	p.session = session
	return true
}

func (p *page) currentSession() chain.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

func (p *page) ID() string {
	return p.id
}

// current reports whether a result of gen may still be applied, latest
// being the generation of the last load started. Caller holds mu.
func (p *page) current(gen, latest uint64) error {
	if p.ctx.Err() != nil {
		return ErrViewClosed
	}
	if gen != latest {
		return ErrStaleResult
	}
	return nil
}

// goLoad runs load in the background until the page is closed.
func (p *page) goLoad(load func() error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx.Err() != nil {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		_ = load()
	}()
}

func (p *page) notify(n model.Notification) {
	p.mu.Lock()
	p.notification = &n
	p.mu.Unlock()
	p.app.publish(p.id, notifyEvent, n)
}

func (p *page) close() {
	p.mu.Lock()
	p.cancel()
	p.mu.Unlock()
	p.wg.Wait()
}
