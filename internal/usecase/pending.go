package usecase

import "sync"

// PendingSet tracks requests that have been issued but not yet resolved, by key.
// The zero value is ready to use and it may be shared between requests.
type PendingSet struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// Acquire marks key as pending. It returns ErrOperationPending when key already is.
func (p *PendingSet) Acquire(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.keys[key]; ok {
		return ErrOperationPending
	}
	if p.keys == nil {
		p.keys = make(map[string]struct{})
	}
	p.keys[key] = struct{}{}
	return nil
}

// Release clears key.
func (p *PendingSet) Release(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.keys, key)
}

// Pending reports whether key is pending.
func (p *PendingSet) Pending(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.keys[key]
	return ok
}
