// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package registry holds the process-global handle→instance map. Handle
// numbers come from an atomic counter that is independent of the map's
// lock; only inserting the newly allocated instance takes the map's write
// lock, briefly (spec §4.4, §5).
package registry

import (
	"sync"
	"sync/atomic"

	"github.com/siliconlabs/cpc-nvm3/errcode"
)

// Handle identifies a registered instance across the public API boundary.
type Handle uint32

// Registry is a process-global handle→instance map with a lock-free atomic
// handle counter kept apart from the map's lock.
type Registry[T any] struct {
	nextHandle atomic.Uint32

	mu   sync.RWMutex
	byID map[Handle]T
}

// New returns an empty Registry. The handle counter starts at 0 so the
// first allocated handle is 1, matching the reference implementation's
// 1-based instance keys.
func New[T any]() *Registry[T] {
	return &Registry[T]{byID: make(map[Handle]T)}
}

// Allocate reserves the next handle and inserts value under it. It returns
// errcode.Failure if the 32-bit handle space is exhausted.
func (r *Registry[T]) Allocate(value T) (Handle, error) {
	for {
		cur := r.nextHandle.Load()
		if cur == ^uint32(0) {
			return 0, errcode.New(errcode.Failure, "instance handle space exhausted")
		}
		next := cur + 1
		if r.nextHandle.CompareAndSwap(cur, next) {
			h := Handle(next)
			r.mu.Lock()
			r.byID[h] = value
			r.mu.Unlock()
			return h, nil
		}
	}
}

// Lookup returns the value registered under h, or errcode.NotInitialized if
// no such handle is registered.
func (r *Registry[T]) Lookup(h Handle) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byID[h]
	if !ok {
		var zero T
		return zero, errcode.New(errcode.NotInitialized, "no instance registered for handle %d", h)
	}
	return v, nil
}

// Remove deletes h from the registry. It is a no-op if h is not present.
func (r *Registry[T]) Remove(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, h)
}
