// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stable

import (
	"errors"
	"io"
	"sync"
)

// ResourceRegistry tracks resources to be closed together.
// Typical usage:
//
//	reg := NewResourceRegistry()
//	defer reg.Release()
//
// It's thread-safe.
type ResourceRegistry struct {
	lock      sync.Mutex
	resources []io.Closer
	released  bool
}

// NewResourceRegistry creates an empty registry.
func NewResourceRegistry() *ResourceRegistry {
	return &ResourceRegistry{}
}

// Register adds the resource. It's closed at once if the registry was already released.
func (r *ResourceRegistry) Register(c io.Closer) {
	r.lock.Lock()
	if !r.released {
		r.resources = append(r.resources, c)
		r.lock.Unlock()
		return
	}
	r.lock.Unlock()

	if err := c.Close(); err != nil {
		logger.Debug("close resource registered after release", "err", err)
	}
}

// RegisterFunc adds a release function.
func (r *ResourceRegistry) RegisterFunc(f func()) {
	r.Register(closerFunc(f))
}

// Len returns the number of resources held.
func (r *ResourceRegistry) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()

	return len(r.resources)
}

// Release closes all resources in reverse order of registration.
// Only the first call does the work.
func (r *ResourceRegistry) Release() error {
	r.lock.Lock()
	if r.released {
		r.lock.Unlock()
		return nil
	}
	r.released = true
	resources := r.resources
	r.resources = nil
	r.lock.Unlock()

	var errs []error
	for i := len(resources) - 1; i >= 0; i-- {
		if err := resources[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}
