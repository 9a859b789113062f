// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stable

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type failCloser struct {
	err    error
	closed *int
}

func (c failCloser) Close() error {
	*c.closed++
	return c.err
}

func TestResourceRegistry(t *testing.T) {
	reg := NewResourceRegistry()

	var order []int
	reg.RegisterFunc(func() { order = append(order, 1) })
	reg.RegisterFunc(func() { order = append(order, 2) })

	closed := 0
	errA, errB := errors.New("a"), errors.New("b")
	reg.Register(failCloser{errA, &closed})
	reg.Register(failCloser{errB, &closed})
	assert.Equal(t, 4, reg.Len())

	err := reg.Release()
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, []int{2, 1}, order)
	assert.Equal(t, 2, closed)
	assert.Equal(t, 0, reg.Len())

	// only once
	assert.NoError(t, reg.Release())
	assert.Equal(t, 2, closed)

	// closed at once after release
	reg.Register(failCloser{nil, &closed})
	assert.Equal(t, 3, closed)
	assert.Equal(t, 0, reg.Len())
}

func TestResourceRegistryReleasesOnPanic(t *testing.T) {
	released := false
	func() {
		defer func() { _ = recover() }()

		reg := NewResourceRegistry()
		defer reg.Release()
		reg.RegisterFunc(func() { released = true })
		panic("boom")
	}()
	assert.True(t, released)
}
