// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stable

import (
	"encoding/binary"
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/praos/block"
	"github.com/vechain/praos/kv"
	"github.com/vechain/praos/praos"
)

// From is the lower bound of a stream.
type From struct {
	point     praos.Point
	exclusive bool
}

// FromInclusive starts the stream at the block of point. Origin starts at the first block.
func FromInclusive(point praos.Point) From {
	return From{point: point}
}

// FromExclusive starts the stream after the block of point.
func FromExclusive(point praos.Point) From {
	return From{point: point, exclusive: true}
}

// To is the upper bound of a stream, always inclusive.
type To struct {
	point praos.Point
}

// ToInclusive ends the stream at the block of point.
func ToInclusive(point praos.Point) To {
	return To{point: point}
}

// entry is a stored block whose fields are loaded on demand.
type entry struct {
	s       *Store
	slot    uint64
	hash    praos.Hash32
	meta    *metaRecord
	payload []byte
}

func (e *entry) getMeta() (*metaRecord, error) {
	if e.meta == nil {
		meta, err := e.s.getMeta(e.hash)
		if err != nil {
			return nil, err
		}
		e.meta = meta
	}
	return e.meta, nil
}

func (e *entry) raw() (block.Raw, error) {
	if e.payload == nil {
		payload, err := e.s.getPayload(e.hash)
		if err != nil {
			return nil, err
		}
		e.payload = payload
	}
	return block.Raw(e.payload), nil
}

// Component is a projection of a stored block.
type Component[T any] struct {
	name    string
	extract func(e *entry) (T, error)
}

// Name returns the component name.
func (c Component[T]) Name() string { return c.name }

// components of a stored block.
var (
	ComponentBlock = Component[*block.Block]{"block", func(e *entry) (*block.Block, error) {
		raw, err := e.raw()
		if err != nil {
			return nil, err
		}
		return raw.Decode()
	}}
	ComponentHeader = Component[*block.Header]{"header", func(e *entry) (*block.Header, error) {
		raw, err := e.raw()
		if err != nil {
			return nil, err
		}
		return raw.DecodeHeader()
	}}
	ComponentRaw = Component[block.Raw]{"raw", func(e *entry) (block.Raw, error) {
		raw, err := e.raw()
		if err != nil {
			return nil, err
		}
		return slices.Clone(raw), nil
	}}
	ComponentHash = Component[praos.Hash32]{"hash", func(e *entry) (praos.Hash32, error) {
		return e.hash, nil
	}}
	ComponentSlot = Component[uint64]{"slot", func(e *entry) (uint64, error) {
		return e.slot, nil
	}}
	ComponentPoint = Component[praos.Point]{"point", func(e *entry) (praos.Point, error) {
		return praos.NewPoint(e.slot, e.hash), nil
	}}
	ComponentPrevHash = Component[praos.Hash32]{"prev-hash", func(e *entry) (praos.Hash32, error) {
		meta, err := e.getMeta()
		if err != nil {
			return praos.Hash32{}, err
		}
		return meta.PrevHash, nil
	}}
	ComponentBlockSize = Component[uint64]{"size", func(e *entry) (uint64, error) {
		meta, err := e.getMeta()
		if err != nil {
			return 0, err
		}
		return meta.Size, nil
	}}
	ComponentHeaderSize = Component[uint64]{"header-size", func(e *entry) (uint64, error) {
		raw, err := e.raw()
		if err != nil {
			return 0, err
		}
		return raw.HeaderSize()
	}}
	ComponentIsEBB = Component[bool]{"ebb", func(e *entry) (bool, error) {
		raw, err := e.raw()
		if err != nil {
			return false, err
		}
		header, err := raw.DecodeHeader()
		if err != nil {
			return false, err
		}
		return header.IsEpochBoundary(), nil
	}}
)

// GetBlockComponent returns the component of the block at point.
func GetBlockComponent[T any](s *Store, c Component[T], point praos.Point) (T, error) {
	var zero T
	meta, err := s.getMeta(point.Hash)
	if err != nil {
		if IsMissingBlock(err) {
			return zero, &MissingBlockError{point}
		}
		return zero, err
	}
	if meta.Slot != point.Slot {
		return zero, &MissingBlockError{point}
	}
	return c.extract(&entry{s: s, slot: meta.Slot, hash: point.Hash, meta: meta})
}

// resolve checks that the block of point is stored.
func (s *Store) resolve(point praos.Point) error {
	meta, err := s.getMeta(point.Hash)
	if err != nil {
		if IsMissingBlock(err) {
			return &MissingBlockError{point}
		}
		return err
	}
	if meta.Slot != point.Slot {
		return &MissingBlockError{point}
	}
	return nil
}

// Stream iterates components of blocks between the bounds, in slot order.
// Both bound points must be stored, or a MissingBlockError is returned.
// The iterator is registered to reg if reg is not nil.
func Stream[T any](s *Store, reg *ResourceRegistry, c Component[T], from From, to To) (*Iterator[T], error) {
	if to.point.IsOrigin() {
		return nil, &MissingBlockError{to.point}
	}
	if err := s.resolve(to.point); err != nil {
		return nil, err
	}

	rng := slotRange(0, to.point.Slot)
	if !from.point.IsOrigin() {
		if err := s.resolve(from.point); err != nil {
			return nil, err
		}
		if from.point.Slot > to.point.Slot {
			return nil, errors.WithMessagef(ErrInvalidRange, "from slot %d, to slot %d", from.point.Slot, to.point.Slot)
		}
		switch {
		case !from.exclusive:
			rng = slotRange(from.point.Slot, to.point.Slot)
		case from.point.Slot == to.point.Slot:
			// empty
			rng = kv.Range{Start: slotKey(to.point.Slot), Limit: slotKey(to.point.Slot)}
		default:
			rng = slotRange(from.point.Slot+1, to.point.Slot)
		}
	}

	it := &Iterator[T]{
		s:    s,
		comp: c,
		it:   s.slotStore.Iterate(rng),
	}
	if reg != nil {
		reg.Register(it)
	}
	return it, nil
}

// Iterator iterates components of stored blocks.
// It must be closed after use, directly or through a ResourceRegistry.
type Iterator[T any] struct {
	s      *Store
	comp   Component[T]
	it     kv.Iterator
	value  T
	point  praos.Point
	err    error
	closed bool
}

// Next moves to the next block. It returns false when the stream ends or fails.
func (i *Iterator[T]) Next() bool {
	if i.closed || i.err != nil {
		return false
	}
	if !i.it.Next() {
		i.err = i.it.Error()
		return false
	}

	e := entry{
		s:    i.s,
		slot: binary.BigEndian.Uint64(i.it.Key()),
		hash: praos.BytesToHash32(i.it.Value()),
	}
	value, err := i.comp.extract(&e)
	if err != nil {
		i.err = errors.Wrapf(err, "extract %s at slot %d", i.comp.name, e.slot)
		return false
	}
	i.value = value
	i.point = praos.NewPoint(e.slot, e.hash)
	return true
}

// Value returns the component of the current block.
func (i *Iterator[T]) Value() T { return i.value }

// Point returns the point of the current block.
func (i *Iterator[T]) Point() praos.Point { return i.point }

// Error returns the error that stopped the iteration.
func (i *Iterator[T]) Error() error { return i.err }

// Close releases the iterator. It's safe to call more than once.
func (i *Iterator[T]) Close() error {
	if !i.closed {
		i.closed = true
		i.it.Release()
	}
	return nil
}

// Collect drains the iterator into a slice.
func (i *Iterator[T]) Collect() ([]T, error) {
	var values []T
	for i.Next() {
		values = append(values, i.value)
	}
	return values, i.Error()
}
