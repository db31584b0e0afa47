// Package storage provides key-value slot backends standing in for the
// browser's local storage: each slot holds one opaque value under a key.
package storage

import (
	"context"
	"errors"
)

// ErrSlotNotFound is returned by Get when the slot has never been written or was deleted.
var ErrSlotNotFound = errors.New("storage: slot not found")

// Slots is a minimal key-value store. Set overwrites the whole value; there is no merge.
type Slots interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Prefixed namespaces every key of the wrapped backend.
func Prefixed(inner Slots, prefix string) Slots {
	if prefix == "" {
		return inner
	}
	return &prefixed{inner: inner, prefix: prefix}
}

type prefixed struct {
	inner  Slots
	prefix string
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}
