// Package storage provides the durable key-value mechanism behind history
// and preferences. Values are opaque strings; callers own the encoding.
package storage

import (
	"context"
	"fmt"
)

// Store is a durable string key-value store.
type Store interface {
	// Get returns the value for key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Namespaced prefixes every key so several sessions can share one backend.
// Closing a namespaced store does not close the underlying one.
func Namespaced(store Store, prefix string) Store {
	if prefix == "" {
		return store
	}
	return &namespaced{inner: store, prefix: prefix}
}

type namespaced struct {
	inner  Store
	prefix string
}

func (n *namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Close() error { return nil }

// ChatPrefix is the namespace used for a Telegram chat.
func ChatPrefix(chatID int64) string {
	return fmt.Sprintf("chat:%d:", chatID)
}

// ClientPrefix is the namespace used for a websocket client.
func ClientPrefix(clientID string) string {
	return "client:" + clientID + ":"
}
