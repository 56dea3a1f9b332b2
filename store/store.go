// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package store defines the key-value store that the pipeline components use
// to persist their state.
package store

import "errors"

var (
	// ErrShutdown is returned when an action is attempted against a
	// store that is shutdown.
	ErrShutdown = errors.New("store is shutdown")
)

// BlobKV represents a blob key-value store.
type BlobKV interface {
	// Put saves the provided key-value pairs to the store. This
	// operation is performed atomically.
	Put(blobs map[string][]byte, encrypt bool) error

	// Del deletes the provided blobs from the store. This operation is
	// performed atomically.
	Del(keys []string) error

	// Get returns blobs from the store for the provided keys. An entry
	// will not exist in the returned map for any blobs that are not
	// found. It is the responsibility of the caller to ensure a blob
	// was returned for all provided keys.
	Get(keys []string) (map[string][]byte, error)

	// Closes closes the store connection.
	Close() error
}
