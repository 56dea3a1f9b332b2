// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import "sync"

var (
	_ BlobKV = (*Mem)(nil)
)

// Mem implements the BlobKV interface in memory. It is intended for use in
// unit tests; nothing is persisted and the encrypt argument is ignored.
type Mem struct {
	sync.Mutex
	blobs    map[string][]byte
	shutdown bool
}

// Put saves the provided key-value pairs to the store.
//
// This function satisfies the BlobKV interface.
func (m *Mem) Put(blobs map[string][]byte, encrypt bool) error {
	m.Lock()
	defer m.Unlock()
	if m.shutdown {
		return ErrShutdown
	}

	for k, v := range blobs {
		b := append([]byte(nil), v...)
		m.blobs[k] = b
	}
	return nil
}

// Del deletes the provided blobs from the store.
//
// This function satisfies the BlobKV interface.
func (m *Mem) Del(keys []string) error {
	m.Lock()
	defer m.Unlock()
	if m.shutdown {
		return ErrShutdown
	}

	for _, k := range keys {
		delete(m.blobs, k)
	}
	return nil
}

// Get returns blobs from the store for the provided keys. An entry will not
// exist in the returned map for any blobs that are not found.
//
// This function satisfies the BlobKV interface.
func (m *Mem) Get(keys []string) (map[string][]byte, error) {
	m.Lock()
	defer m.Unlock()
	if m.shutdown {
		return nil, ErrShutdown
	}

	blobs := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if b, ok := m.blobs[k]; ok {
			blobs[k] = append([]byte(nil), b...)
		}
	}
	return blobs, nil
}

// Close closes the store connection.
//
// This function satisfies the BlobKV interface.
func (m *Mem) Close() error {
	m.Lock()
	defer m.Unlock()

	m.shutdown = true
	m.blobs = nil
	return nil
}

// NewMem returns a new Mem.
func NewMem() *Mem {
	return &Mem{
		blobs: make(map[string][]byte),
	}
}
