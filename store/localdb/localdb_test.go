// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package localdb

import (
	"testing"

	"github.com/amanahdao/amanah/store"
	"github.com/go-test/deep"
	"github.com/pkg/errors"
)

func newTestLocalDB(t *testing.T) *localdb {
	t.Helper()

	db, err := New(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return db
}

func TestPutGetDel(t *testing.T) {
	db := newTestLocalDB(t)
	defer db.Close()

	// Save a cleartext and an encrypted blob
	want := map[string][]byte{
		"plain":  []byte("plain value"),
		"secret": []byte("secret value"),
	}
	err := db.Put(map[string][]byte{"plain": want["plain"]}, false)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	err = db.Put(map[string][]byte{"secret": want["secret"]}, true)
	if err != nil {
		t.Fatalf("Put encrypted: %v", err)
	}

	// Encrypted blobs are transparently decrypted on the way out
	blobs, err := db.Get([]string{"plain", "secret", "missing"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := deep.Equal(blobs, want); diff != nil {
		t.Errorf("blobs diff: %v", diff)
	}

	// Missing keys are simply absent from the reply
	if _, ok := blobs["missing"]; ok {
		t.Error("missing key present in reply")
	}

	// Overwrites are allowed
	err = db.Put(map[string][]byte{"plain": []byte("updated")}, false)
	if err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	blobs, err = db.Get([]string{"plain"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(blobs["plain"]) != "updated" {
		t.Errorf("got %q, want %q", blobs["plain"], "updated")
	}

	// Delete
	err = db.Del([]string{"plain", "secret"})
	if err != nil {
		t.Fatalf("Del: %v", err)
	}
	blobs, err = db.Get([]string{"plain", "secret"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(blobs) != 0 {
		t.Errorf("deleted blobs still present: %v", blobs)
	}
}

func TestShutdown(t *testing.T) {
	db := newTestLocalDB(t)
	err := db.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}

	err = db.Put(map[string][]byte{"k": []byte("v")}, false)
	if !errors.Is(err, store.ErrShutdown) {
		t.Errorf("Put: got %v, want %v", err, store.ErrShutdown)
	}
	_, err = db.Get([]string{"k"})
	if !errors.Is(err, store.ErrShutdown) {
		t.Errorf("Get: got %v, want %v", err, store.ErrShutdown)
	}
	err = db.Del([]string{"k"})
	if !errors.Is(err, store.ErrShutdown) {
		t.Errorf("Del: got %v, want %v", err, store.ErrShutdown)
	}
}
