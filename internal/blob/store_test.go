package blob

import (
	"bytes"
	"context"
	"testing"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	data := []byte("raw document bytes")
	key, err := store.Store(ctx, "doc-1.pdf", data)
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if key != "doc-1.pdf" {
		t.Errorf("Store() key = %q, want %q", key, "doc-1.pdf")
	}

	got, err := store.Fetch(ctx, key)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Fetch() = %q, want %q", got, data)
	}
}

func TestFileStore_FlattensPathTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	key, err := store.Store(context.Background(), "../../etc/evil.pdf", []byte("x"))
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if key != "evil.pdf" {
		t.Errorf("Store() key = %q, want flattened basename", key)
	}
}

func TestFileStore_FetchMissingKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if _, err := store.Fetch(context.Background(), "absent.pdf"); err == nil {
		t.Error("Fetch() error = nil for missing key")
	}
}

func TestFileStore_DeleteIsIdempotent(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	key, err := store.Store(ctx, "doc-1.pdf", []byte("x"))
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
	if _, err := store.Fetch(ctx, key); err == nil {
		t.Error("Fetch() after delete succeeded")
	}
}
