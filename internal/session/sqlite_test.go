package session

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T, path string) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.db")
	const token = "persist-me-across-processes"

	store := newTestStore(t, path)
	if err := store.Save(token); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// A fresh open (a new process, effectively) must see the token.
	reopened := newTestStore(t, path)
	got, err := reopened.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if got != token {
		t.Fatalf("token = %q, want %q", got, token)
	}
}

func TestSQLiteStoreSealsTokenAtRest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.db")
	const token = "super-secret-bearer-token-value"

	store := newTestStore(t, path)
	if err := store.Save(token); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(raw, []byte(token)) {
		t.Fatal("token stored in plaintext")
	}
}

func TestSQLiteStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.db")

	store := newTestStore(t, path)
	if err := store.Save("tok"); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	got, err := store.Token()
	if err != nil {
		t.Fatalf("token after clear: %v", err)
	}
	if got != "" {
		t.Fatalf("token = %q, want empty", got)
	}
}

func TestSQLiteStoreOverwrite(t *testing.T) {
	store := newTestStore(t, filepath.Join(t.TempDir(), "credentials.db"))
	if err := store.Save("first"); err != nil {
		t.Fatal(err)
	}
	if err := store.Save("second"); err != nil {
		t.Fatal(err)
	}
	got, err := store.Token()
	if err != nil {
		t.Fatal(err)
	}
	if got != "second" {
		t.Fatalf("token = %q, want second", got)
	}
}
