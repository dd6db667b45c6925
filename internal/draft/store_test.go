package draft

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	lowimpl "github.com/redis/go-redis/v9"
)

// exerciseStore runs the shared Store contract against s.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Read(ctx, DefaultKey); err != nil || ok {
		t.Fatalf("Expected empty store, got found=%v err=%v", ok, err)
	}

	if err := s.Write(ctx, DefaultKey, `{"a":1}`); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	v, ok, err := s.Read(ctx, DefaultKey)
	if err != nil || !ok {
		t.Fatalf("Expected value after write, got found=%v err=%v", ok, err)
	}
	if v != `{"a":1}` {
		t.Errorf("Expected %q, got %q", `{"a":1}`, v)
	}

	if err := s.Write(ctx, DefaultKey, `{"a":2}`); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}
	if v, _, _ := s.Read(ctx, DefaultKey); v != `{"a":2}` {
		t.Errorf("Expected overwritten value, got %q", v)
	}

	if err := s.Remove(ctx, DefaultKey); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok, _ := s.Read(ctx, DefaultKey); ok {
		t.Error("Expected key to be gone after remove")
	}
	if err := s.Remove(ctx, DefaultKey); err != nil {
		t.Errorf("Expected removing a missing key to succeed, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Write(ctx, "k", "v"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Expected no write on cancelled context, got %d keys", s.Len())
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "session"))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	exerciseStore(t, s)
}

func TestFileStorePermissionsAndLeftovers(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := s.Write(context.Background(), DefaultKey, "x"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, DefaultKey+".json"))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("Expected mode 0600, got %o", perm)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("Unexpected temp file left behind: %s", e.Name())
		}
	}
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	for _, key := range []string{"", "../escape", `a\b`, ".."} {
		if err := s.Write(context.Background(), key, "x"); err == nil {
			t.Errorf("Expected error for key %q", key)
		}
	}
}

func TestSessionDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	if got := SessionDir("abc"); got != filepath.Join("/run/user/1000", "preocupacional", "abc") {
		t.Errorf("Unexpected session dir %s", got)
	}
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *lowimpl.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := lowimpl.NewClient(&lowimpl.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisStore(t *testing.T) {
	_, client := newTestRedis(t)
	s, err := NewRedisStore(client, "preocupacional", "sess-1", time.Hour)
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	exerciseStore(t, s)
}

func TestRedisStoreScopesAndExpires(t *testing.T) {
	mr, client := newTestRedis(t)
	a, _ := NewRedisStore(client, "preocupacional", "sess-a", time.Minute)
	b, _ := NewRedisStore(client, "preocupacional", "sess-b", time.Minute)
	ctx := context.Background()

	if err := a.Write(ctx, DefaultKey, "draft-a"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, ok, _ := b.Read(ctx, DefaultKey); ok {
		t.Error("Expected sessions to be isolated")
	}

	if !mr.Exists("preocupacional_draft:sess-a:" + DefaultKey) {
		t.Errorf("Expected key %s in redis, have %v", a.Key(DefaultKey), mr.Keys())
	}
	if ttl := mr.TTL(a.Key(DefaultKey)); ttl != time.Minute {
		t.Errorf("Expected TTL 1m, got %v", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := a.Read(ctx, DefaultKey); ok {
		t.Error("Expected draft to expire with the session TTL")
	}
}

func TestRedisStoreErrors(t *testing.T) {
	if _, err := NewRedisStore(nil, "app", "s", 0); err == nil {
		t.Error("Expected error for nil client")
	}
	mr, client := newTestRedis(t)
	if _, err := NewRedisStore(client, "app", "", 0); err == nil {
		t.Error("Expected error for empty session id")
	}

	s, _ := NewRedisStore(client, "app", "s", 0)
	mr.SetError("READONLY")
	if err := s.Write(context.Background(), "k", "v"); err == nil {
		t.Error("Expected write error to surface")
	}
}

func TestSealedRoundTrip(t *testing.T) {
	key, err := NewKey()
	if err != nil {
		t.Fatalf("NewKey failed: %v", err)
	}
	inner := NewMemoryStore()
	s, err := NewSealed(inner, key)
	if err != nil {
		t.Fatalf("NewSealed failed: %v", err)
	}
	exerciseStore(t, s)

	ctx := context.Background()
	if err := s.Write(ctx, DefaultKey, "secreto"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	raw, _, _ := inner.Read(ctx, DefaultKey)
	if strings.Contains(raw, "secreto") {
		t.Error("Expected stored value to be encrypted")
	}
}

func TestSealedDetectsTampering(t *testing.T) {
	key, _ := NewKey()
	inner := NewMemoryStore()
	s, _ := NewSealed(inner, key)
	ctx := context.Background()

	_ = s.Write(ctx, DefaultKey, "valor")
	raw, _, _ := inner.Read(ctx, DefaultKey)

	// flip one character inside the nonce
	b := []byte(raw)
	if b[10] == 'A' {
		b[10] = 'B'
	} else {
		b[10] = 'A'
	}
	_ = inner.Write(ctx, DefaultKey, string(b))

	if _, _, err := s.Read(ctx, DefaultKey); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Expected ErrCorrupt, got %v", err)
	}

	// a value sealed for another key does not open under this one
	_ = inner.Write(ctx, "other", raw)
	if _, _, err := s.Read(ctx, "other"); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Expected ErrCorrupt for moved value, got %v", err)
	}

	_ = inner.Write(ctx, DefaultKey, "!!not base64!!")
	if _, _, err := s.Read(ctx, DefaultKey); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Expected ErrCorrupt for undecodable value, got %v", err)
	}
}

func TestParseKey(t *testing.T) {
	if _, err := ParseKey(strings.Repeat("ab", 32)); err != nil {
		t.Errorf("Expected 32-byte hex key to parse, got %v", err)
	}
	if _, err := ParseKey("abcd"); err == nil {
		t.Error("Expected short key to fail")
	}
	if _, err := ParseKey("zz"); err == nil {
		t.Error("Expected non-hex key to fail")
	}
	if _, err := NewSealed(NewMemoryStore(), []byte("short")); err == nil {
		t.Error("Expected NewSealed to reject short key")
	}
}
