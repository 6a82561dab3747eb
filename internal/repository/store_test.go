package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func exerciseStore(t *testing.T, s KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	if _, found, err := s.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("expected missing key, got found=%v err=%v", found, err)
	}
	if err := s.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, found, err := s.Get(ctx, "k")
	if err != nil || !found || v != "v2" {
		t.Fatalf("expected v2, got %q found=%v err=%v", v, found, err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	exerciseStore(t, s)

	t.Run("survives reopen", func(t *testing.T) {
		reopened, err := NewFileStore(path)
		if err != nil {
			t.Fatalf("reopen: %v", err)
		}
		v, found, _ := reopened.Get(context.Background(), "k")
		if !found || v != "v2" {
			t.Fatalf("expected persisted v2, got %q found=%v", v, found)
		}
	})

	t.Run("corrupt file is rejected", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(bad, []byte("{oops"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewFileStore(bad); err == nil {
			t.Fatal("expected decode error")
		}
	})
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedisStore(client)
	exerciseStore(t, s)

	if got, _ := mr.Get("k"); got != "v2" {
		t.Fatalf("expected raw redis value v2, got %q", got)
	}
}
