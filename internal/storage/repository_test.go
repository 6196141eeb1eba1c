package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "cfp.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if _, ok, err := repo.Load(ctx, "missing"); err != nil || ok {
		t.Fatalf("Load(missing) = ok=%v err=%v, want absent", ok, err)
	}

	if err := repo.Save(ctx, "orcamentos", []byte(`{"total":1000}`)); err != nil {
		t.Fatalf("Save error = %v", err)
	}
	got, ok, err := repo.Load(ctx, "orcamentos")
	if err != nil || !ok {
		t.Fatalf("Load = ok=%v err=%v", ok, err)
	}
	if string(got) != `{"total":1000}` {
		t.Errorf("Load = %s", got)
	}

	// Save replaces the whole document.
	if err := repo.Save(ctx, "orcamentos", []byte(`{"total":2000}`)); err != nil {
		t.Fatalf("second Save error = %v", err)
	}
	got, _, _ = repo.Load(ctx, "orcamentos")
	if string(got) != `{"total":2000}` {
		t.Errorf("Load after overwrite = %s", got)
	}

	if err := repo.Delete(ctx, "orcamentos"); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if _, ok, _ := repo.Load(ctx, "orcamentos"); ok {
		t.Error("key should be gone after Delete")
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfp.db")

	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("first open error = %v", err)
	}
	if err := repo.Save(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("Save error = %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}

	// Reopening runs the migrator again against an up-to-date schema
	// and must keep the existing rows.
	again, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer again.Close()

	got, ok, err := again.Load(context.Background(), "k")
	if err != nil || !ok || string(got) != "v" {
		t.Fatalf("Load after reopen = %s ok=%v err=%v", got, ok, err)
	}
}
