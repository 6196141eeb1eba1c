package memory

import (
	"context"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, ok, err := s.Load(ctx, "missing"); err != nil || ok {
		t.Fatalf("Load(missing) = ok=%v err=%v, want absent", ok, err)
	}

	if err := s.Save(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Save error = %v", err)
	}
	got, ok, err := s.Load(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Load = ok=%v err=%v", ok, err)
	}
	if string(got) != `{"a":1}` {
		t.Errorf("Load = %s", got)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if _, ok, _ := s.Load(ctx, "k"); ok {
		t.Error("key should be gone after Delete")
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	original := []byte("abc")
	s.Save(ctx, "k", original)
	original[0] = 'z'

	got, _, _ := s.Load(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value mutated externally: %s", got)
	}

	got[0] = 'q'
	again, _, _ := s.Load(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("loaded value aliases the stored one: %s", again)
	}
}
