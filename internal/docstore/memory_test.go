package docstore

import (
	"context"
	"errors"
	"testing"
)

type widget struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
	Size  int    `json:"size"`
}

func (w *widget) SetID(id string) { w.ID = id }

func TestMemorySaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	id, err := s.Save(ctx, "widgets", "", widget{Owner: "a", Size: 3})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated id")
	}
	w, err := Get[widget](ctx, s, "widgets", id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if w.ID != id || w.Owner != "a" || w.Size != 3 {
		t.Fatalf("unexpected widget %+v", w)
	}

	if _, err := s.Get(ctx, "widgets", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryQueryEqualMatchesTypedValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	type owner string
	for i, o := range []string{"a", "b", "a"} {
		if _, err := s.Save(ctx, "widgets", string(rune('x'+i)), widget{Owner: o, Size: i}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := QueryEqual[widget](ctx, s, "widgets", "owner", owner("a"))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 || got[0].ID != "x" || got[1].ID != "z" {
		t.Fatalf("unexpected query result %+v", got)
	}

	bySize, err := QueryEqual[widget](ctx, s, "widgets", "size", 1)
	if err != nil {
		t.Fatalf("query size: %v", err)
	}
	if len(bySize) != 1 || bySize[0].ID != "y" {
		t.Fatalf("unexpected size query result %+v", bySize)
	}
}

func TestMemoryDeleteAndExists(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	if _, err := s.Save(ctx, "widgets", "w1", widget{Owner: "a"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	ok, err := s.Exists(ctx, "widgets", "w1")
	if err != nil || !ok {
		t.Fatalf("expected w1 to exist, ok=%v err=%v", ok, err)
	}
	if err := s.Delete(ctx, "widgets", "w1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ok, err = s.Exists(ctx, "widgets", "w1")
	if err != nil || ok {
		t.Fatalf("expected w1 to be gone, ok=%v err=%v", ok, err)
	}
	all, err := GetAll[widget](ctx, s, "widgets")
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty collection, got %d", len(all))
	}
}

func TestMemoryStoresCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	w := widget{Owner: "a"}
	if _, err := s.Save(ctx, "widgets", "w1", &w); err != nil {
		t.Fatalf("save: %v", err)
	}
	w.Owner = "mutated"
	got, err := Get[widget](ctx, s, "widgets", "w1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Owner != "a" {
		t.Fatalf("stored document changed through caller pointer: %q", got.Owner)
	}
}
