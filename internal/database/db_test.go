package database

import (
	"context"
	"testing"

	"github.com/automarket/marketplace-api/internal/config"
	"github.com/automarket/marketplace-api/internal/docstore"
)

func TestOpenStoreMemory(t *testing.T) {
	s, err := OpenStore(context.Background(), config.StoreConfig{Driver: "Memory"})
	if err != nil {
		t.Fatalf("open memory store: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*docstore.Memory); !ok {
		t.Fatalf("expected *docstore.Memory, got %T", s)
	}
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	if _, err := OpenStore(context.Background(), config.StoreConfig{Driver: "cassandra"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestOpenFirestoreNeedsProject(t *testing.T) {
	if _, err := OpenFirestore(context.Background(), "", ""); err == nil {
		t.Fatalf("expected error without project id")
	}
}
