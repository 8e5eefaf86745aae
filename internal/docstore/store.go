// Package docstore is a thin gateway over a schemaless document database.
// Documents live in named collections and are addressed by a string id.
// Records are encoded by the backend (Firestore, MongoDB, a MySQL JSON
// table or an in-process map) and decoded back into typed Go values via
// Snapshot.DataTo.  Field names used in QueryEqual are the camelCase names
// carried by the model's json/firestore/bson tags.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no document exists under the id.
var ErrNotFound = errors.New("document not found")

// Snapshot is one stored document.
type Snapshot interface {
	ID() string
	DataTo(dst any) error
}

// Store is implemented by every backend.  Save with an empty id lets the
// backend generate one; the id actually used is returned.
type Store interface {
	Save(ctx context.Context, collection, id string, doc any) (string, error)
	Get(ctx context.Context, collection, id string) (Snapshot, error)
	GetAll(ctx context.Context, collection string) ([]Snapshot, error)
	QueryEqual(ctx context.Context, collection, field string, value any) ([]Snapshot, error)
	Delete(ctx context.Context, collection, id string) error
	Exists(ctx context.Context, collection, id string) (bool, error)
	Close() error
}

// Identified is satisfied by model pointers that accept their document id
// after decoding.
type Identified[T any] interface {
	*T
	SetID(string)
}

// Decode turns a snapshot into a typed record with its id populated.
func Decode[T any, PT Identified[T]](snap Snapshot) (*T, error) {
	v := new(T)
	if err := snap.DataTo(v); err != nil {
		return nil, err
	}
	PT(v).SetID(snap.ID())
	return v, nil
}

// DecodeAll decodes every snapshot, stopping at the first failure.
func DecodeAll[T any, PT Identified[T]](snaps []Snapshot) ([]T, error) {
	out := make([]T, 0, len(snaps))
	for _, s := range snaps {
		v, err := Decode[T, PT](s)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

// Get fetches and decodes a single document.
func Get[T any, PT Identified[T]](ctx context.Context, s Store, collection, id string) (*T, error) {
	snap, err := s.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	return Decode[T, PT](snap)
}

// GetAll fetches and decodes a whole collection.
func GetAll[T any, PT Identified[T]](ctx context.Context, s Store, collection string) ([]T, error) {
	snaps, err := s.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	return DecodeAll[T, PT](snaps)
}

// QueryEqual fetches and decodes the documents whose field equals value.
func QueryEqual[T any, PT Identified[T]](ctx context.Context, s Store, collection, field string, value any) ([]T, error) {
	snaps, err := s.QueryEqual(ctx, collection, field, value)
	if err != nil {
		return nil, err
	}
	return DecodeAll[T, PT](snaps)
}
