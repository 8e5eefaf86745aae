package docstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore stores each collection as a top-level Firestore collection.
type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

type firestoreSnapshot struct {
	snap *firestore.DocumentSnapshot
}

func (s firestoreSnapshot) ID() string { return s.snap.Ref.ID }

func (s firestoreSnapshot) DataTo(dst any) error { return s.snap.DataTo(dst) }

func (f *Firestore) Save(ctx context.Context, collection, id string, doc any) (string, error) {
	coll := f.client.Collection(collection)
	ref := coll.NewDoc()
	if id != "" {
		ref = coll.Doc(id)
	}
	if _, err := ref.Set(ctx, doc); err != nil {
		return "", fmt.Errorf("firestore set %s/%s: %w", collection, ref.ID, err)
	}
	return ref.ID, nil
}

func (f *Firestore) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	snap, err := f.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("firestore get %s/%s: %w", collection, id, err)
	}
	return firestoreSnapshot{snap: snap}, nil
}

func (f *Firestore) GetAll(ctx context.Context, collection string) ([]Snapshot, error) {
	docs, err := f.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("firestore list %s: %w", collection, err)
	}
	return wrapFirestore(docs), nil
}

func (f *Firestore) QueryEqual(ctx context.Context, collection, field string, value any) ([]Snapshot, error) {
	docs, err := f.client.Collection(collection).Where(field, "==", value).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("firestore query %s.%s: %w", collection, field, err)
	}
	return wrapFirestore(docs), nil
}

func (f *Firestore) Delete(ctx context.Context, collection, id string) error {
	if _, err := f.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("firestore delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (f *Firestore) Exists(ctx context.Context, collection, id string) (bool, error) {
	_, err := f.Get(ctx, collection, id)
	if err == ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (f *Firestore) Close() error { return f.client.Close() }

func wrapFirestore(docs []*firestore.DocumentSnapshot) []Snapshot {
	out := make([]Snapshot, 0, len(docs))
	for _, d := range docs {
		out = append(out, firestoreSnapshot{snap: d})
	}
	return out
}
