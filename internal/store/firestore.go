package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore keeps documents under users/<uid>/<collection>/<key>, the layout
// the web apps already write.
type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (s *Firestore) collection(userID, collection string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(userID).Collection(collection)
}

func (s *Firestore) Get(ctx context.Context, userID, collection, key string) (Document, error) {
	if err := checkPartition(userID, collection); err != nil {
		return nil, err
	}
	key, err := NormalizeKey(key)
	if err != nil {
		return nil, err
	}

	snap, err := s.collection(userID, collection).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s/%s: %w", collection, key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, key, err)
	}
	return snap.Data(), nil
}

func (s *Firestore) GetAll(ctx context.Context, userID, collection string) (map[string]Document, error) {
	if err := checkPartition(userID, collection); err != nil {
		return nil, err
	}

	iter := s.collection(userID, collection).Documents(ctx)
	defer iter.Stop()

	out := make(map[string]Document)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", collection, err)
		}
		out[snap.Ref.ID] = snap.Data()
	}
	return out, nil
}

func (s *Firestore) Save(ctx context.Context, userID, collection, key string, partial Document) error {
	if err := checkPartition(userID, collection); err != nil {
		return err
	}
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}

	if _, err := s.collection(userID, collection).Doc(key).Set(ctx, partial, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to save %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *Firestore) Delete(ctx context.Context, userID, collection, key string) error {
	if err := checkPartition(userID, collection); err != nil {
		return err
	}
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}

	if _, err := s.collection(userID, collection).Doc(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *Firestore) Close() error {
	return s.client.Close()
}
