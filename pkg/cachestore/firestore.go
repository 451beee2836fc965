package cachestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreConfig holds configuration for the Firestore-backed store.
type FirestoreConfig struct {
	ProjectID      string
	CollectionName string
}

// firestoreEntry is the document shape persisted per cache key. It mirrors
// Entry but with Firestore field tags.
type firestoreEntry struct {
	Data      []byte    `firestore:"data"`
	Timestamp time.Time `firestore:"timestamp"`
}

// FirestoreStore is a Store implementation that keeps one document per cache
// key in a single collection. Cache keys never contain '/', so they are
// valid Firestore document IDs as-is.
type FirestoreStore struct {
	client         *firestore.Client
	collectionName string
	logger         zerolog.Logger
}

// NewFirestoreStore creates a new FirestoreStore around an existing client.
func NewFirestoreStore(cfg *FirestoreConfig, client *firestore.Client, logger zerolog.Logger) (*FirestoreStore, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client cannot be nil")
	}

	logger.Info().Str("project_id", cfg.ProjectID).Str("collection", cfg.CollectionName).Msg("FirestoreStore initialized.")

	return &FirestoreStore{
		client:         client,
		collectionName: cfg.CollectionName,
		logger:         logger.With().Str("component", "FirestoreStore").Logger(),
	}, nil
}

// Get retrieves the entry stored under key.
func (s *FirestoreStore) Get(ctx context.Context, key string) (Entry, error) {
	docSnap, err := s.client.Collection(s.collectionName).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Entry{}, ErrNotFound
		}
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to get document from Firestore.")
		return Entry{}, fmt.Errorf("firestore get for %s: %w", key, err)
	}

	var doc firestoreEntry
	if err := docSnap.DataTo(&doc); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to decode Firestore document.")
		return Entry{}, fmt.Errorf("failed to decode document for %s: %w", key, err)
	}
	return Entry{Data: doc.Data, Timestamp: doc.Timestamp}, nil
}

// Set stores an entry under key. Firestore document writes are atomic, so a
// reader never observes a partially replaced entry.
func (s *FirestoreStore) Set(ctx context.Context, key string, entry Entry) error {
	doc := firestoreEntry{Data: entry.Data, Timestamp: entry.Timestamp}
	if _, err := s.client.Collection(s.collectionName).Doc(key).Set(ctx, doc); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to set document in Firestore.")
		return fmt.Errorf("firestore set for %s: %w", key, err)
	}
	return nil
}

// ListKeys returns every stored key beginning with prefix. Only document IDs
// are fetched; payloads stay on the server.
func (s *FirestoreStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.client.Collection(s.collectionName).Select().Documents(ctx)
	defer iter.Stop()

	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore list for prefix %s: %w", prefix, err)
		}
		if strings.HasPrefix(docSnap.Ref.ID, prefix) {
			keys = append(keys, docSnap.Ref.ID)
		}
	}
	return keys, nil
}

// RemoveMany deletes the given documents. Deleting a missing document is a
// no-op in Firestore, matching the Store contract.
func (s *FirestoreStore) RemoveMany(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if _, err := s.client.Collection(s.collectionName).Doc(key).Delete(ctx); err != nil {
			return fmt.Errorf("firestore delete for %s: %w", key, err)
		}
	}
	return nil
}

// Close closes the underlying Firestore client.
func (s *FirestoreStore) Close() error {
	s.logger.Info().Msg("Closing Firestore client...")
	return s.client.Close()
}
