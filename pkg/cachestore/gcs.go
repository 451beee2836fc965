package cachestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
)

// GCSConfig holds configuration for the Google Cloud Storage backed store.
type GCSConfig struct {
	BucketName   string
	ObjectPrefix string
}

// GCSStore is a Store implementation that keeps one JSON object per cache
// key in a bucket. It suits a cold cache tier shared across deployments,
// where read latency matters less than durability.
type GCSStore struct {
	client       *storage.Client
	bucketName   string
	objectPrefix string
	logger       zerolog.Logger
}

// NewGCSStore creates a new GCSStore around an existing client.
func NewGCSStore(cfg *GCSConfig, client *storage.Client, logger zerolog.Logger) (*GCSStore, error) {
	if client == nil {
		return nil, errors.New("GCS client cannot be nil")
	}
	if cfg.BucketName == "" {
		return nil, errors.New("GCS bucket name is required")
	}
	return &GCSStore{
		client:       client,
		bucketName:   cfg.BucketName,
		objectPrefix: cfg.ObjectPrefix,
		logger:       logger.With().Str("component", "GCSStore").Logger(),
	}, nil
}

// objectName maps a cache key to its object path within the bucket.
func (s *GCSStore) objectName(key string) string {
	return s.objectPrefix + key
}

// Get retrieves the entry stored under key.
func (s *GCSStore) Get(ctx context.Context, key string) (Entry, error) {
	reader, err := s.client.Bucket(s.bucketName).Object(s.objectName(key)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return Entry{}, ErrNotFound
		}
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to open GCS object.")
		return Entry{}, fmt.Errorf("gcs read for %s: %w", key, err)
	}
	defer func() { _ = reader.Close() }()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return Entry{}, fmt.Errorf("gcs read for %s: %w", key, err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to unmarshal cached entry.")
		return Entry{}, fmt.Errorf("failed to unmarshal entry for %s: %w", key, err)
	}
	return entry, nil
}

// Set stores an entry under key. The object becomes visible only once the
// writer is closed successfully, which gives the atomic replace the Store
// contract requires.
func (s *GCSStore) Set(ctx context.Context, key string, entry Entry) error {
	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry for %s: %w", key, err)
	}

	writer := s.client.Bucket(s.bucketName).Object(s.objectName(key)).NewWriter(ctx)
	writer.ContentType = "application/json"
	if _, err := writer.Write(jsonData); err != nil {
		_ = writer.Close()
		return fmt.Errorf("gcs write for %s: %w", key, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("gcs write for %s: %w", key, err)
	}
	return nil
}

// ListKeys returns every stored key beginning with prefix.
func (s *GCSStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	it := s.client.Bucket(s.bucketName).Objects(ctx, &storage.Query{Prefix: s.objectName(prefix)})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs list for prefix %s: %w", prefix, err)
		}
		keys = append(keys, strings.TrimPrefix(attrs.Name, s.objectPrefix))
	}
	return keys, nil
}

// RemoveMany deletes the given objects. Missing objects are ignored.
func (s *GCSStore) RemoveMany(ctx context.Context, keys []string) error {
	for _, key := range keys {
		err := s.client.Bucket(s.bucketName).Object(s.objectName(key)).Delete(ctx)
		if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("gcs delete for %s: %w", key, err)
		}
	}
	return nil
}

// Close closes the underlying GCS client.
func (s *GCSStore) Close() error {
	s.logger.Info().Msg("Closing GCS client...")
	return s.client.Close()
}
