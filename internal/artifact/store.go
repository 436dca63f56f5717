// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

// Package artifact persists pipeline output documents in an embedded
// Badger store. Each artifact type lives under a stable key and is
// replaced atomically, so consumers always read either the previous
// complete artifact or the new one, never a partial write.
package artifact

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"github.com/kthorn/cocktaildb-sub001/internal/logging"
	"github.com/kthorn/cocktaildb-sub001/internal/similarity"
)

// ErrNotFound is returned when no artifact has been stored yet.
var ErrNotFound = errors.New("artifact: not found")

const keyPrefix = "analytics:"

// Store is a Badger-backed artifact store.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the artifact store at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("artifact: opening store at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutSimilar stores the recipe-similar artifact, replacing any previous
// version in a single transaction.
func (s *Store) PutSimilar(a *similarity.SimilarArtifact) error {
	return s.put(similarity.AnalyticsTypeSimilar, a)
}

// PutEmbedding stores the recipe-embedding artifact, replacing any
// previous version in a single transaction.
func (s *Store) PutEmbedding(a *similarity.EmbeddingArtifact) error {
	return s.put(similarity.AnalyticsTypeEmbedding, a)
}

// GetSimilar loads the stored recipe-similar artifact.
func (s *Store) GetSimilar() (*similarity.SimilarArtifact, error) {
	var a similarity.SimilarArtifact
	if err := s.get(similarity.AnalyticsTypeSimilar, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetEmbedding loads the stored recipe-embedding artifact.
func (s *Store) GetEmbedding() (*similarity.EmbeddingArtifact, error) {
	var a similarity.EmbeddingArtifact
	if err := s.get(similarity.AnalyticsTypeEmbedding, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) put(analyticsType string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("artifact: marshaling %s: %w", analyticsType, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+analyticsType), data)
	})
	if err != nil {
		return fmt.Errorf("artifact: storing %s: %w", analyticsType, err)
	}

	logging.Debug().
		Str("analytics_type", analyticsType).
		Int("bytes", len(data)).
		Msg("Artifact stored")
	return nil
}

func (s *Store) get(analyticsType string, doc any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + analyticsType))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, doc)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, analyticsType)
	}
	if err != nil {
		return fmt.Errorf("artifact: loading %s: %w", analyticsType, err)
	}
	return nil
}
