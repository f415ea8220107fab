// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key layout
const (
	keyLatest     = "snapshot:latest"
	metaKeyPrefix = "snapshot:meta:"
	dataKeyPrefix = "snapshot:data:"
)

// Options configures a BadgerStore.
type Options struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps the database in memory (tests).
	InMemory bool

	// Retain is the number of snapshot versions kept. Default: 3.
	Retain int
}

// BadgerStore persists model snapshots in BadgerDB.
// It is safe for concurrent use.
type BadgerStore struct {
	db     *badger.DB
	retain int

	// mu serializes Save so retention pruning sees a consistent key set
	mu sync.Mutex
}

// Open opens or creates the snapshot database.
func Open(opts Options) (*BadgerStore, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Path == "" {
			return nil, fmt.Errorf("snapshot path is required")
		}
		bopts = badger.DefaultOptions(opts.Path)
	}
	bopts = bopts.WithLogger(nil)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for snapshots: %w", err)
	}

	retain := opts.Retain
	if retain <= 0 {
		retain = 3
	}

	return &BadgerStore{db: db, retain: retain}, nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Save writes snap as a new version and prunes versions beyond the
// retention count.
func (s *BadgerStore) Save(ctx context.Context, snap *Snapshot) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	compressed, checksum, err := encodeSnapshot(snap)
	if err != nil {
		return nil, err
	}

	meta := Metadata{
		Version:   snap.Version,
		TrainedAt: snap.TrainedAt,
		SavedAt:   time.Now(),
		Products:  len(snap.Products),
		Checksum:  checksum,
		SizeBytes: int64(len(compressed)),
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	version := versionKey(snap.Version)
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(dataKeyPrefix+version), compressed); err != nil {
			return fmt.Errorf("set snapshot data: %w", err)
		}
		if err := txn.Set([]byte(metaKeyPrefix+version), metaBytes); err != nil {
			return fmt.Errorf("set snapshot metadata: %w", err)
		}
		return txn.Set([]byte(keyLatest), []byte(version))
	})
	if err != nil {
		return nil, err
	}

	if err := s.prune(); err != nil {
		return &meta, fmt.Errorf("prune snapshots: %w", err)
	}

	return &meta, nil
}

// Load returns the most recently saved snapshot, or ErrNoSnapshot.
func (s *BadgerStore) Load(ctx context.Context) (*Snapshot, *Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var (
		meta       Metadata
		compressed []byte
	)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyLatest))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoSnapshot
		}
		if err != nil {
			return fmt.Errorf("get latest version: %w", err)
		}
		version, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		item, err = txn.Get([]byte(metaKeyPrefix + string(version)))
		if err != nil {
			return fmt.Errorf("get snapshot metadata: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		}); err != nil {
			return fmt.Errorf("unmarshal metadata: %w", err)
		}

		item, err = txn.Get([]byte(dataKeyPrefix + string(version)))
		if err != nil {
			return fmt.Errorf("get snapshot data: %w", err)
		}
		compressed, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	snap, err := decodeSnapshot(compressed, meta.Checksum)
	if err != nil {
		return nil, nil, err
	}
	return snap, &meta, nil
}

// List returns the metadata of every retained snapshot, oldest first.
func (s *BadgerStore) List(ctx context.Context) ([]Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Metadata
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(metaKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var meta Metadata
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &meta)
			}); err != nil {
				return fmt.Errorf("unmarshal metadata: %w", err)
			}
			out = append(out, meta)
		}
		return nil
	})
	return out, err
}

// prune removes versions beyond the retention count. Caller holds s.mu.
func (s *BadgerStore) prune() error {
	var versions []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(metaKeyPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			versions = append(versions, key[len(metaKeyPrefix):])
		}
		return nil
	})
	if err != nil || len(versions) <= s.retain {
		return err
	}

	// Keys iterate in byte order and versions are zero padded, so the
	// oldest come first.
	stale := versions[:len(versions)-s.retain]
	return s.db.Update(func(txn *badger.Txn) error {
		for _, v := range stale {
			if err := txn.Delete([]byte(metaKeyPrefix + v)); err != nil {
				return err
			}
			if err := txn.Delete([]byte(dataKeyPrefix + v)); err != nil {
				return err
			}
		}
		return nil
	})
}

func versionKey(version int64) string {
	s := strconv.FormatInt(version, 10)
	const width = 20
	if len(s) >= width {
		return s
	}
	pad := make([]byte, width-len(s))
	for i := range pad {
		pad[i] = '0'
	}
	return string(pad) + s
}
