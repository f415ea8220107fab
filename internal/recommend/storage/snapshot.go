// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package storage

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tomtom215/toolhub/internal/models"
	"github.com/tomtom215/toolhub/internal/recommend/algorithms"
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("storage: no snapshot")

// ErrChecksumMismatch is returned when stored bytes do not match their checksum.
var ErrChecksumMismatch = errors.New("storage: checksum mismatch")

// Snapshot is the persisted state of a trained content model: the catalog
// it was built from and the fitted feature space. The interaction matrix is
// not persisted; it is rebuilt from the event store after a restore.
type Snapshot struct {
	// Version is the engine model version at save time.
	Version int64

	// TrainedAt is when the model was built.
	TrainedAt time.Time

	// ContentSimilarity is the scorer the model was trained for.
	ContentSimilarity string

	// Products is the catalog at training time.
	Products []models.Product

	// Features is the fitted TF-IDF feature space.
	Features *algorithms.FeatureSpaceState
}

// Metadata describes a stored snapshot.
type Metadata struct {
	// Version is the snapshot version.
	Version int64 `json:"version"`

	// TrainedAt is when the model was built.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the snapshot was written.
	SavedAt time.Time `json:"saved_at"`

	// Products is the number of catalog products in the snapshot.
	Products int `json:"products"`

	// Checksum is the SHA-256 of the uncompressed gob payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed size.
	SizeBytes int64 `json:"size_bytes"`
}

// encodeSnapshot gob-encodes and gzips snap, returning the compressed bytes
// and the checksum of the raw payload.
func encodeSnapshot(snap *Snapshot) (compressed []byte, checksum string, err error) {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(snap); err != nil {
		return nil, "", fmt.Errorf("encode snapshot: %w", err)
	}

	hash := sha256.Sum256(raw.Bytes())

	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return nil, "", fmt.Errorf("compress snapshot: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize compression: %w", err)
	}

	return buf.Bytes(), hex.EncodeToString(hash[:]), nil
}

// decodeSnapshot reverses encodeSnapshot and verifies the checksum.
func decodeSnapshot(compressed []byte, checksum string) (*Snapshot, error) {
	gzr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(raw)
	if got := hex.EncodeToString(hash[:]); got != checksum {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, checksum, got)
	}

	var snap Snapshot
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
