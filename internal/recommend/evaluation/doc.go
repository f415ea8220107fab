// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

// Package evaluation measures how well the content feature space separates
// the catalog.
//
// Each product becomes a document (name, description, specification,
// category) labeled with its category. The documents are vectorized with
// TF-IDF, split into train and test sets, and each test product is assigned
// the majority category of its k nearest training neighbors. The report
// carries weighted precision, recall and F1 plus a confusion matrix.
//
// The split is seeded, so the same catalog always produces the same report.
package evaluation
