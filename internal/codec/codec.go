// Package codec serializes the user and task collections to the on-disk
// JSON documents. The format is a pretty-printed array of records; dates and
// timestamps use the fixed naive layouts defined in the domain package so
// encode/decode round-trips are lossless to the second.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/yourorg/tasktracker/internal/domain"
)

// Encode renders a collection as an indented JSON array. An empty or nil
// collection encodes as [].
func Encode[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode collection: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a persisted collection. Empty or whitespace-only input
// yields an empty collection; a JSON null does too. Anything unreadable
// fails with *domain.CorruptDataError and the caller decides recovery.
func Decode[T any](data []byte, path string) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, &domain.CorruptDataError{Path: path, Err: err}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
