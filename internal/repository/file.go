package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/yourorg/tasktracker/internal/codec"
	"github.com/yourorg/tasktracker/internal/domain"
	"github.com/yourorg/tasktracker/internal/observability/metrics"
	"github.com/yourorg/tasktracker/internal/reliability/retry"
)

// BackupSuffix is appended to an unreadable data file before starting over
// with an empty collection, so nothing is silently destroyed.
const BackupSuffix = ".backup"

// loadCollection reads and decodes a persisted collection. A missing or
// empty file yields an empty collection. A corrupt file is renamed to
// <path>.backup and the collection starts empty; corruption never fails the
// caller.
func loadCollection[T any](path string, logger *slog.Logger) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("no saved data found, starting fresh", slog.String("path", path))
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	items, err := codec.Decode[T](data, path)
	if err != nil {
		var corrupt *domain.CorruptDataError
		if !errors.As(err, &corrupt) {
			return nil, err
		}
		backupPath := path + BackupSuffix
		if renameErr := os.Rename(path, backupPath); renameErr != nil {
			logger.Warn("could not back up corrupt data file",
				slog.String("path", path),
				slog.String("error", renameErr.Error()),
			)
		} else {
			logger.Warn("corrupt data file backed up, starting fresh",
				slog.String("path", path),
				slog.String("backup", backupPath),
				slog.String("error", corrupt.Err.Error()),
			)
		}
		return []T{}, nil
	}

	logger.Info("collection loaded", slog.String("path", path), slog.Int("count", len(items)))
	return items, nil
}

// persistCollection rewrites the whole collection synchronously. The write
// goes through a temp file plus rename so a crash mid-write cannot corrupt
// the previous state, and is retried a few times before being given up on.
// A final failure is logged, never returned: the in-memory collection stays
// authoritative and the caller is not blocked.
func persistCollection[T any](path, collection string, items []T, logger *slog.Logger) {
	start := time.Now()

	data, err := codec.Encode(items)
	if err != nil {
		// Only reachable with an unmarshalable type, which the domain
		// structs are not.
		logger.Error("failed to encode collection",
			slog.String("collection", collection),
			slog.String("error", err.Error()),
		)
		metrics.ObserveFlush(collection, "error", time.Since(start))
		return
	}

	_, err = retry.Do(context.Background(), retry.DefaultConfig(), logger, "flush "+collection,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, writeFileAtomic(path, data)
		})
	if err != nil {
		logger.Error("flush failed, in-memory state kept",
			slog.String("collection", collection),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		metrics.ObserveFlush(collection, "error", time.Since(start))
		return
	}

	metrics.ObserveFlush(collection, "ok", time.Since(start))
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
