package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BackupWorker periodically copies the data files into a backups
// directory and prunes old copies beyond the retention count.
type BackupWorker struct {
	dataFiles []string
	backupDir string
	retention int
	logger    *slog.Logger
	interval  time.Duration
}

// NewBackupWorker creates a new backup worker
func NewBackupWorker(dataFiles []string, backupDir string, retention int, logger *slog.Logger, interval time.Duration) *BackupWorker {
	return &BackupWorker{
		dataFiles: dataFiles,
		backupDir: backupDir,
		retention: retention,
		logger:    logger,
		interval:  interval,
	}
}

// Start begins the backup loop. It runs until the context is cancelled.
func (w *BackupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("backup worker started",
		slog.Duration("interval", w.interval),
		slog.String("backup_dir", w.backupDir),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("backup worker stopped")
			return
		case <-ticker.C:
			w.runBackup()
		}
	}
}

func (w *BackupWorker) runBackup() {
	if err := os.MkdirAll(w.backupDir, 0o755); err != nil {
		w.logger.Error("failed to create backup directory", slog.String("error", err.Error()))
		return
	}

	stamp := time.Now().Format("20060102-150405")
	for _, src := range w.dataFiles {
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		base := filepath.Base(src)
		dst := filepath.Join(w.backupDir, fmt.Sprintf("%s.%s", base, stamp))
		if err := copyFile(src, dst); err != nil {
			w.logger.Error("backup copy failed",
				slog.String("source", src),
				slog.String("error", err.Error()),
			)
			continue
		}
		w.logger.Debug("backup written", slog.String("path", dst))
		w.prune(base)
	}
}

// prune keeps only the newest retention copies for a given data file.
func (w *BackupWorker) prune(base string) {
	entries, err := os.ReadDir(w.backupDir)
	if err != nil {
		w.logger.Error("failed to read backup directory", slog.String("error", err.Error()))
		return
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), base+".") {
			names = append(names, e.Name())
		}
	}
	if len(names) <= w.retention {
		return
	}

	// Timestamps sort lexicographically, oldest first.
	sort.Strings(names)
	for _, name := range names[:len(names)-w.retention] {
		path := filepath.Join(w.backupDir, name)
		if err := os.Remove(path); err != nil {
			w.logger.Warn("failed to prune backup", slog.String("path", path), slog.String("error", err.Error()))
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
