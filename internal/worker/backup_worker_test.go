package worker

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestBackupCopiesDataFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tasks.json")
	if err := os.WriteFile(src, []byte(`[]`), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	backupDir := filepath.Join(dir, "backups")

	w := NewBackupWorker([]string{src}, backupDir, 5, discardLogger(), time.Minute)
	w.runBackup()

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		t.Fatalf("read backup dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(entries))
	}
	data, err := os.ReadFile(filepath.Join(backupDir, entries[0].Name()))
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(data) != `[]` {
		t.Fatalf("backup content mismatch: %q", data)
	}
}

func TestBackupSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backups")

	w := NewBackupWorker([]string{filepath.Join(dir, "missing.json")}, backupDir, 5, discardLogger(), time.Minute)
	w.runBackup()

	entries, _ := os.ReadDir(backupDir)
	if len(entries) != 0 {
		t.Fatalf("expected no backups for missing source, got %d", len(entries))
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backups")
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	stamps := []string{"20260101-000000", "20260102-000000", "20260103-000000", "20260104-000000"}
	for _, s := range stamps {
		name := filepath.Join(backupDir, "users.json."+s)
		if err := os.WriteFile(name, []byte(`[]`), 0o644); err != nil {
			t.Fatalf("write backup: %v", err)
		}
	}

	w := NewBackupWorker(nil, backupDir, 2, discardLogger(), time.Minute)
	w.prune("users.json")

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		t.Fatalf("read backup dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 backups after prune, got %d", len(entries))
	}
	kept := map[string]bool{}
	for _, e := range entries {
		kept[e.Name()] = true
	}
	if !kept["users.json.20260103-000000"] || !kept["users.json.20260104-000000"] {
		t.Fatalf("expected newest backups kept, got %v", kept)
	}
}
