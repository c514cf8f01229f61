package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yourorg/tasktracker/internal/domain"
)

func newTaskRepo(t *testing.T, dir string) *FileTaskRepository {
	t.Helper()
	repo, err := NewFileTaskRepository(filepath.Join(dir, "tasks.json"), nil)
	if err != nil {
		t.Fatalf("new task repository: %v", err)
	}
	return repo
}

func TestTaskInsertAssignsSequentialIDs(t *testing.T) {
	repo := newTaskRepo(t, t.TempDir())

	first := repo.Insert(&domain.Task{Title: "one", OwnerID: 1, Status: domain.StatusTodo, Priority: domain.PriorityLow})
	second := repo.Insert(&domain.Task{Title: "two", OwnerID: 1, Status: domain.StatusTodo, Priority: domain.PriorityLow})

	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", first.ID, second.ID)
	}
}

func TestTaskReloadReseedsAllocator(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")

	// Persisted collection with id gaps, as left behind by deletions.
	seed := `[
  {"id": 1, "title": "a", "ownerId": 1, "status": "todo", "priority": "low",
   "createdAt": "2026-08-01T10:00:00", "updatedAt": "2026-08-01T10:00:00"},
  {"id": 3, "title": "b", "ownerId": 1, "status": "todo", "priority": "low",
   "createdAt": "2026-08-01T10:00:00", "updatedAt": "2026-08-01T10:00:00"},
  {"id": 7, "title": "c", "ownerId": 1, "status": "todo", "priority": "low",
   "createdAt": "2026-08-01T10:00:00", "updatedAt": "2026-08-01T10:00:00"}
]`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	repo, err := NewFileTaskRepository(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	created := repo.Insert(&domain.Task{Title: "d", OwnerID: 1, Status: domain.StatusTodo, Priority: domain.PriorityLow})
	if created.ID != 8 {
		t.Fatalf("expected next id 8 after {1,3,7}, got %d", created.ID)
	}
}

func TestTaskOwnershipScoping(t *testing.T) {
	repo := newTaskRepo(t, t.TempDir())
	created := repo.Insert(&domain.Task{Title: "private", OwnerID: 1, Status: domain.StatusTodo, Priority: domain.PriorityLow})

	if _, ok := repo.Find(created.ID, 2); ok {
		t.Fatalf("expected task to be invisible to a different owner")
	}
	if _, ok := repo.Find(created.ID, 1); !ok {
		t.Fatalf("expected owner to see the task")
	}

	if _, err := repo.Update(created.ID, 2, func(task *domain.Task) { task.Title = "stolen" }); err == nil {
		t.Fatalf("expected NotFoundError for foreign owner update")
	}

	// Foreign delete is a silent no-op.
	repo.Delete(created.ID, 2)
	if _, ok := repo.Find(created.ID, 1); !ok {
		t.Fatalf("expected task to survive a foreign delete")
	}

	repo.Delete(created.ID, 1)
	if _, ok := repo.Find(created.ID, 1); ok {
		t.Fatalf("expected task to be gone after owner delete")
	}
}

func TestTaskUpdateKeepsIDAndOwner(t *testing.T) {
	repo := newTaskRepo(t, t.TempDir())
	created := repo.Insert(&domain.Task{Title: "t", OwnerID: 5, Status: domain.StatusTodo, Priority: domain.PriorityLow})

	updated, err := repo.Update(created.ID, 5, func(task *domain.Task) {
		task.ID = 999
		task.OwnerID = 42
		task.Title = "renamed"
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID || updated.OwnerID != 5 {
		t.Fatalf("id/owner must be immutable, got id=%d owner=%d", updated.ID, updated.OwnerID)
	}
	if updated.Title != "renamed" {
		t.Fatalf("expected title change to stick")
	}
}

func TestTaskPersistAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")

	repo, err := NewFileTaskRepository(path, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	due := domain.NewDate(2026, 9, 15)
	repo.Insert(&domain.Task{
		Title:     "persisted",
		OwnerID:   1,
		Status:    domain.StatusInProgress,
		Priority:  domain.PriorityHigh,
		DueDate:   &due,
		CreatedAt: domain.Now(),
		UpdatedAt: domain.Now(),
	})

	reloaded, err := NewFileTaskRepository(path, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	tasks := reloaded.ListByOwner(1)
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task after reload, got %d", len(tasks))
	}
	got := tasks[0]
	if got.Title != "persisted" || got.Status != domain.StatusInProgress || got.Priority != domain.PriorityHigh {
		t.Fatalf("task did not survive reload: %+v", got)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("due date did not survive reload")
	}
}

func TestTaskCorruptFileBackedUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	if err := os.WriteFile(path, []byte("{definitely not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	repo, err := NewFileTaskRepository(path, nil)
	if err != nil {
		t.Fatalf("expected corrupt file to be recovered, got %v", err)
	}
	if got := len(repo.All()); got != 0 {
		t.Fatalf("expected empty collection after corruption, got %d tasks", got)
	}

	backup, err := os.ReadFile(path + BackupSuffix)
	if err != nil {
		t.Fatalf("expected backup file: %v", err)
	}
	if string(backup) != "{definitely not json" {
		t.Fatalf("backup does not preserve original bytes: %q", backup)
	}
}
