package repository

import (
	"log/slog"
	"sync"

	"github.com/yourorg/tasktracker/internal/domain"
	"github.com/yourorg/tasktracker/internal/idgen"
)

// FileTaskRepository implements domain.TaskRepository over a single JSON
// document, with the same load-at-start, flush-after-every-mutation
// lifecycle as the user collection. The two collections use independent
// locks; they are never mutated together.
type FileTaskRepository struct {
	mu     sync.Mutex
	path   string
	tasks  []*domain.Task
	ids    *idgen.Allocator
	logger *slog.Logger
}

// NewFileTaskRepository loads the persisted collection (backing up and
// skipping a corrupt file) and reseeds the ID allocator past the highest
// existing ID.
func NewFileTaskRepository(path string, logger *slog.Logger) (*FileTaskRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tasks, err := loadCollection[*domain.Task](path, logger)
	if err != nil {
		return nil, err
	}

	ids := idgen.New()
	for _, t := range tasks {
		ids.Seed(t.ID)
	}

	return &FileTaskRepository{
		path:   path,
		tasks:  tasks,
		ids:    ids,
		logger: logger,
	}, nil
}

// Insert assigns an ID, appends the task and flushes. Returns a copy of the
// stored task.
func (r *FileTaskRepository) Insert(task *domain.Task) *domain.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := task.Clone()
	stored.ID = r.ids.Next()
	r.tasks = append(r.tasks, stored)
	r.flushLocked()

	return stored.Clone()
}

// Find returns the task only when both the ID and the owner match. A task
// owned by someone else looks exactly like a missing one.
func (r *FileTaskRepository) Find(id, ownerID int64) (*domain.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t := r.findLocked(id, ownerID); t != nil {
		return t.Clone(), true
	}
	return nil, false
}

// ListByOwner returns the owner's tasks in insertion order.
func (r *FileTaskRepository) ListByOwner(ownerID int64) []*domain.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.Task, 0)
	for _, t := range r.tasks {
		if t.OwnerID == ownerID {
			out = append(out, t.Clone())
		}
	}
	return out
}

// All returns a copy of every task regardless of owner. Used by the status
// sweeper and the admin surface, not by owner-facing operations.
func (r *FileTaskRepository) All() []*domain.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t.Clone())
	}
	return out
}

// Update applies mutate to the stored task under the collection lock and
// flushes. Returns *domain.NotFoundError when the task is absent or owned
// by a different user.
func (r *FileTaskRepository) Update(id, ownerID int64, mutate func(*domain.Task)) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.findLocked(id, ownerID)
	if t == nil {
		return nil, &domain.NotFoundError{Resource: "task", ID: id}
	}

	mutate(t)
	t.ID = id           // immutable post-creation
	t.OwnerID = ownerID // never reassigned
	r.flushLocked()
	return t.Clone(), nil
}

// Delete removes the task if found and owned, then flushes. Anything else
// is a silent no-op.
func (r *FileTaskRepository) Delete(id, ownerID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, t := range r.tasks {
		if t.ID == id && t.OwnerID == ownerID {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			break
		}
	}
	r.flushLocked()
}

func (r *FileTaskRepository) findLocked(id, ownerID int64) *domain.Task {
	for _, t := range r.tasks {
		if t.ID == id && t.OwnerID == ownerID {
			return t
		}
	}
	return nil
}

func (r *FileTaskRepository) flushLocked() {
	persistCollection(r.path, "tasks", r.tasks, r.logger)
}
