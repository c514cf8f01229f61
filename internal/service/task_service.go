package service

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/yourorg/tasktracker/internal/domain"
)

// SortKey selects the ordering for SortTasks.
type SortKey string

const (
	SortByTitle    SortKey = "title"
	SortByPriority SortKey = "priority"
	SortByDueDate  SortKey = "due_date"
	SortByCreated  SortKey = "created"
)

// ParseSortKey maps user input to a sort key, defaulting to creation order.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(s)) {
	case SortByTitle, SortByPriority, SortByDueDate:
		return SortKey(strings.ToLower(s))
	}
	return SortByCreated
}

// CreateTaskInput carries the caller-supplied fields for a new task.
type CreateTaskInput struct {
	Title       string
	Description string
	OwnerID     int64
	Priority    domain.Priority // empty selects the default
	DueDate     *domain.Date
}

// Summary holds the on-demand aggregate counters for one owner. Pending
// counts tasks that are neither completed nor in progress.
type Summary struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
}

// TaskService owns the task lifecycle on top of the task collection. Every
// operation is scoped to an explicit owner ID.
type TaskService struct {
	tasks  domain.TaskRepository
	logger *slog.Logger
}

// NewTaskService creates a new task service
func NewTaskService(tasks domain.TaskRepository, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		tasks:  tasks,
		logger: logger,
	}
}

// Create appends a new task with status todo, priority defaulting to low
// and createdAt set to now, then flushes.
func (s *TaskService) Create(in CreateTaskInput) (*domain.Task, error) {
	if in.Title == "" {
		return nil, &domain.ValidationError{Field: "title", Message: "title is required"}
	}

	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityLow
	}

	now := domain.Now()
	task := s.tasks.Insert(&domain.Task{
		Title:       in.Title,
		Description: in.Description,
		OwnerID:     in.OwnerID,
		Status:      domain.StatusTodo,
		Priority:    priority,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	})

	s.logger.Info("task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("owner_id", task.OwnerID),
	)
	return task, nil
}

// Find returns the task only if it exists and belongs to ownerID; a foreign
// task is indistinguishable from a missing one.
func (s *TaskService) Find(id, ownerID int64) *domain.Task {
	t, ok := s.tasks.Find(id, ownerID)
	if !ok {
		return nil
	}
	return t
}

// ListByOwner returns the owner's tasks in insertion order.
func (s *TaskService) ListByOwner(ownerID int64) []*domain.Task {
	return s.tasks.ListByOwner(ownerID)
}

// Update applies a partial update and stamps updatedAt.
func (s *TaskService) Update(id, ownerID int64, update domain.TaskUpdate) (*domain.Task, error) {
	task, err := s.tasks.Update(id, ownerID, func(t *domain.Task) {
		if update.Title != nil {
			t.Title = *update.Title
		}
		if update.Description != nil {
			t.Description = *update.Description
		}
		if update.Priority != nil {
			t.Priority = *update.Priority
		}
		if update.DueDate != nil {
			due := *update.DueDate
			t.DueDate = &due
		}
		t.UpdatedAt = domain.Now()
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task updated", slog.Int64("task_id", id), slog.Int64("owner_id", ownerID))
	return task, nil
}

// Delete removes the task if found and owned; anything else is a no-op.
func (s *TaskService) Delete(id, ownerID int64) {
	s.tasks.Delete(id, ownerID)
	s.logger.Info("task deleted", slog.Int64("task_id", id), slog.Int64("owner_id", ownerID))
}

// SetStatus transitions the task to the given state. Every transition,
// including self-transitions, is legal and idempotent: entering completed
// sets completedAt once and repeat completions keep the original timestamp;
// leaving completed clears it.
func (s *TaskService) SetStatus(id, ownerID int64, status domain.Status) (*domain.Task, error) {
	task, err := s.tasks.Update(id, ownerID, func(t *domain.Task) {
		switch {
		case status == domain.StatusCompleted && t.CompletedAt == nil:
			now := domain.Now()
			t.CompletedAt = &now
		case status != domain.StatusCompleted:
			t.CompletedAt = nil
		}
		t.Status = status
		t.UpdatedAt = domain.Now()
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task status changed",
		slog.Int64("task_id", id),
		slog.Int64("owner_id", ownerID),
		slog.String("status", string(status)),
	)
	return task, nil
}

// Summary computes the aggregate counters for one owner on demand; nothing
// is cached.
func (s *TaskService) Summary(ownerID int64) Summary {
	var sum Summary
	for _, t := range s.tasks.ListByOwner(ownerID) {
		sum.Total++
		switch t.Status {
		case domain.StatusCompleted:
			sum.Completed++
		case domain.StatusInProgress:
			sum.InProgress++
		default:
			sum.Pending++
		}
	}
	return sum
}

// FilterTasks narrows a task list by exact case-insensitive priority and a
// case-insensitive substring over title or description. Both filters
// compose as AND; empty arguments disable the respective filter.
func FilterTasks(tasks []*domain.Task, priority, searchTerm string) []*domain.Task {
	out := make([]*domain.Task, 0, len(tasks))
	term := strings.ToLower(searchTerm)
	for _, t := range tasks {
		if priority != "" && !strings.EqualFold(string(t.Priority), priority) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SortTasks orders a task list by the given key without mutating the input.
// Title compares case-insensitively; priority ranks the most urgent first;
// date keys sort ascending with missing values last. The sort is stable so
// ties keep insertion order.
func SortTasks(tasks []*domain.Task, key SortKey) []*domain.Task {
	out := append([]*domain.Task(nil), tasks...)

	switch key {
	case SortByTitle:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
		})
	case SortByPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.Rank() < out[j].Priority.Rank()
		})
	case SortByDueDate:
		sort.SliceStable(out, func(i, j int) bool {
			switch {
			case out[i].DueDate == nil:
				return false
			case out[j].DueDate == nil:
				return true
			default:
				return out[i].DueDate.Before(*out[j].DueDate)
			}
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	return out
}
