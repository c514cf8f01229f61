package domain

import "strings"

// Status is the three-state task lifecycle. Exactly one state holds at any
// time; the old completed/in-progress boolean pair allowed an invalid fourth
// combination and is gone.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// ParseStatus maps user input to a Status, case-insensitively.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(s)) {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return Status(strings.ToLower(s)), true
	}
	return "", false
}

// Priority orders tasks by urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority maps user input to a Priority, case-insensitively.
func ParsePriority(s string) (Priority, bool) {
	switch Priority(strings.ToLower(s)) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(strings.ToLower(s)), true
	}
	return "", false
}

// Rank orders priorities for sorting: the most urgent first, unknown values
// after everything else.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// Task is a single to-do item owned by exactly one user. OwnerID is set at
// creation and never reassigned; ownership is always re-resolved by ID,
// never through a cached user pointer.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	OwnerID     int64     `json:"ownerId"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	DueDate     *Date     `json:"dueDate,omitempty"`
	CreatedAt   DateTime  `json:"createdAt"`
	UpdatedAt   DateTime  `json:"updatedAt"`
	CompletedAt *DateTime `json:"completedAt,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate store state.
func (t *Task) Clone() *Task {
	cp := *t
	if t.DueDate != nil {
		due := *t.DueDate
		cp.DueDate = &due
	}
	if t.CompletedAt != nil {
		done := *t.CompletedAt
		cp.CompletedAt = &done
	}
	return &cp
}

// Overdue reports whether the task has a due date in the past and is not
// completed.
func (t *Task) Overdue(today Date) bool {
	return t.DueDate != nil && t.DueDate.Before(today) && t.Status != StatusCompleted
}

// TaskUpdate carries a partial update. Title and Description overwrite the
// stored values whenever supplied (a supplied empty description clears it);
// Priority and DueDate only apply when supplied.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *Priority
	DueDate     *Date
}

// TaskRepository defines durable, owner-scoped access to the task
// collection. Find and Update treat a task owned by someone else exactly
// like a missing one. Mutations flush synchronously before returning.
type TaskRepository interface {
	Insert(task *Task) *Task
	Find(id, ownerID int64) (*Task, bool)
	ListByOwner(ownerID int64) []*Task
	All() []*Task
	Update(id, ownerID int64, mutate func(*Task)) (*Task, error)
	Delete(id, ownerID int64)
}
