package repository

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/yourorg/tasktracker/internal/domain"
	"github.com/yourorg/tasktracker/internal/idgen"
)

// FileUserRepository implements domain.UserRepository over a single JSON
// document. The whole collection lives in memory and is rewritten to disk
// after every mutation; one mutex makes each read-modify-persist sequence
// atomic with respect to other mutations.
type FileUserRepository struct {
	mu     sync.Mutex
	path   string
	users  []*domain.User
	ids    *idgen.Allocator
	logger *slog.Logger
}

// NewFileUserRepository loads the persisted collection (backing up and
// skipping a corrupt file) and reseeds the ID allocator past the highest
// existing ID.
func NewFileUserRepository(path string, logger *slog.Logger) (*FileUserRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	users, err := loadCollection[*domain.User](path, logger)
	if err != nil {
		return nil, err
	}

	ids := idgen.New()
	for _, u := range users {
		ids.Seed(u.ID)
	}

	return &FileUserRepository{
		path:   path,
		users:  users,
		ids:    ids,
		logger: logger,
	}, nil
}

// Insert assigns an ID, appends the user and flushes. Returns a copy of the
// stored user. The email is re-checked against the collection under the same
// lock as the append: callers validate earlier for ordering of error
// messages, but only this check is race-free.
func (r *FileUserRepository) Insert(user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, &domain.ValidationError{Field: "email", Message: "email is already registered"}
		}
	}

	stored := user.Clone()
	stored.ID = r.ids.Next()
	r.users = append(r.users, stored)
	r.flushLocked()

	return stored.Clone(), nil
}

// FindByID returns the user with the given ID, or false if absent.
func (r *FileUserRepository) FindByID(id int64) (*domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID == id {
			return u.Clone(), true
		}
	}
	return nil, false
}

// FindByEmail returns the first user with a matching email, compared
// case-insensitively.
func (r *FileUserRepository) FindByEmail(email string) (*domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u.Clone(), true
		}
	}
	return nil, false
}

// All returns a copy of the collection in insertion order.
func (r *FileUserRepository) All() []*domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u.Clone())
	}
	return out
}

// Update applies mutate to the stored user under the collection lock and
// flushes. Returns *domain.NotFoundError when the ID is absent.
func (r *FileUserRepository) Update(id int64, mutate func(*domain.User)) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID == id {
			mutate(u)
			u.ID = id // immutable post-creation
			r.flushLocked()
			return u.Clone(), nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "user", ID: id}
}

// Delete removes the user if present and flushes. Absence is a silent no-op.
func (r *FileUserRepository) Delete(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, u := range r.users {
		if u.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			break
		}
	}
	r.flushLocked()
}

func (r *FileUserRepository) flushLocked() {
	persistCollection(r.path, "users", r.users, r.logger)
}
