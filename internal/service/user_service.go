package service

import (
	"log/slog"

	"github.com/yourorg/tasktracker/internal/domain"
	"github.com/yourorg/tasktracker/internal/validate"
)

// UserService owns registration, authentication and account maintenance on
// top of the user collection.
type UserService struct {
	users  domain.UserRepository
	hasher domain.PasswordHasher
	logger *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(users domain.UserRepository, hasher domain.PasswordHasher, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:  users,
		hasher: hasher,
		logger: logger,
	}
}

// Register validates name, email format, email uniqueness and password
// strength in that fixed order and returns the first failure as a
// *domain.ValidationError. On success the password is hashed, the default
// role attached and the collection flushed before returning.
func (s *UserService) Register(name, email, password string) (*domain.User, error) {
	if !validate.Name(name) {
		return nil, &domain.ValidationError{
			Field:   "name",
			Message: "must be 2-30 characters and start with a capital letter",
		}
	}
	if !validate.Email(email) {
		return nil, &domain.ValidationError{
			Field:   "email",
			Message: "invalid email format",
		}
	}
	if _, taken := s.users.FindByEmail(email); taken {
		return nil, &domain.ValidationError{
			Field:   "email",
			Message: "email is already registered",
		}
	}
	if !validate.Password(password) {
		return nil, &domain.ValidationError{
			Field:   "password",
			Message: "must be 8-20 characters with one uppercase letter, one lowercase letter, one digit and one special character",
		}
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, err
	}

	// The earlier FindByEmail only fixes the error ordering; the insert
	// re-checks uniqueness under the collection lock so a concurrent
	// registration racing through the hash cannot slip a duplicate in.
	user, err := s.users.Insert(&domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Roles:        []domain.Role{domain.NewRole(domain.DefaultRoleName)},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)
	return user, nil
}

// Authenticate scans all users comparing the name (case-sensitively; email
// lookups are case-insensitive but name never was) and verifying the
// password hash. First match wins; nil means failure.
func (s *UserService) Authenticate(name, password string) *domain.User {
	for _, u := range s.users.All() {
		if u.Name == name && s.hasher.Verify(password, u.PasswordHash) {
			return u
		}
	}
	return nil
}

// FindByID returns the user with the given ID, or nil.
func (s *UserService) FindByID(id int64) *domain.User {
	u, ok := s.users.FindByID(id)
	if !ok {
		return nil
	}
	return u
}

// FindByEmail returns the first user matching the email case-insensitively,
// or nil.
func (s *UserService) FindByEmail(email string) *domain.User {
	u, ok := s.users.FindByEmail(email)
	if !ok {
		return nil
	}
	return u
}

// All returns every registered user.
func (s *UserService) All() []*domain.User {
	return s.users.All()
}

// Update applies a partial update: only supplied non-empty fields overwrite
// existing values, and a supplied password is re-hashed first.
func (s *UserService) Update(id int64, update domain.UserUpdate) (*domain.User, error) {
	var hash string
	if update.Password != "" {
		h, err := s.hasher.Hash(update.Password)
		if err != nil {
			s.logger.Error("failed to hash password", slog.String("error", err.Error()))
			return nil, err
		}
		hash = h
	}

	user, err := s.users.Update(id, func(u *domain.User) {
		if update.Name != "" {
			u.Name = update.Name
		}
		if update.Email != "" {
			u.Email = update.Email
		}
		if hash != "" {
			u.PasswordHash = hash
		}
		if update.Roles != nil {
			u.Roles = update.Roles
		}
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated", slog.Int64("user_id", id))
	return user, nil
}

// ChangePassword verifies the current password before applying a new one.
// The new password must pass the same strength rules as registration.
func (s *UserService) ChangePassword(id int64, oldPassword, newPassword string) error {
	user, ok := s.users.FindByID(id)
	if !ok {
		return &domain.NotFoundError{Resource: "user", ID: id}
	}
	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return &domain.ValidationError{Field: "oldPassword", Message: "current password is incorrect"}
	}
	return s.SetPassword(id, newPassword)
}

// SetPassword replaces the password without checking the old one. Callers
// must have already proven account ownership, for example through a reset
// token.
func (s *UserService) SetPassword(id int64, newPassword string) error {
	if !validate.Password(newPassword) {
		return &domain.ValidationError{
			Field:   "password",
			Message: "must be 8-20 characters with one uppercase letter, one lowercase letter, one digit and one special character",
		}
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return err
	}
	if _, err := s.users.Update(id, func(u *domain.User) {
		u.PasswordHash = hash
	}); err != nil {
		return err
	}
	s.logger.Info("password changed", slog.Int64("user_id", id))
	return nil
}

// Delete removes the user if present; absence is not an error.
func (s *UserService) Delete(id int64) {
	s.users.Delete(id)
	s.logger.Info("user deleted", slog.Int64("user_id", id))
}
