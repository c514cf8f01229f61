package service

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/yourorg/tasktracker/internal/domain"
	"github.com/yourorg/tasktracker/internal/idgen"
	"github.com/yourorg/tasktracker/internal/repository"
)

type memUserRepo struct {
	users []*domain.User
	ids   *idgen.Allocator
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{ids: idgen.New()}
}

func (m *memUserRepo) Insert(u *domain.User) (*domain.User, error) {
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, &domain.ValidationError{Field: "email", Message: "email is already registered"}
		}
	}
	stored := u.Clone()
	stored.ID = m.ids.Next()
	m.users = append(m.users, stored)
	return stored.Clone(), nil
}

func (m *memUserRepo) FindByID(id int64) (*domain.User, bool) {
	for _, u := range m.users {
		if u.ID == id {
			return u.Clone(), true
		}
	}
	return nil, false
}

func (m *memUserRepo) FindByEmail(email string) (*domain.User, bool) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u.Clone(), true
		}
	}
	return nil, false
}

func (m *memUserRepo) All() []*domain.User {
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u.Clone())
	}
	return out
}

func (m *memUserRepo) Update(id int64, mutate func(*domain.User)) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			mutate(u)
			u.ID = id
			return u.Clone(), nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "user", ID: id}
}

func (m *memUserRepo) Delete(id int64) {
	for i, u := range m.users {
		if u.ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return
		}
	}
}

// plainHasher keeps service tests fast; the bcrypt implementation has its
// own coverage.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (plainHasher) Verify(plain, hash string) bool { return "hashed:"+plain == hash }

func newUserService() (*UserService, *memUserRepo) {
	repo := newMemUserRepo()
	return NewUserService(repo, plainHasher{}, nil), repo
}

func TestRegisterAndAuthenticate(t *testing.T) {
	s, _ := newUserService()

	user, err := s.Register("Alice", "alice@x.com", "Abc12345!")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.ID != 1 {
		t.Fatalf("expected id 1, got %d", user.ID)
	}
	if user.PasswordHash == "Abc12345!" {
		t.Fatalf("plaintext must never be stored")
	}
	if !user.HasRole(domain.DefaultRoleName) {
		t.Fatalf("expected default role on registration")
	}

	found := s.FindByEmail("ALICE@X.COM")
	if found == nil || found.PasswordHash == "Abc12345!" {
		t.Fatalf("expected case-insensitive email lookup with hashed password")
	}

	if got := s.Authenticate("Alice", "Abc12345!"); got == nil || got.ID != user.ID {
		t.Fatalf("expected re-authentication with original plaintext to succeed")
	}
	if s.Authenticate("Alice", "wrong") != nil {
		t.Fatalf("expected wrong password to fail")
	}
	// Name comparison is case-sensitive, unlike email.
	if s.Authenticate("alice", "Abc12345!") != nil {
		t.Fatalf("expected lowercase username to fail authentication")
	}
}

func TestRegisterValidationOrder(t *testing.T) {
	s, _ := newUserService()
	if _, err := s.Register("Bob", "bob@x.com", "Abc12345!"); err != nil {
		t.Fatalf("seed register failed: %v", err)
	}

	cases := []struct {
		name, email, password string
		wantField             string
	}{
		{"x", "bad", "short", "name"},                    // name checked first
		{"Carl", "not-an-email", "short", "email"},       // then email format
		{"Carl", "BOB@X.COM", "Abc12345!", "email"},      // then uniqueness, any case
		{"Carl", "carl@x.com", "weak", "password"},       // then password strength
	}
	for _, c := range cases {
		_, err := s.Register(c.name, c.email, c.password)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Register(%q,%q): expected ValidationError, got %v", c.name, c.email, err)
		}
		if verr.Field != c.wantField {
			t.Fatalf("Register(%q,%q): expected %s error, got %s", c.name, c.email, c.wantField, verr.Field)
		}
	}
}

func TestDuplicateEmailLeavesCollectionUntouched(t *testing.T) {
	s, repo := newUserService()
	if _, err := s.Register("Bob", "bob@x.com", "Abc12345!"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := s.Register("Bobby", "Bob@X.com", "Abc12345!"); err == nil {
		t.Fatalf("expected duplicate email to fail")
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected collection unchanged, got %d users", len(repo.users))
	}
}

// gateHasher blocks every Hash call until all expected callers have arrived,
// forcing concurrent registrations past the pre-insert uniqueness check at
// the same time.
type gateHasher struct {
	gate *sync.WaitGroup
}

func (h gateHasher) Hash(plain string) (string, error) {
	h.gate.Done()
	h.gate.Wait()
	return "hashed:" + plain, nil
}

func (h gateHasher) Verify(plain, hash string) bool { return "hashed:"+plain == hash }

func TestConcurrentRegistrationsSameEmail(t *testing.T) {
	repo, err := repository.NewFileUserRepository(filepath.Join(t.TempDir(), "users.json"), nil)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}

	const racers = 2
	var gate sync.WaitGroup
	gate.Add(racers)
	s := NewUserService(repo, gateHasher{gate: &gate}, nil)

	names := []string{"Alice", "Alicia"}
	errs := make(chan error, racers)
	for i := 0; i < racers; i++ {
		go func(name string) {
			_, err := s.Register(name, "alice@x.com", "Abc12345!")
			errs <- err
		}(names[i])
	}

	succeeded := 0
	for i := 0; i < racers; i++ {
		if err := <-errs; err == nil {
			succeeded++
		} else {
			var verr *domain.ValidationError
			if !errors.As(err, &verr) || verr.Field != "email" {
				t.Fatalf("expected email ValidationError for the loser, got %v", err)
			}
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one registration to win, got %d", succeeded)
	}
	if got := len(s.All()); got != 1 {
		t.Fatalf("expected a single stored user, got %d", got)
	}
}

func TestUpdateIsPartial(t *testing.T) {
	s, _ := newUserService()
	user, err := s.Register("Alice", "alice@x.com", "Abc12345!")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	updated, err := s.Update(user.ID, domain.UserUpdate{Name: "Alicia"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Alicia" || updated.Email != "alice@x.com" {
		t.Fatalf("expected only name to change: %+v", updated)
	}
	if updated.PasswordHash != user.PasswordHash {
		t.Fatalf("expected password untouched without a supplied one")
	}

	updated, err = s.Update(user.ID, domain.UserUpdate{Password: "Xyz98765!"})
	if err != nil {
		t.Fatalf("password update failed: %v", err)
	}
	if updated.PasswordHash == "Xyz98765!" {
		t.Fatalf("updated password must be hashed")
	}
	if s.Authenticate("Alicia", "Xyz98765!") == nil {
		t.Fatalf("expected new password to authenticate")
	}

	if _, err := s.Update(999, domain.UserUpdate{Name: "Ghost"}); err == nil {
		t.Fatalf("expected NotFoundError for unknown user")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s, _ := newUserService()
	user, err := s.Register("Alice", "alice@x.com", "Abc12345!")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	s.Delete(user.ID)
	if s.FindByID(user.ID) != nil {
		t.Fatalf("expected user gone after delete")
	}
	s.Delete(user.ID) // silent no-op
}
