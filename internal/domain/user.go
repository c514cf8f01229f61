package domain

// User represents a registered account. The ID is assigned at registration
// and never reused; email is unique across all users (case-insensitive).
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"` // opaque one-way hash, never the plaintext
	Roles        []Role `json:"roles"`
}

// HasRole reports whether the user carries the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate store state.
func (u *User) Clone() *User {
	cp := *u
	cp.Roles = append([]Role(nil), u.Roles...)
	return &cp
}

// UserUpdate carries a partial update. Zero-value fields leave the existing
// value untouched.
type UserUpdate struct {
	Name     string
	Email    string
	Password string // plaintext; re-hashed before it reaches the collection
	Roles    []Role
}

// UserRepository defines durable access to the user collection. Mutations
// flush the whole collection synchronously before returning; a failed write
// is logged and the in-memory state stays authoritative. Insert re-checks
// email uniqueness under the collection lock, so two concurrent inserts with
// the same email cannot both succeed.
type UserRepository interface {
	Insert(user *User) (*User, error)
	FindByID(id int64) (*User, bool)
	FindByEmail(email string) (*User, bool) // case-insensitive
	All() []*User
	Update(id int64, mutate func(*User)) (*User, error)
	Delete(id int64)
}

// PasswordHasher is the credential boundary: a one-way hash plus verify.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}
