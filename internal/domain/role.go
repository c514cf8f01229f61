package domain

import (
	"github.com/yourorg/tasktracker/internal/idgen"
)

// DefaultRoleName is attached to every newly registered user.
const (
	DefaultRoleName = "ROLE_USER"
	AdminRoleName   = "ROLE_ADMIN"
)

// roleIDs numbers roles in creation order. Role IDs are process-local: the
// wire format carries role names only, so IDs are reassigned on load.
var roleIDs = idgen.New()

// Role is a label attached to users. No hierarchy, no permission logic
// beyond presence; permissions are mapped elsewhere.
type Role struct {
	ID   int64
	Name string
}

// NewRole creates a role with the next available ID.
func NewRole(name string) Role {
	return Role{ID: roleIDs.Next(), Name: name}
}

func (r Role) String() string { return r.Name }

func (r Role) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.Name + `"`), nil
}

func (r *Role) UnmarshalJSON(data []byte) error {
	name, err := unquote(data)
	if err != nil {
		return err
	}
	*r = NewRole(name)
	return nil
}
