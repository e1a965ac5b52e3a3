package roles

import (
	"strings"

	"github.com/wesoda/anket/model"
)

// Allowlist is a set of lowercased email addresses.
type Allowlist map[string]struct{}

func NewAllowlist(emails []string) Allowlist {
	list := make(Allowlist, len(emails))
	for _, e := range emails {
		list[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return list
}

func (a Allowlist) Contains(email string) bool {
	_, ok := a[strings.ToLower(email)]
	return ok
}

// Resolve derives a user's role from their email address. The admin list
// takes precedence over the manager list; identities without an email
// address are plain users. Called once at profile creation; the result is
// persisted and not recomputed when the allowlists change later.
func Resolve(email *string, admins, managers Allowlist) model.Role {
	if email == nil {
		return model.RoleUser
	}
	switch {
	case admins.Contains(*email):
		return model.RoleAdmin
	case managers.Contains(*email):
		return model.RoleManager
	default:
		return model.RoleUser
	}
}
