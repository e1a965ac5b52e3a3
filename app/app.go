package app

import (
	"github.com/go-chi/oauth"

	"github.com/wesoda/anket/config"
	"github.com/wesoda/anket/roles"
	"github.com/wesoda/anket/session"
	"github.com/wesoda/anket/store"
)

// App bundles the service dependencies handed to every handler. Handles
// are injected here rather than read from package-level singletons.
type App struct {
	Store *store.Service
	*oauth.BearerServer
	Sessions *session.Manager
	Admins   roles.Allowlist
	Managers roles.Allowlist
	config.Config
}
