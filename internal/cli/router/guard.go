package router

import (
	"strings"

	"github.com/yndnr/delivtrack-go/internal/core/domain"
)

// Route is a shell location.
type Route string

// Known routes.
const (
	Login         Route = "/login"
	Dashboard     Route = "/dashboard"
	Clients       Route = "/clients"
	Drivers       Route = "/drivers"
	TransportLogs Route = "/transport-logs"
)

// DefaultProtected is where an authenticated user lands.
const DefaultProtected = Dashboard

var protected = []Route{Dashboard, Clients, Drivers, TransportLogs}

// Protected returns the routes that require a session.
func Protected() []Route {
	return append([]Route(nil), protected...)
}

// IsProtected reports whether r requires a session.
func (r Route) IsProtected() bool {
	for _, p := range protected {
		if r == p {
			return true
		}
	}
	return false
}

// Parse maps user input such as "clients", "/clients" or "logs" to a
// route. Unknown input maps to DefaultProtected, as does "/".
func Parse(s string) Route {
	s = strings.ToLower(strings.TrimSpace(s))
	s = "/" + strings.Trim(s, "/")
	switch s {
	case "/login":
		return Login
	case "/clients":
		return Clients
	case "/drivers":
		return Drivers
	case "/transport-logs", "/logs", "/trans_logs":
		return TransportLogs
	default:
		return DefaultProtected
	}
}

// Decision is the outcome of Guard.
//
// Exactly one of the following holds: Placeholder is set (state unknown,
// show neither view), Render is set (show the requested route), or
// Redirect names the route to show instead.
type Decision struct {
	Render      bool
	Placeholder bool
	Redirect    Route
}

// Target returns the route that should be shown, or "" for a placeholder.
func (d Decision) Target(requested Route) Route {
	switch {
	case d.Placeholder:
		return ""
	case d.Render:
		return requested
	default:
		return d.Redirect
	}
}

// Guard decides whether route may be shown in state.
//
//   - Loading: placeholder, whatever the route
//   - Anonymous: only Login renders; everything else redirects to Login
//   - Authenticated: Login redirects to DefaultProtected; others render
func Guard(state domain.AuthState, route Route) Decision {
	switch state.Phase() {
	case domain.PhaseLoading:
		return Decision{Placeholder: true}
	case domain.PhaseAuthenticated:
		if route == Login {
			return Decision{Redirect: DefaultProtected}
		}
		if !route.IsProtected() {
			return Decision{Redirect: DefaultProtected}
		}
		return Decision{Render: true}
	default:
		if route == Login {
			return Decision{Render: true}
		}
		return Decision{Redirect: Login}
	}
}
