package router

import (
	"sync"

	"github.com/yndnr/delivtrack-go/internal/core/domain"
)

// StateSource provides the current AuthState.
type StateSource interface {
	State() domain.AuthState
}

// Navigator owns the current route.
type Navigator struct {
	states StateSource

	mu        sync.Mutex
	current   Route
	redirects int
	onChange  func(from, to Route)
}

// NewNavigator creates a navigator positioned on the login route.
func NewNavigator(states StateSource) *Navigator {
	return &Navigator{states: states, current: Login}
}

// OnChange registers fn to be called after every route change.
func (n *Navigator) OnChange(fn func(from, to Route)) {
	n.mu.Lock()
	n.onChange = fn
	n.mu.Unlock()
}

// Current returns the current route.
func (n *Navigator) Current() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Navigate moves to route if the guard allows it, or to the guard's
// redirect otherwise. It returns the decision and the route now current.
// A placeholder decision leaves the current route unchanged.
func (n *Navigator) Navigate(route Route) (Decision, Route) {
	d := Guard(n.states.State(), route)

	n.mu.Lock()
	from := n.current
	if target := d.Target(route); target != "" {
		n.current = target
	}
	to := n.current
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil && from != to {
		fn(from, to)
	}
	return d, to
}

// Sync re-applies the guard to the current route after a state change.
func (n *Navigator) Sync() Route {
	_, to := n.Navigate(n.Current())
	return to
}

// HandleUnauthorized forces the login route and reports whether it moved.
// It does nothing if the login route is already current, so concurrent
// rejections navigate once.
func (n *Navigator) HandleUnauthorized() bool {
	n.mu.Lock()
	if n.current == Login {
		n.mu.Unlock()
		return false
	}
	from := n.current
	n.current = Login
	n.redirects++
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn(from, Login)
	}
	return true
}

// Redirects returns how many forced navigations to login have happened.
func (n *Navigator) Redirects() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.redirects
}
