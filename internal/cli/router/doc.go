// Package router decides which shell route may be shown for a given
// authentication state and owns the current route.
//
// Guard is a pure function of AuthState and route. Navigator applies
// Guard decisions and forces the login route when the request pipeline
// reports that the session was rejected.
package router
