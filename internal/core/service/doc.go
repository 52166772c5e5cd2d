// Package service holds the client-side application services.
//
//   - SessionManager: the session lifecycle (restore, login, logout, the
//     401 side channel) and AuthState publication
//   - DashboardService: the post-login overview and its aggregates
//
// Services define the interfaces they consume (SessionStore,
// Authenticator, PageLister) so storage and transport can be swapped in
// tests.
package service
