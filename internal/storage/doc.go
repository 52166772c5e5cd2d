// Package storage persists the CLI session.
//
// A session is two string entries, authToken and username, kept in an
// embedded or shared key/value engine:
//
//   - badger: embedded on-disk store under the user's home (default)
//   - redis: shared store for hosts that reuse one session
//   - memory: in-process map for tests and ephemeral runs
//
// Both entries are written and removed in one engine batch so a reader
// never observes one without the other. The token can optionally be
// sealed at rest (seal.go).
package storage
