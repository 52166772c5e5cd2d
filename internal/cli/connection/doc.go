// Package connection is the authenticated request pipeline of the CLI.
//
// Every outbound API call goes through HTTPClient:
//
//   - http.go: request construction, bearer attachment, rate limiting
//   - classify.go: mapping of failures onto domain.RequestError kinds
//   - events.go: the Unauthorized side channel
//
// The client reads the token from a TokenSource on every call and never
// caches it. A 401 response notifies every registered listener before
// the error is returned to the caller. Calls are attempted once.
package connection
