// Package domain defines the core domain models for delivtrack.
//
// Domain models are pure value objects without any IO dependencies
// or framework coupling. This package contains:
//
//   - Session, Credentials, AuthState: the authenticated identity and
//     its published state
//   - Client, Driver, TransportLog: the managed resources
//   - Envelope, Page, ErrorPayload: the API wire shapes
//   - RequestError: the failure taxonomy of API calls
//   - DomainError: local error codes
package domain
