// Package validate checks create and update form input for clients,
// drivers and transport logs.
//
// Rules live in embedded JSON schemas (schemas/*.json). Failures are
// reported per field with the messages shown next to form inputs, and
// wrapped in domain.ErrValidation so callers can match them with
// errors.Is.
package validate
