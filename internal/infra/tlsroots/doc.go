// Package tlsroots builds the TLS client configuration for API calls:
// system roots plus an optional private CA bundle (api.ca_file).
package tlsroots
