// Package output renders command results.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: column tables for lists, with wide mode
//   - summary.go: aligned key/value blocks for single records and the
//     dashboard
//   - json.go, yaml.go: machine-readable output
//   - spinner.go: placeholder animation while a result is loading
package output
