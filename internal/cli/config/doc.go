// Package config defines the delivtrack CLI configuration.
//
//   - spec.go: CLIConfig struct (~/.delivtrack/cli.yaml)
//   - default.go: defaults and well-known paths
//   - loader.go: layered loading (defaults, file, DELIVTRACK_* env,
//     flags) and persistence of single keys
//   - verify.go: value checks
//   - sanitize.go: masking for display
package config
