// Package command provides the delivtrack CLI commands.
//
// This package defines all commands using urfave/cli/v2:
//
//   - root.go: root command, global flags, runtime lookup, output helpers
//   - runtime.go: session store, HTTP pipeline and session wiring
//   - auth.go: login, logout and status
//   - navigate.go: the goto command and the route guard used by commands
//   - dashboard.go: dashboard summary
//   - resource.go: clients, drivers and transport log CRUD
//   - config.go: local configuration
//   - metrics.go, version.go: process information
//   - shell.go: interactive shell
//   - devserver.go: in-memory API for local testing
//
// Commands that reach the API build the runtime lazily, so local commands
// never open the session store.
package command
