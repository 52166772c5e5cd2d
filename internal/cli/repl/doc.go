// Package repl implements the interactive shell of the delivtrack CLI.
//
//   - repl.go: read loop, built-ins and dispatch to an Executor
//   - split.go: quote-aware splitting of an input line
//   - completer.go: prefix completion ("cl?" lists matching commands)
//   - history.go: command history persisted between shells
package repl
