package repl

import "strings"

// Builtins are handled by the REPL itself.
var Builtins = []string{"exit", "quit", "history"}

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
	roots    map[string]struct{}
}

// NewCompleter creates a completer over the shell commands plus extra.
func NewCompleter(extra ...string) *Completer {
	commands := []string{
		"login", "logout", "status",
		"dashboard",
		"clients", "clients list", "clients get", "clients create", "clients update", "clients delete",
		"drivers", "drivers list", "drivers get", "drivers create", "drivers update", "drivers delete",
		"logs", "logs list", "logs get", "logs create", "logs update", "logs delete",
		"goto", "goto login", "goto dashboard", "goto clients", "goto drivers", "goto logs",
		"config", "config show", "config set", "config path",
		"metrics", "version", "help",
	}
	commands = append(commands, extra...)
	commands = append(commands, Builtins...)

	c := &Completer{commands: commands, roots: make(map[string]struct{})}
	for _, cmd := range commands {
		c.roots[strings.Fields(cmd)[0]] = struct{}{}
	}
	return c
}

// Complete returns the commands starting with prefix. An empty prefix
// matches nothing.
func (c *Completer) Complete(prefix string) []string {
	if prefix == "" {
		return nil
	}
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// Known reports whether name is a top-level command.
func (c *Completer) Known(name string) bool {
	_, ok := c.roots[name]
	return ok
}
