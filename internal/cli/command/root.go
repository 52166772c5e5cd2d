package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/delivtrack-go/internal/cli/config"
	"github.com/yndnr/delivtrack-go/internal/cli/output"
	"github.com/yndnr/delivtrack-go/internal/core/domain"
	"github.com/yndnr/delivtrack-go/internal/infra/buildinfo"
)

// Metadata keys.
const (
	metaConfig  = "config"
	metaRuntime = "runtime"
	metaShared  = "shared"
	metaOptions = "runtimeOptions"
)

// App creates the CLI application. Without a command it starts the
// interactive shell.
func App(opts ...RuntimeOption) *cli.App {
	app := newApp(nil)
	app.Commands = append(app.Commands, ShellCommand(), DevServerCommand())
	app.Action = shellAction
	app.Metadata[metaOptions] = opts
	return app
}

// newApp builds the command tree. A non-nil rt is shared with the caller
// and never closed by the app; the shell runs one such app per line.
func newApp(rt *Runtime) *cli.App {
	app := &cli.App{
		Name:                 "delivtrack",
		Usage:                "Delivery tracking client",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			LoginCommand(),
			LogoutCommand(),
			StatusCommand(),
			DashboardCommand(),
			ClientsCommand(),
			DriversCommand(),
			LogsCommand(),
			GotoCommand(),
			ConfigCommand(),
			MetricsCommand(),
			VersionCommand(),
		},
		Metadata: map[string]any{},
		Before:   before,
		After:    after,
	}
	if rt != nil {
		app.Metadata[metaRuntime] = rt
		app.Metadata[metaConfig] = rt.Config
		app.Metadata[metaShared] = true
	}
	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file path",
			EnvVars: []string{"DELIVTRACK_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "api-url",
			Aliases: []string{"s"},
			Usage:   "API base URL (e.g., http://localhost:8080/api/v1)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	ConfigPath string
	APIURL     string
	Output     string
	Wide       bool
	Verbose    bool
	LogLevel   string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		ConfigPath: c.String("config"),
		APIURL:     c.String("api-url"),
		Output:     c.String("output"),
		Wide:       c.Bool("wide"),
		Verbose:    c.Bool("verbose"),
		LogLevel:   c.String("log-level"),
	}
}

// overrides maps the flags that shadow configuration keys.
func (f *GlobalFlags) overrides() map[string]any {
	m := make(map[string]any)
	if f.APIURL != "" {
		m["api.url"] = f.APIURL
	}
	if f.Output != "" {
		m["output.format"] = f.Output
	}
	if f.LogLevel != "" {
		m["log.level"] = f.LogLevel
	}
	if f.Verbose {
		m["log.level"] = "debug"
	}
	return m
}

func before(c *cli.Context) error {
	if _, ok := c.App.Metadata[metaConfig].(*config.CLIConfig); ok {
		return nil
	}
	flags := ParseGlobalFlags(c)
	cfg, err := config.Load(flags.ConfigPath, flags.overrides())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.App.Metadata[metaConfig] = cfg
	return nil
}

func after(c *cli.Context) error {
	if shared, _ := c.App.Metadata[metaShared].(bool); shared {
		return nil
	}
	if rt, ok := c.App.Metadata[metaRuntime].(*Runtime); ok {
		return rt.Close()
	}
	return nil
}

// GetConfig returns the loaded configuration.
func GetConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// GetRuntime returns the process runtime, building it on first use.
// Commands that only touch local files never open the session store.
func GetRuntime(c *cli.Context) (*Runtime, error) {
	if rt, ok := c.App.Metadata[metaRuntime].(*Runtime); ok {
		return rt, nil
	}
	opts, _ := c.App.Metadata[metaOptions].([]RuntimeOption)
	opts = append([]RuntimeOption{WithLogOutput(c.App.ErrWriter)}, opts...)

	rt, err := NewRuntime(c.Context, GetConfig(c), opts...)
	if err != nil {
		return nil, err
	}
	rt.ConfigPath = ParseGlobalFlags(c).ConfigPath
	c.App.Metadata[metaRuntime] = rt
	return rt, nil
}

// formatter returns the formatter for --output, falling back to the
// configured format.
func formatter(c *cli.Context) (output.Formatter, error) {
	name := c.String("output")
	if name == "" {
		name = GetConfig(c).Output.Format
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	return output.NewFormatter(format, c.Bool("wide")), nil
}

func render(c *cli.Context, data any) error {
	f, err := formatter(c)
	if err != nil {
		return err
	}
	return f.Format(c.App.Writer, data)
}

// isTable reports whether output goes to a human.
func isTable(c *cli.Context) bool {
	name := c.String("output")
	if name == "" {
		name = GetConfig(c).Output.Format
	}
	format, err := output.ParseFormat(name)
	return err == nil && format == output.FormatTable
}

// withTimeout bounds a single command by the configured API timeout.
// The HTTP client enforces the same bound per request.
func withTimeout(c *cli.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context, GetConfig(c).API.Timeout)
}

// PrintError prints a user-facing error message.
func PrintError(w io.Writer, err error) {
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "error: %s\n", domain.UserMessage(err))
}

// Run runs the app with args and returns the process exit code.
func Run(app *cli.App, args []string) int {
	if err := app.Run(args); err != nil {
		PrintError(app.ErrWriter, err)
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) && exitErr.ExitCode() != 0 {
			return exitErr.ExitCode()
		}
		return 1
	}
	return 0
}
