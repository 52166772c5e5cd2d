package command

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/delivtrack-go/internal/cli/config"
	"github.com/yndnr/delivtrack-go/internal/cli/repl"
	"github.com/yndnr/delivtrack-go/internal/infra/confloader"
	"github.com/yndnr/delivtrack-go/internal/infra/shutdown"
	"github.com/yndnr/delivtrack-go/internal/telemetry/logger"
)

const shellShutdownTimeout = 5 * time.Second

// ShellCommand returns the shell command. Running the binary without a
// command does the same.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:   "shell",
		Usage:  "Start an interactive session",
		Action: shellAction,
	}
}

func shellAction(c *cli.Context) error {
	if c.NArg() > 0 {
		return fmt.Errorf("unknown command %q", c.Args().First())
	}

	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	h := shutdown.NewHandler(shellShutdownTimeout)

	history := repl.NewHistory(historyPath(ParseGlobalFlags(c).ConfigPath))
	if err := history.Load(); err != nil {
		rt.Log.Warn("load history", "error", err)
	}
	h.OnShutdown(func(context.Context) error {
		return history.Save()
	})

	if w := watchConfig(rt); w != nil {
		h.OnShutdown(func(context.Context) error {
			return w.Stop()
		})
	}

	exec := func(ctx context.Context, args []string) error {
		app := newApp(rt)
		app.Reader = c.App.Reader
		app.Writer = c.App.Writer
		app.ErrWriter = c.App.ErrWriter
		if err := app.RunContext(ctx, append([]string{c.App.Name}, args...)); err != nil {
			PrintError(c.App.Writer, err)
		}
		return nil
	}

	r := repl.New(exec,
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithHistory(history),
		repl.WithPrompt(func() string { return shellPrompt(rt) }),
	)

	go func() {
		if signaled, _ := h.WaitContext(ctx); signaled {
			cancel()
		}
	}()

	fmt.Fprintf(c.App.Writer, "delivtrack %s. Type \"help\" for commands, \"exit\" to quit.\n", c.App.Version)
	runErr := r.Run(ctx)
	cancel()
	if err := h.Shutdown(); err != nil {
		rt.Log.Warn("shell shutdown", "error", err)
	}
	return runErr
}

// shellPrompt shows the current screen, or "..." while the session is
// still being restored.
func shellPrompt(rt *Runtime) string {
	if rt.Session.State().Loading {
		return "delivtrack [...]> "
	}
	return "delivtrack [" + strings.TrimPrefix(string(rt.Navigator.Current()), "/") + "]> "
}

// historyPath keeps the history next to the config file.
func historyPath(configPath string) string {
	if configPath == "" {
		return config.DefaultHistoryPath()
	}
	return filepath.Join(filepath.Dir(configPath), "history")
}

// watchConfig applies log level changes made to the config file while the
// shell runs. Other settings take effect on the next start.
func watchConfig(rt *Runtime) *confloader.Watcher {
	if rt.ConfigPath == "" {
		return nil
	}
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(logger.Slog(rt.Log)))
	if err != nil {
		rt.Log.Warn("config watcher", "error", err)
		return nil
	}
	if err := w.Watch(rt.ConfigPath); err != nil {
		rt.Log.Debug("config not watched", "path", rt.ConfigPath, "error", err)
		w.Stop()
		return nil
	}
	w.OnChange(func(path string) {
		cfg, err := config.Load(path, nil)
		if err != nil {
			rt.Log.Warn("reload config", "path", path, "error", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		rt.Log.Info("config reloaded", "path", path, "log_level", cfg.Log.Level)
	})
	w.StartAsync()
	return w
}
