package command

import (
	"bytes"
	"errors"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/delivtrack-go/internal/core/domain"
)

func TestApp(t *testing.T) {
	app := App()
	if app == nil {
		t.Fatal("App() returned nil")
	}

	if app.Name != "delivtrack" {
		t.Errorf("Name = %q, want %q", app.Name, "delivtrack")
	}
	if app.Usage == "" {
		t.Error("Usage should not be empty")
	}
	if app.Action == nil {
		t.Error("App should start the shell without a command")
	}

	commandNames := make(map[string]bool)
	for _, cmd := range app.Commands {
		commandNames[cmd.Name] = true
	}

	requiredCommands := []string{
		"login", "logout", "status", "dashboard",
		"clients", "drivers", "logs", "goto",
		"config", "metrics", "version", "shell", "dev-server",
	}
	for _, name := range requiredCommands {
		if !commandNames[name] {
			t.Errorf("missing required command: %s", name)
		}
	}
}

func TestApp_ShellAppOmitsShell(t *testing.T) {
	app := newApp(nil)
	for _, cmd := range app.Commands {
		if cmd.Name == "shell" || cmd.Name == "dev-server" {
			t.Errorf("per-line app must not offer %q", cmd.Name)
		}
	}
}

func TestApp_GlobalFlags(t *testing.T) {
	app := App()

	flagNames := make(map[string]bool)
	for _, flag := range app.Flags {
		flagNames[flag.Names()[0]] = true
	}

	requiredFlags := []string{"config", "api-url", "output", "wide", "verbose", "log-level"}
	for _, name := range requiredFlags {
		if !flagNames[name] {
			t.Errorf("missing required flag: %s", name)
		}
	}
}

func TestResourceCommands(t *testing.T) {
	tests := []struct {
		cmd   *cli.Command
		flags []string
	}{
		{ClientsCommand(), []string{"name", "identity-id"}},
		{DriversCommand(), []string{"name", "plate"}},
		{LogsCommand(), []string{"client-id", "driver-id", "load-date", "trip-price", "client-tariff"}},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.Name, func(t *testing.T) {
			subs := make(map[string]*cli.Command)
			for _, sub := range tt.cmd.Subcommands {
				subs[sub.Name] = sub
			}
			for _, name := range []string{"list", "get", "create", "update", "delete"} {
				if subs[name] == nil {
					t.Errorf("missing subcommand %q", name)
				}
			}

			create := subs["create"]
			if create == nil {
				return
			}
			names := make(map[string]bool)
			for _, f := range create.Flags {
				names[f.Names()[0]] = true
			}
			for _, name := range tt.flags {
				if !names[name] {
					t.Errorf("create is missing flag --%s", name)
				}
			}
		})
	}
}

func TestParseGlobalFlags(t *testing.T) {
	app := &cli.App{
		Flags: globalFlags(),
		Action: func(c *cli.Context) error {
			flags := ParseGlobalFlags(c)

			if flags.ConfigPath != "/tmp/cli.yaml" {
				t.Errorf("ConfigPath = %q, want %q", flags.ConfigPath, "/tmp/cli.yaml")
			}
			if flags.APIURL != "http://api.test/api/v1" {
				t.Errorf("APIURL = %q", flags.APIURL)
			}
			if flags.Output != "json" {
				t.Errorf("Output = %q, want %q", flags.Output, "json")
			}
			if !flags.Wide {
				t.Error("Wide should be true")
			}
			if !flags.Verbose {
				t.Error("Verbose should be true")
			}
			return nil
		},
	}

	args := []string{
		"test",
		"--config", "/tmp/cli.yaml",
		"--api-url", "http://api.test/api/v1",
		"--output", "json",
		"--wide",
		"--verbose",
	}

	if err := app.Run(args); err != nil {
		t.Fatalf("app.Run failed: %v", err)
	}
}

func TestGlobalFlags_Overrides(t *testing.T) {
	tests := []struct {
		name  string
		flags GlobalFlags
		want  map[string]any
	}{
		{
			name:  "none",
			flags: GlobalFlags{},
			want:  map[string]any{},
		},
		{
			name:  "api and output",
			flags: GlobalFlags{APIURL: "http://x/api/v1", Output: "yaml"},
			want:  map[string]any{"api.url": "http://x/api/v1", "output.format": "yaml"},
		},
		{
			name:  "verbose wins over log level",
			flags: GlobalFlags{LogLevel: "error", Verbose: true},
			want:  map[string]any{"log.level": "debug"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.flags.overrides()
			if len(got) != len(tt.want) {
				t.Fatalf("overrides = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("overrides[%q] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestPrintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain", errors.New("boom"), "error: boom\n"},
		{"request error", domain.ErrServerError, "error: " + domain.MsgServerError + "\n"},
		{"domain details", errLoginRequired, "error: Not logged in. Run \"login\" first.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintError(&buf, tt.err)
			if buf.String() != tt.want {
				t.Errorf("PrintError = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestHistoryPath(t *testing.T) {
	if got := historyPath("/home/u/.delivtrack/cli.yaml"); got != "/home/u/.delivtrack/history" {
		t.Errorf("historyPath = %q", got)
	}
}

func TestJoinLabels(t *testing.T) {
	got := joinLabels(map[string]string{"method": "GET", "kind": "ok"})
	if got != "kind=ok,method=GET" {
		t.Errorf("joinLabels = %q", got)
	}
	if joinLabels(nil) != "" {
		t.Error("joinLabels(nil) should be empty")
	}
}

func TestTokenExpiry(t *testing.T) {
	if _, ok := tokenExpiry(""); ok {
		t.Error("empty token has no expiry")
	}
	if _, ok := tokenExpiry("not-a-jwt"); ok {
		t.Error("opaque token has no expiry")
	}
}
