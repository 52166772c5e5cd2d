package command

import (
	"fmt"

	"github.com/knadh/koanf/maps"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/delivtrack-go/internal/cli/config"
	"github.com/yndnr/delivtrack-go/internal/cli/output"
	"github.com/yndnr/delivtrack-go/internal/core/domain"
)

// ConfigCommand returns the config command. None of its subcommands open
// the session store.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage local configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:      "set",
				Usage:     "Set a configuration value",
				ArgsUsage: "KEY VALUE",
				Action:    configSet,
			},
			{
				Name:   "path",
				Usage:  "Show the configuration file path",
				Action: configPath,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	values := config.Sanitize(GetConfig(c)).Values()
	if !isTable(c) {
		return render(c, maps.Unflatten(values, "."))
	}

	kv := output.KeyValues{}
	for _, key := range config.Keys() {
		kv = kv.Add(key, values[key])
	}
	return kv.Render(c.App.Writer)
}

func configSet(c *cli.Context) error {
	if c.NArg() != 2 {
		return domain.ErrMissingArgument.WithDetails("Usage: config set KEY VALUE")
	}
	key, value := c.Args().Get(0), c.Args().Get(1)

	path := ParseGlobalFlags(c).ConfigPath
	if _, err := config.Set(path, key, value); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Set %s = %s in %s\n", key, value, path)
	return nil
}

func configPath(c *cli.Context) error {
	fmt.Fprintln(c.App.Writer, ParseGlobalFlags(c).ConfigPath)
	return nil
}
