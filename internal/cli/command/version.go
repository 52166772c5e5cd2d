package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/delivtrack-go/internal/cli/output"
	"github.com/yndnr/delivtrack-go/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show build information",
		Action: version,
	}
}

func version(c *cli.Context) error {
	info := buildinfo.Get()
	if !isTable(c) {
		return render(c, info)
	}
	return output.KeyValues{}.
		Add("Version", info.Version).
		Add("Commit", info.Commit).
		Add("Built", info.BuildTime).
		Add("Go", info.GoVersion).
		Add("Platform", info.Platform).
		Render(c.App.Writer)
}
