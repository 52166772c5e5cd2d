package command

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/delivtrack-go/internal/cli/output"
	"github.com/yndnr/delivtrack-go/internal/cli/router"
	"github.com/yndnr/delivtrack-go/internal/core/service"
)

// DashboardCommand returns the dashboard command.
func DashboardCommand() *cli.Command {
	return &cli.Command{
		Name:    "dashboard",
		Aliases: []string{"dash"},
		Usage:   "Show totals and recent transport logs",
		Action:  dashboard,
	}
}

func dashboard(c *cli.Context) error {
	rt, err := enter(c, router.Dashboard)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	var spinner *output.Spinner
	if isTable(c) && isTerminal(c.App.ErrWriter) {
		spinner = output.NewSpinner(c.App.ErrWriter, "Loading dashboard...")
		spinner.Start()
	}
	sum, err := rt.Dashboard.Summary(ctx)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	if !isTable(c) {
		return render(c, sum)
	}
	return renderDashboard(c, sum)
}

func renderDashboard(c *cli.Context, sum *service.DashboardSummary) error {
	w := c.App.Writer

	kv := output.KeyValues{}.
		Add("Clients", sum.TotalClients).
		Add("Drivers", sum.TotalDrivers).
		Add("Transport logs", sum.TotalTransportLogs).
		Add("Completed trips", sum.CompletedTrips).
		Add("Active routes", sum.ActiveRoutes).
		Add("Total revenue", sum.TotalRevenue).
		Add("Average trip value", sum.AverageTripValue)
	if err := kv.Render(w); err != nil {
		return err
	}

	fmt.Fprintln(w, "Recent transport logs")
	if len(sum.RecentLogs) == 0 {
		fmt.Fprintln(w, "  none yet")
		return nil
	}
	return output.NewFormatter(output.FormatTable, c.Bool("wide")).Format(w, sum.RecentLogs)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
