package command

import (
	"sort"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/delivtrack-go/internal/cli/output"
)

// MetricsCommand returns the metrics command.
func MetricsCommand() *cli.Command {
	return &cli.Command{
		Name:   "metrics",
		Usage:  "Show client metrics for this process",
		Action: metrics,
	}
}

// metricRow is one metric sample as displayed.
type metricRow struct {
	Name   string `json:"name"`
	Labels string `json:"labels,omitempty"`
	Value  string `json:"value"`
}

func metrics(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}

	samples, err := rt.Metrics.Snapshot()
	if err != nil {
		return err
	}

	rows := make([]metricRow, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, metricRow{
			Name:   s.Name,
			Labels: joinLabels(s.Labels),
			Value:  strconv.FormatFloat(s.Value, 'f', -1, 64),
		})
	}

	if !isTable(c) {
		return render(c, rows)
	}
	t := &output.Table{}
	t.SetHeaders("NAME", "LABELS", "VALUE")
	for _, r := range rows {
		t.AddRow(r.Name, r.Labels, r.Value)
	}
	return t.Render(c.App.Writer)
}

func joinLabels(labels map[string]string) string {
	pairs := make([]string, 0, len(labels))
	for k, v := range labels {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}
