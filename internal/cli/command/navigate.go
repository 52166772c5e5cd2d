package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/delivtrack-go/internal/cli/router"
	"github.com/yndnr/delivtrack-go/internal/core/domain"
)

var errLoginRequired = domain.ErrNotAuthenticated.WithDetails(`Not logged in. Run "login" first.`)

// enter navigates to route and returns the runtime if the guard renders
// it. A redirect to login means there is no session.
func enter(c *cli.Context, route router.Route) (*Runtime, error) {
	rt, err := GetRuntime(c)
	if err != nil {
		return nil, err
	}

	d, to := rt.Navigator.Navigate(route)
	switch {
	case d.Placeholder:
		return nil, domain.ErrNotInitialized
	case to == router.Login && route != router.Login:
		return nil, errLoginRequired
	}
	return rt, nil
}

// GotoCommand returns the goto command.
func GotoCommand() *cli.Command {
	return &cli.Command{
		Name:      "goto",
		Aliases:   []string{"cd"},
		Usage:     "Move to a screen: login, dashboard, clients, drivers, logs",
		ArgsUsage: "[ROUTE]",
		Action:    gotoRoute,
	}
}

func gotoRoute(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}
	w := c.App.Writer

	if c.NArg() == 0 {
		fmt.Fprintf(w, "Current: %s\n", rt.Navigator.Current())
		routes := []string{string(router.Login)}
		for _, r := range router.Protected() {
			routes = append(routes, string(r))
		}
		fmt.Fprintf(w, "Routes:  %s\n", strings.Join(routes, ", "))
		return nil
	}

	requested := router.Parse(c.Args().First())
	d, to := rt.Navigator.Navigate(requested)
	switch {
	case d.Placeholder:
		return domain.ErrNotInitialized
	case to != requested:
		fmt.Fprintf(w, "Redirected to %s\n", to)
	default:
		fmt.Fprintf(w, "Now at %s\n", to)
	}
	return nil
}
