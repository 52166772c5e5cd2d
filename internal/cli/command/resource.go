package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/delivtrack-go/internal/cli/api"
	"github.com/yndnr/delivtrack-go/internal/cli/router"
	"github.com/yndnr/delivtrack-go/internal/core/domain"
	"github.com/yndnr/delivtrack-go/internal/core/validate"
)

// resourceDef describes one CRUD screen.
type resourceDef[T, In any] struct {
	name     string // plural, also the command name
	singular string
	aliases  []string
	route    router.Route
	api      func(rt *Runtime) *api.Resource[T, In]
	flags    []cli.Flag

	// form validates the form flags into a payload. current holds the
	// stored item on update and is nil on create.
	form func(c *cli.Context, v *validate.Validator, id string, current *T) (In, error)
}

// ClientsCommand returns the clients subcommand group.
func ClientsCommand() *cli.Command {
	return resourceCommand(resourceDef[domain.Client, domain.Client]{
		name:     "clients",
		singular: "client",
		aliases:  []string{"client"},
		route:    router.Clients,
		api:      func(rt *Runtime) *api.ClientsAPI { return rt.Clients },
		flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Client name"},
			&cli.StringFlag{Name: "identity-id", Aliases: []string{"i"}, Usage: "Tax or identity number"},
		},
		form: clientForm,
	})
}

func clientForm(c *cli.Context, v *validate.Validator, id string, cur *domain.Client) (domain.Client, error) {
	var base domain.Client
	if cur != nil {
		base = *cur
	}
	return v.Client(validate.ClientForm{
		ID:         id,
		Name:       flagOr(c, "name", base.Name),
		IdentityID: flagOr(c, "identity-id", base.IdentityID),
	})
}

// DriversCommand returns the drivers subcommand group.
func DriversCommand() *cli.Command {
	return resourceCommand(resourceDef[domain.Driver, domain.Driver]{
		name:     "drivers",
		singular: "driver",
		aliases:  []string{"driver"},
		route:    router.Drivers,
		api:      func(rt *Runtime) *api.DriversAPI { return rt.Drivers },
		flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Driver name"},
			&cli.StringFlag{Name: "plate", Usage: "Truck plate number"},
		},
		form: driverForm,
	})
}

func driverForm(c *cli.Context, v *validate.Validator, id string, cur *domain.Driver) (domain.Driver, error) {
	var base domain.Driver
	if cur != nil {
		base = *cur
	}
	return v.Driver(validate.DriverForm{
		ID:          id,
		Name:        flagOr(c, "name", base.Name),
		PlateNumber: flagOr(c, "plate", base.PlateNumber),
	})
}

// LogsCommand returns the transport logs subcommand group.
func LogsCommand() *cli.Command {
	return resourceCommand(resourceDef[domain.TransportLog, domain.TransportLogInput]{
		name:     "logs",
		singular: "transport log",
		aliases:  []string{"transport-logs"},
		route:    router.TransportLogs,
		api:      func(rt *Runtime) *api.TransportLogsAPI { return rt.Logs },
		flags: []cli.Flag{
			&cli.StringFlag{Name: "client-id", Usage: "Client ID"},
			&cli.StringFlag{Name: "driver-id", Usage: "Driver ID"},
			&cli.StringFlag{Name: "load-date", Usage: "Load date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "load-location", Usage: "Load location"},
			&cli.StringFlag{Name: "unload-date", Usage: "Unload date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "unload-location", Usage: "Unload location"},
			&cli.StringFlag{Name: "destination", Usage: "Destination name"},
			&cli.StringFlag{Name: "delivery-note", Usage: "Delivery note number"},
			&cli.StringFlag{Name: "operator", Usage: "Operator"},
			&cli.StringFlag{Name: "commercial", Usage: "Commercial contact"},
			&cli.StringFlag{Name: "advance", Usage: "Advance paid to the driver"},
			&cli.StringFlag{Name: "fuel-quantity", Usage: "Fuel quantity in liters"},
			&cli.StringFlag{Name: "fuel-price", Usage: "Fuel price per liter"},
			&cli.StringFlag{Name: "variable-charge", Usage: "Variable charge"},
			&cli.StringFlag{Name: "charge-price", Usage: "Charge price"},
			&cli.StringFlag{Name: "client-tariff", Usage: "Client tariff"},
			&cli.StringFlag{Name: "trip-price", Usage: "Trip price"},
		},
		form: transportLogForm,
	})
}

func transportLogForm(c *cli.Context, v *validate.Validator, id string, cur *domain.TransportLog) (domain.TransportLogInput, error) {
	var (
		base               domain.TransportLog
		clientID, driverID string
	)
	if cur != nil {
		base = *cur
		if base.Client != nil {
			clientID = formatID(base.Client.ID)
		}
		if base.Driver != nil {
			driverID = formatID(base.Driver.ID)
		}
	}
	return v.TransportLog(validate.TransportLogForm{
		ID:                id,
		ClientID:          flagOr(c, "client-id", clientID),
		DriverID:          flagOr(c, "driver-id", driverID),
		LoadDate:          flagOr(c, "load-date", base.LoadDate),
		LoadLocation:      flagOr(c, "load-location", base.LoadLocation),
		UnloadDate:        flagOr(c, "unload-date", base.UnloadDate),
		UnloadLocation:    flagOr(c, "unload-location", base.UnloadLocation),
		DestinationName:   flagOr(c, "destination", base.DestinationName),
		DeliveryNote:      flagOr(c, "delivery-note", base.DeliveryNote),
		Operator:          flagOr(c, "operator", base.Operator),
		Commercial:        flagOr(c, "commercial", base.Commercial),
		Advance:           flagOr(c, "advance", formatNumber(cur != nil, base.Advance)),
		FuelQuantity:      flagOr(c, "fuel-quantity", formatNumber(cur != nil, base.FuelQuantity)),
		FuelPricePerLiter: flagOr(c, "fuel-price", formatNumber(cur != nil, base.FuelPricePerLiter)),
		VariableCharge:    flagOr(c, "variable-charge", formatNumber(cur != nil, base.VariableCharge)),
		ChargePrice:       flagOr(c, "charge-price", formatNumber(cur != nil, base.ChargePrice)),
		ClientTariff:      flagOr(c, "client-tariff", formatNumber(cur != nil, base.ClientTariff)),
		TripPrice:         flagOr(c, "trip-price", formatNumber(cur != nil, base.TripPrice)),
	})
}

// ============================================================================
// Generic CRUD
// ============================================================================

func resourceCommand[T, In any](def resourceDef[T, In]) *cli.Command {
	title := strings.ToUpper(def.singular[:1]) + def.singular[1:]

	return &cli.Command{
		Name:    def.name,
		Aliases: def.aliases,
		Usage:   "Manage " + def.name,
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List " + def.name + " one page at a time",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Usage: "Page number, starting at 0", Value: 0},
					&cli.IntFlag{Name: "size", Usage: "Page size", Value: domain.DefaultPageSize},
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Fetch every page"},
				},
				Action: func(c *cli.Context) error { return listResource(c, def) },
			},
			{
				Name:      "get",
				Usage:     "Show one " + def.singular,
				ArgsUsage: "ID",
				Action:    func(c *cli.Context) error { return getResource(c, def) },
			},
			{
				Name:   "create",
				Usage:  "Create a " + def.singular,
				Flags:  def.flags,
				Action: func(c *cli.Context) error { return saveResource(c, def, false) },
			},
			{
				Name:      "update",
				Aliases:   []string{"edit"},
				Usage:     "Update a " + def.singular + "; omitted flags keep their value",
				ArgsUsage: "[options] ID",
				Flags:     def.flags,
				Action:    func(c *cli.Context) error { return saveResource(c, def, true) },
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a " + def.singular,
				ArgsUsage: "[--force] ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Skip confirmation"},
				},
				Action: func(c *cli.Context) error { return deleteResource(c, def, title) },
			},
		},
	}
}

func listResource[T, In any](c *cli.Context, def resourceDef[T, In]) error {
	rt, err := enter(c, def.route)
	if err != nil {
		return err
	}
	res := def.api(rt)

	ctx, cancel := withTimeout(c)
	defer cancel()

	page, err := res.List(ctx, c.Int("page"), c.Int("size"))
	if err != nil {
		return err
	}

	if c.Bool("all") {
		items := page.Data
		for page.HasNext() {
			page, err = res.List(ctx, page.Page+1, page.Size)
			if err != nil {
				return err
			}
			items = append(items, page.Data...)
		}
		return render(c, items)
	}

	if !isTable(c) {
		return render(c, page)
	}
	if err := render(c, page.Data); err != nil {
		return err
	}
	pages := page.TotalPages
	if pages == 0 {
		pages = 1
	}
	fmt.Fprintf(c.App.Writer, "\nPage %d of %d, %d %s in total\n", page.Page+1, pages, page.TotalElements, def.name)
	return nil
}

func getResource[T, In any](c *cli.Context, def resourceDef[T, In]) error {
	rt, err := enter(c, def.route)
	if err != nil {
		return err
	}
	id, err := argID(c, def.singular)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	item, err := def.api(rt).Get(ctx, id)
	if err != nil {
		return err
	}
	return render(c, item)
}

func saveResource[T, In any](c *cli.Context, def resourceDef[T, In], update bool) error {
	rt, err := enter(c, def.route)
	if err != nil {
		return err
	}
	res := def.api(rt)

	ctx, cancel := withTimeout(c)
	defer cancel()

	var (
		id      string
		current *T
	)
	if update {
		n, err := argID(c, def.singular)
		if err != nil {
			return err
		}
		item, err := res.Get(ctx, n)
		if err != nil {
			return err
		}
		id, current = formatID(n), &item
	}

	in, err := def.form(c, rt.Validator, id, current)
	if err != nil {
		return err
	}

	var saved T
	if update {
		saved, err = res.Update(ctx, in)
	} else {
		saved, err = res.Create(ctx, in)
	}
	if err != nil {
		return err
	}
	return render(c, saved)
}

func deleteResource[T, In any](c *cli.Context, def resourceDef[T, In], title string) error {
	rt, err := enter(c, def.route)
	if err != nil {
		return err
	}
	id, err := argID(c, def.singular)
	if err != nil {
		return err
	}

	ok, err := confirmed(c, fmt.Sprintf("Delete %s %d? This action cannot be undone.", def.singular, id))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(c.App.Writer, "Aborted.")
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := def.api(rt).Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s %d deleted.\n", title, id)
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

func confirmed(c *cli.Context, message string) (bool, error) {
	if c.Bool("force") {
		return true, nil
	}
	var ok bool
	if err := ask(c, &survey.Confirm{Message: message}, &ok); err != nil {
		return false, fmt.Errorf("confirm: %w", err)
	}
	return ok, nil
}

// argID reads the single ID argument. Flags after the ID are not parsed
// by the command, so anything past it is rejected rather than dropped.
func argID(c *cli.Context, singular string) (int64, error) {
	arg := c.Args().First()
	if arg == "" {
		return 0, domain.ErrMissingArgument.WithDetails(singular + " ID is required")
	}
	if c.NArg() > 1 {
		return 0, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf(
			"unexpected arguments after %s ID: %s (flags must come before the ID)",
			singular, strings.Join(c.Args().Tail(), " ")))
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("invalid %s ID %q", singular, arg))
	}
	return id, nil
}

// flagOr returns the flag value if it was given, fallback otherwise.
func flagOr(c *cli.Context, name, fallback string) string {
	if c.IsSet(name) {
		return c.String(name)
	}
	return fallback
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// formatNumber renders a stored amount for the form. On create there is
// no stored item and the field starts empty.
func formatNumber(stored bool, v float64) string {
	if !stored {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
