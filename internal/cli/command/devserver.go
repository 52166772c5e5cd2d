package command

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/delivtrack-go/internal/apitest"
	"github.com/yndnr/delivtrack-go/internal/core/domain"
	"github.com/yndnr/delivtrack-go/internal/infra/shutdown"
	"github.com/yndnr/delivtrack-go/internal/telemetry/logger"
)

const devServerPrefix = "/api/v1"

// DevServerCommand returns the dev-server command, which serves an
// in-memory backend for local use.
func DevServerCommand() *cli.Command {
	return &cli.Command{
		Name:   "dev-server",
		Usage:  "Serve an in-memory API for local testing",
		Hidden: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Listen address",
				Value: "127.0.0.1:8080",
			},
			&cli.BoolFlag{
				Name:  "seed",
				Usage: "Load sample clients, drivers and transport logs",
			},
		},
		Action: devServer,
	}
}

func devServer(c *cli.Context) error {
	log, err := logger.New(logger.Config{
		Level:  GetConfig(c).Log.Level,
		Format: GetConfig(c).Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return err
	}

	backend := apitest.New()
	if c.Bool("seed") {
		seedBackend(backend)
	}

	mux := http.NewServeMux()
	mux.Handle(devServerPrefix+"/", http.StripPrefix(devServerPrefix, backend))

	ln, err := net.Listen("tcp", c.String("listen"))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	h := shutdown.NewHandler(5 * time.Second)
	h.OnShutdown(func(ctx context.Context) error {
		log.Info("stopping dev server")
		return srv.Shutdown(ctx)
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	fmt.Fprintf(c.App.Writer, "Serving http://%s%s\n", ln.Addr(), devServerPrefix)
	fmt.Fprintf(c.App.Writer, "Log in with %s / %s\n", apitest.DefaultUsername, apitest.DefaultPassword)

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	go func() {
		if err, ok := <-errCh; ok {
			log.Error("dev server failed", "error", err)
		}
		cancel()
	}()

	_, err = h.WaitContext(ctx)
	return err
}

func seedBackend(b *apitest.Backend) {
	acme := b.SeedClient(domain.Client{Name: "Acme Foods", IdentityID: "B12345678"})
	north := b.SeedClient(domain.Client{Name: "Northern Steel", IdentityID: "A87654321"})
	ana := b.SeedDriver(domain.Driver{Name: "Ana Ruiz", PlateNumber: "1234-BCD"})
	luis := b.SeedDriver(domain.Driver{Name: "Luis Gil", PlateNumber: "5678-FGH"})

	b.SeedLog(domain.TransportLog{
		Client: &acme, Driver: &ana,
		LoadDate: "2024-03-01", LoadLocation: "Valencia",
		UnloadDate: "2024-03-02", UnloadLocation: "Madrid",
		DestinationName: "Central warehouse",
		FuelQuantity:    120, FuelPricePerLiter: 1.45,
		ClientTariff: 950, TripPrice: 1100,
		Operator: "ops", Commercial: "sales",
	})
	b.SeedLog(domain.TransportLog{
		Client: &north, Driver: &luis,
		LoadDate: "2024-03-04", LoadLocation: "Bilbao",
		UnloadDate: "2024-03-05", UnloadLocation: "Zaragoza",
		DestinationName: "Plant 2",
		FuelQuantity:    90, FuelPricePerLiter: 1.5,
		ClientTariff: 700, TripPrice: 820,
		Operator: "ops", Commercial: "sales",
	})
}
