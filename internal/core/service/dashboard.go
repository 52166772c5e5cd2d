package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yndnr/delivtrack-go/internal/core/domain"
)

// PageLister lists one page of a resource.
type PageLister[T any] interface {
	List(ctx context.Context, page, size int) (domain.Page[T], error)
}

// DashboardSummary is the overview shown after login.
type DashboardSummary struct {
	TotalClients       int64                 `json:"totalClients"`
	TotalDrivers       int64                 `json:"totalDrivers"`
	TotalTransportLogs int64                 `json:"totalTransportLogs"`
	RecentLogs         []domain.TransportLog `json:"recentLogs"`

	// Derived from RecentLogs only.
	AverageTripValue float64 `json:"averageTripValue"`
	TotalRevenue     float64 `json:"totalRevenue"`
	ActiveRoutes     int     `json:"activeRoutes"`
	CompletedTrips   int     `json:"completedTrips"`
}

// DashboardService assembles the dashboard from the resource listings.
type DashboardService struct {
	clients PageLister[domain.Client]
	drivers PageLister[domain.Driver]
	logs    PageLister[domain.TransportLog]
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(clients PageLister[domain.Client], drivers PageLister[domain.Driver], logs PageLister[domain.TransportLog]) *DashboardService {
	return &DashboardService{clients: clients, drivers: drivers, logs: logs}
}

// Summary fetches the three listings concurrently. Client and driver
// totals come from a one-element page; the transport log page doubles as
// the recent activity list. The first failure cancels the others.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	var (
		clients domain.Page[domain.Client]
		drivers domain.Page[domain.Driver]
		logs    domain.Page[domain.TransportLog]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		clients, err = s.clients.List(gctx, 0, 1)
		return err
	})
	g.Go(func() (err error) {
		drivers, err = s.drivers.List(gctx, 0, 1)
		return err
	})
	g.Go(func() (err error) {
		logs, err = s.logs.List(gctx, 0, domain.RecentTransportLogsCount)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	sum := &DashboardSummary{
		TotalClients:       clients.TotalElements,
		TotalDrivers:       drivers.TotalElements,
		TotalTransportLogs: logs.TotalElements,
		RecentLogs:         logs.Data,
	}
	sum.TotalRevenue, sum.AverageTripValue = tripStats(logs.Data)
	sum.ActiveRoutes = countRoutes(logs.Data)
	sum.CompletedTrips = len(logs.Data)
	return sum, nil
}

func tripStats(logs []domain.TransportLog) (total, avg float64) {
	for _, l := range logs {
		total += l.TripPrice
	}
	if len(logs) > 0 {
		avg = total / float64(len(logs))
	}
	return total, avg
}

// countRoutes counts distinct load-unload location pairs.
func countRoutes(logs []domain.TransportLog) int {
	routes := make(map[string]struct{}, len(logs))
	for _, l := range logs {
		routes[l.Route()] = struct{}{}
	}
	return len(routes)
}
