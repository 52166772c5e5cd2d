package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/yndnr/delivtrack-go/internal/core/domain"
)

type fakeLister[T any] struct {
	page  domain.Page[T]
	err   error
	calls [][2]int
}

func (f *fakeLister[T]) List(ctx context.Context, page, size int) (domain.Page[T], error) {
	f.calls = append(f.calls, [2]int{page, size})
	return f.page, f.err
}

func TestDashboardService_Summary(t *testing.T) {
	clients := &fakeLister[domain.Client]{page: domain.Page[domain.Client]{TotalElements: 42}}
	drivers := &fakeLister[domain.Driver]{page: domain.Page[domain.Driver]{TotalElements: 7}}
	logs := &fakeLister[domain.TransportLog]{page: domain.Page[domain.TransportLog]{
		TotalElements: 130,
		Data: []domain.TransportLog{
			{ID: 1, LoadLocation: "Tunis", UnloadLocation: "Sfax", TripPrice: 100},
			{ID: 2, LoadLocation: "Tunis", UnloadLocation: "Sfax", TripPrice: 200},
			{ID: 3, LoadLocation: "Sousse", UnloadLocation: "Tunis", TripPrice: 300.5},
		},
	}}

	sum, err := NewDashboardService(clients, drivers, logs).Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if sum.TotalClients != 42 || sum.TotalDrivers != 7 || sum.TotalTransportLogs != 130 {
		t.Errorf("totals = %d/%d/%d", sum.TotalClients, sum.TotalDrivers, sum.TotalTransportLogs)
	}
	if sum.TotalRevenue != 600.5 {
		t.Errorf("TotalRevenue = %v, want 600.5", sum.TotalRevenue)
	}
	if math.Abs(sum.AverageTripValue-200.1666) > 0.001 {
		t.Errorf("AverageTripValue = %v", sum.AverageTripValue)
	}
	if sum.ActiveRoutes != 2 {
		t.Errorf("ActiveRoutes = %d, want 2", sum.ActiveRoutes)
	}
	if sum.CompletedTrips != 3 {
		t.Errorf("CompletedTrips = %d, want 3", sum.CompletedTrips)
	}

	if len(clients.calls) != 1 || clients.calls[0] != [2]int{0, 1} {
		t.Errorf("clients listed with %v, want page 0 size 1", clients.calls)
	}
	if len(logs.calls) != 1 || logs.calls[0] != [2]int{0, 10} {
		t.Errorf("logs listed with %v, want page 0 size 10", logs.calls)
	}
}

func TestDashboardService_EmptyLogs(t *testing.T) {
	sum, err := NewDashboardService(
		&fakeLister[domain.Client]{},
		&fakeLister[domain.Driver]{},
		&fakeLister[domain.TransportLog]{},
	).Summary(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sum.AverageTripValue != 0 || sum.ActiveRoutes != 0 || sum.CompletedTrips != 0 {
		t.Errorf("empty summary = %+v", sum)
	}
}

func TestDashboardService_Error(t *testing.T) {
	forbidden := domain.NewRequestError(domain.KindForbidden, 403, nil)

	_, err := NewDashboardService(
		&fakeLister[domain.Client]{},
		&fakeLister[domain.Driver]{err: forbidden},
		&fakeLister[domain.TransportLog]{},
	).Summary(context.Background())

	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Summary() error = %v, want forbidden", err)
	}
	if domain.UserMessage(err) != domain.MsgForbidden {
		t.Errorf("UserMessage() = %q", domain.UserMessage(err))
	}
}
