package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yndnr/delivtrack-go/internal/apitest"
	"github.com/yndnr/delivtrack-go/internal/cli/api"
	"github.com/yndnr/delivtrack-go/internal/cli/connection"
	"github.com/yndnr/delivtrack-go/internal/core/domain"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newClient(t *testing.T) (*apitest.Backend, *connection.HTTPClient) {
	t.Helper()
	backend := apitest.New()
	srv := backend.Start()
	t.Cleanup(srv.Close)
	return backend, connection.NewHTTPClient(connection.Options{BaseURL: srv.URL})
}

func login(t *testing.T, c *connection.HTTPClient) string {
	t.Helper()
	env, err := api.NewAuthAPI(c).Login(context.Background(), domain.Credentials{
		Username: apitest.DefaultUsername,
		Password: apitest.DefaultPassword,
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !env.Success || env.Data == nil || env.Data.Token == "" {
		t.Fatalf("Login() envelope = %+v", env)
	}
	c.UseTokenSource(staticToken(env.Data.Token))
	return env.Data.Token
}

func TestAuthAPI_Login(t *testing.T) {
	_, c := newClient(t)

	env, err := api.NewAuthAPI(c).Login(context.Background(), domain.Credentials{
		Username: apitest.DefaultUsername,
		Password: apitest.DefaultPassword,
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if env.Data.Username != apitest.DefaultUsername {
		t.Errorf("Username = %q, want %q", env.Data.Username, apitest.DefaultUsername)
	}
}

func TestAuthAPI_Login_WrongPassword(t *testing.T) {
	_, c := newClient(t)

	env, err := api.NewAuthAPI(c).Login(context.Background(), domain.Credentials{
		Username: apitest.DefaultUsername,
		Password: "nope",
	})
	if err != nil {
		t.Fatalf("Login() error = %v, want envelope with success=false", err)
	}
	if env.Success {
		t.Error("Success should be false for wrong password")
	}
	if env.Message == "" {
		t.Error("Message should explain the failure")
	}
}

func TestAuthAPI_Login_SkipsBearer(t *testing.T) {
	backend := apitest.New()
	var header string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
		backend.ServeHTTP(w, r)
	}))
	defer srv.Close()

	c := connection.NewHTTPClient(connection.Options{BaseURL: srv.URL})
	c.UseTokenSource(staticToken("stale"))

	if _, err := api.NewAuthAPI(c).Login(context.Background(), domain.Credentials{
		Username: apitest.DefaultUsername,
		Password: apitest.DefaultPassword,
	}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if header != "" {
		t.Errorf("Authorization = %q, want none on login", header)
	}
}

func TestAuthAPI_Login_ServerError(t *testing.T) {
	backend, c := newClient(t)
	backend.ForceStatus("/auth", http.StatusBadGateway)

	_, err := api.NewAuthAPI(c).Login(context.Background(), domain.Credentials{Username: "a", Password: "b"})
	if domain.KindOf(err) != domain.KindServerError {
		t.Errorf("KindOf() = %q, want %q", domain.KindOf(err), domain.KindServerError)
	}
}

func TestClientsAPI_CRUD(t *testing.T) {
	_, c := newClient(t)
	login(t, c)
	clients := api.NewClientsAPI(c)
	ctx := context.Background()

	created, err := clients.Create(ctx, domain.Client{Name: "Acme", IdentityID: "A-1"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == 0 {
		t.Fatal("Create() should return the assigned id")
	}

	got, err := clients.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Acme" {
		t.Errorf("Name = %q, want %q", got.Name, "Acme")
	}

	got.Name = "Acme Ltd"
	updated, err := clients.Update(ctx, got)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "Acme Ltd" {
		t.Errorf("updated Name = %q, want %q", updated.Name, "Acme Ltd")
	}

	if err := clients.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err = clients.Get(ctx, created.ID)
	var reqErr *domain.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Get() after delete error = %v, want RequestError", err)
	}
	if reqErr.Kind != domain.KindApplicationError || reqErr.Message != "Client not found" {
		t.Errorf("error = %+v, want application error 'Client not found'", reqErr)
	}
}

func TestResource_ListPaging(t *testing.T) {
	backend, c := newClient(t)
	login(t, c)
	for i := 0; i < 12; i++ {
		backend.SeedDriver(domain.Driver{Name: "driver", PlateNumber: "TN-1"})
	}
	drivers := api.NewDriversAPI(c)

	tests := []struct {
		name      string
		page      int
		size      int
		wantItems int
		wantPage  int
		wantSize  int
		wantLast  bool
	}{
		{"first page", 0, 5, 5, 0, 5, false},
		{"last partial page", 2, 5, 2, 2, 5, true},
		{"defaults", -1, 0, 10, 0, 10, false},
		{"past end", 9, 5, 0, 9, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := drivers.List(context.Background(), tt.page, tt.size)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(p.Data) != tt.wantItems {
				t.Errorf("len(Data) = %d, want %d", len(p.Data), tt.wantItems)
			}
			if p.Page != tt.wantPage || p.Size != tt.wantSize {
				t.Errorf("page/size = %d/%d, want %d/%d", p.Page, p.Size, tt.wantPage, tt.wantSize)
			}
			if p.TotalElements != 12 {
				t.Errorf("TotalElements = %d, want 12", p.TotalElements)
			}
			if p.Last != tt.wantLast {
				t.Errorf("Last = %v, want %v", p.Last, tt.wantLast)
			}
		})
	}
}

func TestTransportLogsAPI_Create(t *testing.T) {
	backend, c := newClient(t)
	login(t, c)
	client := backend.SeedClient(domain.Client{Name: "Acme"})
	driver := backend.SeedDriver(domain.Driver{Name: "Sami", PlateNumber: "123TU4567"})
	logs := api.NewTransportLogsAPI(c)

	created, err := logs.Create(context.Background(), domain.TransportLogInput{
		ClientID:       client.ID,
		DriverID:       driver.ID,
		LoadDate:       "2024-05-01",
		LoadLocation:   "Tunis",
		UnloadDate:     "2024-05-02",
		UnloadLocation: "Sfax",
		TripPrice:      450,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Client == nil || created.Client.Name != "Acme" {
		t.Errorf("Client = %+v, want expanded Acme", created.Client)
	}
	if created.Route() != "Tunis-Sfax" {
		t.Errorf("Route() = %q, want %q", created.Route(), "Tunis-Sfax")
	}

	_, err = logs.Create(context.Background(), domain.TransportLogInput{ClientID: 999, DriverID: driver.ID})
	if domain.UserMessage(err) != "Client not found" {
		t.Errorf("UserMessage() = %q, want %q", domain.UserMessage(err), "Client not found")
	}
}

func TestResource_Unauthorized(t *testing.T) {
	backend, c := newClient(t)
	token := login(t, c)
	backend.Revoke(token)

	var events int
	c.OnUnauthorized(func(connection.UnauthorizedEvent) { events++ })

	_, err := api.NewClientsAPI(c).List(context.Background(), 0, 10)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("List() error = %v, want unauthorized", err)
	}
	if events != 1 {
		t.Errorf("unauthorized events = %d, want 1", events)
	}
}

func TestResource_WithoutToken(t *testing.T) {
	_, c := newClient(t)

	_, err := api.NewDriversAPI(c).Get(context.Background(), 1)
	if domain.KindOf(err) != domain.KindUnauthorized {
		t.Errorf("KindOf() = %q, want %q", domain.KindOf(err), domain.KindUnauthorized)
	}
}

func TestResource_Forbidden(t *testing.T) {
	backend, c := newClient(t)
	login(t, c)
	backend.ForceStatus("/trans_logs", http.StatusForbidden)

	_, err := api.NewTransportLogsAPI(c).List(context.Background(), 0, 10)
	if domain.UserMessage(err) != domain.MsgForbidden {
		t.Errorf("UserMessage() = %q, want %q", domain.UserMessage(err), domain.MsgForbidden)
	}
}

func TestResource_Paths(t *testing.T) {
	c := connection.NewHTTPClient(connection.Options{})
	tests := []struct {
		got  string
		want string
	}{
		{api.NewClientsAPI(c).Path(), "/clients"},
		{api.NewDriversAPI(c).Path(), "/drivers"},
		{api.NewTransportLogsAPI(c).Path(), "/trans_logs"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("Path() = %q, want %q", tt.got, tt.want)
		}
	}
}
