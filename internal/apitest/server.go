// Package apitest provides an in-memory fake of the delivery-tracking
// backend for tests and local development.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gorilla/mux"

	"github.com/yndnr/delivtrack-go/internal/core/domain"
)

// Default fixture credentials.
const (
	DefaultUsername = "demo"
	DefaultPassword = "demo123"
	TokenTTL        = time.Hour
)

var signingKey = []byte("delivtrack-apitest")

// Backend is a fake API server. The zero value is not usable; call New.
type Backend struct {
	mu       sync.Mutex
	users    map[string]string
	clients  []domain.Client
	drivers  []domain.Driver
	logs     []domain.TransportLog
	nextID   int64
	revoked  map[string]bool
	forced   map[string]int
	delay    time.Duration
	requests atomic.Int64

	router *mux.Router
}

// New returns a backend seeded with one user and no resources.
func New() *Backend {
	b := &Backend{
		users:   map[string]string{DefaultUsername: DefaultPassword},
		revoked: make(map[string]bool),
		forced:  make(map[string]int),
		nextID:  1,
	}
	b.router = b.routes()
	return b
}

// Start serves the backend on a loopback listener. Callers must Close
// the returned server.
func (b *Backend) Start() *httptest.Server {
	return httptest.NewServer(b)
}

// ServeHTTP implements http.Handler.
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.requests.Add(1)
	b.router.ServeHTTP(w, r)
}

// Requests returns the number of requests served.
func (b *Backend) Requests() int64 {
	return b.requests.Load()
}

// ForceStatus makes every request whose path starts with prefix fail
// with status. A zero status removes the override.
func (b *Backend) ForceStatus(prefix string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.forced, prefix)
		return
	}
	b.forced[prefix] = status
}

// SetDelay delays every response by d.
func (b *Backend) SetDelay(d time.Duration) {
	b.mu.Lock()
	b.delay = d
	b.mu.Unlock()
}

// Revoke makes token fail authentication from now on.
func (b *Backend) Revoke(token string) {
	b.mu.Lock()
	b.revoked[token] = true
	b.mu.Unlock()
}

// AddUser registers another login.
func (b *Backend) AddUser(username, password string) {
	b.mu.Lock()
	b.users[username] = password
	b.mu.Unlock()
}

// SeedClient stores c and returns it with its assigned ID.
func (b *Backend) SeedClient(c domain.Client) domain.Client {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.ID = b.id()
	b.clients = append(b.clients, c)
	return c
}

// SeedDriver stores d and returns it with its assigned ID.
func (b *Backend) SeedDriver(d domain.Driver) domain.Driver {
	b.mu.Lock()
	defer b.mu.Unlock()
	d.ID = b.id()
	b.drivers = append(b.drivers, d)
	return d
}

// SeedLog stores l and returns it with its assigned ID.
func (b *Backend) SeedLog(l domain.TransportLog) domain.TransportLog {
	b.mu.Lock()
	defer b.mu.Unlock()
	l.ID = b.id()
	b.logs = append(b.logs, l)
	return l
}

// IssueToken signs a token for username, as the login endpoint does.
func IssueToken(username string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": username,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(signingKey)
}

func (b *Backend) id() int64 {
	id := b.nextID
	b.nextID++
	return id
}

func (b *Backend) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(b.overrides)

	r.HandleFunc("/auth/login", b.login).Methods("POST")

	api := r.PathPrefix("/").Subrouter()
	api.Use(b.authenticate)

	api.HandleFunc("/clients", b.listClients).Methods("GET")
	api.HandleFunc("/clients", b.createClient).Methods("POST")
	api.HandleFunc("/clients", b.updateClient).Methods("PUT")
	api.HandleFunc("/clients/{id:[0-9]+}", b.getClient).Methods("GET")
	api.HandleFunc("/clients/{id:[0-9]+}", b.deleteClient).Methods("DELETE")

	api.HandleFunc("/drivers", b.listDrivers).Methods("GET")
	api.HandleFunc("/drivers", b.createDriver).Methods("POST")
	api.HandleFunc("/drivers", b.updateDriver).Methods("PUT")
	api.HandleFunc("/drivers/{id:[0-9]+}", b.getDriver).Methods("GET")
	api.HandleFunc("/drivers/{id:[0-9]+}", b.deleteDriver).Methods("DELETE")

	api.HandleFunc("/trans_logs", b.listLogs).Methods("GET")
	api.HandleFunc("/trans_logs", b.createLog).Methods("POST")
	api.HandleFunc("/trans_logs", b.updateLog).Methods("PUT")
	api.HandleFunc("/trans_logs/{id:[0-9]+}", b.getLog).Methods("GET")
	api.HandleFunc("/trans_logs/{id:[0-9]+}", b.deleteLog).Methods("DELETE")

	return r
}

func (b *Backend) overrides(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		delay := b.delay
		status := 0
		// Longest matching prefix wins.
		prefixes := make([]string, 0, len(b.forced))
		for p := range b.forced {
			prefixes = append(prefixes, p)
		}
		sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })
		for _, p := range prefixes {
			if strings.HasPrefix(r.URL.Path, p) {
				status = b.forced[p]
				break
			}
		}
		b.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if status != 0 {
			writeError(w, r, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw := strings.TrimPrefix(header, "Bearer ")
		if header == "" || raw == header {
			writeError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}

		b.mu.Lock()
		revoked := b.revoked[raw]
		b.mu.Unlock()

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return signingKey, nil
		})
		if revoked || err != nil || !token.Valid {
			writeError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, r, http.StatusBadRequest, "Malformed request body")
		return
	}

	b.mu.Lock()
	want, ok := b.users[creds.Username]
	b.mu.Unlock()
	if !ok || want != creds.Password {
		writeJSON(w, http.StatusOK, domain.Envelope[*domain.LoginData]{
			Success: false,
			Message: "Invalid username or password",
		})
		return
	}

	token, err := IssueToken(creds.Username, TokenTTL)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, domain.Envelope[*domain.LoginData]{
		Success: true,
		Data: &domain.LoginData{
			Token:     token,
			Username:  creds.Username,
			ExpiresAt: time.Now().Add(TokenTTL).UTC().Format(time.RFC3339),
		},
	})
}

func (b *Backend) listClients(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	items := append([]domain.Client(nil), b.clients...)
	b.mu.Unlock()
	writePage(w, r, items)
}

func (b *Backend) getClient(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.clients {
		if c.ID == id {
			writeJSON(w, http.StatusOK, domain.Envelope[domain.Client]{Success: true, Data: c})
			return
		}
	}
	writeError(w, r, http.StatusNotFound, "Client not found")
}

func (b *Backend) createClient(w http.ResponseWriter, r *http.Request) {
	var c domain.Client
	if !decode(w, r, &c) {
		return
	}
	if strings.TrimSpace(c.Name) == "" {
		writeError(w, r, http.StatusBadRequest, "Name is required")
		return
	}
	c = b.SeedClient(c)
	writeJSON(w, http.StatusCreated, domain.Envelope[domain.Client]{Success: true, Data: c})
}

func (b *Backend) updateClient(w http.ResponseWriter, r *http.Request) {
	var c domain.Client
	if !decode(w, r, &c) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.clients {
		if b.clients[i].ID == c.ID {
			b.clients[i] = c
			writeJSON(w, http.StatusOK, domain.Envelope[domain.Client]{Success: true, Data: c})
			return
		}
	}
	writeError(w, r, http.StatusNotFound, "Client not found")
}

func (b *Backend) deleteClient(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, c := range b.clients {
		if c.ID == id {
			b.clients = append(b.clients[:i], b.clients[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, r, http.StatusNotFound, "Client not found")
}

func (b *Backend) listDrivers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	items := append([]domain.Driver(nil), b.drivers...)
	b.mu.Unlock()
	writePage(w, r, items)
}

func (b *Backend) getDriver(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.drivers {
		if d.ID == id {
			writeJSON(w, http.StatusOK, domain.Envelope[domain.Driver]{Success: true, Data: d})
			return
		}
	}
	writeError(w, r, http.StatusNotFound, "Driver not found")
}

func (b *Backend) createDriver(w http.ResponseWriter, r *http.Request) {
	var d domain.Driver
	if !decode(w, r, &d) {
		return
	}
	if strings.TrimSpace(d.Name) == "" {
		writeError(w, r, http.StatusBadRequest, "Name is required")
		return
	}
	d = b.SeedDriver(d)
	writeJSON(w, http.StatusCreated, domain.Envelope[domain.Driver]{Success: true, Data: d})
}

func (b *Backend) updateDriver(w http.ResponseWriter, r *http.Request) {
	var d domain.Driver
	if !decode(w, r, &d) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.drivers {
		if b.drivers[i].ID == d.ID {
			b.drivers[i] = d
			writeJSON(w, http.StatusOK, domain.Envelope[domain.Driver]{Success: true, Data: d})
			return
		}
	}
	writeError(w, r, http.StatusNotFound, "Driver not found")
}

func (b *Backend) deleteDriver(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, d := range b.drivers {
		if d.ID == id {
			b.drivers = append(b.drivers[:i], b.drivers[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, r, http.StatusNotFound, "Driver not found")
}

func (b *Backend) listLogs(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	items := append([]domain.TransportLog(nil), b.logs...)
	b.mu.Unlock()
	writePage(w, r, items)
}

func (b *Backend) getLog(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range b.logs {
		if l.ID == id {
			writeJSON(w, http.StatusOK, domain.Envelope[domain.TransportLog]{Success: true, Data: l})
			return
		}
	}
	writeError(w, r, http.StatusNotFound, "Transport log not found")
}

func (b *Backend) createLog(w http.ResponseWriter, r *http.Request) {
	var in domain.TransportLogInput
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	l, msg := b.resolveLog(in)
	if msg != "" {
		b.mu.Unlock()
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}
	l.ID = b.id()
	b.logs = append(b.logs, l)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, domain.Envelope[domain.TransportLog]{Success: true, Data: l})
}

func (b *Backend) updateLog(w http.ResponseWriter, r *http.Request) {
	var in domain.TransportLogInput
	if !decode(w, r, &in) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	l, msg := b.resolveLog(in)
	if msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}
	for i := range b.logs {
		if b.logs[i].ID == in.ID {
			l.ID = in.ID
			b.logs[i] = l
			writeJSON(w, http.StatusOK, domain.Envelope[domain.TransportLog]{Success: true, Data: l})
			return
		}
	}
	writeError(w, r, http.StatusNotFound, "Transport log not found")
}

func (b *Backend) deleteLog(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, l := range b.logs {
		if l.ID == id {
			b.logs = append(b.logs[:i], b.logs[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, r, http.StatusNotFound, "Transport log not found")
}

// resolveLog expands client and driver references. Callers hold b.mu.
func (b *Backend) resolveLog(in domain.TransportLogInput) (domain.TransportLog, string) {
	l := domain.TransportLog{
		LoadDate:          in.LoadDate,
		LoadLocation:      in.LoadLocation,
		UnloadDate:        in.UnloadDate,
		UnloadLocation:    in.UnloadLocation,
		DestinationName:   in.DestinationName,
		DeliveryNote:      in.DeliveryNote,
		Advance:           in.Advance,
		FuelQuantity:      in.FuelQuantity,
		FuelPricePerLiter: in.FuelPricePerLiter,
		VariableCharge:    in.VariableCharge,
		ChargePrice:       in.ChargePrice,
		ClientTariff:      in.ClientTariff,
		TripPrice:         in.TripPrice,
		Operator:          in.Operator,
		Commercial:        in.Commercial,
	}
	for i := range b.clients {
		if b.clients[i].ID == in.ClientID {
			c := b.clients[i]
			l.Client = &c
		}
	}
	if l.Client == nil {
		return l, "Client not found"
	}
	for i := range b.drivers {
		if b.drivers[i].ID == in.DriverID {
			d := b.drivers[i]
			l.Driver = &d
		}
	}
	if l.Driver == nil {
		return l, "Driver not found"
	}
	return l, ""
}

func writePage[T any](w http.ResponseWriter, r *http.Request, items []T) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = domain.DefaultPageSize
	}

	total := len(items)
	pages := (total + size - 1) / size
	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, domain.Envelope[domain.Page[T]]{
		Success: true,
		Data: domain.Page[T]{
			Data:          append([]T{}, items[start:end]...),
			Page:          page,
			Size:          size,
			TotalElements: int64(total),
			TotalPages:    pages,
			Last:          page+1 >= pages,
		},
	})
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "Malformed request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, domain.ErrorPayload{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
		Timestamp: time.Now().Format("2006-01-02T15:04:05"),
	})
}
