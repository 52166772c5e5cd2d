package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/yndnr/delivtrack-go/internal/cli/connection"
	"github.com/yndnr/delivtrack-go/internal/core/domain"
)

// Resource is the CRUD surface shared by clients, drivers and transport
// logs. T is the read model and In the write model.
type Resource[T, In any] struct {
	http *connection.HTTPClient
	path string
}

// ClientsAPI manages /clients.
type ClientsAPI = Resource[domain.Client, domain.Client]

// DriversAPI manages /drivers.
type DriversAPI = Resource[domain.Driver, domain.Driver]

// TransportLogsAPI manages /trans_logs.
type TransportLogsAPI = Resource[domain.TransportLog, domain.TransportLogInput]

// NewClientsAPI creates a ClientsAPI.
func NewClientsAPI(c *connection.HTTPClient) *ClientsAPI {
	return &ClientsAPI{http: c, path: "/clients"}
}

// NewDriversAPI creates a DriversAPI.
func NewDriversAPI(c *connection.HTTPClient) *DriversAPI {
	return &DriversAPI{http: c, path: "/drivers"}
}

// NewTransportLogsAPI creates a TransportLogsAPI.
func NewTransportLogsAPI(c *connection.HTTPClient) *TransportLogsAPI {
	return &TransportLogsAPI{http: c, path: "/trans_logs"}
}

// Path returns the collection path.
func (r *Resource[T, In]) Path() string {
	return r.path
}

// List fetches one page. Negative page or non-positive size fall back to
// page 0 and the default size.
func (r *Resource[T, In]) List(ctx context.Context, page, size int) (domain.Page[T], error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = domain.DefaultPageSize
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	p, err := send[domain.Page[T]](ctx, r.http, http.MethodGet, r.path+"?"+q.Encode(), nil)
	if err != nil {
		return domain.Page[T]{}, fmt.Errorf("list %s: %w", r.path, err)
	}
	return p, nil
}

// Get fetches one record by id.
func (r *Resource[T, In]) Get(ctx context.Context, id int64) (T, error) {
	v, err := send[T](ctx, r.http, http.MethodGet, r.itemPath(id), nil)
	if err != nil {
		return v, fmt.Errorf("get %s: %w", r.itemPath(id), err)
	}
	return v, nil
}

// Create posts a new record and returns the stored version.
func (r *Resource[T, In]) Create(ctx context.Context, in In) (T, error) {
	v, err := send[T](ctx, r.http, http.MethodPost, r.path, in)
	if err != nil {
		return v, fmt.Errorf("create %s: %w", r.path, err)
	}
	return v, nil
}

// Update puts a record; the id travels in the body.
func (r *Resource[T, In]) Update(ctx context.Context, in In) (T, error) {
	v, err := send[T](ctx, r.http, http.MethodPut, r.path, in)
	if err != nil {
		return v, fmt.Errorf("update %s: %w", r.path, err)
	}
	return v, nil
}

// Delete removes a record. An empty 2xx body counts as success.
func (r *Resource[T, In]) Delete(ctx context.Context, id int64) error {
	if _, err := send[json.RawMessage](ctx, r.http, http.MethodDelete, r.itemPath(id), nil); err != nil {
		return fmt.Errorf("delete %s: %w", r.itemPath(id), err)
	}
	return nil
}

func (r *Resource[T, In]) itemPath(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}

// send performs one call and unwraps the envelope. An empty 2xx body is
// accepted for DELETE only.
func send[D any](ctx context.Context, c *connection.HTTPClient, method, path string, body any) (D, error) {
	var zero D

	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, domain.ErrMalformedResponse.WithCause(err)
	}
	if len(data) == 0 && method == http.MethodDelete {
		return zero, nil
	}

	var env domain.Envelope[D]
	if err := json.Unmarshal(data, &env); err != nil {
		return zero, domain.ErrMalformedResponse.WithCause(err)
	}
	if !env.Success {
		return zero, domain.ErrUnsuccessful.WithDetails(env.Message)
	}
	return env.Data, nil
}
