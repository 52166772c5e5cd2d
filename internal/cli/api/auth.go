package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/yndnr/delivtrack-go/internal/cli/connection"
	"github.com/yndnr/delivtrack-go/internal/core/domain"
)

// AuthAPI calls the authentication endpoint.
type AuthAPI struct {
	http *connection.HTTPClient
}

// NewAuthAPI creates an AuthAPI.
func NewAuthAPI(c *connection.HTTPClient) *AuthAPI {
	return &AuthAPI{http: c}
}

// Login posts credentials to /auth/login without a bearer token and
// returns the envelope as received. success=false is not an error here;
// the caller decides what an unusable envelope means.
func (a *AuthAPI) Login(ctx context.Context, creds domain.Credentials) (domain.Envelope[*domain.LoginData], error) {
	var env domain.Envelope[*domain.LoginData]

	err := a.http.DoJSON(ctx, http.MethodPost, "/auth/login", creds, &env, connection.NoAuth())
	if err != nil {
		var reqErr *domain.RequestError
		if errors.As(err, &reqErr) {
			return env, err
		}
		return domain.Envelope[*domain.LoginData]{}, domain.ErrMalformedResponse.WithCause(err)
	}
	return env, nil
}
