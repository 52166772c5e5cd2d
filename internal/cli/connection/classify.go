package connection

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/yndnr/delivtrack-go/internal/core/domain"
)

// KindOK labels successful calls in metrics.
const KindOK = "ok"

// classifyTransport maps an error raised before any response arrived.
func classifyTransport(err error) *domain.RequestError {
	if isTimeout(err) {
		return domain.NewRequestError(domain.KindTimeout, 0, err)
	}
	if errors.Is(err, context.Canceled) {
		return domain.NewRequestError(domain.KindUnknown, 0, err)
	}
	return domain.NewRequestError(domain.KindNetworkUnreachable, 0, err)
}

// classifyWait maps a rate limiter error. The limiter refuses up front
// when the wait would outlast ctx's deadline, without wrapping
// context.DeadlineExceeded, and no connection has been attempted.
func classifyWait(ctx context.Context, err error) *domain.RequestError {
	if errors.Is(err, context.Canceled) {
		return domain.NewRequestError(domain.KindUnknown, 0, err)
	}
	if _, ok := ctx.Deadline(); ok || isTimeout(err) {
		return domain.NewRequestError(domain.KindTimeout, 0, err)
	}
	return domain.NewRequestError(domain.KindUnknown, 0, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// classifyStatus maps a non-2xx response. body may be empty or non-JSON.
func classifyStatus(status int, body []byte) *domain.RequestError {
	switch {
	case status == http.StatusUnauthorized:
		return domain.NewRequestError(domain.KindUnauthorized, status, nil)
	case status == http.StatusForbidden:
		return domain.NewRequestError(domain.KindForbidden, status, nil)
	case status >= http.StatusInternalServerError:
		return domain.NewRequestError(domain.KindServerError, status, nil)
	}

	var payload domain.ErrorPayload
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return &domain.RequestError{
			Kind:    domain.KindApplicationError,
			Message: payload.Message,
			Status:  status,
		}
	}
	return domain.NewRequestError(domain.KindUnknown, status, nil)
}
