package esplora

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pocket-wallet/pocketd/pkg/circuitbreaker"
	"github.com/pocket-wallet/pocketd/pkg/explorer"
	"github.com/pocket-wallet/pocketd/pkg/httputil"
	"github.com/sony/gobreaker"
)

type esplora struct {
	apiURL string
	cb     *gobreaker.CircuitBreaker
}

// NewService returns a new esplora service as an explorer.Service interface
func NewService(apiURL string) (explorer.Service, error) {
	service := &esplora{
		apiURL: apiURL,
		cb:     circuitbreaker.NewCircuitBreaker("esplora"),
	}

	if err := service.healthCheck(); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}

	return service, nil
}

func (e *esplora) healthCheck() error {
	_, err := e.GetBlockHeight(context.Background())
	return err
}

type httpResponse struct {
	status int
	body   string
}

// doRequest routes every call to the explorer through the circuit breaker.
// Transport failures are wrapped with explorer.ErrRequestFailed so that
// callers can tell them apart from remote rejections.
func (e *esplora) doRequest(
	ctx context.Context,
	method, url, body string,
	headers map[string]string,
) (int, string, error) {
	res, err := e.cb.Execute(func() (interface{}, error) {
		status, resp, err := httputil.NewHTTPRequest(ctx, method, url, body, headers)
		if err != nil {
			return nil, err
		}
		return httpResponse{status, resp}, nil
	})
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", explorer.ErrRequestFailed, err)
	}

	resp := res.(httpResponse)
	if resp.status != http.StatusOK {
		return resp.status, "", fmt.Errorf(
			"%w: %s", explorer.ErrRequestRejected, resp.body,
		)
	}
	return resp.status, resp.body, nil
}
