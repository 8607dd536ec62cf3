package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"localfeed/internal/observability/logging"
	"localfeed/internal/resilience/circuitbreaker"
	"localfeed/internal/resilience/retry"
)

// UserAgent identifies the pipeline to providers.
const UserAgent = "LocalFeedBot/1.0"

const maxResponseBytes = 10 * 1024 * 1024

// jsonClient issues GET requests through a circuit breaker with retry.
type jsonClient struct {
	client  *http.Client
	breaker *circuitbreaker.Breaker
	policy  retry.Policy
}

func newJSONClient(client *http.Client, name string) jsonClient {
	return jsonClient{
		client:  client,
		breaker: circuitbreaker.New(circuitbreaker.Provider(name)),
		policy:  retry.Provider(),
	}
}

func (c jsonClient) get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	var body []byte
	err := retry.Do(ctx, c.policy, c.breaker.Name(), func() error {
		var err error
		body, err = circuitbreaker.Do(c.breaker, func() ([]byte, error) {
			return c.doGet(ctx, url, header)
		})
		if circuitbreaker.Rejected(err) {
			logging.FromContext(ctx).Warn("provider circuit breaker open, request rejected",
				slog.String("circuit", c.breaker.Name()),
				slog.String("state", c.breaker.State().String()))
		}
		return err
	})
	return body, err
}

func (c jsonClient) doGet(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, retry.FromResponse(resp)
	}
	return body, nil
}
