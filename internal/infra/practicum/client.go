// internal/infra/practicum/client.go
package practicum

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"homework_status_bot/internal/domain/failure"
)

// DefaultEndpoint is the homework status API.
const DefaultEndpoint = "https://practicum.yandex.ru/api/user_api/homework_statuses/"

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 4 << 20

// Client queries the homework status endpoint.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

func NewClient(endpoint, token string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch requests statuses changed since fromDate (epoch seconds) and returns
// the decoded body as untyped data. Numbers decode as json.Number.
func (c *Client) Fetch(ctx context.Context, fromDate int64) (any, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, &failure.TransportError{Err: fmt.Errorf("invalid endpoint %q: %w", c.endpoint, err)}
	}
	q := u.Query()
	q.Set("from_date", strconv.FormatInt(fromDate, 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &failure.TransportError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Authorization", "OAuth "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &failure.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &failure.TransportError{StatusCode: resp.StatusCode}
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, &failure.ShapeError{Reason: failure.ShapeInvalidJSON, Err: err}
	}
	return payload, nil
}
