package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	ErrHTTPStatus       = errors.New("Unexpected HTTP status")
	ErrResponseTooLarge = errors.New("Response too large")
	ErrNoURL            = errors.New("No URL configured")
)

// conn performs the HTTP round trips for a Client.
type conn struct {
	http     *http.Client
	maxBytes int64
	log      *zap.Logger
}

func (c *conn) post(ctx context.Context, rawURL string, params url.Values, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, rawURL, params, body)
}

func (c *conn) get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, rawURL, params, nil)
}

func (c *conn) do(ctx context.Context, method, rawURL string, params url.Values, body []byte) (data []byte, err error) {
	if rawURL == "" {
		return nil, ErrNoURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	if len(params) > 0 {
		query := u.Query()
		for key, values := range params {
			for _, value := range values {
				query.Add(key, value)
			}
		}
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "text/plain")
	}

	c.log.Debug("Request", zap.String("method", method), zap.String("url", u.Redacted()))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		err = multierr.Append(err, resp.Body.Close())
		if err != nil {
			data = nil
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s %s returned %d: %w", method, u.Redacted(), resp.StatusCode, ErrHTTPStatus)
	}

	// Read one byte past the limit to tell a full response from a cut one
	data, err = ioutil.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, err
	}

	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%s %s: %w", method, u.Redacted(), ErrResponseTooLarge)
	}

	return data, nil
}
