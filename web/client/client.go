package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	aerrors "go.hackfix.me/todo/app/errors"
	stypes "go.hackfix.me/todo/web/server/types"
)

// Client is a friendly interface over the todo HTTP API.
type Client struct {
	*http.Client
	baseURL string
	token   string
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.Client = hc
	}
}

// WithToken sets the access token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New returns a new client for the server at baseURL, e.g.
// "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		Client:  &http.Client{Timeout: time.Minute},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Login requests an access token with the user credentials, and uses it for
// subsequent requests.
func (c *Client) Login(ctx context.Context, name, password string) (*stypes.TokenResponse, error) {
	var resp stypes.TokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/token",
		stypes.TokenRequest{Name: name, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.AccessToken

	return &resp, nil
}

// do sends a request with an optional JSON body, and decodes the JSON
// response into out, if it's not nil. Responses with an error status are
// returned as a *stypes.Problem cause.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (rerr error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid request URL: %w", err)
	}
	errFields := []any{"url", u.String(), "method", method}

	var reqBody io.Reader
	if body != nil {
		data, merr := json.Marshal(body)
		if merr != nil {
			return aerrors.NewWithCause("failed marshalling request data", merr, errFields...)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return aerrors.NewWithCause("failed creating request", err, errFields...)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.Do(req)
	if err != nil {
		return aerrors.NewWithCause("failed sending request", err, errFields...)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("failed closing response body: %w", err)
		}
	}()
	errFields = append(errFields, "status_code", resp.StatusCode)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return aerrors.NewWithCause("failed reading response body", err, errFields...)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		problem := &stypes.Problem{}
		if uerr := json.Unmarshal(respBody, problem); uerr != nil || problem.Status == 0 {
			problem = stypes.NewProblem(resp.StatusCode, strings.TrimSpace(string(respBody)))
		}
		return aerrors.NewWithCause("request failed", problem, errFields...)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err = json.Unmarshal(respBody, out); err != nil {
		return aerrors.NewWithCause("failed unmarshalling response body", err, errFields...)
	}

	return nil
}
