package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL   = "http://localhost:8000"
	defaultUserAgent = "campus-sports-cli/1.0"
	defaultTimeout   = 15 * time.Second
)

// TokenSource supplies the bearer credential for authenticated requests.
type TokenSource interface {
	Token() string
}

type Client struct {
	HTTP      *http.Client
	BaseURL   string
	UserAgent string
	Tokens    TokenSource
	// OnUnauthorized runs when an authenticated request comes back 401.
	OnUnauthorized func()
	Logger         *log.Logger
}

func NewClient() *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: defaultTimeout},
		BaseURL:   DefaultBaseURL,
		UserAgent: defaultUserAgent,
		Logger:    log.New(io.Discard, "", 0),
	}
}

func (c *Client) newPublicRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	return c.newRequest(ctx, method, path, nil, payload, false)
}

func (c *Client) newAPIRequest(ctx context.Context, method, path string, query url.Values, payload any) (*http.Request, error) {
	return c.newRequest(ctx, method, path, query, payload, true)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, payload any, useAuth bool) (*http.Request, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, err
	}
	path = strings.TrimPrefix(path, "/")
	base.Path = strings.TrimSuffix(base.Path, "/") + "/" + path
	if query != nil {
		base.RawQuery = query.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, base.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if useAuth && c.Tokens != nil {
		if token := c.Tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// send performs the request and returns the raw body of a 2xx response.
func (c *Client) send(req *http.Request) ([]byte, error) {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.logf("method=%s path=%s error=%q request_id=%s", req.Method, req.URL.Path, err, requestID)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.logf("method=%s path=%s status=%d duration=%s request_id=%s", req.Method, req.URL.Path, resp.StatusCode, time.Since(start), requestID)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newError(resp, body)
		if apiErr.StatusCode == http.StatusUnauthorized && req.Header.Get("Authorization") != "" && c.OnUnauthorized != nil {
			c.OnUnauthorized()
		}
		return nil, apiErr
	}
	return body, nil
}

func (c *Client) doJSON(req *http.Request, dest any) error {
	body, err := c.send(req)
	if err != nil {
		return err
	}
	if dest == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func (c *Client) doStatus(req *http.Request) error {
	_, err := c.send(req)
	return err
}

// doList decodes a list endpoint. The backend answers either with a bare
// array or with the array wrapped in a "data" envelope.
func doList[T any](c *Client, req *http.Request) ([]T, error) {
	body, err := c.send(req)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[T](body)
	if err != nil {
		return nil, fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return items, nil
}

func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty response")
	}
	switch trimmed[0] {
	case '[':
		items := []T{}
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	case '{':
		var envelope struct {
			Data *[]T `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, err
		}
		if envelope.Data == nil {
			return nil, fmt.Errorf("object response without data field")
		}
		if *envelope.Data == nil {
			return []T{}, nil
		}
		return *envelope.Data, nil
	}
	return nil, fmt.Errorf("unexpected response shape")
}

func (c *Client) logf(format string, args ...any) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}
