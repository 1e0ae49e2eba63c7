// Package api is the command-line client for the OfficeCorner server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/officecorner/officecorner-backend-go/internal/client/resolver"
	"github.com/officecorner/officecorner-backend-go/internal/client/session"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type Client struct {
	http     *http.Client
	resolver *resolver.Resolver
	store    *session.Store
	now      func() time.Time
}

func New(cfg Config, store *session.Store) *Client {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &Client{
		http:     httpClient,
		resolver: resolver.New(httpClient, store, cfg.BaseURLs, Candidates),
		store:    store,
		now:      time.Now,
	}
}

func (c *Client) Session() *session.Store {
	return c.store
}

type call struct {
	method   string
	resource string
	query    url.Values
	body     interface{}
	auth     bool
}

// do sends one call and decodes the envelope's data into out. Authenticated
// calls refresh an expired access token first and retry once on 401.
func (c *Client) do(ctx context.Context, cl call, out interface{}) error {
	var payload []byte
	if cl.body != nil {
		var err error
		if payload, err = json.Marshal(cl.body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	if cl.auth {
		if c.store.RefreshToken() == "" && c.store.AccessToken() == "" {
			return ErrNotLoggedIn
		}
		if c.store.AccessTokenExpired() {
			if err := c.refresh(ctx); err != nil {
				return err
			}
		}
	}

	resp, err := c.send(ctx, cl, payload)
	if err != nil {
		return err
	}
	if cl.auth && resp.StatusCode == http.StatusUnauthorized && c.store.RefreshToken() != "" {
		resp.Body.Close()
		if err := c.refresh(ctx); err != nil {
			return err
		}
		if resp, err = c.send(ctx, cl, payload); err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	return decode(resp, out)
}

func (c *Client) send(ctx context.Context, cl call, payload []byte) (*http.Response, error) {
	resp, err := c.resolver.Do(ctx, cl.resource, func(endpoint string) (*http.Request, error) {
		if len(cl.query) > 0 {
			endpoint += "?" + cl.query.Encode()
		}
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, cl.method, endpoint, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if cl.auth {
			req.Header.Set("Authorization", "Bearer "+c.store.AccessToken())
		}
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", cl.method, cl.resource, err)
	}
	return resp, nil
}

func decode(resp *http.Response, out interface{}) error {
	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response (%d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func expiresAt(now time.Time, seconds int64) time.Time {
	if seconds <= 0 {
		return time.Time{}
	}
	return now.Add(time.Duration(seconds) * time.Second)
}
