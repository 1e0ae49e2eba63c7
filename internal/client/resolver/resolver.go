// Package resolver finds which of several candidate URLs serves a logical
// API resource and remembers the answer.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"golang.org/x/sync/singleflight"
)

var (
	ErrUnknownResource = errors.New("resolver: unknown resource")
	ErrNoLiveEndpoint  = errors.New("resolver: no live endpoint")
)

// Cache stores resolved URLs. session.Store satisfies it.
type Cache interface {
	Endpoint(resource string) (string, bool)
	SetEndpoint(resource, url string) error
	InvalidateEndpoint(resource string) error
}

type Resolver struct {
	client     *http.Client
	cache      Cache
	baseURLs   []string
	candidates map[string][]string
	group      singleflight.Group
	logger     *slog.Logger
}

// New builds a resolver. candidates maps a resource name to the paths
// tried under every base URL, in order.
func New(client *http.Client, cache Cache, baseURLs []string, candidates map[string][]string) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	bases := make([]string, 0, len(baseURLs))
	for _, b := range baseURLs {
		if b = strings.TrimRight(strings.TrimSpace(b), "/"); b != "" {
			bases = append(bases, b)
		}
	}
	return &Resolver{
		client:     client,
		cache:      cache,
		baseURLs:   bases,
		candidates: candidates,
		logger:     slog.Default(),
	}
}

// Candidates lists every URL tried for resource, base URL first.
func (r *Resolver) Candidates(resource string) []string {
	paths := r.candidates[resource]
	out := make([]string, 0, len(paths)*len(r.baseURLs))
	for _, base := range r.baseURLs {
		for _, p := range paths {
			out = append(out, base+"/"+strings.TrimLeft(p, "/"))
		}
	}
	return out
}

// Resolve returns the cached URL for resource or probes the candidates.
// Concurrent callers for the same resource share one probe.
func (r *Resolver) Resolve(ctx context.Context, resource string) (string, error) {
	if _, ok := r.candidates[resource]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
	if url, ok := r.cache.Endpoint(resource); ok {
		return url, nil
	}

	ch := r.group.DoChan(resource, func() (interface{}, error) {
		return r.probe(context.WithoutCancel(ctx), resource)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (r *Resolver) probe(ctx context.Context, resource string) (string, error) {
	var lastErr error
	for _, url := range r.Candidates(resource) {
		live, err := r.isLive(ctx, url)
		if err != nil {
			lastErr = err
			r.logger.Debug("Probe failed", "resource", resource, "url", url, "error", err)
			continue
		}
		if !live {
			continue
		}
		if err := r.cache.SetEndpoint(resource, url); err != nil {
			r.logger.Warn("Failed to cache endpoint", "resource", resource, "error", err)
		}
		return url, nil
	}

	if lastErr != nil {
		return "", fmt.Errorf("%w for %s: %v", ErrNoLiveEndpoint, resource, lastErr)
	}
	return "", fmt.Errorf("%w for %s", ErrNoLiveEndpoint, resource)
}

// isLive treats any answer other than 404 or a server error as proof that
// the route exists, since most probes arrive without credentials or body.
func (r *Resolver) isLive(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	return routeExists(resp.StatusCode), nil
}

func routeExists(status int) bool {
	return status != http.StatusNotFound && status < http.StatusInternalServerError
}

// Do resolves resource, builds a request against it and sends it. A
// cached URL that answers 404 or cannot be dialed is dropped and the
// request is retried once against a freshly probed URL. Other transport
// errors are retried only for GET, HEAD and OPTIONS, since the request
// may already have reached the server. Any other status, including 5xx,
// is returned as is.
func (r *Resolver) Do(ctx context.Context, resource string, build func(url string) (*http.Request, error)) (*http.Response, error) {
	req, resp, err := r.attempt(ctx, resource, build)
	switch {
	case ctx.Err() != nil:
		if resp != nil {
			resp.Body.Close()
		}
		return nil, ctx.Err()
	case err == nil && resp.StatusCode != http.StatusNotFound:
		return resp, nil
	case err != nil && !retryable(req, err):
		return nil, err
	}

	if resp != nil {
		resp.Body.Close()
	}
	r.logger.Debug("Endpoint stale, re-resolving", "resource", resource, "error", err)
	if ierr := r.cache.InvalidateEndpoint(resource); ierr != nil {
		r.logger.Warn("Failed to invalidate endpoint", "resource", resource, "error", ierr)
	}

	_, resp, err = r.attempt(ctx, resource, build)
	return resp, err
}

// attempt returns the request it sent, or nil when resolving or building failed.
func (r *Resolver) attempt(ctx context.Context, resource string, build func(url string) (*http.Request, error)) (*http.Request, *http.Response, error) {
	url, err := r.Resolve(ctx, resource)
	if err != nil {
		return nil, nil, err
	}
	req, err := build(url)
	if err != nil {
		return nil, nil, err
	}
	req = req.WithContext(ctx)
	resp, err := r.client.Do(req)
	return req, resp, err
}

func retryable(req *http.Request, err error) bool {
	if req == nil {
		return false
	}
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
