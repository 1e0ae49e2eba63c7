// Package session persists the command-line client's login state and
// resolved endpoint URLs between runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Profile struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

type Endpoint struct {
	URL        string    `json:"url"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// state is the on-disk document.
type state struct {
	AccessToken          string              `json:"access_token,omitempty"`
	AccessTokenExpiresAt time.Time           `json:"access_token_expires_at,omitempty"`
	RefreshToken         string              `json:"refresh_token,omitempty"`
	Profile              *Profile            `json:"profile,omitempty"`
	Endpoints            map[string]Endpoint `json:"endpoints,omitempty"`
}

// Store is safe for concurrent use. Every mutation is written through to
// disk before it returns. An empty path keeps the state in memory only.
//
// Invalidation rules: Clear drops everything (logout), endpoint entries
// expire after the configured TTL, and SetSession replaces the profile.
type Store struct {
	mu          sync.RWMutex
	path        string
	endpointTTL time.Duration
	state       state
	now         func() time.Time
}

// Open loads path if it exists. A zero endpointTTL never expires endpoints.
func Open(path string, endpointTTL time.Duration) (*Store, error) {
	s := &Store{
		path:        path,
		endpointTTL: endpointTTL,
		now:         time.Now,
	}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.RefreshToken
}

// AccessTokenExpired reports true when there is no token or it has expired.
func (s *Store) AccessTokenExpired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.AccessToken == "" {
		return true
	}
	return !s.state.AccessTokenExpiresAt.IsZero() && !s.now().Before(s.state.AccessTokenExpiresAt)
}

func (s *Store) Profile() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Profile == nil {
		return Profile{}, false
	}
	return *s.state.Profile, true
}

// SetSession records a successful login.
func (s *Store) SetSession(accessToken string, expiresAt time.Time, refreshToken string, profile Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.AccessToken = accessToken
	s.state.AccessTokenExpiresAt = expiresAt
	s.state.RefreshToken = refreshToken
	s.state.Profile = &profile
	return s.saveLocked()
}

// SetAccessToken stores a refreshed access token, keeping everything else.
func (s *Store) SetAccessToken(accessToken string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.AccessToken = accessToken
	s.state.AccessTokenExpiresAt = expiresAt
	return s.saveLocked()
}

// SetProfile replaces the cached profile, e.g. after a status change.
func (s *Store) SetProfile(profile Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Profile = &profile
	return s.saveLocked()
}

// Endpoint returns the cached URL for resource unless it has expired.
func (s *Store) Endpoint(resource string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ep, ok := s.state.Endpoints[resource]
	if !ok || ep.URL == "" {
		return "", false
	}
	if s.endpointTTL > 0 && s.now().Sub(ep.ResolvedAt) >= s.endpointTTL {
		return "", false
	}
	return ep.URL, true
}

func (s *Store) SetEndpoint(resource, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Endpoints == nil {
		s.state.Endpoints = make(map[string]Endpoint)
	}
	s.state.Endpoints[resource] = Endpoint{URL: url, ResolvedAt: s.now().UTC()}
	return s.saveLocked()
}

func (s *Store) InvalidateEndpoint(resource string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Endpoints[resource]; !ok {
		return nil
	}
	delete(s.state.Endpoints, resource)
	return s.saveLocked()
}

// Clear forgets tokens, profile and endpoints.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state{}
	return s.saveLocked()
}

// saveLocked writes to a temp file in the same directory and renames it
// over the target so a crash never leaves a truncated session.
func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temp session: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}
