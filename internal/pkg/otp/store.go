// Package otp issues and verifies one-time email verification codes in Redis.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound        = errors.New("otp: no active code")
	ErrInvalid         = errors.New("otp: code does not match")
	ErrTooManyAttempts = errors.New("otp: too many attempts")
	ErrCooldown        = errors.New("otp: resend cooldown active")
)

type Options struct {
	TTL            time.Duration
	ResendCooldown time.Duration
	MaxAttempts    int
}

type Store struct {
	rdb      redis.Cmdable
	opts     Options
	generate func() (string, error)
}

func NewStore(rdb redis.Cmdable, opts Options) *Store {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	return &Store{rdb: rdb, opts: opts, generate: randomCode}
}

func codeKey(email string) string {
	return "otp:code:" + strings.ToLower(email)
}

func cooldownKey(email string) string {
	return "otp:cooldown:" + strings.ToLower(email)
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Issue creates a new code for email, replacing any previous one.
// It fails with ErrCooldown while the previous code is too recent.
func (s *Store) Issue(ctx context.Context, email string) (string, error) {
	if s.opts.ResendCooldown > 0 {
		ok, err := s.rdb.SetNX(ctx, cooldownKey(email), 1, s.opts.ResendCooldown).Result()
		if err != nil {
			return "", fmt.Errorf("set otp cooldown: %w", err)
		}
		if !ok {
			return "", ErrCooldown
		}
	}

	code, err := s.generate()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	key := codeKey(email)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, "hash", hashCode(code), "attempts", 0)
		pipe.Expire(ctx, key, s.opts.TTL)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}

	return code, nil
}

// verifyScript counts the attempt before comparing so concurrent guesses
// cannot exceed the limit. A match deletes the code in the same step.
// Returns one of the verify* results below.
var verifyScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
local attempts = redis.call("HINCRBY", KEYS[1], "attempts", 1)
local limit = tonumber(ARGV[2])
if attempts > limit then
  return 3
end
if redis.call("HGET", KEYS[1], "hash") == ARGV[1] then
  redis.call("DEL", KEYS[1])
  return 1
end
if attempts >= limit then
  return 3
end
return 2
`)

const (
	verifyNotFound = iota
	verifyMatched
	verifyMismatch
	verifyLocked
)

// Verify checks code against the active code for email. A matching code is consumed.
func (s *Store) Verify(ctx context.Context, email, code string) error {
	result, err := verifyScript.Run(ctx, s.rdb, []string{codeKey(email)}, hashCode(code), s.opts.MaxAttempts).Int()
	if err != nil {
		return fmt.Errorf("verify otp: %w", err)
	}

	switch result {
	case verifyNotFound:
		return ErrNotFound
	case verifyMatched:
		return nil
	case verifyLocked:
		return ErrTooManyAttempts
	default:
		return ErrInvalid
	}
}

// CooldownRemaining reports how long until a new code may be issued.
func (s *Store) CooldownRemaining(ctx context.Context, email string) (time.Duration, error) {
	ttl, err := s.rdb.PTTL(ctx, cooldownKey(email)).Result()
	if err != nil {
		return 0, fmt.Errorf("read otp cooldown: %w", err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (s *Store) TTL() time.Duration {
	return s.opts.TTL
}
