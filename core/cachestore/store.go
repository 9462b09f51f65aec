package cachestore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"roster-workbench/core/errs"

	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"
)

// envelope is the stored form of a cache value.
type envelope struct {
	Value json.RawMessage `json:"value"`
	// ExpiresAt is a unix timestamp in milliseconds; nil never expires.
	ExpiresAt *int64 `json:"expiresAt"`
}

func (e envelope) expired(now time.Time) bool {
	return e.ExpiresAt != nil && now.UnixMilli() >= *e.ExpiresAt
}

// hotEntry is a hot tier copy of an envelope, trusted until the given instant.
type hotEntry struct {
	env   envelope
	until time.Time
}

// Store is the cache store. It is safe for concurrent use.
type Store struct {
	medium Medium
	hot    *ttlcache.Cache[string, hotEntry]
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// New creates a store over medium. A nil logger discards log output.
func New(medium Medium, cfg Config, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		medium: medium,
		cfg:    cfg,
		logger: logger.Named("cachestore"),
		now:    time.Now,
	}
	if cfg.HotCapacity > 0 {
		s.hot = ttlcache.New(
			ttlcache.WithCapacity[string, hotEntry](uint64(cfg.HotCapacity)),
			ttlcache.WithDisableTouchOnHit[string, hotEntry](),
		)
		go s.hot.Start()
	}
	return s
}

// WithClock replaces the store's time source. The clock decides expiry for both the
// medium and the hot tier.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Close stops the hot tier's expiry loop.
func (s *Store) Close() {
	if s.hot != nil {
		s.hot.Stop()
	}
}

// Key builds a key in the store's namespace and version.
func (s *Store) Key(scope, name string) Key {
	return Key{Namespace: s.cfg.Namespace, Version: s.cfg.Version, Scope: scope, Name: name}
}

// DefaultTTL returns the configured default time-to-live.
func (s *Store) DefaultTTL() time.Duration {
	return s.cfg.DefaultTTL()
}

// Get decodes the value stored under key into dst and reports whether it was found.
// Missing keys, corrupt envelopes, expired entries and medium failures are all misses.
// The hot tier answers for at most the configured hot TTL before the medium is reread.
func (s *Store) Get(ctx context.Context, key Key, dst any) bool {
	k := key.String()
	now := s.now()

	if s.hot != nil {
		if item := s.hot.Get(k); item != nil {
			entry := item.Value()
			switch {
			case entry.env.expired(now):
				s.evict(ctx, key)
				return false
			case !now.Before(entry.until):
				s.hot.Delete(k)
			default:
				if err := json.Unmarshal(entry.env.Value, dst); err == nil {
					return true
				}
				s.hot.Delete(k)
			}
		}
	}

	data, err := s.medium.Read(ctx, k)
	if errors.Is(err, ErrNotFound) {
		return s.getLegacy(ctx, key, dst)
	}
	if err != nil {
		s.logger.Debug("Cache read failed", zap.String("key", k), zap.Error(err))
		return false
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Value == nil {
		s.logger.Debug("Cache entry ignored", zap.String("key", k), zap.Error(errs.ErrCacheCorrupt))
		return false
	}
	if env.expired(now) {
		s.evict(ctx, key)
		return false
	}
	if err := json.Unmarshal(env.Value, dst); err != nil {
		s.logger.Debug("Cache value ignored", zap.String("key", k), zap.Error(errs.ErrCacheCorrupt))
		return false
	}

	s.remember(k, env, now)
	return true
}

// getLegacy reads the old unprefixed scheme, where values were stored bare. A hit is
// migrated: the value moves under the current key with the default TTL and the legacy
// key is removed, so it is served at most once.
func (s *Store) getLegacy(ctx context.Context, key Key, dst any) bool {
	if !s.cfg.LegacyFallback {
		return false
	}
	for _, lk := range key.legacyKeys() {
		data, err := s.medium.Read(ctx, lk)
		if err != nil {
			continue
		}
		if err := json.Unmarshal(data, dst); err != nil {
			s.logger.Debug("Legacy cache value ignored", zap.String("key", lk), zap.Error(errs.ErrCacheCorrupt))
			continue
		}
		s.logger.Debug("Legacy cache hit", zap.String("key", lk))
		s.Set(ctx, key, json.RawMessage(data), s.cfg.DefaultTTL())
		s.dropLegacy(ctx, key)
		return true
	}
	return false
}

// Set stores value under key. A ttl of zero or less stores an entry that never expires.
// Failures are logged and swallowed.
func (s *Store) Set(ctx context.Context, key Key, value any, ttl time.Duration) {
	k := key.String()

	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("Cache value not serializable", zap.String("key", k), zap.Error(err))
		return
	}

	now := s.now()
	env := envelope{Value: raw}
	if ttl > 0 {
		exp := now.Add(ttl).UnixMilli()
		env.ExpiresAt = &exp
	}

	data, err := json.Marshal(env)
	if err != nil {
		s.logger.Warn("Cache envelope not serializable", zap.String("key", k), zap.Error(err))
		return
	}
	if err := s.medium.Write(ctx, k, data); err != nil {
		s.logger.Warn("Cache write failed", zap.String("key", k), zap.Error(err))
	}
	s.remember(k, env, now)
}

// Invalidate removes the entry under key, and its legacy twins, unconditionally.
func (s *Store) Invalidate(ctx context.Context, key Key) {
	s.evict(ctx, key)
}

// ResetScope removes every entry of one owner scope under the current namespace and
// version. Scopes that extend scope with ":" (a resource chain) are removed too, as
// are the legacy keys of a non-empty scope. Hot tiers of other processes keep serving
// until their hot TTL lapses.
func (s *Store) ResetScope(ctx context.Context, scope string) (int, error) {
	prefix := s.Key(scope, "").scopePrefix()

	if s.hot != nil {
		for _, k := range s.hot.Keys() {
			if strings.HasPrefix(k, prefix) {
				s.hot.Delete(k)
			}
		}
	}

	n, err := s.medium.DeletePrefix(ctx, prefix)
	if err != nil {
		return n, err
	}
	if s.cfg.LegacyFallback && scope != "" {
		legacy, err := s.medium.DeleteMatching(ctx, s.cfg.Namespace+keySeparator, func(k string) bool {
			return legacyOwnedBy(k, scope)
		})
		n += legacy
		if err != nil {
			return n, err
		}
	}
	s.logger.Info("Cache scope reset", zap.String("scope", scope), zap.Int("removed", n))
	return n, nil
}

func (s *Store) evict(ctx context.Context, key Key) {
	k := key.String()
	if s.hot != nil {
		s.hot.Delete(k)
	}
	if err := s.medium.Delete(ctx, k); err != nil {
		s.logger.Debug("Cache eviction failed", zap.String("key", k), zap.Error(err))
	}
	s.dropLegacy(ctx, key)
}

func (s *Store) dropLegacy(ctx context.Context, key Key) {
	if !s.cfg.LegacyFallback {
		return
	}
	for _, lk := range key.legacyKeys() {
		if err := s.medium.Delete(ctx, lk); err != nil {
			s.logger.Debug("Legacy cache eviction failed", zap.String("key", lk), zap.Error(err))
		}
	}
}

// remember copies an envelope into the hot tier for the rest of its lifetime, capped
// at the hot TTL.
func (s *Store) remember(k string, env envelope, now time.Time) {
	if s.hot == nil {
		return
	}
	ttl := s.cfg.HotTTL()
	if env.ExpiresAt != nil {
		ttl = min(ttl, time.UnixMilli(*env.ExpiresAt).Sub(now))
		if ttl <= 0 {
			return
		}
	}
	s.hot.Set(k, hotEntry{env: env, until: now.Add(ttl)}, ttl)
}
