package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/xyz-asif/mangrovewatch/internal/features/auth"
	"github.com/xyz-asif/mangrovewatch/internal/features/reports"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/cache"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/logger"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/metrics"
)

// The ranking is cached under a key carrying the current generation.
// Invalidate bumps the generation, so a ranking computed from a report set
// read before the bump is written under a key nobody reads any more.
const (
	generationKey  = "leaderboard:gen"
	rankingKeyBase = "leaderboard:v1:"
)

func rankingKey(generation int64) string {
	return rankingKeyBase + strconv.FormatInt(generation, 10)
}

// ReportSource lists the full report set.
type ReportSource interface {
	All(ctx context.Context) ([]reports.Report, error)
}

// IdentitySource resolves author ids to identities.
type IdentitySource interface {
	ListIdentities(ctx context.Context, ids []string) ([]auth.Identity, error)
}

// Service serves the leaderboard, caching the ranked result until the
// report set changes or ttl passes.
type Service struct {
	reports    ReportSource
	identities IdentitySource
	cache      cache.Cache
	ttl        time.Duration
	metrics    *metrics.Metrics
	log        *logger.Logger
}

// NewService returns a Service. A nil cache disables caching.
func NewService(rs ReportSource, ids IdentitySource, c cache.Cache, ttl time.Duration, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		reports:    rs,
		identities: ids,
		cache:      c,
		ttl:        ttl,
		metrics:    m,
		log:        logger.OrDefault(log).With("leaderboard"),
	}
}

// Ranked returns every ranked contributor.
func (s *Service) Ranked(ctx context.Context) ([]Entry, error) {
	// read before the reports so a concurrent Invalidate moves past it
	generation, cacheable := s.generation(ctx)
	if cacheable {
		if entries, ok := s.cached(ctx, rankingKey(generation)); ok {
			return entries, nil
		}
	}

	all, err := s.reports.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}

	var identities []auth.Identity
	if ids := authorIDs(all); len(ids) > 0 {
		identities, err = s.identities.ListIdentities(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("load identities: %w", err)
		}
	}

	entries := Compute(all, identities)
	if cacheable {
		s.store(ctx, rankingKey(generation), entries)
	}
	return entries, nil
}

// Top returns at most limit leading entries.
func (s *Service) Top(ctx context.Context, limit int) ([]Entry, error) {
	entries, err := s.Ranked(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

// For returns the entry of identity. Its display name is filled in even
// when it has no reports yet.
func (s *Service) For(ctx context.Context, identity *auth.Identity) (Entry, error) {
	entries, err := s.Ranked(ctx)
	if err != nil {
		return Entry{}, err
	}
	e := Find(entries, identity.ID)
	if e.DisplayName == "" {
		e.DisplayName = identity.DisplayName
	}
	return e, nil
}

// Invalidate retires the cached ranking by advancing the generation.
// Cache failures are logged only.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	next, err := s.cache.Incr(ctx, generationKey)
	if err != nil {
		s.log.Warn("invalidate: %v", err)
		return
	}
	if err := s.cache.Delete(ctx, rankingKey(next-1)); err != nil {
		s.log.Warn("drop retired ranking: %v", err)
	}
}

// generation returns the current cache generation. ok is false when the
// cache is disabled or unreadable, and the ranking must not be cached.
func (s *Service) generation(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	data, found, err := s.cache.Get(ctx, generationKey)
	if err != nil {
		s.log.Warn("cache read: %v", err)
		return 0, false
	}
	if !found {
		return 0, true
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		s.log.Warn("unreadable leaderboard generation %q", data)
		return 0, false
	}
	return n, true
}

func (s *Service) cached(ctx context.Context, key string) ([]Entry, bool) {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache read: %v", err)
		return nil, false
	}
	var entries []Entry
	if ok {
		if err := json.Unmarshal(data, &entries); err != nil {
			s.log.Warn("discarding unreadable cached leaderboard: %v", err)
			ok = false
		}
	}
	s.metrics.CacheLookup(ok)
	return entries, ok
}

func (s *Service) store(ctx context.Context, key string, entries []Entry) {
	data, err := json.Marshal(entries)
	if err != nil {
		s.log.Warn("encode leaderboard: %v", err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.log.Warn("cache write: %v", err)
	}
}

func authorIDs(rs []reports.Report) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, r := range rs {
		if _, ok := seen[r.AuthorID]; ok {
			continue
		}
		seen[r.AuthorID] = struct{}{}
		ids = append(ids, r.AuthorID)
	}
	return ids
}
