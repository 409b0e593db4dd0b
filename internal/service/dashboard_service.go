package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/tecnoacademia/attendance-api/internal/models"
	appErrors "github.com/tecnoacademia/attendance-api/pkg/errors"
)

const (
	dashboardUpcomingWindow = 7 * 24 * time.Hour
	dashboardUpcomingLimit  = 5
)

type dashboardStore interface {
	Counts(ctx context.Context, instructorID string) (*models.DashboardCounts, error)
	MonthStats(ctx context.Context, instructorID string, monthStart time.Time) (*models.MonthStats, error)
}

type dashboardSessions interface {
	Upcoming(ctx context.Context, instructorID string, from, until time.Time, limit int) ([]models.Session, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type cacheObserver interface {
	CacheHit()
	CacheMiss()
}

// DashboardSnapshot is the aggregate served on the dashboard endpoint.
type DashboardSnapshot struct {
	Counts           models.DashboardCounts `json:"counts"`
	MonthPercentage  float64                `json:"month_percentage"`
	UpcomingSessions []models.Session       `json:"upcoming_sessions"`
}

// DashboardConfig tunes snapshot caching.
type DashboardConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// DashboardService assembles caller-scoped dashboard snapshots, cached per
// caller so repeated loads skip the aggregate queries.
type DashboardService struct {
	store    dashboardStore
	sessions dashboardSessions
	cache    dashboardCache
	metrics  cacheObserver
	config   DashboardConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewDashboardService constructs the dashboard service. A nil cache or
// metrics observer disables the corresponding behavior.
func NewDashboardService(store dashboardStore, sessions dashboardSessions, cache dashboardCache, metrics cacheObserver, config DashboardConfig, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		store:    store,
		sessions: sessions,
		cache:    cache,
		metrics:  metrics,
		config:   config,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Snapshot returns the caller's dashboard, from cache when fresh.
func (s *DashboardService) Snapshot(ctx context.Context, claims *models.JWTClaims) (*DashboardSnapshot, error) {
	scope := ScopeOwner(claims, "")
	key := cacheKey(scope)

	if s.cacheable() {
		var cached DashboardSnapshot
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			if s.metrics != nil {
				s.metrics.CacheHit()
			}
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.CacheMiss()
		}
	}

	snapshot, err := s.build(ctx, scope)
	if err != nil {
		return nil, err
	}

	if s.cacheable() {
		if err := s.cache.Set(ctx, key, snapshot, s.config.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return snapshot, nil
}

func (s *DashboardService) build(ctx context.Context, scope string) (*DashboardSnapshot, error) {
	counts, err := s.store.Counts(ctx, scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load counts")
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	stats, err := s.store.MonthStats(ctx, scope, monthStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load month stats")
	}

	upcoming, err := s.sessions.Upcoming(ctx, scope, now, now.Add(dashboardUpcomingWindow), dashboardUpcomingLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load upcoming sessions")
	}
	if upcoming == nil {
		upcoming = []models.Session{}
	}

	return &DashboardSnapshot{
		Counts:           *counts,
		MonthPercentage:  percentage(stats.Present, stats.Total),
		UpcomingSessions: upcoming,
	}, nil
}

func (s *DashboardService) cacheable() bool {
	return s.config.CacheEnabled && s.cache != nil
}

func cacheKey(scope string) string {
	if scope == "" {
		return "dashboard:all"
	}
	return "dashboard:" + scope
}
