package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
	"github.com/kalusugan-health/condition-screening/internal/domain/providers"
	"github.com/kalusugan-health/condition-screening/internal/domain/repositories"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/observability"
	apperrors "github.com/kalusugan-health/condition-screening/pkg/errors"
)

// EntityService mediates between the local entity cache and the remote
// ICD-11 service. Cached payloads are always preferred; a stale payload is
// still served, with a refresh attempted opportunistically through the gate.
type EntityService struct {
	repo           repositories.EntityRepository
	terminology    providers.TerminologyProvider
	gate           *RemoteGate
	staleThreshold time.Duration
	logger         zerolog.Logger
}

// NewEntityService creates an entity service
func NewEntityService(repo repositories.EntityRepository, terminology providers.TerminologyProvider, gate *RemoteGate, staleThreshold time.Duration) *EntityService {
	if staleThreshold <= 0 {
		staleThreshold = 7 * 24 * time.Hour
	}
	return &EntityService{
		repo:           repo,
		terminology:    terminology,
		gate:           gate,
		staleThreshold: staleThreshold,
		logger:         observability.GetLogger().With().Str("component", "entity_service").Logger(),
	}
}

// GetEntity returns a cached entity, refreshing it through the gate when
// stale. A stale payload is still returned if the refresh cannot happen.
func (s *EntityService) GetEntity(ctx context.Context, entityID string) (*entities.ICDEntity, error) {
	cached, err := s.repo.Get(ctx, entityID)
	if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return nil, err
	}

	if cached != nil && !cached.Stale(s.staleThreshold, time.Now()) {
		return cached, nil
	}

	if refreshed := s.fetchAndStore(ctx, entityID); refreshed != nil {
		return refreshed, nil
	}

	if cached != nil {
		return cached, nil
	}
	return nil, apperrors.NewNotFoundError("entity not cached and remote unavailable")
}

// fetchAndStore pulls one entity through the gate. Any failure returns nil;
// callers fall back to whatever they already have.
func (s *EntityService) fetchAndStore(ctx context.Context, entityID string) *entities.ICDEntity {
	done, ok := s.gate.Allow()
	if !ok {
		return nil
	}

	payload, err := s.terminology.FetchEntity(ctx, entityID)
	if err != nil {
		done(false)
		s.logger.Debug().Err(err).Str("entity_id", entityID).Msg("Remote entity fetch failed")
		return nil
	}
	done(true)

	if err := s.repo.Put(ctx, entityID, payload); err != nil {
		s.logger.Warn().Err(err).Str("entity_id", entityID).Msg("Failed to store refreshed entity")
	}

	return &entities.ICDEntity{
		EntityID:        entityID,
		Payload:         payload,
		LastRefreshedAt: time.Now().UTC(),
		Active:          true,
	}
}

// RefreshStale refreshes up to limit stale entities, stopping early when the
// gate closes. Returns how many entities were refreshed.
func (s *EntityService) RefreshStale(ctx context.Context, limit int) (int, error) {
	cutoff := time.Now().Add(-s.staleThreshold)
	stale, err := s.repo.ListStale(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, entity := range stale {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		if !s.gate.Available() {
			s.logger.Info().Int("refreshed", refreshed).Int("remaining", len(stale)-refreshed).
				Msg("Remote gate closed mid-refresh, stopping")
			break
		}
		if s.fetchAndStore(ctx, entity.EntityID) != nil {
			refreshed++
		}
	}

	s.logger.Info().Int("stale", len(stale)).Int("refreshed", refreshed).Msg("Stale entity refresh complete")
	return refreshed, nil
}

// CleanupInactive removes inactive entities older than the retention window.
func (s *EntityService) CleanupInactive(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := time.Now().Add(-retention)
	removed, err := s.repo.DeleteInactive(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("Inactive entities cleaned up")
	}
	return removed, nil
}

// CacheStatus summarizes the entity cache and the remote gate for the
// status endpoint.
type CacheStatus struct {
	CachedEntities      int       `json:"cached_entities"`
	LastRefreshedAt     time.Time `json:"last_refreshed_at"`
	RemoteConfigured    bool      `json:"remote_configured"`
	RemoteAvailable     bool      `json:"remote_available"`
	CooldownActive      bool      `json:"cooldown_active"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
}

// Status reports cache and gate health.
func (s *EntityService) Status(ctx context.Context) (*CacheStatus, error) {
	count, lastRefreshed, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &CacheStatus{
		CachedEntities:      count,
		LastRefreshedAt:     lastRefreshed,
		RemoteConfigured:    s.gate.HasCredentials(),
		RemoteAvailable:     s.gate.Available(),
		CooldownActive:      s.gate.CooldownActive(),
		ConsecutiveFailures: s.gate.ConsecutiveFailures(),
	}, nil
}

// EntityPayloadSummary extracts display fields from a raw WHO payload.
func EntityPayloadSummary(entity *entities.ICDEntity) map[string]interface{} {
	summary := map[string]interface{}{
		"entity_id":         entity.EntityID,
		"title":             entity.Title(),
		"last_refreshed_at": entity.LastRefreshedAt,
	}
	if def := entity.Definition(); def != "" {
		summary["definition"] = def
	}
	var full map[string]interface{}
	if err := json.Unmarshal(entity.Payload, &full); err == nil {
		if code, ok := full["code"]; ok {
			summary["code"] = code
		}
	}
	return summary
}
