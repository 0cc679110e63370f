package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
	"github.com/kalusugan-health/condition-screening/pkg/config"
	apperrors "github.com/kalusugan-health/condition-screening/pkg/errors"
)

type fakeEntityRepo struct {
	entities map[string]*entities.ICDEntity
	putCalls int
}

func newFakeEntityRepo() *fakeEntityRepo {
	return &fakeEntityRepo{entities: make(map[string]*entities.ICDEntity)}
}

func (f *fakeEntityRepo) Get(ctx context.Context, entityID string) (*entities.ICDEntity, error) {
	e, ok := f.entities[entityID]
	if !ok {
		return nil, apperrors.NewNotFoundError("entity not found")
	}
	return e, nil
}

func (f *fakeEntityRepo) Put(ctx context.Context, entityID string, payload json.RawMessage) error {
	f.putCalls++
	f.entities[entityID] = &entities.ICDEntity{
		EntityID:        entityID,
		Payload:         payload,
		LastRefreshedAt: time.Now().UTC(),
		Active:          true,
	}
	return nil
}

func (f *fakeEntityRepo) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*entities.ICDEntity, error) {
	var stale []*entities.ICDEntity
	for _, e := range f.entities {
		if e.Active && e.LastRefreshedAt.Before(cutoff) {
			stale = append(stale, e)
		}
		if len(stale) == limit {
			break
		}
	}
	return stale, nil
}

func (f *fakeEntityRepo) DeleteInactive(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0
	for id, e := range f.entities {
		if !e.Active && e.LastRefreshedAt.Before(cutoff) {
			delete(f.entities, id)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeEntityRepo) Count(ctx context.Context) (int, time.Time, error) {
	var last time.Time
	count := 0
	for _, e := range f.entities {
		if e.Active {
			count++
			if e.LastRefreshedAt.After(last) {
				last = e.LastRefreshedAt
			}
		}
	}
	return count, last, nil
}

type fakeTerminology struct {
	payloads map[string]json.RawMessage
	err      error
	calls    int
}

func (f *fakeTerminology) FetchEntity(ctx context.Context, entityID string) (json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	payload, ok := f.payloads[entityID]
	if !ok {
		return nil, apperrors.NewNotFoundError("remote entity not found")
	}
	return payload, nil
}

func (f *fakeTerminology) HasCredentials() bool { return true }

const feverPayload = `{"code":"MD90.0","title":{"@value":"Fever"}}`

func TestGetEntityFreshCacheSkipsRemote(t *testing.T) {
	repo := newFakeEntityRepo()
	repo.entities["123456"] = &entities.ICDEntity{
		EntityID:        "123456",
		Payload:         json.RawMessage(feverPayload),
		LastRefreshedAt: time.Now(),
		Active:          true,
	}
	terminology := &fakeTerminology{}
	svc := NewEntityService(repo, terminology, NewRemoteGate(gateConfig(10)), 7*24*time.Hour)

	got, err := svc.GetEntity(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, "Fever", got.Title())
	assert.Zero(t, terminology.calls)
}

func TestGetEntityMissLoadsRemote(t *testing.T) {
	repo := newFakeEntityRepo()
	terminology := &fakeTerminology{payloads: map[string]json.RawMessage{
		"123456": json.RawMessage(feverPayload),
	}}
	svc := NewEntityService(repo, terminology, NewRemoteGate(gateConfig(10)), 7*24*time.Hour)

	got, err := svc.GetEntity(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, "Fever", got.Title())
	assert.Equal(t, 1, repo.putCalls)
}

func TestGetEntityStaleServedWhenRemoteFails(t *testing.T) {
	repo := newFakeEntityRepo()
	repo.entities["123456"] = &entities.ICDEntity{
		EntityID:        "123456",
		Payload:         json.RawMessage(feverPayload),
		LastRefreshedAt: time.Now().Add(-30 * 24 * time.Hour),
		Active:          true,
	}
	terminology := &fakeTerminology{err: apperrors.NewExternalError("remote down", nil)}
	svc := NewEntityService(repo, terminology, NewRemoteGate(gateConfig(10)), 7*24*time.Hour)

	got, err := svc.GetEntity(context.Background(), "123456")
	require.NoError(t, err, "stale data is still data")
	assert.Equal(t, "Fever", got.Title())
	assert.Equal(t, 1, terminology.calls)
}

func TestGetEntityMissWithGateClosed(t *testing.T) {
	repo := newFakeEntityRepo()
	terminology := &fakeTerminology{}
	gate := NewRemoteGate(&config.ICD11Config{CooldownMinutes: 30, MaxFailures: 10}) // no credentials
	svc := NewEntityService(repo, terminology, gate, 7*24*time.Hour)

	_, err := svc.GetEntity(context.Background(), "123456")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	assert.Zero(t, terminology.calls)
}

func TestRefreshStale(t *testing.T) {
	repo := newFakeEntityRepo()
	repo.entities["111"] = &entities.ICDEntity{
		EntityID: "111", Payload: json.RawMessage(`{}`),
		LastRefreshedAt: time.Now().Add(-10 * 24 * time.Hour), Active: true,
	}
	repo.entities["222"] = &entities.ICDEntity{
		EntityID: "222", Payload: json.RawMessage(`{}`),
		LastRefreshedAt: time.Now(), Active: true,
	}
	terminology := &fakeTerminology{payloads: map[string]json.RawMessage{
		"111": json.RawMessage(feverPayload),
	}}
	svc := NewEntityService(repo, terminology, NewRemoteGate(gateConfig(10)), 7*24*time.Hour)

	refreshed, err := svc.RefreshStale(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)
	assert.Equal(t, 1, terminology.calls, "fresh entities are not refetched")
}

func TestCleanupInactive(t *testing.T) {
	repo := newFakeEntityRepo()
	repo.entities["dead"] = &entities.ICDEntity{
		EntityID: "dead", LastRefreshedAt: time.Now().Add(-90 * 24 * time.Hour), Active: false,
	}
	repo.entities["alive"] = &entities.ICDEntity{
		EntityID: "alive", LastRefreshedAt: time.Now(), Active: true,
	}
	svc := NewEntityService(repo, &fakeTerminology{}, NewRemoteGate(gateConfig(10)), 7*24*time.Hour)

	removed, err := svc.CleanupInactive(context.Background(), 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Contains(t, repo.entities, "alive")
}

func TestEntityStatus(t *testing.T) {
	repo := newFakeEntityRepo()
	repo.entities["111"] = &entities.ICDEntity{
		EntityID: "111", LastRefreshedAt: time.Now(), Active: true,
	}
	svc := NewEntityService(repo, &fakeTerminology{}, NewRemoteGate(gateConfig(10)), 7*24*time.Hour)

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, status.CachedEntities)
	assert.True(t, status.RemoteConfigured)
	assert.True(t, status.RemoteAvailable)
	assert.False(t, status.CooldownActive)
}
