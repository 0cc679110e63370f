package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
	"github.com/kalusugan-health/condition-screening/internal/domain/lexicon"
)

type fakeSearchRepo struct {
	indexed []string
	results []*entities.Mapping
	err     error
}

func (f *fakeSearchRepo) InitSchema(ctx context.Context) error { return nil }

func (f *fakeSearchRepo) Index(ctx context.Context, m *entities.Mapping) error {
	f.indexed = append(f.indexed, m.Code)
	return nil
}

func (f *fakeSearchRepo) Delete(ctx context.Context, id string) error { return nil }

func (f *fakeSearchRepo) Search(ctx context.Context, query string, limit int) ([]*entities.Mapping, error) {
	return f.results, f.err
}

func TestEnsureSeededIsIdempotent(t *testing.T) {
	repo := &fakeMappingRepo{}
	svc := NewMappingService(repo, nil, lexicon.Default())

	require.NoError(t, svc.EnsureSeeded(context.Background()))
	first := len(repo.mappings)
	assert.Equal(t, len(lexicon.Default().Entries()), first)

	require.NoError(t, svc.EnsureSeeded(context.Background()))
	assert.Len(t, repo.mappings, first, "second seeding must not duplicate rows")
}

func TestEnsureSeededPreservesEdits(t *testing.T) {
	repo := &fakeMappingRepo{}
	svc := NewMappingService(repo, nil, lexicon.Default())
	require.NoError(t, svc.EnsureSeeded(context.Background()))

	edited, err := repo.GetByCode(context.Background(), "MD90.0")
	require.NoError(t, err)
	edited.BaseConfidence = 0.5
	require.NoError(t, repo.Upsert(context.Background(), edited))

	require.NoError(t, svc.EnsureSeeded(context.Background()))
	after, err := repo.GetByCode(context.Background(), "MD90.0")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, after.BaseConfidence, 1e-9, "reseeding must not clobber edits")
}

func TestMappingUpsertValidatesCode(t *testing.T) {
	svc := NewMappingService(&fakeMappingRepo{}, nil, lexicon.Default())

	err := svc.Upsert(context.Background(), &entities.Mapping{Code: "not a code"})
	assert.Error(t, err)

	err = svc.Upsert(context.Background(), &entities.Mapping{
		Code: "CA23", Description: "Asthma", Active: true,
	})
	assert.NoError(t, err)
}

func TestMappingUpsertIndexesIntoSearch(t *testing.T) {
	search := &fakeSearchRepo{}
	svc := NewMappingService(&fakeMappingRepo{}, search, lexicon.Default())

	require.NoError(t, svc.Upsert(context.Background(), &entities.Mapping{
		Code: "CA23", Description: "Asthma", Active: true,
	}))
	assert.Contains(t, search.indexed, "CA23")
}

func TestMappingSearchPrefersIndex(t *testing.T) {
	search := &fakeSearchRepo{results: []*entities.Mapping{{Code: "CA23"}}}
	svc := NewMappingService(&fakeMappingRepo{}, search, lexicon.Default())

	got, err := svc.Search(context.Background(), "asthma", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "CA23", got[0].Code)
}

func TestMappingSearchFallsBackToDatabase(t *testing.T) {
	search := &fakeSearchRepo{err: errors.New("typesense down")}
	repo := &fakeMappingRepo{mappings: []*entities.Mapping{{Code: "MD90.0", Active: true}}}
	svc := NewMappingService(repo, search, lexicon.Default())

	got, err := svc.Search(context.Background(), "fever", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "MD90.0", got[0].Code)
}

func TestMappingSearchEmptyQuery(t *testing.T) {
	svc := NewMappingService(&fakeMappingRepo{}, nil, lexicon.Default())
	got, err := svc.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
