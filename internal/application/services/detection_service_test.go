package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
	"github.com/kalusugan-health/condition-screening/internal/domain/lexicon"
	"github.com/kalusugan-health/condition-screening/internal/domain/providers"
	"github.com/kalusugan-health/condition-screening/pkg/config"
)

type fakeTrendingRepo struct {
	mu         sync.Mutex
	increments map[string]int
	err        error
}

func newFakeTrendingRepo() *fakeTrendingRepo {
	return &fakeTrendingRepo{increments: make(map[string]int)}
}

func (f *fakeTrendingRepo) Increment(ctx context.Context, date time.Time, code string, sourceType entities.SourceType) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.increments[code+"/"+string(sourceType)]++
	return nil
}

func (f *fakeTrendingRepo) TopConditions(ctx context.Context, since time.Time, sourceType entities.SourceType, limit int) ([]*entities.TrendingCounter, error) {
	return nil, nil
}

func newTestDetectionService(trending *fakeTrendingRepo, cacheProvider *memoryCache, detection config.DetectionConfig) *DetectionService {
	lex := lexicon.Default()
	gate := NewRemoteGate(&config.ICD11Config{CooldownMinutes: 30, MaxFailures: 10}) // no credentials

	var cp providers.CacheProvider
	if cacheProvider != nil {
		cp = cacheProvider
	}

	return NewDetectionService(
		NewLexicalDetector(lex, nil),
		NewSemanticDetector(nil, lex),
		NewClassifierDetector(nil, lex, nil, 0.1),
		nil,
		gate,
		trending,
		cp,
		detection,
		nil,
	)
}

func defaultDetectionConfig() config.DetectionConfig {
	return config.DetectionConfig{
		CacheTimeoutSeconds:   86400,
		LocalCacheTimeoutDays: 7,
		TrendingWriteAll:      true,
	}
}

func TestDetectFeverWithVitals(t *testing.T) {
	svc := newTestDetectionService(newFakeTrendingRepo(), nil, defaultDetectionConfig())

	vitals := &entities.VitalSigns{Temperature: "38.2"}
	got, err := svc.Detect(context.Background(), "lagnat at sakit ng ulo", entities.SourceTypeCombined, vitals, DetectOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, got)

	assert.Equal(t, "MD90.0", got[0].Code, "fever outranks headache")
	assert.GreaterOrEqual(t, got[0].Confidence, 0.95)
	assert.LessOrEqual(t, got[0].Confidence, 1.0)
	assert.True(t, got[0].VitalSignsSupported)
	assert.Equal(t, entities.SourceEnsemble, got[0].Source)

	var headache *entities.Detection
	for i := range got {
		if got[i].Code == "MD81" {
			headache = &got[i]
		}
	}
	require.NotNil(t, headache)
	assert.False(t, headache.VitalSignsSupported)
}

func TestDetectAbdominalPainTagalog(t *testing.T) {
	svc := newTestDetectionService(newFakeTrendingRepo(), nil, defaultDetectionConfig())

	got, err := svc.Detect(context.Background(), "masakit ang tiyan ko", entities.SourceTypeAppointment, nil, DetectOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "DA92.0", got[0].Code)
	assert.GreaterOrEqual(t, got[0].Confidence, 0.88)
	assert.LessOrEqual(t, got[0].Confidence, 0.95)
}

func TestDetectEmptyText(t *testing.T) {
	trending := newFakeTrendingRepo()
	svc := newTestDetectionService(trending, nil, defaultDetectionConfig())

	got, err := svc.Detect(context.Background(), "   \t  ", entities.SourceTypeCombined, nil, DetectOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, trending.increments, "empty input writes no counters")
}

func TestDetectNoMatches(t *testing.T) {
	svc := newTestDetectionService(newFakeTrendingRepo(), nil, defaultDetectionConfig())

	got, err := svc.Detect(context.Background(), "ang ganda ng umaga", entities.SourceTypeCombined, nil, DetectOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDetectSingleRune(t *testing.T) {
	svc := newTestDetectionService(newFakeTrendingRepo(), nil, defaultDetectionConfig())

	got, err := svc.Detect(context.Background(), "a", entities.SourceTypeCombined, nil, DetectOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDetectWritesTrendingCounters(t *testing.T) {
	trending := newFakeTrendingRepo()
	svc := newTestDetectionService(trending, nil, defaultDetectionConfig())

	_, err := svc.Detect(context.Background(), "may lagnat ako", entities.SourceTypeHealthRecord, nil, DetectOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, trending.increments["MD90.0/health_record"])
}

func TestDetectTrendingTopOnlyMode(t *testing.T) {
	trending := newFakeTrendingRepo()
	cfg := defaultDetectionConfig()
	cfg.TrendingWriteAll = false
	svc := newTestDetectionService(trending, nil, cfg)

	_, err := svc.Detect(context.Background(), "lagnat at sakit ng ulo", entities.SourceTypeCombined, nil, DetectOptions{})
	require.NoError(t, err)
	assert.Len(t, trending.increments, 1, "only the top detection is counted")
}

func TestDetectTrendingFailureNonFatal(t *testing.T) {
	trending := newFakeTrendingRepo()
	trending.err = assert.AnError
	svc := newTestDetectionService(trending, nil, defaultDetectionConfig())

	got, err := svc.Detect(context.Background(), "may lagnat", entities.SourceTypeCombined, nil, DetectOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}

func TestDetectResultCache(t *testing.T) {
	trending := newFakeTrendingRepo()
	cacheProvider := newMemoryCache()
	svc := newTestDetectionService(trending, cacheProvider, defaultDetectionConfig())

	first, err := svc.Detect(context.Background(), "may lagnat ako", entities.SourceTypeCombined, nil, DetectOptions{})
	require.NoError(t, err)
	second, err := svc.Detect(context.Background(), "may lagnat ako", entities.SourceTypeCombined, nil, DetectOptions{})
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical input inside the cache window is idempotent")
	assert.Equal(t, 1, trending.increments["MD90.0/combined"], "cached hits do not recount trending")
}

func TestDetectCacheKeyVariesWithVitals(t *testing.T) {
	cacheProvider := newMemoryCache()
	svc := newTestDetectionService(newFakeTrendingRepo(), cacheProvider, defaultDetectionConfig())

	plain, err := svc.Detect(context.Background(), "may lagnat ako", entities.SourceTypeCombined, nil, DetectOptions{})
	require.NoError(t, err)
	boosted, err := svc.Detect(context.Background(), "may lagnat ako", entities.SourceTypeCombined, &entities.VitalSigns{Temperature: "39"}, DetectOptions{})
	require.NoError(t, err)

	require.NotEmpty(t, plain)
	require.NotEmpty(t, boosted)
	assert.Greater(t, boosted[0].Confidence, plain[0].Confidence)
}

func TestDetectGateClosedStillReturnsLocalResults(t *testing.T) {
	svc := newTestDetectionService(newFakeTrendingRepo(), nil, defaultDetectionConfig())

	got, err := svc.Detect(context.Background(), "ubo at sipon", entities.SourceTypeCombined, nil, DetectOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, got)
	for _, d := range got {
		assert.NotEqual(t, entities.SourceRemoteEnhanced, d.Source)
	}
}

func TestDetectConcurrent(t *testing.T) {
	svc := newTestDetectionService(newFakeTrendingRepo(), newMemoryCache(), defaultDetectionConfig())

	texts := []string{
		"may lagnat ako", "masakit ang tiyan", "ubo at sipon",
		"hirap huminga", "nahihilo ako", "kinakabahan ako palagi",
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		for _, text := range texts {
			wg.Add(1)
			go func(text string) {
				defer wg.Done()
				_, err := svc.Detect(context.Background(), text, entities.SourceTypeCombined, nil, DetectOptions{})
				assert.NoError(t, err)
			}(text)
		}
	}
	wg.Wait()
}

func TestDetectConcurrentTrendingExactCount(t *testing.T) {
	trending := newFakeTrendingRepo()
	cfg := defaultDetectionConfig()
	cfg.TrendingWriteAll = false // top candidate only, one increment per call
	svc := newTestDetectionService(trending, newMemoryCache(), cfg)

	const calls = 16
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.Detect(context.Background(), "may lagnat ako", entities.SourceTypeCombined, nil, DetectOptions{SkipCache: true})
			assert.NoError(t, err)
			assert.NotEmpty(t, got)
		}()
	}
	wg.Wait()

	trending.mu.Lock()
	defer trending.mu.Unlock()
	assert.Equal(t, calls, trending.increments["MD90.0/"+string(entities.SourceTypeCombined)])
}

func TestDetectCancelledContext(t *testing.T) {
	svc := newTestDetectionService(newFakeTrendingRepo(), nil, defaultDetectionConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Detect(ctx, "may lagnat ako", entities.SourceTypeCombined, nil, DetectOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectOrderingContract(t *testing.T) {
	svc := newTestDetectionService(newFakeTrendingRepo(), nil, defaultDetectionConfig())

	got, err := svc.Detect(context.Background(), "lagnat, ubo, sipon at masakit ang ulo", entities.SourceTypeCombined, nil, DetectOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, got)

	for i := 1; i < len(got); i++ {
		if got[i-1].Confidence == got[i].Confidence {
			assert.Less(t, got[i-1].Code, got[i].Code)
		} else {
			assert.Greater(t, got[i-1].Confidence, got[i].Confidence)
		}
	}
}
