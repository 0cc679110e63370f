package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kalusugan-health/condition-screening/internal/adapters/cache"
	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
	"github.com/kalusugan-health/condition-screening/internal/domain/providers"
	"github.com/kalusugan-health/condition-screening/internal/infrastructure/observability"
)

const (
	maxInterventions         = 5
	interventionCacheSeconds = 6 * 60 * 60
	interventionCachePrefix  = "interventions:"
)

// InterventionService produces intervention suggestions for mental-health
// detections. The built-in table is authoritative; the external advisory
// service, when reachable through the gate, only refines the wording. Remote
// results are cached by code.
type InterventionService struct {
	evidence providers.EvidenceProvider
	gate     *RemoteGate
	cache    providers.CacheProvider
	logger   zerolog.Logger
}

// NewInterventionService creates an intervention service. evidence, gate and
// cacheProvider may each be nil; the built-in table always works.
func NewInterventionService(evidence providers.EvidenceProvider, gate *RemoteGate, cacheProvider providers.CacheProvider) *InterventionService {
	return &InterventionService{
		evidence: evidence,
		gate:     gate,
		cache:    cacheProvider,
		logger:   observability.GetLogger().With().Str("component", "intervention_service").Logger(),
	}
}

// Suggest returns at most 5 interventions for a condition at a risk level.
func (s *InterventionService) Suggest(ctx context.Context, code string, level entities.RiskLevel) []string {
	if remote := s.fetchRemote(ctx, code); len(remote) > 0 {
		return capInterventions(remote)
	}
	return capInterventions(builtinInterventions(code, level))
}

func (s *InterventionService) fetchRemote(ctx context.Context, code string) []string {
	if s.evidence == nil || s.gate == nil {
		return nil
	}

	cacheKey := interventionCachePrefix + code
	if s.cache != nil {
		var cached []string
		if cache.GetJSON(ctx, s.cache, cacheKey, &cached) {
			return cached
		}
	}

	done, ok := s.gate.Allow()
	if !ok {
		return nil
	}

	interventions, err := s.evidence.Interventions(ctx, code)
	if err != nil {
		done(false)
		s.logger.Debug().Err(err).Str("code", code).Msg("Evidence lookup failed, using built-in interventions")
		return nil
	}
	done(true)

	if len(interventions) > 0 && s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, cacheKey, interventions, interventionCacheSeconds); err != nil {
			s.logger.Debug().Err(err).Msg("Failed to cache interventions")
		}
	}
	return interventions
}

func capInterventions(interventions []string) []string {
	if len(interventions) > maxInterventions {
		return interventions[:maxInterventions]
	}
	return interventions
}

// builtinInterventions is the authoritative fallback table, keyed by ICD-11
// code prefix and risk level.
func builtinInterventions(code string, level entities.RiskLevel) []string {
	var out []string

	switch {
	case strings.HasPrefix(code, "6A72"):
		out = []string{
			"Conduct a structured suicide risk assessment",
			"Create a safety plan with the patient",
			"Refer urgently to psychiatric services",
			"Engage family or a trusted support person",
			"Provide 24/7 crisis hotline numbers",
		}
	case strings.HasPrefix(code, "6A2"):
		out = []string{
			"Refer to a psychiatrist for evaluation and antipsychotic review",
			"Assess for command hallucinations and safety risks",
			"Educate the family on early warning signs of relapse",
		}
	case strings.HasPrefix(code, "6A6"):
		out = []string{
			"Refer for psychiatric evaluation and mood stabiliser review",
			"Track mood episodes with a daily log",
			"Review sleep hygiene; disrupted sleep precedes episodes",
		}
	case strings.HasPrefix(code, "6A7"):
		out = []string{
			"Offer structured psychotherapy (CBT or behavioural activation)",
			"Encourage regular physical activity and routine",
			"Screen for suicidal ideation at every follow-up",
		}
	case strings.HasPrefix(code, "6B0"):
		out = []string{
			"Teach breathing and grounding exercises",
			"Offer cognitive behavioural therapy for anxiety",
			"Reduce caffeine and review sleep habits",
		}
	case strings.HasPrefix(code, "6B4"):
		out = []string{
			"Offer trauma-focused psychotherapy",
			"Teach grounding techniques for intrusive memories",
			"Assess current safety if the stressor is ongoing",
		}
	case strings.HasPrefix(code, "6B8"):
		out = []string{
			"Refer to a clinician experienced in eating disorders",
			"Monitor weight and electrolytes",
			"Involve family in meal support where appropriate",
		}
	case strings.HasPrefix(code, "6C4"):
		out = []string{
			"Brief intervention using the FLAGS framework",
			"Refer to substance-use counselling",
			"Screen for co-occurring depression and anxiety",
		}
	case strings.HasPrefix(code, "6A0"):
		out = []string{
			"Refer for developmental assessment",
			"Coordinate with school-based support services",
			"Provide caregiver psychoeducation",
		}
	default:
		out = []string{
			"Refer to a mental health professional for assessment",
			"Provide psychoeducation about the suspected condition",
		}
	}

	switch level {
	case entities.RiskHigh:
		out = append([]string{"Escalate to same-week specialist review"}, out...)
	case entities.RiskLow:
		out = append(out, "Offer self-help materials and a re-screening schedule")
	}

	return out
}

// FormatFollowUp renders a follow-up window for display.
func FormatFollowUp(window entities.FollowUpWindow) string {
	switch window {
	case entities.FollowUpOneWeek:
		return "1 week"
	case entities.FollowUpTwoWeeks:
		return "2 weeks"
	case entities.FollowUpOneMonth:
		return "1 month"
	}
	return fmt.Sprintf("unknown window %q", string(window))
}
