// internal/eligibility/aggregator.go
package eligibility

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"yojanamitra/internal/catalog"
	apperrors "yojanamitra/internal/common/errors"
	"yojanamitra/internal/common/logger"
	"yojanamitra/internal/common/metrics"
	"yojanamitra/internal/explain"
	"yojanamitra/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "yojanamitra/eligibility"

type Config struct {
	// TopN is how many ranked schemes are kept before zero scores are dropped.
	TopN int
	// ExplainTop is how many of the kept schemes are explained and returned.
	ExplainTop int
}

var DefaultConfig = Config{TopN: 6, ExplainTop: 3}

// Aggregator turns rule scores into verdicts for one scheme or ranked
// matches across the catalog. A nil explainer is valid and selects the
// deterministic texts.
type Aggregator struct {
	catalog   catalog.Provider
	explainer explain.Service
	single    *Scorer
	batch     *Scorer
	config    Config
	logger    logger.Logger
	tracer    trace.Tracer
}

func NewAggregator(provider catalog.Provider, explainer explain.Service, cfg Config, log logger.Logger) *Aggregator {
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultConfig.TopN
	}
	if cfg.ExplainTop <= 0 {
		cfg.ExplainTop = DefaultConfig.ExplainTop
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Aggregator{
		catalog:   provider,
		explainer: explainer,
		single:    NewScorer(WithDocuments()),
		batch:     NewScorer(),
		config:    cfg,
		logger:    log.WithFields(map[string]interface{}{"component": "eligibility"}),
		tracer:    otel.Tracer(tracerName),
	}
}

// Evaluate loads schemeID from the catalog and evaluates profile against it.
func (a *Aggregator) Evaluate(ctx context.Context, profile *models.Profile, schemeID string) (*models.EvaluationResult, error) {
	if profile == nil {
		return nil, ErrProfileRequired
	}
	schemeID = strings.TrimSpace(schemeID)
	if schemeID == "" {
		return nil, ErrSchemeIDRequired
	}
	if a.catalog == nil {
		return nil, fmt.Errorf("%w: no catalog configured", ErrCatalogUnavailable)
	}

	scheme, err := a.catalog.Get(ctx, schemeID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSchemeNotFound, schemeID)
		}
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return a.EvaluateScheme(ctx, profile, scheme)
}

// EvaluateScheme produces the single-scheme verdict, blending the rule score
// with an optional model score of up to 30 points.
func (a *Aggregator) EvaluateScheme(ctx context.Context, profile *models.Profile, scheme *models.Scheme) (*models.EvaluationResult, error) {
	if profile == nil {
		return nil, ErrProfileRequired
	}
	if scheme == nil {
		return nil, ErrSchemeIDRequired
	}

	start := time.Now()
	ctx, span := a.tracer.Start(ctx, "eligibility.Evaluate", trace.WithAttributes(
		attribute.String("scheme.id", scheme.ID),
	))
	defer span.End()
	defer func() {
		metrics.SchemeMatchDuration.WithLabelValues(metrics.ModeSingle).Observe(time.Since(start).Seconds())
	}()

	rule, err := a.single.Score(profile, scheme)
	if err != nil {
		a.logger.Warn("scheme could not be scored", map[string]interface{}{
			"schemeId": scheme.ID,
			"error":    err.Error(),
		})
		span.RecordError(err)
	}

	var (
		explanation string
		aiScore     float64
		actions     []models.NextAction
	)

	if a.explainer != nil {
		assessment, aErr := a.assess(ctx, profile, scheme, rule)
		if aErr != nil {
			a.logger.Warn("assessment failed, using fallback explanation", map[string]interface{}{
				"schemeId": scheme.ID,
				"code":     explain.ToStandardError(aErr).Code,
				"error":    aErr.Error(),
			})
			metrics.ExplanationFallbacks.WithLabelValues(metrics.ModeSingle, fallbackReason(aErr)).Inc()
			explanation = fallbackExplanation(rule.Reasons, true)
		} else {
			explanation = assessment.Explanation
			aiScore = clamp(assessment.AIScore, 0, explain.MaxAIScore)
			actions = assessment.NextActions
			a.logger.Debug("assessment received", map[string]interface{}{
				"schemeId":      scheme.ID,
				"modelEligible": assessment.Eligible,
				"aiScore":       assessment.AIScore,
			})
		}
	} else {
		metrics.ExplanationFallbacks.WithLabelValues(metrics.ModeSingle, "unconfigured").Inc()
		explanation = fallbackExplanation(rule.Reasons, false)
	}

	total := float64(rule.Score) + aiScore
	confidence := clamp(total/MaxScore, 0, 1)
	eligible := isEligible(rule.Reasons, confidence)

	if len(actions) == 0 {
		actions = deriveNextActions(rule.Reasons)
	} else {
		actions = capActions(actions)
	}
	if strings.TrimSpace(explanation) == "" {
		explanation = defaultExplanation(eligible)
	}

	verdict := models.EligibilityVerdict{
		Eligible:        eligible,
		Confidence:      confidence,
		ConfidenceLevel: verdictLevel(confidence),
		Explanation:     explanation,
		Reasons: models.Reasons{
			Passed:  withSource(rule.Reasons.Passed, scheme.OfficialPortalURL),
			Failed:  rule.Reasons.Failed,
			Missing: rule.Reasons.Missing,
		},
		NextActions:    actions,
		Score:          total,
		RuleBasedScore: rule.Score,
		AIBasedScore:   aiScore,
	}

	outcome := "ineligible"
	if eligible {
		outcome = "eligible"
	}
	metrics.EligibilityEvaluations.WithLabelValues(metrics.ModeSingle, outcome).Inc()
	span.SetAttributes(
		attribute.Bool("eligibility.eligible", eligible),
		attribute.Float64("eligibility.confidence", confidence),
	)

	a.logger.Info("eligibility evaluated", map[string]interface{}{
		"schemeId":   scheme.ID,
		"eligible":   eligible,
		"confidence": confidence,
		"ruleScore":  rule.Score,
		"aiScore":    aiScore,
	})

	return &models.EvaluationResult{
		Result: verdict,
		Scheme: models.SchemeRef{
			ID:                scheme.ID,
			Title:             scheme.Title,
			OfficialPortalURL: scheme.OfficialPortalURL,
		},
	}, nil
}

func (a *Aggregator) assess(ctx context.Context, profile *models.Profile, scheme *models.Scheme, rule models.ScoreResult) (out *explain.Assessment, err error) {
	ctx, span := a.tracer.Start(ctx, "eligibility.Assess")
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", explain.ErrExplanationFailed, r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	out, err = a.explainer.Assess(ctx, &explain.AssessRequest{
		Profile: *profile,
		Scheme:  *scheme,
		Passed:  len(rule.Reasons.Passed),
		Failed:  len(rule.Reasons.Failed),
		Missing: len(rule.Reasons.Missing),
	})
	if err == nil && out == nil {
		err = fmt.Errorf("%w: empty assessment", explain.ErrExplanationFailed)
	}
	return out, err
}

// Match ranks the whole catalog for profile. An unreadable catalog yields an
// empty result with a message rather than an error.
func (a *Aggregator) Match(ctx context.Context, profile *models.Profile) (*models.MatchResult, error) {
	if profile == nil {
		return nil, ErrProfileRequired
	}
	if a.catalog == nil {
		return nil, fmt.Errorf("%w: no catalog configured", ErrCatalogUnavailable)
	}

	schemes, err := a.catalog.List(ctx)
	if err != nil {
		if catalog.IsUnavailable(err) {
			a.logger.Warn("scheme catalog unavailable", map[string]interface{}{"error": err.Error()})
			metrics.EligibilityEvaluations.WithLabelValues(metrics.ModeBatch, "no_catalog").Inc()
			return emptyMatch(0, msgNoSchemes), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return a.MatchSchemes(ctx, profile, schemes)
}

type scoredScheme struct {
	scheme models.Scheme
	result models.ScoreResult
}

// MatchSchemes scores every valid entry, keeps the TopN highest non-zero
// scores in catalog order for ties, and explains the first ExplainTop.
func (a *Aggregator) MatchSchemes(ctx context.Context, profile *models.Profile, schemes []models.Scheme) (*models.MatchResult, error) {
	if profile == nil {
		return nil, ErrProfileRequired
	}

	start := time.Now()
	ctx, span := a.tracer.Start(ctx, "eligibility.Match", trace.WithAttributes(
		attribute.Int("catalog.size", len(schemes)),
	))
	defer span.End()
	defer func() {
		metrics.SchemeMatchDuration.WithLabelValues(metrics.ModeBatch).Observe(time.Since(start).Seconds())
	}()

	if len(schemes) == 0 {
		a.logger.Warn("scheme catalog is empty", nil)
		metrics.EligibilityEvaluations.WithLabelValues(metrics.ModeBatch, "no_catalog").Inc()
		return emptyMatch(0, msgNoSchemes), nil
	}

	scored := make([]scoredScheme, 0, len(schemes))
	for i := range schemes {
		if !schemes[i].Valid() {
			continue
		}
		scored = append(scored, scoredScheme{
			scheme: schemes[i],
			result: a.scoreSafely(profile, &schemes[i]),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].result.Score > scored[j].result.Score
	})
	if len(scored) > a.config.TopN {
		scored = scored[:a.config.TopN]
	}

	relevant := scored[:0:0]
	for _, s := range scored {
		if s.result.Score > 0 {
			relevant = append(relevant, s)
		}
	}

	if len(relevant) == 0 {
		metrics.EligibilityEvaluations.WithLabelValues(metrics.ModeBatch, "no_match").Inc()
		a.logger.Info("no schemes matched", map[string]interface{}{"totalSchemes": len(schemes)})
		return emptyMatch(len(schemes), msgNoMatches), nil
	}

	top := relevant
	if len(top) > a.config.ExplainTop {
		top = top[:a.config.ExplainTop]
	}

	entries := a.explainAll(ctx, profile, top)

	metrics.EligibilityEvaluations.WithLabelValues(metrics.ModeBatch, "matched").Inc()
	span.SetAttributes(attribute.Int("match.matched", len(relevant)))
	a.logger.Info("schemes matched", map[string]interface{}{
		"totalSchemes":   len(schemes),
		"matchedSchemes": len(relevant),
		"returned":       len(entries),
	})

	return &models.MatchResult{
		Results:        entries,
		TotalSchemes:   len(schemes),
		MatchedSchemes: len(relevant),
	}, nil
}

// scoreSafely isolates a single bad catalog entry: errors and panics both
// score zero.
func (a *Aggregator) scoreSafely(profile *models.Profile, scheme *models.Scheme) (result models.ScoreResult) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("scoring panicked", map[string]interface{}{
				"schemeId": scheme.ID,
				"panic":    fmt.Sprint(r),
			})
			result = zeroScore()
		}
	}()

	result, err := a.batch.Score(profile, scheme)
	if err != nil {
		a.logger.Warn("scheme could not be scored", map[string]interface{}{
			"schemeId": scheme.ID,
			"error":    err.Error(),
		})
		return zeroScore()
	}
	return result
}

// explainAll explains every entry concurrently. Each slot is filled by its
// own goroutine, so one failure never affects another entry.
func (a *Aggregator) explainAll(ctx context.Context, profile *models.Profile, top []scoredScheme) []models.MatchEntry {
	entries := make([]models.MatchEntry, len(top))

	if a.explainer == nil {
		for i, s := range top {
			metrics.ExplanationFallbacks.WithLabelValues(metrics.ModeBatch, "unconfigured").Inc()
			entries[i] = a.basicEntry(s)
		}
		return entries
	}

	var wg sync.WaitGroup
	for i := range top {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					a.logger.Error("explanation panicked", map[string]interface{}{
						"schemeId": top[i].scheme.ID,
						"panic":    fmt.Sprint(r),
					})
					metrics.ExplanationFallbacks.WithLabelValues(metrics.ModeBatch, "panic").Inc()
					entries[i] = panicEntry(top[i])
				}
			}()
			entries[i] = a.explainOne(ctx, profile, top[i])
		}(i)
	}
	wg.Wait()

	return entries
}

func (a *Aggregator) explainOne(ctx context.Context, profile *models.Profile, s scoredScheme) models.MatchEntry {
	ctx, span := a.tracer.Start(ctx, "eligibility.Explain", trace.WithAttributes(
		attribute.String("scheme.id", s.scheme.ID),
	))
	defer span.End()

	text, err := a.explainer.Explain(ctx, &explain.ExplainRequest{
		Profile:       *profile,
		Scheme:        s.scheme,
		Score:         s.result.Score,
		Confidence:    s.result.Confidence,
		MissingFields: s.result.MissingFields,
	})
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("%w: empty explanation", explain.ErrExplanationFailed)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.Warn("explanation failed, using fallback", map[string]interface{}{
			"schemeId": s.scheme.ID,
			"code":     explain.ToStandardError(err).Code,
			"error":    err.Error(),
		})
		metrics.ExplanationFallbacks.WithLabelValues(metrics.ModeBatch, fallbackReason(err)).Inc()

		return models.MatchEntry{
			Scheme:          s.scheme,
			Score:           s.result.Score,
			Confidence:      s.result.Confidence,
			ConfidenceLevel: thresholdLevel(s.result.Confidence),
			Explanation:     errorExplanation(profile, &s.scheme),
			MissingFields:   s.result.MissingFields,
			NeedsReview:     s.result.Confidence < 0.5,
		}
	}

	level := explainedLevel(text, s.result.Confidence, len(s.result.MissingFields))
	return models.MatchEntry{
		Scheme:          s.scheme,
		Score:           s.result.Score,
		Confidence:      s.result.Confidence,
		ConfidenceLevel: level,
		Explanation:     text,
		MissingFields:   s.result.MissingFields,
		NeedsReview:     level == models.ConfidenceLow || s.result.Confidence < 0.5,
	}
}

func (a *Aggregator) basicEntry(s scoredScheme) models.MatchEntry {
	return models.MatchEntry{
		Scheme:          s.scheme,
		Score:           s.result.Score,
		Confidence:      s.result.Confidence,
		ConfidenceLevel: thresholdLevel(s.result.Confidence),
		Explanation:     basicExplanation(s.result.Score),
		MissingFields:   s.result.MissingFields,
		NeedsReview:     s.result.Confidence < 0.5,
	}
}

func panicEntry(s scoredScheme) models.MatchEntry {
	return models.MatchEntry{
		Scheme:          s.scheme,
		Score:           s.result.Score,
		Confidence:      s.result.Confidence,
		ConfidenceLevel: models.ConfidenceMedium,
		Explanation:     msgExplainPanic,
		MissingFields:   s.result.MissingFields,
		NeedsReview:     true,
	}
}

func emptyMatch(total int, message string) *models.MatchResult {
	return &models.MatchResult{
		Results:        []models.MatchEntry{},
		TotalSchemes:   total,
		MatchedSchemes: 0,
		Message:        message,
	}
}

func zeroScore() models.ScoreResult {
	return models.ScoreResult{
		MissingFields: []string{},
		Reasons: models.Reasons{
			Passed:  []models.RuleOutcome{},
			Failed:  []models.RuleOutcome{},
			Missing: []models.MissingRequirement{},
		},
	}
}

func fallbackReason(err error) string {
	if explain.ToStandardError(err).Code == apperrors.ErrCodeExplanationTimeout {
		return "timeout"
	}
	return "error"
}
