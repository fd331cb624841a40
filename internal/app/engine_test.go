// internal/app/engine_test.go
package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"yojanamitra/internal/common/config"
	"yojanamitra/internal/common/logger"
	"yojanamitra/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_FileCatalogWithoutExplanations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemes.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "pm-kisan", "title": "PM Kisan", "state": "All", "eligibility": {"income_max": 200000}},
		{"id": "goa-only", "title": "Goa Scheme", "state": "Goa", "eligibility": {"caste": ["ST"]}}
	]`), 0o644))

	cfg := &config.Config{
		Catalog:       config.CatalogConfig{Source: config.CatalogSourceFile, Path: path},
		Explanation:   config.ExplanationConfig{Provider: config.ExplanationProviderNone},
		Observability: config.ObservabilityConfig{ServiceName: "engine-test"},
	}

	ctx := context.Background()
	engine, err := Build(ctx, cfg, "yojanamitra", logger.NewTestLogger(t))
	require.NoError(t, err)
	defer func() { assert.NoError(t, engine.Close(ctx)) }()

	assert.Nil(t, engine.Explainer)
	assert.Nil(t, engine.Catalog.Cache)
	require.NoError(t, engine.CheckCatalog(ctx))

	engine.StartBackground(ctx)

	result, err := engine.Aggregator.Match(ctx, &models.Profile{
		State:        "Kerala",
		IncomeAnnual: models.Float(100000),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalSchemes)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "pm-kisan", result.Results[0].Scheme.ID)
	assert.Equal(t, 50, result.Results[0].Score)

	evaluation, err := engine.Aggregator.Evaluate(ctx, &models.Profile{State: "Goa", Caste: "ST"}, "goa-only")
	require.NoError(t, err)
	assert.Equal(t, "goa-only", evaluation.Scheme.ID)
}

func TestBuild_UnknownCatalogSource(t *testing.T) {
	cfg := &config.Config{Catalog: config.CatalogConfig{Source: "ftp"}}

	_, err := Build(context.Background(), cfg, "yojanamitra", logger.NewNoOpLogger())
	assert.ErrorContains(t, err, "init catalog")
}
