// internal/catalog/file_test.go
package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"yojanamitra/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `[
  {"id": "pm-kisan", "title": "PM Kisan", "state": "All", "eligibility": {"income_max": 200000}},
  {"id": "mh-scholarship", "title": "Maharashtra Post Matric Scholarship", "state": "Maharashtra",
   "eligibility": "{\"caste\": [\"SC\", \"ST\"], \"student\": true}", "required_docs": "Aadhaar; Caste Certificate"},
  {"title": "missing id"},
  {"id": "broken", "title": "Broken Rules", "eligibility": "{not json"}
]`

func writeCatalog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileProvider_List(t *testing.T) {
	p := NewFileProvider(writeCatalog(t, "schemes.json", sampleCatalog), logger.NewTestLogger(t))

	schemes, err := p.List(context.Background())
	require.NoError(t, err)
	require.Len(t, schemes, 3)

	assert.Equal(t, "pm-kisan", schemes[0].ID)
	assert.Equal(t, "mh-scholarship", schemes[1].ID)
	assert.Equal(t, []string{"SC", "ST"}, schemes[1].Eligibility.Caste)
	assert.Equal(t, []string{"Aadhaar", "Caste Certificate"}, schemes[1].RequiredDocs)
	assert.Equal(t, "broken", schemes[2].ID)
	assert.Error(t, schemes[2].EligibilityErr)
}

func TestFileProvider_Get(t *testing.T) {
	p := NewFileProvider(writeCatalog(t, "schemes.json", sampleCatalog), logger.NewTestLogger(t))

	s, err := p.Get(context.Background(), "pm-kisan")
	require.NoError(t, err)
	assert.Equal(t, "PM Kisan", s.Title)

	_, err = p.Get(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileProvider_YAML(t *testing.T) {
	path := writeCatalog(t, "schemes.yaml", `
version: "2"
schemes:
  - id: pm-kisan
    title: PM Kisan
    state: All
    eligibility:
      income_max: 200000
`)
	p := NewFileProvider(path, logger.NewTestLogger(t))

	schemes, err := p.List(context.Background())
	require.NoError(t, err)
	require.Len(t, schemes, 1)
	require.NotNil(t, schemes[0].Eligibility.IncomeMax)
	assert.Equal(t, 200000.0, *schemes[0].Eligibility.IncomeMax)
}

func TestFileProvider_MissingFile(t *testing.T) {
	p := NewFileProvider(filepath.Join(t.TempDir(), "nope.json"), logger.NewTestLogger(t))

	_, err := p.List(context.Background())
	assert.True(t, IsUnavailable(err))
}

func TestFileProvider_Malformed(t *testing.T) {
	p := NewFileProvider(writeCatalog(t, "schemes.json", `{"schemes": [`), logger.NewTestLogger(t))

	_, err := p.List(context.Background())
	assert.True(t, IsUnavailable(err))
}

func TestSearch_FallsBackToFilter(t *testing.T) {
	p := NewFileProvider(writeCatalog(t, "schemes.json", sampleCatalog), logger.NewTestLogger(t))

	schemes, err := Search(context.Background(), p, "maharashtra")
	require.NoError(t, err)
	require.Len(t, schemes, 1)
	assert.Equal(t, "mh-scholarship", schemes[0].ID)

	all, err := Search(context.Background(), p, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
