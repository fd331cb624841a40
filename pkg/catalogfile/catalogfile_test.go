// pkg/catalogfile/catalogfile_test.go
package catalogfile

import (
	"path/filepath"
	"strings"
	"testing"

	"yojanamitra/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Layouts(t *testing.T) {
	doc, errs, err := Decode([]byte(`[{"id":"a","title":"A"}]`), FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Len(t, doc.Schemes, 1)

	doc, _, err = Decode([]byte(`{"version":"3","lastUpdated":"2024-05-01","schemes":[{"id":"a","title":"A"}]}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "3", doc.Version)
	assert.Equal(t, "2024-05-01", doc.LastUpdated)

	doc, _, err = Decode([]byte("  "), FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, doc.Schemes)

	_, _, err = Decode([]byte(`"schemes"`), FormatJSON)
	assert.ErrorIs(t, err, ErrUnsupportedLayout)
}

func TestDecode_EntryErrors(t *testing.T) {
	doc, errs, err := Decode([]byte(`[
		{"id":"a","title":"A"},
		42,
		{"id":"b"},
		{"id":"c","title":"C","eligibility":"{oops"}
	]`), FormatJSON)
	require.NoError(t, err)

	require.Len(t, doc.Schemes, 2)
	assert.Equal(t, "a", doc.Schemes[0].ID)
	assert.Equal(t, "c", doc.Schemes[1].ID)

	require.Len(t, errs, 3)
	assert.Equal(t, 1, errs[0].Index)
	assert.Equal(t, "b", errs[1].ID)
	assert.ErrorIs(t, errs[2], models.ErrInvalidEligibility)
}

func TestSaveAndLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemes.yml")
	doc := &Document{Version: "1", Schemes: []models.Scheme{{
		ID:          "pm-kisan",
		Title:       "PM Kisan",
		State:       "All",
		Eligibility: models.EligibilityRules{IncomeMax: models.Float(200000)},
	}}}
	require.NoError(t, Save(path, doc))

	loaded, errs, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, doc.Schemes, loaded.Schemes)
	assert.Equal(t, "1", loaded.Version)
}

func TestDocument_Upsert(t *testing.T) {
	doc := &Document{}
	assert.False(t, doc.Upsert(models.Scheme{ID: "a", Title: "A"}))
	assert.True(t, doc.Upsert(models.Scheme{ID: "a", Title: "A2"}))
	require.Len(t, doc.Schemes, 1)
	assert.Equal(t, "A2", doc.Schemes[0].Title)

	s, i := doc.Find("missing")
	assert.Nil(t, s)
	assert.Equal(t, -1, i)
}

func TestReadCSV(t *testing.T) {
	input := "\ufeffid,title,state,eligibility_json,required_docs\n" +
		`pm-kisan,PM Kisan,All,"{""income_max"": 200000}","Aadhaar; Land Records"` + "\n" +
		",,,,\n" +
		`broken,Broken,Goa,"{nope",` + "\n" +
		`,No id,Goa,,` + "\n"

	schemes, errs, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, schemes, 2)
	assert.Equal(t, "pm-kisan", schemes[0].ID)
	assert.Equal(t, []string{"Aadhaar", "Land Records"}, schemes[0].RequiredDocs)
	require.NotNil(t, schemes[0].Eligibility.IncomeMax)
	assert.Equal(t, 200000.0, *schemes[0].Eligibility.IncomeMax)
	assert.Error(t, schemes[1].EligibilityErr)
	assert.Len(t, errs, 2)
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFor("a/b.YAML"))
	assert.Equal(t, FormatJSON, FormatFor("a/b.json"))
	assert.Equal(t, FormatJSON, FormatFor("noext"))
}

func TestRawEntries(t *testing.T) {
	raws, err := RawEntries([]byte("schemes:\n  - id: a\n    title: A\n  - 42\n"), FormatYAML)
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.JSONEq(t, `{"id":"a","title":"A"}`, string(raws[0]))
	assert.Equal(t, "42", string(raws[1]))

	raws, err = RawEntries(nil, FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, raws)
}
