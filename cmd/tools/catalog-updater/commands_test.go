// cmd/tools/catalog-updater/commands_test.go
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"yojanamitra/pkg/catalogfile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddThenValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemes.json")
	var out bytes.Buffer

	err := runAdd([]string{
		"--path", path,
		"--id", "nsp-post-matric",
		"--title", "Post Matric Scholarship",
		"--income-max", "250000",
		"--caste", "SC,ST",
		"--student",
		"--docs", "Aadhaar,Caste Certificate",
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Added scheme: nsp-post-matric")

	out.Reset()
	require.NoError(t, runAdd([]string{"--path", path, "--id", "nsp-post-matric", "--title", "Renamed"}, &out))
	assert.Contains(t, out.String(), "Updated scheme")

	doc, entryErrs, err := catalogfile.Load(path)
	require.NoError(t, err)
	assert.Empty(t, entryErrs)
	require.Len(t, doc.Schemes, 1)
	assert.Equal(t, "Renamed", doc.Schemes[0].Title)
	assert.NotEmpty(t, doc.LastUpdated)

	out.Reset()
	require.NoError(t, runValidate([]string{"--path", path}, &out))
	assert.Contains(t, out.String(), "Catalog is valid: 1 schemes")
}

func TestAdd_RejectsInvalidScheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemes.json")

	err := runAdd([]string{"--path", path, "--id", "x", "--title", "X", "--portal-url", "ftp://nope"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid scheme")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestValidate_ReportsBadEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemes.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "a", "title": "A"},
		{"id": "a", "title": "Again"},
		{"title": "No id"},
		{"id": "b", "title": "B", "eligibility": "{broken"}
	]`), 0o644))

	var out bytes.Buffer
	err := runValidate([]string{"--path", path}, &out)
	assert.ErrorContains(t, err, "3 of 4 entries are invalid")
	assert.Contains(t, out.String(), "duplicate id")
	assert.Contains(t, out.String(), "entry 2")
	assert.Contains(t, out.String(), "entry 3 (b)")
}

func TestImportCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schemes.yaml")
	csvPath := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"id,title,state,eligibility_json,required_docs\n"+
			`pm-kisan,PM Kisan,All,"{""income_max"": 200000}","Aadhaar; Land Records"`+"\n"+
			`,Missing id,Goa,,`+"\n"), 0o644))

	var out bytes.Buffer
	require.NoError(t, runImportCSV([]string{"--path", path, "--csv", csvPath}, &out))
	assert.Contains(t, out.String(), "Imported 1 schemes (1 added, 0 updated, 1 rows reported)")

	doc, _, err := catalogfile.Load(path)
	require.NoError(t, err)
	require.Len(t, doc.Schemes, 1)
	assert.Equal(t, []string{"Aadhaar", "Land Records"}, doc.Schemes[0].RequiredDocs)

	assert.ErrorContains(t, runImportCSV([]string{"--path", path}, &bytes.Buffer{}), "--csv is required")
}
