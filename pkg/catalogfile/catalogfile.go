// pkg/catalogfile/catalogfile.go
package catalogfile

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"yojanamitra/internal/models"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var ErrUnsupportedLayout = errors.New("catalog must be a JSON array or an object with a schemes list")

func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func Load(path string) (*Document, []EntryError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return Decode(data, FormatFor(path))
}

// Decode parses a catalog. Entries that are not scheme objects or that lack
// an id or title are reported and skipped; entries with undecodable
// eligibility rules are kept and reported.
func Decode(data []byte, format Format) (*Document, []EntryError, error) {
	doc, raws, err := split(data, format)
	if err != nil {
		return nil, nil, err
	}
	schemes, entryErrs := decodeEntries(raws)
	doc.Schemes = schemes
	return doc, entryErrs, nil
}

// RawEntries returns the undecoded scheme entries of a catalog, in file
// order, for schema validation.
func RawEntries(data []byte, format Format) ([]json.RawMessage, error) {
	_, raws, err := split(data, format)
	return raws, err
}

func split(data []byte, format Format) (*Document, []json.RawMessage, error) {
	if format == FormatYAML {
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, nil, err
		}
		data = converted
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return &Document{Schemes: []models.Scheme{}}, nil, nil
	}

	doc := &Document{}
	var raws []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, nil, fmt.Errorf("decode catalog: %w", err)
		}
	case '{':
		var wrapper struct {
			Version     string            `json:"version"`
			LastUpdated string            `json:"lastUpdated"`
			Schemes     []json.RawMessage `json:"schemes"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, nil, fmt.Errorf("decode catalog: %w", err)
		}
		doc.Version, doc.LastUpdated, raws = wrapper.Version, wrapper.LastUpdated, wrapper.Schemes
	default:
		return nil, nil, ErrUnsupportedLayout
	}
	return doc, raws, nil
}

func decodeEntries(raws []json.RawMessage) ([]models.Scheme, []EntryError) {
	schemes := make([]models.Scheme, 0, len(raws))
	var entryErrs []EntryError

	for i, raw := range raws {
		var s models.Scheme
		if err := json.Unmarshal(raw, &s); err != nil {
			entryErrs = append(entryErrs, EntryError{Index: i, Err: err})
			continue
		}
		if !s.Valid() {
			entryErrs = append(entryErrs, EntryError{Index: i, ID: s.ID, Err: errors.New("id and title are required")})
			continue
		}
		if s.EligibilityErr != nil {
			entryErrs = append(entryErrs, EntryError{Index: i, ID: s.ID, Err: s.EligibilityErr})
		}
		schemes = append(schemes, s)
	}
	return schemes, entryErrs
}

func yamlToJSON(data []byte) ([]byte, error) {
	var v interface{}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode yaml catalog: %w", err)
	}
	if v == nil {
		return nil, nil
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("convert yaml catalog: %w", err)
	}
	return out, nil
}

// Encode renders doc in the given format.
func Encode(doc *Document, format Format) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	if format != FormatYAML {
		return append(data, '\n'), nil
	}

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return yaml.Marshal(v)
}

func Save(path string, doc *Document) error {
	data, err := Encode(doc, FormatFor(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadCSV converts a spreadsheet export with a header row into schemes.
// Column names match the JSON field names; eligibility may be given as an
// eligibility or eligibility_json column holding JSON, required_docs as a
// delimited list.
func ReadCSV(r io.Reader) ([]models.Scheme, []EntryError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []models.Scheme{}, nil, nil
		}
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var raws []json.RawMessage
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}

		row := make(map[string]string, len(header))
		empty := true
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
				if strings.TrimSpace(record[i]) != "" {
					empty = false
				}
			}
		}
		if empty {
			continue
		}

		raw, err := json.Marshal(row)
		if err != nil {
			return nil, nil, err
		}
		raws = append(raws, raw)
	}

	schemes, entryErrs := decodeEntries(raws)
	return schemes, entryErrs, nil
}
