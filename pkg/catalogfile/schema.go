// pkg/catalogfile/schema.go
package catalogfile

import (
	"fmt"

	"yojanamitra/internal/models"
)

// Document is the on-disk scheme catalog. A bare JSON array of schemes is
// accepted on read and treated as a document without metadata.
type Document struct {
	Version     string          `json:"version,omitempty"`
	LastUpdated string          `json:"lastUpdated,omitempty"`
	Schemes     []models.Scheme `json:"schemes"`
}

// EntryError describes one catalog entry that could not be used.
type EntryError struct {
	Index int
	ID    string
	Err   error
}

func (e EntryError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("entry %d (%s): %v", e.Index, e.ID, e.Err)
	}
	return fmt.Sprintf("entry %d: %v", e.Index, e.Err)
}

func (e EntryError) Unwrap() error {
	return e.Err
}

// Find returns the scheme with the given id.
func (d *Document) Find(id string) (*models.Scheme, int) {
	for i := range d.Schemes {
		if d.Schemes[i].ID == id {
			return &d.Schemes[i], i
		}
	}
	return nil, -1
}

// Upsert replaces the scheme with the same id or appends it.
func (d *Document) Upsert(s models.Scheme) (replaced bool) {
	if _, i := d.Find(s.ID); i >= 0 {
		d.Schemes[i] = s
		return true
	}
	d.Schemes = append(d.Schemes, s)
	return false
}
