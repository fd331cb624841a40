// internal/catalog/static.go
package catalog

import (
	"context"

	"yojanamitra/internal/models"
)

// StaticProvider serves a fixed in-memory catalog.
type StaticProvider struct {
	schemes []models.Scheme
}

func NewStaticProvider(schemes []models.Scheme) *StaticProvider {
	return &StaticProvider{schemes: schemes}
}

func (p *StaticProvider) List(ctx context.Context) ([]models.Scheme, error) {
	out := make([]models.Scheme, len(p.schemes))
	copy(out, p.schemes)
	return out, nil
}

func (p *StaticProvider) Get(ctx context.Context, id string) (*models.Scheme, error) {
	return findByID(p.schemes, id)
}
