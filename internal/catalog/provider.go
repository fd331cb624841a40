// internal/catalog/provider.go
package catalog

import (
	"context"
	"errors"
	"strings"

	"yojanamitra/internal/models"
)

var (
	ErrNotFound    = errors.New("scheme not found")
	ErrUnavailable = errors.New("scheme catalog unavailable")

	// Backend causes, always wrapped together with ErrUnavailable.
	ErrConnection = errors.New("catalog backend unreachable")
	ErrQuery      = errors.New("catalog query failed")
	ErrSearch     = errors.New("catalog search failed")
)

// Provider is a read-only, ordered scheme catalog.
type Provider interface {
	// List returns every scheme in catalog order.
	List(ctx context.Context) ([]models.Scheme, error)
	// Get returns the scheme with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (*models.Scheme, error)
}

// Searcher is implemented by providers with native text search.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.Scheme, error)
}

// Search runs query through the provider's native search when it has one,
// and otherwise filters the full list by case-insensitive substring over
// title, description and state. An empty query lists everything.
func Search(ctx context.Context, p Provider, query string) ([]models.Scheme, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return p.List(ctx)
	}
	if s, ok := p.(Searcher); ok {
		return s.Search(ctx, query)
	}

	all, err := p.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterSchemes(all, query), nil
}

func FilterSchemes(schemes []models.Scheme, query string) []models.Scheme {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Scheme, 0, len(schemes))
	for _, s := range schemes {
		if strings.Contains(strings.ToLower(s.Title), needle) ||
			strings.Contains(strings.ToLower(s.Description), needle) ||
			strings.Contains(strings.ToLower(s.State), needle) ||
			strings.EqualFold(s.ID, needle) {
			out = append(out, s)
		}
	}
	return out
}

func findByID(schemes []models.Scheme, id string) (*models.Scheme, error) {
	for i := range schemes {
		if schemes[i].ID == id {
			s := schemes[i]
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

// IsUnavailable reports whether err means the backing store could not be read.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
