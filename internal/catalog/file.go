// internal/catalog/file.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"yojanamitra/internal/common/logger"
	"yojanamitra/internal/models"
	"yojanamitra/pkg/catalogfile"
)

// DefaultPaths are tried in order when no explicit path is configured.
var DefaultPaths = []string{
	filepath.Join("data", "schemes.json"),
	filepath.Join("public", "data", "schemes.json"),
}

// FileProvider reads the catalog from disk on every call so edits are
// visible without a restart.
type FileProvider struct {
	paths  []string
	logger logger.Logger
}

func NewFileProvider(path string, log logger.Logger) *FileProvider {
	paths := DefaultPaths
	if path != "" {
		paths = []string{path}
	}
	return &FileProvider{
		paths:  paths,
		logger: log.WithFields(map[string]interface{}{"catalog": "file"}),
	}
}

func (p *FileProvider) List(ctx context.Context) ([]models.Scheme, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := p.resolve()
	if err != nil {
		return nil, err
	}

	doc, entryErrs, err := catalogfile.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}

	for _, e := range entryErrs {
		p.logger.Warn("catalog entry has problems", map[string]interface{}{
			"path":     path,
			"index":    e.Index,
			"schemeId": e.ID,
			"error":    e.Err.Error(),
		})
	}
	return doc.Schemes, nil
}

func (p *FileProvider) Get(ctx context.Context, id string) (*models.Scheme, error) {
	schemes, err := p.List(ctx)
	if err != nil {
		return nil, err
	}
	return findByID(schemes, id)
}

func (p *FileProvider) resolve() (string, error) {
	for _, path := range p.paths {
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
		}
	}
	return "", fmt.Errorf("%w: no catalog file at %v", ErrUnavailable, p.paths)
}
