// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"yojanamitra/internal/common/logger"
	"yojanamitra/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

var schemeColumns = []string{
	"id", "title", "description", "state", "eligibility", "required_docs",
	"source_url", "official_portal_url", "application_url", "last_reviewed",
}

// PostgresProvider reads schemes from a table ordered by position, id.
type PostgresProvider struct {
	db     *sql.DB
	table  string
	logger logger.Logger
}

func NewPostgresProvider(db *sql.DB, table string, log logger.Logger) *PostgresProvider {
	if table == "" {
		table = "schemes"
	}
	return &PostgresProvider{
		db:     db,
		table:  table,
		logger: log.WithFields(map[string]interface{}{"catalog": "postgres", "table": table}),
	}
}

func (p *PostgresProvider) selectBuilder() squirrel.SelectBuilder {
	return squirrel.Select(schemeColumns...).
		From(p.table).
		OrderBy("position ASC", "id ASC").
		PlaceholderFormat(squirrel.Dollar)
}

func (p *PostgresProvider) List(ctx context.Context) ([]models.Scheme, error) {
	return p.query(ctx, p.selectBuilder())
}

func (p *PostgresProvider) Get(ctx context.Context, id string) (*models.Scheme, error) {
	schemes, err := p.query(ctx, p.selectBuilder().Where(squirrel.Eq{"id": id}).Limit(1))
	if err != nil {
		return nil, err
	}
	if len(schemes) == 0 {
		return nil, ErrNotFound
	}
	return &schemes[0], nil
}

func (p *PostgresProvider) Search(ctx context.Context, query string) ([]models.Scheme, error) {
	pattern := "%" + query + "%"
	return p.query(ctx, p.selectBuilder().Where(squirrel.Or{
		squirrel.ILike{"title": pattern},
		squirrel.ILike{"description": pattern},
		squirrel.ILike{"state": pattern},
	}))
}

func (p *PostgresProvider) query(ctx context.Context, builder squirrel.SelectBuilder) ([]models.Scheme, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build scheme query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrUnavailable, ErrQuery, err)
	}
	defer rows.Close()

	schemes := []models.Scheme{}
	for rows.Next() {
		s, err := scanScheme(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scheme: %w", err)
		}
		if s.EligibilityErr != nil {
			p.logger.Warn("scheme has invalid eligibility", map[string]interface{}{
				"schemeId": s.ID,
				"error":    s.EligibilityErr.Error(),
			})
		}
		schemes = append(schemes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrUnavailable, ErrQuery, err)
	}
	return schemes, nil
}

func scanScheme(rows *sql.Rows) (models.Scheme, error) {
	var (
		s                  models.Scheme
		description, state sql.NullString
		sourceURL          sql.NullString
		portalURL          sql.NullString
		applicationURL     sql.NullString
		lastReviewed       sql.NullString
		eligibility        []byte
		requiredDocs       pq.StringArray
	)

	if err := rows.Scan(
		&s.ID, &s.Title, &description, &state, &eligibility, &requiredDocs,
		&sourceURL, &portalURL, &applicationURL, &lastReviewed,
	); err != nil {
		return s, err
	}

	s.Description = description.String
	s.State = state.String
	s.SourceURL = sourceURL.String
	s.OfficialPortalURL = portalURL.String
	s.ApplicationURL = applicationURL.String
	s.LastReviewed = lastReviewed.String
	if len(requiredDocs) > 0 {
		s.RequiredDocs = []string(requiredDocs)
	}

	rules, err := models.DecodeEligibility(eligibility)
	if err != nil {
		s.EligibilityErr = err
	} else {
		s.Eligibility = rules
	}
	return s, nil
}

// EnsureSchema creates the catalog table when it does not exist.
func (p *PostgresProvider) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id                  TEXT PRIMARY KEY,
			position            INTEGER NOT NULL DEFAULT 0,
			title               TEXT NOT NULL,
			description         TEXT,
			state               TEXT,
			eligibility         JSONB,
			required_docs       TEXT[],
			source_url          TEXT,
			official_portal_url TEXT,
			application_url     TEXT,
			last_reviewed       TEXT
		)`, pq.QuoteIdentifier(p.table)))
	return err
}

// Upsert writes schemes in one transaction, using the slice index as the
// catalog position.
func (p *PostgresProvider) Upsert(ctx context.Context, schemes []models.Scheme) (err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w: %v", ErrUnavailable, ErrConnection, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, s := range schemes {
		eligibility, mErr := json.Marshal(s.Eligibility)
		if mErr != nil {
			return fmt.Errorf("encode eligibility for %s: %w", s.ID, mErr)
		}

		query, args, bErr := squirrel.Insert(p.table).
			Columns(append([]string{"position"}, schemeColumns...)...).
			Values(i, s.ID, s.Title, s.Description, s.State, string(eligibility), pq.Array(s.RequiredDocs),
				s.SourceURL, s.OfficialPortalURL, s.ApplicationURL, s.LastReviewed).
			Suffix(`ON CONFLICT (id) DO UPDATE SET
				position = EXCLUDED.position,
				title = EXCLUDED.title,
				description = EXCLUDED.description,
				state = EXCLUDED.state,
				eligibility = EXCLUDED.eligibility,
				required_docs = EXCLUDED.required_docs,
				source_url = EXCLUDED.source_url,
				official_portal_url = EXCLUDED.official_portal_url,
				application_url = EXCLUDED.application_url,
				last_reviewed = EXCLUDED.last_reviewed`).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if bErr != nil {
			return fmt.Errorf("build upsert: %w", bErr)
		}

		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert scheme %s: %w", s.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog import: %w", err)
	}
	return nil
}
