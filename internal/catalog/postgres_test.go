// internal/catalog/postgres_test.go
package catalog

import (
	"context"
	"errors"
	"testing"

	"yojanamitra/internal/common/logger"
	"yojanamitra/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schemeRows() *sqlmock.Rows {
	return sqlmock.NewRows(schemeColumns)
}

func TestPostgresProvider_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, title, .* FROM schemes ORDER BY position ASC, id ASC`).
		WillReturnRows(schemeRows().
			AddRow("pm-kisan", "PM Kisan", "Income support", "All", `{"income_max": 200000}`,
				"{Aadhaar,\"Land Records\"}", nil, "https://pmkisan.gov.in", nil, "2024-01-10").
			AddRow("broken", "Broken", nil, nil, `{"income_max": "lots"}`, nil, nil, nil, nil, nil))

	p := NewPostgresProvider(db, "", logger.NewTestLogger(t))
	schemes, err := p.List(context.Background())
	require.NoError(t, err)
	require.Len(t, schemes, 2)

	assert.Equal(t, "pm-kisan", schemes[0].ID)
	assert.Equal(t, []string{"Aadhaar", "Land Records"}, schemes[0].RequiredDocs)
	assert.Equal(t, "https://pmkisan.gov.in", schemes[0].OfficialPortalURL)
	require.NotNil(t, schemes[0].Eligibility.IncomeMax)
	assert.Equal(t, 200000.0, *schemes[0].Eligibility.IncomeMax)

	assert.ErrorIs(t, schemes[1].EligibilityErr, models.ErrInvalidEligibility)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProvider_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM schemes WHERE id = \$1`).
		WithArgs("pm-kisan").
		WillReturnRows(schemeRows().
			AddRow("pm-kisan", "PM Kisan", nil, "All", nil, nil, nil, nil, nil, nil))
	mock.ExpectQuery(`SELECT .* FROM schemes WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(schemeRows())

	p := NewPostgresProvider(db, "schemes", logger.NewTestLogger(t))

	s, err := p.Get(context.Background(), "pm-kisan")
	require.NoError(t, err)
	assert.Equal(t, "PM Kisan", s.Title)
	assert.True(t, s.Eligibility.IsEmpty())

	_, err = p.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProvider_Search(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE \(title ILIKE \$1 OR description ILIKE \$2 OR state ILIKE \$3\)`).
		WithArgs("%kisan%", "%kisan%", "%kisan%").
		WillReturnRows(schemeRows().
			AddRow("pm-kisan", "PM Kisan", nil, "All", nil, nil, nil, nil, nil, nil))

	p := NewPostgresProvider(db, "schemes", logger.NewTestLogger(t))
	schemes, err := Search(context.Background(), p, "kisan")
	require.NoError(t, err)
	assert.Len(t, schemes, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProvider_QueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("connection refused"))

	p := NewPostgresProvider(db, "schemes", logger.NewTestLogger(t))
	_, err = p.List(context.Background())
	assert.True(t, IsUnavailable(err))
}

func TestPostgresProvider_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO schemes \(position,id,title`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO schemes`).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	p := NewPostgresProvider(db, "schemes", logger.NewTestLogger(t))
	err = p.Upsert(context.Background(), []models.Scheme{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert scheme b")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProvider_UpsertCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO schemes .* ON CONFLICT \(id\) DO UPDATE`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p := NewPostgresProvider(db, "schemes", logger.NewTestLogger(t))
	require.NoError(t, p.Upsert(context.Background(), []models.Scheme{{ID: "a", Title: "A"}}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
