package gym

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/fitbuddy-backend/internal/common/geo"
)

var gymRowColumns = []string{
	"id", "name", "address", "city", "longitude", "latitude", "phone", "website", "description",
	"amenities", "business_hours", "average_rating", "total_reviews", "is_verified", "is_active",
	"created_at", "updated_at",
}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestPostgresGetGym(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM gyms WHERE id = \$1 AND is_active = TRUE`).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows(gymRowColumns).AddRow(
			"g1", "Iron Paradise", "1 Marina", "Lagos", 3.38, 6.45, "+2348000000000", nil, "",
			"{pool,sauna}", []byte(`[{"day":"monday","open":"06:00","close":"22:00","isClosed":false}]`),
			4.5, 12, true, true, now, now,
		))

	g, err := repo.GetByID(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, geo.NewPoint(3.38, 6.45), g.Coordinates)
	assert.Equal(t, []string{"pool", "sauna"}, g.Amenities)
	require.Len(t, g.BusinessHours, 1)
	assert.Equal(t, "22:00", g.BusinessHours[0].Close)
	require.NotNil(t, g.Phone)
	assert.Nil(t, g.Website)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetGymNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM gyms WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrGymNotFound)
}

func TestPostgresGetGymMalformedID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM gyms WHERE id = \$1`).
		WithArgs("abc").
		WillReturnError(&pq.Error{Code: "22P02", Message: "invalid input syntax for type uuid"})

	_, err := repo.GetByID(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrGymNotFound)
}

func TestPostgresFindWithin(t *testing.T) {
	repo, mock := newMockRepo(t)
	center := geo.NewPoint(3.38, 6.52)

	mock.ExpectQuery(`FROM gyms WHERE is_active = TRUE AND latitude BETWEEN \$1 AND \$2 AND longitude BETWEEN \$3 AND \$4 ORDER BY (.+) LIMIT \$7`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), 6.52, 3.38, 40).
		WillReturnRows(sqlmock.NewRows(gymRowColumns))

	gyms, err := repo.FindWithin(context.Background(), center, 10, 40)
	require.NoError(t, err)
	assert.Empty(t, gyms)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSearchEscapesWildcards(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`ILIKE \$1`).
		WithArgs(`%100\%\_fit\_ness%`, 20).
		WillReturnRows(sqlmock.NewRows(gymRowColumns))

	_, err := repo.Search(context.Background(), `100%_fit_ness`, 20)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
