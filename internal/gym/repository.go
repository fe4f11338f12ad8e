// internal/gym/repository.go

package gym

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/imadgeboyega/fitbuddy-backend/internal/common/geo"
)

// Repository defines the gym store
type Repository interface {
	Create(ctx context.Context, g *Gym) error
	GetByID(ctx context.Context, id string) (*Gym, error)
	FindWithin(ctx context.Context, center geo.Point, radiusKm float64, limit int) ([]*Gym, error)
	Search(ctx context.Context, term string, limit int) ([]*Gym, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL gym store
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

type gymRow struct {
	ID            string         `db:"id"`
	Name          string         `db:"name"`
	Address       string         `db:"address"`
	City          string         `db:"city"`
	Longitude     float64        `db:"longitude"`
	Latitude      float64        `db:"latitude"`
	Phone         sql.NullString `db:"phone"`
	Website       sql.NullString `db:"website"`
	Description   string         `db:"description"`
	Amenities     pq.StringArray `db:"amenities"`
	BusinessHours Schedule       `db:"business_hours"`
	AverageRating float64        `db:"average_rating"`
	TotalReviews  int            `db:"total_reviews"`
	IsVerified    bool           `db:"is_verified"`
	IsActive      bool           `db:"is_active"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

const gymColumns = `
	id, name, address, city, longitude, latitude, phone, website, description,
	amenities, business_hours, average_rating, total_reviews, is_verified, is_active,
	created_at, updated_at`

func (r gymRow) toGym() *Gym {
	g := &Gym{
		ID:            r.ID,
		Name:          r.Name,
		Address:       r.Address,
		City:          r.City,
		Coordinates:   geo.NewPoint(r.Longitude, r.Latitude),
		Description:   r.Description,
		Amenities:     []string(r.Amenities),
		BusinessHours: r.BusinessHours,
		AverageRating: r.AverageRating,
		TotalReviews:  r.TotalReviews,
		IsVerified:    r.IsVerified,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.Phone.Valid {
		g.Phone = &r.Phone.String
	}
	if r.Website.Valid {
		g.Website = &r.Website.String
	}
	if g.Amenities == nil {
		g.Amenities = []string{}
	}
	return g
}

// Create inserts a gym. Used by the seeder.
func (r *postgresRepository) Create(ctx context.Context, g *Gym) error {
	query := `
		INSERT INTO gyms (
			id, name, address, city, longitude, latitude, phone, website,
			description, amenities, business_hours, is_verified, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		g.ID, g.Name, g.Address, g.City, g.Coordinates.Lng, g.Coordinates.Lat,
		g.Phone, g.Website, g.Description, pq.Array(g.Amenities), g.BusinessHours,
		g.IsVerified, g.IsActive,
	).Scan(&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create gym: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*Gym, error) {
	var row gymRow
	query := `SELECT ` + gymColumns + ` FROM gyms WHERE id = $1 AND is_active = TRUE`

	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		var pqErr *pq.Error
		if errors.Is(err, sql.ErrNoRows) || (errors.As(err, &pqErr) && pqErr.Code == "22P02") {
			return nil, ErrGymNotFound
		}
		return nil, fmt.Errorf("failed to get gym: %w", err)
	}
	return row.toGym(), nil
}

// FindWithin returns active gyms inside the bounding box of the radius,
// closest first. Callers filter by exact distance.
func (r *postgresRepository) FindWithin(ctx context.Context, center geo.Point, radiusKm float64, limit int) ([]*Gym, error) {
	box := geo.BoundingBoxAround(center, radiusKm)

	where := []string{"is_active = TRUE", "latitude BETWEEN $1 AND $2"}
	args := []interface{}{box.MinLat, box.MaxLat}
	if !box.WrapsAntimeridian() {
		where = append(where, "longitude BETWEEN $3 AND $4")
		args = append(args, box.MinLng, box.MaxLng)
	}
	args = append(args, center.Lat, center.Lng, limit)
	n := len(args)

	query := fmt.Sprintf(`SELECT %s FROM gyms WHERE %s
		ORDER BY (latitude - $%[3]d) * (latitude - $%[3]d) + (longitude - $%[4]d) * (longitude - $%[4]d), id
		LIMIT $%[5]d`,
		gymColumns, strings.Join(where, " AND "), n-2, n-1, n)

	return r.selectGyms(ctx, query, args...)
}

// Search matches name or address case-insensitively
func (r *postgresRepository) Search(ctx context.Context, term string, limit int) ([]*Gym, error) {
	query := `SELECT ` + gymColumns + ` FROM gyms
		WHERE is_active = TRUE AND (name ILIKE $1 OR address ILIKE $1)
		ORDER BY name, id
		LIMIT $2`
	return r.selectGyms(ctx, query, "%"+escapeLike(term)+"%", limit)
}

func (r *postgresRepository) selectGyms(ctx context.Context, query string, args ...interface{}) ([]*Gym, error) {
	var rows []gymRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list gyms: %w", err)
	}
	gyms := make([]*Gym, 0, len(rows))
	for _, row := range rows {
		gyms = append(gyms, row.toGym())
	}
	return gyms, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
