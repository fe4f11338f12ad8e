// internal/profile/repository.go

package profile

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

// Repository defines the profile repository interface
type Repository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
	UpdateProfileImage(ctx context.Context, id string, url string) error
	AddDeviceToken(ctx context.Context, id string, token string) error
	SetActive(ctx context.Context, id string, active bool, at time.Time) error
	FindCandidates(ctx context.Context, q *CandidateQuery) ([]*Profile, error)
}

// postgresRepository implements Repository using PostgreSQL
type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// profileRow mirrors the users table
type profileRow struct {
	ID                string         `db:"id"`
	Name              string         `db:"name"`
	Email             string         `db:"email"`
	Phone             sql.NullString `db:"phone"`
	UserType          string         `db:"user_type"`
	ProfileImage      sql.NullString `db:"profile_image"`
	Bio               string         `db:"bio"`
	Age               sql.NullInt64  `db:"age"`
	Gender            string         `db:"gender"`
	Longitude         float64        `db:"longitude"`
	Latitude          float64        `db:"latitude"`
	Address           string         `db:"address"`
	FitnessLevel      string         `db:"fitness_level"`
	FitnessGoals      pq.StringArray `db:"fitness_goals"`
	PreferredWorkouts pq.StringArray `db:"preferred_workouts"`
	Availability      Availability   `db:"availability"`
	PreferredGender   string         `db:"preferred_gender"`
	PreferredAgeMin   sql.NullInt64  `db:"preferred_age_min"`
	PreferredAgeMax   sql.NullInt64  `db:"preferred_age_max"`
	IsProfileComplete bool           `db:"is_profile_complete"`
	IsActive          bool           `db:"is_active"`
	AccountStatus     string         `db:"account_status"`
	DeviceTokens      pq.StringArray `db:"device_tokens"`
	DeactivatedAt     sql.NullTime   `db:"deactivated_at"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

const profileColumns = `
	id, name, email, phone, user_type, profile_image, bio, age, gender,
	longitude, latitude, address, fitness_level, fitness_goals, preferred_workouts,
	availability, preferred_gender, preferred_age_min, preferred_age_max,
	is_profile_complete, is_active, account_status, device_tokens, deactivated_at,
	created_at, updated_at`

func (r profileRow) toProfile() *Profile {
	p := &Profile{
		ID:                r.ID,
		Name:              r.Name,
		Email:             r.Email,
		UserType:          r.UserType,
		Bio:               r.Bio,
		Gender:            r.Gender,
		Location:          Location{Coordinates: geo.NewPoint(r.Longitude, r.Latitude), Address: r.Address},
		FitnessLevel:      r.FitnessLevel,
		FitnessGoals:      []string(r.FitnessGoals),
		PreferredWorkouts: []string(r.PreferredWorkouts),
		Availability:      r.Availability,
		PreferredGender:   r.PreferredGender,
		IsProfileComplete: r.IsProfileComplete,
		IsActive:          r.IsActive,
		AccountStatus:     r.AccountStatus,
		DeviceTokens:      []string(r.DeviceTokens),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if r.Phone.Valid {
		p.Phone = &r.Phone.String
	}
	if r.ProfileImage.Valid {
		p.ProfileImage = &r.ProfileImage.String
	}
	p.Age = nullIntPtr(r.Age)
	p.PreferredAgeMin = nullIntPtr(r.PreferredAgeMin)
	p.PreferredAgeMax = nullIntPtr(r.PreferredAgeMax)
	if r.DeactivatedAt.Valid {
		p.DeactivatedAt = &r.DeactivatedAt.Time
	}
	return p
}

// GetByID retrieves a profile by user ID
func (r *postgresRepository) GetByID(ctx context.Context, id string) (*Profile, error) {
	var row profileRow
	query := `SELECT ` + profileColumns + ` FROM users WHERE id = $1`

	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		var pqErr *pq.Error
		if errors.Is(err, sql.ErrNoRows) || (errors.As(err, &pqErr) && pqErr.Code == "22P02") {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return row.toProfile(), nil
}

// Save writes every user-editable column of p
func (r *postgresRepository) Save(ctx context.Context, p *Profile) error {
	query := `
		UPDATE users SET
			name = $2, phone = $3, bio = $4, age = $5, gender = $6,
			longitude = $7, latitude = $8, address = $9,
			fitness_level = $10, fitness_goals = $11, preferred_workouts = $12,
			availability = $13, preferred_gender = $14,
			preferred_age_min = $15, preferred_age_max = $16,
			is_profile_complete = $17, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.Name, p.Phone, p.Bio, p.Age, p.Gender,
		p.Location.Coordinates.Lng, p.Location.Coordinates.Lat, p.Location.Address,
		p.FitnessLevel, pq.Array(p.FitnessGoals), pq.Array(p.PreferredWorkouts),
		p.Availability, p.PreferredGender,
		p.PreferredAgeMin, p.PreferredAgeMax,
		p.IsProfileComplete,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("failed to save profile: %w", err)
	}

	return nil
}

// UpdateProfileImage sets the profile image URL
func (r *postgresRepository) UpdateProfileImage(ctx context.Context, id string, url string) error {
	query := `UPDATE users SET profile_image = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, "update profile image", query, id, url)
}

// AddDeviceToken appends a push token if it is not already registered
func (r *postgresRepository) AddDeviceToken(ctx context.Context, id string, token string) error {
	query := `
		UPDATE users
		SET device_tokens = CASE
				WHEN $2 = ANY(device_tokens) THEN device_tokens
				ELSE array_append(device_tokens, $2)
			END,
			updated_at = NOW()
		WHERE id = $1`
	return r.execOne(ctx, "add device token", query, id, token)
}

// SetActive toggles is_active and records when the account was deactivated
func (r *postgresRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	var deactivatedAt interface{}
	if !active {
		deactivatedAt = at
	}
	query := `UPDATE users SET is_active = $2, deactivated_at = $3, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, "set active", query, id, active, deactivatedAt)
}

// FindCandidates runs the SQL side of a CandidateQuery. The radius predicate is
// a bounding box; callers filter by exact distance afterwards.
func (r *postgresRepository) FindCandidates(ctx context.Context, q *CandidateQuery) ([]*Profile, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(clause string, vals ...interface{}) {
		for _, v := range vals {
			args = append(args, v)
			clause = strings.Replace(clause, "?", fmt.Sprintf("$%d", len(args)), 1)
		}
		where = append(where, clause)
	}

	if q.ExcludeID != "" {
		add("id <> ?", q.ExcludeID)
	}
	if q.UserType != "" {
		add("user_type = ?", q.UserType)
	}
	if q.RequireActive {
		add("is_active = TRUE")
		add("account_status = ?", AccountStatusActive)
	}
	if q.RequireComplete {
		add("is_profile_complete = TRUE")
	}
	if q.Gender != "" {
		add("gender = ?", q.Gender)
	}
	if q.MinAge > 0 {
		add("age >= ?", q.MinAge)
	}
	if q.MaxAge > 0 {
		add("age <= ?", q.MaxAge)
	}
	if q.Near != nil && q.RadiusKm > 0 {
		box := geo.BoundingBoxAround(*q.Near, q.RadiusKm)
		add("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat)
		if !box.WrapsAntimeridian() {
			add("longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng)
		}
		add("NOT (longitude = 0 AND latitude = 0)")
	}
	if q.UnmatchedWith != "" {
		add(`NOT EXISTS (SELECT 1 FROM matches m WHERE (m.initiator_id = ? AND m.receiver_id = users.id) OR (m.receiver_id = ? AND m.initiator_id = users.id))`,
			q.UnmatchedWith, q.UnmatchedWith)
	}

	query := `SELECT ` + profileColumns + ` FROM users`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	// Closest first so the pool limit drops the farthest rows
	if q.Near != nil {
		args = append(args, q.Near.Lat, q.Near.Lng)
		query += fmt.Sprintf(
			" ORDER BY (latitude - $%[1]d) * (latitude - $%[1]d) + (longitude - $%[2]d) * (longitude - $%[2]d), id",
			len(args)-1, len(args))
	} else {
		query += ` ORDER BY id`
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var rows []profileRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find candidates: %w", err)
	}

	profiles := make([]*Profile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, row.toProfile())
	}
	return profiles, nil
}

func (r *postgresRepository) execOne(ctx context.Context, op, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func nullIntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
