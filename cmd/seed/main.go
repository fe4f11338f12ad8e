// cmd/seed/main.go
// Fills a development database with fake members, instructors and gyms
// around a center point

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jaswdr/faker"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/imadgeboyega/fitbuddy-backend/internal/auth"
	"github.com/imadgeboyega/fitbuddy-backend/internal/common/database"
	"github.com/imadgeboyega/fitbuddy-backend/internal/common/geo"
	"github.com/imadgeboyega/fitbuddy-backend/internal/common/logging"
	"github.com/imadgeboyega/fitbuddy-backend/internal/config"
	"github.com/imadgeboyega/fitbuddy-backend/internal/gym"
	"github.com/imadgeboyega/fitbuddy-backend/internal/profile"
)

const seedPassword = "password123"

var (
	goals     = []string{"weight_loss", "muscle_gain", "endurance", "strength", "flexibility", "toning", "general_fitness"}
	workouts  = []string{"cardio", "weight_lifting", "yoga", "pilates", "crossfit", "functional", "hiit", "swimming", "running", "cycling"}
	genders   = []string{"male", "female"}
	days      = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	startings = []string{"06:00", "07:00", "12:00", "17:00", "18:00", "19:00"}
	amenities = []string{"free_weights", "cardio_equipment", "pool", "sauna", "group_classes", "personal_training", "showers", "parking", "24_hour_access"}
)

type seeder struct {
	fake     faker.Faker
	users    auth.Repository
	profiles profile.Repository
	gyms     gym.Repository
	center   geo.Point
	spreadKm float64
	hash     string
	logger   *slog.Logger
}

func main() {
	users := flag.Int("users", 50, "number of members to create")
	instructors := flag.Int("instructors", 10, "number of instructors to create")
	gyms := flag.Int("gyms", 20, "number of gyms to create")
	lng := flag.Float64("lng", 3.3792, "center longitude")
	lat := flag.Float64("lat", 6.5244, "center latitude")
	spread := flag.Float64("spread", 15, "max distance from center in km")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.New(cfg.Environment)

	if err := run(cfg, logger, *users, *instructors, *gyms, geo.NewPoint(*lng, *lat), *spread); err != nil {
		logger.Error("seed failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, users, instructors, gyms int, center geo.Point, spreadKm float64) error {
	ctx := context.Background()

	db, err := database.NewPostgresDBFromURL(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := database.RunMigrations(db.DB); err != nil {
		return err
	}

	hash, err := auth.HashPassword(seedPassword, cfg.BCryptCost)
	if err != nil {
		return err
	}

	s := newSeeder(db, center, spreadKm, hash, logger)

	for i := 0; i < users; i++ {
		if err := s.createUser(ctx, profile.UserTypeUser); err != nil {
			return err
		}
	}
	for i := 0; i < instructors; i++ {
		if err := s.createUser(ctx, profile.UserTypeInstructor); err != nil {
			return err
		}
	}
	for i := 0; i < gyms; i++ {
		if err := s.createGym(ctx); err != nil {
			return err
		}
	}

	logger.Info("seed complete",
		slog.Int("users", users),
		slog.Int("instructors", instructors),
		slog.Int("gyms", gyms),
		slog.String("password", seedPassword))
	return nil
}

func newSeeder(db *sqlx.DB, center geo.Point, spreadKm float64, hash string, logger *slog.Logger) *seeder {
	return &seeder{
		fake:     faker.New(),
		users:    auth.NewPostgresRepository(db),
		profiles: profile.NewPostgresRepository(db),
		gyms:     gym.NewPostgresRepository(db),
		center:   center,
		spreadKm: spreadKm,
		hash:     hash,
		logger:   logger,
	}
}

func (s *seeder) createUser(ctx context.Context, userType string) error {
	first, last := s.fake.Person().FirstName(), s.fake.Person().LastName()
	u := &auth.User{
		ID:            uuid.NewString(),
		Email:         fmt.Sprintf("%s.%s.%s@fitbuddy.test", strings.ToLower(first), strings.ToLower(last), uuid.NewString()[:6]),
		Name:          first + " " + last,
		PasswordHash:  s.hash,
		UserType:      userType,
		IsActive:      true,
		AccountStatus: profile.AccountStatusActive,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return err
	}

	age := s.fake.IntBetween(18, 60)
	p := &profile.Profile{
		ID:                u.ID,
		Name:              u.Name,
		Bio:               s.fake.Lorem().Sentence(8),
		Age:               &age,
		Gender:            s.fake.RandomStringElement(genders),
		Location:          profile.Location{Coordinates: s.randomPoint(), Address: s.fake.Address().City()},
		FitnessLevel:      s.fake.RandomStringElement(profile.FitnessLevels),
		FitnessGoals:      s.pick(goals, 1, 3),
		PreferredWorkouts: s.pick(workouts, 1, 4),
		Availability:      s.availability(),
		PreferredGender:   profile.PreferredGenderAny,
	}
	p.IsProfileComplete = profile.Evaluate(p).IsComplete

	return s.profiles.Save(ctx, p)
}

func (s *seeder) createGym(ctx context.Context) error {
	phone := s.fake.Phone().E164Number()
	g := &gym.Gym{
		ID:          uuid.NewString(),
		Name:        s.fake.Company().Name() + " Fitness",
		Address:     s.fake.Address().StreetAddress(),
		City:        s.fake.Address().City(),
		Coordinates: s.randomPoint(),
		Phone:       &phone,
		Description: s.fake.Lorem().Sentence(12),
		Amenities:   s.pick(amenities, 2, 6),
		BusinessHours: gym.Schedule{
			{Day: "monday", Open: "06:00", Close: "22:00"},
			{Day: "saturday", Open: "08:00", Close: "20:00"},
			{Day: "sunday", IsClosed: true},
		},
		IsVerified: s.fake.IntBetween(0, 1) == 1,
		IsActive:   true,
	}
	return s.gyms.Create(ctx, g)
}

// randomPoint returns a point within spreadKm of the center
func (s *seeder) randomPoint() geo.Point {
	box := geo.BoundingBoxAround(s.center, s.spreadKm)
	for {
		p := geo.NewPoint(
			box.MinLng+(box.MaxLng-box.MinLng)*s.unit(),
			box.MinLat+(box.MaxLat-box.MinLat)*s.unit(),
		)
		if geo.DistanceKm(s.center, p) <= s.spreadKm {
			return p
		}
	}
}

func (s *seeder) unit() float64 {
	return float64(s.fake.IntBetween(0, 1_000_000)) / 1_000_000
}

// pick returns between min and max distinct entries of from
func (s *seeder) pick(from []string, min, max int) []string {
	n := s.fake.IntBetween(min, max)
	shuffled := append([]string(nil), from...)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := s.fake.IntBetween(0, i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:n]
}

func (s *seeder) availability() profile.Availability {
	var slots profile.Availability
	for _, day := range s.pick(days, 1, 4) {
		start := s.fake.RandomStringElement(startings)
		hour := int(start[0]-'0')*10 + int(start[1]-'0') + 1
		slots = append(slots, profile.TimeSlot{
			Day:       day,
			StartTime: start,
			EndTime:   fmt.Sprintf("%02d:%s", hour, start[3:]),
		})
	}
	return slots
}
