package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	appModels "github.com/yigit/agora/internal/app/models"
	appRepos "github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/auth"
)

// Default accounts created on first start. Change the passwords after logging in.
const (
	DefaultAdminLogin     = "admin"
	DefaultAdminPassword  = "Admin1234"
	DefaultAgencyLogin    = "agency"
	DefaultAgencyPassword = "Agency1234"
)

var defaultTeachings = []string{"Mathematics", "Italian", "English", "History", "Science", "Physical Education"}

var defaultTags = []appModels.Tag{
	{Name: "museum", Description: "Museums and galleries"},
	{Name: "monument", Description: "Historic monuments"},
	{Name: "church", Description: "Churches and religious buildings"},
	{Name: "panorama", Description: "Viewpoints"},
	{Name: "restaurant", Description: "Restaurants and trattorias"},
	{Name: "bar", Description: "Bars and cafes"},
}

// CreateDefaultData creates the default accounts, teachings and tags if they don't exist.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	repos := appRepos.NewRepositories(dbPool)

	lgr.Info().Msg("Checking/Creating default data (accounts, teachings, tags)...")
	var finalErr error // collects errors without stopping the process

	accounts := []struct {
		login, email, password, first, last string
		role                                appModels.RoleType
	}{
		{DefaultAdminLogin, "admin@agora.local", DefaultAdminPassword, "System", "Administrator", appModels.RoleAdministrator},
		{DefaultAgencyLogin, "agency@agora.local", DefaultAgencyPassword, "Tourist", "Agency", appModels.RoleAgencyOperator},
	}
	for _, a := range accounts {
		exists, err := repos.UserRepository.LoginExists(ctx, a.login)
		if err != nil {
			lgr.Error().Err(err).Str("login", a.login).Msg("Error checking if default account exists")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if exists {
			lgr.Info().Str("login", a.login).Msg("Default account already exists, skipping creation")
			continue
		}

		hash, err := auth.HashPassword(a.password)
		if err != nil {
			finalErr = errors.Join(finalErr, fmt.Errorf("hash password for %s: %w", a.login, err))
			continue
		}
		user := &appModels.User{
			Login:     a.login,
			Email:     a.email,
			Password:  hash,
			FirstName: a.first,
			LastName:  a.last,
			Roles:     []appModels.RoleType{a.role},
			IsActive:  true,
		}
		if err := repos.UserRepository.Create(ctx, user); err != nil {
			lgr.Error().Err(err).Str("login", a.login).Msg("Error creating default account")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		lgr.Info().Int64("userID", user.ID).Str("login", a.login).Msg("Default account created")
	}

	for _, name := range defaultTeachings {
		err := repos.TeachingRepository.Create(ctx, &appModels.Teaching{Name: name})
		if err != nil && !errors.Is(err, apperrors.ErrResourceAlreadyExists) {
			lgr.Error().Err(err).Str("teaching", name).Msg("Error creating default teaching")
			finalErr = errors.Join(finalErr, err)
		}
	}

	for _, tag := range defaultTags {
		tag := tag
		err := repos.TagRepository.Create(ctx, &tag)
		if err != nil && !errors.Is(err, apperrors.ErrResourceAlreadyExists) {
			lgr.Error().Err(err).Str("tag", tag.Name).Msg("Error creating default tag")
			finalErr = errors.Join(finalErr, err)
		}
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

// DemoOptions sizes the generated demo data
type DemoOptions struct {
	Seed     int64
	Sites    int
	Students int
	Teachers int
	// Center of the generated sites
	Latitude  float64
	Longitude float64
}

// DemoSummary counts what CreateDemoData inserted
type DemoSummary struct {
	Sites    int
	Users    int
	Failures int
}

// CreateDemoData fills an empty database with fake sites and school users for local development.
func CreateDemoData(ctx context.Context, dbPool *pgxpool.Pool, opts DemoOptions, lgr zerolog.Logger) (DemoSummary, error) {
	repos := appRepos.NewRepositories(dbPool)
	faker := gofakeit.New(opts.Seed)

	var summary DemoSummary
	var finalErr error

	hash, err := auth.HashPassword("Demo12345")
	if err != nil {
		return summary, fmt.Errorf("hash demo password: %w", err)
	}

	users := make([]*appModels.User, 0, opts.Students+opts.Teachers)
	for i := 0; i < opts.Teachers; i++ {
		users = append(users, DemoUser(faker, hash, appModels.RoleTeacher))
	}
	for i := 0; i < opts.Students; i++ {
		users = append(users, DemoUser(faker, hash, appModels.RoleStudent))
	}
	for _, u := range users {
		if err := repos.UserRepository.Create(ctx, u); err != nil {
			summary.Failures++
			finalErr = errors.Join(finalErr, err)
			continue
		}
		summary.Users++
	}

	for i := 0; i < opts.Sites; i++ {
		site := DemoSite(faker, opts.Latitude, opts.Longitude)
		if err := repos.SiteRepository.Create(ctx, site); err != nil {
			summary.Failures++
			if !errors.Is(err, apperrors.ErrResourceAlreadyExists) {
				finalErr = errors.Join(finalErr, err)
			}
			continue
		}
		summary.Sites++
	}

	lgr.Info().
		Int("sites", summary.Sites).
		Int("users", summary.Users).
		Int("failures", summary.Failures).
		Msg("Demo data generated")
	return summary, finalErr
}

// DemoUser builds an active user holding role with a login that satisfies the login rule
func DemoUser(faker *gofakeit.Faker, passwordHash string, role appModels.RoleType) *appModels.User {
	login := strings.ToLower(faker.LetterN(4) + "." + faker.Numerify("####"))
	cell := faker.Numerify("3#########")
	return &appModels.User{
		Login:     login,
		Email:     login + "@example.com",
		Password:  passwordHash,
		FirstName: faker.FirstName(),
		LastName:  faker.LastName(),
		Cell:      &cell,
		Roles:     []appModels.RoleType{role},
		IsActive:  true,
	}
}

// DemoSite builds a cultural object or refreshment point within roughly 5 km of the center
func DemoSite(faker *gofakeit.Faker, lat, lon float64) *appModels.Site {
	const spread = 0.045

	site := &appModels.Site{
		Name:        faker.Company(),
		Description: faker.Sentence(12),
		City:        faker.City(),
		Street:      faker.Street(),
		Latitude:    lat + faker.Float64Range(-spread, spread),
		Longitude:   lon + faker.Float64Range(-spread, spread),
	}

	if faker.Bool() {
		site.Kind = appModels.SiteRefreshmentPoint
		phone := faker.Numerify("0#########")
		seats := faker.IntRange(10, 200)
		site.Phone = &phone
		site.Seats = &seats
	} else {
		site.Kind = appModels.SiteCulturalObject
		price := faker.Price(0, 25)
		hours := "09:00-19:00"
		site.TicketPrice = &price
		site.OpeningHours = &hours
	}
	return site
}
