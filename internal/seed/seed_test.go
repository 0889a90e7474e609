package seed

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appModels "github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/pkg/validation"
)

func TestDefaultPasswordsSatisfyRules(t *testing.T) {
	assert.NoError(t, validation.ValidatePassword(DefaultAdminPassword))
	assert.NoError(t, validation.ValidatePassword(DefaultAgencyPassword))
	assert.NoError(t, validation.ValidatePassword("Demo12345"))
}

func TestDefaultTagsSatisfyRules(t *testing.T) {
	for _, tag := range defaultTags {
		assert.Regexp(t, validation.CompiledPatterns.TagName, tag.Name)
	}
}

func TestDemoUser(t *testing.T) {
	faker := gofakeit.New(42)

	for i := 0; i < 50; i++ {
		u := DemoUser(faker, "hash", appModels.RoleStudent)
		assert.Regexp(t, validation.CompiledPatterns.Login, u.Login)
		require.NotNil(t, u.Cell)
		assert.Regexp(t, validation.CompiledPatterns.Phone, *u.Cell)
		assert.Equal(t, []appModels.RoleType{appModels.RoleStudent}, u.Roles)
		assert.True(t, u.IsActive)
	}
}

func TestDemoSite(t *testing.T) {
	faker := gofakeit.New(7)
	const lat, lon = 40.6824, 14.7681

	var points, objects int
	for i := 0; i < 100; i++ {
		s := DemoSite(faker, lat, lon)
		assert.InDelta(t, lat, s.Latitude, 0.05)
		assert.InDelta(t, lon, s.Longitude, 0.05)
		assert.GreaterOrEqual(t, len(s.Name), 2)

		switch s.Kind {
		case appModels.SiteRefreshmentPoint:
			points++
			require.NotNil(t, s.Phone)
			assert.Regexp(t, validation.CompiledPatterns.Phone, *s.Phone)
			assert.Nil(t, s.TicketPrice)
		case appModels.SiteCulturalObject:
			objects++
			require.NotNil(t, s.TicketPrice)
			assert.GreaterOrEqual(t, *s.TicketPrice, 0.0)
			assert.Nil(t, s.Phone)
		default:
			t.Fatalf("unexpected kind %q", s.Kind)
		}
	}
	assert.Positive(t, points)
	assert.Positive(t, objects)
}

func TestDemoDataIsDeterministic(t *testing.T) {
	a := DemoSite(gofakeit.New(99), 0, 0)
	b := DemoSite(gofakeit.New(99), 0, 0)
	assert.Equal(t, a, b)
}
