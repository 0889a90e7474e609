package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPageOffsetLimit(t *testing.T) {
	p := Page{Number: 3, Size: 20}
	assert.Equal(t, uint64(40), p.Offset())
	assert.Equal(t, 20, p.Limit())

	oversized := Page{Number: 0, Size: 1000}
	assert.Equal(t, uint64(0), oversized.Offset())
	assert.Equal(t, DefaultPageSize, oversized.Limit())

	var zero Page
	assert.Equal(t, uint64(0), zero.Offset())
	assert.Equal(t, DefaultPageSize, zero.Limit())
}

func TestPageInfo(t *testing.T) {
	info := Page{Number: 2, Size: 10}.Info(25)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, int64(25), info.TotalItems)

	exact := Page{Number: 1, Size: 5}.Info(10)
	assert.Equal(t, 2, exact.TotalPages)

	empty := Page{Number: 4, Size: 10}.Info(0)
	assert.Equal(t, 1, empty.TotalPages)
	assert.Equal(t, 1, empty.CurrentPage)
}

func TestPageFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		query string
		want  Page
	}{
		{name: "explicit values", query: "page=3&size=50", want: Page{Number: 3, Size: 50}},
		{name: "invalid values fall back", query: "page=-1&size=abc", want: Page{Number: 1, Size: DefaultPageSize}},
		{name: "oversized page size", query: "size=101", want: Page{Number: 1, Size: DefaultPageSize}},
		{name: "largest page size", query: "page=2&size=100", want: Page{Number: 2, Size: MaxPageSize}},
		{name: "no query", query: "", want: Page{Number: 1, Size: DefaultPageSize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/?"+tt.query, nil)
			assert.Equal(t, tt.want, PageFromQuery(c))
		})
	}
}

func TestParseIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "id", Value: "42"}, {Key: "bad", Value: "x"}, {Key: "neg", Value: "-3"}}

	id, ok := ParseIDParam(c, "id")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = ParseIDParam(c, "bad")
	assert.False(t, ok)
	_, ok = ParseIDParam(c, "neg")
	assert.False(t, ok)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 2*time.Minute, ParseDuration("2m", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("soon", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("  ", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("-5s", time.Hour))
	assert.Equal(t, time.Duration(0), ParseDuration("0s", time.Hour))
}
