package repositories

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%ross%", likePattern("ross"))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}

func TestExistsQuery(t *testing.T) {
	sql, args, err := existsQuery(psql.Select("1").From("classes").Where(squirrel.Eq{"address_id": int64(3)})).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT EXISTS ( SELECT 1 FROM classes WHERE address_id = $1 LIMIT 1 )", sql)
	assert.Equal(t, []interface{}{int64(3)}, args)
}

func TestLongitudeFilter(t *testing.T) {
	sql, args, err := longitudeFilter(BoundingBox{MinLon: 14.6, MaxLon: 14.9}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(s.longitude >= $1 AND s.longitude <= $2)", psqlPlaceholders(t, sql))
	assert.Equal(t, []interface{}{14.6, 14.9}, args)

	sql, args, err = longitudeFilter(BoundingBox{MinLon: 179.77, MaxLon: -179.87}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(s.longitude >= $1 OR s.longitude <= $2)", psqlPlaceholders(t, sql))
	assert.Equal(t, []interface{}{179.77, -179.87}, args)
}

func psqlPlaceholders(t *testing.T, sql string) string {
	t.Helper()
	out, err := squirrel.Dollar.ReplacePlaceholders(sql)
	require.NoError(t, err)
	return out
}
