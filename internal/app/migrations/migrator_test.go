package migrations

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectSortsByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"002_second.sql": {Data: []byte("SELECT 2;")},
		"001_first.sql":  {Data: []byte("SELECT 1;")},
		"README.md":      {Data: []byte("ignored")},
	}

	migrations, err := Collect(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "001", migrations[0].Version)
	assert.Equal(t, "SELECT 1;", migrations[0].SQL)
	assert.Equal(t, "002_second.sql", migrations[1].Name)
}

func TestCollectRejectsBadNames(t *testing.T) {
	_, err := Collect(fstest.MapFS{"init.sql": {Data: []byte("")}})
	assert.Error(t, err)

	_, err = Collect(fstest.MapFS{
		"003_a.sql": {Data: []byte("")},
		"003_b.sql": {Data: []byte("")},
	})
	assert.ErrorContains(t, err, "share version 003")
}

func TestBundledMigrations(t *testing.T) {
	sub, err := fs.Sub(embedded, "sql")
	require.NoError(t, err)

	migrations, err := Collect(sub)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	all := ""
	for _, m := range migrations {
		all += m.SQL
	}
	for _, table := range []string{"users", "absences", "report_cards", "sites", "feedback", "conventions", "generic_preferences", "news"} {
		assert.True(t, strings.Contains(all, "CREATE TABLE IF NOT EXISTS "+table+" "), table)
	}
}
