package filestorage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	root := t.TempDir()
	ls, err := NewLocalStorage(root, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	url, err := ls.SaveBytes([]byte("png-bytes"), "Banner.PNG", "banners/12")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/banners/12/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	full, err := ls.GetFullPath(url)
	require.NoError(t, err)
	content, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))

	require.NoError(t, ls.DeleteFile(url))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, ls.DeleteFile(url))
}

func TestLocalStorageStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	ls, err := NewLocalStorage(root, "/uploads")
	require.NoError(t, err)

	url, err := ls.SaveBytes([]byte("x"), "a.gif", "../../etc")
	require.NoError(t, err)

	full, err := ls.GetFullPath(url)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(full, filepath.Clean(root)))

	full, err = ls.GetFullPath("/uploads/../../passwd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(full, filepath.Clean(root)))

	_, err = ls.GetFullPath("/uploads")
	assert.Error(t, err)
}
