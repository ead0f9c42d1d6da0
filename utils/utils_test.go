package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "addressbook.db")

	exists, err := FileExists(filePath)
	assert.Nil(t, err)
	assert.False(t, exists)

	require.Nil(t, os.WriteFile(filePath, []byte("data"), 0600))

	exists, err = FileExists(filePath)
	assert.Nil(t, err)
	assert.True(t, exists)
}

func TestCreateDirIfNotExist(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db", "nested")

	assert.Nil(t, CreateDirIfNotExist(dir))
	assert.Nil(t, CreateDirIfNotExist(dir), "Should be fine if the dir already exists")

	info, err := os.Stat(dir)
	require.Nil(t, err)
	assert.True(t, info.IsDir())
}
