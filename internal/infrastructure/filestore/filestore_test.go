package filestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndPath(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	path, err := store.Save("a.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.txt"), path)
	assert.Equal(t, path, store.Path("a.txt"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestSaveStripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	// 路径分隔符被剥离，文件始终落在 baseDir 内
	path, err := store.Save("../escape.txt", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.txt"), path)
	assert.Equal(t, filepath.Join(dir, "b.txt"), store.Path("sub/dir/b.txt"))
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	_, err = store.Save("c.txt", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.Remove("c.txt"))
	_, err = os.Stat(filepath.Join(dir, "c.txt"))
	assert.True(t, os.IsNotExist(err))

	// 重复删除是安全的
	require.NoError(t, store.Remove("c.txt"))
}

func TestNewStoreCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
