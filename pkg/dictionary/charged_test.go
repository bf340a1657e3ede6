package dictionary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "negative_words.txt", "аутсайдер  \nбанкротство\r\n\nпобег\t\n")

	set, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Contains("аутсайдер"))
	assert.True(t, set.Contains("банкротство"))
	assert.True(t, set.Contains("побег"))
	assert.False(t, set.Contains("аутсайдер  "))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "negative_words.txt", "провал\nкатастрофа\n")
	writeFile(t, dir, "positive_words.txt", "сенсация\nпровал\n")
	writeFile(t, dir, "README.md", "не словарь\n")

	set, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Contains("сенсация"))
	assert.False(t, set.Contains("не словарь"))
}

func TestLoadDirWithoutLists(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	assert.Error(t, err)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestNewWordSet(t *testing.T) {
	set := NewWordSet("аутсайдер", "", "банкротство ")
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains("банкротство"))
}

func TestNormalize(t *testing.T) {
	set := NewWordSet("Провал", "провалы", "кризис")

	normalized := set.Normalize(func(w string) string {
		w = strings.ToLower(w)
		return strings.TrimSuffix(w, "ы")
	})

	assert.Equal(t, 2, normalized.Len())
	assert.True(t, normalized.Contains("провал"))
	assert.True(t, normalized.Contains("кризис"))
	assert.Equal(t, 3, set.Len())
}
