package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/jaundice/pkg/analyzer"
	"github.com/xhad/jaundice/pkg/config"
	"github.com/xhad/jaundice/pkg/report"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	dictDir := filepath.Join(dir, "charged_dict")
	require.NoError(t, os.Mkdir(dictDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dictDir, "negative_words.txt"), []byte("аутсайдер\nбанкротство\nпобег\n"), 0644))

	configPath := filepath.Join(dir, "config.yaml")
	configData := fmt.Sprintf(`
dictionaries:
  charged: %q
log:
  level: error
ui:
  color: false
  progress: false
`, dictDir)
	require.NoError(t, os.WriteFile(configPath, []byte(configData), 0644))
	return configPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		scoreFlags.json = false
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestScoreCommandJSON(t *testing.T) {
	page := `<html><body><article class="article"><p>Аутсайдер совершил побег вчера</p></article></body></html>`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/article" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}))
	defer ts.Close()

	out, err := execute(t, "--config", writeTestConfig(t), "score", "--json", ts.URL+"/article", ts.URL+"/missing")
	require.NoError(t, err)

	var items []report.Item
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 2)

	byURL := map[string]report.Item{}
	for _, item := range items {
		byURL[item.URL] = item
	}

	ok := byURL[ts.URL+"/article"]
	assert.Equal(t, "OK", ok.Status)
	require.NotNil(t, ok.Score)
	assert.Equal(t, 50.0, *ok.Score)
	require.NotNil(t, ok.WordCount)
	assert.Equal(t, 4, *ok.WordCount)

	assert.Equal(t, "FETCH_ERROR", byURL[ts.URL+"/missing"].Status)
}

func TestScoreCommandTooManyURLs(t *testing.T) {
	args := []string{"--config", writeTestConfig(t), "score"}
	for i := 0; i <= analyzer.MaxURLs; i++ {
		args = append(args, fmt.Sprintf("https://inosmi.ru/%d.html", i))
	}

	_, err := execute(t, args...)
	assert.ErrorIs(t, err, analyzer.ErrTooManyURLs)
}

func TestInvalidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log:\n  format: xml\n"), 0644))

	_, err := execute(t, "--config", configPath, "score")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")
}

func TestBootstrapDefaultsStemInflectedWords(t *testing.T) {
	page := `<html><body><article class="article"><p>Аутсайдера ждет банкротства</p></article></body></html>`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}))
	defer ts.Close()

	loaded, err := config.LoadConfig(writeTestConfig(t))
	require.NoError(t, err)
	require.Equal(t, "snowball", loaded.Dictionaries.Fallback)

	a, err := bootstrap(context.Background(), loaded)
	require.NoError(t, err)
	defer a.Close()

	outcomes, err := a.analyzer.Run(context.Background(), []string{ts.URL})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	// аутсайдера and банкротства match the base forms in the word list
	require.NotNil(t, outcomes[0].Score)
	assert.Equal(t, 66.67, *outcomes[0].Score)
	assert.Equal(t, 3, *outcomes[0].WordCount)
}
