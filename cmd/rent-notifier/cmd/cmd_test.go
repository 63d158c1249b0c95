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
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/rent-notifier/internal/config"
	"github.com/donaldgifford/rent-notifier/internal/notify"
	"github.com/donaldgifford/rent-notifier/pkg/logger"
)

func TestBuildNotifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		backend  string
		dryRun   bool
		wantLine bool
	}{
		{name: "line backend", backend: "line", wantLine: true},
		{name: "noop backend", backend: "noop"},
		{name: "dry run overrides line", backend: "line", dryRun: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &config.Config{
				Notify: config.NotifyConfig{Backend: tt.backend},
				Line:   config.LineConfig{Endpoint: "http://localhost/push", AccessToken: "tok", UserID: "U1"},
			}

			n := buildNotifier(cfg, logger.Discard(), tt.dryRun)
			if tt.wantLine {
				assert.IsType(t, &notify.LineNotifier{}, n)
				return
			}
			assert.IsType(t, &notify.NoOpNotifier{}, n)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := versionCommand()
	c.SetOut(&buf)
	c.Run(c, nil)

	assert.Equal(t, "rent-notifier dev\n", buf.String())
}

func TestRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	names := make([]string, 0)
	for _, c := range Root().Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "migrate")
	assert.Contains(t, names, "history")
	assert.Contains(t, names, "version")
	assert.NotNil(t, Root().Flags().Lookup("dry-run"))
	assert.NotNil(t, Root().PersistentFlags().Lookup("config"))
}

var fixtureURLs = []string{
	"https://suumo.jp/chintai/jnc_000000000001/",
	"https://suumo.jp/chintai/jnc_000000000002/",
	"https://suumo.jp/chintai/jnc_000000000003/",
}

type pushRecorder struct {
	mu     sync.Mutex
	auth   []string
	bodies []map[string]any
}

func (p *pushRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p.mu.Lock()
	p.auth = append(p.auth, r.Header.Get("Authorization"))
	p.bodies = append(p.bodies, body)
	p.mu.Unlock()
	_, _ = w.Write([]byte("{}"))
}

func (p *pushRecorder) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.bodies)
}

// setViper overrides viper keys for the duration of the test.
func setViper(t *testing.T, kv map[string]any) {
	t.Helper()
	for k, v := range kv {
		prev := viper.Get(k)
		viper.Set(k, v)
		t.Cleanup(func() { viper.Set(k, prev) })
	}
}

// pageServer serves the extractor fixture over TLS and points the default
// transport at it; the configured search url is always upgraded to https.
func pageServer(t *testing.T) *httptest.Server {
	t.Helper()

	page, err := os.ReadFile(filepath.Join("..", "..", "..", "internal", "extract", "testdata", "search.html"))
	require.NoError(t, err)

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}))
	t.Cleanup(srv.Close)

	orig := http.DefaultTransport
	http.DefaultTransport = srv.Client().Transport
	t.Cleanup(func() { http.DefaultTransport = orig })

	return srv
}

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

func testCommand() *cobra.Command {
	c := &cobra.Command{}
	c.SetContext(context.Background())
	return c
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Fields(string(data))
}

func TestRunNotifier_EndToEnd(t *testing.T) {
	t.Setenv(config.EnvAccessToken, "")
	t.Setenv(config.EnvUserID, "")

	page := pageServer(t)
	pushes := &pushRecorder{}
	line := httptest.NewServer(pushes)
	t.Cleanup(line.Close)

	histPath := filepath.Join(t.TempDir(), "sent_list.txt")
	cfgPath := writeConfig(t, fmt.Sprintf(`
fetch:
  url: %s/jj/chintai/ichiran/FR301FC001/?ar=030
line:
  endpoint: %s/v2/bot/message/push
  access_token: tok
  user_id: U123
history:
  driver: file
  path: %s
`, page.URL, line.URL, histPath))

	setViper(t, map[string]any{
		"config":     cfgPath,
		"env-file":   "",
		"log-level":  "error",
		"log-format": "",
		"dry-run":    false,
	})

	require.NoError(t, runNotifier(testCommand(), nil))

	require.Equal(t, 1, pushes.count())
	assert.Equal(t, "Bearer tok", pushes.auth[0])
	body := pushes.bodies[0]
	assert.Equal(t, "U123", body["to"])
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	msg, ok := msgs[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "text", msg["type"])
	text, ok := msg["text"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(text, "【新着物件 3件】\n\n"), text)
	for _, u := range fixtureURLs {
		assert.Contains(t, text, u)
	}

	assert.Equal(t, fixtureURLs, readLines(t, histPath))

	t.Run("second run finds nothing new", func(t *testing.T) {
		require.NoError(t, runNotifier(testCommand(), nil))
		assert.Equal(t, 1, pushes.count())
		assert.Equal(t, fixtureURLs, readLines(t, histPath))
	})

	t.Run("history lists recorded urls as json", func(t *testing.T) {
		var buf bytes.Buffer
		hc := historyCmd()
		hc.SetOut(&buf)
		hc.SetArgs([]string{"--json"})
		require.NoError(t, hc.ExecuteContext(context.Background()))

		var out struct {
			Driver string   `json:"driver"`
			Count  int      `json:"count"`
			URLs   []string `json:"urls"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		assert.Equal(t, "file", out.Driver)
		assert.Equal(t, 3, out.Count)
		assert.Equal(t, fixtureURLs, out.URLs)
	})
}

func TestRunNotifier_DryRun(t *testing.T) {
	page := pageServer(t)
	pushes := &pushRecorder{}
	line := httptest.NewServer(pushes)
	t.Cleanup(line.Close)

	histPath := filepath.Join(t.TempDir(), "sent_list.txt")
	cfgPath := writeConfig(t, fmt.Sprintf(`
fetch:
  url: %s/search
line:
  endpoint: %s/v2/bot/message/push
  access_token: tok
  user_id: U123
history:
  driver: file
  path: %s
`, page.URL, line.URL, histPath))

	setViper(t, map[string]any{
		"config":    cfgPath,
		"env-file":  "",
		"log-level": "error",
		"dry-run":   true,
	})

	require.NoError(t, runNotifier(testCommand(), nil))
	assert.Zero(t, pushes.count())
	assert.NoFileExists(t, histPath)
}

func TestRunNotifier_FetchFailureIsFatal(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	orig := http.DefaultTransport
	http.DefaultTransport = srv.Client().Transport
	t.Cleanup(func() { http.DefaultTransport = orig })

	histPath := filepath.Join(t.TempDir(), "sent_list.txt")
	cfgPath := writeConfig(t, fmt.Sprintf(`
fetch:
  url: %s/search
notify:
  backend: noop
history:
  driver: file
  path: %s
`, srv.URL, histPath))

	setViper(t, map[string]any{
		"config":    cfgPath,
		"env-file":  "",
		"log-level": "error",
		"dry-run":   false,
	})

	err := runNotifier(testCommand(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching search page")
	assert.NoFileExists(t, histPath)
}

func TestHistoryAndMigrate_WithoutLineCredentials(t *testing.T) {
	t.Setenv(config.EnvAccessToken, "")
	t.Setenv(config.EnvUserID, "")

	histPath := filepath.Join(t.TempDir(), "sent_list.txt")
	require.NoError(t, os.WriteFile(histPath, []byte(fixtureURLs[1]+"\n"+fixtureURLs[0]+"\n"), 0o600))
	cfgPath := writeConfig(t, fmt.Sprintf(`
history:
  driver: file
  path: %s
`, histPath))

	setViper(t, map[string]any{
		"config":    cfgPath,
		"env-file":  "",
		"log-level": "error",
	})

	t.Run("run still needs credentials", func(t *testing.T) {
		err := runNotifier(testCommand(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line.access_token")
	})

	t.Run("history prints sorted urls", func(t *testing.T) {
		var buf bytes.Buffer
		hc := historyCmd()
		hc.SetOut(&buf)
		hc.SetArgs([]string{})
		require.NoError(t, hc.ExecuteContext(context.Background()))

		want := "2 urls recorded (file)\n" + fixtureURLs[0] + "\n" + fixtureURLs[1] + "\n"
		assert.Equal(t, want, buf.String())
	})

	t.Run("migrate is a no-op for the file driver", func(t *testing.T) {
		require.NoError(t, runMigrate(testCommand(), nil))
	})
}
