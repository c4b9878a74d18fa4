package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jsonpool "github.com/ajitpratap0/ocf/pkg/json"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
	"github.com/ajitpratap0/ocf/pkg/testutil"
)

// writeFixture stores the sample fixture for asset-1 as a JSON file.
func writeFixture(t *testing.T) (string, testutil.Sample) {
	t.Helper()
	f, sample := testutil.SampleFixture(t, "asset-1")
	data, err := jsonpool.Marshal(f)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "fixture.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path, sample
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.ExecuteContext(testutil.TestContext(t))
	return out.String(), err
}

func TestVersionAndBackends(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ocf v"+version)

	out, err = run(t, "backends")
	require.NoError(t, err)
	for _, name := range []string{"memory", "postgres", "mysql", "mongodb", "rest"} {
		assert.Contains(t, out, name)
	}
}

func TestAssetCommand(t *testing.T) {
	fixture, sample := writeFixture(t)

	out, err := run(t, "asset", "asset-1", "--fixture", fixture)
	require.NoError(t, err)
	assert.Contains(t, out, sample.Asset.DisplayName)
	assert.Contains(t, out, "search_keywords")
	assert.Contains(t, out, "schema_attributes")

	_, err = run(t, "asset", "missing", "--fixture", fixture)
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeNotFound))
}

func TestBrowseCommand(t *testing.T) {
	fixture, sample := writeFixture(t)

	out, err := run(t, "browse", "asset-1", "comments", "--fixture", fixture, "--page-size", "4")
	require.NoError(t, err)
	assert.Equal(t, 25, strings.Count(out, "\n"))

	out, err = run(t, "browse", "asset-1", "comments", "--fixture", fixture, "--limit", "3")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "\n"))

	out, err = run(t, "browse", "asset-1", "notes", "--owner", sample.NoteLog, "--fixture", fixture)
	require.NoError(t, err)
	assert.Equal(t, sample.Notes, strings.Count(out, "\n"))

	_, err = run(t, "browse", "asset-1", "gossip", "--fixture", fixture)
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeInvalidParameter))
}

func TestExportCommand(t *testing.T) {
	fixture, _ := writeFixture(t)
	dir := t.TempDir()

	out, err := run(t, "export", "asset-1", "--fixture", fixture, "--path", dir, "--compression", "gzip")
	require.NoError(t, err)
	assert.Contains(t, out, "asset-1.jsonl.gz")

	_, err = os.Stat(filepath.Join(dir, "asset-1.jsonl.gz"))
	assert.NoError(t, err)

	_, err = run(t, "export", "asset-1", "--fixture", fixture, "--kinds", "likes,bogus")
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeInvalidParameter))
}

func TestEnvironmentOverridesConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "ocf.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("name: from-file\npaging:\n  max_cache_size: 7\nproperty_server:\n  type: memory\n"), 0o600))

	t.Setenv("OCF_PAGE_SIZE", "3")
	v := viper.New()
	v.SetEnvPrefix("OCF")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.Set("config", cfgPath)

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Name)
	assert.Equal(t, 3, cfg.Paging.MaxCacheSize)
	assert.Equal(t, "memory", cfg.PropertyServer.Type)
}

func TestUnknownBackend(t *testing.T) {
	t.Setenv("OCF_BACKEND", "carrier-pigeon")
	_, err := run(t, "asset", "asset-1")
	assert.Error(t, err)
}

func TestServeMux(t *testing.T) {
	fixture, _ := writeFixture(t)

	v := viper.New()
	v.Set("fixture", fixture)
	v.Set("log-level", "error")
	a, err := newApp(context.Background(), v)
	require.NoError(t, err)
	defer a.close(context.Background())

	srv := httptest.NewServer(newServeMux(a))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/assets/asset-1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/owners/asset-1/likes/count")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "7")

	// browse through the app so the paging metrics have samples
	ca, err := a.connect(context.Background(), "asset-1")
	require.NoError(t, err)
	likes, err := ca.Likes(context.Background())
	require.NoError(t, err)
	_, err = likes.Collect(context.Background())
	require.NoError(t, err)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "ocf_paging_elements_served_total")
	assert.Contains(t, string(body), "go_goroutines")
}
