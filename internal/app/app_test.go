package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/otot/internal/browser"
	"github.com/MrSnakeDoc/otot/internal/render"
)

type harness struct {
	t      *testing.T
	dir    string
	cfg    string
	db     string
	opener *browser.Recorder
	now    time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("pretty_log = false\nlog_level = \"error\"\n"), 0o644))

	return &harness{
		t:      t,
		dir:    dir,
		cfg:    cfg,
		db:     filepath.Join(dir, "history.db"),
		opener: &browser.Recorder{},
		now:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (h *harness) env() env {
	return env{opener: h.opener, now: func() time.Time { return h.now }}
}

func (h *harness) run(args ...string) (int, string, string) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	c := &cli{env: h.env(), stdout: &stdout, stderr: &stderr}
	code := c.execute(context.Background(), append([]string{"--config", h.cfg, "--db", h.db}, args...))
	return code, stdout.String(), stderr.String()
}

func TestOpenDirectURLThenByQuery(t *testing.T) {
	h := newHarness(t)

	code, out, _ := h.run("open", "https://github.com/rust-lang/rust")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "https://github.com/rust-lang/rust\n", out)

	h.now = h.now.Add(time.Minute)
	code, out, _ = h.run("open", "gh/rust", "--browser", "firefox")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "https://github.com/rust-lang/rust\n", out)

	require.Len(t, h.opener.Opened, 2)
	assert.Equal(t, "firefox", h.opener.Opened[1].Browser)

	code, out, _ = h.run("show", "https://github.com/rust-lang/rust")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "visits")
	assert.Contains(t, out, "2")
}

func TestNoResultsExitStatus(t *testing.T) {
	h := newHarness(t)

	code, out, errOut := h.run("query", "zzz")
	assert.Equal(t, ExitNoMatch, code)
	assert.Empty(t, out)
	assert.Equal(t, "no results for \"zzz\"\n", errOut)

	code, _, errOut = h.run("open", "zzz")
	assert.Equal(t, ExitNoMatch, code)
	assert.Contains(t, errOut, `no results for "zzz"`)
	assert.Empty(t, h.opener.Opened)
}

func TestOtherErrorsExitTwo(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		args []string
	}{
		{"empty query", []string{"open", "  "}},
		{"unknown url", []string{"show", "https://nowhere.example"}},
		{"missing prune selector", []string{"prune"}},
		{"two prune selectors", []string{"prune", "--pattern", "x", "--domain", "y"}},
		{"unknown command", []string{"frobnicate"}},
		{"unknown config key", []string{"config", "get", "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := h.run(tt.args...)
			assert.Equal(t, ExitError, code)
			assert.NotEmpty(t, errOut)
		})
	}
}

func TestDryRunDoesNotRecord(t *testing.T) {
	h := newHarness(t)

	code, out, _ := h.run("open", "--dry-run", "https://example.org/a")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "https://example.org/a\n", out)
	assert.Empty(t, h.opener.Opened)

	code, _, _ = h.run("show", "https://example.org/a")
	assert.Equal(t, ExitError, code)
}

func TestLaunchFailureKeepsVisit(t *testing.T) {
	h := newHarness(t)
	h.opener.Err = os.ErrPermission

	code, _, errOut := h.run("open", "https://example.org/a")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, errOut, "failed to launch browser")

	code, _, _ = h.run("show", "https://example.org/a")
	assert.Equal(t, ExitOK, code)
}

func TestQueryJSON(t *testing.T) {
	h := newHarness(t)
	for _, u := range []string{"https://github.com/rust-lang/rust", "https://github.com/golang/go", "https://github.com/golang/go"} {
		code, _, _ := h.run("open", u)
		require.Equal(t, ExitOK, code)
	}

	code, out, _ := h.run("query", "github", "--json")
	require.Equal(t, ExitOK, code)

	var views []render.CandidateView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "https://github.com/golang/go", views[0].URL)
	assert.Equal(t, int64(2), views[0].VisitCount)

	code, out, _ = h.run("query", "github", "--json", "--limit", "1")
	require.Equal(t, ExitOK, code)
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	assert.Len(t, views, 1)
}

func TestTop(t *testing.T) {
	h := newHarness(t)

	code, out, _ := h.run("top")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "history is empty\n", out)

	code, _, _ = h.run("open", "https://docs.rs/serde")
	require.Equal(t, ExitOK, code)

	code, out, _ = h.run("top")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "https://docs.rs/serde")
}

func TestPrune(t *testing.T) {
	h := newHarness(t)
	for _, u := range []string{"https://a.example.co.uk/x", "https://b.example.co.uk/y", "http://plain.example.org"} {
		code, _, _ := h.run("open", u)
		require.Equal(t, ExitOK, code)
	}

	code, out, _ := h.run("prune", "--pattern", "^http://")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "deleted 1 entry\n", out)

	code, out, _ = h.run("prune", "--domain", "example.co.uk")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "deleted 2 entries\n", out)

	code, out, _ = h.run("prune", "--older-than", "1h")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "deleted 0 entries\n", out)
}

func TestImport(t *testing.T) {
	h := newHarness(t)
	services := filepath.Join(h.dir, "services.yaml")
	require.NoError(t, os.WriteFile(services, []byte(`
- Network:
    - AdGuard:
        href: https://adguard.domain.ext
    - Traefik:
        href: https://traefik.domain.ext
`), 0o644))

	code, out, _ := h.run("import", "--services", services)
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "imported 2 new, 0 already known\n", out)

	code, out, _ = h.run("import", "--services", services)
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "imported 0 new, 2 already known\n", out)

	code, out, _ = h.run("open", "--dry-run", "trfk")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "https://traefik.domain.ext\n", out)
}

func TestImportWithoutSources(t *testing.T) {
	h := newHarness(t)
	code, _, errOut := h.run("import")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, errOut, "no homepage")
}

func TestConfigSetGet(t *testing.T) {
	h := newHarness(t)

	code, out, _ := h.run("config", "path")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, h.cfg+"\n", out)

	code, _, _ = h.run("config", "set", "max_results", "5")
	require.Equal(t, ExitOK, code)

	code, out, _ = h.run("config", "get", "max_results")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "5\n", out)

	// the rest of the file survives a set
	code, out, _ = h.run("config", "get", "log_level")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "error\n", out)

	code, _, _ = h.run("config", "set", "frecency.hour", "0.01")
	assert.Equal(t, ExitError, code)

	code, out, _ = h.run("config", "keys")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, strings.Split(strings.TrimSpace(out), "\n"), "serve.listen")
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	code, out, _ := h.run("version")
	require.Equal(t, ExitOK, code)
	assert.True(t, strings.HasPrefix(out, "otot "))
}

func TestServe(t *testing.T) {
	h := newHarness(t)
	code, _, _ := h.run("open", "https://github.com/rust-lang/rust")
	require.Equal(t, ExitOK, code)

	a, err := New(context.Background(), Options{ConfigPath: h.cfg, DBPath: h.db}, h.env())
	require.NoError(t, err)
	defer a.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx, ln) }()

	client := &http.Client{
		Timeout:       2 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	base := "http://" + ln.Addr().String()

	require.Eventually(t, func() bool {
		resp, err := client.Get(base + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	resp, err := client.Get(base + "/search?q=gh/rust")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://github.com/rust-lang/rust", resp.Header.Get("Location"))

	resp, err = client.Get(base + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}

	rec, err := a.store.FindByURL(context.Background(), "https://github.com/rust-lang/rust")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.VisitCount)
}
