package command

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/delivtrack-go/internal/apitest"
)

// harness runs the CLI against a fake backend with a private config file
// and session store. Each run is a fresh process as far as the CLI can
// tell; only the files under dir persist between runs.
type harness struct {
	t          *testing.T
	backend    *apitest.Backend
	server     *httptest.Server
	dir        string
	configPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	backend := apitest.New()
	mux := http.NewServeMux()
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", backend))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	h := &harness{
		t:          t,
		backend:    backend,
		server:     server,
		dir:        dir,
		configPath: filepath.Join(dir, "cli.yaml"),
	}

	cfg := fmt.Sprintf(`api:
  url: %s/api/v1
  timeout: 5s
store:
  engine: badger
  dir: %s
log:
  level: error
`, server.URL, filepath.Join(dir, "session"))
	if err := os.WriteFile(h.configPath, []byte(cfg), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return h
}

// result is the outcome of one CLI run.
type result struct {
	code   int
	stdout string
	stderr string
}

// run executes the CLI with args and the harness config.
func (h *harness) run(args ...string) result {
	h.t.Helper()
	return h.runWithInput("", args...)
}

func (h *harness) runWithInput(input string, args ...string) result {
	h.t.Helper()

	var stdout, stderr bytes.Buffer
	app := App()
	app.Reader = strings.NewReader(input)
	app.Writer = &stdout
	app.ErrWriter = &stderr

	full := append([]string{"delivtrack", "--config", h.configPath}, args...)
	code := Run(app, full)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// mustRun fails the test unless the run succeeds.
func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	res := h.run(args...)
	if res.code != 0 {
		h.t.Fatalf("%v: exit %d\nstdout: %s\nstderr: %s", args, res.code, res.stdout, res.stderr)
	}
	return res.stdout
}

// login logs in with the default fixture user.
func (h *harness) login() {
	h.t.Helper()
	h.mustRun("login", "-u", apitest.DefaultUsername, "-p", apitest.DefaultPassword)
}

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("output does not contain %q:\n%s", want, got)
	}
}

func assertNotContains(t *testing.T, got, unwanted string) {
	t.Helper()
	if strings.Contains(got, unwanted) {
		t.Errorf("output contains %q:\n%s", unwanted, got)
	}
}
