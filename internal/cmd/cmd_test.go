package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/dmdash/internal/errors"
	"github.com/Iron-Ham/dmdash/internal/fixture"
	"github.com/Iron-Ham/dmdash/internal/store"
	"github.com/Iron-Ham/dmdash/internal/testutil"
)

// executeCommand runs rootCmd with args and returns captured output. Flags
// start from their defaults on every call.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// resetFlags restores every flag to its default so values do not leak
// between executions of the shared command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// setupTestEnvironment points the config directory at a temp dir and writes
// a config file using the file backend. extra is appended to the file.
func setupTestEnvironment(t *testing.T, extra string) (dir, configPath string) {
	t.Helper()

	dir = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	viper.Reset()
	t.Cleanup(viper.Reset)

	content := fmt.Sprintf(`storage:
  backend: file
  views_file: %s
  watch: false
logging:
  enabled: true
  level: debug
%s`, filepath.Join(dir, "views.yaml"), extra)
	configPath = testutil.WriteFile(t, dir, "test-config.yaml", content)
	return dir, configPath
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "dmdash" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "dmdash")
	}

	expectedCmds := []string{"start", "views", "summary", "serve", "config", "logs"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, expected := range expectedCmds {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestViewsLifecycle(t *testing.T) {
	_, cfg := setupTestEnvironment(t, "")

	out, err := executeCommand(t, "--config", cfg, "views", "list")
	if err != nil {
		t.Fatalf("views list failed: %v", err)
	}
	if !strings.Contains(out, store.DefaultViewTitle) {
		t.Errorf("a fresh views file should get a default view, got:\n%s", out)
	}

	out, err = executeCommand(t, "--config", cfg, "views", "add", "Backlog")
	if err != nil {
		t.Fatalf("views add failed: %v", err)
	}
	if !strings.Contains(out, `Added view "Backlog"`) {
		t.Errorf("unexpected add output: %q", out)
	}

	out, err = executeCommand(t, "--config", cfg, "views", "rename", "Backlog", "Triage")
	if err != nil {
		t.Fatalf("views rename failed: %v", err)
	}
	if !strings.Contains(out, `Renamed "Backlog" to "Triage"`) {
		t.Errorf("unexpected rename output: %q", out)
	}

	out, err = executeCommand(t, "--config", cfg, "views", "duplicate", "Triage")
	if err != nil {
		t.Fatalf("views duplicate failed: %v", err)
	}
	if !strings.Contains(out, `as "Triage (copy)"`) {
		t.Errorf("unexpected duplicate output: %q", out)
	}

	if _, err := executeCommand(t, "--config", cfg, "views", "rm", "Triage"); err != nil {
		t.Fatalf("views delete failed: %v", err)
	}

	out, err = executeCommand(t, "--config", cfg, "views")
	if err != nil {
		t.Fatalf("views failed: %v", err)
	}
	for _, want := range []string{store.DefaultViewTitle, "Triage (copy)"} {
		if !strings.Contains(out, want) {
			t.Errorf("list should contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Backlog") {
		t.Errorf("renamed view still listed under its old title:\n%s", out)
	}
	if got := strings.Count(out, "Triage"); got != 1 {
		t.Errorf("expected only the copy to remain, found %d Triage rows:\n%s", got, out)
	}
}

func TestViewsRespectCapabilities(t *testing.T) {
	dir, cfg := setupTestEnvironment(t, "")
	testutil.WriteFile(t, dir, "views.yaml", `version: 1
projects:
  0:
    views:
      - key: locked
        id: "1"
        title: Locked
        editable: false
        deletable: false
`)

	out, err := executeCommand(t, "--config", cfg, "views", "list")
	if err != nil {
		t.Fatalf("views list failed: %v", err)
	}
	if !strings.Contains(out, "locked,permanent") {
		t.Errorf("expected capability flags in list, got:\n%s", out)
	}

	_, err = executeCommand(t, "--config", cfg, "views", "rename", "1", "Other")
	if !errors.Is(err, errors.ErrActionUnavailable) {
		t.Errorf("rename of a locked view: got %v, want ErrActionUnavailable", err)
	}

	_, err = executeCommand(t, "--config", cfg, "views", "delete", "locked")
	if !errors.Is(err, errors.ErrActionUnavailable) {
		t.Errorf("delete of a permanent view: got %v, want ErrActionUnavailable", err)
	}
}

func TestViewsUnknownReference(t *testing.T) {
	_, cfg := setupTestEnvironment(t, "")

	_, err := executeCommand(t, "--config", cfg, "views", "delete", "nope")
	var nf *errors.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestSummaryAgainstFixture(t *testing.T) {
	url := testutil.FixtureServer(t, fixture.Options{})
	_, cfg := setupTestEnvironment(t, fmt.Sprintf("project:\n  id: 1\napi:\n  base_url: %s\n", url))

	out, err := executeCommand(t, "--config", cfg, "summary")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	for _, want := range []string{"Street scenes (project 1)", "[Default]", "Tasks: 6 / 6", "Boxes: 13"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary should contain %q, got:\n%s", want, out)
		}
	}

	out, err = executeCommand(t, "--config", cfg, "summary", "-o", "yaml")
	if err != nil {
		t.Fatalf("summary -o yaml failed: %v", err)
	}
	for _, want := range []string{"project: 1", "found: 6", "boxes: 13"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml summary should contain %q, got:\n%s", want, out)
		}
	}
}

func TestSummaryOffline(t *testing.T) {
	_, cfg := setupTestEnvironment(t, "")

	out, err := executeCommand(t, "--config", cfg, "summary")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if !strings.Contains(out, "Project 0") || !strings.Contains(out, "Boxes: 0") {
		t.Errorf("offline summary should show zero counters, got:\n%s", out)
	}

	if _, err := executeCommand(t, "--config", cfg, "summary", "-o", "json"); err == nil {
		t.Error("expected an error for an unknown output format")
	}
}

func TestConfigSetAndShow(t *testing.T) {
	_, cfg := setupTestEnvironment(t, "")

	out, err := executeCommand(t, "--config", cfg, "config", "set", "tui.theme", "nord")
	if err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	if !strings.Contains(out, "Set tui.theme = nord") {
		t.Errorf("unexpected set output: %q", out)
	}

	viper.Reset()
	out, err = executeCommand(t, "--config", cfg, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "theme: nord") {
		t.Errorf("show should reflect the new theme, got:\n%s", out)
	}
	if !strings.Contains(out, "token: (unset)") {
		t.Errorf("show should not print the token, got:\n%s", out)
	}

	_, err = executeCommand(t, "--config", cfg, "config", "set", "tui.theme", "neon")
	if err == nil || !strings.Contains(err.Error(), "Valid options") {
		t.Errorf("expected an invalid option error, got %v", err)
	}
}

func TestConfigInit(t *testing.T) {
	dir, _ := setupTestEnvironment(t, "")

	out, err := executeCommand(t, "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	path := filepath.Join(dir, "dmdash", "config.yaml")
	if !strings.Contains(out, path) {
		t.Errorf("init output should name %s, got %q", path, out)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(raw), "backend: file") {
		t.Errorf("unexpected config contents:\n%s", raw)
	}

	if _, err := executeCommand(t, "config", "init"); err == nil {
		t.Error("expected init to refuse an existing config file")
	}
}

func TestParseConfigValue(t *testing.T) {
	tests := []struct {
		key, value string
		want       any
		wantErr    bool
	}{
		{key: "project.id", value: "3", want: 3},
		{key: "project.id", value: "-1", wantErr: true},
		{key: "project.id", value: "three", wantErr: true},
		{key: "storage.watch", value: "false", want: false},
		{key: "storage.watch", value: "no", wantErr: true},
		{key: "storage.backend", value: "api", want: "api"},
		{key: "storage.backend", value: "s3", wantErr: true},
		{key: "api.timeout", value: "1m30s", want: "1m30s"},
		{key: "api.timeout", value: "0s", wantErr: true},
		{key: "api.base_url", value: "http://localhost:8080", want: "http://localhost:8080"},
		{key: "tui.colors", value: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			got, err := parseConfigValue(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseConfigValue() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseConfigValue() = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLogsFilters(t *testing.T) {
	_, cfg := setupTestEnvironment(t, "")

	if _, err := executeCommand(t, "--config", cfg, "views", "list"); err != nil {
		t.Fatalf("views list failed: %v", err)
	}

	out, err := executeCommand(t, "--config", cfg, "logs", "-n", "0", "--component", "store")
	if err != nil {
		t.Fatalf("logs failed: %v", err)
	}
	if !strings.Contains(out, "views loaded") {
		t.Errorf("expected the store's load entry, got:\n%s", out)
	}

	out, err = executeCommand(t, "--config", cfg, "logs", "--grep", "no-such-entry-anywhere")
	if err != nil {
		t.Fatalf("logs --grep failed: %v", err)
	}
	if !strings.Contains(out, "No matching log entries found.") {
		t.Errorf("unexpected grep output:\n%s", out)
	}

	if _, err := executeCommand(t, "--config", cfg, "logs", "--since", "soon"); err == nil {
		t.Error("expected an invalid --since to fail")
	}
}

func TestLogFilterPasses(t *testing.T) {
	f, err := newLogFilter("warn", "", "timeout", "boxes")
	if err != nil {
		t.Fatalf("newLogFilter: %v", err)
	}

	tests := []struct {
		name  string
		entry logEntry
		want  bool
	}{
		{"match", logEntry{Level: "WARN", Msg: "fetch timeout", Component: "boxes"}, true},
		{"below level", logEntry{Level: "INFO", Msg: "fetch timeout", Component: "boxes"}, false},
		{"other component", logEntry{Level: "ERROR", Msg: "fetch timeout", Component: "store"}, false},
		{"grep in extra", logEntry{Level: "ERROR", Msg: "failed", Component: "boxes", Extra: map[string]any{"error": "timeout"}}, true},
		{"no grep match", logEntry{Level: "ERROR", Msg: "failed", Component: "boxes"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.passes(&tt.entry); got != tt.want {
				t.Errorf("passes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{
		Handler:           fixture.NewServer(fixture.Default(), fixture.Options{}).Routes(),
		ReadHeaderTimeout: time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/projects/1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Street scenes") {
		t.Errorf("unexpected response %d: %s", resp.StatusCode, body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestResolveView(t *testing.T) {
	p := testutil.NewPersister(1,
		store.ViewData{Key: "a", ID: "10", Title: "Alpha", Editable: true, Deletable: true},
		store.ViewData{Key: "b", ID: "a", Title: "Beta", Editable: true, Deletable: true},
	)
	s := testutil.NewStore(t, 1, p)

	tests := []struct {
		ref     string
		wantKey string
	}{
		{"a", "a"}, // key wins over ID
		{"10", "a"},
		{"Beta", "b"},
	}
	for _, tt := range tests {
		v, err := resolveView(s, tt.ref)
		if err != nil {
			t.Fatalf("resolveView(%q): %v", tt.ref, err)
		}
		if v.Key() != tt.wantKey {
			t.Errorf("resolveView(%q) = %q, want %q", tt.ref, v.Key(), tt.wantKey)
		}
	}

	if _, err := resolveView(s, "Gamma"); !errors.Is(err, errors.ErrViewNotFound) {
		t.Errorf("expected ErrViewNotFound, got %v", err)
	}
}
