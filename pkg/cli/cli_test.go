package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astro-themes/internal/config"
	"astro-themes/internal/domain"
	"astro-themes/internal/service/publish"
	"astro-themes/internal/service/script"
)

const testIntegrationYAML = `injectScript: true
props:
  themes: [light, dark, sepia]
  attribute: [class, data-mode]
`

// runCLI executes the root command with an isolated environment and
// returns what it wrote to stdout.
func runCLI(t *testing.T, configYAML string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "astro-themes.yaml")
	if configYAML != "" {
		require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))
	}
	t.Setenv("THEMES_CONFIG", path)
	t.Setenv("THEMES_OUTPUT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ENV", "")

	var stdout, stderr bytes.Buffer
	rootCmd := newRootCmd()
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), err
}

func TestVersion_JSON(t *testing.T) {
	out, err := runCLI(t, "", "version", "-o", "json")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "dev", got["version"])
}

func TestRoot_RejectsUnknownOutput(t *testing.T) {
	_, err := runCLI(t, "", "version", "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestScript(t *testing.T) {
	out, err := runCLI(t, testIntegrationYAML, "script", "-o", "json")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotEmpty(t, got["script"])
	assert.Equal(t, script.CSPHash(got["script"]), got["cspHash"])

	readable, err := runCLI(t, testIntegrationYAML, "script", "--minify=false")
	require.NoError(t, err)
	assert.Greater(t, len(readable), len(got["script"]))

	hash, err := runCLI(t, testIntegrationYAML, "script", "--csp-hash")
	require.NoError(t, err)
	assert.Equal(t, got["cspHash"], strings.TrimSpace(hash))
}

func TestScript_UnknownForcedTheme(t *testing.T) {
	_, err := runCLI(t, testIntegrationYAML, "script", "--forced", "neon")
	require.Error(t, err)
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestScript_InvalidConfig(t *testing.T) {
	_, err := runCLI(t, "props:\n  themes: [light, system]\n", "script")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved")
}

func TestTypes(t *testing.T) {
	out, err := runCLI(t, "", "types")
	require.NoError(t, err)
	assert.Equal(t, script.TypeDeclaration, out)
}

func TestSetup(t *testing.T) {
	tests := []struct {
		name        string
		command     string
		wantToolbar bool
	}{
		{name: "dev", command: domain.CommandDev, wantToolbar: true},
		{name: "build", command: domain.CommandBuild, wantToolbar: false},
		{name: "preview", command: domain.CommandPreview, wantToolbar: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, testIntegrationYAML, "setup", "--command", tt.command, "-o", "json")
			require.NoError(t, err)

			var got script.Setup
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.NotEmpty(t, got.ScriptSource)
			assert.Equal(t, script.TypesFilename, got.TypesFilename)
			assert.Equal(t, tt.wantToolbar, got.ToolbarApp != nil)
		})
	}
}

func TestSetup_UnknownCommand(t *testing.T) {
	_, err := runCLI(t, "", "setup", "--command", "deploy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestSetup_Table(t *testing.T) {
	out, err := runCLI(t, testIntegrationYAML, "setup")
	require.NoError(t, err)
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "[light dark sepia]")
	assert.Contains(t, out, script.ToolbarAppEntrypoint)
}

func TestResolve(t *testing.T) {
	out, err := runCLI(t, testIntegrationYAML, "resolve", "--system", "dark", "-o", "json")
	require.NoError(t, err)

	var got sessionReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "system", got.State.Theme)
	assert.Equal(t, "dark", got.State.ResolvedTheme)
	assert.Equal(t, "system", got.Mode)
	assert.Equal(t, []string{"dark"}, got.Root.Classes)
	assert.Equal(t, "dark", got.Root.Attributes["data-mode"])
	assert.Empty(t, got.Stored)
	assert.Empty(t, got.Events)
}

func TestResolve_PersistedAndForced(t *testing.T) {
	out, err := runCLI(t, testIntegrationYAML, "resolve", "--persisted", "sepia", "-o", "json")
	require.NoError(t, err)
	var got sessionReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "sepia", got.State.ResolvedTheme)
	assert.Equal(t, "explicit", got.Mode)

	out, err = runCLI(t, testIntegrationYAML, "resolve", "--persisted", "sepia", "--forced", "dark", "-o", "json")
	require.NoError(t, err)
	got = sessionReport{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "dark", got.State.ResolvedTheme)
	assert.Equal(t, "forced", got.Mode)
}

func TestResolve_Table(t *testing.T) {
	out, err := runCLI(t, testIntegrationYAML, "resolve", "--system", "dark")
	require.NoError(t, err)
	assert.Contains(t, out, "resolved theme")
	assert.Contains(t, out, "data-mode")
	assert.Contains(t, out, "color-scheme")
}

func TestResolve_BadSystem(t *testing.T) {
	_, err := runCLI(t, "", "resolve", "--system", "sepia")
	require.Error(t, err)
}

func TestSimulate_FollowsSystem(t *testing.T) {
	out, err := runCLI(t, "", "simulate", "--system", "dark", "set=system", "os=light", "-o", "json")
	require.NoError(t, err)

	var got sessionReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "light", got.State.ResolvedTheme)
	assert.Equal(t, "system", got.Stored)
	assert.Equal(t, []domain.ChangeEvent{
		{Theme: "system", ResolvedTheme: "dark"},
		{Theme: "system", ResolvedTheme: "light"},
	}, got.Events)
}

func TestSimulate_ToggleAndUpdater(t *testing.T) {
	upd := filepath.Join(t.TempDir(), "next.star")
	require.NoError(t, os.WriteFile(upd, []byte("cycle(prev)"), 0o600))

	out, err := runCLI(t, testIntegrationYAML, "simulate", "--persisted", "light",
		"toggle", "updater="+upd, "-o", "json")
	require.NoError(t, err)

	var got sessionReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Events, 2)
	assert.Equal(t, "dark", got.Events[0].ResolvedTheme)
	assert.Equal(t, "sepia", got.Events[1].ResolvedTheme)
	assert.Equal(t, "sepia", got.Stored)
}

func TestSimulate_BadSteps(t *testing.T) {
	for _, step := range []string{"jump", "set=", "os=sepia", "updater=/does/not/exist.star"} {
		t.Run(step, func(t *testing.T) {
			_, err := runCLI(t, "", "simulate", step)
			assert.Error(t, err)
		})
	}
}

func TestPublish_LocalDirectory(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "dist")
	out, err := runCLI(t, testIntegrationYAML, "publish", dest)
	require.NoError(t, err)
	assert.Contains(t, out, publish.ManifestFile)

	for _, name := range []string{publish.ScriptFile, publish.MinifiedScriptFile, publish.HeadSnippetFile, publish.ManifestFile} {
		_, err := os.Stat(filepath.Join(dest, name))
		assert.NoError(t, err, name)
	}
}

func TestPublish_S3WithoutCredentials(t *testing.T) {
	t.Setenv("KEY_ID", "")
	_, err := runCLI(t, "", "publish", "s3://assets/themes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KEY_ID")
}

func TestCommands(t *testing.T) {
	out, err := runCLI(t, "", "commands", "-o", "json")
	require.NoError(t, err)

	var got []commandInfo
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	byPath := map[string]commandInfo{}
	for _, c := range got {
		byPath[c.Path] = c
	}
	for _, path := range []string{"version", "script", "resolve", "simulate", "serve", "publish", "commands"} {
		assert.Contains(t, byPath, path)
	}
	assert.NotContains(t, byPath, "help")

	publishCmd := byPath["publish"]
	assert.Equal(t, "DESTINATION", publishCmd.Args)

	flags := map[string]flagInfo{}
	for _, f := range byPath["resolve"].Flags {
		flags[f.Name] = f
	}
	require.Contains(t, flags, "system")
	assert.Equal(t, "string", flags["system"].Type)
	assert.Equal(t, "light", flags["system"].Default)
	assert.NotContains(t, flags, "output", "global flags are listed only with --inherited")

	scriptFlags := map[string]flagInfo{}
	for _, f := range byPath["script"].Flags {
		scriptFlags[f.Name] = f
	}
	assert.Equal(t, "bool", scriptFlags["minify"].Type)
	assert.Equal(t, "true", scriptFlags["minify"].Default)
}

func TestCommands_Filters(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantPaths []string
	}{
		{name: "by flag name", args: []string{"--filter", "forced"}, wantPaths: []string{"script", "resolve", "simulate"}},
		{name: "by description", args: []string{"--filter", "UPLOAD"}, wantPaths: []string{"publish"}},
		{name: "no match", args: []string{"--filter", "kubernetes"}, wantPaths: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, "", append([]string{"commands", "-o", "json"}, tt.args...)...)
			require.NoError(t, err)
			var got []commandInfo
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			var paths []string
			for _, c := range got {
				paths = append(paths, c.Path)
			}
			assert.ElementsMatch(t, tt.wantPaths, paths)
		})
	}
}

func TestCommands_Inherited(t *testing.T) {
	out, err := runCLI(t, "", "commands", "--inherited", "--filter", "version", "-o", "json")
	require.NoError(t, err)
	var got []commandInfo
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)

	var inherited []string
	for _, f := range got[0].Flags {
		if f.Inherited {
			inherited = append(inherited, f.Name)
		}
	}
	assert.ElementsMatch(t, []string{"config", "output", "log-level"}, inherited)
}

func TestCommands_Table(t *testing.T) {
	out, err := runCLI(t, "", "commands")
	require.NoError(t, err)
	assert.Contains(t, out, "COMMAND")
	assert.Contains(t, out, "--persisted")
}

func TestServerHandler(t *testing.T) {
	opts, err := config.ParseIntegration([]byte(testIntegrationYAML))
	require.NoError(t, err)
	cfg := &config.Config{
		CORSAllowedOrigins: []string{"*"},
		RateLimitRPS:       100,
		RateLimitBurst:     100,
	}
	handler, err := newServerHandler(t.Context(), cfg, opts, nil)
	require.NoError(t, err)

	tests := []struct {
		path string
		want int
	}{
		{path: "/", want: http.StatusOK},
		{path: "/health", want: http.StatusOK},
		{path: "/api/v1/config", want: http.StatusOK},
		{path: "/themes/script.js", want: http.StatusOK},
		{path: script.ToolbarAppEntrypoint, want: http.StatusOK},
		{path: "/nope", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestServerHandler_ProductionHidesToolbar(t *testing.T) {
	cfg := &config.Config{Env: "production", CORSAllowedOrigins: []string{"https://example.com"}, RateLimitRPS: 10, RateLimitBurst: 10}
	handler, err := newServerHandler(t.Context(), cfg, domain.IntegrationOptions{}, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, script.ToolbarAppEntrypoint, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
