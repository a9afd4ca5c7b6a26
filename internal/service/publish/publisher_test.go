package publish

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astro-themes/internal/config"
	"astro-themes/internal/domain"
	"astro-themes/internal/service/script"
)

func TestParseDestination(t *testing.T) {
	tests := []struct {
		name    string
		dest    string
		want    Destination
		wantErr bool
	}{
		{name: "plain path", dest: "./dist/themes/", want: Destination{Scheme: SchemeFile, Prefix: "dist/themes"}},
		{name: "file url", dest: "file:///var/www/themes", want: Destination{Scheme: SchemeFile, Prefix: "/var/www/themes"}},
		{name: "s3", dest: "s3://site/assets/themes/", want: Destination{Scheme: SchemeS3, Bucket: "site", Prefix: "assets/themes"}},
		{name: "s3 bucket root", dest: "s3://site", want: Destination{Scheme: SchemeS3, Bucket: "site"}},
		{name: "gcs", dest: "gs://site/themes", want: Destination{Scheme: SchemeGCS, Bucket: "site", Prefix: "themes"}},
		{name: "az", dest: "az://web/themes", want: Destination{Scheme: SchemeAzure, Bucket: "web", Prefix: "themes"}},
		{name: "abfss", dest: "abfss://web@acct.dfs.core.windows.net/themes", want: Destination{Scheme: SchemeAzure, Bucket: "web", Prefix: "themes"}},
		{name: "azure https", dest: "https://acct.blob.core.windows.net/web/a/b", want: Destination{Scheme: SchemeAzure, Bucket: "web", Prefix: "a/b"}},
		{name: "empty", dest: "  ", wantErr: true},
		{name: "no bucket", dest: "s3:///themes", wantErr: true},
		{name: "other https", dest: "https://example.com/x", wantErr: true},
		{name: "abfss without container", dest: "abfss://acct.dfs.core.windows.net/x", wantErr: true},
		{name: "unknown scheme", dest: "ftp://host/x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDestination(tt.dest)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDestination_KeyAndLocation(t *testing.T) {
	d := Destination{Scheme: SchemeS3, Bucket: "site", Prefix: "themes"}
	assert.Equal(t, "themes/theme-init.js", d.Key(ScriptFile))
	assert.Equal(t, "s3://site/themes/theme-init.js", d.Location(ScriptFile))

	root := Destination{Scheme: SchemeGCS, Bucket: "site"}
	assert.Equal(t, "theme-init.js", root.Key(ScriptFile))
}

func testArtifacts(t *testing.T) []Artifact {
	t.Helper()
	rendered, err := script.Render(domain.Props{}.Config())
	require.NoError(t, err)
	files, err := Artifacts(rendered, "<script>x</script>")
	require.NoError(t, err)
	return files
}

func TestArtifacts_Manifest(t *testing.T) {
	files := testArtifacts(t)
	require.Len(t, files, 5)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
		assert.NotEmpty(t, f.ContentType, f.Name)
	}
	assert.Equal(t, []string{ScriptFile, MinifiedScriptFile, HeadSnippetFile, script.TypesFilename, ManifestFile}, names)

	var m Manifest
	require.NoError(t, json.Unmarshal(files[4].Body, &m))
	assert.Len(t, m.Files, 4)
	assert.Equal(t, script.CSPHash(string(files[1].Body)), m.CSPHash)
}

func TestPublish_LocalDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "themes")
	files := testArtifacts(t)

	results, err := NewPublisher(config.PublishConfig{}, nil).Publish(context.Background(), dir, files)
	require.NoError(t, err)
	require.Len(t, results, len(files))

	for i, f := range files {
		assert.Equal(t, f.Name, results[i].Name)
		assert.Equal(t, filepath.Join(dir, f.Name), results[i].Location)
		got, err := os.ReadFile(filepath.Join(dir, f.Name))
		require.NoError(t, err)
		assert.Equal(t, f.Body, got)
	}
}

type recordingUploader struct {
	mu   sync.Mutex
	keys []string
	fail string
}

func (u *recordingUploader) Upload(_ context.Context, key string, a Artifact) error {
	if a.Name == u.fail {
		return errors.New("boom")
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.keys = append(u.keys, key)
	return nil
}

func TestPublish_ObjectStore(t *testing.T) {
	rec := &recordingUploader{}
	p := NewPublisher(config.PublishConfig{}, nil)
	var opened Destination
	p.open = func(_ context.Context, d Destination, _ config.PublishConfig) (Uploader, error) {
		opened = d
		return rec, nil
	}

	files := testArtifacts(t)
	results, err := p.Publish(context.Background(), "gs://site/themes", files)
	require.NoError(t, err)

	assert.Equal(t, Destination{Scheme: SchemeGCS, Bucket: "site", Prefix: "themes"}, opened)
	assert.Len(t, rec.keys, len(files))
	assert.Contains(t, rec.keys, "themes/"+MinifiedScriptFile)
	assert.Equal(t, "gs://site/themes/"+ScriptFile, results[0].Location)
}

func TestPublish_UploadFailure(t *testing.T) {
	p := NewPublisher(config.PublishConfig{}, nil)
	p.open = func(context.Context, Destination, config.PublishConfig) (Uploader, error) {
		return &recordingUploader{fail: HeadSnippetFile}, nil
	}

	_, err := p.Publish(context.Background(), "s3://site/themes", testArtifacts(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestPublish_MissingCredentials(t *testing.T) {
	p := NewPublisher(config.PublishConfig{}, nil)

	_, err := p.Publish(context.Background(), "s3://site/themes", testArtifacts(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KEY_ID")

	_, err = p.Publish(context.Background(), "az://web/themes", testArtifacts(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AZURE_ACCOUNT_NAME")
}
