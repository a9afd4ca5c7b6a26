// Package publish writes the theme artifacts to a local directory or an
// object store so static deploys can host or inline them.
package publish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"astro-themes/internal/config"
	"astro-themes/internal/service/script"
)

// Artifact file names.
const (
	ScriptFile         = "theme-init.js"
	MinifiedScriptFile = "theme-init.min.js"
	HeadSnippetFile    = "head-snippet.html"
	ManifestFile       = "manifest.json"
)

const defaultConcurrency = 4

// Artifact is one published file.
type Artifact struct {
	Name         string
	ContentType  string
	CacheControl string
	Body         []byte
}

// Manifest lists the published files and the CSP source of the inline
// script.
type Manifest struct {
	CSPHash string            `json:"cspHash"`
	Files   map[string]string `json:"files"` // name -> hex sha256
}

// Artifacts assembles the publishable files for a rendered script.
func Artifacts(rendered script.Script, headSnippet string) ([]Artifact, error) {
	files := []Artifact{
		{Name: ScriptFile, ContentType: "text/javascript; charset=utf-8", Body: []byte(rendered.Source)},
		{Name: MinifiedScriptFile, ContentType: "text/javascript; charset=utf-8", Body: []byte(rendered.Minified)},
		{Name: HeadSnippetFile, ContentType: "text/html; charset=utf-8", Body: []byte(headSnippet)},
		{Name: script.TypesFilename, ContentType: "application/typescript; charset=utf-8", Body: []byte(script.TypeDeclaration)},
	}
	m := Manifest{CSPHash: script.CSPHash(rendered.Minified), Files: make(map[string]string, len(files))}
	for i := range files {
		sum := sha256.Sum256(files[i].Body)
		m.Files[files[i].Name] = hex.EncodeToString(sum[:])
		files[i].CacheControl = "no-cache"
	}
	body, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	files = append(files, Artifact{
		Name:         ManifestFile,
		ContentType:  "application/json",
		CacheControl: "no-cache",
		Body:         body,
	})
	return files, nil
}

// Result reports one uploaded artifact.
type Result struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Bytes    int    `json:"bytes"`
}

// Publisher uploads artifacts concurrently.
type Publisher struct {
	cfg         config.PublishConfig
	logger      *slog.Logger
	concurrency int
	open        func(context.Context, Destination, config.PublishConfig) (Uploader, error)
}

// NewPublisher creates a Publisher using cfg for object-store credentials.
func NewPublisher(cfg config.PublishConfig, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Publisher{
		cfg:         cfg,
		logger:      logger,
		concurrency: defaultConcurrency,
		open:        openUploader,
	}
}

// Publish writes every artifact under dest. Results follow the order of
// artifacts. The first failed upload cancels the rest.
func (p *Publisher) Publish(ctx context.Context, dest string, artifacts []Artifact) ([]Result, error) {
	d, err := ParseDestination(dest)
	if err != nil {
		return nil, err
	}
	up, err := p.open(ctx, d, p.cfg)
	if err != nil {
		return nil, err
	}
	if c, ok := up.(closer); ok {
		defer c.Close() //nolint:errcheck
	}

	start := time.Now()
	results := make([]Result, len(artifacts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, a := range artifacts {
		g.Go(func() error {
			if err := up.Upload(gctx, d.Key(a.Name), a); err != nil {
				return err
			}
			results[i] = Result{Name: a.Name, Location: d.Location(a.Name), Bytes: len(a.Body)}
			p.logger.Debug("artifact published", "name", a.Name, "location", results[i].Location)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("publish to %s: %w", d, err)
	}

	p.logger.Info("artifacts published",
		"destination", d.String(),
		"count", len(artifacts),
		"duration_ms", time.Since(start).Milliseconds())
	return results, nil
}
