package publish

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Destination schemes.
const (
	SchemeFile  = "file"
	SchemeS3    = "s3"
	SchemeGCS   = "gs"
	SchemeAzure = "az"
)

// Destination is a parsed publish target: a local directory or a bucket
// (container) plus key prefix.
type Destination struct {
	Scheme string
	Bucket string // empty for SchemeFile
	Prefix string // directory for SchemeFile, key prefix otherwise
}

// Key returns the object key or file path for name.
func (d Destination) Key(name string) string {
	if d.Scheme == SchemeFile {
		return filepath.Join(d.Prefix, name)
	}
	if d.Prefix == "" {
		return name
	}
	return path.Join(d.Prefix, name)
}

// Location renders the full address of name at d.
func (d Destination) Location(name string) string {
	if d.Scheme == SchemeFile {
		return d.Key(name)
	}
	return d.Scheme + "://" + d.Bucket + "/" + d.Key(name)
}

func (d Destination) String() string {
	if d.Scheme == SchemeFile {
		return d.Prefix
	}
	return d.Scheme + "://" + d.Bucket + "/" + d.Prefix
}

// ParseDestination parses a publish target.
//
// Supported formats:
//
//	./dist/themes            (plain path)
//	file:///var/www/themes
//	s3://bucket/prefix
//	gs://bucket/prefix
//	az://container/prefix
//	abfss://container@account.dfs.core.windows.net/prefix
//	https://account.blob.core.windows.net/container/prefix
func ParseDestination(dest string) (Destination, error) {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return Destination{}, fmt.Errorf("empty publish destination")
	}
	if !strings.Contains(dest, "://") {
		return Destination{Scheme: SchemeFile, Prefix: filepath.Clean(dest)}, nil
	}

	u, err := url.Parse(dest)
	if err != nil {
		return Destination{}, fmt.Errorf("parse destination %q: %w", dest, err)
	}

	switch u.Scheme {
	case SchemeFile:
		if u.Path == "" {
			return Destination{}, fmt.Errorf("empty path in destination %q", dest)
		}
		return Destination{Scheme: SchemeFile, Prefix: filepath.Clean(u.Path)}, nil
	case SchemeS3, SchemeGCS:
		return bucketDestination(u.Scheme, u.Host, u.Path, dest)
	case SchemeAzure, "abfss", "https":
		container, prefix, err := parseAzurePath(u, dest)
		if err != nil {
			return Destination{}, err
		}
		return bucketDestination(SchemeAzure, container, prefix, dest)
	default:
		return Destination{}, fmt.Errorf("unsupported destination scheme %q in %q", u.Scheme, dest)
	}
}

func bucketDestination(scheme, bucket, prefix, raw string) (Destination, error) {
	if bucket == "" {
		return Destination{}, fmt.Errorf("empty bucket in destination %q", raw)
	}
	return Destination{
		Scheme: scheme,
		Bucket: bucket,
		Prefix: strings.Trim(prefix, "/"),
	}, nil
}

// parseAzurePath extracts container and prefix from an Azure storage URI.
func parseAzurePath(u *url.URL, raw string) (container, prefix string, err error) {
	switch u.Scheme {
	case "abfss":
		// url.Parse reads "container" as userinfo and the account as host.
		if u.User == nil {
			return "", "", fmt.Errorf("abfss destination %q missing container@account component", raw)
		}
		return u.User.Username(), u.Path, nil
	case SchemeAzure:
		return u.Host, u.Path, nil
	default:
		if !strings.HasSuffix(u.Host, ".blob.core.windows.net") {
			return "", "", fmt.Errorf("unrecognized Azure HTTPS host %q in destination %q", u.Host, raw)
		}
		container, prefix, _ = strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		return container, prefix, nil
	}
}
