package publish

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"google.golang.org/api/option"

	"astro-themes/internal/config"
)

// Uploader writes one object to a destination.
type Uploader interface {
	Upload(ctx context.Context, key string, a Artifact) error
}

// closer is implemented by uploaders that hold a client.
type closer interface {
	Close() error
}

// openUploader builds the uploader for dest's scheme.
func openUploader(ctx context.Context, dest Destination, cfg config.PublishConfig) (Uploader, error) {
	switch dest.Scheme {
	case SchemeFile:
		return localUploader{}, nil
	case SchemeS3:
		return newS3Uploader(dest, cfg)
	case SchemeGCS:
		return newGCSUploader(ctx, dest, cfg)
	case SchemeAzure:
		return newAzureUploader(dest, cfg)
	default:
		return nil, fmt.Errorf("unsupported destination scheme %q", dest.Scheme)
	}
}

// localUploader writes artifacts into a directory tree.
type localUploader struct{}

func (localUploader) Upload(_ context.Context, key string, a Artifact) error {
	if err := os.MkdirAll(filepath.Dir(key), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", key, err)
	}
	if err := os.WriteFile(key, a.Body, 0o644); err != nil { //nolint:gosec // published assets are public
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// s3Uploader puts objects into S3-compatible storage with path-style
// addressing.
type s3Uploader struct {
	client *s3.Client
	bucket string
}

func newS3Uploader(dest Destination, cfg config.PublishConfig) (*s3Uploader, error) {
	if !cfg.HasS3Config() {
		return nil, fmt.Errorf("s3:// publishing requires KEY_ID, SECRET, ENDPOINT and REGION")
	}
	endpoint := *cfg.S3Endpoint
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	client := s3.New(s3.Options{
		Region: *cfg.S3Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			*cfg.S3KeyID, *cfg.S3Secret, "",
		),
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
	})
	return &s3Uploader{client: client, bucket: dest.Bucket}, nil
}

func (u *s3Uploader) Upload(ctx context.Context, key string, a Artifact) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(a.Body),
		ContentType:  aws.String(a.ContentType),
		CacheControl: aws.String(a.CacheControl),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", u.bucket, key, err)
	}
	return nil
}

// gcsUploader writes objects to Google Cloud Storage. Without a key file
// it uses application default credentials.
type gcsUploader struct {
	client *storage.Client
	bucket string
}

func newGCSUploader(ctx context.Context, dest Destination, cfg config.PublishConfig) (*gcsUploader, error) {
	var opts []option.ClientOption
	if cfg.GCSKeyFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, cfg.GCSKeyFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &gcsUploader{client: client, bucket: dest.Bucket}, nil
}

func (u *gcsUploader) Upload(ctx context.Context, key string, a Artifact) error {
	w := u.client.Bucket(u.bucket).Object(key).NewWriter(ctx)
	w.ContentType = a.ContentType
	w.CacheControl = a.CacheControl
	if _, err := w.Write(a.Body); err != nil {
		_ = w.Close()
		return fmt.Errorf("write gs://%s/%s: %w", u.bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize gs://%s/%s: %w", u.bucket, key, err)
	}
	return nil
}

func (u *gcsUploader) Close() error { return u.client.Close() }

// azureUploader writes block blobs with shared-key credentials.
type azureUploader struct {
	client    *azblob.Client
	container string
}

func newAzureUploader(dest Destination, cfg config.PublishConfig) (*azureUploader, error) {
	if !cfg.HasAzureConfig() {
		return nil, fmt.Errorf("az:// publishing requires AZURE_ACCOUNT_NAME and AZURE_ACCOUNT_KEY")
	}
	cred, err := azblob.NewSharedKeyCredential(cfg.AzureAccountName, cfg.AzureAccountKey)
	if err != nil {
		return nil, fmt.Errorf("create shared key credential: %w", err)
	}
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", cfg.AzureAccountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}
	return &azureUploader{client: client, container: dest.Bucket}, nil
}

func (u *azureUploader) Upload(ctx context.Context, key string, a Artifact) error {
	contentType := a.ContentType
	cacheControl := a.CacheControl
	_, err := u.client.UploadBuffer(ctx, u.container, key, a.Body, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType:  &contentType,
			BlobCacheControl: &cacheControl,
		},
	})
	if err != nil {
		return fmt.Errorf("upload az://%s/%s: %w", u.container, key, err)
	}
	return nil
}
