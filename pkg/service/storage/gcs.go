package storage

import (
	"context"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/interfaces"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"google.golang.org/api/option"
)

// DefaultPublicBaseURL is the public endpoint of Cloud Storage objects
const DefaultPublicBaseURL = "https://storage.googleapis.com"

// GCS uploads attachments to a Cloud Storage bucket. The attachment id is the object's uuid.
type GCS struct {
	client  *storage.Client
	bucket  string
	prefix  string
	baseURL string
}

var _ interfaces.Uploader = &GCS{}

type gcsConfig struct {
	prefix          string
	baseURL         string
	credentialsFile string
}

// GCSOption configures a GCS uploader
type GCSOption func(*gcsConfig)

// WithObjectPrefix puts every object under prefix
func WithObjectPrefix(prefix string) GCSOption {
	return func(c *gcsConfig) {
		c.prefix = strings.Trim(prefix, "/")
	}
}

// WithPublicBaseURL overrides the URL objects are served from, e.g. a CDN in front of the bucket
func WithPublicBaseURL(baseURL string) GCSOption {
	return func(c *gcsConfig) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithCredentialsFile authenticates with a service account key instead of the default credentials
func WithCredentialsFile(path string) GCSOption {
	return func(c *gcsConfig) {
		c.credentialsFile = path
	}
}

func NewGCS(ctx context.Context, bucket string, opts ...GCSOption) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	cfg := &gcsConfig{baseURL: DefaultPublicBaseURL}
	for _, opt := range opts {
		opt(cfg)
	}

	var clientOpts []option.ClientOption
	if cfg.credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.credentialsFile))
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V(BucketKey, bucket))
	}

	return &GCS{
		client:  client,
		bucket:  bucket,
		prefix:  cfg.prefix,
		baseURL: cfg.baseURL,
	}, nil
}

func (g *GCS) UploadFile(ctx context.Context, data []byte, filename string) (*model.Attachment, error) {
	if err := checkUpload(data, filename); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	name := objectName(g.prefix, id, filename)

	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType(filename, data)
	w.Metadata = map[string]string{"filename": filename}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, goerr.Wrap(err, "failed to write object",
			goerr.V(BucketKey, g.bucket),
			goerr.V(ObjectKey, name))
	}
	if err := w.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to finalize object",
			goerr.V(BucketKey, g.bucket),
			goerr.V(ObjectKey, name))
	}

	return &model.Attachment{
		ID:  id,
		URL: g.baseURL + "/" + g.bucket + "/" + name,
	}, nil
}

// Close releases the storage client
func (g *GCS) Close() error {
	return g.client.Close()
}

func objectName(prefix, id, filename string) string {
	return path.Join(prefix, id+strings.ToLower(path.Ext(filename)))
}
