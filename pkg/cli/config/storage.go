package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/interfaces"
	"github.com/secmon-lab/rolodex/pkg/service/storage"
	"github.com/secmon-lab/rolodex/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Storage holds CLI flags for the attachment upload backend
type Storage struct {
	backend         string
	bucket          string
	prefix          string
	publicBaseURL   string
	credentialsFile string `masq:"secret"`
}

// Flags returns CLI flags for attachment storage
func (s *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Usage:       "Attachment storage backend (gcs, memory or none)",
			Value:       "memory",
			Category:    "Storage",
			Sources:     cli.EnvVars("ROLODEX_STORAGE_BACKEND"),
			Destination: &s.backend,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket for attachments (required when using gcs backend)",
			Category:    "Storage",
			Sources:     cli.EnvVars("ROLODEX_GCS_BUCKET"),
			Destination: &s.bucket,
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix for attachments",
			Category:    "Storage",
			Sources:     cli.EnvVars("ROLODEX_GCS_PREFIX"),
			Destination: &s.prefix,
		},
		&cli.StringFlag{
			Name:        "storage-public-url",
			Usage:       "Base URL of uploaded attachments",
			Category:    "Storage",
			Sources:     cli.EnvVars("ROLODEX_STORAGE_PUBLIC_URL"),
			Destination: &s.publicBaseURL,
		},
		&cli.StringFlag{
			Name:        "gcs-credentials-file",
			Usage:       "Service account key file for Cloud Storage",
			Category:    "Storage",
			Sources:     cli.EnvVars("ROLODEX_GCS_CREDENTIALS_FILE"),
			Destination: &s.credentialsFile,
		},
	}
}

// Backend returns the configured storage backend
func (s *Storage) Backend() string {
	return s.backend
}

func (s *Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", s.backend),
		slog.String("bucket", s.bucket),
		slog.String("prefix", s.prefix),
		slog.String("public_base_url", s.publicBaseURL),
		slog.Bool("credentials_file", s.credentialsFile != ""),
	)
}

// Configure returns the uploader of the configured backend, or nil for "none". The
// returned closer must be called on shutdown.
func (s *Storage) Configure(ctx context.Context) (interfaces.Uploader, func(), error) {
	switch s.backend {
	case "gcs":
		if s.bucket == "" {
			return nil, nil, goerr.Wrap(ErrMissingArgument, "gcs-bucket is required when using gcs backend")
		}
		var opts []storage.GCSOption
		if s.prefix != "" {
			opts = append(opts, storage.WithObjectPrefix(s.prefix))
		}
		if s.publicBaseURL != "" {
			opts = append(opts, storage.WithPublicBaseURL(s.publicBaseURL))
		}
		if s.credentialsFile != "" {
			opts = append(opts, storage.WithCredentialsFile(s.credentialsFile))
		}

		gcs, err := storage.NewGCS(ctx, s.bucket, opts...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize attachment storage")
		}
		logging.Default().Info("Using Cloud Storage for attachments", "bucket", s.bucket, "prefix", s.prefix)
		return gcs, func() {
			if err := gcs.Close(); err != nil {
				logging.Default().Warn("failed to close storage client", "error", err)
			}
		}, nil

	case "memory":
		baseURL := s.publicBaseURL
		if baseURL == "" {
			baseURL = "/files"
		}
		logging.Default().Info("Using in-memory attachment storage (development mode)", "base_url", baseURL)
		return storage.NewMemory(baseURL), func() {}, nil

	case "none", "":
		logging.Default().Info("Attachment uploads are disabled")
		return nil, func() {}, nil

	default:
		return nil, nil, goerr.Wrap(ErrInvalidBackend, "invalid storage backend", goerr.V(BackendKey, s.backend))
	}
}
