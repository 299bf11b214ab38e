package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/cli/config"
	httpctrl "github.com/secmon-lab/rolodex/pkg/controller/http"
	domainConfig "github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
	"github.com/secmon-lab/rolodex/pkg/service/storage"
	"github.com/secmon-lab/rolodex/pkg/service/worker"
	"github.com/secmon-lab/rolodex/pkg/usecase"
	"github.com/secmon-lab/rolodex/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var maxUploadSize int64
	var searchLimit int
	var debounce time.Duration
	var resolveConcurrency int
	var schemaReload time.Duration
	var schemaCfg config.Schema
	var repoCfg config.Repository
	var storageCfg config.Storage

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("ROLODEX_ADDR"),
			Destination: &addr,
		},
		&cli.Int64Flag{
			Name:        "max-upload-size",
			Usage:       "Maximum attachment size in bytes",
			Value:       httpctrl.DefaultMaxUploadSize,
			Sources:     cli.EnvVars("ROLODEX_MAX_UPLOAD_SIZE"),
			Destination: &maxUploadSize,
		},
		&cli.IntFlag{
			Name:        "search-limit",
			Usage:       "Maximum number of server search results per kind",
			Value:       usecase.DefaultSearchLimit,
			Category:    "Engine",
			Sources:     cli.EnvVars("ROLODEX_SEARCH_LIMIT"),
			Destination: &searchLimit,
		},
		&cli.DurationFlag{
			Name:        "search-debounce",
			Usage:       "Delay before a type-ahead query reaches the backend",
			Value:       usecase.DefaultDebounce,
			Category:    "Engine",
			Sources:     cli.EnvVars("ROLODEX_SEARCH_DEBOUNCE"),
			Destination: &debounce,
		},
		&cli.IntFlag{
			Name:        "resolve-concurrency",
			Usage:       "Maximum number of concurrent reference lookups",
			Value:       usecase.DefaultResolveConcurrency,
			Category:    "Engine",
			Sources:     cli.EnvVars("ROLODEX_RESOLVE_CONCURRENCY"),
			Destination: &resolveConcurrency,
		},
		&cli.DurationFlag{
			Name:        "schema-reload-interval",
			Usage:       "Reload the schema file at this interval (0 disables)",
			Category:    "Schema",
			Sources:     cli.EnvVars("ROLODEX_SCHEMA_RELOAD_INTERVAL"),
			Destination: &schemaReload,
		},
	}

	flags = append(flags, schemaCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("Serve configuration",
				"repository", &repoCfg,
				"storage", &storageCfg,
				"schema", schemaCfg.Path(),
			)

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uploader, closeStorage, err := storageCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize attachment storage")
			}
			defer closeStorage()

			ucOpts := []usecase.Option{
				usecase.WithSearchLimit(searchLimit),
				usecase.WithDebounce(debounce),
				usecase.WithResolveConcurrency(resolveConcurrency),
			}
			if uploader != nil {
				ucOpts = append(ucOpts, usecase.WithUploader(uploader))
			}
			uc := usecase.New(repo, ucOpts...)

			// Schemas declared in the file replace the stored ones
			var schemaWorker *worker.SchemaSyncWorker
			if schemaCfg.Path() != "" {
				schemaWorker = worker.NewSchemaSyncWorker(repo,
					func() ([]*domainConfig.FieldSchema, error) { return schemaCfg.Configure() },
					schemaReload,
					worker.WithOnChange(func(kind types.EntityKind) { uc.Schema.Invalidate(kind) }),
				)
				if _, err := schemaWorker.Sync(ctx); err != nil {
					return goerr.Wrap(err, "failed to load field schemas")
				}
				schemaWorker.Start(ctx)
			} else {
				logging.Default().Warn("No schema file configured, using schemas already in the repository")
			}

			httpOpts := []httpctrl.Options{
				httpctrl.WithMaxUploadSize(maxUploadSize),
			}
			if mem, ok := uploader.(*storage.Memory); ok {
				httpOpts = append(httpOpts, httpctrl.WithFileStore(mem))
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				if schemaWorker != nil {
					schemaWorker.Stop()
				}
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if schemaWorker != nil {
					schemaWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
