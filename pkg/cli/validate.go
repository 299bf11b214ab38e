package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/cli/config"
	"github.com/secmon-lab/rolodex/pkg/usecase"
	"github.com/secmon-lab/rolodex/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var schemaCfg config.Schema
	var repoCfg config.Repository
	var checkStore bool

	var flags []cli.Flag
	flags = append(flags, schemaCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "check-store",
		Usage:       "Also check stored values against the schemas",
		Sources:     cli.EnvVars("ROLODEX_CHECK_STORE"),
		Destination: &checkStore,
	})

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the schema file and optionally check stored values",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if schemaCfg.Path() == "" {
				return goerr.Wrap(config.ErrMissingArgument, "--schema is required")
			}

			// Step 1: Load and validate the schema file
			schemas, err := schemaCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "schema validation failed")
			}

			logger.Info("Schema validation passed", "kind_count", len(schemas))
			for _, s := range schemas {
				logger.Info("Kind validated",
					"kind", s.Kind,
					"field_count", len(s.Fields),
				)
			}

			if !checkStore {
				return nil
			}

			// Step 2: Check stored values
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo)
			result, err := uc.ValidateStore(ctx, schemas)
			if err != nil {
				return goerr.Wrap(err, "store consistency check failed")
			}

			if result.HasIssues() {
				for _, issue := range result.Issues {
					logger.Warn("Stored value issue found",
						"kind", issue.Kind,
						"entity_id", issue.EntityID,
						"field", issue.Field,
						"message", issue.Message,
						"actual", issue.Actual,
					)
				}

				return fmt.Errorf("store consistency check found %d issue(s)", len(result.Issues))
			}

			logger.Info("Store consistency check passed")
			return nil
		},
	}
}
