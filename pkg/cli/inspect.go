package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/cli/config"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	domainConfig "github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
	"github.com/secmon-lab/rolodex/pkg/usecase"
	"github.com/secmon-lab/rolodex/pkg/utils/logging"
	"github.com/secmon-lab/rolodex/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// inspectReport is what inspect prints for a set of raw values
type inspectReport struct {
	Kind    types.EntityKind `json:"kind"`
	State   model.EditState  `json:"state"`
	Payload map[string]any   `json:"payload"`
	Display []string         `json:"display"`
}

func cmdInspect() *cli.Command {
	var kind string
	var valuesPath string
	var outputPath string
	var schemaCfg config.Schema

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "kind",
			Aliases:     []string{"k"},
			Usage:       "Entity kind of the values (person or team)",
			Value:       types.EntityKindPerson.String(),
			Destination: &kind,
		},
		&cli.StringFlag{
			Name:        "values",
			Usage:       "JSON file holding the raw field values, - for stdin",
			Value:       "-",
			Destination: &valuesPath,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output file, - for stdout",
			Value:       "-",
			Destination: &outputPath,
		},
	}
	flags = append(flags, schemaCfg.Flags()...)

	return &cli.Command{
		Name:    "inspect",
		Aliases: []string{"i"},
		Usage:   "Show how raw field values are normalized, serialized and displayed",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if schemaCfg.Path() == "" {
				return goerr.Wrap(config.ErrMissingArgument, "--schema is required")
			}
			schemas, err := schemaCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load field schemas")
			}

			entityKind := types.EntityKind(kind)
			var schema *domainConfig.FieldSchema
			for _, s := range schemas {
				if s.Kind == entityKind {
					schema = s
					break
				}
			}
			if schema == nil {
				return goerr.Wrap(config.ErrInvalidConfig, "no schema declared for kind", goerr.V(config.KindKey, kind))
			}

			raw, err := readRawValues(valuesPath)
			if err != nil {
				return err
			}

			uc := usecase.New(nil)
			session := uc.Edit.NewSession(ctx, schema, entityKind, "", raw)
			report := inspectReport{
				Kind:    entityKind,
				State:   session.State(),
				Payload: session.Payload(ctx),
				Display: []string{},
			}
			for _, field := range uc.Display.RenderDisplay(ctx, schema, raw, nil) {
				report.Display = append(report.Display, field.String())
			}

			return writeReport(outputPath, &report)
		},
	}
}

func readRawValues(path string) (map[string]any, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		// #nosec G304 - path is provided by CLI flag
		f, err := os.Open(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open values file", goerr.V(config.ConfigPathKey, path))
		}
		defer safe.Close(context.Background(), f)
		r = f
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, goerr.Wrap(err, "failed to decode raw values", goerr.V(config.ConfigPathKey, path))
	}
	return raw, nil
}

func writeReport(path string, report *inspectReport) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return goerr.Wrap(err, "failed to encode report")
	}

	if path == "-" {
		if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
			return goerr.Wrap(err, "failed to write report")
		}
		return nil
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return goerr.Wrap(err, "failed to write report", goerr.V("path", path))
	}
	logging.Default().Info("Inspection report written", "path", path)
	return nil
}
