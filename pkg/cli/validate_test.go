package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/rolodex/pkg/cli"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
	"github.com/secmon-lab/rolodex/pkg/repository/sqlite"
)

const schemaTOML = `
[[kind]]
name = "person"

  [[kind.field]]
  key = "field_1"
  name = "nickname"
  label = "Nickname"
  type = "text"

  [[kind.field]]
  key = "field_2"
  name = "colors"
  label = "Colors"
  type = "checkbox"

    [[kind.field.choice]]
    value = "red"
    label = "Red"

    [[kind.field.choice]]
    value = "blue"
    label = "Blue"

  [[kind.field]]
  key = "field_3"
  name = "teams"
  label = "Teams"
  type = "relationship"
  post_type = ["team"]
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func seedSQLite(t *testing.T, colors []any) string {
	t.Helper()
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "rolodex.db")

	repo, err := sqlite.New(ctx, dsn)
	gt.NoError(t, err).Required()
	defer func() { gt.NoError(t, repo.Close()) }()

	_, err = repo.Entity().Create(ctx, &model.Entity{
		Kind:   types.EntityKindPerson,
		Name:   "Alice",
		Values: map[string]any{"nickname": "Al", "colors": colors},
	})
	gt.NoError(t, err).Required()
	return dsn
}

func TestRun_ValidateCommand(t *testing.T) {
	t.Run("valid schema", func(t *testing.T) {
		path := writeTemp(t, "schema.toml", schemaTOML)
		err := cli.Run(context.Background(), []string{"rolodex", "validate", "--schema", path}, "test")
		gt.NoError(t, err)
	})

	t.Run("invalid schema", func(t *testing.T) {
		path := writeTemp(t, "schema.toml", `
[[kind]]
name = "person"
  [[kind.field]]
  name = "level"
  type = "select"
`)
		err := cli.Run(context.Background(), []string{"rolodex", "validate", "--schema", path}, "test")
		gt.Value(t, err).NotNil()
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.toml")
		err := cli.Run(context.Background(), []string{"rolodex", "validate", "--schema", path}, "test")
		gt.Value(t, err).NotNil()
	})

	t.Run("no schema flag", func(t *testing.T) {
		err := cli.Run(context.Background(), []string{"rolodex", "validate"}, "test")
		gt.Value(t, err).NotNil()
	})
}

func TestRun_ValidateCommand_CheckStore(t *testing.T) {
	path := writeTemp(t, "schema.toml", schemaTOML)

	t.Run("consistent store", func(t *testing.T) {
		dsn := seedSQLite(t, []any{"red"})
		err := cli.Run(context.Background(), []string{
			"rolodex", "validate",
			"--schema", path,
			"--check-store",
			"--repository-backend", "sqlite",
			"--sqlite-dsn", dsn,
		}, "test")
		gt.NoError(t, err)
	})

	t.Run("unknown choice is reported", func(t *testing.T) {
		dsn := seedSQLite(t, []any{"red", "purple"})
		err := cli.Run(context.Background(), []string{
			"rolodex", "validate",
			"--schema", path,
			"--check-store",
			"--repository-backend", "sqlite",
			"--sqlite-dsn", dsn,
		}, "test")
		gt.Value(t, err).NotNil()
		gt.String(t, err.Error()).Contains("1 issue")
	})
}
