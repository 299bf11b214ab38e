package cli_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/rolodex/pkg/cli"
)

type report struct {
	Kind    string         `json:"kind"`
	State   map[string]any `json:"state"`
	Payload map[string]any `json:"payload"`
	Display []string       `json:"display"`
}

func TestRun_InspectCommand(t *testing.T) {
	schemaPath := writeTemp(t, "schema.toml", schemaTOML)
	valuesPath := writeTemp(t, "values.json", `{"nickname":"Bobby","colors":["red","green"],"teams":[9,"12"]}`)
	output := filepath.Join(t.TempDir(), "report.json")

	err := cli.Run(context.Background(), []string{
		"rolodex", "inspect",
		"--schema", schemaPath,
		"--values", valuesPath,
		"--output", output,
	}, "test")
	gt.NoError(t, err).Required()

	data, err := os.ReadFile(output)
	gt.NoError(t, err).Required()

	var got report
	gt.NoError(t, json.Unmarshal(data, &got)).Required()

	gt.Value(t, got.Kind).Equal("person")
	gt.Value(t, got.State["nickname"]).Equal(any("Bobby"))
	gt.Value(t, got.State["colors"]).Equal(any([]any{"red", "green"}))
	gt.Value(t, got.State["teams"]).Equal(any([]any{"9", "12"}))
	gt.Value(t, got.Payload["teams"]).Equal(any([]any{9.0, 12.0}))
	gt.Value(t, got.Display).Equal([]string{
		"Nickname: Bobby",
		"Colors: Red, green",
		"Teams: #9, #12",
	})
}

func TestRun_InspectCommand_Errors(t *testing.T) {
	schemaPath := writeTemp(t, "schema.toml", schemaTOML)
	valuesPath := writeTemp(t, "values.json", `{}`)

	t.Run("kind without schema", func(t *testing.T) {
		err := cli.Run(context.Background(), []string{
			"rolodex", "inspect", "--schema", schemaPath, "--values", valuesPath, "--kind", "team",
		}, "test")
		gt.Value(t, err).NotNil()
	})

	t.Run("broken values", func(t *testing.T) {
		broken := writeTemp(t, "broken.json", `{"nickname":`)
		err := cli.Run(context.Background(), []string{
			"rolodex", "inspect", "--schema", schemaPath, "--values", broken,
		}, "test")
		gt.Value(t, err).NotNil()
	})
}
