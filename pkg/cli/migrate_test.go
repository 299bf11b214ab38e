package cli_test

import (
	"testing"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/rolodex/pkg/cli"
)

func TestGetIndexConfig(t *testing.T) {
	t.Run("default collection", func(t *testing.T) {
		cfg := cli.GetIndexConfig("")
		gt.Array(t, cfg.Collections).Length(1).Required()
		gt.Value(t, cfg.Collections[0].Name).Equal("entities")

		indexes := cfg.Collections[0].Indexes
		gt.Array(t, indexes).Length(2).Required()
		gt.Value(t, indexes[0].Fields).Equal([]fireconf.IndexField{
			{Path: "kind", Order: fireconf.OrderAscending},
			{Path: "name_lower", Order: fireconf.OrderAscending},
		})
		gt.Value(t, indexes[1].Fields[1].Path).Equal("created_at")
	})

	t.Run("prefixed collection", func(t *testing.T) {
		cfg := cli.GetIndexConfig("staging")
		gt.Value(t, cfg.Collections[0].Name).Equal("staging_entities")
	})
}
