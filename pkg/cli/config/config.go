package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// SchemaFile is the TOML declaration of the field schemas of every entity kind
type SchemaFile struct {
	Kinds []Kind `toml:"kind"`
}

// Kind declares the custom fields of one entity kind
type Kind struct {
	Name   string  `toml:"name"`
	Fields []Field `toml:"field"`
}

// Field mirrors domain FieldDefinition in TOML
type Field struct {
	Key          string   `toml:"key"`
	Name         string   `toml:"name"`
	Label        string   `toml:"label"`
	Instructions string   `toml:"instructions"`
	Type         string   `toml:"type"`
	Required     bool     `toml:"required"`
	Min          *float64 `toml:"min"`
	Max          *float64 `toml:"max"`
	Step         *float64 `toml:"step"`
	Prepend      string   `toml:"prepend"`
	Append       string   `toml:"append"`
	AllowNull    bool     `toml:"allow_null"`
	PostType     []string `toml:"post_type"`
	UIOnText     string   `toml:"ui_on_text"`
	UIOffText    string   `toml:"ui_off_text"`
	Rows         int      `toml:"rows"`
	Layout       string   `toml:"layout"`
	ReturnFormat string   `toml:"return_format"`
	StorageShape string   `toml:"storage_shape"`
	Choices      []Choice `toml:"choice"`
}

// Choice is one ordered option of a select or checkbox field
type Choice struct {
	Value string `toml:"value"`
	Label string `toml:"label"`
}

// ToDomain converts the declaration into a domain schema
func (k *Kind) ToDomain() *domainConfig.FieldSchema {
	schema := &domainConfig.FieldSchema{
		Kind:   types.EntityKind(k.Name),
		Fields: make([]domainConfig.FieldDefinition, len(k.Fields)),
	}

	for i, f := range k.Fields {
		postTypes := make([]types.EntityKind, len(f.PostType))
		for j, pt := range f.PostType {
			postTypes[j] = types.EntityKind(pt)
		}

		var choices domainConfig.Choices
		for _, c := range f.Choices {
			label := c.Label
			if label == "" {
				label = c.Value
			}
			choices = append(choices, domainConfig.Choice{Value: c.Value, Label: label})
		}

		key := f.Key
		if key == "" {
			key = f.Name
		}

		schema.Fields[i] = domainConfig.FieldDefinition{
			Key:          key,
			Name:         f.Name,
			Label:        f.Label,
			Instructions: f.Instructions,
			Type:         types.FieldType(f.Type),
			Required:     f.Required,
			Min:          f.Min,
			Max:          f.Max,
			Step:         f.Step,
			Prepend:      f.Prepend,
			Append:       f.Append,
			Choices:      choices,
			AllowNull:    f.AllowNull,
			PostType:     postTypes,
			UIOnText:     f.UIOnText,
			UIOffText:    f.UIOffText,
			Rows:         f.Rows,
			Layout:       f.Layout,
			ReturnFormat: f.ReturnFormat,
			StorageShape: domainConfig.StorageShape(f.StorageShape),
		}
	}
	return schema
}

// LoadSchemas loads and validates the field schemas declared in a TOML file
func LoadSchemas(path string) ([]*domainConfig.FieldSchema, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "schema file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read schema file", goerr.V(ConfigPathKey, path))
	}

	schemas, err := ParseSchemas(data)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid schema file", goerr.V(ConfigPathKey, path))
	}
	return schemas, nil
}

// ParseSchemas decodes and validates a TOML schema declaration
func ParseSchemas(data []byte) ([]*domainConfig.FieldSchema, error) {
	var file SchemaFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML", goerr.V("cause", err.Error()))
	}

	seen := make(map[string]bool)
	schemas := make([]*domainConfig.FieldSchema, 0, len(file.Kinds))
	for i, k := range file.Kinds {
		if k.Name == "" {
			return nil, goerr.Wrap(ErrMissingName, "kind name is required", goerr.V(KindIndexKey, i))
		}
		if seen[k.Name] {
			return nil, goerr.Wrap(ErrDuplicateKind, "kind declared twice", goerr.V(KindKey, k.Name))
		}
		seen[k.Name] = true

		schema := k.ToDomain()
		if err := schema.Validate(); err != nil {
			return nil, goerr.Wrap(err, "field schema validation failed", goerr.V(KindKey, k.Name))
		}
		schemas = append(schemas, schema)
	}
	return schemas, nil
}

// Schema holds CLI flags for the field schema file
type Schema struct {
	path string
}

func (s *Schema) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "schema",
			Aliases:     []string{"s"},
			Usage:       "Field schema TOML file",
			Category:    "Schema",
			Sources:     cli.EnvVars("ROLODEX_SCHEMA"),
			Destination: &s.path,
		},
	}
}

// Path returns the configured schema file path
func (s *Schema) Path() string {
	return s.path
}

// Configure loads the schema file. It returns nil when no file is configured.
func (s *Schema) Configure() ([]*domainConfig.FieldSchema, error) {
	if s.path == "" {
		return nil, nil
	}
	return LoadSchemas(s.path)
}
