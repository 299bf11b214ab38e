package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

// Validate checks the schema is usable by the edit engine
func (s *FieldSchema) Validate() error {
	if err := s.Kind.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidSchema, "unknown entity kind", goerr.V(KindKey, s.Kind))
	}

	keys := make(map[string]bool)
	names := make(map[string]bool)
	for i, fd := range s.Fields {
		if err := fd.Validate(); err != nil {
			return goerr.Wrap(err, "invalid field definition",
				goerr.V(KindKey, s.Kind),
				goerr.V(FieldIndexKey, i))
		}

		key := fd.Key
		if key == "" {
			key = fd.Name
		}
		if keys[key] {
			return goerr.Wrap(ErrDuplicateFieldKey, "field key must be unique within a kind",
				goerr.V(KindKey, s.Kind),
				goerr.V(FieldKeyKey, key))
		}
		keys[key] = true

		if names[fd.Name] {
			return goerr.Wrap(ErrDuplicateFieldName, "field name must be unique within a kind",
				goerr.V(KindKey, s.Kind),
				goerr.V(FieldNameKey, fd.Name))
		}
		names[fd.Name] = true
	}

	return nil
}

// Validate checks a single field definition
func (d FieldDefinition) Validate() error {
	if d.Name == "" {
		return goerr.Wrap(ErrMissingName, "field has no name", goerr.V(FieldKeyKey, d.Key))
	}
	if !d.Type.IsValid() {
		return goerr.Wrap(ErrInvalidFieldType, "unsupported field type",
			goerr.V(FieldNameKey, d.Name),
			goerr.V(FieldTypeKey, d.Type))
	}

	switch d.Type {
	case types.FieldTypeSelect, types.FieldTypeCheckbox:
		if len(d.Choices) == 0 {
			return goerr.Wrap(ErrMissingChoices, "no choices declared",
				goerr.V(FieldNameKey, d.Name),
				goerr.V(FieldTypeKey, d.Type))
		}
		seen := make(map[string]bool)
		for _, c := range d.Choices {
			if seen[c.Value] {
				return goerr.Wrap(ErrDuplicateChoice, "choice value declared twice",
					goerr.V(FieldNameKey, d.Name),
					goerr.V(ChoiceValueKey, c.Value))
			}
			seen[c.Value] = true
		}

	case types.FieldTypeNumber:
		if d.Min != nil && d.Max != nil && *d.Min > *d.Max {
			return goerr.Wrap(ErrInvalidRange, "min is greater than max",
				goerr.V(FieldNameKey, d.Name),
				goerr.V("min", *d.Min),
				goerr.V("max", *d.Max))
		}
		if d.Step != nil && *d.Step <= 0 {
			return goerr.Wrap(ErrInvalidRange, "step must be positive",
				goerr.V(FieldNameKey, d.Name),
				goerr.V("step", *d.Step))
		}

	case types.FieldTypeRelationship:
		for _, kind := range d.PostType {
			if err := kind.Validate(); err != nil {
				return goerr.Wrap(ErrInvalidPostType, "relationship targets an unknown kind",
					goerr.V(FieldNameKey, d.Name),
					goerr.V(PostTypeKey, kind))
			}
		}
		if d.Max != nil && *d.Max < 0 {
			return goerr.Wrap(ErrInvalidRange, "relationship max must not be negative",
				goerr.V(FieldNameKey, d.Name))
		}
	}

	return nil
}
