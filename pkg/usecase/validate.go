package usecase

import (
	"context"
	"fmt"
	"reflect"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

// ValidationIssue is one stored value that does not fit its field schema
type ValidationIssue struct {
	Kind     types.EntityKind
	EntityID types.EntityID
	Field    string
	Message  string
	Actual   string
}

// ValidationResult holds the results of a store consistency check
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasIssues returns true if there are any validation issues
func (r *ValidationResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// AddIssue adds a validation issue to the result
func (r *ValidationResult) AddIssue(issue ValidationIssue) {
	r.Issues = append(r.Issues, issue)
}

// ValidateStore checks every stored entity of the schemas' kinds. A value is reported when
// it cannot be normalized, when a choice value is outside the declared choices, or when it
// breaks a field constraint. It does NOT modify any data.
func (uc *UseCases) ValidateStore(ctx context.Context, schemas []*config.FieldSchema) (*ValidationResult, error) {
	if uc.repo == nil {
		return nil, goerr.New("no repository configured")
	}

	result := &ValidationResult{}
	for _, schema := range schemas {
		entities, err := uc.repo.Entity().List(ctx, schema.Kind)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list entities",
				goerr.V(model.EntityKindKey, schema.Kind))
		}

		validator := model.NewFieldValidator(schema)
		for _, entity := range entities {
			for _, fd := range schema.Fields {
				raw, ok := entity.Values[fd.Name]
				if !ok {
					continue
				}
				issue := ValidationIssue{
					Kind:     schema.Kind,
					EntityID: entity.ID,
					Field:    fd.Name,
					Actual:   fmt.Sprint(raw),
				}

				c, err := uc.registry.Get(fd.Type)
				if err != nil {
					issue.Message = "no codec for field type"
					result.AddIssue(issue)
					continue
				}

				value := editDefault(ctx, uc.registry, fd, raw)
				if meaningful(raw) && reflect.DeepEqual(value, c.Empty(fd)) {
					issue.Message = "stored value cannot be normalized"
					result.AddIssue(issue)
					continue
				}

				if v := unknownChoice(fd, value); v != "" {
					issue.Message = fmt.Sprintf("value %q is not among the choices", v)
					result.AddIssue(issue)
					continue
				}

				if err := validator.ValidateField(fd.Name, value); err != nil {
					issue.Message = err.Error()
					result.AddIssue(issue)
				}
			}
		}
	}

	return result, nil
}

// unknownChoice returns the first select or checkbox value missing from fd.Choices
func unknownChoice(fd config.FieldDefinition, value any) string {
	switch v := value.(type) {
	case string:
		if fd.Type == types.FieldTypeSelect && v != "" && !fd.Choices.Has(v) {
			return v
		}
	case []string:
		for _, s := range v {
			if !fd.Choices.Has(s) {
				return s
			}
		}
	}
	return ""
}
