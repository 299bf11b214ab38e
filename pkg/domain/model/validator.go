package model

import (
	"fmt"
	"net/mail"
	"net/url"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

// FieldValidator checks an EditState against the constraints of a field schema before it
// is submitted. Values of choice fields outside the declared choices are accepted so that
// legacy data can be saved back unchanged.
type FieldValidator struct {
	schema *config.FieldSchema
}

// NewFieldValidator creates a new FieldValidator with the given schema
func NewFieldValidator(schema *config.FieldSchema) *FieldValidator {
	return &FieldValidator{
		schema: schema,
	}
}

// ValidateEditState returns the first violation in schema order
func (v *FieldValidator) ValidateEditState(state EditState) error {
	if v.schema == nil {
		return nil
	}

	for _, fd := range v.schema.Fields {
		if err := v.validateField(fd, state[fd.Name]); err != nil {
			return goerr.Wrap(err, "field validation failed",
				goerr.V(FieldNameKey, fd.Name),
				goerr.V(FieldTypeKey, fd.Type))
		}
	}
	return nil
}

// ValidateField checks one field value
func (v *FieldValidator) ValidateField(name string, value any) error {
	fd, ok := v.schema.Field(name)
	if !ok {
		return goerr.Wrap(ErrUnknownField, "field not found in schema", goerr.V(FieldNameKey, name))
	}
	return v.validateField(fd, value)
}

func (v *FieldValidator) validateField(fd config.FieldDefinition, value any) error {
	if isBlank(value) {
		if fd.Required {
			return goerr.Wrap(ErrMissingRequired, "required field not provided",
				goerr.V(FieldNameKey, fd.Name))
		}
		return nil
	}

	check, err := types.Visit[func(config.FieldDefinition, any) error](fd.Type, checkers{})
	if err != nil {
		return goerr.Wrap(ErrInvalidFieldType, "unsupported field type",
			goerr.V(FieldTypeKey, fd.Type))
	}
	return check(fd, value)
}

// isBlank reports whether an edit value means "unset"
func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []types.EntityID:
		return len(v) == 0
	case *AttachmentRef:
		return v == nil || (v.ID == "" && v.URL == "")
	case Link:
		return strings.TrimSpace(v.URL) == ""
	default:
		return false
	}
}

type checkers struct{}

type checkFunc = func(config.FieldDefinition, any) error

func noCheck(config.FieldDefinition, any) error { return nil }

func (checkers) Text() checkFunc        { return noCheck }
func (checkers) Textarea() checkFunc    { return noCheck }
func (checkers) Date() checkFunc        { return noCheck }
func (checkers) Select() checkFunc      { return noCheck }
func (checkers) Checkbox() checkFunc    { return noCheck }
func (checkers) Image() checkFunc       { return noCheck }
func (checkers) File() checkFunc        { return noCheck }
func (checkers) ColorPicker() checkFunc { return noCheck }

// TrueFalse is never blank, 0 is a valid answer, so required has no effect
func (checkers) TrueFalse() checkFunc { return noCheck }

func (checkers) Email() checkFunc {
	return func(fd config.FieldDefinition, value any) error {
		s, _ := value.(string)
		if _, err := mail.ParseAddress(strings.TrimSpace(s)); err != nil {
			return goerr.Wrap(ErrInvalidFormat, "invalid email address",
				goerr.V(FieldNameKey, fd.Name),
				goerr.V(FieldValueKey, s))
		}
		return nil
	}
}

func (checkers) URL() checkFunc {
	return func(fd config.FieldDefinition, value any) error {
		s, _ := value.(string)
		return validateURL(fd, s)
	}
}

func (checkers) Link() checkFunc {
	return func(fd config.FieldDefinition, value any) error {
		link, _ := value.(Link)
		return validateURL(fd, link.URL)
	}
}

func validateURL(fd config.FieldDefinition, s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return goerr.Wrap(ErrInvalidFormat, "invalid URL",
			goerr.V(FieldNameKey, fd.Name),
			goerr.V(FieldValueKey, s))
	}
	return nil
}

func (checkers) Number() checkFunc {
	return func(fd config.FieldDefinition, value any) error {
		s := strings.TrimSpace(fmt.Sprint(value))
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return goerr.Wrap(ErrInvalidNumber, "value must be number",
				goerr.V(FieldNameKey, fd.Name),
				goerr.V(FieldValueKey, s))
		}
		if fd.Min != nil && n < *fd.Min {
			return goerr.Wrap(ErrOutOfRange, "number below minimum",
				goerr.V(FieldNameKey, fd.Name),
				goerr.V(FieldValueKey, n),
				goerr.V(MinKey, *fd.Min))
		}
		if fd.Max != nil && n > *fd.Max {
			return goerr.Wrap(ErrOutOfRange, "number above maximum",
				goerr.V(FieldNameKey, fd.Name),
				goerr.V(FieldValueKey, n),
				goerr.V(MaxKey, *fd.Max))
		}
		return nil
	}
}

func (checkers) Relationship() checkFunc {
	return func(fd config.FieldDefinition, value any) error {
		ids, _ := value.([]types.EntityID)
		if limit := fd.MaxItems(); limit > 0 && len(ids) > limit {
			return goerr.Wrap(ErrTooManyItems, "too many references selected",
				goerr.V(FieldNameKey, fd.Name),
				goerr.V(CountKey, len(ids)),
				goerr.V(MaxKey, limit))
		}
		return nil
	}
}
