package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for schema validation
var (
	ErrInvalidSchema      = goerr.New("invalid field schema")
	ErrDuplicateFieldKey  = goerr.New("duplicate field key")
	ErrDuplicateFieldName = goerr.New("duplicate field name")
	ErrDuplicateChoice    = goerr.New("duplicate choice value")
	ErrMissingName        = goerr.New("field name is required")
	ErrInvalidFieldType   = goerr.New("invalid field type")
	ErrMissingChoices     = goerr.New("select/checkbox field requires at least one choice")
	ErrInvalidPostType    = goerr.New("invalid relationship post type")
	ErrInvalidRange       = goerr.New("invalid numeric range")
)

// Context keys for error values
const (
	KindKey        = "kind"
	FieldKeyKey    = "field_key"
	FieldNameKey   = "field_name"
	FieldTypeKey   = "field_type"
	FieldIndexKey  = "field_index"
	ChoiceValueKey = "choice_value"
	PostTypeKey    = "post_type"
)
