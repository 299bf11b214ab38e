package model

import "github.com/m-mizutani/goerr/v2"

// Engine errors
var (
	ErrSchemaUnavailable = goerr.New("field schema unavailable")
	ErrEntityNotFound    = goerr.New("entity not found")
	ErrSchemaNotFound    = goerr.New("field schema not found")
	ErrUploadFailed      = goerr.New("attachment upload failed")
	ErrUnknownField      = goerr.New("field is not part of the schema")
	ErrInvalidFieldType  = goerr.New("invalid field type")
	ErrPersistFailed     = goerr.New("failed to persist entity")
)

// Context keys for error values
const (
	EntityKindKey = "entity_kind"
	EntityIDKey   = "entity_id"
	FieldNameKey  = "field_name"
	FieldTypeKey  = "field_type"
	FilenameKey   = "filename"
	ValueTypeKey  = "value_type"
)
