package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrMissingRequired = goerr.New("required field is missing")
	ErrInvalidNumber   = goerr.New("value is not a number")
	ErrOutOfRange      = goerr.New("number is out of range")
	ErrTooManyItems    = goerr.New("too many items selected")
	ErrInvalidFormat   = goerr.New("value has invalid format")
)

// Context keys for validation error values
const (
	FieldValueKey = "field_value"
	MinKey        = "min"
	MaxKey        = "max"
	CountKey      = "count"
)
