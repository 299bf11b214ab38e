package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound  = goerr.New("configuration file not found")
	ErrInvalidConfig   = goerr.New("invalid configuration")
	ErrMissingName     = goerr.New("name is required")
	ErrDuplicateKind   = goerr.New("duplicate entity kind")
	ErrInvalidBackend  = goerr.New("invalid backend")
	ErrMissingArgument = goerr.New("required argument is missing")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	KindKey       = "kind"
	KindIndexKey  = "kind_index"
	BackendKey    = "backend"
)
