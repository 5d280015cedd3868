package config

import "errors"

// Sentinel error kinds so callers can errors.Is against load failures.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
