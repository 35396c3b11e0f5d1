package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrNoProfiles         = errors.New("no profiles configured")
	ErrNoCurrentProfile   = errors.New("no current profile, pass --profile or run 'configure use'")
	ErrInvalidProfile     = errors.New("invalid profile")
	ErrInvalidProfileName = errors.New("invalid profile name")
)

// Errors for configuration validation.
var (
	ErrTokenRequired         = errors.New("token is required")
	ErrConfigRequired        = errors.New("config is required")
	ErrInvalidIdentityHeader = errors.New("invalid identity header")
)

// Errors for input validation.
var (
	ErrEmptyPath       = errors.New("path is required")
	ErrEmptyRemotePath = errors.New("remote path is required")
)
