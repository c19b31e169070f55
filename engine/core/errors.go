package core

import (
	"errors"
)

var (
	ErrAssetNotFound      = errors.New("asset not found")
	ErrUnsupportedAsset   = errors.New("unsupported asset type")
	ErrNoScene            = errors.New("document has no scene")
	ErrAccessorFormat     = errors.New("unsupported accessor format")
	ErrEngineRunning      = errors.New("engine already running")
	ErrEngineStopped      = errors.New("engine stopped")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrPlatformNotStarted = errors.New("platform not started")
	ErrUnknown            = errors.New("unknown")
)
