package engine

import (
	"github.com/spaghettifunk/skyview/engine/assets"
)

// Game holds the application hooks the engine calls. Every hook runs on the
// frame loop goroutine.
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnOnAssetLoaded   OnAssetLoaded
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func(e *Engine) error
type Update func(deltaTime float64) error

// OnAssetLoaded receives every successful load. Failed loads are reported by
// the engine and never reach it.
type OnAssetLoaded func(result assets.LoadResult) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
