/*
Skyview opens a window with a skybox and an animated low poly scene that the
mouse can orbit, pan and zoom around.
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/skyview/engine"
	"github.com/spaghettifunk/skyview/engine/core"
	"github.com/spaghettifunk/skyview/engine/platform"
	"github.com/spaghettifunk/skyview/engine/platform/desktop"
	"github.com/spaghettifunk/skyview/engine/renderer/software"
	"github.com/spaghettifunk/skyview/viewer"
)

func main() {
	configPath := flag.String("config", "viewer.toml", "path to the TOML configuration")
	headless := flag.Bool("headless", false, "run without a window")
	flag.Parse()

	config, err := engine.LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}
	if *headless {
		config.Renderer.Headless = true
	}

	v := viewer.New(config)

	backend := software.New()
	backend.SnapshotPath = config.Renderer.SnapshotPath
	backend.SnapshotFrame = config.Renderer.SnapshotFrame

	events := core.NewEventSystem()
	var p platform.Platform
	if config.Renderer.Headless {
		p = platform.NewHeadless(events)
	} else {
		window := desktop.NewWindow(events)
		backend.Presenter = window
		p = window
	}

	e, err := engine.New(v.Game, events, p, backend)
	if err != nil {
		panic(err)
	}

	if err := e.Initialize(); err != nil {
		panic(err)
	}

	// cancel the run loop on sigterm and other system calls
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	// run engine
	runErr := e.Run(ctx)
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	if runErr != nil {
		panic(runErr)
	}
}
