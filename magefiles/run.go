//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the viewer with viewer.toml.
func (Run) Viewer() error {
	fmt.Println("Run viewer...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "viewer.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the viewer without a window. Set snapshot_path in viewer.toml to get a PNG.
func (Run) Headless() error {
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "viewer.toml", "-headless"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs every package test.
func Test() error {
	mg.Deps(Tidy)
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs go mod tidy.
func Tidy() error {
	_, err := executeCmd("go", withArgs("mod", "tidy"))
	if err != nil {
		return fmt.Errorf("failed to run go mod tidy: %w", err)
	}
	return nil
}
