//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Renders one frame of the testbed into terra.png.
func (Run) Engine() error {
	mg.Deps(Build.Binary)
	fmt.Println("Run engine...")
	_, err := executeCmd(binaryPath, withArgs("-frames", "1", "-out", "terra.png"), withStream())
	return err
}

// Renders terra.toml until interrupted, reloading it on change.
func (Run) Watch() error {
	mg.Deps(Build.Binary)
	_, err := executeCmd(binaryPath, withArgs("-config", "terra.toml", "-watch", "-frames", "0", "-out", ""), withStream())
	return err
}
