//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the headless renderer into bin/terra.
func (Build) Binary() error {
	_, err := executeCmd("go", withArgs("build", "-o", binaryPath, "."), withEnv("CGO_ENABLED=0"), withStream())
	return err
}

// Tidies go.mod and vets every package.
func (Build) Check() error {
	if _, err := executeCmd("go", withArgs("mod", "tidy")); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}
