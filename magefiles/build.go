//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

const shaderDir = "assets/shaders"

var shaderStages = []string{"shader.vert", "shader.frag"}

type Build mg.Namespace

// Compiles the GLSL sources under assets/shaders to SPIR-V with glslc.
func (Build) Shaders() error {
	return buildShaders()
}

// Compiles the shaders and then the engine binary.
func (Build) Engine() error {
	mg.Deps(Build.Shaders)
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/polyengine", "."), withStream()); err != nil {
		return err
	}
	return nil
}

func buildShaders() error {
	for _, stage := range shaderStages {
		if _, err := executeCmd("glslc", withArgs(stage, "-o", stage+".spv"), withDir(shaderDir), withStream()); err != nil {
			return fmt.Errorf("failed to compile %s: %w", filepath.Join(shaderDir, stage), err)
		}
	}
	return nil
}
